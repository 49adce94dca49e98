package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculationResult is the full financial breakdown for one job. Every
// field is populated on every calculation, even when zero.
type CalculationResult struct {
	Revenue             decimal.Decimal
	DirectMaterialCost  decimal.Decimal
	DirectLaborCost     decimal.Decimal
	TravelCost          decimal.Decimal
	PaymentFees         decimal.Decimal
	WarrantyReserve     decimal.Decimal
	OverheadAllocation  decimal.Decimal
	ContributionMargin  decimal.Decimal
	FullyLoadedProfit   decimal.Decimal
	ProfitForAllocation decimal.Decimal
	BucketAllocations   []BucketAllocation
}

// BucketAllocation is one bucket's share of the profit for allocation.
type BucketAllocation struct {
	Name    string
	Percent decimal.Decimal
	Amount  decimal.Decimal
	Meta    *AllocationMeta
}

// AllocationMeta is a bucket's metadata after allocation. For
// owner-split buckets OwnerAmounts carries the per-owner shares in the
// same order as the owners list; for all other buckets the input
// metadata is reproduced unchanged.
type AllocationMeta struct {
	Owners       []string
	OwnerAmounts []OwnerAmount
	Extra        map[string]any
}

// OwnerAmount is one owner's share of an owner-split bucket.
type OwnerAmount struct {
	Name   string
	Amount decimal.Decimal
}

// AllocationSnapshot is an immutable, timestamped copy of a job's
// bucket allocations taken when the job is finalized.
type AllocationSnapshot struct {
	ID          string
	JobID       string
	SchemaID    string
	Result      CalculationResult
	FinalizedAt time.Time
}
