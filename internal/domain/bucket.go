package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BucketMeta is the free-form annotation attached to a bucket
// definition. Owners is the one recognized key: when present the bucket
// is treated as an equal-split compensation bucket. Everything else is
// carried in Extra and passed through untouched.
type BucketMeta struct {
	Owners []string
	Extra  map[string]any
}

// IsOwnerSplit reports whether this bucket's allocation should be split
// across named owners. The trigger is the presence of owners in the
// metadata, never the bucket's display name.
func (m *BucketMeta) IsOwnerSplit() bool {
	return m != nil && len(m.Owners) > 0
}

// BucketDef is one named percentage share of distributable profit.
type BucketDef struct {
	ID       string
	SchemaID string
	Name     string
	Percent  decimal.Decimal
	Meta     *BucketMeta
	Position int
}

// BucketSchema is an ordered, named set of buckets whose percentages
// are expected to sum to 100%. The sum is enforced when a schema is
// authored, not when it is allocated against.
type BucketSchema struct {
	ID        string
	Name      string
	Buckets   []BucketDef
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SchemaValidation is the outcome of checking a schema's percentages.
type SchemaValidation struct {
	IsValid bool
	Total   decimal.Decimal
	Error   string
}
