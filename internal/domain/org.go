package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrgDefaults holds organization-wide rates applied to every job.
// Overhead may be overridden per job; mileage and per diem may not.
type OrgDefaults struct {
	ID                     string
	OverheadPercent        decimal.Decimal
	MileageRatePerMile     decimal.Decimal
	PerDiemPerDay          decimal.Decimal
	DefaultSalesTaxRatePct *decimal.Decimal
	DefaultSchemaID        string
	UpdatedAt              time.Time
}

// Fallbacks used when the organization has not saved its own defaults.
var (
	FallbackOverheadPercent    = decimal.NewFromInt(15)
	FallbackMileageRatePerMile = decimal.RequireFromString("0.70")
	FallbackPerDiemPerDay      = decimal.NewFromInt(30)
)

// DefaultWarrantyReservePct is the reserve rate applied when a job does
// not specify one. This is a business-policy constant, deliberately not
// part of OrgDefaults.
var DefaultWarrantyReservePct = decimal.NewFromInt(3)

// NewOrgDefaults returns org defaults populated with the fallback rates.
func NewOrgDefaults() OrgDefaults {
	return OrgDefaults{
		OverheadPercent:    FallbackOverheadPercent,
		MileageRatePerMile: FallbackMileageRatePerMile,
		PerDiemPerDay:      FallbackPerDiemPerDay,
	}
}

// OverheadPct resolves the overhead rate for a job: a job-level override
// fully replaces the org default, with no blending.
func (o OrgDefaults) OverheadPct(override *decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return o.OverheadPercent
}

// WarrantyPct resolves the warranty reserve rate for a job.
func WarrantyPct(override *decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return DefaultWarrantyReservePct
}
