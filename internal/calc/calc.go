// Package calc implements the job profit calculation core: a layered
// cost/profit breakdown for one job and the distribution of the
// resulting profit across a percentage bucket schema. All functions are
// pure and total; every monetary and percentage value is exact decimal.
package calc

import (
	"github.com/shopspring/decimal"

	"github.com/iho/jobledger/internal/domain"
)

var oneHundred = decimal.NewFromInt(100)

// Calculate derives the full financial breakdown for a job and
// allocates the final profit across the given bucket schema.
//
// The steps run in waterfall order: revenue first, then direct costs,
// then overhead/reserve/fees, because each layer depends on the ones
// above it. The schema is allocated against as-is; its percentage sum
// is enforced at authoring time by ValidateSchema, not here.
func Calculate(job domain.JobLedger, org domain.OrgDefaults, schema domain.BucketSchema) domain.CalculationResult {
	revenue := job.Revenue()

	directMaterialCost := decimal.Zero
	for _, purchase := range job.Purchases {
		directMaterialCost = directMaterialCost.Add(purchase.Cost())
	}

	directLaborCost := decimal.Zero
	for _, entry := range job.LaborEntries {
		directLaborCost = directLaborCost.Add(entry.Cost())
	}

	travelCost := decimal.Zero
	for _, entry := range job.TravelEntries {
		travelCost = travelCost.Add(entry.Cost(org.MileageRatePerMile, org.PerDiemPerDay))
	}

	paymentFees := decimal.Zero
	for _, payment := range job.Payments {
		paymentFees = paymentFees.Add(payment.Fee())
	}

	warrantyReserve := revenue.Mul(domain.WarrantyPct(job.WarrantyReservePct)).Div(oneHundred)
	overheadAllocation := revenue.Mul(org.OverheadPct(job.OverheadOverridePct)).Div(oneHundred)

	contributionMargin := revenue.
		Sub(directMaterialCost).
		Sub(directLaborCost).
		Sub(travelCost)

	fullyLoadedProfit := contributionMargin.
		Sub(overheadAllocation).
		Sub(warrantyReserve).
		Sub(paymentFees)

	// Kept as a distinct figure: future policy may diverge it from the
	// raw profit, e.g. flooring at zero before distribution.
	profitForAllocation := fullyLoadedProfit

	return domain.CalculationResult{
		Revenue:             revenue,
		DirectMaterialCost:  directMaterialCost,
		DirectLaborCost:     directLaborCost,
		TravelCost:          travelCost,
		PaymentFees:         paymentFees,
		WarrantyReserve:     warrantyReserve,
		OverheadAllocation:  overheadAllocation,
		ContributionMargin:  contributionMargin,
		FullyLoadedProfit:   fullyLoadedProfit,
		ProfitForAllocation: profitForAllocation,
		BucketAllocations:   AllocateBuckets(profitForAllocation, schema),
	}
}

// AllocateBuckets distributes profitForAllocation across the schema's
// buckets. When profit is zero or negative every bucket is still
// emitted with an amount of exactly zero, so a loss never makes buckets
// disappear downstream.
func AllocateBuckets(profitForAllocation decimal.Decimal, schema domain.BucketSchema) []domain.BucketAllocation {
	allocations := make([]domain.BucketAllocation, 0, len(schema.Buckets))

	if profitForAllocation.LessThanOrEqual(decimal.Zero) {
		for _, bucket := range schema.Buckets {
			allocations = append(allocations, domain.BucketAllocation{
				Name:    bucket.Name,
				Percent: bucket.Percent,
				Amount:  decimal.Zero,
				Meta:    passthroughMeta(bucket.Meta),
			})
		}
		return allocations
	}

	for _, bucket := range schema.Buckets {
		amount := profitForAllocation.Mul(bucket.Percent).Div(oneHundred)

		meta := passthroughMeta(bucket.Meta)
		if bucket.Meta.IsOwnerSplit() {
			meta.OwnerAmounts = splitAmongOwners(amount, bucket.Meta.Owners)
		}

		allocations = append(allocations, domain.BucketAllocation{
			Name:    bucket.Name,
			Percent: bucket.Percent,
			Amount:  amount,
			Meta:    meta,
		})
	}

	return allocations
}

// splitAmongOwners divides amount evenly across the owners, in input
// order. The last owner absorbs any division remainder so the shares
// always sum exactly to the bucket amount.
func splitAmongOwners(amount decimal.Decimal, owners []string) []domain.OwnerAmount {
	n := decimal.NewFromInt(int64(len(owners)))
	share := amount.Div(n)

	amounts := make([]domain.OwnerAmount, len(owners))
	allocated := decimal.Zero
	for i, owner := range owners {
		if i == len(owners)-1 {
			share = amount.Sub(allocated)
		}
		amounts[i] = domain.OwnerAmount{Name: owner, Amount: share}
		allocated = allocated.Add(share)
	}

	return amounts
}

// passthroughMeta copies bucket metadata into allocation metadata
// without enrichment. The returned value is never nil for buckets that
// carry metadata, and nil for buckets that don't.
func passthroughMeta(meta *domain.BucketMeta) *domain.AllocationMeta {
	if meta == nil {
		return nil
	}

	out := &domain.AllocationMeta{}
	if len(meta.Owners) > 0 {
		out.Owners = append([]string(nil), meta.Owners...)
	}
	if len(meta.Extra) > 0 {
		out.Extra = make(map[string]any, len(meta.Extra))
		for k, v := range meta.Extra {
			out.Extra[k] = v
		}
	}

	return out
}
