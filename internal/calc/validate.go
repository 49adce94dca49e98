package calc

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/jobledger/internal/domain"
)

// schemaTolerance absorbs rounding artifacts from repeating-decimal
// splits such as thirds (33.333 + 33.333 + 33.334).
var schemaTolerance = decimal.RequireFromString("0.01")

// ValidateSchema checks that a schema's bucket percentages sum to 100%
// within tolerance. It never mutates or reorders the schema, and it
// does not check bucket names for uniqueness; duplicates are a
// presentation-layer concern.
func ValidateSchema(schema domain.BucketSchema) domain.SchemaValidation {
	total := decimal.Zero
	for _, bucket := range schema.Buckets {
		total = total.Add(bucket.Percent)
	}

	if total.Sub(oneHundred).Abs().GreaterThan(schemaTolerance) {
		return domain.SchemaValidation{
			IsValid: false,
			Total:   total,
			Error:   fmt.Sprintf("Bucket percentages must sum to 100%%. Current total: %s%%", total.String()),
		}
	}

	return domain.SchemaValidation{IsValid: true, Total: total}
}
