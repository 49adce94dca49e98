package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidJobName    = errors.New("invalid job name")
	ErrInvalidJobCode    = errors.New("invalid job code")
	ErrInvalidSchemaName = errors.New("invalid schema name")
	ErrInvalidPercent    = errors.New("percent must be between 0 and 100")
	ErrNegativeQuantity  = errors.New("quantity cannot be negative")
	ErrNegativeCost      = errors.New("cost cannot be negative")
	ErrMetadataTooLarge  = errors.New("metadata size exceeds limit")
	ErrNoBuckets         = errors.New("schema must contain at least one bucket")
	ErrInvalidBucketName = errors.New("invalid bucket name")
)

// Validation constants
const (
	MaxNameLength   = 255
	MinNameLength   = 1
	MaxMetadataSize = 10240 // 10KB
)

// ValidateName validates a display name (job, schema, or bucket).
func ValidateName(name string, sentinel error) error {
	name = strings.TrimSpace(name)

	if len(name) < MinNameLength {
		return fmt.Errorf("%w: name cannot be empty", sentinel)
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", sentinel, MaxNameLength)
	}

	return nil
}

// ValidatePercent validates a percentage value on a bucket definition.
func ValidatePercent(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(oneHundred) {
		return fmt.Errorf("%w: got %s", ErrInvalidPercent, pct.String())
	}
	return nil
}

// ValidateNonNegative validates a quantity or cost field.
func ValidateNonNegative(v decimal.Decimal, sentinel error) error {
	if v.IsNegative() {
		return fmt.Errorf("%w: got %s", sentinel, v.String())
	}
	return nil
}

// ValidateMetadata validates bucket metadata size.
func ValidateMetadata(meta *BucketMeta) error {
	if meta == nil {
		return nil
	}

	// Estimate size (rough approximation)
	size := 0
	for _, owner := range meta.Owners {
		size += len(owner)
	}
	for k, v := range meta.Extra {
		size += len(k)
		size += len(fmt.Sprintf("%v", v))
	}

	if size > MaxMetadataSize {
		return fmt.Errorf("%w: metadata size %d bytes exceeds limit of %d bytes", ErrMetadataTooLarge, size, MaxMetadataSize)
	}

	return nil
}

// ValidateBuckets validates the shape of a schema's bucket definitions.
// The percentage-sum rule is checked separately by the schema validator.
func ValidateBuckets(buckets []BucketDef) error {
	if len(buckets) == 0 {
		return ErrNoBuckets
	}

	for _, b := range buckets {
		if err := ValidateName(b.Name, ErrInvalidBucketName); err != nil {
			return err
		}
		if err := ValidatePercent(b.Percent); err != nil {
			return err
		}
		if err := ValidateMetadata(b.Meta); err != nil {
			return err
		}
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
