package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/jobledger/internal/domain"
)

// SettingsRepository implements usecase.SettingsRepository. The org
// settings table holds at most one row.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get retrieves the org defaults.
func (r *SettingsRepository) Get(ctx context.Context) (*domain.OrgDefaults, error) {
	var (
		defaults                             domain.OrgDefaults
		overhead, mileage, perDiem, salesTax pgtype.Numeric
		defaultSchemaID                      pgtype.Text
		updatedAt                            pgtype.Timestamptz
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, overhead_percent, mileage_rate_per_mile, per_diem_per_day,
			default_sales_tax_rate_pct, default_schema_id, updated_at
		FROM org_settings LIMIT 1`).
		Scan(&defaults.ID, &overhead, &mileage, &perDiem, &salesTax, &defaultSchemaID, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, err
	}

	defaults.OverheadPercent = numericToDecimal(overhead)
	defaults.MileageRatePerMile = numericToDecimal(mileage)
	defaults.PerDiemPerDay = numericToDecimal(perDiem)
	defaults.DefaultSalesTaxRatePct = numericToDecimalPtr(salesTax)
	defaults.DefaultSchemaID = textToString(defaultSchemaID)
	defaults.UpdatedAt = updatedAt.Time

	return &defaults, nil
}

// Upsert saves the org defaults, creating the row on first write.
func (r *SettingsRepository) Upsert(ctx context.Context, defaults *domain.OrgDefaults) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO org_settings (id, overhead_percent, mileage_rate_per_mile, per_diem_per_day,
			default_sales_tax_rate_pct, default_schema_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			overhead_percent = EXCLUDED.overhead_percent,
			mileage_rate_per_mile = EXCLUDED.mileage_rate_per_mile,
			per_diem_per_day = EXCLUDED.per_diem_per_day,
			default_sales_tax_rate_pct = EXCLUDED.default_sales_tax_rate_pct,
			default_schema_id = EXCLUDED.default_schema_id,
			updated_at = EXCLUDED.updated_at`,
		defaults.ID,
		decimalToNumeric(defaults.OverheadPercent),
		decimalToNumeric(defaults.MileageRatePerMile),
		decimalToNumeric(defaults.PerDiemPerDay),
		decimalPtrToNumeric(defaults.DefaultSalesTaxRatePct),
		stringToText(defaults.DefaultSchemaID),
		timeToPgTimestamptz(defaults.UpdatedAt),
	)

	return err
}
