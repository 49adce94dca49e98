package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/jobledger/internal/domain"
)

// SettingsUseCase handles org-wide rate defaults.
type SettingsUseCase struct {
	settingsRepo SettingsRepository
	idGen        IDGenerator
}

// NewSettingsUseCase creates a new SettingsUseCase.
func NewSettingsUseCase(settingsRepo SettingsRepository, idGen IDGenerator) *SettingsUseCase {
	return &SettingsUseCase{
		settingsRepo: settingsRepo,
		idGen:        idGen,
	}
}

// GetOrgDefaults returns the org defaults, creating them from the
// fallback rates if the organization has never saved any.
func (uc *SettingsUseCase) GetOrgDefaults(ctx context.Context) (*domain.OrgDefaults, error) {
	defaults, err := uc.settingsRepo.Get(ctx)
	if err == nil {
		return defaults, nil
	}
	if !errors.Is(err, domain.ErrSettingsNotFound) {
		return nil, err
	}

	d := domain.NewOrgDefaults()
	d.ID = uc.idGen.Generate()
	d.UpdatedAt = time.Now().UTC()

	if err := uc.settingsRepo.Upsert(ctx, &d); err != nil {
		return nil, err
	}

	return &d, nil
}

// UpdateOrgDefaultsInput represents input for updating org defaults.
type UpdateOrgDefaultsInput struct {
	OverheadPercent        decimal.Decimal
	MileageRatePerMile     decimal.Decimal
	PerDiemPerDay          decimal.Decimal
	DefaultSalesTaxRatePct *decimal.Decimal
	DefaultSchemaID        string
}

// UpdateOrgDefaults replaces the org-wide rates.
func (uc *SettingsUseCase) UpdateOrgDefaults(ctx context.Context, input UpdateOrgDefaultsInput) (*domain.OrgDefaults, error) {
	if err := domain.ValidatePercent(input.OverheadPercent); err != nil {
		return nil, err
	}
	if err := domain.ValidateNonNegative(input.MileageRatePerMile, domain.ErrNegativeCost); err != nil {
		return nil, err
	}
	if err := domain.ValidateNonNegative(input.PerDiemPerDay, domain.ErrNegativeCost); err != nil {
		return nil, err
	}

	defaults, err := uc.settingsRepo.Get(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSettingsNotFound) {
			return nil, err
		}
		defaults = &domain.OrgDefaults{ID: uc.idGen.Generate()}
	}

	defaults.OverheadPercent = input.OverheadPercent
	defaults.MileageRatePerMile = input.MileageRatePerMile
	defaults.PerDiemPerDay = input.PerDiemPerDay
	defaults.DefaultSalesTaxRatePct = input.DefaultSalesTaxRatePct
	if input.DefaultSchemaID != "" {
		defaults.DefaultSchemaID = input.DefaultSchemaID
	}
	defaults.UpdatedAt = time.Now().UTC()

	if err := uc.settingsRepo.Upsert(ctx, defaults); err != nil {
		return nil, err
	}

	return defaults, nil
}
