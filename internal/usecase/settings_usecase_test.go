package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/jobledger/internal/domain"
	"github.com/iho/jobledger/internal/usecase"
	"github.com/iho/jobledger/internal/usecase/mocks"
)

func TestSettingsUseCase_GetOrgDefaults_SeedsFallbacks(t *testing.T) {
	settingsRepo := mocks.NewMockSettingsRepository()
	uc := usecase.NewSettingsUseCase(settingsRepo, mocks.NewMockIDGenerator())

	defaults, err := uc.GetOrgDefaults(context.Background())
	if err != nil {
		t.Fatalf("get org defaults: %v", err)
	}
	if got, want := defaults.OverheadPercent.String(), "15"; got != want {
		t.Errorf("expected overhead %s, got %s", want, got)
	}
	if got, want := defaults.MileageRatePerMile.String(), "0.7"; got != want {
		t.Errorf("expected mileage rate %s, got %s", want, got)
	}
	if got, want := defaults.PerDiemPerDay.String(), "30"; got != want {
		t.Errorf("expected per diem %s, got %s", want, got)
	}
	if defaults.ID == "" {
		t.Error("expected generated ID")
	}

	// Seeded defaults are persisted, not recreated per call.
	again, err := uc.GetOrgDefaults(context.Background())
	if err != nil {
		t.Fatalf("get org defaults again: %v", err)
	}
	if again.ID != defaults.ID {
		t.Errorf("expected stable ID %q, got %q", defaults.ID, again.ID)
	}
}

func TestSettingsUseCase_UpdateOrgDefaults(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.UpdateOrgDefaultsInput
		expectError bool
		wantErr     error
	}{
		{
			name: "successful update",
			input: usecase.UpdateOrgDefaultsInput{
				OverheadPercent:    decimal.NewFromInt(18),
				MileageRatePerMile: decimal.RequireFromString("0.65"),
				PerDiemPerDay:      decimal.NewFromInt(45),
			},
		},
		{
			name: "overhead above 100 rejected",
			input: usecase.UpdateOrgDefaultsInput{
				OverheadPercent:    decimal.NewFromInt(101),
				MileageRatePerMile: decimal.RequireFromString("0.65"),
				PerDiemPerDay:      decimal.NewFromInt(45),
			},
			expectError: true,
			wantErr:     domain.ErrInvalidPercent,
		},
		{
			name: "negative mileage rate rejected",
			input: usecase.UpdateOrgDefaultsInput{
				OverheadPercent:    decimal.NewFromInt(18),
				MileageRatePerMile: decimal.RequireFromString("-0.1"),
				PerDiemPerDay:      decimal.NewFromInt(45),
			},
			expectError: true,
			wantErr:     domain.ErrNegativeCost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := usecase.NewSettingsUseCase(mocks.NewMockSettingsRepository(), mocks.NewMockIDGenerator())

			defaults, err := uc.UpdateOrgDefaults(context.Background(), tt.input)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !defaults.OverheadPercent.Equal(tt.input.OverheadPercent) {
				t.Errorf("expected overhead %s, got %s", tt.input.OverheadPercent, defaults.OverheadPercent)
			}
		})
	}
}

func TestSettingsUseCase_UpdateOrgDefaults_KeepsDefaultSchema(t *testing.T) {
	settingsRepo := mocks.NewMockSettingsRepository()
	uc := usecase.NewSettingsUseCase(settingsRepo, mocks.NewMockIDGenerator())

	seeded := domain.NewOrgDefaults()
	seeded.ID = "settings-1"
	seeded.DefaultSchemaID = "schema-1"
	if err := settingsRepo.Upsert(context.Background(), &seeded); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	defaults, err := uc.UpdateOrgDefaults(context.Background(), usecase.UpdateOrgDefaultsInput{
		OverheadPercent:    decimal.NewFromInt(20),
		MileageRatePerMile: decimal.RequireFromString("0.70"),
		PerDiemPerDay:      decimal.NewFromInt(30),
	})
	if err != nil {
		t.Fatalf("update org defaults: %v", err)
	}
	if defaults.DefaultSchemaID != "schema-1" {
		t.Errorf("expected default schema preserved, got %q", defaults.DefaultSchemaID)
	}
}
