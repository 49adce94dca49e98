package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/jobledger/internal/adapter/repository/postgres"
	"github.com/iho/jobledger/internal/domain"
	"github.com/iho/jobledger/internal/usecase"
	"github.com/iho/jobledger/tests/testutil"
)

func newSchemaUseCase(testDB *testutil.TestDB) *usecase.SchemaUseCase {
	return usecase.NewSchemaUseCase(
		postgres.NewSchemaRepository(testDB.Pool),
		postgres.NewSettingsRepository(testDB.Pool),
		postgres.NewULIDGenerator(),
	)
}

func TestSchemaRoundTripWithMeta(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	schemaUC := newSchemaUseCase(testDB)

	created, err := schemaUC.CreateSchema(ctx, usecase.CreateSchemaInput{
		Name: "Owner Split",
		Buckets: []domain.BucketDef{
			{
				Name:    "Owners",
				Percent: decimal.NewFromInt(60),
				Meta: &domain.BucketMeta{
					Owners: []string{"Alice", "Bob"},
					Extra:  map[string]any{"color": "green"},
				},
			},
			{Name: "Reinvest", Percent: decimal.NewFromInt(40)},
		},
	})
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	loaded, err := schemaUC.GetSchema(ctx, created.ID)
	if err != nil {
		t.Fatalf("failed to load schema: %v", err)
	}

	if len(loaded.Buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(loaded.Buckets))
	}
	if loaded.Buckets[0].Name != "Owners" || loaded.Buckets[1].Name != "Reinvest" {
		t.Errorf("buckets not in stored order: %s, %s", loaded.Buckets[0].Name, loaded.Buckets[1].Name)
	}

	meta := loaded.Buckets[0].Meta
	if meta == nil {
		t.Fatal("expected bucket meta to survive the round trip")
	}
	if len(meta.Owners) != 2 || meta.Owners[0] != "Alice" || meta.Owners[1] != "Bob" {
		t.Errorf("owners not preserved: %v", meta.Owners)
	}
	if meta.Extra["color"] != "green" {
		t.Errorf("extra metadata not preserved: %v", meta.Extra)
	}

	if loaded.Buckets[1].Meta != nil {
		t.Errorf("expected nil meta on plain bucket, got %v", loaded.Buckets[1].Meta)
	}
}

func TestUpdateSchemaRewritesBuckets(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	schemaUC := newSchemaUseCase(testDB)

	created, err := schemaUC.CreateSchema(ctx, usecase.CreateSchemaInput{
		Name: "Initial",
		Buckets: []domain.BucketDef{
			{Name: "A", Percent: decimal.NewFromInt(100)},
		},
	})
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	if _, err := schemaUC.UpdateSchema(ctx, created.ID, usecase.CreateSchemaInput{
		Name: "Rewritten",
		Buckets: []domain.BucketDef{
			{Name: "B", Percent: decimal.NewFromInt(50)},
			{Name: "C", Percent: decimal.NewFromInt(50)},
		},
	}); err != nil {
		t.Fatalf("failed to update schema: %v", err)
	}

	loaded, err := schemaUC.GetSchema(ctx, created.ID)
	if err != nil {
		t.Fatalf("failed to load schema: %v", err)
	}
	if loaded.Name != "Rewritten" {
		t.Errorf("expected renamed schema, got %s", loaded.Name)
	}
	if len(loaded.Buckets) != 2 || loaded.Buckets[0].Name != "B" {
		t.Fatalf("expected rewritten buckets, got %+v", loaded.Buckets)
	}
}

func TestCreateSchemaRejectsBadPercentages(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	schemaUC := newSchemaUseCase(testDB)

	_, err := schemaUC.CreateSchema(ctx, usecase.CreateSchemaInput{
		Name: "Short",
		Buckets: []domain.BucketDef{
			{Name: "A", Percent: decimal.NewFromInt(99)},
		},
	})
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestDeleteDefaultSchemaBlocked(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	schemaUC := newSchemaUseCase(testDB)

	def, err := schemaUC.CreateSchema(ctx, usecase.CreateSchemaInput{
		Name:    "Default",
		Buckets: []domain.BucketDef{{Name: "A", Percent: decimal.NewFromInt(100)}},
	})
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	if err := schemaUC.SetDefaultSchema(ctx, def.ID); err != nil {
		t.Fatalf("failed to set default schema: %v", err)
	}

	if err := schemaUC.DeleteSchema(ctx, def.ID); !errors.Is(err, domain.ErrSchemaInUse) {
		t.Fatalf("expected ErrSchemaInUse, got %v", err)
	}

	other, err := schemaUC.CreateSchema(ctx, usecase.CreateSchemaInput{
		Name:    "Disposable",
		Buckets: []domain.BucketDef{{Name: "A", Percent: decimal.NewFromInt(100)}},
	})
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	if err := schemaUC.DeleteSchema(ctx, other.ID); err != nil {
		t.Fatalf("expected non-default schema to be deletable: %v", err)
	}

	if _, err := schemaUC.GetSchema(ctx, other.ID); !errors.Is(err, domain.ErrSchemaNotFound) {
		t.Fatalf("expected ErrSchemaNotFound after delete, got %v", err)
	}
}
