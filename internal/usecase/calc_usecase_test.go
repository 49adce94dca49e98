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

type calcFixture struct {
	txManager    *mocks.MockTransactionManager
	jobRepo      *mocks.MockJobRepository
	schemaRepo   *mocks.MockSchemaRepository
	settingsRepo *mocks.MockSettingsRepository
	snapshotRepo *mocks.MockSnapshotRepository
	outboxRepo   *mocks.MockOutboxRepository
	cache        *mocks.MockCache
	uc           *usecase.CalcUseCase
}

func newCalcFixture() *calcFixture {
	f := &calcFixture{
		txManager:    mocks.NewMockTransactionManager(),
		jobRepo:      mocks.NewMockJobRepository(),
		schemaRepo:   mocks.NewMockSchemaRepository(),
		settingsRepo: mocks.NewMockSettingsRepository(),
		snapshotRepo: mocks.NewMockSnapshotRepository(),
		outboxRepo:   mocks.NewMockOutboxRepository(),
		cache:        mocks.NewMockCache(),
	}
	f.uc = usecase.NewCalcUseCase(
		f.txManager,
		f.jobRepo,
		f.schemaRepo,
		f.settingsRepo,
		f.snapshotRepo,
		f.outboxRepo,
		mocks.NewMockIDGenerator(),
		f.cache,
		nil,
	)
	return f
}

// seedJob stores a 10,000 quote ledger and a 60/40 schema where the 40%
// bucket is split between two owners.
func (f *calcFixture) seedJob(t *testing.T) (jobID, schemaID string) {
	t.Helper()

	f.jobRepo.SetLedger("job-1", &domain.JobLedger{
		QuoteTotal: decimal.NewFromInt(10000),
	})

	schema := &domain.BucketSchema{
		ID:   "schema-1",
		Name: "Default Split",
		Buckets: []domain.BucketDef{
			{ID: "b-1", SchemaID: "schema-1", Name: "Operating", Percent: decimal.NewFromInt(60), Position: 0},
			{ID: "b-2", SchemaID: "schema-1", Name: "Owner Pay", Percent: decimal.NewFromInt(40), Position: 1,
				Meta: &domain.BucketMeta{Owners: []string{"Alejandro", "Jason"}}},
		},
	}
	if err := f.schemaRepo.Create(context.Background(), schema); err != nil {
		t.Fatalf("seed schema: %v", err)
	}

	return "job-1", "schema-1"
}

func TestCalcUseCase_CalculateJob(t *testing.T) {
	f := newCalcFixture()
	jobID, schemaID := f.seedJob(t)

	result, err := f.uc.CalculateJob(context.Background(), jobID, schemaID)
	if err != nil {
		t.Fatalf("calculate job: %v", err)
	}

	// Fallback rates: 15% overhead, 3% warranty reserve.
	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"revenue", result.Revenue, "10000"},
		{"warranty reserve", result.WarrantyReserve, "300"},
		{"overhead allocation", result.OverheadAllocation, "1500"},
		{"contribution margin", result.ContributionMargin, "10000"},
		{"fully loaded profit", result.FullyLoadedProfit, "8200"},
		{"profit for allocation", result.ProfitForAllocation, "8200"},
	}
	for _, c := range checks {
		if c.got.String() != c.want {
			t.Errorf("%s: expected %s, got %s", c.name, c.want, c.got)
		}
	}

	if len(result.BucketAllocations) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(result.BucketAllocations))
	}
	if got, want := result.BucketAllocations[0].Amount.String(), "4920"; got != want {
		t.Errorf("operating bucket: expected %s, got %s", want, got)
	}
	ownerPay := result.BucketAllocations[1]
	if got, want := ownerPay.Amount.String(), "3280"; got != want {
		t.Errorf("owner pay bucket: expected %s, got %s", want, got)
	}
	if ownerPay.Meta == nil || len(ownerPay.Meta.OwnerAmounts) != 2 {
		t.Fatalf("expected owner split, got %+v", ownerPay.Meta)
	}
	for _, oa := range ownerPay.Meta.OwnerAmounts {
		if got, want := oa.Amount.String(), "1640"; got != want {
			t.Errorf("owner %s: expected %s, got %s", oa.Name, want, got)
		}
	}
}

func TestCalcUseCase_CalculateJob_DefaultSchema(t *testing.T) {
	f := newCalcFixture()
	jobID, schemaID := f.seedJob(t)

	defaults := domain.NewOrgDefaults()
	defaults.ID = "settings-1"
	defaults.DefaultSchemaID = schemaID
	if err := f.settingsRepo.Upsert(context.Background(), &defaults); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	result, err := f.uc.CalculateJob(context.Background(), jobID, "")
	if err != nil {
		t.Fatalf("calculate job: %v", err)
	}
	if len(result.BucketAllocations) != 2 {
		t.Errorf("expected allocations from the default schema, got %d", len(result.BucketAllocations))
	}
}

func TestCalcUseCase_CalculateJob_CachesDefaultSchemaResult(t *testing.T) {
	f := newCalcFixture()
	jobID, schemaID := f.seedJob(t)

	defaults := domain.NewOrgDefaults()
	defaults.ID = "settings-1"
	defaults.DefaultSchemaID = schemaID
	if err := f.settingsRepo.Upsert(context.Background(), &defaults); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	first, err := f.uc.CalculateJob(context.Background(), jobID, "")
	if err != nil {
		t.Fatalf("calculate job: %v", err)
	}

	// Storage goes away; the cached result must still be served.
	f.jobRepo.GetLedgerFunc = func(ctx context.Context, id string) (*domain.JobLedger, error) {
		return nil, errors.New("storage down")
	}

	second, err := f.uc.CalculateJob(context.Background(), jobID, "")
	if err != nil {
		t.Fatalf("calculate job from cache: %v", err)
	}
	if !second.ProfitForAllocation.Equal(first.ProfitForAllocation) {
		t.Errorf("expected cached profit %s, got %s", first.ProfitForAllocation, second.ProfitForAllocation)
	}
	if len(second.BucketAllocations) != len(first.BucketAllocations) {
		t.Errorf("expected %d cached allocations, got %d", len(first.BucketAllocations), len(second.BucketAllocations))
	}

	// Naming a schema explicitly bypasses the cache.
	if _, err := f.uc.CalculateJob(context.Background(), jobID, schemaID); err == nil {
		t.Error("expected explicit-schema request to hit storage")
	}
}

func TestCalcUseCase_CalculateJob_Errors(t *testing.T) {
	t.Run("no schema selected", func(t *testing.T) {
		f := newCalcFixture()
		jobID, _ := f.seedJob(t)

		_, err := f.uc.CalculateJob(context.Background(), jobID, "")
		if !errors.Is(err, usecase.ErrNoSchemaSelected) {
			t.Errorf("expected ErrNoSchemaSelected, got %v", err)
		}
	})

	t.Run("job not found", func(t *testing.T) {
		f := newCalcFixture()
		_, schemaID := f.seedJob(t)

		_, err := f.uc.CalculateJob(context.Background(), "missing", schemaID)
		if !errors.Is(err, domain.ErrJobNotFound) {
			t.Errorf("expected ErrJobNotFound, got %v", err)
		}
	})

	t.Run("schema not found", func(t *testing.T) {
		f := newCalcFixture()
		jobID, _ := f.seedJob(t)

		_, err := f.uc.CalculateJob(context.Background(), jobID, "missing")
		if !errors.Is(err, domain.ErrSchemaNotFound) {
			t.Errorf("expected ErrSchemaNotFound, got %v", err)
		}
	})
}

func TestCalcUseCase_CalculateAdHoc(t *testing.T) {
	f := newCalcFixture()

	ledger := domain.JobLedger{QuoteTotal: decimal.NewFromInt(5000)}
	schema := domain.BucketSchema{
		Buckets: []domain.BucketDef{
			{Name: "Everything", Percent: decimal.NewFromInt(100)},
		},
	}

	result := f.uc.CalculateAdHoc(context.Background(), ledger, domain.NewOrgDefaults(), schema)
	if got, want := result.FullyLoadedProfit.String(), "4100"; got != want {
		t.Errorf("expected profit %s, got %s", want, got)
	}
	if got, want := result.BucketAllocations[0].Amount.String(), "4100"; got != want {
		t.Errorf("expected allocation %s, got %s", want, got)
	}
}

func TestCalcUseCase_FinalizeJob(t *testing.T) {
	f := newCalcFixture()
	jobID, schemaID := f.seedJob(t)

	lockedRead := false
	f.jobRepo.GetLedgerForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, id string) (*domain.JobLedger, error) {
		lockedRead = true
		if tx == nil {
			t.Error("expected ledger read inside the transaction")
		}
		return f.jobRepo.GetLedger(ctx, id)
	}

	snapshot, err := f.uc.FinalizeJob(context.Background(), jobID, schemaID)
	if err != nil {
		t.Fatalf("finalize job: %v", err)
	}

	if !lockedRead {
		t.Error("expected GetLedgerForUpdate to be used")
	}
	if !f.txManager.Last.Committed {
		t.Error("expected transaction commit")
	}
	if snapshot.JobID != jobID || snapshot.SchemaID != schemaID {
		t.Errorf("unexpected snapshot identity: %+v", snapshot)
	}
	if got, want := snapshot.Result.ProfitForAllocation.String(), "8200"; got != want {
		t.Errorf("expected snapshot profit %s, got %s", want, got)
	}

	stored, err := f.uc.GetSnapshot(context.Background(), snapshot.ID)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if stored.ID != snapshot.ID {
		t.Errorf("expected stored snapshot %q, got %q", snapshot.ID, stored.ID)
	}

	events := f.outboxRepo.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(events))
	}
	event := events[0]
	if event.EventType != domain.EventTypeJobFinalized {
		t.Errorf("expected event type %q, got %q", domain.EventTypeJobFinalized, event.EventType)
	}
	if event.AggregateID != jobID {
		t.Errorf("expected aggregate %q, got %q", jobID, event.AggregateID)
	}
	if got, want := event.Payload["profit_for_allocation"], "8200"; got != want {
		t.Errorf("expected payload profit %v, got %v", want, got)
	}
	if event.Payload["snapshot_id"] != snapshot.ID {
		t.Errorf("expected payload snapshot %q, got %v", snapshot.ID, event.Payload["snapshot_id"])
	}
}

func TestCalcUseCase_FinalizeJob_RollsBackOnSnapshotFailure(t *testing.T) {
	f := newCalcFixture()
	jobID, schemaID := f.seedJob(t)

	f.snapshotRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, snapshot *domain.AllocationSnapshot) error {
		return errors.New("disk full")
	}

	_, err := f.uc.FinalizeJob(context.Background(), jobID, schemaID)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if f.txManager.Last.Committed {
		t.Error("expected no commit")
	}
	if !f.txManager.Last.RolledBack {
		t.Error("expected rollback")
	}
	if len(f.outboxRepo.Events()) != 0 {
		t.Error("expected no outbox events")
	}
}

func TestCalcUseCase_ListSnapshots(t *testing.T) {
	f := newCalcFixture()
	jobID, schemaID := f.seedJob(t)

	first, err := f.uc.FinalizeJob(context.Background(), jobID, schemaID)
	if err != nil {
		t.Fatalf("finalize job: %v", err)
	}
	if _, err := f.uc.FinalizeJob(context.Background(), jobID, schemaID); err != nil {
		t.Fatalf("finalize job again: %v", err)
	}

	snapshots, err := f.uc.ListSnapshots(context.Background(), jobID, 0, 0)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snapshots))
	}
	if snapshots[0].ID == first.ID && snapshots[1].ID == first.ID {
		t.Error("expected distinct snapshot IDs")
	}

	if _, err := f.uc.GetSnapshot(context.Background(), "missing"); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Errorf("expected ErrSnapshotNotFound, got %v", err)
	}
}

type countingRetrier struct {
	attempts int
}

func (r *countingRetrier) Retry(ctx context.Context, operation func() error) error {
	var err error
	for i := 0; i < 3; i++ {
		r.attempts++
		if err = operation(); err == nil {
			return nil
		}
	}
	return err
}

func TestCalcUseCase_FinalizeJob_RetriesTransientFailure(t *testing.T) {
	f := newCalcFixture()
	jobID, schemaID := f.seedJob(t)

	failures := 1
	f.snapshotRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, snapshot *domain.AllocationSnapshot) error {
		if failures > 0 {
			failures--
			return errors.New("deadlock detected")
		}
		return nil
	}

	retrier := &countingRetrier{}
	f.uc.WithRetrier(retrier)

	snapshot, err := f.uc.FinalizeJob(context.Background(), jobID, schemaID)
	if err != nil {
		t.Fatalf("finalize job: %v", err)
	}
	if snapshot == nil {
		t.Fatal("expected snapshot after retry")
	}
	if retrier.attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", retrier.attempts)
	}
}
