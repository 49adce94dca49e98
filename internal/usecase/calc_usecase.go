package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iho/jobledger/internal/calc"
	"github.com/iho/jobledger/internal/domain"
	"github.com/iho/jobledger/internal/infrastructure/metrics"
)

var (
	// ErrNoSchemaSelected is returned when a calculation is requested
	// without a schema and the org has no default schema configured.
	ErrNoSchemaSelected = errors.New("no bucket schema selected and no org default configured")
)

// CalcUseCase orchestrates the pure calculation core: it loads a job's
// ledger, org defaults, and a bucket schema, runs the calculator, and
// (for finalize) persists the result as an immutable snapshot.
type CalcUseCase struct {
	txManager    TransactionManager
	jobRepo      JobRepository
	schemaRepo   SchemaRepository
	settingsRepo SettingsRepository
	snapshotRepo SnapshotRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	cache        Cache
	metrics      *metrics.Metrics
	retrier      Retrier
}

// NewCalcUseCase creates a new CalcUseCase. cache and m may be nil.
func NewCalcUseCase(
	txManager TransactionManager,
	jobRepo JobRepository,
	schemaRepo SchemaRepository,
	settingsRepo SettingsRepository,
	snapshotRepo SnapshotRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	m *metrics.Metrics,
) *CalcUseCase {
	return &CalcUseCase{
		txManager:    txManager,
		jobRepo:      jobRepo,
		schemaRepo:   schemaRepo,
		settingsRepo: settingsRepo,
		snapshotRepo: snapshotRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		cache:        cache,
		metrics:      m,
	}
}

// WithRetrier enables retry of the finalize transaction on transient
// database errors such as deadlocks.
func (uc *CalcUseCase) WithRetrier(retrier Retrier) *CalcUseCase {
	uc.retrier = retrier
	return uc
}

// CalculateJob computes the full profit breakdown for a stored job.
// When schemaID is empty the org's default schema is used, and the
// result may be served from cache; ledger mutations invalidate it.
// Explicit schema requests always recompute.
func (uc *CalcUseCase) CalculateJob(ctx context.Context, jobID, schemaID string) (*domain.CalculationResult, error) {
	cacheable := schemaID == "" && uc.cache != nil

	if cacheable {
		if cached, err := uc.cache.Get(ctx, CalcCacheKey(jobID)); err == nil {
			var result domain.CalculationResult
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				if uc.metrics != nil {
					uc.metrics.CalcCacheHits.Inc()
				}
				return &result, nil
			}
		}
	}

	ledger, err := uc.jobRepo.GetLedger(ctx, jobID)
	if err != nil {
		return nil, err
	}

	defaults, schema, err := uc.loadDefaultsAndSchema(ctx, schemaID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := calc.Calculate(*ledger, *defaults, *schema)
	if uc.metrics != nil {
		uc.metrics.CalculationsTotal.Inc()
		uc.metrics.CalculationDuration.Observe(time.Since(start).Seconds())
	}

	if cacheable {
		if body, err := json.Marshal(result); err == nil {
			_ = uc.cache.Set(ctx, CalcCacheKey(jobID), string(body), CalcCacheTTL)
		}
	}

	return &result, nil
}

// CalculateAdHoc runs the calculator over caller-supplied values
// without touching storage. Used by the standalone calculator page.
func (uc *CalcUseCase) CalculateAdHoc(ctx context.Context, ledger domain.JobLedger, defaults domain.OrgDefaults, schema domain.BucketSchema) *domain.CalculationResult {
	result := calc.Calculate(ledger, defaults, schema)
	if uc.metrics != nil {
		uc.metrics.CalculationsTotal.Inc()
	}
	return &result
}

// FinalizeJob computes the job's breakdown and persists it as an
// immutable allocation snapshot, together with a job.finalized outbox
// event, in a single transaction. The ledger is read under a row lock
// so concurrent mutations cannot tear the snapshot.
func (uc *CalcUseCase) FinalizeJob(ctx context.Context, jobID, schemaID string) (*domain.AllocationSnapshot, error) {
	defaults, schema, err := uc.loadDefaultsAndSchema(ctx, schemaID)
	if err != nil {
		return nil, err
	}

	if uc.retrier == nil {
		return uc.finalizeOnce(ctx, jobID, defaults, schema)
	}

	var snapshot *domain.AllocationSnapshot
	err = uc.retrier.Retry(ctx, func() error {
		var opErr error
		snapshot, opErr = uc.finalizeOnce(ctx, jobID, defaults, schema)
		return opErr
	})

	return snapshot, err
}

func (uc *CalcUseCase) finalizeOnce(ctx context.Context, jobID string, defaults *domain.OrgDefaults, schema *domain.BucketSchema) (*domain.AllocationSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin finalize transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ledger, err := uc.jobRepo.GetLedgerForUpdate(ctx, tx, jobID)
	if err != nil {
		return nil, err
	}

	result := calc.Calculate(*ledger, *defaults, *schema)
	now := time.Now().UTC()

	snapshot := &domain.AllocationSnapshot{
		ID:          uc.idGen.Generate(),
		JobID:       jobID,
		SchemaID:    schema.ID,
		Result:      result,
		FinalizedAt: now,
	}

	if err := uc.snapshotRepo.Create(ctx, tx, snapshot); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   jobID,
		AggregateType: domain.AggregateTypeJob,
		EventType:     domain.EventTypeJobFinalized,
		Payload: map[string]any{
			"job_id":                jobID,
			"snapshot_id":           snapshot.ID,
			"schema_id":             schema.ID,
			"revenue":               result.Revenue.String(),
			"fully_loaded_profit":   result.FullyLoadedProfit.String(),
			"profit_for_allocation": result.ProfitForAllocation.String(),
			"finalized_at":          now.Format(time.RFC3339),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit finalize transaction: %w", err)
	}

	if uc.metrics != nil {
		uc.metrics.JobsFinalized.Inc()
		uc.metrics.SnapshotsCreated.Inc()
	}

	return snapshot, nil
}

// GetSnapshot retrieves a snapshot by ID.
func (uc *CalcUseCase) GetSnapshot(ctx context.Context, id string) (*domain.AllocationSnapshot, error) {
	return uc.snapshotRepo.GetByID(ctx, id)
}

// ListSnapshots lists a job's snapshots, newest first.
func (uc *CalcUseCase) ListSnapshots(ctx context.Context, jobID string, limit, offset int) ([]*domain.AllocationSnapshot, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.snapshotRepo.ListByJob(ctx, jobID, limit, offset)
}

func (uc *CalcUseCase) loadDefaultsAndSchema(ctx context.Context, schemaID string) (*domain.OrgDefaults, *domain.BucketSchema, error) {
	defaults, err := uc.settingsRepo.Get(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSettingsNotFound) {
			return nil, nil, err
		}
		d := domain.NewOrgDefaults()
		defaults = &d
	}

	if schemaID == "" {
		schemaID = defaults.DefaultSchemaID
	}
	if schemaID == "" {
		return nil, nil, ErrNoSchemaSelected
	}

	schema, err := uc.schemaRepo.GetByID(ctx, schemaID)
	if err != nil {
		return nil, nil, err
	}

	return defaults, schema, nil
}
