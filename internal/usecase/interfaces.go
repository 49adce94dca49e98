package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/jobledger/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// JobFilter narrows job listings.
type JobFilter struct {
	Search      string
	Salesperson string
	Channel     string
	ProductType string
	Limit       int
	Offset      int
}

// JobRepository defines data access for jobs and their ledger records.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	Update(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context, filter JobFilter) ([]*domain.Job, error)
	// GetLedger assembles the job's full transactional history.
	GetLedger(ctx context.Context, jobID string) (*domain.JobLedger, error)
	// GetLedgerForUpdate assembles the ledger inside a transaction with
	// the job row locked, so a finalize snapshot sees a stable ledger.
	GetLedgerForUpdate(ctx context.Context, tx Transaction, jobID string) (*domain.JobLedger, error)
	AddChangeOrder(ctx context.Context, co *domain.ChangeOrder) error
	AddPurchase(ctx context.Context, purchase *domain.Purchase) error
	AddLaborEntry(ctx context.Context, entry *domain.LaborEntry) error
	AddTravelEntry(ctx context.Context, entry *domain.TravelEntry) error
	AddPayment(ctx context.Context, payment *domain.Payment) error
}

// SchemaRepository defines data access for bucket schemas.
type SchemaRepository interface {
	Create(ctx context.Context, schema *domain.BucketSchema) error
	Update(ctx context.Context, schema *domain.BucketSchema) error
	GetByID(ctx context.Context, id string) (*domain.BucketSchema, error)
	List(ctx context.Context, limit, offset int) ([]*domain.BucketSchema, error)
	Delete(ctx context.Context, id string) error
}

// SettingsRepository defines data access for org defaults.
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.OrgDefaults, error)
	Upsert(ctx context.Context, defaults *domain.OrgDefaults) error
}

// SnapshotRepository defines data access for allocation snapshots.
type SnapshotRepository interface {
	Create(ctx context.Context, tx Transaction, snapshot *domain.AllocationSnapshot) error
	GetByID(ctx context.Context, id string) (*domain.AllocationSnapshot, error)
	ListByJob(ctx context.Context, jobID string, limit, offset int) ([]*domain.AllocationSnapshot, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries operations that fail with transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
