package mocks

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iho/jobledger/internal/domain"
	"github.com/iho/jobledger/internal/usecase"
)

// MockJobRepository is a mock implementation of JobRepository.
type MockJobRepository struct {
	mu      sync.RWMutex
	jobs    map[string]*domain.Job
	ledgers map[string]*domain.JobLedger

	CreateFunc             func(ctx context.Context, job *domain.Job) error
	UpdateFunc             func(ctx context.Context, job *domain.Job) error
	GetByIDFunc            func(ctx context.Context, id string) (*domain.Job, error)
	ListFunc               func(ctx context.Context, filter usecase.JobFilter) ([]*domain.Job, error)
	GetLedgerFunc          func(ctx context.Context, jobID string) (*domain.JobLedger, error)
	GetLedgerForUpdateFunc func(ctx context.Context, tx usecase.Transaction, jobID string) (*domain.JobLedger, error)
}

func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{
		jobs:    make(map[string]*domain.Job),
		ledgers: make(map[string]*domain.JobLedger),
	}
}

// SetLedger seeds the ledger returned for a job.
func (m *MockJobRepository) SetLedger(jobID string, ledger *domain.JobLedger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledgers[jobID] = ledger
}

func (m *MockJobRepository) Create(ctx context.Context, job *domain.Job) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, job)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
	m.ledgers[job.ID] = &domain.JobLedger{
		QuoteTotal:          job.QuoteTotal,
		OverheadOverridePct: job.OverheadOverridePct,
		WarrantyReservePct:  job.WarrantyReservePct,
	}
	return nil
}

func (m *MockJobRepository) Update(ctx context.Context, job *domain.Job) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, job)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return domain.ErrJobNotFound
	}
	m.jobs[job.ID] = job
	return nil
}

func (m *MockJobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if job, ok := m.jobs[id]; ok {
		return job, nil
	}
	return nil, domain.ErrJobNotFound
}

func (m *MockJobRepository) List(ctx context.Context, filter usecase.JobFilter) ([]*domain.Job, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var jobs []*domain.Job
	for _, job := range m.jobs {
		if filter.Search != "" &&
			!strings.Contains(job.Name, filter.Search) &&
			!strings.Contains(job.ClientName, filter.Search) &&
			!strings.Contains(job.Code, filter.Search) {
			continue
		}
		if filter.Salesperson != "" && job.Salesperson != filter.Salesperson {
			continue
		}
		if filter.Channel != "" && job.Channel != filter.Channel {
			continue
		}
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs, nil
}

func (m *MockJobRepository) GetLedger(ctx context.Context, jobID string) (*domain.JobLedger, error) {
	if m.GetLedgerFunc != nil {
		return m.GetLedgerFunc(ctx, jobID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ledger, ok := m.ledgers[jobID]; ok {
		return ledger, nil
	}
	return nil, domain.ErrJobNotFound
}

func (m *MockJobRepository) GetLedgerForUpdate(ctx context.Context, tx usecase.Transaction, jobID string) (*domain.JobLedger, error) {
	if m.GetLedgerForUpdateFunc != nil {
		return m.GetLedgerForUpdateFunc(ctx, tx, jobID)
	}
	return m.GetLedger(ctx, jobID)
}

func (m *MockJobRepository) AddChangeOrder(ctx context.Context, co *domain.ChangeOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, ok := m.ledgers[co.JobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	ledger.ChangeOrders = append(ledger.ChangeOrders, *co)
	return nil
}

func (m *MockJobRepository) AddPurchase(ctx context.Context, purchase *domain.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, ok := m.ledgers[purchase.JobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	ledger.Purchases = append(ledger.Purchases, *purchase)
	return nil
}

func (m *MockJobRepository) AddLaborEntry(ctx context.Context, entry *domain.LaborEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, ok := m.ledgers[entry.JobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	ledger.LaborEntries = append(ledger.LaborEntries, *entry)
	return nil
}

func (m *MockJobRepository) AddTravelEntry(ctx context.Context, entry *domain.TravelEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, ok := m.ledgers[entry.JobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	ledger.TravelEntries = append(ledger.TravelEntries, *entry)
	return nil
}

func (m *MockJobRepository) AddPayment(ctx context.Context, payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, ok := m.ledgers[payment.JobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	ledger.Payments = append(ledger.Payments, *payment)
	return nil
}

// MockSchemaRepository is a mock implementation of SchemaRepository.
type MockSchemaRepository struct {
	mu      sync.RWMutex
	schemas map[string]*domain.BucketSchema

	CreateFunc  func(ctx context.Context, schema *domain.BucketSchema) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.BucketSchema, error)
}

func NewMockSchemaRepository() *MockSchemaRepository {
	return &MockSchemaRepository{schemas: make(map[string]*domain.BucketSchema)}
}

func (m *MockSchemaRepository) Create(ctx context.Context, schema *domain.BucketSchema) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, schema)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemas[schema.ID] = schema
	return nil
}

func (m *MockSchemaRepository) Update(ctx context.Context, schema *domain.BucketSchema) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schemas[schema.ID]; !ok {
		return domain.ErrSchemaNotFound
	}
	m.schemas[schema.ID] = schema
	return nil
}

func (m *MockSchemaRepository) GetByID(ctx context.Context, id string) (*domain.BucketSchema, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if schema, ok := m.schemas[id]; ok {
		return schema, nil
	}
	return nil, domain.ErrSchemaNotFound
}

func (m *MockSchemaRepository) List(ctx context.Context, limit, offset int) ([]*domain.BucketSchema, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var schemas []*domain.BucketSchema
	for _, schema := range m.schemas {
		schemas = append(schemas, schema)
	}
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].ID < schemas[j].ID })
	return schemas, nil
}

func (m *MockSchemaRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schemas[id]; !ok {
		return domain.ErrSchemaNotFound
	}
	delete(m.schemas, id)
	return nil
}

// MockSettingsRepository is a mock implementation of SettingsRepository.
type MockSettingsRepository struct {
	mu       sync.RWMutex
	defaults *domain.OrgDefaults

	GetFunc func(ctx context.Context) (*domain.OrgDefaults, error)
}

func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{}
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*domain.OrgDefaults, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.defaults == nil {
		return nil, domain.ErrSettingsNotFound
	}
	return m.defaults, nil
}

func (m *MockSettingsRepository) Upsert(ctx context.Context, defaults *domain.OrgDefaults) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaults = defaults
	return nil
}

// MockSnapshotRepository is a mock implementation of SnapshotRepository.
type MockSnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.AllocationSnapshot

	CreateFunc func(ctx context.Context, tx usecase.Transaction, snapshot *domain.AllocationSnapshot) error
}

func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{snapshots: make(map[string]*domain.AllocationSnapshot)}
}

func (m *MockSnapshotRepository) Create(ctx context.Context, tx usecase.Transaction, snapshot *domain.AllocationSnapshot) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, snapshot)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.ID] = snapshot
	return nil
}

func (m *MockSnapshotRepository) GetByID(ctx context.Context, id string) (*domain.AllocationSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if snapshot, ok := m.snapshots[id]; ok {
		return snapshot, nil
	}
	return nil, domain.ErrSnapshotNotFound
}

func (m *MockSnapshotRepository) ListByJob(ctx context.Context, jobID string, limit, offset int) ([]*domain.AllocationSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var snapshots []*domain.AllocationSnapshot
	for _, snapshot := range m.snapshots {
		if snapshot.JobID == jobID {
			snapshots = append(snapshots, snapshot)
		}
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].FinalizedAt.After(snapshots[j].FinalizedAt)
	})
	return snapshots, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, event := range m.events {
		if !event.Published {
			events = append(events, event)
		}
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, event := range m.events {
		if event.ID == id {
			event.Published = true
			event.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, event := range m.events {
		if !event.Published || event.PublishedAt == nil || !event.PublishedAt.Before(before) {
			kept = append(kept, event)
		}
	}
	m.events = kept
	return nil
}

// Events returns all recorded events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

// MockTransaction is a no-op transaction that records its outcome.
type MockTransaction struct {
	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
	Last      *MockTransaction
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.Last = &MockTransaction{}
	return m.Last, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu           sync.Mutex
	counter      int
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "mock-id-" + strconv.Itoa(m.counter)
}

// MockCache is an in-memory Cache.
type MockCache struct {
	mu      sync.RWMutex
	entries map[string]string

	Deleted []string
}

func NewMockCache() *MockCache {
	return &MockCache{entries: make(map[string]string)}
}

func (c *MockCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	return "", usecase.ErrCacheMiss
}

func (c *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *MockCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.Deleted = append(c.Deleted, key)
	return nil
}
