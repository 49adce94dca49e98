package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/jobledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/jobledger/internal/adapter/http/middleware"
	"github.com/iho/jobledger/internal/calc"
	"github.com/iho/jobledger/internal/domain"
	"github.com/iho/jobledger/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"code":"JOB-001","name":"Fence","quote_total":"12500"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/jobs/",
		"GET /api/v1/jobs/",
		"GET /api/v1/jobs/{id}",
		"GET /api/v1/jobs/{id}/profit",
		"POST /api/v1/jobs/{id}/finalize",
		"POST /api/v1/calc/profit",
		"POST /api/v1/schemas/",
		"POST /api/v1/schemas/validate",
		"GET /api/v1/snapshots/{snapshotID}",
		"GET /api/v1/settings/",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		HealthHandler:   &handler.HealthHandler{},
		JobHandler:      handler.NewJobHandler(&stubJobService{}),
		CalcHandler:     handler.NewCalcHandler(&stubCalcService{}),
		SchemaHandler:   handler.NewSchemaHandler(&stubSchemaService{}),
		SettingsHandler: handler.NewSettingsHandler(&stubSettingsService{}),
		Logger:          zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubJobService struct{}

func (stubJobService) CreateJob(ctx context.Context, input usecase.CreateJobInput) (*domain.Job, error) {
	return &domain.Job{ID: "job"}, nil
}

func (stubJobService) UpdateJob(ctx context.Context, id string, input usecase.CreateJobInput) (*domain.Job, error) {
	return &domain.Job{ID: id}, nil
}

func (stubJobService) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	return &domain.Job{ID: id}, nil
}

func (stubJobService) GetLedger(ctx context.Context, id string) (*domain.JobLedger, error) {
	return &domain.JobLedger{}, nil
}

func (stubJobService) ListJobs(ctx context.Context, filter usecase.JobFilter) ([]*domain.Job, error) {
	return []*domain.Job{}, nil
}

func (stubJobService) AddChangeOrder(ctx context.Context, jobID, name string, amount decimal.Decimal) (*domain.ChangeOrder, error) {
	return &domain.ChangeOrder{ID: "co"}, nil
}

func (stubJobService) AddPurchase(ctx context.Context, jobID string, input usecase.AddPurchaseInput) (*domain.Purchase, error) {
	return &domain.Purchase{ID: "purchase"}, nil
}

func (stubJobService) AddLaborEntry(ctx context.Context, jobID, kind string, rate, units decimal.Decimal, notes string) (*domain.LaborEntry, error) {
	return &domain.LaborEntry{ID: "labor"}, nil
}

func (stubJobService) AddTravelEntry(ctx context.Context, jobID string, input usecase.AddTravelEntryInput) (*domain.TravelEntry, error) {
	return &domain.TravelEntry{ID: "travel"}, nil
}

func (stubJobService) AddPayment(ctx context.Context, jobID string, input usecase.AddPaymentInput) (*domain.Payment, error) {
	return &domain.Payment{ID: "payment"}, nil
}

type stubCalcService struct{}

func (stubCalcService) CalculateJob(ctx context.Context, jobID, schemaID string) (*domain.CalculationResult, error) {
	return &domain.CalculationResult{}, nil
}

func (stubCalcService) CalculateAdHoc(ctx context.Context, ledger domain.JobLedger, defaults domain.OrgDefaults, schema domain.BucketSchema) *domain.CalculationResult {
	result := calc.Calculate(ledger, defaults, schema)
	return &result
}

func (stubCalcService) FinalizeJob(ctx context.Context, jobID, schemaID string) (*domain.AllocationSnapshot, error) {
	return &domain.AllocationSnapshot{ID: "snap"}, nil
}

func (stubCalcService) GetSnapshot(ctx context.Context, id string) (*domain.AllocationSnapshot, error) {
	return &domain.AllocationSnapshot{ID: id}, nil
}

func (stubCalcService) ListSnapshots(ctx context.Context, jobID string, limit, offset int) ([]*domain.AllocationSnapshot, error) {
	return []*domain.AllocationSnapshot{}, nil
}

type stubSchemaService struct{}

func (stubSchemaService) CreateSchema(ctx context.Context, input usecase.CreateSchemaInput) (*domain.BucketSchema, error) {
	return &domain.BucketSchema{ID: "schema"}, nil
}

func (stubSchemaService) UpdateSchema(ctx context.Context, id string, input usecase.CreateSchemaInput) (*domain.BucketSchema, error) {
	return &domain.BucketSchema{ID: id}, nil
}

func (stubSchemaService) ValidateSchema(buckets []domain.BucketDef) domain.SchemaValidation {
	return calc.ValidateSchema(domain.BucketSchema{Buckets: buckets})
}

func (stubSchemaService) GetSchema(ctx context.Context, id string) (*domain.BucketSchema, error) {
	return &domain.BucketSchema{ID: id}, nil
}

func (stubSchemaService) ListSchemas(ctx context.Context, limit, offset int) ([]*domain.BucketSchema, error) {
	return []*domain.BucketSchema{}, nil
}

func (stubSchemaService) DeleteSchema(ctx context.Context, id string) error {
	return nil
}

func (stubSchemaService) SetDefaultSchema(ctx context.Context, id string) error {
	return nil
}

type stubSettingsService struct{}

func (stubSettingsService) GetOrgDefaults(ctx context.Context) (*domain.OrgDefaults, error) {
	defaults := domain.NewOrgDefaults()
	return &defaults, nil
}

func (stubSettingsService) UpdateOrgDefaults(ctx context.Context, input usecase.UpdateOrgDefaultsInput) (*domain.OrgDefaults, error) {
	defaults := domain.NewOrgDefaults()
	return &defaults, nil
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
