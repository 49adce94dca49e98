package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/jobledger/internal/adapter/http/dto"
	"github.com/iho/jobledger/internal/domain"
	"github.com/iho/jobledger/internal/usecase"
)

// JobService defines the behavior needed by JobHandler.
type JobService interface {
	CreateJob(ctx context.Context, input usecase.CreateJobInput) (*domain.Job, error)
	UpdateJob(ctx context.Context, id string, input usecase.CreateJobInput) (*domain.Job, error)
	GetJob(ctx context.Context, id string) (*domain.Job, error)
	GetLedger(ctx context.Context, id string) (*domain.JobLedger, error)
	ListJobs(ctx context.Context, filter usecase.JobFilter) ([]*domain.Job, error)
	AddChangeOrder(ctx context.Context, jobID, name string, amount decimal.Decimal) (*domain.ChangeOrder, error)
	AddPurchase(ctx context.Context, jobID string, input usecase.AddPurchaseInput) (*domain.Purchase, error)
	AddLaborEntry(ctx context.Context, jobID, kind string, rate, units decimal.Decimal, notes string) (*domain.LaborEntry, error)
	AddTravelEntry(ctx context.Context, jobID string, input usecase.AddTravelEntryInput) (*domain.TravelEntry, error)
	AddPayment(ctx context.Context, jobID string, input usecase.AddPaymentInput) (*domain.Payment, error)
}

// JobHandler handles job-related HTTP requests.
type JobHandler struct {
	jobUC JobService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobUC JobService) *JobHandler {
	return &JobHandler{jobUC: jobUC}
}

// Create creates a new job.
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	job, err := h.jobUC.CreateJob(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create job", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.JobFromDomain(job))
}

// Update replaces a job's header fields.
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	job, err := h.jobUC.UpdateJob(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update job", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.JobFromDomain(job))
}

// Get retrieves a job by ID.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing job ID", "")
		return
	}

	job, err := h.jobUC.GetJob(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get job", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.JobFromDomain(job))
}

// GetLedger retrieves a job's full transactional history.
func (h *JobHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ledger, err := h.jobUC.GetLedger(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get ledger", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerFromDomain(ledger))
}

// List lists jobs.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := usecase.JobFilter{
		Search:      r.URL.Query().Get("search"),
		Salesperson: r.URL.Query().Get("salesperson"),
		Channel:     r.URL.Query().Get("channel"),
		ProductType: r.URL.Query().Get("product_type"),
		Limit:       parseIntQuery(r, "limit", 50),
		Offset:      parseIntQuery(r, "offset", 0),
	}

	jobs, err := h.jobUC.ListJobs(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list jobs", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListJobsResponse{
		Jobs:  dto.JobsFromDomain(jobs),
		Total: int64(len(jobs)),
	})
}

// AddChangeOrder records a change order against a job.
func (h *JobHandler) AddChangeOrder(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	var req dto.AddChangeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	co, err := h.jobUC.AddChangeOrder(r.Context(), jobID, req.Name, req.Amount)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add change order", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ChangeOrderFromDomain(co))
}

// AddPurchase records a supplier purchase against a job.
func (h *JobHandler) AddPurchase(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	var req dto.AddPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	purchase, err := h.jobUC.AddPurchase(r.Context(), jobID, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add purchase", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PurchaseFromDomain(purchase))
}

// AddLaborEntry records labor against a job.
func (h *JobHandler) AddLaborEntry(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	var req dto.AddLaborEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.jobUC.AddLaborEntry(r.Context(), jobID, req.Kind, req.Rate, req.Units, req.Notes)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add labor entry", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.LaborEntryFromDomain(entry))
}

// AddTravelEntry records travel expenses against a job.
func (h *JobHandler) AddTravelEntry(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	var req dto.AddTravelEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.jobUC.AddTravelEntry(r.Context(), jobID, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add travel entry", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TravelEntryFromDomain(entry))
}

// AddPayment records a received payment against a job.
func (h *JobHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	var req dto.AddPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	payment, err := h.jobUC.AddPayment(r.Context(), jobID, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add payment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentFromDomain(payment))
}
