package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/jobledger/internal/adapter/http/dto"
	"github.com/iho/jobledger/internal/domain"
)

// CalcService defines the behavior needed by CalcHandler.
type CalcService interface {
	CalculateJob(ctx context.Context, jobID, schemaID string) (*domain.CalculationResult, error)
	CalculateAdHoc(ctx context.Context, ledger domain.JobLedger, defaults domain.OrgDefaults, schema domain.BucketSchema) *domain.CalculationResult
	FinalizeJob(ctx context.Context, jobID, schemaID string) (*domain.AllocationSnapshot, error)
	GetSnapshot(ctx context.Context, id string) (*domain.AllocationSnapshot, error)
	ListSnapshots(ctx context.Context, jobID string, limit, offset int) ([]*domain.AllocationSnapshot, error)
}

// CalcHandler handles calculation-related HTTP requests.
type CalcHandler struct {
	calcUC CalcService
}

// NewCalcHandler creates a new CalcHandler.
func NewCalcHandler(calcUC CalcService) *CalcHandler {
	return &CalcHandler{calcUC: calcUC}
}

// CalculateJob computes the profit breakdown for a stored job. An
// optional schema_id query parameter overrides the org default schema.
func (h *CalcHandler) CalculateJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	schemaID := r.URL.Query().Get("schema_id")

	result, err := h.calcUC.CalculateJob(r.Context(), jobID, schemaID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to calculate profit", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CalculationFromDomain(result))
}

// CalculateAdHoc runs a stateless calculation over the request body.
func (h *CalcHandler) CalculateAdHoc(w http.ResponseWriter, r *http.Request) {
	var req dto.CalcProfitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(req.Buckets) == 0 {
		writeError(w, http.StatusBadRequest, "missing buckets", "at least one bucket is required")
		return
	}

	result := h.calcUC.CalculateAdHoc(r.Context(), req.ToLedger(), req.ToOrgDefaults(), req.ToSchema())

	writeJSON(w, http.StatusOK, dto.CalculationFromDomain(result))
}

// Finalize computes and persists an immutable allocation snapshot.
func (h *CalcHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	schemaID := r.URL.Query().Get("schema_id")

	snapshot, err := h.calcUC.FinalizeJob(r.Context(), jobID, schemaID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to finalize job", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.SnapshotFromDomain(snapshot))
}

// GetSnapshot retrieves a snapshot by ID.
func (h *CalcHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "snapshotID")

	snapshot, err := h.calcUC.GetSnapshot(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get snapshot", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SnapshotFromDomain(snapshot))
}

// ListSnapshots lists a job's snapshots, newest first.
func (h *CalcHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	snapshots, err := h.calcUC.ListSnapshots(r.Context(), jobID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list snapshots", err.Error())
		return
	}

	resp := dto.ListSnapshotsResponse{
		Snapshots: make([]*dto.SnapshotResponse, 0, len(snapshots)),
		Total:     int64(len(snapshots)),
	}
	for _, s := range snapshots {
		resp.Snapshots = append(resp.Snapshots, dto.SnapshotFromDomain(s))
	}

	writeJSON(w, http.StatusOK, resp)
}
