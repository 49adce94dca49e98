package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/jobledger/internal/adapter/http/dto"
	"github.com/iho/jobledger/internal/domain"
	"github.com/iho/jobledger/internal/usecase"
)

// SchemaService defines the behavior needed by SchemaHandler.
type SchemaService interface {
	CreateSchema(ctx context.Context, input usecase.CreateSchemaInput) (*domain.BucketSchema, error)
	UpdateSchema(ctx context.Context, id string, input usecase.CreateSchemaInput) (*domain.BucketSchema, error)
	ValidateSchema(buckets []domain.BucketDef) domain.SchemaValidation
	GetSchema(ctx context.Context, id string) (*domain.BucketSchema, error)
	ListSchemas(ctx context.Context, limit, offset int) ([]*domain.BucketSchema, error)
	DeleteSchema(ctx context.Context, id string) error
	SetDefaultSchema(ctx context.Context, id string) error
}

// SchemaHandler handles bucket schema HTTP requests.
type SchemaHandler struct {
	schemaUC SchemaService
}

// NewSchemaHandler creates a new SchemaHandler.
func NewSchemaHandler(schemaUC SchemaService) *SchemaHandler {
	return &SchemaHandler{schemaUC: schemaUC}
}

// Create creates a new bucket schema.
func (h *SchemaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.SchemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	schema, err := h.schemaUC.CreateSchema(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create schema", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.SchemaFromDomain(schema))
}

// Update replaces a schema's name and buckets.
func (h *SchemaHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.SchemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	schema, err := h.schemaUC.UpdateSchema(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update schema", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SchemaFromDomain(schema))
}

// Validate checks a schema's percentages without persisting anything.
func (h *SchemaHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req dto.ValidateSchemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	validation := h.schemaUC.ValidateSchema(dto.BucketsToDomain(req.Buckets))

	writeJSON(w, http.StatusOK, dto.ValidationFromDomain(validation))
}

// Get retrieves a schema by ID.
func (h *SchemaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	schema, err := h.schemaUC.GetSchema(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get schema", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SchemaFromDomain(schema))
}

// List lists schemas.
func (h *SchemaHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	schemas, err := h.schemaUC.ListSchemas(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list schemas", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListSchemasResponse{
		Schemas: dto.SchemasFromDomain(schemas),
		Total:   int64(len(schemas)),
	})
}

// Delete removes a schema.
func (h *SchemaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.schemaUC.DeleteSchema(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete schema", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetDefault marks a schema as the org-wide default.
func (h *SchemaHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.schemaUC.SetDefaultSchema(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to set default schema", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
