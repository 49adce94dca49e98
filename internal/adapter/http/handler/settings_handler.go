package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/jobledger/internal/adapter/http/dto"
	"github.com/iho/jobledger/internal/domain"
	"github.com/iho/jobledger/internal/usecase"
)

// SettingsService defines the behavior needed by SettingsHandler.
type SettingsService interface {
	GetOrgDefaults(ctx context.Context) (*domain.OrgDefaults, error)
	UpdateOrgDefaults(ctx context.Context, input usecase.UpdateOrgDefaultsInput) (*domain.OrgDefaults, error)
}

// SettingsHandler handles org settings HTTP requests.
type SettingsHandler struct {
	settingsUC SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsUC SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsUC: settingsUC}
}

// Get returns the org defaults, seeding fallbacks if none are saved.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	defaults, err := h.settingsUC.GetOrgDefaults(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get settings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettingsFromDomain(defaults))
}

// Update replaces the org defaults.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	defaults, err := h.settingsUC.UpdateOrgDefaults(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update settings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettingsFromDomain(defaults))
}
