package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/jobledger/internal/adapter/http/dto"
	"github.com/iho/jobledger/internal/domain"
	"github.com/iho/jobledger/internal/usecase"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSchemaNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSettingsNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidSchema):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSchemaInUse):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrNoSchemaSelected):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidJobName),
		errors.Is(err, domain.ErrInvalidJobCode),
		errors.Is(err, domain.ErrInvalidSchemaName),
		errors.Is(err, domain.ErrInvalidBucketName),
		errors.Is(err, domain.ErrInvalidPercent),
		errors.Is(err, domain.ErrNegativeQuantity),
		errors.Is(err, domain.ErrNegativeCost),
		errors.Is(err, domain.ErrMetadataTooLarge),
		errors.Is(err, domain.ErrNoBuckets):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
