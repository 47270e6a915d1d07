package handlers

import (
	"errors"
	"net/http"

	"habittracker/internal/domain"
	"habittracker/internal/http/middleware"
	"habittracker/internal/secrets"
	"habittracker/internal/shaping"
	"habittracker/internal/sorting"
	"habittracker/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// isDefect reports errors caused by wiring mistakes rather than client input.
func isDefect(err error) bool {
	return domain.IsConfiguration(err) ||
		sorting.IsConfiguration(err) ||
		shaping.IsConfiguration(err) ||
		errors.Is(err, shaping.ErrShapingDefect)
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	var (
		badSort   *sorting.InvalidSortError
		badFields *shaping.InvalidFieldsError
	)
	switch {
	case errors.As(err, &badSort), errors.As(err, &badFields):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, secrets.ErrNoKey):
		respondError(c, http.StatusServiceUnavailable, "encryption_unavailable", err.Error(), nil)
	case isDefect(err):
		utils.LogError(middleware.GetRequestID(c), "http", "configuration", err)
		respondError(c, http.StatusInternalServerError, "configuration_error", "terjadi kesalahan", nil)
	default:
		utils.LogError(middleware.GetRequestID(c), "http", "internal", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "terjadi kesalahan", nil)
	}
}
