package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"viral-reward/internal/core/domain"
	"viral-reward/internal/core/port"
)

type errorResp struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusOf maps an error to its HTTP status and a stable machine code.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, "unauthorized"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrDuplicateSubmission):
		return http.StatusConflict, "duplicate_submission"
	case errors.Is(err, domain.ErrAccountExists):
		return http.StatusConflict, "account_exists"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "insufficient_funds"
	case errors.Is(err, domain.ErrBudgetExceeded):
		return http.StatusUnprocessableEntity, "budget_exceeded"
	case errors.Is(err, domain.ErrCampaignInactive):
		return http.StatusUnprocessableEntity, "campaign_inactive"
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, domain.ErrRoleMismatch):
		return http.StatusBadRequest, "role_mismatch"
	case errors.Is(err, port.ErrConflictRetryExhausted):
		return http.StatusServiceUnavailable, "conflict_retry_exhausted"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// publicError maps err to the status and body sent to clients. The text of
// internal errors is replaced so it never leaks.
func publicError(err error) (int, errorResp) {
	status, code := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	return status, errorResp{Error: msg, Code: code}
}

// writeError renders err as JSON. Internal errors are logged.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := publicError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("error", err))
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	h.writeJSON(w, status, body)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// encoding should rarely fail; the status is already sent
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}
