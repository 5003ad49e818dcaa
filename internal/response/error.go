package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/GregMSThompson/finance-sync/internal/errs"
	"github.com/GregMSThompson/finance-sync/pkg/logger"
)

type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Field   string   `json:"field,omitempty"`
	Failed  []string `json:"failed,omitempty"`
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.writeError(w, r, status, ErrorResponse{Code: code, Message: message})
}

func (h *responseHandler) writeError(w http.ResponseWriter, r *http.Request, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Use context logger if encoding fails
		log := logger.FromContext(r.Context())
		log.Error("failed to encode error response", "error", err, "status", status, "code", body.Code)
	}
}

func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var (
		validation *errs.ValidationError
		partial    *errs.PropagationPartialFailureError
		remote     *errs.RemoteOperationError
	)

	switch {
	case errors.As(err, &validation):
		log.Warn("validation failed", "field", validation.Field, "error", validation.Message)
		h.writeError(w, r, http.StatusBadRequest, ErrorResponse{
			Code:    "invalid_input",
			Message: validation.Message,
			Field:   validation.Field,
		})

	case errors.As(err, &partial):
		log.Error("currency propagation incomplete",
			"total", partial.Total,
			"failed", len(partial.Failed))
		h.writeError(w, r, http.StatusInternalServerError, ErrorResponse{
			Code:    "partial_failure",
			Message: partial.Message,
			Failed:  partial.Failed,
		})

	case errors.As(err, &remote):
		h.handleRemote(w, r, remote)

	default:
		log.Error("unexpected error",
			"error", err,
			"type", fmt.Sprintf("%T", err))
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An unexpected error occurred")
	}
}

func (h *responseHandler) handleRemote(w http.ResponseWriter, r *http.Request, e *errs.RemoteOperationError) {
	log := logger.FromContext(r.Context())

	switch e.Kind {
	case errs.KindNotFound:
		log.Warn("resource not found", "operation", e.Operation, "error", e.Message)
		h.WriteError(w, r, http.StatusNotFound, "not_found", e.Message)

	case errs.KindPermissionDenied:
		log.Warn("store permission denied", "operation", e.Operation, "error", e.Err)
		h.WriteError(w, r, http.StatusForbidden, "permission_denied", "Permission denied")

	case errs.KindAlreadyExists:
		log.Warn("resource already exists", "operation", e.Operation, "error", e.Message)
		h.WriteError(w, r, http.StatusConflict, "already_exists", e.Message)

	case errs.KindUnavailable:
		log.Warn("store unavailable", "operation", e.Operation, "error", e.Err)
		h.WriteError(w, r, http.StatusServiceUnavailable, "service_unavailable",
			"Service temporarily unavailable")

	default:
		log.Error("store error",
			"operation", e.Operation,
			"kind", e.Kind,
			"error", e.Err)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An error occurred")
	}
}
