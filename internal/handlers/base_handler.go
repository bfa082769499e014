// Package handlers contains the HTTP layer: request decoding, response
// encoding and status mapping
package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/wanderhub/auth-service/internal/apperrors"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// HandleServiceError maps a service error onto an HTTP status and responds.
// Unexpected errors are logged and hidden behind a generic 500 message.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	status := apperrors.Status(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("internal error", zap.Error(err))
		h.RespondError(w, status, "internal server error")
		return
	}

	h.RespondError(w, status, err.Error())
}
