// internal/handlers/response.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ammerola/resell-orders/internal/core/domain"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error  string                    `json:"error"`
	Code   string                    `json:"code"`
	Kind   domain.ErrorKind          `json:"kind"`
	Failed []domain.FailedAdjustment `json:"failed,omitempty"`
}

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

// respondError maps err onto a status code by its domain kind
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	kind := domain.KindOf(err)
	body := ErrorResponse{
		Error: err.Error(),
		Code:  domain.CodeOf(err),
		Kind:  kind,
	}

	status := http.StatusInternalServerError
	switch kind {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindInventoryApplication:
		status = http.StatusConflict
		var appErr *domain.InventoryApplicationError
		if errors.As(err, &appErr) {
			body.Failed = appErr.Failed
		}
	default:
		// internal details stay in the log
		body.Error = msg
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(r.Context(), level, msg,
		slog.Int("status", status),
		slog.String("code", body.Code),
		slog.String("error", err.Error()))

	respondJSON(w, logger, status, body)
}

// respondBadRequest replies to malformed input that never reached a service
func respondBadRequest(w http.ResponseWriter, logger *slog.Logger, code, message string) {
	respondJSON(w, logger, http.StatusBadRequest, ErrorResponse{
		Error: message,
		Code:  code,
		Kind:  domain.KindValidation,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
