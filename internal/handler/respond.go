package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/lasmate/Alisee/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

var publicMessage = map[int]string{
	http.StatusBadRequest:          "invalid request",
	http.StatusNotFound:            "not found",
	http.StatusUnauthorized:        "unauthorized",
	http.StatusForbidden:           "forbidden",
	http.StatusConflict:            "conflict",
	http.StatusInternalServerError: "internal server error",
}

// writeError logs err and answers with its status. Validation, lookup and conflict
// errors expose their message; authentication and server failures are reported
// generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToStatus(err)
	msg := publicMessage[status]
	switch status {
	case http.StatusInternalServerError:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	case http.StatusUnauthorized:
		slog.Debug("request unauthenticated", "path", r.URL.Path, "error", err)
	default:
		slog.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
		msg = err.Error()
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
