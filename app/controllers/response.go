package controllers

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"feedapp/app/logging"
	"feedapp/app/metrics"
	"feedapp/app/repositories"
	"feedapp/app/services"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string                `json:"error"`
	Fields []services.FieldError `json:"fields,omitempty"`
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Warn().Err(err).Msg("failed to encode response")
	}
}

func sendError(w http.ResponseWriter, message string, status int) {
	sendJSON(w, status, errorResponse{Error: message})
}

// handleError maps a service error to a status code. Store causes are
// logged and replaced by a generic message.
func handleError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: ve.Fields})
	case errors.Is(err, services.ErrUnauthorized):
		sendError(w, err.Error(), http.StatusUnauthorized)
	case repositories.IsNotFound(err):
		sendError(w, "not found", http.StatusNotFound)
	default:
		metrics.RecordStoreError(err)
		logging.Ctx(r.Context()).Error().Err(err).Str("action", action).Msg("request failed")
		sendError(w, "failed to "+action, http.StatusInternalServerError)
	}
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
