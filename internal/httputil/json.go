package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error     string `json:"error"`
	Status    string `json:"status,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteJSON encodes v with the given status code. Encoding failures can only
// be logged since the header is already sent.
func WriteJSON(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Warn("encode response failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestID(r.Context()),
			"error", err,
		)
	}
}

// WriteError writes an ErrorBody carrying the request ID.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, msg string) {
	WriteJSON(w, r, logger, status, ErrorBody{Error: msg, RequestID: RequestID(r.Context())})
}
