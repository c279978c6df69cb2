package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/apperr"
)

// envelope is the canonical response shape: {status, data, metadata?} on
// success, {status, message} on failure.
type envelope struct {
	Status   string      `json:"status"`
	Message  string      `json:"message,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// apiFunc is a handler that reports failures as typed errors instead of
// writing them itself; handle is the shared boundary that converts them.
type apiFunc func(http.ResponseWriter, *http.Request) error

func handle(log zerolog.Logger, w http.ResponseWriter, r *http.Request, fn apiFunc) {
	if err := fn(w, r); err != nil {
		writeError(log, w, r, err)
	}
}

func writeError(log zerolog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.StatusCode(err)
	message := err.Error()
	status := "fail"
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		message = "something went very wrong"
		status = "error"
	}
	respondJSON(w, code, envelope{Status: status, Message: message})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, envelope{Status: "success", Data: data})
}

func respondPage(w http.ResponseWriter, data, metadata interface{}) {
	respondJSON(w, http.StatusOK, envelope{Status: "success", Data: data, Metadata: metadata})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Status: "success", Message: message})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("body", "invalid JSON body")
	}
	return nil
}

func parsePositiveInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

// Health is the liveness probe.
func Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
