package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"weatherdiary/internal/diary"
	"weatherdiary/internal/memo"
	"weatherdiary/internal/weather"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to status codes. Unexpected errors are
// logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, diary.ErrValidation), errors.Is(err, memo.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, diary.ErrNotFound), errors.Is(err, memo.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, diary.ErrWeatherUnavailable):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, weather.ErrNetwork):
		log.WarnContext(r.Context(), "weather provider unreachable", "error", err)
		http.Error(w, "weather provider unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, weather.ErrHTTPStatus), errors.Is(err, weather.ErrParse):
		log.WarnContext(r.Context(), "weather provider error", "error", err)
		http.Error(w, "weather provider error", http.StatusBadGateway)
	default:
		log.ErrorContext(r.Context(), "request failed", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

func logger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
