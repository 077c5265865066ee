package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"weatherdiary/internal/diary"
)

// maxTextBody bounds the raw text body; the service enforces the character limit.
const maxTextBody = 64 << 10

type DiaryHandler struct {
	Svc *diary.Service
	Log *slog.Logger
}

// Create handles POST /create/diary?date=YYYY-MM-DD with the text as body.
func (h *DiaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}
	text, ok := h.readText(w, r)
	if !ok {
		return
	}

	e, err := h.Svc.CreateDiary(r.Context(), date, text)
	if err != nil {
		writeError(w, r, logger(h.Log), err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// Read handles GET /read/diary?date=YYYY-MM-DD.
func (h *DiaryHandler) Read(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}

	out, err := h.Svc.ReadDiary(r.Context(), date)
	if err != nil {
		writeError(w, r, logger(h.Log), err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ReadRange handles GET /read/diaries?startDate=&endDate=.
func (h *DiaryHandler) ReadRange(w http.ResponseWriter, r *http.Request) {
	start, ok := h.dateParam(w, r, "startDate")
	if !ok {
		return
	}
	end, ok := h.dateParam(w, r, "endDate")
	if !ok {
		return
	}

	out, err := h.Svc.ReadDiaries(r.Context(), start, end)
	if err != nil {
		writeError(w, r, logger(h.Log), err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Update handles PUT /update/diary?date=YYYY-MM-DD with the new text as body.
func (h *DiaryHandler) Update(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}
	text, ok := h.readText(w, r)
	if !ok {
		return
	}

	if err := h.Svc.UpdateDiary(r.Context(), date, text); err != nil {
		writeError(w, r, logger(h.Log), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /delete/diary?date=YYYY-MM-DD.
func (h *DiaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}

	if _, err := h.Svc.DeleteDiary(r.Context(), date); err != nil {
		writeError(w, r, logger(h.Log), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Weather handles GET /read/weather?date=YYYY-MM-DD.
func (h *DiaryHandler) Weather(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}

	dw, err := h.Svc.DailyWeatherFor(r.Context(), date)
	if err != nil {
		writeError(w, r, logger(h.Log), err)
		return
	}
	writeJSON(w, http.StatusOK, dw)
}

func (h *DiaryHandler) dateParam(w http.ResponseWriter, r *http.Request, name string) (diary.Date, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		http.Error(w, fmt.Sprintf("%s required (YYYY-MM-DD)", name), http.StatusBadRequest)
		return diary.Date{}, false
	}
	d, err := diary.ParseDate(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid %s (YYYY-MM-DD)", name), http.StatusBadRequest)
		return diary.Date{}, false
	}
	return d, true
}

func (h *DiaryHandler) readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTextBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "text too large", http.StatusRequestEntityTooLarge)
			return "", false
		}
		http.Error(w, "bad body", http.StatusBadRequest)
		return "", false
	}
	return string(b), true
}
