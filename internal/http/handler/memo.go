package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"weatherdiary/internal/memo"

	"github.com/go-chi/chi/v5"
)

const defaultMemoLimit = 50

type MemoHandler struct {
	Svc *memo.Service
	Log *slog.Logger
}

type createMemoReq struct {
	Text string `json:"text"`
}

func (h *MemoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMemoReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextBody)).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	m, err := h.Svc.Save(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, logger(h.Log), err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *MemoHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultMemoLimit
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	out, err := h.Svc.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, logger(h.Log), err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MemoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	m, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, logger(h.Log), err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
