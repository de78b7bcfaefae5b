package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/vigilante/internal/reports"
	"github.com/wolfman30/vigilante/pkg/logging"
)

// ReportReader is the read side of reports.Store.
type ReportReader interface {
	Get(ctx context.Context, sessionID string) (*reports.Stored, error)
	Recent(ctx context.Context, limit int32) ([]reports.Stored, error)
}

// ReportsHandler serves persisted intelligence reports.
type ReportsHandler struct {
	store  ReportReader
	logger *logging.Logger
}

// NewReportsHandler accepts a nil store; every request then gets 503.
func NewReportsHandler(store ReportReader, logger *logging.Logger) *ReportsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReportsHandler{store: store, logger: logger}
}

func (h *ReportsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		jsonError(w, "report store not configured", http.StatusServiceUnavailable)
		return
	}
	id := chi.URLParam(r, "sessionID")
	rep, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, reports.ErrNotFound) {
			jsonError(w, "report not found", http.StatusNotFound)
			return
		}
		h.logger.Error("report lookup failed", "error", err, "session_id", id)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *ReportsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		jsonError(w, "report store not configured", http.StatusServiceUnavailable)
		return
	}
	limit := int32(20)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 200 {
			jsonError(w, "limit must be between 1 and 200", http.StatusBadRequest)
			return
		}
		limit = int32(n)
	}
	list, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("report list failed", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []reports.Stored{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": list})
}
