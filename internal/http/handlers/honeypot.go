package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/vigilante/internal/honeypot"
	"github.com/wolfman30/vigilante/internal/intel"
	"github.com/wolfman30/vigilante/internal/session"
	"github.com/wolfman30/vigilante/pkg/logging"
)

const maxWebhookBody = 1 << 20

// TurnEngine is the subset of honeypot.Engine the transport needs.
type TurnEngine interface {
	ProcessTurn(ctx context.Context, req honeypot.TurnRequest) (*honeypot.TurnResponse, error)
	Session(ctx context.Context, id string) (*session.Session, error)
}

// HoneypotHandler exposes the turn engine over HTTP.
type HoneypotHandler struct {
	engine TurnEngine
	logger *logging.Logger
}

func NewHoneypotHandler(engine TurnEngine, logger *logging.Logger) *HoneypotHandler {
	if engine == nil {
		panic("handlers: turn engine required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &HoneypotHandler{engine: engine, logger: logger}
}

// HandleWebhook processes one counterpart message.
func (h *HoneypotHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	var req honeypot.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("webhook: undecodable body", "error", err)
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.engine.ProcessTurn(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, honeypot.ErrInvalidRequest):
		jsonError(w, strings.TrimPrefix(err.Error(), "honeypot: "), http.StatusBadRequest)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("webhook: request abandoned", "error", err, "session_id", req.SessionID)
		jsonError(w, "request timed out", http.StatusServiceUnavailable)
	default:
		h.logger.Error("webhook: turn failed", "error", err, "session_id", req.SessionID)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

type sessionView struct {
	SessionID     string       `json:"sessionId"`
	Persona       string       `json:"persona"`
	TotalMessages int          `json:"totalMessagesExchanged"`
	ScamReported  bool         `json:"scamReported"`
	Intelligence  intel.Record `json:"intelligence"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// HandleSession returns the accumulated state of a session.
func (h *HoneypotHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, err := h.engine.Session(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			jsonError(w, "session not found", http.StatusNotFound)
			return
		}
		h.logger.Error("session lookup failed", "error", err, "session_id", id)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sessionView{
		SessionID:     sess.ID,
		Persona:       sess.PersonaID,
		TotalMessages: sess.MessageCount,
		ScamReported:  sess.ScamReported,
		Intelligence:  sess.Intel,
		CreatedAt:     sess.CreatedAt,
		UpdatedAt:     sess.UpdatedAt,
	})
}
