// Package chat exposes the dialog engine over HTTP JSON.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/salon-concierge/internal/dialog"
	"github.com/wolfman30/salon-concierge/internal/session"
	"github.com/wolfman30/salon-concierge/internal/transcript"
	"github.com/wolfman30/salon-concierge/pkg/logging"
)

const (
	maxBodyBytes        = 1 << 16
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Engine handles one chat turn.
type Engine interface {
	HandleMessage(ctx context.Context, sessionID, message string) dialog.Result
}

// Handler wires HTTP requests to the dialog engine.
type Handler struct {
	engine   Engine
	sessions session.Store
	history  transcript.Store
	logger   *logging.Logger
}

// NewHandler creates a chat handler. history may be nil.
func NewHandler(engine Engine, sessions session.Store, history transcript.Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{engine: engine, sessions: sessions, history: history, logger: logger}
}

// MessageRequest is the body of POST /api/chat.
type MessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// SessionResponse describes a session's dialog phase.
type SessionResponse struct {
	SessionID                string        `json:"session_id"`
	Phase                    session.Phase `json:"phase"`
	ExpectingProfile         bool          `json:"expecting_profile"`
	AskedProfileAfterBooking bool          `json:"asked_profile_after_booking"`
	LastBookingID            int64         `json:"last_booking_id,omitempty"`
	LastService              string        `json:"last_service,omitempty"`
	UpdatedAt                *time.Time    `json:"updated_at,omitempty"`
}

// HistoryResponse is the body of GET /api/chat/history.
type HistoryResponse struct {
	SessionID string               `json:"session_id"`
	Messages  []transcript.Message `json:"messages"`
}

// Message handles POST /api/chat. Every decoded turn is answered with 200;
// failures are reported through ok=false in the body.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Warn("failed to decode chat request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res := h.engine.HandleMessage(r.Context(), req.SessionID, req.Message)
	h.writeJSON(w, http.StatusOK, res)
}

// GetSession handles GET /api/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrEmptyID) {
			http.Error(w, "session id required", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to load session", "session_id", id, "error", err)
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}

	resp := SessionResponse{
		SessionID:                id,
		Phase:                    st.Phase,
		ExpectingProfile:         st.ExpectingProfile(),
		AskedProfileAfterBooking: st.AskedProfileAfterBooking(),
		LastBookingID:            st.LastBookingID,
		LastService:              st.LastService,
	}
	if !st.UpdatedAt.IsZero() {
		resp.UpdatedAt = &st.UpdatedAt
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// ResetSession handles DELETE /api/sessions/{id}. The dialog phase and the
// transcript are both dropped.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.Delete(r.Context(), id); err != nil {
		if errors.Is(err, session.ErrEmptyID) {
			http.Error(w, "session id required", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to reset session", "session_id", id, "error", err)
		http.Error(w, "Failed to reset session", http.StatusInternalServerError)
		return
	}
	if h.history != nil {
		if err := h.history.Delete(r.Context(), id); err != nil {
			h.logger.Warn("failed to delete transcript", "session_id", id, "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /api/chat/history?session_id=&limit=.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		http.Error(w, "session_id parameter required", http.StatusBadRequest)
		return
	}
	limit := int64(defaultHistoryLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 && n <= maxHistoryLimit {
			limit = n
		}
	}

	resp := HistoryResponse{SessionID: id, Messages: []transcript.Message{}}
	if h.history != nil {
		msgs, err := h.history.List(r.Context(), id, limit)
		if err != nil {
			h.logger.Error("failed to load history", "session_id", id, "error", err)
			http.Error(w, "Failed to load history", http.StatusInternalServerError)
			return
		}
		if msgs != nil {
			resp.Messages = msgs
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
