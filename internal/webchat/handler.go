// Package webchat serves the embeddable chat widget and its websocket.
package webchat

import (
	"context"
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/wolfman30/salon-concierge/internal/dialog"
	"github.com/wolfman30/salon-concierge/internal/transcript"
	"github.com/wolfman30/salon-concierge/pkg/logging"
)

//go:embed widget.js
var defaultWidgetJS []byte

const historyOnConnect = 50

// Engine handles one chat turn.
type Engine interface {
	HandleMessage(ctx context.Context, sessionID, message string) dialog.Result
}

// Handler manages web chat connections and messages.
type Handler struct {
	engine     Engine
	transcript transcript.Store
	logger     *logging.Logger
	widgetJS   []byte

	mu    sync.Mutex
	conns map[string]int // sessionID -> open sockets
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string           `json:"type"` // "message", "history", "session", "pong", "error"
	Text      string           `json:"text,omitempty"`
	Role      string           `json:"role,omitempty"`
	OK        *bool            `json:"ok,omitempty"`
	Intent    string           `json:"intent,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified message for history responses.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewHandler creates a web chat handler. A nil widgetJS serves the bundled widget.
func NewHandler(engine Engine, store transcript.Store, widgetJS []byte, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if widgetJS == nil {
		widgetJS = defaultWidgetJS
	}
	return &Handler{
		engine:     engine,
		transcript: store,
		logger:     logger,
		widgetJS:   widgetJS,
		conns:      make(map[string]int),
	}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and answers each message in order.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	ctx := r.Context()
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sessionID})

	if h.transcript != nil {
		if msgs, err := h.transcript.List(ctx, sessionID, historyOnConnect); err == nil && len(msgs) > 0 {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: toHistory(msgs)})
		}
	}

	h.track(sessionID, 1)
	defer h.track(sessionID, -1)
	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" {
			continue
		}

		res := h.engine.HandleMessage(ctx, sessionID, msg.Text)
		if err := websocket.JSON.Send(conn, replyMessage(res)); err != nil {
			h.logger.Warn("webchat: failed to send reply", "session_id", sessionID, "error", err)
			return
		}
	}
}

func replyMessage(res dialog.Result) OutboundMessage {
	ok := res.OK
	return OutboundMessage{
		Type:      "message",
		Role:      transcript.RoleAssistant,
		Text:      res.Reply,
		OK:        &ok,
		Intent:    string(res.Intent),
		SessionID: res.SessionID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func (h *Handler) track(sessionID string, delta int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.conns[sessionID] + delta
	if n <= 0 {
		delete(h.conns, sessionID)
		return
	}
	h.conns[sessionID] = n
}

// ActiveSessions returns the number of sessions with an open socket.
func (h *Handler) ActiveSessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func toHistory(msgs []transcript.Message) []HistoryMessage {
	out := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, HistoryMessage{
			Role:      m.Role,
			Text:      m.Text,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		})
	}
	return out
}

// HandleWidgetJS serves the embeddable widget JavaScript.
func (h *Handler) HandleWidgetJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(h.widgetJS)
}

