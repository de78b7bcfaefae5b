// Package console streams completed honeypot turns to operator dashboards
// over WebSocket.
package console

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/wolfman30/vigilante/internal/honeypot"
	"github.com/wolfman30/vigilante/pkg/logging"
)

const defaultBuffer = 32

// Frame is what subscribers receive.
type Frame struct {
	Type string              `json:"type"` // "hello", "turn", "pong"
	ID   string              `json:"id,omitempty"`
	Turn *honeypot.TurnEvent `json:"turn,omitempty"`
}

type inbound struct {
	Type string `json:"type"` // "ping"
}

type subscriber struct {
	id      string
	session string
	out     chan honeypot.TurnEvent
}

// Hub fans turn events out to connected subscribers.
type Hub struct {
	logger *logging.Logger
	buffer int

	mu   sync.RWMutex
	subs map[string]*subscriber
}

// NewHub creates a hub. Each subscriber buffers up to buffer events before
// it is disconnected.
func NewHub(buffer int, logger *logging.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{logger: logger, buffer: buffer, subs: make(map[string]*subscriber)}
}

// Publish implements honeypot.Observer. It never blocks: a subscriber whose
// buffer is full is dropped.
func (h *Hub) Publish(evt honeypot.TurnEvent) {
	var slow []*subscriber

	h.mu.RLock()
	for _, s := range h.subs {
		if s.session != "" && s.session != evt.SessionID {
			continue
		}
		select {
		case s.out <- evt:
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range slow {
		h.logger.Warn("console: dropping slow subscriber", "subscriber_id", s.id)
		h.remove(s)
	}
}

// Subscribers reports connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) add(session string) *subscriber {
	s := &subscriber{
		id:      uuid.NewString(),
		session: session,
		out:     make(chan honeypot.TurnEvent, h.buffer),
	}
	h.mu.Lock()
	h.subs[s.id] = s
	h.mu.Unlock()
	return s
}

// remove closes the subscriber's channel exactly once.
func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s.id]; !ok {
		return
	}
	delete(h.subs, s.id)
	close(s.out)
}

// HandleWebSocket upgrades and streams turns. ?session= narrows the feed to
// one session.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Hub) serveWS(conn *websocket.Conn, r *http.Request) {
	sub := h.add(strings.TrimSpace(r.URL.Query().Get("session")))
	defer h.remove(sub)

	var writeMu sync.Mutex
	send := func(f Frame) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		return websocket.JSON.Send(conn, f)
	}

	if err := send(Frame{Type: "hello", ID: sub.id}); err != nil {
		return
	}
	h.logger.Info("console: subscriber connected", "subscriber_id", sub.id, "session_filter", sub.session)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			var msg inbound
			if err := websocket.JSON.Receive(conn, &msg); err != nil {
				return
			}
			if msg.Type == "ping" {
				if err := send(Frame{Type: "pong"}); err != nil {
					return
				}
			}
		}
	}()

	for {
		select {
		case <-closed:
			h.logger.Debug("console: subscriber disconnected", "subscriber_id", sub.id)
			return
		case evt, ok := <-sub.out:
			if !ok {
				return
			}
			if err := send(Frame{Type: "turn", Turn: &evt}); err != nil {
				return
			}
		}
	}
}
