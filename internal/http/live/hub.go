// Package live pushes a fresh ledger summary to websocket clients after every change.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MrJamesThe3rd/pocket/internal/http/summary"
	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

const (
	writeWait   = 10 * time.Second
	pendingSize = 16
)

// Summarizer is the read side of *ledger.Service the hub needs.
type Summarizer interface {
	Summary(ctx context.Context, filter ledger.Filter) (ledger.Summary, error)
}

type Message struct {
	Type    string           `json:"type"`
	Event   ledger.EventKind `json:"event,omitempty"`
	Summary summary.Response `json:"summary"`
}

type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub tracks connected clients. It implements ledger.Notifier; events are
// queued and turned into broadcasts by Run.
type Hub struct {
	summaries Summarizer
	upgrader  websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}

	pending chan ledger.Event
}

// AllowOrigins returns an origin check accepting the listed origins, or any
// origin when the list contains "*".
func AllowOrigins(origins []string) func(r *http.Request) bool {
	if slices.Contains(origins, "*") {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
}

func NewHub(summaries Summarizer, checkOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		summaries: summaries,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[*client]struct{}),
		pending: make(chan ledger.Event, pendingSize),
	}
}

// Notify queues e for broadcast. It never blocks a write: when the queue is
// full the event is dropped, since the next broadcast carries the full summary anyway.
func (h *Hub) Notify(ctx context.Context, e ledger.Event) error {
	select {
	case h.pending <- e:
	default:
		slog.WarnContext(ctx, "live update queue full, dropping event", "kind", e.Kind)
	}

	return nil
}

// Run broadcasts queued events until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil
		case e := <-h.pending:
			h.broadcast(ctx, e)
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	// The server's read timeout would otherwise end idle connections.
	_ = conn.SetReadDeadline(time.Time{})

	c := &client{conn: conn}
	h.register(c)

	data, err := h.message(r.Context(), "initial", "")
	if err == nil {
		err = c.write(data)
	}

	if err != nil {
		slog.ErrorContext(r.Context(), "failed to send initial summary", "error", err)
		h.unregister(c)

		return
	}

	// Clients only listen; reading detects when they go away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.unregister(c)
				return
			}
		}
	}()
}

func (h *Hub) message(ctx context.Context, typ string, kind ledger.EventKind) ([]byte, error) {
	s, err := h.summaries.Summary(ctx, ledger.Filter{AccountID: ledger.AllAccounts, Type: ledger.AllTypes})
	if err != nil {
		return nil, fmt.Errorf("computing summary: %w", err)
	}

	return json.Marshal(Message{Type: typ, Event: kind, Summary: summary.ToResponse(s)})
}

func (h *Hub) broadcast(ctx context.Context, e ledger.Event) {
	if h.Clients() == 0 {
		return
	}

	data, err := h.message(ctx, "update", e.Kind)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build live update", "kind", e.Kind, "error", err)
		return
	}

	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.write(data); err != nil {
			slog.WarnContext(ctx, "dropping live client", "error", err)
			h.unregister(c)
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	slog.Debug("live client connected", "clients", n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}

	_ = c.conn.Close()

	slog.Debug("live client disconnected", "clients", n)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.mu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.mu.Unlock()

		_ = c.conn.Close()
	}
}
