// Package realtime pushes content change notifications from the server to
// connected consoles over a websocket.
package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// TypeContentChanged is sent after every mutation and content type reload.
const TypeContentChanged = "content.changed"

// Event is one notification on the socket.
type Event struct {
	Type string `json:"type"`
}

const writeTimeout = 10 * time.Second

// Hub keeps one listener per connected socket and fans notifications out to
// all of them. Listeners that are not keeping up skip notifications; the next
// one tells them the same thing.
type Hub struct {
	mu        sync.RWMutex
	listeners map[chan Event]struct{}
	closed    bool

	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub creates a hub. A nil logger discards output.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		listeners: make(map[chan Event]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// Subscribe returns a channel receiving every broadcast. The caller must call
// Unsubscribe when done. After Close it returns a closed channel.
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, 1)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.listeners[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.listeners[ch]; ok {
		delete(h.listeners, ch)
		close(ch)
	}
}

// Broadcast sends ev to every listener without blocking.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Changed broadcasts a content.changed event.
func (h *Hub) Changed() { h.Broadcast(Event{Type: TypeContentChanged}) }

// Clients returns the number of listeners.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Close disconnects every socket. http.Server.Shutdown does not wait for
// hijacked connections, so the server calls Close before shutting down.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.listeners {
		delete(h.listeners, ch)
		close(ch)
	}
}

// ServeHTTP upgrades the request to a websocket and forwards broadcasts to it
// until either side goes away. Messages from the client are read and dropped.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch := h.Subscribe()
	defer h.Unsubscribe(ch)
	h.logger.Debug("socket connected", "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("socket disconnected", "remote", r.RemoteAddr)
			return
		case ev, ok := <-ch:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Debug("socket write failed", "remote", r.RemoteAddr, "error", err)
				return
			}
		}
	}
}
