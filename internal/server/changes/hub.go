// Package changes implements the server side of the change-notification
// stream: a hub fanning out readiness change events to per-project
// websocket subscribers.
package changes

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/crewdeck/crewdeck/pkg/api"
)

// Hub timing and buffer defaults
const (
	DefaultBufferSize   = 16
	DefaultPingInterval = 30 * time.Second
	DefaultWriteTimeout = 10 * time.Second
)

// Hub manages per-project websocket subscriptions and broadcasts change
// events to them. Slow subscribers are dropped rather than allowed to
// block the publisher.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	pingInterval time.Duration
	writeTimeout time.Duration

	mu    sync.RWMutex
	conns map[string]map[*subscriber]struct{} // keyed by project id
}

// subscriber is one connected websocket client
type subscriber struct {
	conn *websocket.Conn
	send chan api.ChangeEvent
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewHub creates a change-notification hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingInterval: DefaultPingInterval,
		writeTimeout: DefaultWriteTimeout,
		conns:        make(map[string]map[*subscriber]struct{}),
	}
}

// Publish broadcasts a change event for a project to all of its
// subscribers. The event id and timestamp are stamped here so every
// subscriber sees the same event.
func (h *Hub) Publish(projectID, kind string) {
	event := api.ChangeEvent{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.conns[projectID] {
		select {
		case sub.send <- event:
		default:
			// Subscriber is not draining its buffer; skip it
			h.logger.Warn("dropping change event for slow subscriber",
				"project_id", projectID,
				"kind", kind)
		}
	}
}

// SubscriberCount returns the number of live subscriptions for a project
func (h *Hub) SubscriberCount(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[projectID])
}

// ServeHTTP upgrades GET /api/v1/projects/{id}/changes to a websocket
// and streams change events until the client hangs up.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		http.Error(w, "project id is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		h.logger.Warn("websocket upgrade failed", "project_id", projectID, "error", err)
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan api.ChangeEvent, DefaultBufferSize),
		done: make(chan struct{}),
	}

	h.register(projectID, sub)
	h.logger.Debug("change subscriber connected", "project_id", projectID)

	go h.writePump(projectID, sub)
	h.readPump(sub)

	h.unregister(projectID, sub)
	h.logger.Debug("change subscriber disconnected", "project_id", projectID)
}

func (h *Hub) register(projectID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[projectID] == nil {
		h.conns[projectID] = make(map[*subscriber]struct{})
	}
	h.conns[projectID][sub] = struct{}{}
}

func (h *Hub) unregister(projectID string, sub *subscriber) {
	h.mu.Lock()
	if set, ok := h.conns[projectID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.conns, projectID)
		}
	}
	h.mu.Unlock()

	sub.close()
}

// readPump consumes inbound frames until the connection drops. Clients
// send nothing meaningful; reading is what surfaces close frames.
func (h *Hub) readPump(sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards events to the connection and pings it to keep
// intermediaries from timing the stream out.
func (h *Hub) writePump(projectID string, sub *subscriber) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sub.done:
			return
		case event := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := sub.conn.WriteJSON(event); err != nil {
				h.logger.Warn("failed to write change event",
					"project_id", projectID,
					"error", err)
				sub.close()
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sub.close()
				return
			}
		}
	}
}

// close tears the connection down once
func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
	_ = s.conn.Close()
}
