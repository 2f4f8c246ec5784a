// Package changes implements the client side of the change-notification
// stream: a websocket subscriber the readiness engine uses to learn about
// external mutations of a record.
package changes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/crewdeck/crewdeck/internal/client/readiness"
	"github.com/crewdeck/crewdeck/pkg/api"
)

// Subscriber dials the server's change stream over websocket.
// It implements the readiness engine's Subscriber interface.
type Subscriber struct {
	baseURL     string
	accessToken string
	dialer      *websocket.Dialer
	logger      *slog.Logger
}

// NewSubscriber creates a websocket subscriber. baseURL is the plain HTTP
// base of the API server; the scheme is rewritten for websocket dialing.
func NewSubscriber(baseURL, accessToken string, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		baseURL:     baseURL,
		accessToken: accessToken,
		dialer:      websocket.DefaultDialer,
		logger:      logger,
	}
}

// Subscribe opens the change stream for one project. onEvent fires once
// per decoded event until the subscription is closed or the connection
// drops.
func (s *Subscriber) Subscribe(ctx context.Context, projectID string, onEvent func(api.ChangeEvent)) (readiness.Subscription, error) {
	wsURL, err := s.streamURL(projectID)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if s.accessToken != "" {
		header.Set("Authorization", "Bearer "+s.accessToken)
	}

	conn, resp, err := s.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to dial change stream (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to dial change stream: %w", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	sub := &subscription{
		conn:   conn,
		logger: s.logger,
	}
	go sub.readLoop(projectID, onEvent)

	s.logger.Debug("change stream opened", "project_id", projectID)

	return sub, nil
}

// streamURL builds the websocket URL for a project's change stream
func (s *Subscriber) streamURL(projectID string) (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/v1/projects/" + projectID + "/changes"
	return u.String(), nil
}

// subscription is one live websocket stream
type subscription struct {
	conn   *websocket.Conn
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// readLoop decodes events off the wire until the connection closes.
// Decode failures skip the message; the stream stays up.
func (s *subscription) readLoop(projectID string, onEvent func(api.ChangeEvent)) {
	for {
		var event api.ChangeEvent
		if err := s.conn.ReadJSON(&event); err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if !closed {
				s.logger.Warn("change stream read failed",
					"project_id", projectID,
					"error", err)
			}
			return
		}
		onEvent(event)
	}
}

// Close shuts the stream down. Safe to call more than once.
func (s *subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	// Best effort close handshake before dropping the connection
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.conn.Close()
}
