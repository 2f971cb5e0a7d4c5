// Package foreground tracks the visible clients connected over WebSocket.
// Each connection is a foreground context the background worker can post
// audio requests to while it stays open.
package foreground

import (
	"context"
	"net/http"
	"sync"
	"time"

	"planetary_hour_notifier/internal/domain/audio"
	"planetary_hour_notifier/internal/infra/metrics"

	cws "github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultBufferSize = 8
	writeTimeout      = 5 * time.Second
)

// WarningSource reports whether the user should be told that alerts are
// being refused.
type WarningSource interface {
	PermissionWarning() (bool, int)
}

// WarningFunc adapts a plain function to WarningSource.
type WarningFunc func() (bool, int)

func (f WarningFunc) PermissionWarning() (bool, int) { return f() }

type client struct {
	id   string
	send chan audio.Message
}

func (c *client) ID() string { return c.id }

// Post never blocks. A full buffer drops msg.
func (c *client) Post(msg audio.Message) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Hub is the registry of connected foreground contexts.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client

	warnings       WarningSource
	originPatterns []string
	bufferSize     int
	logger         *logrus.Entry

	done      chan struct{}
	closeOnce sync.Once
}

var _ audio.ContextRegistry = (*Hub)(nil)

// NewHub creates a hub. warnings may be nil. originPatterns follows
// coder/websocket AcceptOptions; empty allows same-origin only.
func NewHub(warnings WarningSource, originPatterns []string, logger *logrus.Entry) *Hub {
	return &Hub{
		clients:        make(map[string]*client),
		warnings:       warnings,
		originPatterns: originPatterns,
		bufferSize:     defaultBufferSize,
		logger:         logger,
		done:           make(chan struct{}),
	}
}

// Contexts returns a snapshot of the connected contexts.
func (h *Hub) Contexts() []audio.ConnectedContext {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]audio.ConnectedContext, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c)
	}
	return out
}

// Len returns the number of connected contexts.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client. Connections accepted afterwards close immediately.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *Hub) add(c *client) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
	metrics.SetConnectedContexts(len(h.clients))
	return len(h.clients)
}

func (h *Hub) remove(c *client) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c.id)
	metrics.SetConnectedContexts(len(h.clients))
	return len(h.clients)
}

// ServeHTTP upgrades the request and serves the connection until either side closes it.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, &cws.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		h.logger.WithError(err).Warn("Could not accept foreground connection")
		return
	}
	defer conn.CloseNow()

	// Clients only listen; CloseRead handles control frames and cancels ctx on close.
	ctx := conn.CloseRead(r.Context())

	c := &client{id: uuid.NewString(), send: make(chan audio.Message, h.bufferSize)}
	logCtx := h.logger.WithField("context_id", c.id)
	n := h.add(c)
	logCtx.WithField("connected", n).Info("Foreground context connected")
	defer func() {
		n := h.remove(c)
		logCtx.WithField("connected", n).Info("Foreground context disconnected")
	}()

	if h.warnings != nil {
		if warn, count := h.warnings.PermissionWarning(); warn {
			c.Post(audio.Message{Type: audio.MessageTypePermissionDenied, Count: count})
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			conn.Close(cws.StatusGoingAway, "server shutting down")
			return
		case msg := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, conn, msg)
			cancel()
			if err != nil {
				logCtx.WithError(err).Warn("Could not write to foreground context")
				return
			}
		}
	}
}
