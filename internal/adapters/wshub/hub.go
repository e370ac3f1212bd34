// Package wshub fans analysis progress out to websocket listeners.
package wshub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/coder/websocket"
	"github.com/okian/motionlab/internal/domain/model"
	"github.com/okian/motionlab/pkg/logger"
	"github.com/okian/motionlab/pkg/metrics"
)

// DefaultSendBuffer is the per-listener queue length.
const DefaultSendBuffer = 16

// Listener is one websocket connection following a client's runs.
type Listener struct {
	ID       string
	ClientID string
	Conn     *websocket.Conn
	Send     chan []byte
}

// NewListener creates a listener with the default send buffer.
func NewListener(id, clientID string, conn *websocket.Conn) *Listener {
	return &Listener{ID: id, ClientID: clientID, Conn: conn, Send: make(chan []byte, DefaultSendBuffer)}
}

// WritePump reads from the Send channel and writes to the connection until
// ctx ends, Send is closed or a write fails.
func (l *Listener) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-l.Send:
			if !ok {
				return
			}
			if err := l.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub tracks listeners by id.
type Hub struct {
	mu        sync.RWMutex
	listeners map[string]*Listener
	logger    logger.Logger
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		listeners: make(map[string]*Listener),
		logger:    logger.Get().Named("wshub"),
	}
}

// Register adds a listener.
func (h *Hub) Register(l *Listener) {
	h.mu.Lock()
	h.listeners[l.ID] = l
	n := len(h.listeners)
	h.mu.Unlock()
	metrics.UpdateProgressListeners(n)
}

// Unregister removes a listener and closes its Send channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	l, ok := h.listeners[id]
	if ok {
		close(l.Send)
		delete(h.listeners, id)
	}
	n := len(h.listeners)
	h.mu.Unlock()
	metrics.UpdateProgressListeners(n)
}

// Len returns the number of listeners.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Publish sends ev to every listener of clientID. Non-blocking: a listener
// whose buffer is full misses the event.
func (h *Hub) Publish(ctx context.Context, clientID string, ev model.ProgressEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error(ctx, "marshal progress event", logger.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, l := range h.listeners {
		if l.ClientID != clientID {
			continue
		}
		select {
		case l.Send <- data:
		default:
			h.logger.Debug(ctx, "progress event dropped", logger.String("listener", l.ID))
		}
	}
}

// CloseAll unregisters every listener.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	for id, l := range h.listeners {
		close(l.Send)
		delete(h.listeners, id)
	}
	h.mu.Unlock()
	metrics.UpdateProgressListeners(0)
}
