// Package web exposes the generation pipeline over an HTTP API: a generate
// endpoint that runs one pipeline invocation per request, a server-sent
// event stream of progress notices per session, and health/config probes.
package web

import (
	"sync"
	"time"
)

// LogEntry is one progress notice delivered to a session's log stream.
type LogEntry struct {
	Message   string `json:"message"`
	Level     string `json:"level"`
	Timestamp string `json:"timestamp"`
}

// Hub fans progress notices out to per-session subscribers. Publishing is
// always non-blocking: notices for sessions with no subscriber, or with a
// full buffer, are dropped so that generation never stalls on a slow or
// absent log consumer.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]chan LogEntry
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]chan LogEntry)}
}

// Subscribe registers a log channel for the session, replacing any prior
// subscriber. The caller must Unsubscribe with the returned channel when
// done.
func (h *Hub) Subscribe(sessionID string) <-chan LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.sessions[sessionID]; ok {
		close(old)
	}
	ch := make(chan LogEntry, 64)
	h.sessions[sessionID] = ch
	return ch
}

// Unsubscribe removes and closes the session's channel, but only when ch
// is still the registered subscriber. A stale teardown after the session
// has been re-subscribed (a reconnecting client reuses its session id)
// must not destroy the replacement's channel.
func (h *Hub) Unsubscribe(sessionID string, ch <-chan LogEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cur, ok := h.sessions[sessionID]
	if !ok || (<-chan LogEntry)(cur) != ch {
		return
	}
	close(cur)
	delete(h.sessions, sessionID)
}

// Publish delivers a notice to the session's subscriber, if any.
func (h *Hub) Publish(sessionID, level, message string) {
	if sessionID == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	// Sent under the lock so Unsubscribe cannot close the channel mid-send.
	select {
	case ch <- LogEntry{
		Message:   message,
		Level:     level,
		Timestamp: time.Now().Format("15:04:05"),
	}:
	default:
	}
}
