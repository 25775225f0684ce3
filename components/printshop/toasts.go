package printshop

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// ToastBroadcaster fans toasts out to in-process subscribers. A subscriber
// only sees toasts for the session it registered with. Toasts without a
// session and subscribers without one never match.
type ToastBroadcaster struct {
	mu   sync.RWMutex
	subs map[int]toastSubscription
	next int
}

type toastSubscription struct {
	sessionID string
	ch        chan Toast
}

// NewToastBroadcaster creates a broadcaster.
func NewToastBroadcaster() *ToastBroadcaster {
	return &ToastBroadcaster{
		subs: make(map[int]toastSubscription),
	}
}

// Notify satisfies Notifier. The target session is read from ctx; full
// subscriber buffers drop the toast instead of blocking.
func (h *ToastBroadcaster) Notify(ctx context.Context, toast Toast) error {
	target := SessionIDFrom(ctx)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if target == "" || sub.sessionID != target {
			continue
		}
		select {
		case sub.ch <- toast:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of toasts for sessionID and a cancel func.
func (h *ToastBroadcaster) Subscribe(sessionID string) (<-chan Toast, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan Toast, 8)
	h.subs[id] = toastSubscription{sessionID: sessionID, ch: ch}
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub.ch)
		}
	}
	return ch, cancel
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams the session's toasts as
// JSON.
func (h *ToastBroadcaster) ServeWebSocket(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	toasts, cancel := h.Subscribe(sessionID)
	defer cancel()

	// the client never sends anything; reading only detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case toast, ok := <-toasts:
			if !ok {
				return
			}
			if err := conn.WriteJSON(toast); err != nil {
				return
			}
		}
	}
}

// ServeSSE streams the session's toasts as Server-Sent Events.
func (h *ToastBroadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, sessionID string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	toasts, cancel := h.Subscribe(sessionID)
	defer cancel()

	encoder := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case toast, ok := <-toasts:
			if !ok {
				return
			}
			w.Write([]byte("event: toast\ndata: "))
			if err := encoder.Encode(toast); err != nil {
				return
			}
			w.Write([]byte("\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
