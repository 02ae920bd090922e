package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/inamate/graphpad/internal/engine"
)

// Hub tracks the live sessions. Each session is one websocket client
// driving its own engine; sessions never share diagram state.
type Hub struct {
	mu         sync.RWMutex
	sessions   map[string]*Client // sessionID -> client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	newEngine  func() *engine.Engine
}

// NewHub returns a hub whose sessions get engines from newEngine.
func NewHub(newEngine func() *engine.Engine) *Hub {
	if newEngine == nil {
		newEngine = func() *engine.Engine { return engine.NewEngine() }
	}
	return &Hub{
		sessions:   make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		newEngine:  newEngine,
	}
}

// Run serves registrations until ctx is cancelled, then closes every
// remaining session.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Len returns the number of live sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.sessions[client.SessionID] = client
	h.mu.Unlock()

	client.reply(0, TypeWelcome, WelcomePayload{SessionID: client.SessionID, ClientID: client.ClientID})
	slog.Info("session opened", "session", client.SessionID, "client", client.ClientID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.sessions[client.SessionID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, client.SessionID)
	h.mu.Unlock()
	client.close()

	slog.Info("session closed", "session", client.SessionID, "client", client.ClientID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.sessions {
		client.close()
		delete(h.sessions, id)
	}
	slog.Info("all sessions closed")
}
