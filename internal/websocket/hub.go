package websocket

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub fans out note change events to every open connection of a user.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *userMessage
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits, or by Stop if Run never started
	running    bool
	stopped    bool
	log        *zap.Logger
	mu         sync.RWMutex
}

type userMessage struct {
	userID uuid.UUID
	data   []byte
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *userMessage, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		log:        log.Named("sync"),
	}
}

// Run processes hub events until Stop is called. It returns at once if the
// hub was already stopped or is running elsewhere.
func (h *Hub) Run() {
	h.mu.Lock()
	if h.stopped || h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	defer close(h.done) // Signal that Run() has exited

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for _, set := range h.clients {
				for client := range set {
					client.Close()
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.userID] = set
			}
			set[client] = true
			h.mu.Unlock()

			msg, _ := NewMessage(MessageTypeConnected, ConnectedPayload{UserID: client.userID.String()})
			client.Send(msg)

		case client := <-h.unregister:
			h.remove(client)

		case m := <-h.broadcast:
			h.deliver(m)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.userID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	client.Close()
}

func (h *Hub) deliver(m *userMessage) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[m.userID]))
	for client := range h.clients[m.userID] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if !client.trySend(m.data) {
			h.log.Warn("dropping slow sync client", zap.String("user_id", m.userID.String()))
			h.remove(client)
		}
	}
}

// Stop gracefully shuts down the hub and closes every client.
// It blocks until Run has returned; a hub that never ran is stopped at once.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	running := h.running
	h.mu.Unlock()

	if !running {
		close(h.done)
		return
	}
	close(h.stop)
	<-h.done // Wait for Run() to finish
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister safely unregisters a client, handling the case where the hub may be stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		// Hub already closed every client
	}
}

// NotifyNotesChanged tells every connection of userID to re-fetch its notes.
// It never blocks on slow clients.
func (h *Hub) NotifyNotesChanged(userID uuid.UUID, reason string, noteIDs []uuid.UUID) {
	ids := make([]string, len(noteIDs))
	for i, id := range noteIDs {
		ids[i] = id.String()
	}
	msg, err := NewMessage(MessageTypeNotesChanged, NotesChangedPayload{Reason: reason, NoteIDs: ids})
	if err != nil {
		h.log.Error("failed to build notes changed message", zap.Error(err))
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal notes changed message", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- &userMessage{userID: userID, data: data}:
	case <-h.done:
	}
}

// ConnectedClients returns how many connections userID currently has.
func (h *Hub) ConnectedClients(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
