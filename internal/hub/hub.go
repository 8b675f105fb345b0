package hub

import (
	"encoding/json"
	"sync"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client represents a single open stream of a user.
// It's essentially a channel that the SSE handler will listen to.
type Client chan []byte

// Hub tracks the open streams of every connected user.
type Hub struct {
	users  map[uint]map[Client]bool
	mu     sync.RWMutex
	closed bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		users: make(map[uint]map[Client]bool),
	}
}

// Subscribe adds a stream for userID. After Close the stream is closed right away.
func (h *Hub) Subscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(client)
		return
	}

	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[Client]bool)
	}
	h.users[userID][client] = true
}

// Unsubscribe removes a stream of userID and closes it.
func (h *Hub) Unsubscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.users[userID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // Close the channel to signal the SSE handler to stop.
			if len(clients) == 0 {
				delete(h.users, userID)
			}
		}
	}
}

// Connected reports how many streams userID has open.
func (h *Hub) Connected(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Publish sends an event to every open stream of userID.
func (h *Hub) Publish(userID uint, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.users[userID]
	if !ok {
		return nil
	}
	messageBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	for client := range clients {
		// Use a non-blocking send to prevent a slow client from blocking the hub.
		select {
		case client <- messageBytes:
		default:
			// Client channel is full; the stream handler drops it on disconnect.
		}
	}
	return nil
}

// Close ends every open stream. Stream handlers return once their channel is closed, which
// lets server shutdown finish.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true

	for userID, clients := range h.users {
		for client := range clients {
			close(client)
		}
		delete(h.users, userID)
	}
}
