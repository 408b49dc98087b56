package websocket

import (
	"sync"
)

// Event is pushed to a user's open sockets when a trade involving them
// changes state or an achievement flips.
type Event struct {
	Type    string `json:"type"`
	TradeID string `json:"trade_id,omitempty"`
	Status  string `json:"status,omitempty"`
	ActorID string `json:"actor_id,omitempty"`
	Message string `json:"message,omitempty"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

func (h *Hub) Unregister(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		return
	}
	delete(h.clients[userID], client)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// Broadcast sends an event to every socket the user has open. A slow
// client's full buffer drops the event rather than blocking the sender.
func (h *Hub) Broadcast(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- event:
		default:
		}
	}
}
