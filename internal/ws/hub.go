package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/bistro-app/api/internal/events"
)

// Rooms a staff client can subscribe to.
const (
	RoomDineIn = "dine-in"
	RoomOrders = "orders"
	RoomMenu   = "menu"
)

// AllRooms is the default subscription.
var AllRooms = []string{RoomDineIn, RoomOrders, RoomMenu}

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// roomEvent is an internal struct for routing events to one room
type roomEvent struct {
	Room  string
	Event Event
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients by room name
	rooms map[string]map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *roomEvent

	// Closed when Run returns
	done chan struct{}

	// Mutex for thread-safe room access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roomEvent, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop and returns when ctx is cancelled, closing
// every client's send channel. Call it in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			seen := make(map[*Client]bool)
			for _, clients := range h.rooms {
				for client := range clients {
					if !seen[client] {
						seen[client] = true
						close(client.send)
					}
				}
			}
			h.rooms = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			for _, room := range client.rooms {
				if h.rooms[room] == nil {
					h.rooms[room] = make(map[*Client]bool)
				}
				h.rooms[room][client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			clients := h.rooms[event.Room]

			// Marshal event to JSON once
			message, err := json.Marshal(event.Event)
			if err != nil {
				h.mu.Unlock()
				continue
			}

			for client := range clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, drop it from every room
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove drops client from all of its rooms and closes its send channel once.
// Caller holds h.mu.
func (h *Hub) remove(client *Client) {
	registered := false
	for _, room := range client.rooms {
		clients, ok := h.rooms[room]
		if !ok {
			continue
		}
		if _, exists := clients[client]; exists {
			registered = true
			delete(clients, client)
			// Clean up empty rooms
			if len(clients) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	if registered {
		close(client.send)
	}
}

// Broadcast sends an event to all clients subscribed to room. It does not
// block once the hub has stopped.
func (h *Hub) Broadcast(room string, event Event) {
	select {
	case h.broadcast <- &roomEvent{Room: room, Event: event}:
	case <-h.done:
	}
}

// Publish implements events.Publisher by routing the event to the room that
// matches its type prefix.
func (h *Hub) Publish(_ context.Context, e events.Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", e.Type, err)
	}
	h.Broadcast(RoomFor(e.Type), Event{Type: e.Type, Payload: payload})
	return nil
}

// RoomFor maps an event type to its room.
func RoomFor(eventType string) string {
	switch {
	case strings.HasPrefix(eventType, "dinein."):
		return RoomDineIn
	case strings.HasPrefix(eventType, "menu."):
		return RoomMenu
	default:
		return RoomOrders
	}
}
