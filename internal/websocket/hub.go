package websocket

import (
	"log"
)

// Notification is a payload addressed to one connected user.
type Notification struct {
	UserID  uint
	Payload []byte
}

// Hub maintains the set of connected clients and routes notifications to
// them. One connection per user ID; a newer connection replaces the old one.
type Hub struct {
	clients map[uint]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Notifications aimed at a specific user.
	notify chan *Notification
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		notify:     make(chan *Notification, 256),
	}
}

// Deliver hands a notification to the hub for delivery. Non-blocking so a
// slow hub never stalls the Kafka consumer feeding it.
func (h *Hub) Deliver(n *Notification) {
	select {
	case h.notify <- n:
	default:
		log.Printf("Warning: hub notify channel is full, dropping notification for user %d", n.UserID)
	}
}

// Run starts the hub loop. It owns the clients map; all access goes through
// the channels, so no locking is needed.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if existing, ok := h.clients[client.UserID]; ok {
				// Replace the previous connection for this user.
				close(existing.send)
			}
			h.clients[client.UserID] = client
			log.Printf("Client registered: user %d", client.UserID)

		case client := <-h.unregister:
			// Only drop the stored client if it is the one unregistering;
			// it may already have been replaced by a newer connection.
			if stored, ok := h.clients[client.UserID]; ok && stored == client {
				delete(h.clients, client.UserID)
				close(client.send)
				log.Printf("Client unregistered: user %d", client.UserID)
			}

		case n := <-h.notify:
			client, ok := h.clients[n.UserID]
			if !ok {
				continue // user not connected to this instance
			}
			select {
			case client.send <- n.Payload:
			default:
				// Send buffer full: treat the client as gone.
				log.Printf("Warning: send channel for user %d is full, dropping client", n.UserID)
				close(client.send)
				delete(h.clients, n.UserID)
			}
		}
	}
}
