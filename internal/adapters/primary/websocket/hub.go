package websocket

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/tickety/marketplace-backend/internal/core/domain"
	"github.com/tickety/marketplace-backend/internal/core/ports"
)

// Hub maintains the set of active Clients and broadcasts messages to them.
type Hub struct {
	// Clients maps account IDs to their active connections
	// A single account can have multiple connections (multiple tabs/devices)
	clients map[uuid.UUID]map[*Client]bool

	// Rooms maps event IDs to subscribed clients
	rooms map[int64]map[*Client]bool

	// Broadcast channel for marketplace activity
	broadcast chan domain.Activity

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// mu protects the clients and rooms maps
	mu sync.RWMutex

	// logger for the hub
	logger *slog.Logger
}

// Ensure Hub implements the ActivityBroadcaster interface.
var _ ports.ActivityBroadcaster = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		rooms:      make(map[int64]map[*Client]bool),
		broadcast:  make(chan domain.Activity, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Broadcast sends an activity to the hub's internal broadcast channel.
// This method implements the ports.ActivityBroadcaster interface.
func (h *Hub) Broadcast(activity domain.Activity) error {
	select {
	case h.broadcast <- activity:
		return nil
	default:
		h.logger.Warn("broadcast channel full, dropping activity",
			"activity_type", activity.Type,
			"event_id", activity.EventID,
		)
		return nil
	}
}

// Run starts the hub's event loop. This MUST be run as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case activity := <-h.broadcast:
			h.broadcastActivity(activity)
		}
	}
}

// registerClient adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.AccountID] == nil {
		h.clients[client.AccountID] = make(map[*Client]bool)
	}
	h.clients[client.AccountID][client] = true

	h.logger.Info("client registered",
		"account_id", client.AccountID,
		"total_connections", len(h.clients[client.AccountID]),
	)
}

// unregisterClient removes a client from the hub and all rooms
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Get subscriptions before removing from maps
	subscriptions := client.GetSubscriptions()

	// 1. Remove from the global user map
	if userClients, ok := h.clients[client.AccountID]; ok {
		if _, exists := userClients[client]; exists {
			delete(userClients, client)
			if len(userClients) == 0 {
				delete(h.clients, client.AccountID)
			}
		}
	}

	// 2. Remove from all subscribed rooms
	for _, eventID := range subscriptions {
		if room, ok := h.rooms[eventID]; ok {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, eventID)
			}
		}
	}

	// 3. Safely close the send channel
	client.CloseSend()

	h.logger.Info("client unregistered",
		"account_id", client.AccountID,
	)
}

// broadcastActivity sends an activity to all clients subscribed to the event
func (h *Hub) broadcastActivity(activity domain.Activity) {
	h.mu.RLock()
	room, ok := h.rooms[activity.EventID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// Copy the client list to avoid holding the lock while sending
	clients := make([]*Client, 0, len(room))
	for client := range room {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	h.logger.Debug("broadcasting activity",
		"activity_type", activity.Type,
		"event_id", activity.EventID,
		"client_count", len(clients),
	)

	// Send to each client
	for _, client := range clients {
		select {
		case client.Send <- activity:
			// Successfully queued
		default:
			// Client's send buffer is full, unregister them
			h.logger.Warn("client send buffer full, unregistering",
				"account_id", client.AccountID,
			)
			h.Unregister <- client
		}
	}
}

// subscribeClientToEvent adds a client to an event's room
func (h *Hub) subscribeClientToEvent(client *Client, eventID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[eventID] == nil {
		h.rooms[eventID] = make(map[*Client]bool)
	}
	h.rooms[eventID][client] = true
	client.AddSubscription(eventID)

	h.logger.Debug("client subscribed to event",
		"account_id", client.AccountID,
		"event_id", eventID,
	)
}

// unsubscribeClientFromEvent removes a client from an event's room
func (h *Hub) unsubscribeClientFromEvent(client *Client, eventID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[eventID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, eventID)
		}
	}
	client.RemoveSubscription(eventID)

	h.logger.Debug("client unsubscribed from event",
		"account_id", client.AccountID,
		"event_id", eventID,
	)
}

// GetClientCount returns the total number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, userClients := range h.clients {
		count += len(userClients)
	}
	return count
}

// GetRoomCount returns the number of active rooms
func (h *Hub) GetRoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// GetClientsInRoom returns the number of clients subscribed to an event
func (h *Hub) GetClientsInRoom(eventID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, ok := h.rooms[eventID]; ok {
		return len(room)
	}
	return 0
}

// IsAccountConnected checks if an account has any active connections
func (h *Hub) IsAccountConnected(accountID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.clients[accountID]
	return ok && len(clients) > 0
}

// SendToAccount sends an activity directly to a specific account (all their connections)
func (h *Hub) SendToAccount(accountID uuid.UUID, activity domain.Activity) {
	h.mu.RLock()
	clients, ok := h.clients[accountID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// Copy client list
	clientList := make([]*Client, 0, len(clients))
	for client := range clients {
		clientList = append(clientList, client)
	}
	h.mu.RUnlock()

	// Send to all the account's connections
	for _, client := range clientList {
		select {
		case client.Send <- activity:
		default:
			// Buffer full, skip this connection
		}
	}
}
