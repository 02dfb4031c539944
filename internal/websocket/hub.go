package websocket

import (
	"context"
	"log"
	"sync"

	wstypes "toolhub-service/internal/domain/websocket"
	"toolhub-service/internal/pkg/identity"
)

type Hub struct {
	// Registered clients by identity ID
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	// Registration/unregistration
	Register   chan *Client
	unregister chan *Client

	// Broadcasting
	broadcast chan *BroadcastMessage

	// Auth dependency
	verifier *identity.Verifier
}

type BroadcastMessage struct {
	IdentityIDs []int64
	Channel     wstypes.ChannelType
	Message     *wstypes.WSMessage
}

func NewHub(verifier *identity.Verifier) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		Register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
		verifier:   verifier,
	}
}

// AuthenticateClient validates the identity token and returns the
// authenticated client's credentials.
func (h *Hub) AuthenticateClient(ctx context.Context, token string) (*ClientAuth, error) {
	claims, err := h.verifier.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &ClientAuth{
		IdentityID: claims.IdentityID,
		Email:      claims.Email,
		Roles:      claims.Roles,
	}, nil
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.dispatch(msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.identityID] == nil {
		h.clients[client.identityID] = make(map[*Client]bool)
	}
	h.clients[client.identityID][client] = true

	log.Printf("Client connected: identity=%d, total=%d",
		client.identityID, h.totalClients())

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"identity_id": client.identityID,
		"email":       client.email,
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.identityID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()

			if len(clients) == 0 {
				delete(h.clients, client.identityID)
			}

			log.Printf("Client disconnected: identity=%d, total=%d",
				client.identityID, h.totalClients())
		}
	}
}

// dispatch pushes a message to every subscribed client. Delivery is
// best-effort and at-most-once: clients connected after the event do
// not receive it.
func (h *Hub) dispatch(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.IdentityIDs == nil {
		// Broadcast to all
		for _, clients := range h.clients {
			for client := range clients {
				if client.IsSubscribed(msg.Channel) {
					client.SendMessage(msg.Message)
				}
			}
		}
	} else {
		// Broadcast to specific users
		for _, identityID := range msg.IdentityIDs {
			if clients, ok := h.clients[identityID]; ok {
				for client := range clients {
					if client.IsSubscribed(msg.Channel) {
						client.SendMessage(msg.Message)
					}
				}
			}
		}
	}
}

func (h *Hub) GetConnectedClients(identityID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.clients[identityID]; ok {
		return len(clients)
	}
	return 0
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

// Public methods for broadcasting

// BroadcastNotification pushes a notification to specific users, or
// to everyone when identityIDs is nil.
func (h *Hub) BroadcastNotification(identityIDs []int64, notification *wstypes.NotificationData) {
	msg := wstypes.NewMessage(wstypes.EventTypeNotification, notification)
	h.broadcast <- &BroadcastMessage{
		IdentityIDs: identityIDs,
		Channel:     wstypes.ChannelNotifications,
		Message:     msg,
	}
}

func (h *Hub) BroadcastNotificationCount(identityID int64, count int) {
	msg := wstypes.NewMessage(wstypes.EventTypeNotificationCount, map[string]interface{}{
		"unread_count": count,
	})
	h.broadcast <- &BroadcastMessage{
		IdentityIDs: []int64{identityID},
		Channel:     wstypes.ChannelNotifications,
		Message:     msg,
	}
}

func (h *Hub) BroadcastPaymentStatus(identityID int64, status *wstypes.PaymentStatusData) {
	msg := wstypes.NewMessage(wstypes.EventTypePaymentStatus, status)
	h.broadcast <- &BroadcastMessage{
		IdentityIDs: []int64{identityID},
		Channel:     wstypes.ChannelPayments,
		Message:     msg,
	}
}

func (h *Hub) BroadcastSystemAlert(alert *wstypes.SystemAlertData) {
	msg := wstypes.NewMessage(wstypes.EventTypeSystemAlert, alert)
	h.broadcast <- &BroadcastMessage{
		IdentityIDs: nil,
		Channel:     wstypes.ChannelSystem,
		Message:     msg,
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
	}
	h.clients = make(map[int64]map[*Client]bool)
}
