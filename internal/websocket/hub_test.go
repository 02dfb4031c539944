package websocket

import (
	"context"
	"testing"
	"time"

	wstypes "toolhub-service/internal/domain/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, identityID int64, email string) *Client {
	return NewClient(hub, nil, &ClientAuth{IdentityID: identityID, Email: email})
}

func TestHubKeepsServingPastSlowClient(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// A subscriber that never drains its send buffer
	slow := newTestClient(hub, 1, "slow@example.com")
	slow.Subscribe(wstypes.ChannelPayments)
	hub.Register <- slow

	// Push well past the buffer capacity; excess messages are dropped
	for i := 0; i < 2*cap(slow.send); i++ {
		hub.BroadcastPaymentStatus(1, &wstypes.PaymentStatusData{OrderID: int64(i)})
	}

	// The hub must still accept registrations
	healthy := newTestClient(hub, 2, "ok@example.com")
	healthy.Subscribe(wstypes.ChannelPayments)

	registered := make(chan struct{})
	go func() {
		hub.Register <- healthy
		close(registered)
	}()

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("hub stopped accepting registrations after a send-buffer overflow")
	}

	// And still deliver to healthy clients
	hub.BroadcastPaymentStatus(2, &wstypes.PaymentStatusData{OrderID: 999})

	select {
	case <-healthy.send:
	case <-time.After(2 * time.Second):
		t.Fatal("healthy client received nothing")
	}

	assert.Equal(t, 2, hub.TotalClients())
}

func TestSlowClientStaysConnected(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, 1, "slow@example.com")
	client.Subscribe(wstypes.ChannelNotifications)

	// Fill the buffer directly, then overflow it
	for i := 0; i <= cap(client.send); i++ {
		client.SendMessage(wstypes.NewMessage(wstypes.EventTypeNotification, nil))
	}

	// Overflow dropped the excess without closing the channel
	require.Len(t, client.send, cap(client.send))
	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeNotification, nil))
	require.Len(t, client.send, cap(client.send))
}

func TestClientCloseIsIdempotent(t *testing.T) {
	client := newTestClient(NewHub(nil), 1, "a@example.com")

	client.Close()
	client.Close()

	// Sends after close are silently discarded
	client.SendMessage(wstypes.NewMessage(wstypes.EventTypePong, nil))

	select {
	case _, open := <-client.send:
		assert.False(t, open)
	default:
		t.Fatal("send channel should be closed")
	}
}
