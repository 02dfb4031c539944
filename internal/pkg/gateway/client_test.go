package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "toolhub-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCreateOrder(t *testing.T) {
	t.Run("sends amount in minor units with basic auth", func(t *testing.T) {
		var got createOrderRequest
		var user, pass string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, _ = r.BasicAuth()
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			json.NewEncoder(w).Encode(createOrderResponse{ID: "order_remote_1"})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "key_id", "key_secret")
		id, err := c.CreateOrder(context.Background(), 499.50, "INR", "ref-1")

		require.NoError(t, err)
		assert.Equal(t, "order_remote_1", id)
		assert.Equal(t, int64(49950), got.Amount)
		assert.Equal(t, "INR", got.Currency)
		assert.Equal(t, "ref-1", got.Receipt)
		assert.Equal(t, "key_id", user)
		assert.Equal(t, "key_secret", pass)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		c := NewClient("http://unused", "k", "s")
		_, err := c.CreateOrder(context.Background(), 0, "INR", "ref")
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	})

	t.Run("rejects missing currency", func(t *testing.T) {
		c := NewClient("http://unused", "k", "s")
		_, err := c.CreateOrder(context.Background(), 10, "  ", "ref")
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	})

	t.Run("gateway error status maps to ErrGateway", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "k", "s")
		_, err := c.CreateOrder(context.Background(), 10, "INR", "ref")
		assert.ErrorIs(t, err, xerrors.ErrGateway)
	})

	t.Run("empty order id maps to ErrGateway", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(createOrderResponse{})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "k", "s")
		_, err := c.CreateOrder(context.Background(), 10, "INR", "ref")
		assert.ErrorIs(t, err, xerrors.ErrGateway)
	})

	t.Run("malformed response maps to ErrGateway", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "k", "s")
		_, err := c.CreateOrder(context.Background(), 10, "INR", "ref")
		assert.ErrorIs(t, err, xerrors.ErrGateway)
	})
}
