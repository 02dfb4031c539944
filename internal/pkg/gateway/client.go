package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	xerrors "toolhub-service/internal/pkg/errors"
)

// Client talks to the external payment gateway. Amounts are converted
// to the smallest currency unit before leaving the process.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

func NewClient(baseURL, keyID, keySecret string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// Secret exposes the shared key secret for signature verification.
func (c *Client) Secret() string {
	return c.keySecret
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID string `json:"id"`
}

// CreateOrder registers an order with the gateway and returns the
// remote order id. Gateway failures never carry credentials back to
// the caller.
func (c *Client) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("%w: amount must be positive", xerrors.ErrInvalidInput)
	}
	if strings.TrimSpace(currency) == "" {
		return "", fmt.Errorf("%w: currency is required", xerrors.ErrInvalidInput)
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   int64(amount * 100),
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode gateway order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: order creation failed", xerrors.ErrGateway)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: gateway returned status %d", xerrors.ErrGateway, resp.StatusCode)
	}

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: malformed gateway response", xerrors.ErrGateway)
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: gateway returned no order id", xerrors.ErrGateway)
	}

	return out.ID, nil
}
