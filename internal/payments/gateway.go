package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"cinely/internal/bookings"
	"cinely/internal/shared/config"
)

// GatewayClient talks to the hosted checkout API of the payment gateway.
// It implements bookings.CheckoutGateway.
type GatewayClient struct {
	baseURL   string
	returnURL string
	currency  string
	client    *http.Client
}

func NewGatewayClient(cfg config.PaymentConfig) *GatewayClient {
	return &GatewayClient{
		baseURL:   cfg.GatewayBaseURL,
		returnURL: cfg.ReturnURL,
		currency:  cfg.Currency,
		client: &http.Client{
			Timeout: cfg.GatewayTimeout,
		},
	}
}

type checkoutRequest struct {
	TransactionRef string `json:"transaction_ref"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Description    string `json:"description"`
	CustomerEmail  string `json:"customer_email"`
	ReturnURL      string `json:"return_url"`
}

type checkoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

// CreateCheckout opens a checkout session and returns the redirect URL.
// Timeouts map to bookings.ErrGatewayTimeout so callers can retry without
// losing the seat hold.
func (g *GatewayClient) CreateCheckout(ctx context.Context, order *bookings.Order, booking *bookings.Booking) (string, error) {
	payload := checkoutRequest{
		TransactionRef: order.TxnRef,
		Amount:         order.TotalPrice,
		Currency:       g.currency,
		Description:    fmt.Sprintf("Booking %s, %d seat(s)", booking.Ref, booking.TotalSeats),
		CustomerEmail:  booking.CustomerEmail,
		ReturnURL:      g.returnURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/checkout", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", bookings.ErrGatewayTimeout
		}
		return "", fmt.Errorf("checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var decoded checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode checkout response: %w", err)
	}
	if decoded.CheckoutURL == "" {
		return "", fmt.Errorf("gateway returned an empty checkout URL")
	}
	return decoded.CheckoutURL, nil
}

func isTimeout(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Timeout()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

var _ bookings.CheckoutGateway = (*GatewayClient)(nil)
