// Package stripecheckout implements the hosted checkout provider against the
// Stripe Checkout Sessions API over plain form-encoded HTTP.
package stripecheckout

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/greensquarecapital/gsc_backend/internal/apperrors"
	"github.com/greensquarecapital/gsc_backend/internal/core/ports/payments"
)

const apiBaseURL = "https://api.stripe.com"

type stripeSession struct {
	ID                string `json:"id"`
	URL               string `json:"url"`
	Status            string `json:"status"`
	PaymentStatus     string `json:"payment_status"`
	AmountTotal       int64  `json:"amount_total"`
	Currency          string `json:"currency"`
	PaymentIntent     string `json:"payment_intent"`
	ClientReferenceID string `json:"client_reference_id"`
}

type stripeErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the Stripe Checkout Sessions API.
type Client struct {
	apiKey        string
	webhookSecret string
	baseURL       string
	client        *http.Client
}

var _ payments.CheckoutProvider = (*Client)(nil)

// NewClient builds a checkout client from the secret API key and the webhook
// signing secret.
func NewClient(apiKey, webhookSecret string) *Client {
	return &Client{
		apiKey:        strings.TrimSpace(apiKey),
		webhookSecret: strings.TrimSpace(webhookSecret),
		baseURL:       apiBaseURL,
		client:        &http.Client{Timeout: 12 * time.Second},
	}
}

// CreateSession opens a hosted checkout session for a one-off payment.
func (c *Client) CreateSession(ctx context.Context, params payments.CreateSessionParams) (*payments.CheckoutSession, error) {
	values := url.Values{}
	values.Set("mode", "payment")
	values.Set("line_items[0][price_data][currency]", strings.ToLower(params.Currency))
	values.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.AmountPence, 10))
	values.Set("line_items[0][price_data][product_data][name]", params.ProductName)
	values.Set("line_items[0][quantity]", "1")
	values.Set("client_reference_id", params.ClientReferenceID)
	values.Set("success_url", params.SuccessURL)
	values.Set("cancel_url", params.CancelURL)
	if params.CustomerEmail != "" {
		values.Set("customer_email", params.CustomerEmail)
	}

	// Re-running checkout for the same listing must not mint duplicate
	// sessions at the provider.
	idempotencyKey := ""
	if params.ClientReferenceID != "" {
		idempotencyKey = "listing:" + params.ClientReferenceID + ":" + strconv.FormatInt(params.AmountPence, 10)
	}

	return c.doRequest(ctx, http.MethodPost, "/v1/checkout/sessions", values, idempotencyKey)
}

// RetrieveSession fetches the current state of a checkout session.
func (c *Client) RetrieveSession(ctx context.Context, sessionID string) (*payments.CheckoutSession, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: empty checkout session id", apperrors.ErrValidation)
	}
	return c.doRequest(ctx, http.MethodGet, "/v1/checkout/sessions/"+sessionID, nil, "")
}

// ExpireSession invalidates an open checkout session.
func (c *Client) ExpireSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("%w: empty checkout session id", apperrors.ErrValidation)
	}
	_, err := c.doRequest(ctx, http.MethodPost, "/v1/checkout/sessions/"+sessionID+"/expire", url.Values{}, "")
	return err
}

// VerifyWebhookSignature checks a Stripe-Signature header (t=...,v1=...)
// against the payload using the webhook signing secret.
func (c *Client) VerifyWebhookSignature(payload []byte, signatureHeader string) error {
	sigHeader := strings.TrimSpace(signatureHeader)
	if sigHeader == "" || c.webhookSecret == "" {
		return fmt.Errorf("%w: missing webhook signature", apperrors.ErrUnauthorized)
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return fmt.Errorf("%w: malformed webhook signature", apperrors.ErrUnauthorized)
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}
	return fmt.Errorf("%w: webhook signature mismatch", apperrors.ErrUnauthorized)
}

func (c *Client) doRequest(ctx context.Context, method, path string, values url.Values, idempotencyKey string) (*payments.CheckoutSession, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: stripe api key not configured", apperrors.ErrConfiguration)
	}

	body := ""
	if values != nil {
		body = values.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if values != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var stripeErr stripeErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&stripeErr); err != nil {
			return nil, fmt.Errorf("%w: stripe returned status %d", apperrors.ErrExternalService, resp.StatusCode)
		}
		message := strings.TrimSpace(stripeErr.Error.Message)
		if message == "" {
			message = "stripe request failed"
		}
		return nil, fmt.Errorf("%w: %s", apperrors.ErrExternalService, message)
	}

	var session stripeSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExternalService, err)
	}
	if session.ID == "" {
		return nil, fmt.Errorf("%w: stripe response missing session id", apperrors.ErrExternalService)
	}

	return &payments.CheckoutSession{
		ID:                session.ID,
		URL:               session.URL,
		Status:            session.Status,
		PaymentStatus:     session.PaymentStatus,
		AmountTotal:       session.AmountTotal,
		Currency:          session.Currency,
		PaymentIntentID:   session.PaymentIntent,
		ClientReferenceID: session.ClientReferenceID,
	}, nil
}

func parseSignatureHeader(header string) (string, []string, error) {
	parts := strings.Split(header, ",")
	var timestamp string
	signatures := []string{}
	for _, part := range parts {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" {
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, fmt.Errorf("invalid signature header")
	}
	return timestamp, signatures, nil
}
