package stripecheckout

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/greensquarecapital/gsc_backend/internal/apperrors"
	"github.com/greensquarecapital/gsc_backend/internal/core/ports/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signPayload(secret, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "." + string(payload)))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	c := NewClient("sk_test_x", "whsec_secret")
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	sig := signPayload("whsec_secret", "1700000000", payload)

	header := fmt.Sprintf("t=1700000000,v1=%s", sig)
	assert.NoError(t, c.VerifyWebhookSignature(payload, header))

	// Extra unknown schemes are tolerated as long as one v1 matches.
	header = fmt.Sprintf("t=1700000000,v0=garbage,v1=%s", sig)
	assert.NoError(t, c.VerifyWebhookSignature(payload, header))

	err := c.VerifyWebhookSignature(payload, "t=1700000000,v1=deadbeef")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	err = c.VerifyWebhookSignature(payload, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	err = c.VerifyWebhookSignature(payload, "v1=missing-timestamp")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	// Tampered payload must not verify.
	err = c.VerifyWebhookSignature([]byte(`{"id":"evt_2"}`), fmt.Sprintf("t=1700000000,v1=%s", sig))
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.Equal(t, "Bearer sk_test_x", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("Idempotency-Key"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "gbp", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "3298", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "listing-1", r.PostForm.Get("client_reference_id"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cs_test_1","url":"https://checkout.stripe.com/c/pay/cs_test_1","status":"open","payment_status":"unpaid","amount_total":3298,"currency":"gbp","client_reference_id":"listing-1"}`)
	}))
	defer srv.Close()

	c := NewClient("sk_test_x", "whsec_secret")
	c.baseURL = srv.URL

	session, err := c.CreateSession(context.Background(), payments.CreateSessionParams{
		AmountPence:       3298,
		Currency:          "GBP",
		ProductName:       "Listing activation fee",
		ClientReferenceID: "listing-1",
		SuccessURL:        "https://example.com/success",
		CancelURL:         "https://example.com/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "open", session.Status)
	assert.Equal(t, int64(3298), session.AmountTotal)
}

func TestRetrieveSessionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"message":"No such checkout.session: cs_missing"}}`)
	}))
	defer srv.Close()

	c := NewClient("sk_test_x", "whsec_secret")
	c.baseURL = srv.URL

	_, err := c.RetrieveSession(context.Background(), "cs_missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrExternalService)
	assert.Contains(t, err.Error(), "No such checkout.session")
}

func TestMissingAPIKey(t *testing.T) {
	c := NewClient("", "whsec_secret")
	_, err := c.RetrieveSession(context.Background(), "cs_test_1")
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}
