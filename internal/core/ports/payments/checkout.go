package payments

import "context"

// CheckoutSession is the provider-neutral view of a hosted checkout session.
// Status follows the provider's session lifecycle ("open", "complete",
// "expired"); PaymentStatus is "paid" once funds are captured.
type CheckoutSession struct {
	ID                string
	URL               string
	Status            string
	PaymentStatus     string
	AmountTotal       int64
	Currency          string
	PaymentIntentID   string
	ClientReferenceID string
}

// CreateSessionParams describes the checkout to open for a listing
// activation fee.
type CreateSessionParams struct {
	AmountPence int64
	Currency    string
	ProductName string
	// ClientReferenceID carries the listing id so the session can be
	// correlated back on return and via webhooks.
	ClientReferenceID string
	SuccessURL        string
	CancelURL         string
	CustomerEmail     string
}

// CheckoutProvider abstracts the hosted payment provider. The production
// implementation talks to Stripe Checkout; tests substitute a fake.
type CheckoutProvider interface {
	// CreateSession opens a new hosted checkout session.
	CreateSession(ctx context.Context, params CreateSessionParams) (*CheckoutSession, error)

	// RetrieveSession fetches the current state of an existing session.
	RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// ExpireSession asks the provider to invalidate an open session. Expiring
	// an already completed session is an error at the provider.
	ExpireSession(ctx context.Context, sessionID string) error

	// VerifyWebhookSignature checks a webhook payload against its signature
	// header and returns an error when the event cannot be trusted.
	VerifyWebhookSignature(payload []byte, signatureHeader string) error
}
