package services

import (
	"context"

	"github.com/greensquarecapital/gsc_backend/internal/core/domain"
	"github.com/greensquarecapital/gsc_backend/internal/dto"
)

// PaymentSvcFacade defines the activation-fee checkout and reconciliation
// operations. Reconciliation is the single authority for the Draft -> Active
// transition; nothing else may activate a listing.
type PaymentSvcFacade interface {
	// StartCheckout prices the listing's activation fee and opens (or reuses)
	// a hosted checkout session for it.
	StartCheckout(ctx context.Context, listingID string, requestingUserID string) (*dto.StartCheckoutResponse, error)

	// ReconcileCheckout verifies the completed checkout session the owner was
	// redirected back with against the listing's recorded expectations, then
	// activates the listing. Safe to call multiple times: the bool reports
	// whether this call performed the activation, and precondition mismatches
	// (unpaid, superseded session, wrong amount) return false without error.
	ReconcileCheckout(ctx context.Context, listingID string, sessionID string, requestingUserID string) (*domain.Listing, bool, error)

	// CancelCheckout abandons a pending checkout session and clears the
	// listing's payment correlation.
	CancelCheckout(ctx context.Context, listingID string, requestingUserID string) error

	// HandleWebhookEvent verifies and processes a provider webhook payload.
	// Processing failures for well-formed events are swallowed after logging
	// so the provider does not retry forever; only signature failures error.
	HandleWebhookEvent(ctx context.Context, payload []byte, signatureHeader string) error
}
