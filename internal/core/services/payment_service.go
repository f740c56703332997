package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/greensquarecapital/gsc_backend/internal/apperrors"
	"github.com/greensquarecapital/gsc_backend/internal/core/domain"
	"github.com/greensquarecapital/gsc_backend/internal/core/ports/payments"
	portsrepo "github.com/greensquarecapital/gsc_backend/internal/core/ports/repositories"
	portssvc "github.com/greensquarecapital/gsc_backend/internal/core/ports/services"
	"github.com/greensquarecapital/gsc_backend/internal/dto"
	"github.com/greensquarecapital/gsc_backend/internal/middleware"
	"github.com/greensquarecapital/gsc_backend/internal/platform/config"
	"github.com/greensquarecapital/gsc_backend/internal/platform/tariffs"
)

const checkoutCurrency = "GBP"

// systemActor is recorded in audit fields for state changes no user initiated.
const systemActor = "system"

type paymentService struct {
	listingRepo portsrepo.ListingRepositoryWithTx
	userRepo    portsrepo.UserRepositoryFacade
	provider    payments.CheckoutProvider
	tariffs     *tariffs.Tariffs
	cfg         *config.Config
}

// NewPaymentService creates the activation-fee payment service.
func NewPaymentService(listingRepo portsrepo.ListingRepositoryWithTx, userRepo portsrepo.UserRepositoryFacade, provider payments.CheckoutProvider, tbl *tariffs.Tariffs, cfg *config.Config) portssvc.PaymentSvcFacade {
	return &paymentService{
		listingRepo: listingRepo,
		userRepo:    userRepo,
		provider:    provider,
		tariffs:     tbl,
		cfg:         cfg,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// StartCheckout prices the activation fee from the tariff tables and opens a
// hosted checkout session. An existing open session for the same priced
// amount is reused instead of minting a new one.
func (s *paymentService) StartCheckout(ctx context.Context, listingID string, requestingUserID string) (*dto.StartCheckoutResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	listing, err := s.listingRepo.FindListingByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != requestingUserID {
		return nil, fmt.Errorf("%w: only the owner may pay for a listing", apperrors.ErrForbidden)
	}
	if listing.Status != domain.ListingDraft {
		return nil, fmt.Errorf("%w: listing is not awaiting activation", apperrors.ErrInvalidState)
	}

	mediaCount, err := s.listingRepo.CountListingMedia(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.IsReadyForActivation(mediaCount) {
		return nil, fmt.Errorf("%w: listing draft is incomplete", apperrors.ErrValidation)
	}

	price, err := s.tariffs.PriceForActivation(listing.FundingBand, *listing.DurationDays)
	if err != nil {
		return nil, err
	}

	// Reuse the pending session when it is still open and was priced for the
	// same amount; edits reset correlation, so a stale session never survives
	// a changed draft.
	if listing.CheckoutSessionID != "" && listing.ExpectedAmountPence == price {
		session, err := s.provider.RetrieveSession(ctx, listing.CheckoutSessionID)
		if err == nil && session.Status == "open" && session.AmountTotal == price {
			return &dto.StartCheckoutResponse{
				ListingID:   listingID,
				SessionID:   session.ID,
				CheckoutURL: session.URL,
				AmountPence: price,
				Currency:    checkoutCurrency,
				Status:      "open",
			}, nil
		}
		// The owner paid and came back before the confirmation landed:
		// reconcile that payment now instead of charging a second fee.
		if err == nil && session.Status == "complete" {
			reconciled, applied, rErr := s.reconcileSession(ctx, listingID, session, requestingUserID)
			if rErr != nil {
				return nil, rErr
			}
			if applied || (reconciled != nil && reconciled.Status == domain.ListingActive) {
				return &dto.StartCheckoutResponse{
					ListingID:   listingID,
					SessionID:   session.ID,
					AmountPence: price,
					Currency:    checkoutCurrency,
					Status:      "complete",
				}, nil
			}
			// The completed session could not be applied to this draft; fall
			// through and open a fresh one.
		}
		if err != nil {
			logger.Warn("Could not retrieve pending checkout session, opening a new one", slog.String("error", err.Error()), slog.String("listing_id", listingID))
		}
	}

	customerEmail := ""
	if owner, err := s.userRepo.FindUserByID(ctx, listing.OwnerID); err == nil {
		customerEmail = owner.Email
	}

	session, err := s.provider.CreateSession(ctx, payments.CreateSessionParams{
		AmountPence:       price,
		Currency:          checkoutCurrency,
		ProductName:       "Listing activation fee",
		ClientReferenceID: listingID,
		SuccessURL:        s.cfg.FrontendBaseURL + "/listings/" + listingID + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         s.cfg.FrontendBaseURL + "/listings/" + listingID + "/payment/cancel",
		CustomerEmail:     customerEmail,
	})
	if err != nil {
		logger.Error("Failed to create checkout session", slog.String("error", err.Error()), slog.String("listing_id", listingID))
		return nil, err
	}

	listing.ExpectedAmountPence = price
	listing.CheckoutSessionID = session.ID
	listing.PaymentIntentID = ""
	listing.LastUpdatedAt = time.Now()
	listing.LastUpdatedBy = requestingUserID

	if err := s.listingRepo.UpdateListing(ctx, *listing); err != nil {
		return nil, err
	}

	logger.Info("Checkout session opened", slog.String("listing_id", listingID), slog.String("session_id", session.ID), slog.Int64("amount_pence", price))
	return &dto.StartCheckoutResponse{
		ListingID:   listingID,
		SessionID:   session.ID,
		CheckoutURL: session.URL,
		AmountPence: price,
		Currency:    checkoutCurrency,
		Status:      "open",
	}, nil
}

// ReconcileCheckout is the only path from Draft to Active. It re-verifies
// everything against the provider before activating. Precondition mismatches
// (unpaid session, wrong session, wrong amount) are not errors: a stale
// redirect or a replay simply reports applied=false and leaves the listing
// untouched.
func (s *paymentService) ReconcileCheckout(ctx context.Context, listingID string, sessionID string, requestingUserID string) (*domain.Listing, bool, error) {
	session, err := s.provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	return s.reconcileSession(ctx, listingID, session, requestingUserID)
}

// reconcileSession applies the verified session to the listing under a row
// lock. requestingUserID is the owner for redirect-driven reconciliation or
// systemActor for webhook-driven reconciliation, which skips the ownership
// check. The bool result reports whether this call performed the activation;
// every precondition check below short-circuits to applied=false without an
// error so replays and stale confirmations never raise.
func (s *paymentService) reconcileSession(ctx context.Context, listingID string, session *payments.CheckoutSession, requestingUserID string) (*domain.Listing, bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Funds first: an unpaid session can never activate anything.
	if session.PaymentStatus != "paid" {
		logger.Warn("Ignoring unpaid checkout session", slog.String("listing_id", listingID), slog.String("session_id", session.ID))
		return nil, false, nil
	}
	if session.ID == "" {
		logger.Warn("Ignoring checkout confirmation without a session id", slog.String("listing_id", listingID))
		return nil, false, nil
	}

	tx, err := s.listingRepo.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer s.listingRepo.Rollback(ctx, tx)

	listing, err := s.listingRepo.FindListingByIDForUpdate(ctx, tx, listingID)
	if err != nil {
		return nil, false, err
	}
	if requestingUserID != systemActor && listing.OwnerID != requestingUserID {
		return nil, false, fmt.Errorf("%w: only the owner may reconcile a listing payment", apperrors.ErrForbidden)
	}

	// Idempotent: a concurrent reconcile (owner redirect vs webhook) already
	// won the lock and activated.
	if listing.Status == domain.ListingActive {
		return listing, false, nil
	}

	if listing.CheckoutSessionID == "" {
		// An edit reset the correlation after payment started; the session no
		// longer belongs to this draft.
		logger.Warn("Listing has no pending checkout for this confirmation", slog.String("listing_id", listingID), slog.String("session_id", session.ID))
		return listing, false, nil
	}
	if listing.CheckoutSessionID != session.ID {
		logger.Warn("Checkout session superseded by a newer one",
			slog.String("listing_id", listingID),
			slog.String("session_id", session.ID),
			slog.String("pending_session_id", listing.CheckoutSessionID))
		return listing, false, nil
	}
	if session.AmountTotal != listing.ExpectedAmountPence {
		logger.Warn("Paid amount does not match the priced activation fee",
			slog.String("listing_id", listingID),
			slog.Int64("paid_pence", session.AmountTotal),
			slog.Int64("expected_pence", listing.ExpectedAmountPence))
		return listing, false, nil
	}

	now := time.Now()
	if err := listing.Activate(now); err != nil {
		// A paid listing without a duration is corrupt data, not a user error.
		logger.Error("Paid listing cannot be activated", slog.String("listing_id", listingID), slog.String("error", err.Error()))
		return nil, false, err
	}

	listing.PaidAmountPence = session.AmountTotal
	listing.PaidAt = &now
	listing.PaymentIntentID = session.PaymentIntentID
	listing.LastUpdatedAt = now
	listing.LastUpdatedBy = requestingUserID

	if err := s.listingRepo.UpdateListingInTx(ctx, tx, *listing); err != nil {
		return nil, false, err
	}
	if err := s.listingRepo.Commit(ctx, tx); err != nil {
		return nil, false, err
	}

	logger.Info("Listing activated",
		slog.String("listing_id", listing.ListingID),
		slog.String("session_id", session.ID),
		slog.Int64("paid_pence", session.AmountTotal),
		slog.Time("active_until", *listing.ActiveUntil))
	return listing, true, nil
}

// CancelCheckout abandons a pending session and returns the listing to a
// clean draft.
func (s *paymentService) CancelCheckout(ctx context.Context, listingID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	listing, err := s.listingRepo.FindListingByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.OwnerID != requestingUserID {
		return fmt.Errorf("%w: only the owner may cancel a listing checkout", apperrors.ErrForbidden)
	}
	if listing.Status != domain.ListingDraft || listing.CheckoutSessionID == "" {
		return fmt.Errorf("%w: listing has no pending checkout", apperrors.ErrInvalidState)
	}

	// Best effort at the provider; the local correlation reset is what
	// actually invalidates the session for us.
	if err := s.provider.ExpireSession(ctx, listing.CheckoutSessionID); err != nil {
		logger.Warn("Failed to expire checkout session at provider", slog.String("error", err.Error()), slog.String("session_id", listing.CheckoutSessionID))
	}

	listing.ResetPaymentCorrelation()
	listing.LastUpdatedAt = time.Now()
	listing.LastUpdatedBy = requestingUserID

	return s.listingRepo.UpdateListing(ctx, *listing)
}

type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID                string `json:"id"`
			Status            string `json:"status"`
			PaymentStatus     string `json:"payment_status"`
			AmountTotal       int64  `json:"amount_total"`
			Currency          string `json:"currency"`
			PaymentIntent     string `json:"payment_intent"`
			ClientReferenceID string `json:"client_reference_id"`
		} `json:"object"`
	} `json:"data"`
}

// HandleWebhookEvent verifies and processes a provider webhook. Signature
// failures are returned to the caller; everything after that is logged and
// swallowed so the provider stops retrying events we cannot use.
func (s *paymentService) HandleWebhookEvent(ctx context.Context, payload []byte, signatureHeader string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.provider.VerifyWebhookSignature(payload, signatureHeader); err != nil {
		return err
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		logger.Warn("Ignoring malformed webhook payload", slog.String("error", err.Error()))
		return nil
	}

	if event.Type != "checkout.session.completed" {
		logger.Debug("Ignoring webhook event", slog.String("type", event.Type), slog.String("event_id", event.ID))
		return nil
	}

	obj := event.Data.Object
	if obj.ClientReferenceID == "" {
		logger.Warn("Completed checkout session carries no listing reference", slog.String("session_id", obj.ID))
		return nil
	}

	session := &payments.CheckoutSession{
		ID:                obj.ID,
		Status:            obj.Status,
		PaymentStatus:     obj.PaymentStatus,
		AmountTotal:       obj.AmountTotal,
		Currency:          obj.Currency,
		PaymentIntentID:   obj.PaymentIntent,
		ClientReferenceID: obj.ClientReferenceID,
	}

	_, applied, err := s.reconcileSession(ctx, obj.ClientReferenceID, session, systemActor)
	if err != nil {
		logger.Error("Webhook reconciliation failed",
			slog.String("listing_id", obj.ClientReferenceID),
			slog.String("session_id", obj.ID),
			slog.String("error", err.Error()))
		return nil
	}
	if !applied {
		logger.Debug("Webhook confirmation not applied",
			slog.String("listing_id", obj.ClientReferenceID),
			slog.String("session_id", obj.ID))
	}

	return nil
}
