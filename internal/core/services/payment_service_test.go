package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/greensquarecapital/gsc_backend/internal/apperrors"
	"github.com/greensquarecapital/gsc_backend/internal/core/domain"
	"github.com/greensquarecapital/gsc_backend/internal/core/ports/payments"
	portssvc "github.com/greensquarecapital/gsc_backend/internal/core/ports/services"
	"github.com/greensquarecapital/gsc_backend/internal/core/services"
	"github.com/greensquarecapital/gsc_backend/internal/platform/config"
	"github.com/greensquarecapital/gsc_backend/internal/platform/tariffs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceTestSuite struct {
	suite.Suite
	mockListingRepo *MockListingRepository
	mockUserRepo    *MockUserRepository
	mockProvider    *MockCheckoutProvider
	service         portssvc.PaymentSvcFacade
}

func (suite *PaymentServiceTestSuite) SetupTest() {
	suite.mockListingRepo = new(MockListingRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockProvider = new(MockCheckoutProvider)
	cfg := &config.Config{FrontendBaseURL: "http://localhost:3000"}
	suite.service = services.NewPaymentService(suite.mockListingRepo, suite.mockUserRepo, suite.mockProvider, tariffs.Default(), cfg)
}

// completeDraft builds a draft listing ready for activation.
// Band 10000_20000 (1999p) + 14 days (799p) prices to 2798 pence.
func (suite *PaymentServiceTestSuite) completeDraft(ownerID string) *domain.Listing {
	duration := 14
	projectDuration := 180
	return &domain.Listing{
		ListingID:           uuid.NewString(),
		OwnerID:             ownerID,
		SourceUse:           domain.UseCommercial,
		TargetUse:           domain.UseResidential,
		Country:             domain.CountryEngland,
		County:              "Kent",
		PostcodePrefix:      "ME1",
		FundingBand:         domain.Band10to20,
		ReturnType:          domain.ReturnFinancialPayback,
		ReturnBand:          domain.Return5to9,
		DurationDays:        &duration,
		ProjectDurationDays: &projectDuration,
		Status:              domain.ListingDraft,
	}
}

func (suite *PaymentServiceTestSuite) TestStartCheckout_Success() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	listing := suite.completeDraft(ownerID)

	suite.mockListingRepo.On("FindListingByID", ctx, listing.ListingID).Return(listing, nil).Once()
	suite.mockListingRepo.On("CountListingMedia", ctx, listing.ListingID).Return(2, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, ownerID).Return(&domain.User{UserID: ownerID, Email: "owner@example.com"}, nil).Once()
	suite.mockProvider.On("CreateSession", ctx, mock.MatchedBy(func(p payments.CreateSessionParams) bool {
		return p.AmountPence == 2798 && p.ClientReferenceID == listing.ListingID && p.CustomerEmail == "owner@example.com"
	})).Return(&payments.CheckoutSession{ID: "cs_123", URL: "https://checkout.example/cs_123", Status: "open"}, nil).Once()
	suite.mockListingRepo.On("UpdateListing", ctx, mock.MatchedBy(func(l domain.Listing) bool {
		return l.CheckoutSessionID == "cs_123" && l.ExpectedAmountPence == 2798 && l.PaymentIntentID == ""
	})).Return(nil).Once()

	resp, err := suite.service.StartCheckout(ctx, listing.ListingID, ownerID)

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.Equal("cs_123", resp.SessionID)
	suite.Equal(int64(2798), resp.AmountPence)
	suite.Equal("GBP", resp.Currency)
	suite.Equal("open", resp.Status)
	suite.mockListingRepo.AssertExpectations(suite.T())
	suite.mockProvider.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestStartCheckout_ReusesOpenSession() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	listing := suite.completeDraft(ownerID)
	listing.CheckoutSessionID = "cs_pending"
	listing.ExpectedAmountPence = 2798

	suite.mockListingRepo.On("FindListingByID", ctx, listing.ListingID).Return(listing, nil).Once()
	suite.mockListingRepo.On("CountListingMedia", ctx, listing.ListingID).Return(1, nil).Once()
	suite.mockProvider.On("RetrieveSession", ctx, "cs_pending").Return(&payments.CheckoutSession{
		ID: "cs_pending", URL: "https://checkout.example/cs_pending", Status: "open", AmountTotal: 2798,
	}, nil).Once()

	resp, err := suite.service.StartCheckout(ctx, listing.ListingID, ownerID)

	suite.Require().NoError(err)
	suite.Equal("cs_pending", resp.SessionID)
	// No new session and no listing write on reuse.
	suite.mockProvider.AssertNotCalled(suite.T(), "CreateSession", mock.Anything, mock.Anything)
	suite.mockListingRepo.AssertNotCalled(suite.T(), "UpdateListing", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestStartCheckout_CompleteSessionReconcilesInstead() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	listing := suite.completeDraft(ownerID)
	listing.CheckoutSessionID = "cs_pending"
	listing.ExpectedAmountPence = 2798

	suite.mockListingRepo.On("FindListingByID", ctx, listing.ListingID).Return(listing, nil).Once()
	suite.mockListingRepo.On("CountListingMedia", ctx, listing.ListingID).Return(1, nil).Once()
	// The owner already paid this session and clicked checkout again before
	// the confirmation landed.
	suite.mockProvider.On("RetrieveSession", ctx, "cs_pending").Return(&payments.CheckoutSession{
		ID: "cs_pending", Status: "complete", PaymentStatus: "paid", AmountTotal: 2798, PaymentIntentID: "pi_1",
	}, nil).Once()
	suite.expectReconcileTx(ctx, listing)
	suite.mockListingRepo.On("UpdateListingInTx", ctx, mock.Anything, mock.MatchedBy(func(l domain.Listing) bool {
		return l.Status == domain.ListingActive && l.PaidAmountPence == 2798
	})).Return(nil).Once()
	suite.mockListingRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	resp, err := suite.service.StartCheckout(ctx, listing.ListingID, ownerID)

	suite.Require().NoError(err)
	suite.Equal("complete", resp.Status)
	suite.Equal("cs_pending", resp.SessionID)
	suite.Empty(resp.CheckoutURL)
	// The paid session must be reconciled, never replaced by a second charge.
	suite.mockProvider.AssertNotCalled(suite.T(), "CreateSession", mock.Anything, mock.Anything)
	suite.mockListingRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestStartCheckout_NotOwner() {
	ctx := context.Background()
	listing := suite.completeDraft(uuid.NewString())

	suite.mockListingRepo.On("FindListingByID", ctx, listing.ListingID).Return(listing, nil).Once()

	_, err := suite.service.StartCheckout(ctx, listing.ListingID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *PaymentServiceTestSuite) TestStartCheckout_IncompleteDraft() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	listing := suite.completeDraft(ownerID)
	listing.County = ""

	suite.mockListingRepo.On("FindListingByID", ctx, listing.ListingID).Return(listing, nil).Once()
	suite.mockListingRepo.On("CountListingMedia", ctx, listing.ListingID).Return(1, nil).Once()

	_, err := suite.service.StartCheckout(ctx, listing.ListingID, ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PaymentServiceTestSuite) TestStartCheckout_NoMedia() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	listing := suite.completeDraft(ownerID)

	suite.mockListingRepo.On("FindListingByID", ctx, listing.ListingID).Return(listing, nil).Once()
	suite.mockListingRepo.On("CountListingMedia", ctx, listing.ListingID).Return(0, nil).Once()

	_, err := suite.service.StartCheckout(ctx, listing.ListingID, ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// expectReconcileTx wires the transaction plumbing around a locked listing read.
func (suite *PaymentServiceTestSuite) expectReconcileTx(ctx context.Context, listing *domain.Listing) {
	suite.mockListingRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockListingRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockListingRepo.On("FindListingByIDForUpdate", ctx, mock.Anything, listing.ListingID).Return(listing, nil).Once()
}

func (suite *PaymentServiceTestSuite) TestReconcileCheckout_ActivatesListing() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	listing := suite.completeDraft(ownerID)
	listing.CheckoutSessionID = "cs_123"
	listing.ExpectedAmountPence = 2798

	session := &payments.CheckoutSession{
		ID:              "cs_123",
		Status:          "complete",
		PaymentStatus:   "paid",
		AmountTotal:     2798,
		PaymentIntentID: "pi_987",
	}

	suite.mockProvider.On("RetrieveSession", ctx, "cs_123").Return(session, nil).Once()
	suite.expectReconcileTx(ctx, listing)
	suite.mockListingRepo.On("UpdateListingInTx", ctx, mock.Anything, mock.MatchedBy(func(l domain.Listing) bool {
		return l.Status == domain.ListingActive &&
			l.PaidAmountPence == 2798 &&
			l.PaymentIntentID == "pi_987" &&
			l.ActiveFrom != nil && l.ActiveUntil != nil
	})).Return(nil).Once()
	suite.mockListingRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	activated, applied, err := suite.service.ReconcileCheckout(ctx, listing.ListingID, "cs_123", ownerID)

	suite.Require().NoError(err)
	suite.Require().NotNil(activated)
	suite.True(applied)
	suite.Equal(domain.ListingActive, activated.Status)
	suite.Require().NotNil(activated.ActiveUntil)
	suite.WithinDuration(time.Now().Add(14*24*time.Hour), *activated.ActiveUntil, time.Minute)
	suite.mockListingRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestReconcileCheckout_UnpaidSession() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	listingID := uuid.NewString()

	suite.mockProvider.On("RetrieveSession", ctx, "cs_123").Return(&payments.CheckoutSession{
		ID: "cs_123", Status: "open", PaymentStatus: "unpaid",
	}, nil).Once()

	_, applied, err := suite.service.ReconcileCheckout(ctx, listingID, "cs_123", ownerID)

	// A stale redirect with an unpaid session is a no-op, not a failure.
	suite.Require().NoError(err)
	suite.False(applied)
	// An unpaid session never even opens the transaction.
	suite.mockListingRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestReconcileCheckout_AlreadyActiveIsNoOp() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	listing := suite.completeDraft(ownerID)
	listing.CheckoutSessionID = "cs_123"
	listing.ExpectedAmountPence = 2798
	suite.Require().NoError(listing.Activate(time.Now()))

	suite.mockProvider.On("RetrieveSession", ctx, "cs_123").Return(&payments.CheckoutSession{
		ID: "cs_123", PaymentStatus: "paid", AmountTotal: 2798,
	}, nil).Once()
	suite.expectReconcileTx(ctx, listing)

	result, applied, err := suite.service.ReconcileCheckout(ctx, listing.ListingID, "cs_123", ownerID)

	suite.Require().NoError(err)
	// Replay: nothing applied this time, but the listing reads as Active.
	suite.False(applied)
	suite.Equal(domain.ListingActive, result.Status)
	suite.mockListingRepo.AssertNotCalled(suite.T(), "UpdateListingInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockListingRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestReconcileCheckout_ConcurrentCallsSingleWinner() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	draft := suite.completeDraft(ownerID)
	draft.CheckoutSessionID = "cs_123"
	draft.ExpectedAmountPence = 2798

	activated := *draft
	suite.Require().NoError(activated.Activate(time.Now()))

	session := &payments.CheckoutSession{ID: "cs_123", PaymentStatus: "paid", AmountTotal: 2798}
	suite.mockProvider.On("RetrieveSession", ctx, "cs_123").Return(session, nil).Twice()
	suite.mockListingRepo.On("Begin", ctx).Return(nil, nil).Twice()
	suite.mockListingRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	// Whichever caller takes the row lock first sees the draft; the loser
	// observes the listing the winner just activated.
	suite.mockListingRepo.On("FindListingByIDForUpdate", ctx, mock.Anything, draft.ListingID).Return(draft, nil).Once()
	suite.mockListingRepo.On("FindListingByIDForUpdate", ctx, mock.Anything, draft.ListingID).Return(&activated, nil).Once()
	suite.mockListingRepo.On("UpdateListingInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Listing")).Return(nil).Once()
	suite.mockListingRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	applies := make(chan bool, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listing, applied, err := suite.service.ReconcileCheckout(ctx, draft.ListingID, "cs_123", ownerID)
			suite.NoError(err)
			if suite.NotNil(listing) {
				suite.Equal(domain.ListingActive, listing.Status)
			}
			applies <- applied
		}()
	}
	wg.Wait()
	close(applies)

	wins := 0
	for applied := range applies {
		if applied {
			wins++
		}
	}
	suite.Equal(1, wins)
	suite.mockListingRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestReconcileCheckout_SessionMismatch() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	listing := suite.completeDraft(ownerID)
	listing.CheckoutSessionID = "cs_expected"
	listing.ExpectedAmountPence = 2798

	suite.mockProvider.On("RetrieveSession", ctx, "cs_other").Return(&payments.CheckoutSession{
		ID: "cs_other", PaymentStatus: "paid", AmountTotal: 2798,
	}, nil).Once()
	suite.expectReconcileTx(ctx, listing)

	_, applied, err := suite.service.ReconcileCheckout(ctx, listing.ListingID, "cs_other", ownerID)

	suite.Require().NoError(err)
	suite.False(applied)
	suite.Equal(domain.ListingDraft, listing.Status)
	suite.mockListingRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestReconcileCheckout_AmountMismatch() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	listing := suite.completeDraft(ownerID)
	listing.CheckoutSessionID = "cs_123"
	listing.ExpectedAmountPence = 2798

	suite.mockProvider.On("RetrieveSession", ctx, "cs_123").Return(&payments.CheckoutSession{
		ID: "cs_123", PaymentStatus: "paid", AmountTotal: 100,
	}, nil).Once()
	suite.expectReconcileTx(ctx, listing)

	_, applied, err := suite.service.ReconcileCheckout(ctx, listing.ListingID, "cs_123", ownerID)

	suite.Require().NoError(err)
	suite.False(applied)
	suite.Equal(domain.ListingDraft, listing.Status)
	suite.mockListingRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestReconcileCheckout_NoPendingSession() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	listing := suite.completeDraft(ownerID)

	suite.mockProvider.On("RetrieveSession", ctx, "cs_123").Return(&payments.CheckoutSession{
		ID: "cs_123", PaymentStatus: "paid", AmountTotal: 2798,
	}, nil).Once()
	suite.expectReconcileTx(ctx, listing)

	_, applied, err := suite.service.ReconcileCheckout(ctx, listing.ListingID, "cs_123", ownerID)

	// An edit cleared the correlation; the orphaned confirmation no-ops.
	suite.Require().NoError(err)
	suite.False(applied)
	suite.mockListingRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestReconcileCheckout_MissingDurationIsFatal() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	listing := suite.completeDraft(ownerID)
	listing.DurationDays = nil // corrupt: priced and paid without a duration
	listing.CheckoutSessionID = "cs_123"
	listing.ExpectedAmountPence = 2798

	suite.mockProvider.On("RetrieveSession", ctx, "cs_123").Return(&payments.CheckoutSession{
		ID: "cs_123", PaymentStatus: "paid", AmountTotal: 2798,
	}, nil).Once()
	suite.expectReconcileTx(ctx, listing)

	_, applied, err := suite.service.ReconcileCheckout(ctx, listing.ListingID, "cs_123", ownerID)

	// Unlike a stale confirmation, corrupt data is a real failure.
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.False(applied)
	suite.mockListingRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestCancelCheckout_ResetsCorrelation() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	listing := suite.completeDraft(ownerID)
	listing.CheckoutSessionID = "cs_123"
	listing.ExpectedAmountPence = 2798

	suite.mockListingRepo.On("FindListingByID", ctx, listing.ListingID).Return(listing, nil).Once()
	suite.mockProvider.On("ExpireSession", ctx, "cs_123").Return(nil).Once()
	suite.mockListingRepo.On("UpdateListing", ctx, mock.MatchedBy(func(l domain.Listing) bool {
		return l.CheckoutSessionID == "" && l.ExpectedAmountPence == 0 && l.Status == domain.ListingDraft
	})).Return(nil).Once()

	err := suite.service.CancelCheckout(ctx, listing.ListingID, ownerID)

	suite.Require().NoError(err)
	suite.mockListingRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestCancelCheckout_ProviderFailureStillResets() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	listing := suite.completeDraft(ownerID)
	listing.CheckoutSessionID = "cs_123"

	suite.mockListingRepo.On("FindListingByID", ctx, listing.ListingID).Return(listing, nil).Once()
	suite.mockProvider.On("ExpireSession", ctx, "cs_123").Return(errors.New("provider down")).Once()
	suite.mockListingRepo.On("UpdateListing", ctx, mock.AnythingOfType("domain.Listing")).Return(nil).Once()

	err := suite.service.CancelCheckout(ctx, listing.ListingID, ownerID)

	suite.Require().NoError(err)
}

func (suite *PaymentServiceTestSuite) TestHandleWebhookEvent_BadSignature() {
	ctx := context.Background()
	payload := []byte(`{}`)

	suite.mockProvider.On("VerifyWebhookSignature", payload, "bad").Return(fmt.Errorf("%w: signature mismatch", apperrors.ErrUnauthorized)).Once()

	err := suite.service.HandleWebhookEvent(ctx, payload, "bad")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *PaymentServiceTestSuite) TestHandleWebhookEvent_IgnoresOtherEventTypes() {
	ctx := context.Background()
	payload := []byte(`{"id":"evt_1","type":"payment_intent.created"}`)

	suite.mockProvider.On("VerifyWebhookSignature", payload, "sig").Return(nil).Once()

	err := suite.service.HandleWebhookEvent(ctx, payload, "sig")

	suite.Require().NoError(err)
	suite.mockListingRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestHandleWebhookEvent_SwallowsRejectedReconciliation() {
	ctx := context.Background()
	listingID := uuid.NewString()
	payload := []byte(fmt.Sprintf(
		`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_123","payment_status":"paid","amount_total":999,"client_reference_id":%q}}}`,
		listingID))

	listing := suite.completeDraft(uuid.NewString())
	listing.ListingID = listingID
	listing.CheckoutSessionID = "cs_123"
	listing.ExpectedAmountPence = 2798 // does not match the event's 999

	suite.mockProvider.On("VerifyWebhookSignature", payload, "sig").Return(nil).Once()
	suite.expectReconcileTx(ctx, listing)

	err := suite.service.HandleWebhookEvent(ctx, payload, "sig")

	// The mismatch is logged and swallowed so the provider stops retrying.
	suite.Require().NoError(err)
	suite.mockListingRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestHandleWebhookEvent_ActivatesViaSystemActor() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	listing := suite.completeDraft(ownerID)
	listing.CheckoutSessionID = "cs_123"
	listing.ExpectedAmountPence = 2798

	payload := []byte(fmt.Sprintf(
		`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_123","payment_status":"paid","amount_total":2798,"payment_intent":"pi_1","client_reference_id":%q}}}`,
		listing.ListingID))

	suite.mockProvider.On("VerifyWebhookSignature", payload, "sig").Return(nil).Once()
	suite.expectReconcileTx(ctx, listing)
	suite.mockListingRepo.On("UpdateListingInTx", ctx, mock.Anything, mock.MatchedBy(func(l domain.Listing) bool {
		return l.Status == domain.ListingActive && l.LastUpdatedBy == "system"
	})).Return(nil).Once()
	suite.mockListingRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	err := suite.service.HandleWebhookEvent(ctx, payload, "sig")

	suite.Require().NoError(err)
	suite.mockListingRepo.AssertExpectations(suite.T())
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
