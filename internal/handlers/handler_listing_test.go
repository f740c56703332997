package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/greensquarecapital/gsc_backend/internal/apperrors"
	"github.com/greensquarecapital/gsc_backend/internal/core/domain"
	portssvc "github.com/greensquarecapital/gsc_backend/internal/core/ports/services"
	"github.com/greensquarecapital/gsc_backend/internal/dto"
	"github.com/greensquarecapital/gsc_backend/internal/handlers"
	"github.com/greensquarecapital/gsc_backend/internal/platform/config"
	"github.com/greensquarecapital/gsc_backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// --- Mock ListingService ---
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) GetListingByID(ctx context.Context, listingID string) (*domain.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingService) ListActiveListings(ctx context.Context, limit, offset int) ([]domain.Listing, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}
func (m *MockListingService) ListListingsByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Listing, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}
func (m *MockListingService) GetListingProgress(ctx context.Context, listingID string) (*dto.ListingProgressResponse, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListingProgressResponse), args.Error(1)
}
func (m *MockListingService) ListListingMedia(ctx context.Context, listingID string) ([]domain.ListingMedia, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ListingMedia), args.Error(1)
}
func (m *MockListingService) CreateListing(ctx context.Context, ownerID string, req dto.CreateListingRequest) (*domain.Listing, error) {
	args := m.Called(ctx, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingService) UpdateListing(ctx context.Context, listingID string, req dto.UpdateListingRequest, requestingUserID string) (*domain.Listing, error) {
	args := m.Called(ctx, listingID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingService) DeleteListing(ctx context.Context, listingID string, requestingUserID string) error {
	args := m.Called(ctx, listingID, requestingUserID)
	return args.Error(0)
}
func (m *MockListingService) AddListingMedia(ctx context.Context, listingID string, req dto.AddListingMediaRequest, requestingUserID string) (*domain.ListingMedia, error) {
	args := m.Called(ctx, listingID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ListingMedia), args.Error(1)
}
func (m *MockListingService) RemoveListingMedia(ctx context.Context, listingID string, mediaID string, requestingUserID string) error {
	args := m.Called(ctx, listingID, mediaID, requestingUserID)
	return args.Error(0)
}
func (m *MockListingService) ExpireDueListings(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

var _ portssvc.ListingSvcFacade = (*MockListingService)(nil)

// --- Mock InvestmentService ---
type MockInvestmentService struct {
	mock.Mock
}

func (m *MockInvestmentService) GetInvestmentByID(ctx context.Context, investmentID string, requestingUserID string) (*domain.Investment, error) {
	args := m.Called(ctx, investmentID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Investment), args.Error(1)
}
func (m *MockInvestmentService) ListInvestmentsByInvestor(ctx context.Context, investorID string, limit, offset int) ([]domain.Investment, error) {
	args := m.Called(ctx, investorID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Investment), args.Error(1)
}
func (m *MockInvestmentService) ListInvestmentsByListing(ctx context.Context, listingID string, requestingUserID string, limit, offset int) ([]domain.Investment, error) {
	args := m.Called(ctx, listingID, requestingUserID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Investment), args.Error(1)
}
func (m *MockInvestmentService) EstimateReturn(ctx context.Context, listingID string, req dto.EstimateReturnRequest) (*dto.EstimateReturnResponse, error) {
	args := m.Called(ctx, listingID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.EstimateReturnResponse), args.Error(1)
}
func (m *MockInvestmentService) CreatePledge(ctx context.Context, investorID string, req dto.CreatePledgeRequest) (*domain.Investment, error) {
	args := m.Called(ctx, investorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Investment), args.Error(1)
}
func (m *MockInvestmentService) RetractPledge(ctx context.Context, investmentID string, requestingUserID string) error {
	args := m.Called(ctx, investmentID, requestingUserID)
	return args.Error(0)
}

var _ portssvc.InvestmentSvcFacade = (*MockInvestmentService)(nil)

// --- Mock PaymentService ---
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) StartCheckout(ctx context.Context, listingID string, requestingUserID string) (*dto.StartCheckoutResponse, error) {
	args := m.Called(ctx, listingID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.StartCheckoutResponse), args.Error(1)
}
func (m *MockPaymentService) ReconcileCheckout(ctx context.Context, listingID string, sessionID string, requestingUserID string) (*domain.Listing, bool, error) {
	args := m.Called(ctx, listingID, sessionID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Listing), args.Bool(1), args.Error(2)
}
func (m *MockPaymentService) CancelCheckout(ctx context.Context, listingID string, requestingUserID string) error {
	args := m.Called(ctx, listingID, requestingUserID)
	return args.Error(0)
}
func (m *MockPaymentService) HandleWebhookEvent(ctx context.Context, payload []byte, signatureHeader string) error {
	args := m.Called(ctx, payload, signatureHeader)
	return args.Error(0)
}

var _ portssvc.PaymentSvcFacade = (*MockPaymentService)(nil)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *MockUserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	args := m.Called(ctx, userID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	args := m.Called(ctx, userID, refreshTokenHash, refreshTokenExpiryTime)
	return args.Error(0)
}
func (m *MockUserService) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
func (m *MockUserService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) FindOrCreateGoogleUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Mock TokenService ---
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
func (m *MockTokenService) GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
func (m *MockTokenService) ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error) {
	args := m.Called(ctx, userID, refreshTokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.TokenSvcFacade = (*MockTokenService)(nil)

// --- Mock GoogleOAuthHandlerService ---
type MockGoogleOAuthService struct {
	mock.Mock
}

func (m *MockGoogleOAuthService) GenerateStateString(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
func (m *MockGoogleOAuthService) GetGoogleLoginURL(ctx context.Context, state string) string {
	args := m.Called(ctx, state)
	return args.String(0)
}
func (m *MockGoogleOAuthService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}
func (m *MockGoogleOAuthService) GetUserInfo(ctx context.Context, token *oauth2.Token) (*domain.GoogleUserInfo, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GoogleUserInfo), args.Error(1)
}
func (m *MockGoogleOAuthService) ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error) {
	args := m.Called(ctx, idTokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*idtoken.Payload), args.Error(1)
}

var _ portssvc.GoogleOAuthHandlerSvcFacade = (*MockGoogleOAuthService)(nil)

// --- Test Suite Setup ---

const testJWTSecret = "test-secret-for-handler-tests"

type ListingHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockListingSvc     *MockListingService
	mockInvestmentSvc  *MockInvestmentService
	mockPaymentSvc     *MockPaymentService
	mockUserSvc        *MockUserService
	mockTokenSvc       *MockTokenService
	mockGoogleOAuthSvc *MockGoogleOAuthService
	userID             string
	authHeader         string
}

func (suite *ListingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.mockListingSvc = new(MockListingService)
	suite.mockInvestmentSvc = new(MockInvestmentService)
	suite.mockPaymentSvc = new(MockPaymentService)
	suite.mockUserSvc = new(MockUserService)
	suite.mockTokenSvc = new(MockTokenService)
	suite.mockGoogleOAuthSvc = new(MockGoogleOAuthService)

	cfg := &config.Config{
		JWTSecret:              testJWTSecret,
		JWTExpiryDuration:      time.Hour,
		JWTIssuer:              "gsc-backend-test",
		RefreshTokenCookieName: "rtid",
		RefreshTokenCookiePath: "/api/v1/auth",
	}

	services := &portssvc.ServiceContainer{
		Listing:            suite.mockListingSvc,
		Investment:         suite.mockInvestmentSvc,
		Payment:            suite.mockPaymentSvc,
		User:               suite.mockUserSvc,
		Token:              suite.mockTokenSvc,
		GoogleOAuthHandler: suite.mockGoogleOAuthSvc,
	}

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, services)

	suite.userID = uuid.NewString()
	token, err := utils.GenerateJWT(suite.userID, testJWTSecret, time.Hour, "gsc-backend-test")
	suite.Require().NoError(err)
	suite.authHeader = "Bearer " + token
}

func (suite *ListingHandlerTestSuite) doRequest(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", suite.authHeader)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *ListingHandlerTestSuite) TestCreateListing_Success() {
	listing := &domain.Listing{
		ListingID: uuid.NewString(),
		OwnerID:   suite.userID,
		SourceUse: domain.UseCommercial,
		TargetUse: domain.UseResidential,
		Status:    domain.ListingDraft,
	}

	suite.mockListingSvc.On("CreateListing", mock.Anything, suite.userID, mock.AnythingOfType("dto.CreateListingRequest")).Return(listing, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/listings", gin.H{
		"sourceUse": "COMMERCIAL",
		"targetUse": "RESIDENTIAL",
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.ListingResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(listing.ListingID, resp.ListingID)
	suite.Equal(domain.ListingDraft, resp.Status)
	suite.mockListingSvc.AssertExpectations(suite.T())
}

func (suite *ListingHandlerTestSuite) TestCreateListing_InvalidEnumRejected() {
	w := suite.doRequest(http.MethodPost, "/api/v1/listings", gin.H{
		"sourceUse": "FARMLAND",
		"targetUse": "RESIDENTIAL",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockListingSvc.AssertNotCalled(suite.T(), "CreateListing", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ListingHandlerTestSuite) TestCreateListing_Unauthenticated() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/listings", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *ListingHandlerTestSuite) TestGetListing_NotFound() {
	listingID := uuid.NewString()
	suite.mockListingSvc.On("GetListingByID", mock.Anything, listingID).Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/listings/"+listingID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ListingHandlerTestSuite) TestUpdateListing_ConflictWhenNotDraft() {
	listingID := uuid.NewString()
	suite.mockListingSvc.On("UpdateListing", mock.Anything, listingID, mock.AnythingOfType("dto.UpdateListingRequest"), suite.userID).
		Return(nil, fmt.Errorf("%w: only draft listings can be edited", apperrors.ErrInvalidState)).Once()

	w := suite.doRequest(http.MethodPut, "/api/v1/listings/"+listingID, gin.H{"projectName": "New name"})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *ListingHandlerTestSuite) TestStartCheckout_Success() {
	listingID := uuid.NewString()
	suite.mockPaymentSvc.On("StartCheckout", mock.Anything, listingID, suite.userID).Return(&dto.StartCheckoutResponse{
		ListingID:   listingID,
		SessionID:   "cs_123",
		CheckoutURL: "https://checkout.example/cs_123",
		AmountPence: 2798,
		Currency:    "GBP",
		Status:      "open",
	}, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/listings/"+listingID+"/checkout", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.StartCheckoutResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("cs_123", resp.SessionID)
	suite.Equal(int64(2798), resp.AmountPence)
}

func (suite *ListingHandlerTestSuite) TestReconcileCheckout_RequiresSessionID() {
	listingID := uuid.NewString()

	w := suite.doRequest(http.MethodPost, "/api/v1/listings/"+listingID+"/checkout/reconcile", gin.H{})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockPaymentSvc.AssertNotCalled(suite.T(), "ReconcileCheckout", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ListingHandlerTestSuite) TestReconcileCheckout_ForbiddenForNonOwner() {
	listingID := uuid.NewString()
	suite.mockPaymentSvc.On("ReconcileCheckout", mock.Anything, listingID, "cs_123", suite.userID).
		Return(nil, false, fmt.Errorf("%w: only the owner may reconcile a listing payment", apperrors.ErrForbidden)).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/listings/"+listingID+"/checkout/reconcile", gin.H{"sessionID": "cs_123"})

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *ListingHandlerTestSuite) TestReconcileCheckout_StaleSessionReportsNotApplied() {
	listingID := uuid.NewString()
	listing := &domain.Listing{ListingID: listingID, OwnerID: suite.userID, Status: domain.ListingDraft}
	suite.mockPaymentSvc.On("ReconcileCheckout", mock.Anything, listingID, "cs_old", suite.userID).
		Return(listing, false, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/listings/"+listingID+"/checkout/reconcile", gin.H{"sessionID": "cs_old"})

	// A superseded session is reported back, never surfaced as an error.
	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ReconcileCheckoutResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.False(resp.Applied)
	suite.Require().NotNil(resp.Listing)
	suite.Equal(domain.ListingDraft, resp.Listing.Status)
}

func (suite *ListingHandlerTestSuite) TestGetProgress_Success() {
	listingID := uuid.NewString()
	suite.mockListingSvc.On("GetListingProgress", mock.Anything, listingID).Return(&dto.ListingProgressResponse{
		ListingID:            listingID,
		PledgedAmountPence:   500000,
		TargetAmountPence:    2000000,
		RemainingAmountPence: 1500000,
		PercentFunded:        25,
	}, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/listings/"+listingID+"/progress", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListingProgressResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(int64(25), resp.PercentFunded)
	suite.Equal(int64(1500000), resp.RemainingAmountPence)
}

func (suite *ListingHandlerTestSuite) TestExpireDueNow_ReportsCount() {
	suite.mockListingSvc.On("ExpireDueListings", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(int64(2), nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/admin/expire-due", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"expiredCount":2`)
}

func (suite *ListingHandlerTestSuite) TestWebhook_SignatureFailureIs400() {
	payload := []byte(`{"id":"evt_1"}`)
	suite.mockPaymentSvc.On("HandleWebhookEvent", mock.Anything, payload, "bad-sig").
		Return(fmt.Errorf("%w: signature mismatch", apperrors.ErrUnauthorized)).Once()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "bad-sig")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ListingHandlerTestSuite) TestWebhook_ProcessedEventIs200() {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	suite.mockPaymentSvc.On("HandleWebhookEvent", mock.Anything, payload, "good-sig").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "good-sig")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *ListingHandlerTestSuite) TestCreatePledge_Success() {
	listingID := uuid.NewString()
	investment := &domain.Investment{
		InvestmentID:        uuid.NewString(),
		InvestorID:          suite.userID,
		ListingID:           listingID,
		AmountPence:         10000,
		ExpectedReturnPence: 700,
		ExpectedTotalPence:  10700,
		Status:              domain.InvestmentPledged,
	}

	suite.mockInvestmentSvc.On("CreatePledge", mock.Anything, suite.userID, mock.AnythingOfType("dto.CreatePledgeRequest")).Return(investment, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/investments", gin.H{
		"listingID": listingID,
		"amount":    "100.00",
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.InvestmentResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(int64(700), resp.ExpectedReturnPence)
}

func (suite *ListingHandlerTestSuite) TestRetractPledge_ConflictWhenClosed() {
	investmentID := uuid.NewString()
	suite.mockInvestmentSvc.On("RetractPledge", mock.Anything, investmentID, suite.userID).
		Return(fmt.Errorf("%w: pledges are frozen once the listing closes", apperrors.ErrInvalidState)).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/investments/"+investmentID+"/retract", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func TestListingHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ListingHandlerTestSuite))
}
