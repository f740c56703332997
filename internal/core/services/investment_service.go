package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/greensquarecapital/gsc_backend/internal/apperrors"
	"github.com/greensquarecapital/gsc_backend/internal/core/domain"
	portsrepo "github.com/greensquarecapital/gsc_backend/internal/core/ports/repositories"
	portssvc "github.com/greensquarecapital/gsc_backend/internal/core/ports/services"
	"github.com/greensquarecapital/gsc_backend/internal/dto"
	"github.com/greensquarecapital/gsc_backend/internal/middleware"
	"github.com/greensquarecapital/gsc_backend/internal/platform/tariffs"
	"github.com/greensquarecapital/gsc_backend/internal/utils/money"
	"github.com/google/uuid"
)

type investmentService struct {
	investmentRepo portsrepo.InvestmentRepositoryWithTx
	listingRepo    portsrepo.ListingRepositoryWithTx
	tariffs        *tariffs.Tariffs
}

// NewInvestmentService creates the pledge ledger service.
func NewInvestmentService(investmentRepo portsrepo.InvestmentRepositoryWithTx, listingRepo portsrepo.ListingRepositoryWithTx, tbl *tariffs.Tariffs) portssvc.InvestmentSvcFacade {
	return &investmentService{
		investmentRepo: investmentRepo,
		listingRepo:    listingRepo,
		tariffs:        tbl,
	}
}

var _ portssvc.InvestmentSvcFacade = (*investmentService)(nil)

// CreatePledge records a pledge against an Active listing. The expected
// return is computed from the listing's return band midpoint and frozen onto
// the pledge row; later band edits never touch existing pledges.
func (s *investmentService) CreatePledge(ctx context.Context, investorID string, req dto.CreatePledgeRequest) (*domain.Investment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	amountPence, err := money.PoundsToPence(req.Amount)
	if err != nil {
		return nil, err
	}
	if amountPence <= 0 {
		return nil, fmt.Errorf("%w: pledge amount must be positive", apperrors.ErrValidation)
	}

	listing, err := s.listingRepo.FindListingByID(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID == investorID {
		return nil, fmt.Errorf("%w: owners cannot pledge against their own listing", apperrors.ErrForbidden)
	}
	if listing.Status != domain.ListingActive {
		return nil, fmt.Errorf("%w: listing is not open for pledges", apperrors.ErrInvalidState)
	}

	// Resolve the band before opening the transaction; an unknown band is a
	// data fault that must abort, never a silent zero-return pledge.
	returnRange, err := s.tariffs.ReturnRange(listing.ReturnBand)
	if err != nil {
		logger.Error("Listing has unresolvable return band", slog.String("listing_id", listing.ListingID), slog.String("return_band", string(listing.ReturnBand)))
		return nil, err
	}
	pct := returnRange.Midpoint()

	tx, err := s.investmentRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.investmentRepo.Rollback(ctx, tx)

	// Re-check under the row lock: the expiry sweep or a concurrent
	// reconciliation may have moved the listing since the unlocked read.
	now := time.Now()
	locked, err := s.listingRepo.FindListingByIDForUpdate(ctx, tx, req.ListingID)
	if err != nil {
		return nil, err
	}
	if locked.Status != domain.ListingActive || locked.IsExpired(now) {
		return nil, fmt.Errorf("%w: listing is no longer open for pledges", apperrors.ErrInvalidState)
	}

	returnPence, totalPence := money.ReturnFor(amountPence, pct)

	investment := domain.Investment{
		InvestmentID:        uuid.NewString(),
		InvestorID:          investorID,
		ListingID:           req.ListingID,
		AmountPence:         amountPence,
		ExpectedReturnPence: returnPence,
		ExpectedTotalPence:  totalPence,
		Status:              domain.InvestmentPledged,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     investorID,
			LastUpdatedAt: now,
			LastUpdatedBy: investorID,
		},
	}

	if err := s.investmentRepo.SaveInvestmentInTx(ctx, tx, investment); err != nil {
		logger.Error("Failed to save pledge", slog.String("error", err.Error()), slog.String("listing_id", req.ListingID))
		return nil, err
	}
	if err := s.investmentRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Pledge recorded",
		slog.String("investment_id", investment.InvestmentID),
		slog.String("listing_id", req.ListingID),
		slog.Int64("amount_pence", amountPence),
		slog.Int64("expected_return_pence", returnPence))
	return &investment, nil
}

// RetractPledge cancels the investor's own pledge while the listing is still
// Active. Cancellation is a status flip; the row stays for the ledger.
func (s *investmentService) RetractPledge(ctx context.Context, investmentID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.investmentRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.investmentRepo.Rollback(ctx, tx)

	investment, err := s.investmentRepo.FindInvestmentByIDForUpdate(ctx, tx, investmentID)
	if err != nil {
		return err
	}
	if investment.InvestorID != requestingUserID {
		// Another investor's pledge is indistinguishable from a missing one.
		return fmt.Errorf("%w: pledge not found", apperrors.ErrNotFound)
	}
	if investment.Status != domain.InvestmentPledged {
		return fmt.Errorf("%w: pledge is not retractable", apperrors.ErrInvalidState)
	}

	now := time.Now()
	listing, err := s.listingRepo.FindListingByIDForUpdate(ctx, tx, investment.ListingID)
	if err != nil {
		return err
	}
	if listing.Status != domain.ListingActive || listing.IsExpired(now) {
		return fmt.Errorf("%w: pledges are frozen once the listing closes", apperrors.ErrInvalidState)
	}

	investment.Status = domain.InvestmentCancelled
	investment.LastUpdatedAt = now
	investment.LastUpdatedBy = requestingUserID

	if err := s.investmentRepo.UpdateInvestmentInTx(ctx, tx, *investment); err != nil {
		return err
	}
	if err := s.investmentRepo.Commit(ctx, tx); err != nil {
		return err
	}

	logger.Info("Pledge retracted", slog.String("investment_id", investmentID), slog.String("listing_id", investment.ListingID))
	return nil
}

func (s *investmentService) GetInvestmentByID(ctx context.Context, investmentID string, requestingUserID string) (*domain.Investment, error) {
	investment, err := s.investmentRepo.FindInvestmentByID(ctx, investmentID)
	if err != nil {
		return nil, err
	}

	if investment.InvestorID == requestingUserID {
		return investment, nil
	}

	// The listing owner may also inspect pledges against their listing.
	listing, err := s.listingRepo.FindListingByID(ctx, investment.ListingID)
	if err == nil && listing.OwnerID == requestingUserID {
		return investment, nil
	}

	// Another investor's pledge is indistinguishable from a missing one.
	return nil, fmt.Errorf("%w: pledge not found", apperrors.ErrNotFound)
}

func (s *investmentService) ListInvestmentsByInvestor(ctx context.Context, investorID string, limit, offset int) ([]domain.Investment, error) {
	investments, err := s.investmentRepo.ListInvestmentsByInvestor(ctx, investorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list pledges for investor: %w", err)
	}
	if investments == nil {
		return []domain.Investment{}, nil
	}
	return investments, nil
}

func (s *investmentService) ListInvestmentsByListing(ctx context.Context, listingID string, requestingUserID string, limit, offset int) ([]domain.Investment, error) {
	listing, err := s.listingRepo.FindListingByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != requestingUserID {
		return nil, fmt.Errorf("%w: only the listing owner may list its pledges", apperrors.ErrForbidden)
	}

	investments, err := s.investmentRepo.ListInvestmentsByListing(ctx, listingID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list pledges for listing: %w", err)
	}
	if investments == nil {
		return []domain.Investment{}, nil
	}
	return investments, nil
}

// EstimateReturn computes the projected outcome for a hypothetical pledge
// without persisting anything. It uses the same midpoint arithmetic as
// CreatePledge, so an estimate always matches the pledge that follows it.
func (s *investmentService) EstimateReturn(ctx context.Context, listingID string, req dto.EstimateReturnRequest) (*dto.EstimateReturnResponse, error) {
	amountPence, err := money.PoundsToPence(req.Amount)
	if err != nil {
		return nil, err
	}
	if amountPence <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	listing, err := s.listingRepo.FindListingByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	returnRange, err := s.tariffs.ReturnRange(listing.ReturnBand)
	if err != nil {
		return nil, err
	}
	pct := returnRange.Midpoint()

	returnPence, totalPence := money.ReturnFor(amountPence, pct)

	return &dto.EstimateReturnResponse{
		ListingID:           listingID,
		AmountPence:         amountPence,
		ReturnPercent:       pct,
		ExpectedReturnPence: returnPence,
		ExpectedTotalPence:  totalPence,
	}, nil
}
