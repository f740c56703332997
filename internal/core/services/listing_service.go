package services

import (
	"context"
	"errors"
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
	"github.com/google/uuid"
)

type listingService struct {
	listingRepo    portsrepo.ListingRepositoryWithTx
	investmentRepo portsrepo.InvestmentRepositoryFacade
	tariffs        *tariffs.Tariffs
}

// NewListingService creates a new listing service.
func NewListingService(listingRepo portsrepo.ListingRepositoryWithTx, investmentRepo portsrepo.InvestmentRepositoryFacade, tbl *tariffs.Tariffs) portssvc.ListingSvcFacade {
	return &listingService{
		listingRepo:    listingRepo,
		investmentRepo: investmentRepo,
		tariffs:        tbl,
	}
}

var _ portssvc.ListingSvcFacade = (*listingService)(nil)

func (s *listingService) CreateListing(ctx context.Context, ownerID string, req dto.CreateListingRequest) (*domain.Listing, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now()
	listing := domain.Listing{
		ListingID:           uuid.NewString(),
		OwnerID:             ownerID,
		ProjectName:         req.ProjectName,
		SourceUse:           req.SourceUse,
		TargetUse:           req.TargetUse,
		Country:             req.Country,
		County:              req.County,
		PostcodePrefix:      req.PostcodePrefix,
		FundingBand:         req.FundingBand,
		ReturnType:          req.ReturnType,
		ReturnBand:          req.ReturnBand,
		DurationDays:        req.DurationDays,
		ProjectDurationDays: req.ProjectDurationDays,
		Status:              domain.ListingDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerID,
		},
	}

	if err := s.listingRepo.SaveListing(ctx, listing); err != nil {
		logger.Error("Failed to save listing", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Listing draft created", slog.String("listing_id", listing.ListingID), slog.String("owner_id", ownerID))
	return &listing, nil
}

func (s *listingService) GetListingByID(ctx context.Context, listingID string) (*domain.Listing, error) {
	listing, err := s.listingRepo.FindListingByID(ctx, listingID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find listing", slog.String("error", err.Error()), slog.String("listing_id", listingID))
		}
		return nil, err
	}
	return listing, nil
}

func (s *listingService) ListActiveListings(ctx context.Context, limit, offset int) ([]domain.Listing, error) {
	listings, err := s.listingRepo.ListActiveListings(ctx, time.Now(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list active listings: %w", err)
	}
	if listings == nil {
		return []domain.Listing{}, nil
	}
	return listings, nil
}

func (s *listingService) ListListingsByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Listing, error) {
	listings, err := s.listingRepo.ListListingsByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings for owner: %w", err)
	}
	if listings == nil {
		return []domain.Listing{}, nil
	}
	return listings, nil
}

// UpdateListing applies a partial edit to a Draft listing. Active and Expired
// listings are immutable. Every successful edit clears payment correlation so
// a checkout priced for the old draft can never activate the new one.
func (s *listingService) UpdateListing(ctx context.Context, listingID string, req dto.UpdateListingRequest, requestingUserID string) (*domain.Listing, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	listing, err := s.listingRepo.FindListingByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != requestingUserID {
		return nil, fmt.Errorf("%w: only the owner may edit a listing", apperrors.ErrForbidden)
	}
	if listing.Status != domain.ListingDraft {
		return nil, fmt.Errorf("%w: only draft listings can be edited", apperrors.ErrInvalidState)
	}

	if req.ProjectName != nil {
		listing.ProjectName = *req.ProjectName
	}
	if req.SourceUse != nil {
		listing.SourceUse = *req.SourceUse
	}
	if req.TargetUse != nil {
		listing.TargetUse = *req.TargetUse
	}
	if req.Country != nil {
		listing.Country = *req.Country
	}
	if req.County != nil {
		listing.County = *req.County
	}
	if req.PostcodePrefix != nil {
		listing.PostcodePrefix = *req.PostcodePrefix
	}
	if req.FundingBand != nil {
		listing.FundingBand = *req.FundingBand
	}
	if req.ReturnType != nil {
		listing.ReturnType = *req.ReturnType
	}
	if req.ReturnBand != nil {
		listing.ReturnBand = *req.ReturnBand
	}
	if req.DurationDays != nil {
		listing.DurationDays = req.DurationDays
	}
	if req.ProjectDurationDays != nil {
		listing.ProjectDurationDays = req.ProjectDurationDays
	}

	listing.ResetPaymentCorrelation()
	listing.LastUpdatedAt = time.Now()
	listing.LastUpdatedBy = requestingUserID

	if err := s.listingRepo.UpdateListing(ctx, *listing); err != nil {
		logger.Error("Failed to update listing", slog.String("error", err.Error()), slog.String("listing_id", listingID))
		return nil, err
	}

	return listing, nil
}

func (s *listingService) DeleteListing(ctx context.Context, listingID string, requestingUserID string) error {
	listing, err := s.listingRepo.FindListingByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.OwnerID != requestingUserID {
		return fmt.Errorf("%w: only the owner may delete a listing", apperrors.ErrForbidden)
	}
	if listing.Status != domain.ListingDraft {
		return fmt.Errorf("%w: only draft listings can be deleted", apperrors.ErrInvalidState)
	}

	if err := s.listingRepo.DeleteListing(ctx, listingID); err != nil {
		return err
	}

	middleware.GetLoggerFromCtx(ctx).Info("Listing deleted", slog.String("listing_id", listingID))
	return nil
}

func (s *listingService) AddListingMedia(ctx context.Context, listingID string, req dto.AddListingMediaRequest, requestingUserID string) (*domain.ListingMedia, error) {
	listing, err := s.listingRepo.FindListingByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != requestingUserID {
		return nil, fmt.Errorf("%w: only the owner may attach media", apperrors.ErrForbidden)
	}
	if listing.Status != domain.ListingDraft {
		return nil, fmt.Errorf("%w: media can only be attached to draft listings", apperrors.ErrInvalidState)
	}

	// A media change is a draft edit like any other; a checkout priced against
	// the previous draft must not survive it.
	if err := s.invalidatePendingCheckout(ctx, listing, requestingUserID); err != nil {
		return nil, err
	}

	media := domain.ListingMedia{
		MediaID:    uuid.NewString(),
		ListingID:  listingID,
		FilePath:   req.FilePath,
		MediaType:  req.MediaType,
		UploadedAt: time.Now(),
	}

	if err := s.listingRepo.SaveListingMedia(ctx, media); err != nil {
		return nil, err
	}
	return &media, nil
}

func (s *listingService) RemoveListingMedia(ctx context.Context, listingID string, mediaID string, requestingUserID string) error {
	listing, err := s.listingRepo.FindListingByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.OwnerID != requestingUserID {
		return fmt.Errorf("%w: only the owner may remove media", apperrors.ErrForbidden)
	}
	if listing.Status != domain.ListingDraft {
		return fmt.Errorf("%w: media can only be removed from draft listings", apperrors.ErrInvalidState)
	}

	if err := s.invalidatePendingCheckout(ctx, listing, requestingUserID); err != nil {
		return err
	}

	return s.listingRepo.DeleteListingMedia(ctx, mediaID)
}

// invalidatePendingCheckout clears the listing's payment correlation when a
// checkout is pending and persists the reset. Called before the media change
// is stored so a failed reset leaves the old draft and its session intact.
func (s *listingService) invalidatePendingCheckout(ctx context.Context, listing *domain.Listing, requestingUserID string) error {
	if listing.CheckoutSessionID == "" && listing.ExpectedAmountPence == 0 {
		return nil
	}

	listing.ResetPaymentCorrelation()
	listing.LastUpdatedAt = time.Now()
	listing.LastUpdatedBy = requestingUserID

	if err := s.listingRepo.UpdateListing(ctx, *listing); err != nil {
		return err
	}

	middleware.GetLoggerFromCtx(ctx).Info("Pending checkout invalidated by media edit", slog.String("listing_id", listing.ListingID))
	return nil
}

func (s *listingService) ListListingMedia(ctx context.Context, listingID string) ([]domain.ListingMedia, error) {
	media, err := s.listingRepo.ListListingMedia(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if media == nil {
		return []domain.ListingMedia{}, nil
	}
	return media, nil
}

// GetListingProgress reports pledged pence against the funding target (the
// upper bound of the funding band). It degrades to zeros instead of failing:
// a listing with no resolvable band simply shows no progress.
func (s *listingService) GetListingProgress(ctx context.Context, listingID string) (*dto.ListingProgressResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	listing, err := s.listingRepo.FindListingByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	progress := &dto.ListingProgressResponse{ListingID: listing.ListingID}

	pledged, err := s.investmentRepo.SumPledgedAmount(ctx, listingID)
	if err != nil {
		logger.Error("Failed to sum pledges, reporting zero progress", slog.String("error", err.Error()), slog.String("listing_id", listingID))
		return progress, nil
	}
	progress.PledgedAmountPence = pledged

	target, ok := tariffs.FundingTargetPence(listing.FundingBand)
	if !ok || target <= 0 {
		return progress, nil
	}
	progress.TargetAmountPence = target

	remaining := target - pledged
	if remaining < 0 {
		remaining = 0
	}
	progress.RemainingAmountPence = remaining

	pct := pledged * 100 / target
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	progress.PercentFunded = pct

	return progress, nil
}

// ExpireDueListings flips every Active listing whose window has passed to
// Expired in a single statement.
func (s *listingService) ExpireDueListings(ctx context.Context, now time.Time) (int64, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	count, err := s.listingRepo.ExpireDueListings(ctx, now)
	if err != nil {
		logger.Error("Expiry sweep failed", slog.String("error", err.Error()))
		return 0, err
	}

	if count > 0 {
		logger.Info("Expiry sweep complete", slog.Int64("expired", count))
	}
	return count, nil
}
