package services

import (
	"context"
	"time"

	"github.com/greensquarecapital/gsc_backend/internal/core/domain"
	"github.com/greensquarecapital/gsc_backend/internal/dto"
)

// ListingReaderSvc defines read operations for listing data
type ListingReaderSvc interface {
	// GetListingByID retrieves a listing by ID.
	GetListingByID(ctx context.Context, listingID string) (*domain.Listing, error)

	// ListActiveListings retrieves a paginated list of currently Active listings.
	ListActiveListings(ctx context.Context, limit, offset int) ([]domain.Listing, error)

	// ListListingsByOwner retrieves a paginated list of an owner's listings.
	ListListingsByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Listing, error)

	// GetListingProgress reports how much has been pledged against a listing's
	// funding target. It degrades to zeros rather than failing when the
	// listing has no resolvable target.
	GetListingProgress(ctx context.Context, listingID string) (*dto.ListingProgressResponse, error)

	// ListListingMedia retrieves all media attachments on a listing.
	ListListingMedia(ctx context.Context, listingID string) ([]domain.ListingMedia, error)
}

// ListingWriterSvc defines write operations for listing data
type ListingWriterSvc interface {
	// CreateListing creates a new Draft listing owned by ownerID.
	CreateListing(ctx context.Context, ownerID string, req dto.CreateListingRequest) (*domain.Listing, error)

	// UpdateListing applies a partial edit to a Draft listing. Any edit clears
	// pending payment correlation so a stale checkout can never activate an
	// altered listing.
	UpdateListing(ctx context.Context, listingID string, req dto.UpdateListingRequest, requestingUserID string) (*domain.Listing, error)

	// DeleteListing removes a Draft listing owned by requestingUserID.
	DeleteListing(ctx context.Context, listingID string, requestingUserID string) error

	// AddListingMedia attaches an uploaded file reference to a Draft listing.
	AddListingMedia(ctx context.Context, listingID string, req dto.AddListingMediaRequest, requestingUserID string) (*domain.ListingMedia, error)

	// RemoveListingMedia detaches a media reference from a Draft listing.
	RemoveListingMedia(ctx context.Context, listingID string, mediaID string, requestingUserID string) error
}

// ListingLifecycleSvc defines background lifecycle operations
type ListingLifecycleSvc interface {
	// ExpireDueListings transitions every Active listing whose window has
	// passed to Expired and returns how many were flipped.
	ExpireDueListings(ctx context.Context, now time.Time) (int64, error)
}

// ListingSvcFacade combines all listing-related service interfaces
type ListingSvcFacade interface {
	ListingReaderSvc
	ListingWriterSvc
	ListingLifecycleSvc
}
