package repositories

import (
	"context"
	"time"

	"github.com/greensquarecapital/gsc_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ListingReader defines read operations for listing data
type ListingReader interface {
	// FindListingByID retrieves a specific listing by its unique identifier.
	FindListingByID(ctx context.Context, listingID string) (*domain.Listing, error)

	// ListActiveListings retrieves a paginated list of Active listings whose
	// window has not yet passed as of now.
	ListActiveListings(ctx context.Context, now time.Time, limit int, offset int) ([]domain.Listing, error)

	// ListListingsByOwner retrieves a paginated list of an owner's listings in
	// any status.
	ListListingsByOwner(ctx context.Context, ownerID string, limit int, offset int) ([]domain.Listing, error)

	// CountListingMedia returns the number of media attachments on a listing.
	CountListingMedia(ctx context.Context, listingID string) (int, error)

	// ListListingMedia retrieves all media attachments on a listing.
	ListListingMedia(ctx context.Context, listingID string) ([]domain.ListingMedia, error)
}

// ListingWriter defines write operations for listing data
type ListingWriter interface {
	// SaveListing persists a new listing.
	SaveListing(ctx context.Context, listing domain.Listing) error

	// UpdateListing updates an existing listing's details.
	UpdateListing(ctx context.Context, listing domain.Listing) error

	// DeleteListing removes a listing and its media attachments.
	DeleteListing(ctx context.Context, listingID string) error

	// SaveListingMedia persists a new media attachment.
	SaveListingMedia(ctx context.Context, media domain.ListingMedia) error

	// DeleteListingMedia removes a single media attachment.
	DeleteListingMedia(ctx context.Context, mediaID string) error

	// ExpireDueListings flips every Active listing whose window has passed to
	// Expired in one statement and returns the number of rows affected.
	ExpireDueListings(ctx context.Context, now time.Time) (int64, error)
}

// ListingTransactionSupport defines operations that run inside a transaction
type ListingTransactionSupport interface {
	// FindListingByIDForUpdate selects a listing and locks its row for update
	// within a transaction.
	FindListingByIDForUpdate(ctx context.Context, tx pgx.Tx, listingID string) (*domain.Listing, error)

	// UpdateListingInTx updates a listing within a given transaction.
	UpdateListingInTx(ctx context.Context, tx pgx.Tx, listing domain.Listing) error
}

// ListingRepositoryFacade combines all listing-related repository interfaces
// This is a facade for clients that need access to all operations
type ListingRepositoryFacade interface {
	ListingReader
	ListingWriter
	ListingTransactionSupport
}

// ListingRepositoryWithTx extends ListingRepositoryFacade with transaction capabilities
type ListingRepositoryWithTx interface {
	ListingRepositoryFacade
	TransactionManager
}
