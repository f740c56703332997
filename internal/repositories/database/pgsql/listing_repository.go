package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/greensquarecapital/gsc_backend/internal/apperrors"
	"github.com/greensquarecapital/gsc_backend/internal/core/domain"
	portsrepo "github.com/greensquarecapital/gsc_backend/internal/core/ports/repositories"
	"github.com/greensquarecapital/gsc_backend/internal/models"
	"github.com/greensquarecapital/gsc_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const listingColumns = `listing_id, owner_id, project_name, source_use, target_use,
		country, county, postcode_prefix, funding_band, return_type, return_band,
		duration_days, project_duration_days, status, active_from, active_until,
		expected_amount_pence, paid_amount_pence, paid_at, checkout_session_id, payment_intent_id,
		created_at, created_by, last_updated_at, last_updated_by`

type PgxListingRepository struct {
	BaseRepository
}

func newPgxListingRepository(pool *pgxpool.Pool) *PgxListingRepository {
	return &PgxListingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxListingRepository implements portsrepo.ListingRepositoryWithTx
var _ portsrepo.ListingRepositoryWithTx = (*PgxListingRepository)(nil)

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (models.Listing, error) {
	var m models.Listing
	err := row.Scan(
		&m.ListingID,
		&m.OwnerID,
		&m.ProjectName,
		&m.SourceUse,
		&m.TargetUse,
		&m.Country,
		&m.County,
		&m.PostcodePrefix,
		&m.FundingBand,
		&m.ReturnType,
		&m.ReturnBand,
		&m.DurationDays,
		&m.ProjectDurationDays,
		&m.Status,
		&m.ActiveFrom,
		&m.ActiveUntil,
		&m.ExpectedAmountPence,
		&m.PaidAmountPence,
		&m.PaidAt,
		&m.CheckoutSessionID,
		&m.PaymentIntentID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxListingRepository) SaveListing(ctx context.Context, listing domain.Listing) error {
	m := mapping.ToModelListing(listing)
	query := `
		INSERT INTO listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ListingID, m.OwnerID, m.ProjectName, m.SourceUse, m.TargetUse,
		m.Country, m.County, m.PostcodePrefix, m.FundingBand, m.ReturnType, m.ReturnBand,
		m.DurationDays, m.ProjectDurationDays, m.Status, m.ActiveFrom, m.ActiveUntil,
		m.ExpectedAmountPence, m.PaidAmountPence, m.PaidAt, m.CheckoutSessionID, m.PaymentIntentID,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

const updateListingQuery = `
	UPDATE listings SET
		project_name = $2, source_use = $3, target_use = $4,
		country = $5, county = $6, postcode_prefix = $7,
		funding_band = $8, return_type = $9, return_band = $10,
		duration_days = $11, project_duration_days = $12, status = $13,
		active_from = $14, active_until = $15,
		expected_amount_pence = $16, paid_amount_pence = $17, paid_at = $18,
		checkout_session_id = $19, payment_intent_id = $20,
		last_updated_at = $21, last_updated_by = $22
	WHERE listing_id = $1;
`

func updateListingArgs(m models.Listing) []any {
	return []any{
		m.ListingID,
		m.ProjectName, m.SourceUse, m.TargetUse,
		m.Country, m.County, m.PostcodePrefix,
		m.FundingBand, m.ReturnType, m.ReturnBand,
		m.DurationDays, m.ProjectDurationDays, m.Status,
		m.ActiveFrom, m.ActiveUntil,
		m.ExpectedAmountPence, m.PaidAmountPence, m.PaidAt,
		m.CheckoutSessionID, m.PaymentIntentID,
		m.LastUpdatedAt, m.LastUpdatedBy,
	}
}

func (r *PgxListingRepository) UpdateListing(ctx context.Context, listing domain.Listing) error {
	tag, err := r.Pool.Exec(ctx, updateListingQuery, updateListingArgs(mapping.ToModelListing(listing))...)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateListingInTx updates a listing within a given transaction.
func (r *PgxListingRepository) UpdateListingInTx(ctx context.Context, tx pgx.Tx, listing domain.Listing) error {
	tag, err := tx.Exec(ctx, updateListingQuery, updateListingArgs(mapping.ToModelListing(listing))...)
	if err != nil {
		return fmt.Errorf("failed to update listing in tx: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxListingRepository) FindListingByID(ctx context.Context, listingID string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE listing_id = $1;`
	m, err := scanListing(r.Pool.QueryRow(ctx, query, listingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find listing by ID: %w", err)
	}
	listing := mapping.ToDomainListing(m)
	return &listing, nil
}

// FindListingByIDForUpdate retrieves a listing and locks the row for update.
// Must be called within a transaction.
func (r *PgxListingRepository) FindListingByIDForUpdate(ctx context.Context, tx pgx.Tx, listingID string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE listing_id = $1 FOR UPDATE;`
	m, err := scanListing(tx.QueryRow(ctx, query, listingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find listing by ID for update: %w", err)
	}
	listing := mapping.ToDomainListing(m)
	return &listing, nil
}

func (r *PgxListingRepository) ListActiveListings(ctx context.Context, now time.Time, limit int, offset int) ([]domain.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE status = $1 AND active_until > $2
		ORDER BY active_from DESC
		LIMIT $3 OFFSET $4;
	`
	rows, err := r.Pool.Query(ctx, query, models.ListingActive, now, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list active listings: %w", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

func (r *PgxListingRepository) ListListingsByOwner(ctx context.Context, ownerID string, limit int, offset int) ([]domain.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings by owner: %w", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

func collectListings(rows pgx.Rows) ([]domain.Listing, error) {
	ms := []models.Listing{}
	for rows.Next() {
		m, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing rows: %w", err)
	}
	return mapping.ToDomainListingSlice(ms), nil
}

func (r *PgxListingRepository) DeleteListing(ctx context.Context, listingID string) error {
	// listing_media rows go via ON DELETE CASCADE.
	tag, err := r.Pool.Exec(ctx, `DELETE FROM listings WHERE listing_id = $1;`, listingID)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ExpireDueListings flips every Active listing whose window has passed in a
// single statement, so concurrent sweeps cannot double-expire.
func (r *PgxListingRepository) ExpireDueListings(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE listings
		SET status = $1, last_updated_at = $2, last_updated_by = $3
		WHERE status = $4 AND active_until <= $2;
	`
	tag, err := r.Pool.Exec(ctx, query, models.ListingExpired, now, "system", models.ListingActive)
	if err != nil {
		return 0, fmt.Errorf("failed to expire due listings: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PgxListingRepository) SaveListingMedia(ctx context.Context, media domain.ListingMedia) error {
	m := mapping.ToModelListingMedia(media)
	query := `
		INSERT INTO listing_media (media_id, listing_id, file_path, media_type, uploaded_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.Pool.Exec(ctx, query, m.MediaID, m.ListingID, m.FilePath, m.MediaType, m.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to save listing media: %w", err)
	}
	return nil
}

func (r *PgxListingRepository) DeleteListingMedia(ctx context.Context, mediaID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM listing_media WHERE media_id = $1;`, mediaID)
	if err != nil {
		return fmt.Errorf("failed to delete listing media: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxListingRepository) CountListingMedia(ctx context.Context, listingID string) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM listing_media WHERE listing_id = $1;`, listingID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count listing media: %w", err)
	}
	return count, nil
}

func (r *PgxListingRepository) ListListingMedia(ctx context.Context, listingID string) ([]domain.ListingMedia, error) {
	query := `
		SELECT media_id, listing_id, file_path, media_type, uploaded_at
		FROM listing_media
		WHERE listing_id = $1
		ORDER BY uploaded_at;
	`
	rows, err := r.Pool.Query(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list listing media: %w", err)
	}
	defer rows.Close()

	ms := []models.ListingMedia{}
	for rows.Next() {
		var m models.ListingMedia
		if err := rows.Scan(&m.MediaID, &m.ListingID, &m.FilePath, &m.MediaType, &m.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan listing media row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing media rows: %w", err)
	}
	return mapping.ToDomainListingMediaSlice(ms), nil
}
