package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/greensquarecapital/gsc_backend/internal/apperrors"
	"github.com/greensquarecapital/gsc_backend/internal/core/domain"
	portsrepo "github.com/greensquarecapital/gsc_backend/internal/core/ports/repositories"
	"github.com/greensquarecapital/gsc_backend/internal/models"
	"github.com/greensquarecapital/gsc_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const investmentColumns = `investment_id, investor_id, listing_id, amount_pence,
		expected_return_pence, expected_total_pence, status,
		created_at, created_by, last_updated_at, last_updated_by`

type PgxInvestmentRepository struct {
	BaseRepository
}

func newPgxInvestmentRepository(pool *pgxpool.Pool) *PgxInvestmentRepository {
	return &PgxInvestmentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxInvestmentRepository implements portsrepo.InvestmentRepositoryWithTx
var _ portsrepo.InvestmentRepositoryWithTx = (*PgxInvestmentRepository)(nil)

func scanInvestment(row rowScanner) (models.Investment, error) {
	var m models.Investment
	err := row.Scan(
		&m.InvestmentID,
		&m.InvestorID,
		&m.ListingID,
		&m.AmountPence,
		&m.ExpectedReturnPence,
		&m.ExpectedTotalPence,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

const saveInvestmentQuery = `
	INSERT INTO investments (investment_id, investor_id, listing_id, amount_pence,
		expected_return_pence, expected_total_pence, status,
		created_at, created_by, last_updated_at, last_updated_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`

func saveInvestmentArgs(m models.Investment) []any {
	return []any{
		m.InvestmentID, m.InvestorID, m.ListingID, m.AmountPence,
		m.ExpectedReturnPence, m.ExpectedTotalPence, m.Status,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	}
}

func (r *PgxInvestmentRepository) SaveInvestment(ctx context.Context, investment domain.Investment) error {
	_, err := r.Pool.Exec(ctx, saveInvestmentQuery, saveInvestmentArgs(mapping.ToModelInvestment(investment))...)
	if err != nil {
		return fmt.Errorf("failed to save investment: %w", err)
	}
	return nil
}

// SaveInvestmentInTx persists a new pledge within a given transaction.
func (r *PgxInvestmentRepository) SaveInvestmentInTx(ctx context.Context, tx pgx.Tx, investment domain.Investment) error {
	_, err := tx.Exec(ctx, saveInvestmentQuery, saveInvestmentArgs(mapping.ToModelInvestment(investment))...)
	if err != nil {
		return fmt.Errorf("failed to save investment in tx: %w", err)
	}
	return nil
}

const updateInvestmentQuery = `
	UPDATE investments
	SET status = $2, last_updated_at = $3, last_updated_by = $4
	WHERE investment_id = $1;
`

func (r *PgxInvestmentRepository) UpdateInvestment(ctx context.Context, investment domain.Investment) error {
	m := mapping.ToModelInvestment(investment)
	tag, err := r.Pool.Exec(ctx, updateInvestmentQuery, m.InvestmentID, m.Status, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update investment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateInvestmentInTx updates a pledge within a given transaction. Only the
// status and audit columns are mutable; the pledged figures are frozen.
func (r *PgxInvestmentRepository) UpdateInvestmentInTx(ctx context.Context, tx pgx.Tx, investment domain.Investment) error {
	m := mapping.ToModelInvestment(investment)
	tag, err := tx.Exec(ctx, updateInvestmentQuery, m.InvestmentID, m.Status, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update investment in tx: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxInvestmentRepository) FindInvestmentByID(ctx context.Context, investmentID string) (*domain.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE investment_id = $1;`
	m, err := scanInvestment(r.Pool.QueryRow(ctx, query, investmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find investment by ID: %w", err)
	}
	investment := mapping.ToDomainInvestment(m)
	return &investment, nil
}

// FindInvestmentByIDForUpdate retrieves a pledge and locks the row for update.
// Must be called within a transaction.
func (r *PgxInvestmentRepository) FindInvestmentByIDForUpdate(ctx context.Context, tx pgx.Tx, investmentID string) (*domain.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE investment_id = $1 FOR UPDATE;`
	m, err := scanInvestment(tx.QueryRow(ctx, query, investmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find investment by ID for update: %w", err)
	}
	investment := mapping.ToDomainInvestment(m)
	return &investment, nil
}

func (r *PgxInvestmentRepository) ListInvestmentsByInvestor(ctx context.Context, investorID string, limit int, offset int) ([]domain.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE investor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, investorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments by investor: %w", err)
	}
	defer rows.Close()

	return collectInvestments(rows)
}

func (r *PgxInvestmentRepository) ListInvestmentsByListing(ctx context.Context, listingID string, limit int, offset int) ([]domain.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE listing_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, listingID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments by listing: %w", err)
	}
	defer rows.Close()

	return collectInvestments(rows)
}

func collectInvestments(rows pgx.Rows) ([]domain.Investment, error) {
	ms := []models.Investment{}
	for rows.Next() {
		m, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investment rows: %w", err)
	}
	return mapping.ToDomainInvestmentSlice(ms), nil
}

// SumPledgedAmount sums amount_pence over Pledged rows only; cancelled
// pledges never contribute to progress.
func (r *PgxInvestmentRepository) SumPledgedAmount(ctx context.Context, listingID string) (int64, error) {
	var sum int64
	query := `
		SELECT COALESCE(SUM(amount_pence), 0)
		FROM investments
		WHERE listing_id = $1 AND status = $2;
	`
	err := r.Pool.QueryRow(ctx, query, listingID, models.InvestmentPledged).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum pledged amounts: %w", err)
	}
	return sum, nil
}
