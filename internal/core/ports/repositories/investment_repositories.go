package repositories

import (
	"context"

	"github.com/greensquarecapital/gsc_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// InvestmentReader defines read operations for pledge data
type InvestmentReader interface {
	// FindInvestmentByID retrieves a specific pledge by its unique identifier.
	FindInvestmentByID(ctx context.Context, investmentID string) (*domain.Investment, error)

	// ListInvestmentsByInvestor retrieves a paginated list of an investor's pledges.
	ListInvestmentsByInvestor(ctx context.Context, investorID string, limit int, offset int) ([]domain.Investment, error)

	// ListInvestmentsByListing retrieves a paginated list of pledges against a listing.
	ListInvestmentsByListing(ctx context.Context, listingID string, limit int, offset int) ([]domain.Investment, error)

	// SumPledgedAmount returns the sum of amount_pence over Pledged rows for a
	// listing. Cancelled pledges never contribute.
	SumPledgedAmount(ctx context.Context, listingID string) (int64, error)
}

// InvestmentWriter defines write operations for pledge data
type InvestmentWriter interface {
	// SaveInvestment persists a new pledge.
	SaveInvestment(ctx context.Context, investment domain.Investment) error

	// UpdateInvestment updates an existing pledge's status and audit fields.
	UpdateInvestment(ctx context.Context, investment domain.Investment) error
}

// InvestmentTransactionSupport defines operations that run inside a transaction
type InvestmentTransactionSupport interface {
	// SaveInvestmentInTx persists a new pledge within a given transaction.
	SaveInvestmentInTx(ctx context.Context, tx pgx.Tx, investment domain.Investment) error

	// FindInvestmentByIDForUpdate selects a pledge and locks its row for update
	// within a transaction.
	FindInvestmentByIDForUpdate(ctx context.Context, tx pgx.Tx, investmentID string) (*domain.Investment, error)

	// UpdateInvestmentInTx updates a pledge within a given transaction.
	UpdateInvestmentInTx(ctx context.Context, tx pgx.Tx, investment domain.Investment) error
}

// InvestmentRepositoryFacade combines all pledge-related repository interfaces
// This is a facade for clients that need access to all operations
type InvestmentRepositoryFacade interface {
	InvestmentReader
	InvestmentWriter
	InvestmentTransactionSupport
}

// InvestmentRepositoryWithTx extends InvestmentRepositoryFacade with transaction capabilities
type InvestmentRepositoryWithTx interface {
	InvestmentRepositoryFacade
	TransactionManager
}
