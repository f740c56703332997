package pgsql

import (
	portsrepo "github.com/greensquarecapital/gsc_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	listingRepo := newPgxListingRepository(dbPool)
	investmentRepo := newPgxInvestmentRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)

	return portsrepo.RepositoryProvider{
		ListingRepo:    listingRepo,
		InvestmentRepo: investmentRepo,
		UserRepo:       userRepo,
	}
}
