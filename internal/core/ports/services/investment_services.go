package services

import (
	"context"

	"github.com/greensquarecapital/gsc_backend/internal/core/domain"
	"github.com/greensquarecapital/gsc_backend/internal/dto"
)

// InvestmentReaderSvc defines read operations for pledge data
type InvestmentReaderSvc interface {
	// GetInvestmentByID retrieves a pledge by ID.
	GetInvestmentByID(ctx context.Context, investmentID string, requestingUserID string) (*domain.Investment, error)

	// ListInvestmentsByInvestor retrieves a paginated list of the requesting
	// user's own pledges.
	ListInvestmentsByInvestor(ctx context.Context, investorID string, limit, offset int) ([]domain.Investment, error)

	// ListInvestmentsByListing retrieves pledges against a listing. Only the
	// listing owner may see them.
	ListInvestmentsByListing(ctx context.Context, listingID string, requestingUserID string, limit, offset int) ([]domain.Investment, error)

	// EstimateReturn computes the projected return for a hypothetical pledge
	// amount against a listing, without persisting anything.
	EstimateReturn(ctx context.Context, listingID string, req dto.EstimateReturnRequest) (*dto.EstimateReturnResponse, error)
}

// InvestmentWriterSvc defines write operations for pledge data
type InvestmentWriterSvc interface {
	// CreatePledge records a pledge by investorID against an Active listing,
	// freezing the expected return at write time.
	CreatePledge(ctx context.Context, investorID string, req dto.CreatePledgeRequest) (*domain.Investment, error)

	// RetractPledge cancels the investor's own Pledged investment while the
	// listing is still Active.
	RetractPledge(ctx context.Context, investmentID string, requestingUserID string) error
}

// InvestmentSvcFacade combines all pledge-related service interfaces
type InvestmentSvcFacade interface {
	InvestmentReaderSvc
	InvestmentWriterSvc
}
