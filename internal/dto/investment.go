package dto

import (
	"time"

	"github.com/greensquarecapital/gsc_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePledgeRequest defines the data needed to pledge against a listing.
// Amount is in pounds with at most two decimal places.
type CreatePledgeRequest struct {
	ListingID string          `json:"listingID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// EstimateReturnRequest asks for a projected return on a hypothetical pledge.
type EstimateReturnRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// EstimateReturnResponse is the projected outcome for a pledge amount against
// a listing's return band midpoint.
type EstimateReturnResponse struct {
	ListingID           string          `json:"listingID"`
	AmountPence         int64           `json:"amountPence"`
	ReturnPercent       decimal.Decimal `json:"returnPercent"`
	ExpectedReturnPence int64           `json:"expectedReturnPence"`
	ExpectedTotalPence  int64           `json:"expectedTotalPence"`
}

// InvestmentResponse defines the data returned for a pledge.
type InvestmentResponse struct {
	InvestmentID        string                  `json:"investmentID"`
	InvestorID          string                  `json:"investorID"`
	ListingID           string                  `json:"listingID"`
	AmountPence         int64                   `json:"amountPence"`
	ExpectedReturnPence int64                   `json:"expectedReturnPence"`
	ExpectedTotalPence  int64                   `json:"expectedTotalPence"`
	Status              domain.InvestmentStatus `json:"status"`
	CreatedAt           time.Time               `json:"createdAt"`
	LastUpdatedAt       time.Time               `json:"lastUpdatedAt"`
}

// ToInvestmentResponse converts a domain.Investment to InvestmentResponse DTO
func ToInvestmentResponse(inv *domain.Investment) InvestmentResponse {
	return InvestmentResponse{
		InvestmentID:        inv.InvestmentID,
		InvestorID:          inv.InvestorID,
		ListingID:           inv.ListingID,
		AmountPence:         inv.AmountPence,
		ExpectedReturnPence: inv.ExpectedReturnPence,
		ExpectedTotalPence:  inv.ExpectedTotalPence,
		Status:              inv.Status,
		CreatedAt:           inv.CreatedAt,
		LastUpdatedAt:       inv.LastUpdatedAt,
	}
}

// ListInvestmentsParams defines query parameters for listing pledges.
type ListInvestmentsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListInvestmentsResponse wraps the list of pledges.
type ListInvestmentsResponse struct {
	Investments []InvestmentResponse `json:"investments"`
}

// ToListInvestmentsResponse converts a slice of domain.Investment to ListInvestmentsResponse DTO
func ToListInvestmentsResponse(invs []domain.Investment) ListInvestmentsResponse {
	res := make([]InvestmentResponse, len(invs))
	for i, inv := range invs {
		res[i] = ToInvestmentResponse(&inv)
	}
	return ListInvestmentsResponse{Investments: res}
}
