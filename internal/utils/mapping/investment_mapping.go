package mapping

import (
	"github.com/greensquarecapital/gsc_backend/internal/core/domain"
	"github.com/greensquarecapital/gsc_backend/internal/models"
)

// ToModelInvestment converts a domain Investment to a model Investment
func ToModelInvestment(d domain.Investment) models.Investment {
	return models.Investment{
		InvestmentID:        d.InvestmentID,
		InvestorID:          d.InvestorID,
		ListingID:           d.ListingID,
		AmountPence:         d.AmountPence,
		ExpectedReturnPence: d.ExpectedReturnPence,
		ExpectedTotalPence:  d.ExpectedTotalPence,
		Status:              models.InvestmentStatus(d.Status),
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInvestment converts a model Investment to a domain Investment
func ToDomainInvestment(m models.Investment) domain.Investment {
	return domain.Investment{
		InvestmentID:        m.InvestmentID,
		InvestorID:          m.InvestorID,
		ListingID:           m.ListingID,
		AmountPence:         m.AmountPence,
		ExpectedReturnPence: m.ExpectedReturnPence,
		ExpectedTotalPence:  m.ExpectedTotalPence,
		Status:              domain.InvestmentStatus(m.Status),
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainInvestmentSlice converts a slice of model Investments to domain Investments
func ToDomainInvestmentSlice(ms []models.Investment) []domain.Investment {
	ds := make([]domain.Investment, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainInvestment(m)
	}
	return ds
}
