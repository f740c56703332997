package models

// InvestmentStatus mirrors the pledge status enum in the investments table.
type InvestmentStatus string

const (
	InvestmentPledged   InvestmentStatus = "PLEDGED"
	InvestmentCancelled InvestmentStatus = "CANCELLED"
)

// Investment is the persistence shape of a pledge. Monetary columns are
// integer pence; the expected figures are written once and never updated.
type Investment struct {
	InvestmentID string `db:"investment_id"`
	InvestorID   string `db:"investor_id"`
	ListingID    string `db:"listing_id"`

	AmountPence         int64 `db:"amount_pence"`
	ExpectedReturnPence int64 `db:"expected_return_pence"`
	ExpectedTotalPence  int64 `db:"expected_total_pence"`

	Status InvestmentStatus `db:"status"`

	AuditFields
}
