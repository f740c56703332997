package domain

// InvestmentStatus is the lifecycle state of a pledge. The only transition is
// Pledged -> Cancelled; rows are never physically deleted.
type InvestmentStatus string

const (
	InvestmentPledged   InvestmentStatus = "PLEDGED"
	InvestmentCancelled InvestmentStatus = "CANCELLED"
)

// Investment is an investor's monetary commitment to an Active listing.
//
// AmountPence, ExpectedReturnPence and ExpectedTotalPence are frozen at
// creation time from the listing's return-band midpoint; they are never
// recomputed, even if the listing's bands later change.
type Investment struct {
	InvestmentID string `json:"investmentID"` // Primary Key (UUID)
	InvestorID   string `json:"investorID"`   // FK -> users.user_id
	ListingID    string `json:"listingID"`    // FK -> listings.listing_id

	AmountPence         int64 `json:"amountPence"`
	ExpectedReturnPence int64 `json:"expectedReturnPence"`
	ExpectedTotalPence  int64 `json:"expectedTotalPence"`

	Status InvestmentStatus `json:"status"`

	AuditFields
}
