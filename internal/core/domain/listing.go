package domain

import (
	"fmt"
	"time"

	"github.com/greensquarecapital/gsc_backend/internal/apperrors"
)

// ListingStatus is the lifecycle state of a listing.
// The only legal transitions are Draft -> Active -> Expired.
type ListingStatus string

const (
	ListingDraft   ListingStatus = "DRAFT"
	ListingActive  ListingStatus = "ACTIVE"
	ListingExpired ListingStatus = "EXPIRED"
)

// UseType classifies the current or intended use of the property.
type UseType string

const (
	UseCommercial  UseType = "COMMERCIAL"
	UseResidential UseType = "RESIDENTIAL"
	UseIndustrial  UseType = "INDUSTRIAL"
)

// Country is the listing's location country.
type Country string

const (
	CountryEngland  Country = "ENGLAND"
	CountryScotland Country = "SCOTLAND"
	CountryWales    Country = "WALES"
)

// ReturnType describes how investors are compensated.
type ReturnType string

const (
	ReturnEquityShare      ReturnType = "EQUITY_SHARE"
	ReturnFinancialPayback ReturnType = "FINANCIAL_PAYBACK"
)

// FundingBand is a closed monetary range ("LOW_HIGH" in whole pounds); the
// upper bound is the funding target.
type FundingBand string

const (
	Band10to20   FundingBand = "10000_20000"
	Band21to30   FundingBand = "21000_30000"
	Band31to40   FundingBand = "31000_40000"
	Band41to50   FundingBand = "41000_50000"
	Band51to75   FundingBand = "51000_75000"
	Band76to100  FundingBand = "76000_100000"
	Band100to150 FundingBand = "100000_150000"
	Band151to250 FundingBand = "151000_250000"
)

// ReturnBand is a closed total-return percentage range; pledges use its midpoint.
type ReturnBand string

const (
	Return2to4    ReturnBand = "2_4"
	Return5to9    ReturnBand = "5_9"
	Return10to14  ReturnBand = "10_14"
	Return15to175 ReturnBand = "15_17_5"
)

// Listing represents a property project raising funds on the marketplace.
//
// Monetary fields are integer pence. Duration pointers are nil while the
// owner has not filled the corresponding step of the draft.
type Listing struct {
	ListingID string `json:"listingID"` // Primary Key (UUID)
	OwnerID   string `json:"ownerID"`   // FK -> users.user_id

	ProjectName string  `json:"projectName"` // Optional display name
	SourceUse   UseType `json:"sourceUse"`
	TargetUse   UseType `json:"targetUse"`

	Country        Country `json:"country"`
	County         string  `json:"county"`
	PostcodePrefix string  `json:"postcodePrefix"`

	FundingBand FundingBand `json:"fundingBand"`
	ReturnType  ReturnType  `json:"returnType"`
	ReturnBand  ReturnBand  `json:"returnBand"`

	// DurationDays is how long the listing stays active to secure funding.
	// ProjectDurationDays is how long the underlying project is expected to run.
	DurationDays        *int `json:"durationDays"`
	ProjectDurationDays *int `json:"projectDurationDays"`

	Status ListingStatus `json:"status"`

	ActiveFrom  *time.Time `json:"activeFrom"`
	ActiveUntil *time.Time `json:"activeUntil"`

	// Payment correlation fields, set while a checkout is pending and frozen
	// once the activation fee is reconciled.
	ExpectedAmountPence int64      `json:"expectedAmountPence"`
	PaidAmountPence     int64      `json:"paidAmountPence"`
	PaidAt              *time.Time `json:"paidAt"`
	CheckoutSessionID   string     `json:"checkoutSessionID"`
	PaymentIntentID     string     `json:"paymentIntentID"`

	AuditFields
}

// IsReadyForActivation reports whether the draft is complete enough to pay
// for and activate. project_name is optional and deliberately not required.
func (l *Listing) IsReadyForActivation(mediaCount int) bool {
	if l.ProjectDurationDays == nil || l.DurationDays == nil {
		return false
	}
	required := []string{
		string(l.SourceUse),
		string(l.TargetUse),
		string(l.FundingBand),
		string(l.ReturnType),
		string(l.ReturnBand),
		string(l.Country),
		l.County,
		l.PostcodePrefix,
	}
	for _, v := range required {
		if v == "" {
			return false
		}
	}
	return mediaCount > 0
}

// Activate transitions the listing to Active as of now. The active window is
// derived from DurationDays (the listing active duration, NOT the project
// term). Callers are responsible for the already-Active idempotency guard;
// this method only enforces that a duration exists.
func (l *Listing) Activate(now time.Time) error {
	if l.DurationDays == nil || *l.DurationDays <= 0 {
		return fmt.Errorf("%w: cannot activate listing without duration days", apperrors.ErrInvalidState)
	}
	until := now.Add(time.Duration(*l.DurationDays) * 24 * time.Hour)
	l.Status = ListingActive
	l.ActiveFrom = &now
	l.ActiveUntil = &until
	return nil
}

// IsExpired reports whether the active window has passed. A listing with no
// ActiveUntil set is never considered expired.
func (l *Listing) IsExpired(now time.Time) bool {
	return l.ActiveUntil != nil && !l.ActiveUntil.After(now)
}

// ResetPaymentCorrelation clears every pending-checkout field and forces the
// listing back to Draft. Invoked on any draft edit so an edited listing can
// never silently keep a stale "ready to pay" session.
func (l *Listing) ResetPaymentCorrelation() {
	l.Status = ListingDraft
	l.ExpectedAmountPence = 0
	l.PaidAmountPence = 0
	l.PaidAt = nil
	l.CheckoutSessionID = ""
	l.PaymentIntentID = ""
}

// MediaType distinguishes listing attachments.
type MediaType string

const (
	MediaImage    MediaType = "IMAGE"
	MediaDocument MediaType = "DOCUMENT"
)

// ListingMedia is an uploaded attachment on a listing. The file itself lives
// in external storage; only the reference is modeled here.
type ListingMedia struct {
	MediaID    string    `json:"mediaID"`
	ListingID  string    `json:"listingID"`
	FilePath   string    `json:"filePath"`
	MediaType  MediaType `json:"mediaType"`
	UploadedAt time.Time `json:"uploadedAt"`
}
