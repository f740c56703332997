package models

import "time"

// ListingStatus mirrors the lifecycle enum stored in the listings table.
type ListingStatus string

const (
	ListingDraft   ListingStatus = "DRAFT"
	ListingActive  ListingStatus = "ACTIVE"
	ListingExpired ListingStatus = "EXPIRED"
)

// Listing is the persistence shape of a marketplace listing. Optional enum
// columns are plain strings ("" maps to NULL handling in the repository);
// nullable durations and timestamps are pointers.
type Listing struct {
	ListingID string `db:"listing_id"`
	OwnerID   string `db:"owner_id"`

	ProjectName string `db:"project_name"`
	SourceUse   string `db:"source_use"`
	TargetUse   string `db:"target_use"`

	Country        string `db:"country"`
	County         string `db:"county"`
	PostcodePrefix string `db:"postcode_prefix"`

	FundingBand string `db:"funding_band"`
	ReturnType  string `db:"return_type"`
	ReturnBand  string `db:"return_band"`

	DurationDays        *int `db:"duration_days"`
	ProjectDurationDays *int `db:"project_duration_days"`

	Status ListingStatus `db:"status"`

	ActiveFrom  *time.Time `db:"active_from"`
	ActiveUntil *time.Time `db:"active_until"`

	ExpectedAmountPence int64      `db:"expected_amount_pence"`
	PaidAmountPence     int64      `db:"paid_amount_pence"`
	PaidAt              *time.Time `db:"paid_at"`
	CheckoutSessionID   string     `db:"checkout_session_id"`
	PaymentIntentID     string     `db:"payment_intent_id"`

	AuditFields
}

// ListingMedia is a stored attachment reference.
type ListingMedia struct {
	MediaID    string    `db:"media_id"`
	ListingID  string    `db:"listing_id"`
	FilePath   string    `db:"file_path"`
	MediaType  string    `db:"media_type"`
	UploadedAt time.Time `db:"uploaded_at"`
}
