package dto

import (
	"time"

	"github.com/greensquarecapital/gsc_backend/internal/core/domain"
)

// CreateListingRequest defines the data needed to open a new draft listing.
// Every field beyond the uses is optional at creation; drafts are completed
// step by step and validated in full only at activation time.
type CreateListingRequest struct {
	ProjectName string         `json:"projectName"`
	SourceUse   domain.UseType `json:"sourceUse" binding:"required,oneof=COMMERCIAL RESIDENTIAL INDUSTRIAL"`
	TargetUse   domain.UseType `json:"targetUse" binding:"required,oneof=COMMERCIAL RESIDENTIAL INDUSTRIAL"`

	Country        domain.Country `json:"country" binding:"omitempty,oneof=ENGLAND SCOTLAND WALES"`
	County         string         `json:"county"`
	PostcodePrefix string         `json:"postcodePrefix"`

	FundingBand domain.FundingBand `json:"fundingBand" binding:"omitempty,fundingband"`
	ReturnType  domain.ReturnType  `json:"returnType" binding:"omitempty,oneof=EQUITY_SHARE FINANCIAL_PAYBACK"`
	ReturnBand  domain.ReturnBand  `json:"returnBand" binding:"omitempty,returnband"`

	DurationDays        *int `json:"durationDays" binding:"omitempty,oneof=7 14 30 60"`
	ProjectDurationDays *int `json:"projectDurationDays" binding:"omitempty,gt=0"`
}

// UpdateListingRequest defines the data allowed for editing a draft listing.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateListingRequest struct {
	ProjectName *string         `json:"projectName"`
	SourceUse   *domain.UseType `json:"sourceUse" binding:"omitempty,oneof=COMMERCIAL RESIDENTIAL INDUSTRIAL"`
	TargetUse   *domain.UseType `json:"targetUse" binding:"omitempty,oneof=COMMERCIAL RESIDENTIAL INDUSTRIAL"`

	Country        *domain.Country `json:"country" binding:"omitempty,oneof=ENGLAND SCOTLAND WALES"`
	County         *string         `json:"county"`
	PostcodePrefix *string         `json:"postcodePrefix"`

	FundingBand *domain.FundingBand `json:"fundingBand" binding:"omitempty,fundingband"`
	ReturnType  *domain.ReturnType  `json:"returnType" binding:"omitempty,oneof=EQUITY_SHARE FINANCIAL_PAYBACK"`
	ReturnBand  *domain.ReturnBand  `json:"returnBand" binding:"omitempty,returnband"`

	DurationDays        *int `json:"durationDays" binding:"omitempty,oneof=7 14 30 60"`
	ProjectDurationDays *int `json:"projectDurationDays" binding:"omitempty,gt=0"`
}

// AddListingMediaRequest attaches an uploaded file reference to a listing.
type AddListingMediaRequest struct {
	FilePath  string           `json:"filePath" binding:"required"`
	MediaType domain.MediaType `json:"mediaType" binding:"required,oneof=IMAGE DOCUMENT"`
}

// ListingResponse defines the data returned for a listing.
// Mirrors domain.Listing minus internal payment correlation fields.
type ListingResponse struct {
	ListingID string `json:"listingID"`
	OwnerID   string `json:"ownerID"`

	ProjectName string         `json:"projectName"`
	SourceUse   domain.UseType `json:"sourceUse"`
	TargetUse   domain.UseType `json:"targetUse"`

	Country        domain.Country `json:"country"`
	County         string         `json:"county"`
	PostcodePrefix string         `json:"postcodePrefix"`

	FundingBand domain.FundingBand `json:"fundingBand"`
	ReturnType  domain.ReturnType  `json:"returnType"`
	ReturnBand  domain.ReturnBand  `json:"returnBand"`

	DurationDays        *int `json:"durationDays"`
	ProjectDurationDays *int `json:"projectDurationDays"`

	Status      domain.ListingStatus `json:"status"`
	ActiveFrom  *time.Time           `json:"activeFrom,omitempty"`
	ActiveUntil *time.Time           `json:"activeUntil,omitempty"`

	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// ToListingResponse converts a domain.Listing to ListingResponse DTO
func ToListingResponse(l *domain.Listing) ListingResponse {
	return ListingResponse{
		ListingID:           l.ListingID,
		OwnerID:             l.OwnerID,
		ProjectName:         l.ProjectName,
		SourceUse:           l.SourceUse,
		TargetUse:           l.TargetUse,
		Country:             l.Country,
		County:              l.County,
		PostcodePrefix:      l.PostcodePrefix,
		FundingBand:         l.FundingBand,
		ReturnType:          l.ReturnType,
		ReturnBand:          l.ReturnBand,
		DurationDays:        l.DurationDays,
		ProjectDurationDays: l.ProjectDurationDays,
		Status:              l.Status,
		ActiveFrom:          l.ActiveFrom,
		ActiveUntil:         l.ActiveUntil,
		CreatedAt:           l.CreatedAt,
		LastUpdatedAt:       l.LastUpdatedAt,
	}
}

// ListListingsParams defines query parameters for listing listings.
type ListListingsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListListingsResponse wraps the list of listings.
type ListListingsResponse struct {
	Listings []ListingResponse `json:"listings"`
}

// ToListListingsResponse converts a slice of domain.Listing to ListListingsResponse DTO
func ToListListingsResponse(listings []domain.Listing) ListListingsResponse {
	res := make([]ListingResponse, len(listings))
	for i, l := range listings {
		res[i] = ToListingResponse(&l)
	}
	return ListListingsResponse{Listings: res}
}

// ListingMediaResponse defines the data returned for a media attachment.
type ListingMediaResponse struct {
	MediaID    string           `json:"mediaID"`
	ListingID  string           `json:"listingID"`
	FilePath   string           `json:"filePath"`
	MediaType  domain.MediaType `json:"mediaType"`
	UploadedAt time.Time        `json:"uploadedAt"`
}

// ToListingMediaResponse converts a domain.ListingMedia to ListingMediaResponse DTO
func ToListingMediaResponse(m *domain.ListingMedia) ListingMediaResponse {
	return ListingMediaResponse{
		MediaID:    m.MediaID,
		ListingID:  m.ListingID,
		FilePath:   m.FilePath,
		MediaType:  m.MediaType,
		UploadedAt: m.UploadedAt,
	}
}

// ToListListingMediaResponse converts a slice of domain.ListingMedia to response DTOs
func ToListListingMediaResponse(ms []domain.ListingMedia) []ListingMediaResponse {
	res := make([]ListingMediaResponse, len(ms))
	for i, m := range ms {
		res[i] = ToListingMediaResponse(&m)
	}
	return res
}

// ListingProgressResponse reports pledged funds against the listing's target.
// Percent is truncated to a whole number and clamped to [0, 100].
type ListingProgressResponse struct {
	ListingID            string `json:"listingID"`
	PledgedAmountPence   int64  `json:"pledgedAmountPence"`
	TargetAmountPence    int64  `json:"targetAmountPence"`
	RemainingAmountPence int64  `json:"remainingAmountPence"`
	PercentFunded        int64  `json:"percentFunded"`
}
