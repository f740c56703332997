package mapping

import (
	"github.com/greensquarecapital/gsc_backend/internal/core/domain"
	"github.com/greensquarecapital/gsc_backend/internal/models"
)

// ToModelListing converts a domain Listing to a model Listing
func ToModelListing(d domain.Listing) models.Listing {
	return models.Listing{
		ListingID:           d.ListingID,
		OwnerID:             d.OwnerID,
		ProjectName:         d.ProjectName,
		SourceUse:           string(d.SourceUse),
		TargetUse:           string(d.TargetUse),
		Country:             string(d.Country),
		County:              d.County,
		PostcodePrefix:      d.PostcodePrefix,
		FundingBand:         string(d.FundingBand),
		ReturnType:          string(d.ReturnType),
		ReturnBand:          string(d.ReturnBand),
		DurationDays:        d.DurationDays,
		ProjectDurationDays: d.ProjectDurationDays,
		Status:              models.ListingStatus(d.Status),
		ActiveFrom:          d.ActiveFrom,
		ActiveUntil:         d.ActiveUntil,
		ExpectedAmountPence: d.ExpectedAmountPence,
		PaidAmountPence:     d.PaidAmountPence,
		PaidAt:              d.PaidAt,
		CheckoutSessionID:   d.CheckoutSessionID,
		PaymentIntentID:     d.PaymentIntentID,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainListing converts a model Listing to a domain Listing
func ToDomainListing(m models.Listing) domain.Listing {
	return domain.Listing{
		ListingID:           m.ListingID,
		OwnerID:             m.OwnerID,
		ProjectName:         m.ProjectName,
		SourceUse:           domain.UseType(m.SourceUse),
		TargetUse:           domain.UseType(m.TargetUse),
		Country:             domain.Country(m.Country),
		County:              m.County,
		PostcodePrefix:      m.PostcodePrefix,
		FundingBand:         domain.FundingBand(m.FundingBand),
		ReturnType:          domain.ReturnType(m.ReturnType),
		ReturnBand:          domain.ReturnBand(m.ReturnBand),
		DurationDays:        m.DurationDays,
		ProjectDurationDays: m.ProjectDurationDays,
		Status:              domain.ListingStatus(m.Status),
		ActiveFrom:          m.ActiveFrom,
		ActiveUntil:         m.ActiveUntil,
		ExpectedAmountPence: m.ExpectedAmountPence,
		PaidAmountPence:     m.PaidAmountPence,
		PaidAt:              m.PaidAt,
		CheckoutSessionID:   m.CheckoutSessionID,
		PaymentIntentID:     m.PaymentIntentID,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainListingSlice converts a slice of model Listings to a slice of domain Listings
func ToDomainListingSlice(ms []models.Listing) []domain.Listing {
	ds := make([]domain.Listing, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainListing(m)
	}
	return ds
}

// ToModelListingMedia converts a domain ListingMedia to a model ListingMedia
func ToModelListingMedia(d domain.ListingMedia) models.ListingMedia {
	return models.ListingMedia{
		MediaID:    d.MediaID,
		ListingID:  d.ListingID,
		FilePath:   d.FilePath,
		MediaType:  string(d.MediaType),
		UploadedAt: d.UploadedAt,
	}
}

// ToDomainListingMedia converts a model ListingMedia to a domain ListingMedia
func ToDomainListingMedia(m models.ListingMedia) domain.ListingMedia {
	return domain.ListingMedia{
		MediaID:    m.MediaID,
		ListingID:  m.ListingID,
		FilePath:   m.FilePath,
		MediaType:  domain.MediaType(m.MediaType),
		UploadedAt: m.UploadedAt,
	}
}

// ToDomainListingMediaSlice converts a slice of model ListingMedia to domain ListingMedia
func ToDomainListingMediaSlice(ms []models.ListingMedia) []domain.ListingMedia {
	ds := make([]domain.ListingMedia, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainListingMedia(m)
	}
	return ds
}
