package handlers

import (
	"github.com/greensquarecapital/gsc_backend/internal/core/domain"
	"github.com/greensquarecapital/gsc_backend/internal/platform/tariffs"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// registerBandValidators registers the `fundingband` and `returnband` binding
// tags against gin's validator engine. Band membership is defined by the
// tariff tables, so request validation can never drift from what
// PriceForActivation and ReturnRange actually accept.
func registerBandValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	tables := tariffs.Default()
	_ = v.RegisterValidation("fundingband", func(fl validator.FieldLevel) bool {
		return tables.KnownFundingBand(domain.FundingBand(fl.Field().String()))
	})
	_ = v.RegisterValidation("returnband", func(fl validator.FieldLevel) bool {
		return tables.KnownReturnBand(domain.ReturnBand(fl.Field().String()))
	})
}
