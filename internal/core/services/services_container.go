package services

import (
	"github.com/greensquarecapital/gsc_backend/internal/core/ports/payments"
	portsrepo "github.com/greensquarecapital/gsc_backend/internal/core/ports/repositories"
	portssvc "github.com/greensquarecapital/gsc_backend/internal/core/ports/services"
	"github.com/greensquarecapital/gsc_backend/internal/platform/config"
	"github.com/greensquarecapital/gsc_backend/internal/platform/tariffs"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, checkoutProvider payments.CheckoutProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The tariff tables are shared: pricing, progress targets and return
	// midpoints must all come from the same source.
	tbl := tariffs.Default()

	container.User = NewUserService(repos.UserRepo)
	container.Listing = NewListingService(repos.ListingRepo, repos.InvestmentRepo, tbl)
	container.Investment = NewInvestmentService(repos.InvestmentRepo, repos.ListingRepo, tbl)
	container.Payment = NewPaymentService(repos.ListingRepo, repos.UserRepo, checkoutProvider, tbl, cfg)

	container.Token = NewTokenService(cfg, container.User)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}

// Compile-time interface checks for the service implementations.
var (
	_ portssvc.ListingSvcFacade    = (*listingService)(nil)
	_ portssvc.InvestmentSvcFacade = (*investmentService)(nil)
	_ portssvc.PaymentSvcFacade    = (*paymentService)(nil)
	_ portssvc.UserSvcFacade       = (*userService)(nil)
	_ portssvc.TokenSvcFacade      = (*tokenService)(nil)
)
