package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/greensquarecapital/gsc_backend/internal/apperrors"
	portssvc "github.com/greensquarecapital/gsc_backend/internal/core/ports/services"
	"github.com/greensquarecapital/gsc_backend/internal/dto"
	"github.com/greensquarecapital/gsc_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// listingHandler handles HTTP requests related to listings.
type listingHandler struct {
	listingService    portssvc.ListingSvcFacade
	investmentService portssvc.InvestmentSvcFacade
	paymentService    portssvc.PaymentSvcFacade
}

// newListingHandler creates a new listingHandler.
func newListingHandler(ls portssvc.ListingSvcFacade, is portssvc.InvestmentSvcFacade, ps portssvc.PaymentSvcFacade) *listingHandler {
	return &listingHandler{
		listingService:    ls,
		investmentService: is,
		paymentService:    ps,
	}
}

// registerListingRoutes registers routes related to listings.
func registerListingRoutes(rg *gin.RouterGroup, listingService portssvc.ListingSvcFacade, investmentService portssvc.InvestmentSvcFacade, paymentService portssvc.PaymentSvcFacade) {
	h := newListingHandler(listingService, investmentService, paymentService)

	listings := rg.Group("/listings")
	{
		listings.POST("", h.createListing)
		listings.GET("", h.listActiveListings)
		listings.GET("/mine", h.listMyListings)
		listings.GET("/:id", h.getListing)
		listings.PUT("/:id", h.updateListing)
		listings.DELETE("/:id", h.deleteListing)

		listings.POST("/:id/media", h.addMedia)
		listings.GET("/:id/media", h.listMedia)
		listings.DELETE("/:id/media/:mediaID", h.removeMedia)

		listings.GET("/:id/progress", h.getProgress)
		listings.GET("/:id/investments", h.listListingInvestments)
		listings.POST("/:id/estimate-return", h.estimateReturn)

		registerListingPaymentRoutes(listings, h)
	}
}

// respondListingError maps service errors to HTTP responses shared by the
// listing endpoints.
func respondListingError(c *gin.Context, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Listing not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrInvalidState):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrConfiguration):
		logger.Error("Configuration fault", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Listing is misconfigured"})
	case errors.Is(err, apperrors.ErrExternalService):
		logger.Error("Payment provider error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Payment provider unavailable"})
	default:
		logger.Error("Unexpected error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

// createListing godoc
// @Summary Create a new listing draft
// @Description Opens a new Draft listing owned by the logged-in user
// @Tags listings
// @Accept  json
// @Produce  json
// @Param   listing body dto.CreateListingRequest true "Listing details"
// @Success 201 {object} dto.ListingResponse
// @Failure 400 {object} ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /listings [post]
func (h *listingHandler) createListing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createListing", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	listing, err := h.listingService.CreateListing(c.Request.Context(), userID, req)
	if err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.JSON(http.StatusCreated, dto.ToListingResponse(listing))
}

// listActiveListings godoc
// @Summary Browse active listings
// @Description Retrieves a paginated list of listings currently open for pledges
// @Tags listings
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {object} dto.ListListingsResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /listings [get]
func (h *listingHandler) listActiveListings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListListingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters"})
		return
	}

	listings, err := h.listingService.ListActiveListings(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToListListingsResponse(listings))
}

// listMyListings godoc
// @Summary List my listings
// @Description Retrieves the logged-in user's own listings in any status
// @Tags listings
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {object} dto.ListListingsResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /listings/mine [get]
func (h *listingHandler) listMyListings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListListingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters"})
		return
	}

	listings, err := h.listingService.ListListingsByOwner(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToListListingsResponse(listings))
}

// getListing godoc
// @Summary Get a listing by ID
// @Tags listings
// @Produce  json
// @Param   id path string true "Listing ID"
// @Success 200 {object} dto.ListingResponse
// @Failure 404 {object} ErrorResponse "Listing not found"
// @Security BearerAuth
// @Router /listings/{id} [get]
func (h *listingHandler) getListing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	listing, err := h.listingService.GetListingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToListingResponse(listing))
}

// updateListing godoc
// @Summary Edit a draft listing
// @Description Applies a partial edit to a Draft listing. Any edit clears pending payment correlation.
// @Tags listings
// @Accept  json
// @Produce  json
// @Param   id path string true "Listing ID"
// @Param   listing body dto.UpdateListingRequest true "Fields to update"
// @Success 200 {object} dto.ListingResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Not the owner"
// @Failure 404 {object} ErrorResponse "Listing not found"
// @Failure 409 {object} ErrorResponse "Listing is not a draft"
// @Security BearerAuth
// @Router /listings/{id} [put]
func (h *listingHandler) updateListing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	listing, err := h.listingService.UpdateListing(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToListingResponse(listing))
}

// deleteListing godoc
// @Summary Delete a draft listing
// @Tags listings
// @Produce  json
// @Param   id path string true "Listing ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse "Not the owner"
// @Failure 404 {object} ErrorResponse "Listing not found"
// @Failure 409 {object} ErrorResponse "Listing is not a draft"
// @Security BearerAuth
// @Router /listings/{id} [delete]
func (h *listingHandler) deleteListing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.listingService.DeleteListing(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// addMedia godoc
// @Summary Attach media to a draft listing
// @Tags listings
// @Accept  json
// @Produce  json
// @Param   id path string true "Listing ID"
// @Param   media body dto.AddListingMediaRequest true "Media reference"
// @Success 201 {object} dto.ListingMediaResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Not the owner"
// @Failure 409 {object} ErrorResponse "Listing is not a draft"
// @Security BearerAuth
// @Router /listings/{id}/media [post]
func (h *listingHandler) addMedia(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AddListingMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	media, err := h.listingService.AddListingMedia(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.JSON(http.StatusCreated, dto.ToListingMediaResponse(media))
}

// listMedia godoc
// @Summary List a listing's media
// @Tags listings
// @Produce  json
// @Param   id path string true "Listing ID"
// @Success 200 {array} dto.ListingMediaResponse
// @Failure 404 {object} ErrorResponse "Listing not found"
// @Security BearerAuth
// @Router /listings/{id}/media [get]
func (h *listingHandler) listMedia(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	media, err := h.listingService.ListListingMedia(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToListListingMediaResponse(media))
}

// removeMedia godoc
// @Summary Remove media from a draft listing
// @Tags listings
// @Produce  json
// @Param   id path string true "Listing ID"
// @Param   mediaID path string true "Media ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse "Not the owner"
// @Failure 404 {object} ErrorResponse "Not found"
// @Security BearerAuth
// @Router /listings/{id}/media/{mediaID} [delete]
func (h *listingHandler) removeMedia(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.listingService.RemoveListingMedia(c.Request.Context(), c.Param("id"), c.Param("mediaID"), userID); err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// getProgress godoc
// @Summary Get funding progress for a listing
// @Description Reports pledged pence against the funding target. Degrades to zeros when no target is resolvable.
// @Tags listings
// @Produce  json
// @Param   id path string true "Listing ID"
// @Success 200 {object} dto.ListingProgressResponse
// @Failure 404 {object} ErrorResponse "Listing not found"
// @Security BearerAuth
// @Router /listings/{id}/progress [get]
func (h *listingHandler) getProgress(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	progress, err := h.listingService.GetListingProgress(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// listListingInvestments godoc
// @Summary List pledges against a listing
// @Description Only the listing owner may see its pledges.
// @Tags listings
// @Produce  json
// @Param   id path string true "Listing ID"
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {object} dto.ListInvestmentsResponse
// @Failure 403 {object} ErrorResponse "Not the owner"
// @Failure 404 {object} ErrorResponse "Listing not found"
// @Security BearerAuth
// @Router /listings/{id}/investments [get]
func (h *listingHandler) listListingInvestments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListInvestmentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters"})
		return
	}

	investments, err := h.investmentService.ListInvestmentsByListing(c.Request.Context(), c.Param("id"), userID, params.Limit, params.Offset)
	if err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToListInvestmentsResponse(investments))
}

// estimateReturn godoc
// @Summary Estimate the return for a pledge amount
// @Description Computes the projected return at the listing's band midpoint without persisting anything.
// @Tags listings
// @Accept  json
// @Produce  json
// @Param   id path string true "Listing ID"
// @Param   estimate body dto.EstimateReturnRequest true "Amount in pounds"
// @Success 200 {object} dto.EstimateReturnResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Listing not found"
// @Security BearerAuth
// @Router /listings/{id}/estimate-return [post]
func (h *listingHandler) estimateReturn(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.EstimateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	estimate, err := h.investmentService.EstimateReturn(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.JSON(http.StatusOK, estimate)
}
