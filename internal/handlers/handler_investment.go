package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/greensquarecapital/gsc_backend/internal/core/ports/services"
	"github.com/greensquarecapital/gsc_backend/internal/dto"
	"github.com/greensquarecapital/gsc_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// investmentHandler handles HTTP requests related to pledges.
type investmentHandler struct {
	investmentService portssvc.InvestmentSvcFacade
}

// registerInvestmentRoutes registers routes related to pledges.
func registerInvestmentRoutes(rg *gin.RouterGroup, investmentService portssvc.InvestmentSvcFacade) {
	h := &investmentHandler{investmentService: investmentService}

	investments := rg.Group("/investments")
	{
		investments.POST("", h.createPledge)
		investments.GET("", h.listMyInvestments)
		investments.GET("/:id", h.getInvestment)
		investments.POST("/:id/retract", h.retractPledge)
	}
}

// createPledge godoc
// @Summary Pledge funds against an active listing
// @Description Records a pledge with the expected return frozen at write time from the listing's return band.
// @Tags investments
// @Accept  json
// @Produce  json
// @Param   pledge body dto.CreatePledgeRequest true "Pledge details"
// @Success 201 {object} dto.InvestmentResponse
// @Failure 400 {object} ErrorResponse "Invalid amount"
// @Failure 403 {object} ErrorResponse "Cannot pledge on your own listing"
// @Failure 404 {object} ErrorResponse "Listing not found"
// @Failure 409 {object} ErrorResponse "Listing is not open for pledges"
// @Security BearerAuth
// @Router /investments [post]
func (h *investmentHandler) createPledge(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createPledge", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	investment, err := h.investmentService.CreatePledge(c.Request.Context(), userID, req)
	if err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInvestmentResponse(investment))
}

// listMyInvestments godoc
// @Summary List my pledges
// @Tags investments
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {object} dto.ListInvestmentsResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /investments [get]
func (h *investmentHandler) listMyInvestments(c *gin.Context) {
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

	investments, err := h.investmentService.ListInvestmentsByInvestor(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToListInvestmentsResponse(investments))
}

// getInvestment godoc
// @Summary Get a pledge by ID
// @Description Visible to the pledging investor and the owner of the listing it targets.
// @Tags investments
// @Produce  json
// @Param   id path string true "Investment ID"
// @Success 200 {object} dto.InvestmentResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Investment not found"
// @Security BearerAuth
// @Router /investments/{id} [get]
func (h *investmentHandler) getInvestment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	investment, err := h.investmentService.GetInvestmentByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvestmentResponse(investment))
}

// retractPledge godoc
// @Summary Retract a pledge
// @Description Cancels the caller's own Pledged investment while the listing is still open.
// @Tags investments
// @Produce  json
// @Param   id path string true "Investment ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse "Not your pledge"
// @Failure 404 {object} ErrorResponse "Investment not found"
// @Failure 409 {object} ErrorResponse "Pledge already cancelled or listing closed"
// @Security BearerAuth
// @Router /investments/{id}/retract [post]
func (h *investmentHandler) retractPledge(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.investmentService.RetractPledge(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.Status(http.StatusNoContent)
}
