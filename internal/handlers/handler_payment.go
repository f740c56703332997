package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/greensquarecapital/gsc_backend/internal/core/ports/services"
	"github.com/greensquarecapital/gsc_backend/internal/dto"
	"github.com/greensquarecapital/gsc_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// registerListingPaymentRoutes adds the activation-fee checkout endpoints under
// an already authenticated listing group.
func registerListingPaymentRoutes(listings *gin.RouterGroup, h *listingHandler) {
	checkout := listings.Group("/:id/checkout")
	{
		checkout.POST("", h.startCheckout)
		checkout.POST("/reconcile", h.reconcileCheckout)
		checkout.POST("/cancel", h.cancelCheckout)
	}
}

// startCheckout godoc
// @Summary Start the activation-fee checkout for a draft listing
// @Description Prices the activation fee from the listing's tariff bands and opens (or reuses) a hosted checkout session.
// @Tags payments
// @Produce  json
// @Param   id path string true "Listing ID"
// @Success 200 {object} dto.StartCheckoutResponse
// @Failure 400 {object} ErrorResponse "Listing not ready for activation"
// @Failure 403 {object} ErrorResponse "Not the owner"
// @Failure 404 {object} ErrorResponse "Listing not found"
// @Failure 409 {object} ErrorResponse "Listing is not a draft"
// @Failure 502 {object} ErrorResponse "Payment provider unavailable"
// @Security BearerAuth
// @Router /listings/{id}/checkout [post]
func (h *listingHandler) startCheckout(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	resp, err := h.paymentService.StartCheckout(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ReconcileCheckoutRequest carries the session the owner was redirected back with.
type ReconcileCheckoutRequest struct {
	SessionID string `json:"sessionID" binding:"required"`
}

// reconcileCheckout godoc
// @Summary Reconcile a completed checkout session
// @Description Verifies the paid session against the listing's recorded expectations and activates the listing. Idempotent: replays and stale sessions report applied=false instead of failing.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   id path string true "Listing ID"
// @Param   reconcile body ReconcileCheckoutRequest true "Checkout session"
// @Success 200 {object} dto.ReconcileCheckoutResponse
// @Failure 400 {object} ErrorResponse "Invalid request format"
// @Failure 403 {object} ErrorResponse "Not the owner"
// @Failure 404 {object} ErrorResponse "Listing not found"
// @Security BearerAuth
// @Router /listings/{id}/checkout/reconcile [post]
func (h *listingHandler) reconcileCheckout(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req ReconcileCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	listing, applied, err := h.paymentService.ReconcileCheckout(c.Request.Context(), c.Param("id"), req.SessionID, userID)
	if err != nil {
		respondListingError(c, err, logger)
		return
	}

	resp := dto.ReconcileCheckoutResponse{Applied: applied}
	if listing != nil {
		lr := dto.ToListingResponse(listing)
		resp.Listing = &lr
	}
	c.JSON(http.StatusOK, resp)
}

// cancelCheckout godoc
// @Summary Abandon a pending checkout
// @Description Expires the provider session best-effort and clears the listing's payment correlation.
// @Tags payments
// @Produce  json
// @Param   id path string true "Listing ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse "Not the owner"
// @Failure 404 {object} ErrorResponse "Listing not found"
// @Failure 409 {object} ErrorResponse "No checkout pending"
// @Security BearerAuth
// @Router /listings/{id}/checkout/cancel [post]
func (h *listingHandler) cancelCheckout(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.paymentService.CancelCheckout(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondListingError(c, err, logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// webhookHandler receives payment provider callbacks.
type webhookHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

// registerWebhookRoutes registers the payment provider webhook endpoint. It is
// deliberately outside the JWT-protected API group; authenticity comes from
// the signature header instead.
func registerWebhookRoutes(r *gin.Engine, paymentService portssvc.PaymentSvcFacade) {
	h := &webhookHandler{paymentService: paymentService}
	r.POST("/webhooks/stripe", h.handleStripeWebhook)
}

// handleStripeWebhook godoc
// @Summary Stripe webhook receiver
// @Description Verifies the event signature and reconciles completed checkout sessions. Responds 200 for any well-formed signed event so the provider does not retry processing failures forever.
// @Tags payments
// @Accept  json
// @Produce  json
// @Success 200 "Received"
// @Failure 400 {object} ErrorResponse "Bad payload or signature"
// @Router /webhooks/stripe [post]
func (h *webhookHandler) handleStripeWebhook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	payload, err := c.GetRawData()
	if err != nil {
		logger.Warn("Failed to read webhook body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unreadable payload"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if err := h.paymentService.HandleWebhookEvent(c.Request.Context(), payload, sigHeader); err != nil {
		logger.Warn("Webhook signature rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid signature"})
		return
	}

	c.Status(http.StatusOK)
}
