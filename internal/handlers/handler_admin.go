package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/greensquarecapital/gsc_backend/internal/core/ports/services"
	"github.com/greensquarecapital/gsc_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// adminHandler exposes operational endpoints. These complement the sweeper
// binary; the sweep itself is idempotent and only touches listings already
// past their active window, so triggering it early is harmless.
type adminHandler struct {
	listingService portssvc.ListingSvcFacade
}

// registerAdminRoutes registers operational routes.
func registerAdminRoutes(rg *gin.RouterGroup, listingService portssvc.ListingSvcFacade) {
	h := &adminHandler{listingService: listingService}

	admin := rg.Group("/admin")
	{
		admin.POST("/expire-due", h.expireDueListings)
	}
}

// ExpireDueResponse reports how many listings an on-demand sweep expired.
type ExpireDueResponse struct {
	ExpiredCount int64 `json:"expiredCount"`
}

// expireDueListings godoc
// @Summary Expire overdue listings now
// @Description Runs the expiry sweep immediately instead of waiting for the scheduled run
// @Tags admin
// @Produce  json
// @Success 200 {object} ExpireDueResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /admin/expire-due [post]
func (h *adminHandler) expireDueListings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	count, err := h.listingService.ExpireDueListings(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondListingError(c, err, logger)
		return
	}

	logger.Info("On-demand expiry sweep completed", slog.Int64("expired_count", count))
	c.JSON(http.StatusOK, ExpireDueResponse{ExpiredCount: count})
}
