package handler

import (
	"context"
	"fmt"
	"net/http"

	"auction-house/internal/admin"
	"auction-house/services/auction/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

type AdminServiceInterface interface {
	ApproveBid(ctx context.Context, bidID string) error
	ListingsWithBids(ctx context.Context) ([]admin.ListingWithBids, error)
	Broadcast(message string)
}

type AdminHandler struct {
	service AdminServiceInterface
}

func NewAdminHandler(service AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// DashboardHandler handles GET /admin/listings
func (h *AdminHandler) DashboardHandler(c *gin.Context) {
	rows, err := h.service.ListingsWithBids(c.Request.Context())
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("DashboardHandler: failed to load dashboard", map[string]any{"error": err.Error()})
		return
	}

	if rows == nil {
		rows = []admin.ListingWithBids{}
	}

	utils.JSONResponse(c, http.StatusOK, rows, "listings retrieved successfully")
	helpers.LogSuccess("DashboardHandler", "listings retrieved successfully", map[string]any{
		"listings_count": len(rows),
	})
}

// ApproveBidHandler handles POST /admin/bids/:bid_id/approve
func (h *AdminHandler) ApproveBidHandler(c *gin.Context) {
	bidID := c.Param("bid_id")
	if err := h.service.ApproveBid(c.Request.Context(), bidID); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ApproveBidHandler: failed to approve bid", map[string]any{"bid_id": bidID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"bid_id": bidID, "approved": true}, "bid approved successfully")
	helpers.LogSuccess("ApproveBidHandler", "bid approved successfully", map[string]any{"bid_id": bidID})
}

// BroadcastHandler handles POST /admin/broadcast
func (h *AdminHandler) BroadcastHandler(c *gin.Context) {
	var req helpers.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "BroadcastHandler", err)
		return
	}

	h.service.Broadcast(req.Message)

	utils.JSONResponse(c, http.StatusAccepted, gin.H{"message": req.Message}, "broadcast sent")
	helpers.LogSuccess("BroadcastHandler", "broadcast sent", map[string]any{"length": len(req.Message)})
}
