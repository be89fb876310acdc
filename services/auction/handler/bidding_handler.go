package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/identity"
	model "auction-house/internal/models"
	"auction-house/services/auction/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, listingID, bidderID string, amount float64) (model.Bid, error)
	GetBidsForListing(ctx context.Context, listingID string) ([]model.Bid, error)
	GetHighestBid(ctx context.Context, listingID string) (model.Bid, error)
	ListListings(ctx context.Context) ([]model.Listing, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// callerID returns the authenticated caller's stable user id. The bidder
// identity always comes from the resolved token, never the request body.
func callerID(c *gin.Context) (string, bool) {
	v, ok := c.Get(identity.ContextKey)
	if !ok {
		return "", false
	}
	id, ok := v.(identity.Identity)
	return id.UserID, ok
}

// RecordBidHandler handles POST /bids
func (h *BiddingHandler) RecordBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RecordBidHandler", err)
		return
	}

	bidderID, ok := callerID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, nil, "missing credentials")
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), req.ListingID, bidderID, req.Amount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("RecordBidHandler: failed to record bid", map[string]any{
			"handler":    "RecordBidHandler",
			"listing_id": req.ListingID,
			"bidder_id":  bidderID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid recorded successfully")
	helpers.LogSuccess("RecordBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.BidID,
		"listing_id": bid.ListingID,
		"bidder_id":  bidderID,
		"amount":     bid.Amount,
	})
}

// ListListingsHandler handles GET /listings
func (h *BiddingHandler) ListListingsHandler(c *gin.Context) {
	listings, err := h.service.ListListings(c.Request.Context())
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListListingsHandler: error retrieving listings", map[string]any{"error": err.Error()})
		return
	}

	if listings == nil {
		listings = []model.Listing{}
	}

	utils.JSONResponse(c, http.StatusOK, listings, "listings retrieved successfully")
}

// GetBidsByListingHandler handles GET /listings/:listing_id/bids
func (h *BiddingHandler) GetBidsByListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	bids, err := h.service.GetBidsForListing(c.Request.Context(), listingID)
	if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBidsByListingHandler: error retrieving bids", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	if bids == nil {
		bids = []model.Bid{}
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByListingHandler", "bids retrieved successfully", map[string]any{
		"listing_id": listingID,
		"count":      len(bids),
	})
}

// GetHighestBidHandler handles GET /listings/:listing_id/highest
func (h *BiddingHandler) GetHighestBidHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	bid, err := h.service.GetHighestBid(c.Request.Context(), listingID)
	if err != nil {
		// No bids yet is an empty result, not a failure
		if errors.Is(err, auctionerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusNotFound, err, "no bids found for listing")
			utils.Info("GetHighestBidHandler: no bids found", map[string]any{"listing_id": listingID})
			return
		}
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetHighestBidHandler: highest bid error", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "highest bid retrieved successfully")
	helpers.LogSuccess("GetHighestBidHandler", "highest bid retrieved successfully", map[string]any{
		"bid_id":     bid.BidID,
		"listing_id": bid.ListingID,
		"bidder_id":  bid.BidderID,
		"amount":     bid.Amount,
	})
}
