package helpers

// Request/Response DTOs
type PlaceBidRequest struct {
	ListingID string  `json:"listing_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
}

type BidResponse struct {
	BidID     string  `json:"bid_id"`
	ListingID string  `json:"listing_id"`
	BidderID  string  `json:"bidder_id"`
	Amount    float64 `json:"amount"`
	Approved  bool    `json:"approved"`
	CreatedAt string  `json:"created_at"`
}

type BroadcastRequest struct {
	Message string `json:"message" binding:"required"`
}
