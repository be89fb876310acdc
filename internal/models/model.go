package models

import "time"

// ListingStatus is the lifecycle state of a listing. The only legal
// transition is Active -> Closed.
type ListingStatus string

const (
	ListingActive ListingStatus = "active"
	ListingClosed ListingStatus = "closed"
)

// User represents a participant in the auction
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Listing represents an item open for bidding until its end time
type Listing struct {
	ListingID     string        `json:"listing_id"`
	SellerID      string        `json:"seller_id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	StartingPrice float64       `json:"starting_price"`
	EndTime       time.Time     `json:"end_time"`
	Status        ListingStatus `json:"status"`
	HighestBidID  string        `json:"highest_bid_id,omitempty"`
}

// Expired reports whether the listing's auction window has elapsed at t.
// A listing can be expired while its status is still Active: the sweeper
// has not flipped it yet.
func (l Listing) Expired(t time.Time) bool {
	return !t.Before(l.EndTime)
}

// Bid represents a user's bid on a listing. Immutable once recorded,
// except for Approved which the admin gate may flip false -> true.
type Bid struct {
	BidID     string    `json:"bid_id"`
	ListingID string    `json:"listing_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    float64   `json:"amount"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
}
