package store

import (
	"context"
	"time"

	model "auction-house/internal/models"
)

// AuctionStore defines the listing and bid storage interface for the
// auction system. Implementations must report not-found, conflict and
// success distinctly via the sentinel errors in internal/auctionerrors.
type AuctionStore interface {
	// GetListing returns the listing with the given id.
	GetListing(ctx context.Context, listingID string) (model.Listing, error)

	// ListListings returns every listing known to the store.
	ListListings(ctx context.Context) ([]model.Listing, error)

	// ListExpiredListings returns listings that are still Active but whose
	// end time is at or before now. Used by the expiration sweeper.
	ListExpiredListings(ctx context.Context, now time.Time) ([]model.Listing, error)

	// GetBidsByListing returns all bids recorded for a listing.
	GetBidsByListing(ctx context.Context, listingID string) ([]model.Bid, error)

	// GetHighestBid returns the highest accepted bid for a listing, or
	// ErrNoBids when none exists.
	GetHighestBid(ctx context.Context, listingID string) (model.Bid, error)

	// InsertBid records a bid. The amount comparison against the current
	// highest bid (or the starting price) and the write are atomic per
	// listing: a bid that no longer strictly exceeds the committed highest
	// value fails with ErrOutbid and nothing is written. A closed listing
	// fails with ErrAuctionEnded.
	InsertBid(ctx context.Context, bid model.Bid) error

	// CompareAndCloseListing transitions a listing Active -> Closed.
	// Exactly one caller succeeds per listing; the losers get
	// ErrAlreadyClosed. Unknown listings get ErrListingNotFound.
	CompareAndCloseListing(ctx context.Context, listingID string) error

	// SetBidApproved marks a bid approved. Approving an already-approved
	// bid is a no-op success. Unknown bids get ErrBidNotFound.
	SetBidApproved(ctx context.Context, bidID string) error
}
