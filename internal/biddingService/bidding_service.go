package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/hub"
	"auction-house/internal/models"
	"auction-house/internal/store"
	"auction-house/utils"
)

// Publisher is the slice of the notification hub the engine needs.
type Publisher interface {
	Publish(listingID string, event hub.Event)
}

// BiddingService defines the business logic for auction bid admission
type BiddingService struct {
	store  store.AuctionStore
	events Publisher
	now    func() time.Time
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(st store.AuctionStore, events Publisher) *BiddingService {
	return &BiddingService{
		store:  st,
		events: events,
		now:    time.Now,
	}
}

// WithClock overrides the wall-clock source. Used by tests.
func (s *BiddingService) WithClock(now func() time.Time) *BiddingService {
	s.now = now
	return s
}

// PlaceBid validates and records a user's bid for a listing. On acceptance
// the bid is the new highest bid for the listing and a highest-bid event is
// published to the listing's subscriber group.
//
// The amount comparison happens twice: once here against a snapshot, so a
// plainly insufficient bid reports ErrBidTooLow, and once inside the
// store's per-listing critical section, so a bid that was sufficient at
// validation time but lost the race to a concurrent bidder reports
// ErrOutbid. The two failures are distinct on purpose: only the second is
// worth retrying at a higher price.
func (s *BiddingService) PlaceBid(ctx context.Context, listingID, bidderID string, amount float64) (models.Bid, error) {
	if err := s.validateBid(ctx, listingID, bidderID, amount); err != nil {
		return models.Bid{}, err
	}

	bid := models.Bid{
		BidID:     utils.GenerateID(),
		ListingID: listingID,
		BidderID:  bidderID,
		Amount:    amount,
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.InsertBid(ctx, bid); err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to record bid for listing %s by user %s: %w", listingID, bidderID, err)
	}

	// Best-effort: acceptance already committed, delivery failures are
	// invisible to the bidder.
	s.events.Publish(listingID, hub.NewHighestBid(listingID, amount))

	return bid, nil
}

// validateBid checks input validity and business rules for bidding
func (s *BiddingService) validateBid(ctx context.Context, listingID, bidderID string, amount float64) error {
	if listingID == "" || bidderID == "" {
		return fmt.Errorf("service: %w - missing listingID or bidderID", auctionerrors.ErrInvalidBid)
	}
	if amount <= 0 {
		return fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}

	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return fmt.Errorf("service: failed to load listing: %w", err)
	}

	// The timestamp check is authoritative: an expired listing the sweeper
	// has not closed yet must still reject bids.
	if listing.Status != models.ListingActive || listing.Expired(s.now()) {
		return fmt.Errorf("service: listing %s: %w", listingID, auctionerrors.ErrAuctionEnded)
	}
	if listing.SellerID == bidderID {
		return fmt.Errorf("service: listing %s: %w", listingID, auctionerrors.ErrSelfBid)
	}

	floor := listing.StartingPrice
	highest, err := s.store.GetHighestBid(ctx, listingID)
	if err == nil {
		floor = highest.Amount
	} else if !errors.Is(err, auctionerrors.ErrNoBids) {
		return fmt.Errorf("service: failed to check highest bid: %w", err)
	}

	if amount <= floor {
		return fmt.Errorf("service: %w - amount must exceed %.2f", auctionerrors.ErrBidTooLow, floor)
	}

	return nil
}

// GetBidsForListing returns all bids for a specific listing
func (s *BiddingService) GetBidsForListing(ctx context.Context, listingID string) ([]models.Bid, error) {
	if listingID == "" {
		return nil, fmt.Errorf("service: %w - empty listing ID", auctionerrors.ErrInvalidBid)
	}

	bids, err := s.store.GetBidsByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for listing %s: %w", listingID, err)
	}

	return bids, nil
}

// GetHighestBid returns the highest bid for a specific listing
func (s *BiddingService) GetHighestBid(ctx context.Context, listingID string) (models.Bid, error) {
	if listingID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty listing ID", auctionerrors.ErrInvalidBid)
	}

	highest, err := s.store.GetHighestBid(ctx, listingID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get highest bid for listing %s: %w", listingID, err)
	}

	return highest, nil
}

// ListListings returns every listing known to the store
func (s *BiddingService) ListListings(ctx context.Context) ([]models.Listing, error) {
	listings, err := s.store.ListListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list listings: %w", err)
	}
	return listings, nil
}
