package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
)

// MemoryStore is a concurrency-safe in-memory implementation of
// AuctionStore. All state is process-lifetime only.
type MemoryStore struct {
	mu       sync.RWMutex
	listings map[string]model.Listing  // key: listingID
	bids     map[string][]model.Bid    // key: listingID -> bids in insertion order
	bidIndex map[string]bidLocation    // key: bidID -> position in bids
	highest  map[string]model.Bid      // key: listingID -> current highest bid
}

type bidLocation struct {
	listingID string
	index     int
}

// NewMemoryStore creates a new in-memory store instance
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		listings: make(map[string]model.Listing),
		bids:     make(map[string][]model.Bid),
		bidIndex: make(map[string]bidLocation),
		highest:  make(map[string]model.Bid),
	}
}

// AddListing seeds a listing. Used at startup and by tests.
func (s *MemoryStore) AddListing(listing model.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if listing.Status == "" {
		listing.Status = model.ListingActive
	}
	s.listings[listing.ListingID] = listing
}

// GetListing returns the listing with the given id
func (s *MemoryStore) GetListing(_ context.Context, listingID string) (model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, ok := s.listings[listingID]
	if !ok {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return listing, nil
}

// ListListings returns every listing in the store
func (s *MemoryStore) ListListings(_ context.Context) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listings := make([]model.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		listings = append(listings, l)
	}
	return listings, nil
}

// ListExpiredListings returns still-active listings whose end time is at or before now
func (s *MemoryStore) ListExpiredListings(_ context.Context, now time.Time) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var expired []model.Listing
	for _, l := range s.listings {
		if l.Status == model.ListingActive && l.Expired(now) {
			expired = append(expired, l)
		}
	}
	return expired, nil
}

// GetBidsByListing returns all bids for a listing in insertion order
func (s *MemoryStore) GetBidsByListing(_ context.Context, listingID string) ([]model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.listings[listingID]; !ok {
		return nil, fmt.Errorf("get bids for listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return append([]model.Bid(nil), s.bids[listingID]...), nil
}

// GetHighestBid returns the highest accepted bid for a listing
func (s *MemoryStore) GetHighestBid(_ context.Context, listingID string) (model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.listings[listingID]; !ok {
		return model.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	bid, ok := s.highest[listingID]
	if !ok {
		return model.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, auctionerrors.ErrNoBids)
	}
	return bid, nil
}

// InsertBid records a bid, atomically re-checking it against the committed
// highest value for the listing. Two racing bids on the same listing
// serialize on the store lock; the loser gets ErrOutbid.
func (s *MemoryStore) InsertBid(_ context.Context, bid model.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[bid.ListingID]
	if !ok {
		return fmt.Errorf("insert bid for listing %s: %w", bid.ListingID, auctionerrors.ErrListingNotFound)
	}
	if listing.Status != model.ListingActive {
		return fmt.Errorf("insert bid for listing %s: %w", bid.ListingID, auctionerrors.ErrAuctionEnded)
	}

	floor := listing.StartingPrice
	if current, ok := s.highest[bid.ListingID]; ok {
		floor = current.Amount
	}
	if bid.Amount <= floor {
		return fmt.Errorf("insert bid for listing %s: amount %.2f does not exceed %.2f: %w",
			bid.ListingID, bid.Amount, floor, auctionerrors.ErrOutbid)
	}

	s.bids[bid.ListingID] = append(s.bids[bid.ListingID], bid)
	s.bidIndex[bid.BidID] = bidLocation{listingID: bid.ListingID, index: len(s.bids[bid.ListingID]) - 1}
	s.highest[bid.ListingID] = bid

	listing.HighestBidID = bid.BidID
	s.listings[bid.ListingID] = listing

	return nil
}

// CompareAndCloseListing flips a listing Active -> Closed exactly once
func (s *MemoryStore) CompareAndCloseListing(_ context.Context, listingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[listingID]
	if !ok {
		return fmt.Errorf("close listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if listing.Status != model.ListingActive {
		return fmt.Errorf("close listing %s: %w", listingID, auctionerrors.ErrAlreadyClosed)
	}

	listing.Status = model.ListingClosed
	s.listings[listingID] = listing
	return nil
}

// SetBidApproved marks a bid approved. Idempotent.
func (s *MemoryStore) SetBidApproved(_ context.Context, bidID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc, ok := s.bidIndex[bidID]
	if !ok {
		return fmt.Errorf("approve bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}

	s.bids[loc.listingID][loc.index].Approved = true
	if highest, ok := s.highest[loc.listingID]; ok && highest.BidID == bidID {
		highest.Approved = true
		s.highest[loc.listingID] = highest
	}
	return nil
}
