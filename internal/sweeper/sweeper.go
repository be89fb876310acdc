package sweeper

import (
	"context"
	"errors"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/hub"
	"auction-house/internal/store"
	"auction-house/utils"
)

// Publisher is the slice of the notification hub the sweeper needs.
type Publisher interface {
	Publish(listingID string, event hub.Event)
}

// Sweeper closes listings whose auction window has elapsed. It runs as a
// single recurring background task, independent of request handling,
// touching the rest of the system only through the store and the hub.
type Sweeper struct {
	store    store.AuctionStore
	events   Publisher
	interval time.Duration
	now      func() time.Time
}

// New creates a Sweeper that wakes every interval.
func New(st store.AuctionStore, events Publisher, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    st,
		events:   events,
		interval: interval,
		now:      time.Now,
	}
}

// WithClock overrides the wall-clock source. Used by tests.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// Run ticks until ctx is cancelled. Each tick sweeps once; a failed sweep
// is retried implicitly on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	utils.Info("sweeper started", map[string]any{"interval": s.interval.String()})
	for {
		select {
		case <-ctx.Done():
			utils.Info("sweeper stopped", nil)
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one expiration pass: every listing past its end time and
// still Active is closed exactly once and its subscribers are told who won.
func (s *Sweeper) Sweep(ctx context.Context) {
	expired, err := s.store.ListExpiredListings(ctx, s.now())
	if err != nil {
		utils.Error("sweeper: failed to list expired listings", map[string]any{"error": err.Error()})
		return
	}

	for _, listing := range expired {
		if err := s.store.CompareAndCloseListing(ctx, listing.ListingID); err != nil {
			if errors.Is(err, auctionerrors.ErrAlreadyClosed) {
				// Lost the close race. The winner of the race notified.
				continue
			}
			utils.Error("sweeper: failed to close listing, will retry next tick", map[string]any{
				"listing_id": listing.ListingID,
				"error":      err.Error(),
			})
			continue
		}

		winner, finalPrice := s.determineWinner(ctx, listing.ListingID)
		s.events.Publish(listing.ListingID, hub.NewAuctionClosed(listing.ListingID, winner, finalPrice))
		utils.Info("sweeper: listing closed", map[string]any{
			"listing_id":  listing.ListingID,
			"winner":      winner,
			"final_price": finalPrice,
		})
	}
}

// determineWinner resolves the bidder of the highest accepted bid. Empty
// winner and zero price mean the auction ended without bids.
func (s *Sweeper) determineWinner(ctx context.Context, listingID string) (string, float64) {
	highest, err := s.store.GetHighestBid(ctx, listingID)
	if err != nil {
		if !errors.Is(err, auctionerrors.ErrNoBids) {
			utils.Error("sweeper: failed to determine winner", map[string]any{
				"listing_id": listingID,
				"error":      err.Error(),
			})
		}
		return "", 0
	}
	return highest.BidderID, highest.Amount
}
