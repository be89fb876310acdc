package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"

	"github.com/stretchr/testify/require"
)

// Helper to create a new Listing
func newListing(listingID, sellerID string, startingPrice float64, endTime time.Time) model.Listing {
	return model.Listing{
		ListingID:     listingID,
		SellerID:      sellerID,
		Title:         fmt.Sprintf("%s title", listingID),
		Description:   fmt.Sprintf("%s description", listingID),
		StartingPrice: startingPrice,
		EndTime:       endTime,
		Status:        model.ListingActive,
	}
}

// Helper to create a new Bid
func newBid(bidID, listingID, bidderID string, amount float64, createdAt time.Time) model.Bid {
	return model.Bid{
		BidID:     bidID,
		ListingID: listingID,
		BidderID:  bidderID,
		Amount:    amount,
		CreatedAt: createdAt,
	}
}

// Test InsertBid
func TestMemoryStore_InsertBid(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	endTime := time.Now().Add(time.Hour)

	tests := []struct {
		name      string
		bid       model.Bid
		setup     func(s *MemoryStore)
		wantError error
	}{
		{
			name:  "first_bid_above_starting_price",
			bid:   newBid("bid1", "listing1", "user1", 150, time.Now()),
			setup: func(s *MemoryStore) {},
		},
		{
			name:      "listing_not_found",
			bid:       newBid("bid2", "listingX", "user1", 150, time.Now()),
			setup:     func(s *MemoryStore) {},
			wantError: auctionerrors.ErrListingNotFound,
		},
		{
			name:      "amount_equal_to_starting_price_rejected",
			bid:       newBid("bid3", "listing1", "user1", 100, time.Now()),
			setup:     func(s *MemoryStore) {},
			wantError: auctionerrors.ErrOutbid,
		},
		{
			name:      "amount_below_starting_price_rejected",
			bid:       newBid("bid4", "listing1", "user1", 50, time.Now()),
			setup:     func(s *MemoryStore) {},
			wantError: auctionerrors.ErrOutbid,
		},
		{
			name: "amount_equal_to_highest_rejected",
			bid:  newBid("bid5", "listing1", "user2", 150, time.Now()),
			setup: func(s *MemoryStore) {
				require.NoError(t, s.InsertBid(ctx, newBid("seed", "listing1", "user1", 150, time.Now())))
			},
			wantError: auctionerrors.ErrOutbid,
		},
		{
			name: "amount_above_highest_accepted",
			bid:  newBid("bid6", "listing1", "user2", 200, time.Now()),
			setup: func(s *MemoryStore) {
				require.NoError(t, s.InsertBid(ctx, newBid("seed", "listing1", "user1", 150, time.Now())))
			},
		},
		{
			name: "closed_listing_rejected",
			bid:  newBid("bid7", "listing1", "user1", 500, time.Now()),
			setup: func(s *MemoryStore) {
				require.NoError(t, s.CompareAndCloseListing(ctx, "listing1"))
			},
			wantError: auctionerrors.ErrAuctionEnded,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := NewMemoryStore()
			s.AddListing(newListing("listing1", "seller1", 100, endTime))
			tc.setup(s)

			err := s.InsertBid(ctx, tc.bid)
			if tc.wantError != nil {
				require.ErrorIs(t, err, tc.wantError)
				return
			}
			require.NoError(t, err)

			highest, err := s.GetHighestBid(ctx, tc.bid.ListingID)
			require.NoError(t, err)
			require.Equal(t, tc.bid.BidID, highest.BidID)

			listing, err := s.GetListing(ctx, tc.bid.ListingID)
			require.NoError(t, err)
			require.Equal(t, tc.bid.BidID, listing.HighestBidID)
		})
	}
}

// Concurrent bids on one listing: every accepted bid must have strictly
// exceeded the committed highest value at its admission, so the final
// highest equals the maximum accepted amount.
func TestMemoryStore_InsertBid_ConcurrentSingleWinnerPerAmount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	s.AddListing(newListing("listing1", "seller1", 100, time.Now().Add(time.Hour)))

	const bidders = 50
	var wg sync.WaitGroup

	for i := 0; i < bidders; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			bid := newBid(fmt.Sprintf("bid%d", i), "listing1", fmt.Sprintf("user%d", i), float64(101+i%10), time.Now())
			// Losing the race is expected for most goroutines.
			_ = s.InsertBid(ctx, bid)
		}()
	}
	wg.Wait()

	bids, err := s.GetBidsByListing(ctx, "listing1")
	require.NoError(t, err)
	require.NotEmpty(t, bids)

	// Accepted amounts are strictly increasing in commit order.
	prev := 100.0
	for _, b := range bids {
		require.Greater(t, b.Amount, prev)
		prev = b.Amount
	}

	highest, err := s.GetHighestBid(ctx, "listing1")
	require.NoError(t, err)
	require.Equal(t, prev, highest.Amount)
}

// Test CompareAndCloseListing
func TestMemoryStore_CompareAndCloseListing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("closes_active_listing", func(t *testing.T) {
		s := NewMemoryStore()
		s.AddListing(newListing("listing1", "seller1", 100, time.Now()))

		require.NoError(t, s.CompareAndCloseListing(ctx, "listing1"))

		listing, err := s.GetListing(ctx, "listing1")
		require.NoError(t, err)
		require.Equal(t, model.ListingClosed, listing.Status)
	})

	t.Run("second_close_conflicts", func(t *testing.T) {
		s := NewMemoryStore()
		s.AddListing(newListing("listing1", "seller1", 100, time.Now()))

		require.NoError(t, s.CompareAndCloseListing(ctx, "listing1"))
		require.ErrorIs(t, s.CompareAndCloseListing(ctx, "listing1"), auctionerrors.ErrAlreadyClosed)
	})

	t.Run("unknown_listing", func(t *testing.T) {
		s := NewMemoryStore()
		require.ErrorIs(t, s.CompareAndCloseListing(ctx, "nope"), auctionerrors.ErrListingNotFound)
	})

	t.Run("exactly_one_concurrent_close_succeeds", func(t *testing.T) {
		s := NewMemoryStore()
		s.AddListing(newListing("listing1", "seller1", 100, time.Now()))

		const closers = 20
		var wg sync.WaitGroup
		successes := make(chan struct{}, closers)
		for i := 0; i < closers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := s.CompareAndCloseListing(ctx, "listing1"); err == nil {
					successes <- struct{}{}
				}
			}()
		}
		wg.Wait()
		close(successes)

		var count int
		for range successes {
			count++
		}
		require.Equal(t, 1, count)
	})
}

// Test ListExpiredListings
func TestMemoryStore_ListExpiredListings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()

	s := NewMemoryStore()
	s.AddListing(newListing("past", "seller1", 100, now.Add(-time.Minute)))
	s.AddListing(newListing("boundary", "seller1", 100, now))
	s.AddListing(newListing("future", "seller1", 100, now.Add(time.Minute)))

	closed := newListing("closed", "seller1", 100, now.Add(-time.Hour))
	closed.Status = model.ListingClosed
	s.AddListing(closed)

	expired, err := s.ListExpiredListings(ctx, now)
	require.NoError(t, err)

	ids := make([]string, 0, len(expired))
	for _, l := range expired {
		ids = append(ids, l.ListingID)
	}
	require.ElementsMatch(t, []string{"past", "boundary"}, ids)
}

// Test SetBidApproved
func TestMemoryStore_SetBidApproved(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	s.AddListing(newListing("listing1", "seller1", 100, time.Now().Add(time.Hour)))
	require.NoError(t, s.InsertBid(ctx, newBid("bid1", "listing1", "user1", 150, time.Now())))

	t.Run("unknown_bid", func(t *testing.T) {
		require.ErrorIs(t, s.SetBidApproved(ctx, "nope"), auctionerrors.ErrBidNotFound)
	})

	t.Run("approve_and_approve_again_idempotent", func(t *testing.T) {
		require.NoError(t, s.SetBidApproved(ctx, "bid1"))

		bids, err := s.GetBidsByListing(ctx, "listing1")
		require.NoError(t, err)
		require.True(t, bids[0].Approved)

		// Second approval observes the same state.
		require.NoError(t, s.SetBidApproved(ctx, "bid1"))
		bids, err = s.GetBidsByListing(ctx, "listing1")
		require.NoError(t, err)
		require.True(t, bids[0].Approved)

		highest, err := s.GetHighestBid(ctx, "listing1")
		require.NoError(t, err)
		require.True(t, highest.Approved)
	})
}

// Test read operations on empty/missing data
func TestMemoryStore_Reads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	s.AddListing(newListing("listing1", "seller1", 100, time.Now().Add(time.Hour)))

	t.Run("highest_bid_no_bids", func(t *testing.T) {
		_, err := s.GetHighestBid(ctx, "listing1")
		require.ErrorIs(t, err, auctionerrors.ErrNoBids)
	})

	t.Run("highest_bid_unknown_listing", func(t *testing.T) {
		_, err := s.GetHighestBid(ctx, "nope")
		require.ErrorIs(t, err, auctionerrors.ErrListingNotFound)
	})

	t.Run("bids_unknown_listing", func(t *testing.T) {
		_, err := s.GetBidsByListing(ctx, "nope")
		require.ErrorIs(t, err, auctionerrors.ErrListingNotFound)
	})

	t.Run("bids_returns_copy", func(t *testing.T) {
		require.NoError(t, s.InsertBid(ctx, newBid("bid1", "listing1", "user1", 150, time.Now())))
		bids, err := s.GetBidsByListing(ctx, "listing1")
		require.NoError(t, err)
		bids[0].Amount = 0

		again, err := s.GetBidsByListing(ctx, "listing1")
		require.NoError(t, err)
		require.Equal(t, 150.0, again[0].Amount)
	})
}
