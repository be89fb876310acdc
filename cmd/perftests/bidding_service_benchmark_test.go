package perftests

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	bidding "auction-house/internal/biddingService"
	"auction-house/internal/hub"
	model "auction-house/internal/models"
	"auction-house/internal/store"
)

func benchListing(listingID string, startingPrice float64) model.Listing {
	return model.Listing{
		ListingID:     listingID,
		SellerID:      "seller_bench",
		Title:         listingID,
		Description:   "benchmark listing",
		StartingPrice: startingPrice,
		EndTime:       time.Now().UTC().Add(time.Hour),
		Status:        model.ListingActive,
	}
}

// Benchmark 1: PlaceBid - Isolated Listings (Low Contention - Micro Benchmark)
func Benchmark_PlaceBid_Isolated(b *testing.B) {
	memStore := store.NewMemoryStore()
	svc := bidding.NewBiddingService(memStore, hub.NewHub())
	ctx := context.Background()

	for i := 0; i < b.N; i++ {
		memStore.AddListing(benchListing(fmt.Sprintf("listing_%d", i), 50))
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		userID := fmt.Sprintf("user_%d", i)
		listingID := fmt.Sprintf("listing_%d", i)
		bidAmount := float64(51 + rand.Intn(100))
		if _, err := svc.PlaceBid(ctx, listingID, userID, bidAmount); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}

// Benchmark 2: PlaceBid - Shared Listing (High Contention - Concurrency Benchmark)

func Benchmark_PlaceBid_ConcurrentSharedListing(b *testing.B) {
	memStore := store.NewMemoryStore()
	svc := bidding.NewBiddingService(memStore, hub.NewHub())
	ctx := context.Background()

	memStore.AddListing(benchListing("shared_listing_1", 50))

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 50

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			userID := fmt.Sprintf("user_parallel_%d", rnd.Int())

			nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
			_, _ = svc.PlaceBid(ctx, "shared_listing_1", userID, float64(nextBid))
		}
	})
}

// Benchmark 3: GetHighestBid - Single - Threaded (Low Contention)
func Benchmark_GetHighestBid_SingleThreaded(b *testing.B) {
	memStore := store.NewMemoryStore()
	svc := bidding.NewBiddingService(memStore, hub.NewHub())
	ctx := context.Background()

	for i := 0; i < b.N; i++ {
		listingID := fmt.Sprintf("listing_%d", i)
		memStore.AddListing(benchListing(listingID, 50))

		for j := 0; j < 10; j++ {
			userID := fmt.Sprintf("user_%d_%d", i, j)
			bidAmount := float64(60 + j*10)
			_, _ = svc.PlaceBid(ctx, listingID, userID, bidAmount)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		listingID := fmt.Sprintf("listing_%d", i)
		if _, err := svc.GetHighestBid(ctx, listingID); err != nil {
			b.Fatalf("failed to get highest bid: %v", err)
		}
	}
}

// Benchmark 4: GetHighestBid - Concurrent (High Contention)
func Benchmark_GetHighestBid_ConcurrentSharedListing(b *testing.B) {
	memStore := store.NewMemoryStore()
	svc := bidding.NewBiddingService(memStore, hub.NewHub())
	ctx := context.Background()

	memStore.AddListing(benchListing("shared_listing_1", 50))

	for j := 0; j < 100; j++ {
		userID := fmt.Sprintf("user_%d", j)
		bidAmount := float64(51 + j)
		_, _ = svc.PlaceBid(ctx, "shared_listing_1", userID, bidAmount)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var counter int64

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := svc.GetHighestBid(ctx, "shared_listing_1"); err != nil {
				b.Fatalf("failed to get highest bid: %v", err)
			}
			atomic.AddInt64(&counter, 1)
		}
	})
}

// Benchmark 5: Mixed Workload (Readers + Writers concurrently)
func Benchmark_MixedWorkload_SharedListing(b *testing.B) {
	memStore := store.NewMemoryStore()
	svc := bidding.NewBiddingService(memStore, hub.NewHub())
	ctx := context.Background()

	memStore.AddListing(benchListing("shared_listing_1", 50))

	for j := 0; j < 50; j++ {
		userID := fmt.Sprintf("user_seed_%d", j)
		bidAmount := float64(51 + j*2)
		_, _ = svc.PlaceBid(ctx, "shared_listing_1", userID, bidAmount)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 150
	var counter int64

	// Ratio: 70% readers, 30% writers
	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			opType := rnd.Intn(10)
			switch {
			case opType < 3:
				// Writer: place a new bid
				userID := fmt.Sprintf("user_writer_%d", rnd.Int())
				nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
				_, _ = svc.PlaceBid(ctx, "shared_listing_1", userID, float64(nextBid))
			default:
				// Reader: get the highest bid
				_, _ = svc.GetHighestBid(ctx, "shared_listing_1")
			}
			atomic.AddInt64(&counter, 1)
		}
	})
}
