package admin

import (
	"context"
	"fmt"

	"auction-house/internal/hub"
	"auction-house/internal/models"
	"auction-house/internal/store"
)

// Broadcaster is the slice of the notification hub the admin surface needs.
type Broadcaster interface {
	BroadcastAll(event hub.Event)
}

// ListingWithBids is one dashboard row: a listing and every bid on it.
type ListingWithBids struct {
	models.Listing
	Bids []models.Bid `json:"bids"`
}

// AdminService implements the administrative surface: the dashboard
// listing, the bid approval gate and process-wide announcements. Approval
// is advisory metadata only; it never alters highest-bid determination or
// listing status, and triggers no notification.
type AdminService struct {
	store  store.AuctionStore
	events Broadcaster
}

// NewAdminService creates a new AdminService instance
func NewAdminService(st store.AuctionStore, events Broadcaster) *AdminService {
	return &AdminService{store: st, events: events}
}

// ApproveBid marks a recorded bid as approved. Approving an
// already-approved bid is a no-op success.
func (s *AdminService) ApproveBid(ctx context.Context, bidID string) error {
	if err := s.store.SetBidApproved(ctx, bidID); err != nil {
		return fmt.Errorf("admin: failed to approve bid %s: %w", bidID, err)
	}
	return nil
}

// ListingsWithBids returns every listing with its full bid history,
// the admin dashboard view.
func (s *AdminService) ListingsWithBids(ctx context.Context) ([]ListingWithBids, error) {
	listings, err := s.store.ListListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("admin: failed to list listings: %w", err)
	}

	rows := make([]ListingWithBids, 0, len(listings))
	for _, listing := range listings {
		bids, err := s.store.GetBidsByListing(ctx, listing.ListingID)
		if err != nil {
			return nil, fmt.Errorf("admin: failed to load bids for listing %s: %w", listing.ListingID, err)
		}
		if bids == nil {
			bids = []models.Bid{}
		}
		rows = append(rows, ListingWithBids{Listing: listing, Bids: bids})
	}
	return rows, nil
}

// Broadcast pushes an administrative announcement to every connected
// subscriber. Best-effort, like all notification delivery.
func (s *AdminService) Broadcast(message string) {
	s.events.BroadcastAll(hub.NewAdminMessage(message))
}
