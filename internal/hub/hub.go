package hub

import "sync"

// EventKind identifies the type of a real-time notification.
type EventKind string

const (
	KindHighestBidUpdated EventKind = "highest_bid_updated"
	KindAuctionClosed     EventKind = "auction_closed"
	KindAdminMessage      EventKind = "admin_message"
)

// Event is a single real-time notification pushed to subscribers.
type Event struct {
	Kind       EventKind `json:"kind"`
	ListingID  string    `json:"listing_id,omitempty"`
	Amount     float64   `json:"amount,omitempty"`
	Winner     string    `json:"winner,omitempty"`
	FinalPrice float64   `json:"final_price,omitempty"`
	Message    string    `json:"message,omitempty"`
}

// NewHighestBid builds the event published after a bid is accepted.
func NewHighestBid(listingID string, amount float64) Event {
	return Event{Kind: KindHighestBidUpdated, ListingID: listingID, Amount: amount}
}

// NewAuctionClosed builds the event published when a listing closes.
// Winner is empty when the auction ended with zero bids.
func NewAuctionClosed(listingID, winner string, finalPrice float64) Event {
	return Event{Kind: KindAuctionClosed, ListingID: listingID, Winner: winner, FinalPrice: finalPrice}
}

// NewAdminMessage builds a process-wide administrative announcement.
func NewAdminMessage(message string) Event {
	return Event{Kind: KindAdminMessage, Message: message}
}

// Subscriber is one connected notification channel. Events arrive on a
// buffered channel; the owner drains it until the hub closes it on Remove.
type Subscriber struct {
	events chan Event
}

// Events returns the subscriber's delivery channel. It is closed when the
// subscriber is removed from the hub.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

const subscriberBuffer = 32

// Hub maintains per-listing subscriber groups and fans events out to them.
// Membership is process-lifetime only: created empty at start, never
// persisted, rebuilt from zero on restart.
//
// Every operation serializes on one mutex. Sends are non-blocking (a full
// subscriber buffer drops the event), so holding the lock across a publish
// is bounded and one stalled subscriber never delays the others. Delivery
// is at-most-once and per-listing publish order is preserved for a single
// publisher.
type Hub struct {
	mu     sync.Mutex
	groups map[string]map[*Subscriber]struct{} // key: listingID
	subs   map[*Subscriber]map[string]struct{} // subscriber -> joined listingIDs
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		groups: make(map[string]map[*Subscriber]struct{}),
		subs:   make(map[*Subscriber]map[string]struct{}),
	}
}

// Register adds a new subscriber with no group memberships.
func (h *Hub) Register() *Subscriber {
	sub := &Subscriber{events: make(chan Event, subscriberBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[sub] = make(map[string]struct{})
	return sub
}

// Subscribe joins a subscriber to a listing's group. The group is created
// lazily on first subscribe. Subscribing twice is a no-op.
func (h *Hub) Subscribe(sub *Subscriber, listingID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	joined, ok := h.subs[sub]
	if !ok {
		return // already removed
	}
	joined[listingID] = struct{}{}

	group, ok := h.groups[listingID]
	if !ok {
		group = make(map[*Subscriber]struct{})
		h.groups[listingID] = group
	}
	group[sub] = struct{}{}
}

// Unsubscribe drops a subscriber from a listing's group, pruning the group
// when it empties.
func (h *Hub) Unsubscribe(sub *Subscriber, listingID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveGroup(sub, listingID)
	if joined, ok := h.subs[sub]; ok {
		delete(joined, listingID)
	}
}

// Remove drops a subscriber from every group and closes its channel.
// Called on disconnect; safe to call more than once.
func (h *Hub) Remove(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	joined, ok := h.subs[sub]
	if !ok {
		return
	}
	for listingID := range joined {
		h.leaveGroup(sub, listingID)
	}
	delete(h.subs, sub)
	close(sub.events)
}

// leaveGroup removes sub from one group. Caller holds h.mu.
func (h *Hub) leaveGroup(sub *Subscriber, listingID string) {
	group, ok := h.groups[listingID]
	if !ok {
		return
	}
	delete(group, sub)
	if len(group) == 0 {
		delete(h.groups, listingID)
	}
}

// Publish delivers an event to every subscriber of the listing's group.
// Best-effort: an empty group or a full subscriber buffer is not an error.
func (h *Hub) Publish(listingID string, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.groups[listingID] {
		h.deliver(sub, event)
	}
}

// BroadcastAll delivers an event to every registered subscriber,
// regardless of group membership. Used for administrative announcements.
func (h *Hub) BroadcastAll(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		h.deliver(sub, event)
	}
}

// deliver sends without blocking; a subscriber that cannot keep up loses
// the event rather than stalling fan-out. Caller holds h.mu.
func (h *Hub) deliver(sub *Subscriber, event Event) {
	select {
	case sub.events <- event:
	default:
	}
}

// GroupSize reports the number of subscribers watching a listing.
func (h *Hub) GroupSize(listingID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups[listingID])
}
