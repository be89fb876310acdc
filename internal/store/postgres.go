package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
)

// Schema creates the tables the PostgresStore expects. Applied by the
// operator (or the test harness); the store itself never migrates.
const Schema = `
CREATE TABLE IF NOT EXISTS listings (
	listing_id     VARCHAR(64) PRIMARY KEY,
	seller_id      VARCHAR(64) NOT NULL,
	title          VARCHAR(255) NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	starting_price NUMERIC(20, 2) NOT NULL,
	end_time       TIMESTAMPTZ NOT NULL,
	status         VARCHAR(16) NOT NULL DEFAULT 'active',
	highest_bid_id VARCHAR(64)
);
CREATE TABLE IF NOT EXISTS bids (
	bid_id     VARCHAR(64) PRIMARY KEY,
	listing_id VARCHAR(64) NOT NULL REFERENCES listings(listing_id),
	bidder_id  VARCHAR(64) NOT NULL,
	amount     NUMERIC(20, 2) NOT NULL,
	approved   BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_bids_listing ON bids(listing_id);
`

// PostgresStore is a pgx-backed implementation of AuctionStore.
// Per-listing serialization of bid admission uses a row lock on the
// listing (SELECT ... FOR UPDATE), so concurrent bids on one listing
// commit in a linearizable order without cross-listing contention.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

const listingColumns = `listing_id, seller_id, title, description, starting_price, end_time, status, COALESCE(highest_bid_id, '')`

func scanListing(row pgx.Row) (model.Listing, error) {
	var l model.Listing
	err := row.Scan(&l.ListingID, &l.SellerID, &l.Title, &l.Description,
		&l.StartingPrice, &l.EndTime, &l.Status, &l.HighestBidID)
	return l, err
}

// AddListing inserts a listing. Used for seeding and tests.
func (s *PostgresStore) AddListing(ctx context.Context, listing model.Listing) error {
	if listing.Status == "" {
		listing.Status = model.ListingActive
	}
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO listings (listing_id, seller_id, title, description, starting_price, end_time, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		listing.ListingID, listing.SellerID, listing.Title, listing.Description,
		listing.StartingPrice, listing.EndTime, listing.Status)
	if err != nil {
		return fmt.Errorf("add listing %s: %w: %v", listing.ListingID, auctionerrors.ErrStoreUnavailable, err)
	}
	return nil
}

// GetListing returns the listing with the given id
func (s *PostgresStore) GetListing(ctx context.Context, listingID string) (model.Listing, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE listing_id = $1`, listingID)
	listing, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if err != nil {
		return model.Listing{}, fmt.Errorf("get listing %s: %w: %v", listingID, auctionerrors.ErrStoreUnavailable, err)
	}
	return listing, nil
}

// ListListings returns every listing in the store
func (s *PostgresStore) ListListings(ctx context.Context) ([]model.Listing, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+listingColumns+` FROM listings ORDER BY end_time`)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w: %v", auctionerrors.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("list listings: %w: %v", auctionerrors.ErrStoreUnavailable, err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list listings: %w: %v", auctionerrors.ErrStoreUnavailable, err)
	}
	return listings, nil
}

// ListExpiredListings returns still-active listings whose end time is at or before now
func (s *PostgresStore) ListExpiredListings(ctx context.Context, now time.Time) ([]model.Listing, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE status = $1 AND end_time <= $2`,
		model.ListingActive, now)
	if err != nil {
		return nil, fmt.Errorf("list expired listings: %w: %v", auctionerrors.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("list expired listings: %w: %v", auctionerrors.ErrStoreUnavailable, err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expired listings: %w: %v", auctionerrors.ErrStoreUnavailable, err)
	}
	return listings, nil
}

// GetBidsByListing returns all bids for a listing in creation order
func (s *PostgresStore) GetBidsByListing(ctx context.Context, listingID string) ([]model.Bid, error) {
	if _, err := s.GetListing(ctx, listingID); err != nil {
		return nil, err
	}

	rows, err := s.Pool.Query(ctx,
		`SELECT bid_id, listing_id, bidder_id, amount, approved, created_at
		 FROM bids WHERE listing_id = $1 ORDER BY created_at, bid_id`, listingID)
	if err != nil {
		return nil, fmt.Errorf("get bids for listing %s: %w: %v", listingID, auctionerrors.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.BidID, &b.ListingID, &b.BidderID, &b.Amount, &b.Approved, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("get bids for listing %s: %w: %v", listingID, auctionerrors.ErrStoreUnavailable, err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get bids for listing %s: %w: %v", listingID, auctionerrors.ErrStoreUnavailable, err)
	}
	return bids, nil
}

// GetHighestBid returns the highest accepted bid for a listing
func (s *PostgresStore) GetHighestBid(ctx context.Context, listingID string) (model.Bid, error) {
	if _, err := s.GetListing(ctx, listingID); err != nil {
		return model.Bid{}, err
	}

	var b model.Bid
	err := s.Pool.QueryRow(ctx,
		`SELECT bid_id, listing_id, bidder_id, amount, approved, created_at
		 FROM bids WHERE listing_id = $1 ORDER BY amount DESC, created_at LIMIT 1`, listingID).
		Scan(&b.BidID, &b.ListingID, &b.BidderID, &b.Amount, &b.Approved, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, auctionerrors.ErrNoBids)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("get highest bid for listing %s: %w: %v", listingID, auctionerrors.ErrStoreUnavailable, err)
	}
	return b, nil
}

// InsertBid records a bid inside a transaction that locks the listing row,
// making the highest-bid comparison and the write atomic per listing.
func (s *PostgresStore) InsertBid(ctx context.Context, bid model.Bid) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("insert bid %s: %w: %v", bid.BidID, auctionerrors.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	var status model.ListingStatus
	var startingPrice float64
	err = tx.QueryRow(ctx,
		`SELECT status, starting_price FROM listings WHERE listing_id = $1 FOR UPDATE`,
		bid.ListingID).Scan(&status, &startingPrice)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("insert bid for listing %s: %w", bid.ListingID, auctionerrors.ErrListingNotFound)
	}
	if err != nil {
		return fmt.Errorf("insert bid for listing %s: %w: %v", bid.ListingID, auctionerrors.ErrStoreUnavailable, err)
	}
	if status != model.ListingActive {
		return fmt.Errorf("insert bid for listing %s: %w", bid.ListingID, auctionerrors.ErrAuctionEnded)
	}

	var floor float64
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(amount), $2) FROM bids WHERE listing_id = $1`,
		bid.ListingID, startingPrice).Scan(&floor)
	if err != nil {
		return fmt.Errorf("insert bid for listing %s: %w: %v", bid.ListingID, auctionerrors.ErrStoreUnavailable, err)
	}
	if bid.Amount <= floor {
		return fmt.Errorf("insert bid for listing %s: amount %.2f does not exceed %.2f: %w",
			bid.ListingID, bid.Amount, floor, auctionerrors.ErrOutbid)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO bids (bid_id, listing_id, bidder_id, amount, approved, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		bid.BidID, bid.ListingID, bid.BidderID, bid.Amount, bid.Approved, bid.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert bid %s: %w: %v", bid.BidID, auctionerrors.ErrStoreUnavailable, err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE listings SET highest_bid_id = $2 WHERE listing_id = $1`,
		bid.ListingID, bid.BidID)
	if err != nil {
		return fmt.Errorf("insert bid %s: %w: %v", bid.BidID, auctionerrors.ErrStoreUnavailable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("insert bid %s: %w: %v", bid.BidID, auctionerrors.ErrStoreUnavailable, err)
	}
	return nil
}

// CompareAndCloseListing flips a listing Active -> Closed exactly once
// using a conditional update.
func (s *PostgresStore) CompareAndCloseListing(ctx context.Context, listingID string) error {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE listings SET status = $2 WHERE listing_id = $1 AND status = $3`,
		listingID, model.ListingClosed, model.ListingActive)
	if err != nil {
		return fmt.Errorf("close listing %s: %w: %v", listingID, auctionerrors.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Nothing updated: distinguish a lost close race from an unknown id.
	if _, err := s.GetListing(ctx, listingID); err != nil {
		return err
	}
	return fmt.Errorf("close listing %s: %w", listingID, auctionerrors.ErrAlreadyClosed)
}

// SetBidApproved marks a bid approved. Idempotent.
func (s *PostgresStore) SetBidApproved(ctx context.Context, bidID string) error {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE bids SET approved = TRUE WHERE bid_id = $1`, bidID)
	if err != nil {
		return fmt.Errorf("approve bid %s: %w: %v", bidID, auctionerrors.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("approve bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	return nil
}
