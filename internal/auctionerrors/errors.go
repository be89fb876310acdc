package auctionerrors

import "errors"

// Store-level errors
var (
	ErrListingNotFound  = errors.New("listing not found")
	ErrBidNotFound      = errors.New("bid not found")
	ErrNoBids           = errors.New("no bids found for listing")
	ErrAlreadyClosed    = errors.New("listing already closed")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// business logic errors
var (
	ErrInvalidBid   = errors.New("invalid bid")
	ErrBidTooLow    = errors.New("bid amount too low")
	ErrAuctionEnded = errors.New("auction has ended")
	ErrSelfBid      = errors.New("seller cannot bid on own listing")
	ErrOutbid       = errors.New("bid lost race to a higher bid")
)

// identity errors
var (
	ErrUnknownToken = errors.New("unknown token")
	ErrForbidden    = errors.New("caller lacks required role")
)
