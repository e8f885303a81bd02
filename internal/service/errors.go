// Package service holds the business rules of the auction platform: bid
// acceptance, auction CRUD with cache-aside reads, and settlement.
package service

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for errors.Is checks across layers. Validation and
// conflict errors carry enough detail for the caller to retry correctly;
// storage errors propagate wrapped and abort the whole operation.
var (
	// ErrUnauthorized means the request carried no caller identity at all.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the caller is authenticated but lacks the role
	// capability for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation means the input was malformed (non-positive amount,
	// missing fields, end date in the past).
	ErrValidation = errors.New("invalid input")

	// ErrBidTooLow means the amount did not strictly exceed the current
	// minimum. Recoverable: resubmit above BidTooLowError.Minimum.
	ErrBidTooLow = errors.New("bid too low")

	// ErrAuctionClosed means the auction's end time has passed.
	ErrAuctionClosed = errors.New("auction has ended")

	// ErrAuctionLive means settlement was attempted before the end time.
	ErrAuctionLive = errors.New("auction still live")

	// ErrAlreadySettled means settlement was attempted twice.
	ErrAlreadySettled = errors.New("auction already settled")
)

// BidTooLowError reports a rejected bid together with the minimum the
// caller must strictly exceed on retry. errors.Is(err, ErrBidTooLow) holds.
type BidTooLowError struct {
	Minimum int64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid must be higher than the current minimum of %d", e.Minimum)
}

func (e *BidTooLowError) Is(target error) bool { return target == ErrBidTooLow }

// AuctionClosedError reports a bid on a closed auction together with its
// end time. errors.Is(err, ErrAuctionClosed) holds.
type AuctionClosedError struct {
	EndedAt time.Time
}

func (e *AuctionClosedError) Error() string {
	return fmt.Sprintf("auction ended at %s", e.EndedAt.UTC().Format(time.RFC3339))
}

func (e *AuctionClosedError) Is(target error) bool { return target == ErrAuctionClosed }
