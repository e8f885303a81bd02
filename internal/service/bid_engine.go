package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carsties/auction-service/internal/auth"
	"github.com/carsties/auction-service/internal/cache"
	"github.com/carsties/auction-service/internal/logger"
	"github.com/carsties/auction-service/internal/model"
	"github.com/carsties/auction-service/internal/queue"
	"github.com/carsties/auction-service/internal/repository"
)

// BidEngine validates and commits bids against the ledger and auction state
// atomically. All read-then-write work on one auction happens inside
// Store.WithAuction, so two racing bids are evaluated strictly one after
// the other and the loser sees the minimum the winner committed.
type BidEngine struct {
	store  repository.Store
	cache  cache.Cache
	events queue.Publisher
}

// NewBidEngine constructs a BidEngine. events may be nil, in which case no
// bid.placed events are published.
func NewBidEngine(store repository.Store, c cache.Cache, events queue.Publisher) *BidEngine {
	if store == nil || c == nil {
		panic("nil dependency passed to NewBidEngine")
	}
	return &BidEngine{store: store, cache: c, events: events}
}

// PlaceBid runs the full acceptance check and, on success, appends the bid
// and raises the auction's current price in one durable transaction.
// Validation order: malformed input, caller identity, caller capability,
// auction existence, end time, then the strict amount check against
// max(highest prior bid, reserve price). After commit the auction's detail
// cache entry is invalidated; the all-auctions listing entry is not, since
// the listing shows reserve and vehicle data rather than live price.
func (e *BidEngine) PlaceBid(ctx context.Context, auctionID string, caller auth.Identity, amount int64) (*model.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("%w: auction id is required", ErrValidation)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: bid amount must be positive", ErrValidation)
	}
	if !caller.Present() {
		return nil, ErrUnauthorized
	}
	if !caller.CanBid() {
		return nil, ErrForbidden
	}

	var bid *model.Bid
	err := e.store.WithAuction(ctx, auctionID, func(tx repository.BidTx) error {
		a := tx.Auction()
		now := time.Now().UTC()
		if a.Closed(now) {
			return &AuctionClosedError{EndedAt: a.EndsAt}
		}
		minimum := a.ReservePrice
		if h := tx.HighestAmount(); h > minimum {
			minimum = h
		}
		// Strictly greater: an equal-amount race always rejects the later
		// committer once serialized.
		if amount <= minimum {
			return &BidTooLowError{Minimum: minimum}
		}
		bid = &model.Bid{
			ID:        uuid.New().String(),
			AuctionID: auctionID,
			Bidder:    caller.Subject,
			Amount:    amount,
			PlacedAt:  now,
		}
		if err := tx.AppendBid(bid); err != nil {
			return fmt.Errorf("append bid: %w", err)
		}
		if err := tx.SetCurrentPrice(amount, now); err != nil {
			return fmt.Errorf("update current price: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Invalidation runs after the commit so a crash in between leaves at
	// most one TTL-bounded stale read cycle, never a dirty cache over an
	// uncommitted write.
	e.cache.Invalidate(ctx, cache.KeyAuction(auctionID))

	logger.Info("bid accepted", map[string]any{
		"auction_id": auctionID,
		"bidder":     caller.Subject,
		"amount":     amount,
	})

	if e.events != nil {
		ev := queue.BidPlacedEvent{
			BidID:        bid.ID,
			AuctionID:    bid.AuctionID,
			Bidder:       bid.Bidder,
			Amount:       bid.Amount,
			CurrentPrice: bid.Amount,
			PlacedAt:     bid.PlacedAt.Format(time.RFC3339Nano),
		}
		if err := e.events.PublishBidPlaced(ctx, ev); err != nil {
			logger.Warn("bid.placed publish failed", map[string]any{
				"auction_id": auctionID,
				"error":      err.Error(),
			})
		}
	}

	return bid, nil
}

// ListBids returns an auction's ledger, newest first.
func (e *BidEngine) ListBids(ctx context.Context, auctionID string) ([]model.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("%w: auction id is required", ErrValidation)
	}
	return e.store.ListBids(ctx, auctionID)
}

// HighestBid returns the top ledger entry or repository.ErrNoBids.
func (e *BidEngine) HighestBid(ctx context.Context, auctionID string) (*model.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("%w: auction id is required", ErrValidation)
	}
	return e.store.HighestBid(ctx, auctionID)
}

// Settle finalizes a closed auction: the highest bidder becomes the winner
// at their bid amount (no winner when the ledger is empty) and the status
// flips to Settled. It runs under the same per-auction serialization as
// PlaceBid so settlement can never interleave with a bid commit.
func (e *BidEngine) Settle(ctx context.Context, auctionID string, caller auth.Identity) (*model.Auction, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("%w: auction id is required", ErrValidation)
	}
	if !caller.Present() {
		return nil, ErrUnauthorized
	}
	if !caller.CanSell() {
		return nil, ErrForbidden
	}

	err := e.store.WithAuction(ctx, auctionID, func(tx repository.BidTx) error {
		a := tx.Auction()
		if a.Status == model.StatusSettled {
			return ErrAlreadySettled
		}
		now := time.Now().UTC()
		if !a.Closed(now) {
			return ErrAuctionLive
		}
		winner := ""
		var soldAmount *int64
		// The ledger cannot change while the auction's serialization point
		// is held, so this read is stable.
		hb, err := e.store.HighestBid(ctx, auctionID)
		switch {
		case err == nil:
			winner = hb.Bidder
			soldAmount = &hb.Amount
		case errors.Is(err, repository.ErrNoBids):
			// Reserve not met by anyone; settle without a winner.
		default:
			return err
		}
		return tx.MarkSettled(winner, soldAmount, now)
	})
	if err != nil {
		return nil, err
	}

	// Settlement is a structural change: both the detail entry and the
	// listing entry go stale.
	e.cache.Invalidate(ctx, cache.KeyAuction(auctionID), cache.KeyAllAuctions)

	a, err := e.store.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	logger.Info("auction settled", map[string]any{
		"auction_id": auctionID,
		"winner":     a.Winner,
	})
	return a, nil
}
