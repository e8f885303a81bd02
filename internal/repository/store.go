package repository

import (
	"context"
	"time"

	"github.com/carsties/auction-service/internal/model"
)

// AuctionPatch carries the updatable fields of an auction and its vehicle.
// Nil fields are left untouched. Price fields are deliberately absent:
// current price moves only through accepted bids and reserve price is fixed
// at creation.
type AuctionPatch struct {
	Make     *string
	Model    *string
	Year     *int
	Color    *string
	Mileage  *int
	ImageURL *string
	EndsAt   *time.Time
}

// BidTx is the write surface available while one auction's serialization
// point is held. Everything done through a BidTx commits or rolls back as a
// single unit, so a bid row is never visible without the matching current
// price and vice versa.
type BidTx interface {
	// Auction returns the locked auction's state as of lock acquisition.
	// Mutating the returned value has no effect on the store.
	Auction() *model.Auction

	// HighestAmount returns the largest amount in the auction's ledger,
	// or 0 when the ledger is empty.
	HighestAmount() int64

	// AppendBid stages a new ledger entry.
	AppendBid(b *model.Bid) error

	// SetCurrentPrice stages the auction's denormalized current price and
	// bumps its updated-at timestamp.
	SetCurrentPrice(amount int64, at time.Time) error

	// MarkSettled stages the settlement write: winner, sold amount and the
	// Settled status. soldAmount is nil when the auction drew no bids.
	MarkSettled(winner string, soldAmount *int64, at time.Time) error
}

// Store is the durable record of auctions and bids. Two implementations
// exist: MySQLStore for production and MemoryStore for tests and local
// development. Bids on different auctions proceed fully in parallel; only
// WithAuction serializes work on a single auction.
type Store interface {
	CreateAuction(ctx context.Context, a *model.Auction) error
	GetAuction(ctx context.Context, id string) (*model.Auction, error)
	// ListAuctions returns every auction ordered by vehicle make ascending.
	ListAuctions(ctx context.Context) ([]model.Auction, error)
	UpdateAuction(ctx context.Context, id string, p AuctionPatch) (*model.Auction, error)
	// DeleteAuction removes the auction, its vehicle record and every bid
	// in its ledger.
	DeleteAuction(ctx context.Context, id string) error

	// ListBids returns the auction's ledger, newest first.
	ListBids(ctx context.Context, auctionID string) ([]model.Bid, error)
	// HighestBid returns the top ledger entry or ErrNoBids.
	HighestBid(ctx context.Context, auctionID string) (*model.Bid, error)

	// WithAuction runs fn while holding exclusive access to the auction:
	// no other WithAuction call for the same id observes or commits state
	// until fn's writes are durable or discarded. Returns
	// ErrAuctionNotFound when the auction does not exist, fn's error when
	// fn fails (all staged writes discarded), or the commit error.
	WithAuction(ctx context.Context, auctionID string, fn func(tx BidTx) error) error
}
