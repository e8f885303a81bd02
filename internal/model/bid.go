package model

import "time"

// Bid is one entry in an auction's append-only ledger. Bids are immutable
// once written; they are removed only when their auction is deleted. For a
// given auction, accepted amounts are strictly increasing in acceptance
// order — the bid engine rejects anything not strictly above the current
// minimum before the row is ever written.
type Bid struct {
	ID        string    `json:"id"`
	AuctionID string    `json:"auction_id"`
	Bidder    string    `json:"bidder"`
	Amount    int64     `json:"amount"`
	PlacedAt  time.Time `json:"placed_at"`
}
