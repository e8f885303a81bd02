// Package queue defines the domain events exchanged over the message
// broker and the background consumer that audits them.
package queue

import "context"

// BidPlacedQueue is the durable queue carrying accepted-bid events.
const BidPlacedQueue = "bid.placed"

// BidPlacedEvent is published after a bid commits. It carries enough for
// downstream consumers (audit log, notifications, analytics) to act without
// querying the primary database.
type BidPlacedEvent struct {
	BidID        string `json:"bid_id"`
	AuctionID    string `json:"auction_id"`
	Bidder       string `json:"bidder"`
	Amount       int64  `json:"amount"`
	CurrentPrice int64  `json:"current_price"`
	PlacedAt     string `json:"placed_at"`
}

// Publisher is the outbound event contract the bid engine depends on.
// Publishing is best-effort: a failed publish never rolls back a committed
// bid.
type Publisher interface {
	PublishBidPlaced(ctx context.Context, ev BidPlacedEvent) error
}
