package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/carsties/auction-service/internal/model"
)

// MemoryStore is a concurrency-safe in-memory Store. It backs the test
// suite and local development without a MySQL instance. Per-auction
// serialization uses one mutex per auction id, the in-process equivalent of
// the MySQL row lock: bids on different auctions never contend.
type MemoryStore struct {
	mu       sync.RWMutex
	auctions map[string]*model.Auction
	bids     map[string][]model.Bid
	locks    map[string]*sync.Mutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		auctions: make(map[string]*model.Auction),
		bids:     make(map[string][]model.Bid),
		locks:    make(map[string]*sync.Mutex),
	}
}

func copyAuction(a *model.Auction) *model.Auction {
	cp := *a
	if a.SoldAmount != nil {
		v := *a.SoldAmount
		cp.SoldAmount = &v
	}
	return &cp
}

func (s *MemoryStore) CreateAuction(ctx context.Context, a *model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auctions[a.ID] = copyAuction(a)
	s.bids[a.ID] = nil
	return nil
}

func (s *MemoryStore) GetAuction(ctx context.Context, id string) (*model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, ErrAuctionNotFound
	}
	return copyAuction(a), nil
}

func (s *MemoryStore) ListAuctions(ctx context.Context) ([]model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Auction, 0, len(s.auctions))
	for _, a := range s.auctions {
		out = append(out, *copyAuction(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Vehicle.Make != out[j].Vehicle.Make {
			return out[i].Vehicle.Make < out[j].Vehicle.Make
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) UpdateAuction(ctx context.Context, id string, p AuctionPatch) (*model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, ErrAuctionNotFound
	}
	if p.Make != nil {
		a.Vehicle.Make = *p.Make
	}
	if p.Model != nil {
		a.Vehicle.Model = *p.Model
	}
	if p.Year != nil {
		a.Vehicle.Year = *p.Year
	}
	if p.Color != nil {
		a.Vehicle.Color = *p.Color
	}
	if p.Mileage != nil {
		a.Vehicle.Mileage = *p.Mileage
	}
	if p.ImageURL != nil {
		a.Vehicle.ImageURL = *p.ImageURL
	}
	if p.EndsAt != nil {
		a.EndsAt = p.EndsAt.UTC()
	}
	a.UpdatedAt = time.Now().UTC()
	return copyAuction(a), nil
}

func (s *MemoryStore) DeleteAuction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.auctions[id]; !ok {
		return ErrAuctionNotFound
	}
	delete(s.auctions, id)
	delete(s.bids, id)
	return nil
}

func (s *MemoryStore) ListBids(ctx context.Context, auctionID string) ([]model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.auctions[auctionID]; !ok {
		return nil, ErrAuctionNotFound
	}
	bids := s.bids[auctionID]
	out := make([]model.Bid, len(bids))
	copy(out, bids)
	// Newest first, matching the MySQL ordering.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PlacedAt.Equal(out[j].PlacedAt) {
			return out[i].PlacedAt.After(out[j].PlacedAt)
		}
		return out[i].Amount > out[j].Amount
	})
	return out, nil
}

func (s *MemoryStore) HighestBid(ctx context.Context, auctionID string) (*model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bids := s.bids[auctionID]
	if len(bids) == 0 {
		return nil, ErrNoBids
	}
	top := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > top.Amount {
			top = b
		}
	}
	return &top, nil
}

// lockFor returns the serialization mutex for one auction, creating it on
// first use.
func (s *MemoryStore) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// WithAuction serializes fn against every other WithAuction call for the
// same auction id. Writes staged through the BidTx are applied only when fn
// returns nil, mirroring the transactional commit of the MySQL store.
func (s *MemoryStore) WithAuction(ctx context.Context, auctionID string, fn func(tx BidTx) error) error {
	l := s.lockFor(auctionID)
	l.Lock()
	defer l.Unlock()

	s.mu.RLock()
	a, ok := s.auctions[auctionID]
	var snapshot *model.Auction
	var highest int64
	if ok {
		snapshot = copyAuction(a)
		for _, b := range s.bids[auctionID] {
			if b.Amount > highest {
				highest = b.Amount
			}
		}
	}
	s.mu.RUnlock()
	if !ok {
		return ErrAuctionNotFound
	}

	bt := &memBidTx{auction: snapshot, highest: highest}
	if err := fn(bt); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.auctions[auctionID]
	if !ok {
		// Deleted while fn ran; the per-auction lock does not cover
		// administrative deletes, so treat the commit as lost.
		return ErrAuctionNotFound
	}
	for i := range bt.staged {
		s.bids[auctionID] = append(s.bids[auctionID], bt.staged[i])
	}
	if bt.priceSet {
		cur.CurrentPrice = bt.price
		cur.UpdatedAt = bt.at
	}
	if bt.settled {
		cur.Status = model.StatusSettled
		cur.Winner = bt.winner
		cur.SoldAmount = bt.soldAmount
		cur.UpdatedAt = bt.at
	}
	return nil
}

// memBidTx stages writes until WithAuction applies them.
type memBidTx struct {
	auction *model.Auction
	highest int64

	staged     []model.Bid
	priceSet   bool
	price      int64
	settled    bool
	winner     string
	soldAmount *int64
	at         time.Time
}

func (t *memBidTx) Auction() *model.Auction { return t.auction }

func (t *memBidTx) HighestAmount() int64 { return t.highest }

func (t *memBidTx) AppendBid(b *model.Bid) error {
	t.staged = append(t.staged, *b)
	return nil
}

func (t *memBidTx) SetCurrentPrice(amount int64, at time.Time) error {
	t.priceSet = true
	t.price = amount
	t.at = at.UTC()
	return nil
}

func (t *memBidTx) MarkSettled(winner string, soldAmount *int64, at time.Time) error {
	t.settled = true
	t.winner = winner
	if soldAmount != nil {
		v := *soldAmount
		t.soldAmount = &v
	}
	t.at = at.UTC()
	return nil
}
