package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carsties/auction-service/internal/auth"
	"github.com/carsties/auction-service/internal/cache"
	"github.com/carsties/auction-service/internal/logger"
	"github.com/carsties/auction-service/internal/model"
	"github.com/carsties/auction-service/internal/repository"
)

// AuctionService owns auction CRUD and puts the cache-aside layer in front
// of every read. Reads consult the cache first and repopulate it on miss;
// writes invalidate the affected keys strictly after the durable commit.
// The cache is never the source of truth: when it is down every read is a
// miss and every invalidation a no-op, and requests still succeed.
type AuctionService struct {
	store repository.Store
	cache cache.Cache
	ttl   time.Duration
}

// NewAuctionService constructs an AuctionService. ttl bounds how stale a
// cached view may get when an invalidation is lost.
func NewAuctionService(store repository.Store, c cache.Cache, ttl time.Duration) *AuctionService {
	if store == nil || c == nil {
		panic("nil dependency passed to NewAuctionService")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &AuctionService{store: store, cache: c, ttl: ttl}
}

// CreateAuctionInput carries the caller-supplied fields of a new listing.
type CreateAuctionInput struct {
	Vehicle      model.Vehicle
	ReservePrice int64
	EndsAt       time.Time
}

// Create validates the input, assigns identity and timestamps, and writes
// the new listing. Only selling-capable roles may create auctions. The
// current price starts at the reserve price and the listing cache entry is
// invalidated after the commit so the new auction appears immediately.
func (s *AuctionService) Create(ctx context.Context, caller auth.Identity, in CreateAuctionInput) (*model.Auction, error) {
	if !caller.Present() {
		return nil, ErrUnauthorized
	}
	if !caller.CanSell() {
		return nil, ErrForbidden
	}
	if in.ReservePrice <= 0 {
		return nil, fmt.Errorf("%w: reserve price must be positive", ErrValidation)
	}
	if in.Vehicle.Make == "" || in.Vehicle.Model == "" {
		return nil, fmt.Errorf("%w: vehicle make and model are required", ErrValidation)
	}
	now := time.Now().UTC()
	if !in.EndsAt.After(now) {
		return nil, fmt.Errorf("%w: end date must be in the future", ErrValidation)
	}

	a := &model.Auction{
		ID:           uuid.New().String(),
		ReservePrice: in.ReservePrice,
		CurrentPrice: in.ReservePrice,
		Seller:       caller.Subject,
		CreatedAt:    now,
		EndsAt:       in.EndsAt.UTC(),
		UpdatedAt:    now,
		Status:       model.StatusLive,
		Vehicle:      in.Vehicle,
	}
	if err := s.store.CreateAuction(ctx, a); err != nil {
		return nil, fmt.Errorf("create auction: %w", err)
	}

	s.cache.Invalidate(ctx, cache.KeyAllAuctions)

	logger.Info("auction created", map[string]any{
		"auction_id": a.ID,
		"seller":     a.Seller,
		"reserve":    a.ReservePrice,
	})
	return a, nil
}

// Get returns one auction, serving from the cache when possible. On a miss
// the store result is cached for the configured TTL.
func (s *AuctionService) Get(ctx context.Context, id string) (*model.Auction, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: auction id is required", ErrValidation)
	}
	key := cache.KeyAuction(id)
	if bs, ok := s.cache.Get(ctx, key); ok {
		var a model.Auction
		if err := json.Unmarshal(bs, &a); err == nil {
			return &a, nil
		}
		// Undecodable entry: drop it and fall through to the store.
		s.cache.Invalidate(ctx, key)
	}

	a, err := s.store.GetAuction(ctx, id)
	if err != nil {
		return nil, err
	}
	if bs, err := json.Marshal(a); err == nil {
		s.cache.Set(ctx, key, bs, s.ttl)
	}
	return a, nil
}

// List returns all auctions ordered by vehicle make, serving from the
// cache when possible.
func (s *AuctionService) List(ctx context.Context) ([]model.Auction, error) {
	if bs, ok := s.cache.Get(ctx, cache.KeyAllAuctions); ok {
		var out []model.Auction
		if err := json.Unmarshal(bs, &out); err == nil {
			return out, nil
		}
		s.cache.Invalidate(ctx, cache.KeyAllAuctions)
	}

	out, err := s.store.ListAuctions(ctx)
	if err != nil {
		return nil, err
	}
	if bs, err := json.Marshal(out); err == nil {
		s.cache.Set(ctx, cache.KeyAllAuctions, bs, s.ttl)
	}
	return out, nil
}

// Update applies a listing patch and invalidates both the detail and the
// listing cache entries after the commit.
func (s *AuctionService) Update(ctx context.Context, caller auth.Identity, id string, p repository.AuctionPatch) (*model.Auction, error) {
	if !caller.Present() {
		return nil, ErrUnauthorized
	}
	if !caller.CanSell() {
		return nil, ErrForbidden
	}
	if id == "" {
		return nil, fmt.Errorf("%w: auction id is required", ErrValidation)
	}
	if p.EndsAt != nil && !p.EndsAt.After(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: end date must be in the future", ErrValidation)
	}

	a, err := s.store.UpdateAuction(ctx, id, p)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.KeyAuction(id), cache.KeyAllAuctions)
	return a, nil
}

// Delete removes an auction and its bid ledger, then invalidates both
// cache entries.
func (s *AuctionService) Delete(ctx context.Context, caller auth.Identity, id string) error {
	if !caller.Present() {
		return ErrUnauthorized
	}
	if !caller.CanSell() {
		return ErrForbidden
	}
	if id == "" {
		return fmt.Errorf("%w: auction id is required", ErrValidation)
	}

	if err := s.store.DeleteAuction(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.KeyAuction(id), cache.KeyAllAuctions)

	logger.Info("auction deleted", map[string]any{"auction_id": id})
	return nil
}
