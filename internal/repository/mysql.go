package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/carsties/auction-service/internal/model"
)

// MySQLStore is the production Store backed by MySQL. Auctions and their
// vehicle records live in two tables joined 1:1 on auction id; bids are an
// append-only table with a cascading foreign key, so deleting an auction
// removes its ledger.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore constructs a MySQLStore with the provided DB handle. The
// handle is injected so tests and startup wiring control the pool.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

const auctionColumns = `a.id, a.reserve_price, a.current_price, a.seller, a.winner, a.sold_amount,
       a.created_at, a.ends_at, a.updated_at, a.status,
       v.make, v.model, v.year, v.color, v.mileage, v.image_url`

const auctionJoin = `FROM auctions a JOIN vehicles v ON v.auction_id = a.id`

// scanAuction reads one joined auctions+vehicles row.
func scanAuction(row interface{ Scan(...any) error }) (*model.Auction, error) {
	var a model.Auction
	var winner sql.NullString
	var soldAmount sql.NullInt64
	var imageURL sql.NullString
	if err := row.Scan(
		&a.ID, &a.ReservePrice, &a.CurrentPrice, &a.Seller, &winner, &soldAmount,
		&a.CreatedAt, &a.EndsAt, &a.UpdatedAt, &a.Status,
		&a.Vehicle.Make, &a.Vehicle.Model, &a.Vehicle.Year, &a.Vehicle.Color,
		&a.Vehicle.Mileage, &imageURL,
	); err != nil {
		return nil, err
	}
	if winner.Valid {
		a.Winner = winner.String
	}
	if soldAmount.Valid {
		v := soldAmount.Int64
		a.SoldAmount = &v
	}
	if imageURL.Valid {
		a.Vehicle.ImageURL = imageURL.String
	}
	return &a, nil
}

// CreateAuction inserts the auction and its vehicle record in one
// transaction so a listing is never visible without its vehicle.
func (s *MySQLStore) CreateAuction(ctx context.Context, a *model.Auction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const qAuction = `INSERT INTO auctions
	       (id, reserve_price, current_price, seller, winner, sold_amount, created_at, ends_at, updated_at, status)
	       VALUES (?, ?, ?, ?, NULL, NULL, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, qAuction,
		a.ID, a.ReservePrice, a.CurrentPrice, a.Seller,
		a.CreatedAt.UTC(), a.EndsAt.UTC(), a.UpdatedAt.UTC(), string(a.Status),
	); err != nil {
		return err
	}

	const qVehicle = `INSERT INTO vehicles (auction_id, make, model, year, color, mileage, image_url)
	       VALUES (?, ?, ?, ?, ?, ?, ?)`
	var imageURL any
	if a.Vehicle.ImageURL != "" {
		imageURL = a.Vehicle.ImageURL
	}
	if _, err := tx.ExecContext(ctx, qVehicle,
		a.ID, a.Vehicle.Make, a.Vehicle.Model, a.Vehicle.Year,
		a.Vehicle.Color, a.Vehicle.Mileage, imageURL,
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetAuction fetches one auction with its vehicle. It returns
// ErrAuctionNotFound when no row exists.
func (s *MySQLStore) GetAuction(ctx context.Context, id string) (*model.Auction, error) {
	q := `SELECT ` + auctionColumns + ` ` + auctionJoin + ` WHERE a.id = ?`
	a, err := scanAuction(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}
	return a, nil
}

// ListAuctions returns all auctions ordered by vehicle make ascending, with
// id as a deterministic tiebreaker.
func (s *MySQLStore) ListAuctions(ctx context.Context) ([]model.Auction, error) {
	q := `SELECT ` + auctionColumns + ` ` + auctionJoin + ` ORDER BY v.make ASC, a.id ASC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Auction, 0)
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAuction applies the patch under the auction's row lock and returns
// the updated record. Price fields are untouchable by design; only listing
// data and the end time can change here.
func (s *MySQLStore) UpdateAuction(ctx context.Context, id string, p AuctionPatch) (*model.Auction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the auction row so the patch does not interleave with a bid
	// commit bumping updated_at.
	var locked string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM auctions WHERE id = ? FOR UPDATE`, id).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()

	// Vehicle columns.
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	if p.Make != nil {
		sets = append(sets, "make = ?")
		args = append(args, *p.Make)
	}
	if p.Model != nil {
		sets = append(sets, "model = ?")
		args = append(args, *p.Model)
	}
	if p.Year != nil {
		sets = append(sets, "year = ?")
		args = append(args, *p.Year)
	}
	if p.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *p.Color)
	}
	if p.Mileage != nil {
		sets = append(sets, "mileage = ?")
		args = append(args, *p.Mileage)
	}
	if p.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, *p.ImageURL)
	}
	if len(sets) > 0 {
		q := `UPDATE vehicles SET ` + strings.Join(sets, ", ") + ` WHERE auction_id = ?`
		args = append(args, id)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}

	// Auction columns.
	if p.EndsAt != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE auctions SET ends_at = ?, updated_at = ? WHERE id = ?`,
			p.EndsAt.UTC(), now, id,
		); err != nil {
			return nil, err
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			`UPDATE auctions SET updated_at = ? WHERE id = ?`, now, id,
		); err != nil {
			return nil, err
		}
	}

	q := `SELECT ` + auctionColumns + ` ` + auctionJoin + ` WHERE a.id = ?`
	a, err := scanAuction(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return a, nil
}

// DeleteAuction removes the auction row; the vehicle record and the bid
// ledger go with it through cascading foreign keys.
func (s *MySQLStore) DeleteAuction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM auctions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAuctionNotFound
	}
	return nil
}

// ListBids returns the auction's ledger ordered newest first. An existing
// auction with no bids yields an empty slice; a missing auction yields
// ErrAuctionNotFound.
func (s *MySQLStore) ListBids(ctx context.Context, auctionID string) ([]model.Bid, error) {
	if _, err := s.GetAuction(ctx, auctionID); err != nil {
		return nil, err
	}
	const q = `SELECT id, auction_id, bidder, amount, placed_at
	       FROM bids WHERE auction_id = ? ORDER BY placed_at DESC, amount DESC`
	rows, err := s.db.QueryContext(ctx, q, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Bid, 0)
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.Bidder, &b.Amount, &b.PlacedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// HighestBid returns the ledger entry with the largest amount, or ErrNoBids
// when the ledger is empty.
func (s *MySQLStore) HighestBid(ctx context.Context, auctionID string) (*model.Bid, error) {
	const q = `SELECT id, auction_id, bidder, amount, placed_at
	       FROM bids WHERE auction_id = ? ORDER BY amount DESC LIMIT 1`
	var b model.Bid
	if err := s.db.QueryRowContext(ctx, q, auctionID).Scan(&b.ID, &b.AuctionID, &b.Bidder, &b.Amount, &b.PlacedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoBids
		}
		return nil, err
	}
	return &b, nil
}

// WithAuction opens a transaction, locks the auction row with
// SELECT ... FOR UPDATE and hands fn a BidTx scoped to that transaction.
// The row lock is the per-auction serialization point: two concurrent bid
// commits on the same auction are evaluated strictly one after the other,
// each against the state the previous one committed.
func (s *MySQLStore) WithAuction(ctx context.Context, auctionID string, fn func(tx BidTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	q := `SELECT ` + auctionColumns + ` ` + auctionJoin + ` WHERE a.id = ? FOR UPDATE`
	a, err := scanAuction(tx.QueryRowContext(ctx, q, auctionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAuctionNotFound
		}
		return err
	}

	var highest sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(amount) FROM bids WHERE auction_id = ?`, auctionID,
	).Scan(&highest); err != nil {
		return err
	}

	bt := &mysqlBidTx{ctx: ctx, tx: tx, auction: a, highest: highest.Int64}
	if err := fn(bt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// mysqlBidTx implements BidTx on top of an open *sql.Tx holding the
// auction's row lock.
type mysqlBidTx struct {
	ctx     context.Context
	tx      *sql.Tx
	auction *model.Auction
	highest int64
}

func (t *mysqlBidTx) Auction() *model.Auction { return t.auction }

func (t *mysqlBidTx) HighestAmount() int64 { return t.highest }

func (t *mysqlBidTx) AppendBid(b *model.Bid) error {
	const q = `INSERT INTO bids (id, auction_id, bidder, amount, placed_at) VALUES (?, ?, ?, ?, ?)`
	_, err := t.tx.ExecContext(t.ctx, q, b.ID, b.AuctionID, b.Bidder, b.Amount, b.PlacedAt.UTC())
	return err
}

func (t *mysqlBidTx) SetCurrentPrice(amount int64, at time.Time) error {
	const q = `UPDATE auctions SET current_price = ?, updated_at = ? WHERE id = ?`
	_, err := t.tx.ExecContext(t.ctx, q, amount, at.UTC(), t.auction.ID)
	return err
}

func (t *mysqlBidTx) MarkSettled(winner string, soldAmount *int64, at time.Time) error {
	const q = `UPDATE auctions SET status = ?, winner = ?, sold_amount = ?, updated_at = ? WHERE id = ?`
	var w any
	if winner != "" {
		w = winner
	}
	var sa any
	if soldAmount != nil {
		sa = *soldAmount
	}
	_, err := t.tx.ExecContext(t.ctx, q, string(model.StatusSettled), w, sa, at.UTC(), t.auction.ID)
	return err
}
