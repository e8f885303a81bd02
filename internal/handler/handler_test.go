package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/carsties/auction-service/internal/auth"
	"github.com/carsties/auction-service/internal/cache"
	"github.com/carsties/auction-service/internal/model"
	"github.com/carsties/auction-service/internal/repository"
	"github.com/carsties/auction-service/internal/service"
)

var (
	seller = auth.Identity{Subject: "alice", Role: auth.RoleAuctioneer}
	bidder = auth.Identity{Subject: "bob", Role: auth.RoleBidder}
)

type fixture struct {
	auctions *AuctionHandler
	bids     *BidHandler
	store    *repository.MemoryStore
	echo     *echo.Echo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	c := cache.NewMemoryCache()
	svc := service.NewAuctionService(store, c, 30*time.Minute)
	engine := service.NewBidEngine(store, c, nil)
	return &fixture{
		auctions: NewAuctionHandler(svc, engine),
		bids:     NewBidHandler(engine),
		store:    store,
		echo:     echo.New(),
	}
}

// request builds an echo context carrying an optional JSON body, an optional
// authenticated identity and optional :id path param.
func (f *fixture) request(method, body string, id auth.Identity, paramID string) (echo.Context, *httptest.ResponseRecorder) {
	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/", rdr)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := f.echo.NewContext(req, rec)
	if id.Present() {
		c.Set("identity", id)
	}
	if paramID != "" {
		c.SetParamNames("id")
		c.SetParamValues(paramID)
	}
	return c, rec
}

func (f *fixture) createAuction(t *testing.T, reserve int64) string {
	t.Helper()
	body := fmt.Sprintf(`{"make":"Ford","model":"GT","year":2020,"color":"White","mileage":50000,"reserve_price":%d,"end_date":%q}`,
		reserve, time.Now().UTC().Add(24*time.Hour).Format(time.RFC3339))
	c, rec := f.request(http.MethodPost, body, seller, "")
	require.NoError(t, f.auctions.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	var a model.Auction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	return a.ID
}

func TestAuctionHandler_CreateAndGet(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.createAuction(t, 20000)

	c, rec := f.request(http.MethodGet, "", auth.Identity{}, id)
	require.NoError(t, f.auctions.GetByID(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var a model.Auction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	require.Equal(t, id, a.ID)
	require.Equal(t, int64(20000), a.CurrentPrice)
	require.Equal(t, model.StatusLive, a.Status)
	require.Equal(t, "Ford", a.Vehicle.Make)

	c, rec = f.request(http.MethodGet, "", auth.Identity{}, uuid.New().String())
	require.NoError(t, f.auctions.GetByID(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuctionHandler_Create_Rejections(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	body := fmt.Sprintf(`{"make":"Ford","model":"GT","reserve_price":100,"end_date":%q}`,
		time.Now().UTC().Add(time.Hour).Format(time.RFC3339))

	c, rec := f.request(http.MethodPost, body, auth.Identity{}, "")
	require.NoError(t, f.auctions.Create(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = f.request(http.MethodPost, body, bidder, "")
	require.NoError(t, f.auctions.Create(c))
	require.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = f.request(http.MethodPost, `{"make":"","model":"GT","reserve_price":100}`, seller, "")
	require.NoError(t, f.auctions.Create(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuctionHandler_DisplayedStatusComputesEnded(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.createAuction(t, 100)

	// Move the end time into the past directly: the update endpoint only
	// accepts future end dates.
	past := time.Now().UTC().Add(-time.Minute)
	_, err := f.store.UpdateAuction(context.Background(), id, repository.AuctionPatch{EndsAt: &past})
	require.NoError(t, err)

	c, rec := f.request(http.MethodGet, "", auth.Identity{}, id)
	require.NoError(t, f.auctions.GetByID(c))
	var a model.Auction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	require.Equal(t, model.StatusEnded, a.Status)

	// Ended is a view-layer computation; storage still says Live.
	stored, err := f.store.GetAuction(c.Request().Context(), id)
	require.NoError(t, err)
	require.Equal(t, model.StatusLive, stored.Status)
}

func TestAuctionHandler_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.createAuction(t, 100)

	c, rec := f.request(http.MethodPost, `{"color":"Red","mileage":60000}`, seller, id)
	require.NoError(t, f.auctions.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)
	var a model.Auction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	require.Equal(t, "Red", a.Vehicle.Color)
	require.Equal(t, 60000, a.Vehicle.Mileage)
	require.Equal(t, "GT", a.Vehicle.Model)

	c, rec = f.request(http.MethodPost, `{"color":"Red"}`, bidder, id)
	require.NoError(t, f.auctions.Update(c))
	require.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = f.request(http.MethodPost, "", seller, id)
	require.NoError(t, f.auctions.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = f.request(http.MethodPost, "", seller, id)
	require.NoError(t, f.auctions.Delete(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBidHandler_Place(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.createAuction(t, 20000)

	place := func(identity auth.Identity, amount int64) *httptest.ResponseRecorder {
		body := fmt.Sprintf(`{"auction_id":%q,"amount":%d}`, id, amount)
		c, rec := f.request(http.MethodPost, body, identity, "")
		require.NoError(t, f.bids.Place(c))
		return rec
	}

	rec := place(bidder, 25000)
	require.Equal(t, http.StatusCreated, rec.Code)
	var b model.Bid
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	require.Equal(t, int64(25000), b.Amount)
	require.Equal(t, bidder.Subject, b.Bidder)

	// Too low: 409 carries the minimum the caller must beat.
	rec = place(bidder, 25000)
	require.Equal(t, http.StatusConflict, rec.Code)
	var conflict struct {
		Error   string `json:"error"`
		Minimum int64  `json:"minimum"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	require.Equal(t, int64(25000), conflict.Minimum)

	rec = place(seller, 30000)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = place(auth.Identity{}, 30000)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBidHandler_Place_EndedAuction(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.createAuction(t, 100)
	past := time.Now().UTC().Add(-time.Minute)
	_, err := f.store.UpdateAuction(context.Background(), id, repository.AuctionPatch{EndsAt: &past})
	require.NoError(t, err)

	body := fmt.Sprintf(`{"auction_id":%q,"amount":200}`, id)
	c, rec := f.request(http.MethodPost, body, bidder, "")
	require.NoError(t, f.bids.Place(c))
	require.Equal(t, http.StatusGone, rec.Code)

	var gone struct {
		Error   string `json:"error"`
		EndedAt string `json:"ended_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gone))
	require.Equal(t, past.Format(time.RFC3339), gone.EndedAt)
}

func TestBidHandler_Reads(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.createAuction(t, 100)

	// No bids yet: highest is a 404, listing is an empty array.
	c, rec := f.request(http.MethodGet, "", auth.Identity{}, id)
	require.NoError(t, f.bids.Highest(c))
	require.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = f.request(http.MethodGet, "", auth.Identity{}, id)
	require.NoError(t, f.bids.ListByAuction(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())

	for _, amount := range []int64{150, 200} {
		body := fmt.Sprintf(`{"auction_id":%q,"amount":%d}`, id, amount)
		c, rec = f.request(http.MethodPost, body, bidder, "")
		require.NoError(t, f.bids.Place(c))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	c, rec = f.request(http.MethodGet, "", auth.Identity{}, id)
	require.NoError(t, f.bids.Highest(c))
	require.Equal(t, http.StatusOK, rec.Code)
	var top model.Bid
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &top))
	require.Equal(t, int64(200), top.Amount)

	c, rec = f.request(http.MethodGet, "", auth.Identity{}, uuid.New().String())
	require.NoError(t, f.bids.ListByAuction(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuctionHandler_Settle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.createAuction(t, 100)

	body := fmt.Sprintf(`{"auction_id":%q,"amount":150}`, id)
	c, rec := f.request(http.MethodPost, body, bidder, "")
	require.NoError(t, f.bids.Place(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Still live: settlement conflicts.
	c, rec = f.request(http.MethodPost, "", seller, id)
	require.NoError(t, f.auctions.Settle(c))
	require.Equal(t, http.StatusConflict, rec.Code)

	past := time.Now().UTC().Add(-time.Minute)
	_, err := f.store.UpdateAuction(c.Request().Context(), id, repository.AuctionPatch{EndsAt: &past})
	require.NoError(t, err)

	c, rec = f.request(http.MethodPost, "", seller, id)
	require.NoError(t, f.auctions.Settle(c))
	require.Equal(t, http.StatusOK, rec.Code)
	var a model.Auction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	require.Equal(t, model.StatusSettled, a.Status)
	require.Equal(t, bidder.Subject, a.Winner)
	require.NotNil(t, a.SoldAmount)
	require.Equal(t, int64(150), *a.SoldAmount)

	c, rec = f.request(http.MethodPost, "", seller, id)
	require.NoError(t, f.auctions.Settle(c))
	require.Equal(t, http.StatusConflict, rec.Code)
}
