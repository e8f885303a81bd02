package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carsties/auction-service/internal/middleware"
	"github.com/carsties/auction-service/internal/service"
)

// BidHandler exposes the bid endpoints backed by the acceptance engine.
type BidHandler struct {
	Engine *service.BidEngine
}

// NewBidHandler constructs a BidHandler.
func NewBidHandler(engine *service.BidEngine) *BidHandler {
	if engine == nil {
		panic("nil engine passed to NewBidHandler")
	}
	return &BidHandler{Engine: engine}
}

// placeBidRequest is the JSON body of POST /api/bids.
type placeBidRequest struct {
	AuctionID string `json:"auction_id"`
	Amount    int64  `json:"amount"`
}

// Place handles POST /api/bids. A rejected bid answers with the detail
// needed to retry: 409 carries the current minimum, 410 the end time.
func (h *BidHandler) Place(c echo.Context) error {
	var body placeBidRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	bid, err := h.Engine.PlaceBid(c.Request().Context(), body.AuctionID, middleware.IdentityFrom(c), body.Amount)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, bid)
}

// ListByAuction handles GET /api/bids/auction/:id, newest bid first.
func (h *BidHandler) ListByAuction(c echo.Context) error {
	bids, err := h.Engine.ListBids(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, bids)
}

// Highest handles GET /api/bids/highest/:id.
func (h *BidHandler) Highest(c echo.Context) error {
	bid, err := h.Engine.HighestBid(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, bid)
}
