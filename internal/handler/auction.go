package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carsties/auction-service/internal/middleware"
	"github.com/carsties/auction-service/internal/model"
	"github.com/carsties/auction-service/internal/repository"
	"github.com/carsties/auction-service/internal/service"
)

// AuctionHandler exposes the auction CRUD and settlement endpoints.
type AuctionHandler struct {
	Auctions *service.AuctionService
	Engine   *service.BidEngine
}

// NewAuctionHandler constructs an AuctionHandler; all dependencies must be
// non-nil.
func NewAuctionHandler(auctions *service.AuctionService, engine *service.BidEngine) *AuctionHandler {
	if auctions == nil || engine == nil {
		panic("nil dependency passed to NewAuctionHandler")
	}
	return &AuctionHandler{Auctions: auctions, Engine: engine}
}

// createAuctionRequest is the JSON body of POST /api/auctions.
type createAuctionRequest struct {
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Color        string    `json:"color"`
	Mileage      int       `json:"mileage"`
	ImageURL     string    `json:"image_url"`
	ReservePrice int64     `json:"reserve_price"`
	EndDate      time.Time `json:"end_date"`
}

// updateAuctionRequest is the JSON body of POST /api/auctions/update/:id.
// Absent fields are left unchanged.
type updateAuctionRequest struct {
	Make     *string    `json:"make"`
	Model    *string    `json:"model"`
	Year     *int       `json:"year"`
	Color    *string    `json:"color"`
	Mileage  *int       `json:"mileage"`
	ImageURL *string    `json:"image_url"`
	EndDate  *time.Time `json:"end_date"`
}

// displayed returns a copy with the status a reader should see: Ended is
// computed from the end time, never stored.
func displayed(a model.Auction) model.Auction {
	a.Status = a.EffectiveStatus(time.Now().UTC())
	return a
}

// List handles GET /api/auctions. The listing is served cache-aside and
// ordered by vehicle make.
func (h *AuctionHandler) List(c echo.Context) error {
	auctions, err := h.Auctions.List(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	out := make([]model.Auction, len(auctions))
	for i, a := range auctions {
		out[i] = displayed(a)
	}
	return c.JSON(http.StatusOK, out)
}

// GetByID handles GET /api/auctions/:id.
func (h *AuctionHandler) GetByID(c echo.Context) error {
	a, err := h.Auctions.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, displayed(*a))
}

// Create handles POST /api/auctions.
func (h *AuctionHandler) Create(c echo.Context) error {
	var body createAuctionRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	a, err := h.Auctions.Create(c.Request().Context(), middleware.IdentityFrom(c), service.CreateAuctionInput{
		Vehicle: model.Vehicle{
			Make:     body.Make,
			Model:    body.Model,
			Year:     body.Year,
			Color:    body.Color,
			Mileage:  body.Mileage,
			ImageURL: body.ImageURL,
		},
		ReservePrice: body.ReservePrice,
		EndsAt:       body.EndDate,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, displayed(*a))
}

// Update handles POST /api/auctions/update/:id.
func (h *AuctionHandler) Update(c echo.Context) error {
	var body updateAuctionRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	a, err := h.Auctions.Update(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"), repository.AuctionPatch{
		Make:     body.Make,
		Model:    body.Model,
		Year:     body.Year,
		Color:    body.Color,
		Mileage:  body.Mileage,
		ImageURL: body.ImageURL,
		EndsAt:   body.EndDate,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, displayed(*a))
}

// Delete handles POST /api/auctions/delete/:id. Bids cascade with the
// auction.
func (h *AuctionHandler) Delete(c echo.Context) error {
	if err := h.Auctions.Delete(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id")); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}

// Settle handles POST /api/auctions/settle/:id.
func (h *AuctionHandler) Settle(c echo.Context) error {
	a, err := h.Engine.Settle(c.Request().Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, displayed(*a))
}
