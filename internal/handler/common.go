// Package handler contains the HTTP layer: thin adapters that bind
// requests, call the service layer and translate domain errors into
// status codes. No business rule lives here.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carsties/auction-service/internal/logger"
	"github.com/carsties/auction-service/internal/repository"
	"github.com/carsties/auction-service/internal/service"
)

// writeServiceError maps the domain error taxonomy onto HTTP responses.
// Conflict responses carry the detail the caller needs to retry correctly:
// the current minimum for a too-low bid, the end time for a closed auction.
// Anything unrecognized is a storage failure — surfaced as a retryable 500
// with no partial state ever exposed.
func writeServiceError(c echo.Context, err error) error {
	var tooLow *service.BidTooLowError
	if errors.As(err, &tooLow) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":   "bid too low",
			"minimum": tooLow.Minimum,
		})
	}
	var closed *service.AuctionClosedError
	if errors.As(err, &closed) {
		return c.JSON(http.StatusGone, echo.Map{
			"error":    "auction has ended",
			"ended_at": closed.EndedAt.UTC().Format(time.RFC3339),
		})
	}
	switch {
	case errors.Is(err, repository.ErrAuctionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "auction not found"})
	case errors.Is(err, repository.ErrNoBids):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no bids found for this auction"})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAuctionLive):
		return c.JSON(http.StatusConflict, echo.Map{"error": "auction has not ended yet"})
	case errors.Is(err, service.ErrAlreadySettled):
		return c.JSON(http.StatusConflict, echo.Map{"error": "auction already settled"})
	default:
		logger.Error("request failed", map[string]any{
			"path":  c.Path(),
			"error": err.Error(),
		})
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage unavailable, retry later"})
	}
}
