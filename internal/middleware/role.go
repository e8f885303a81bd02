package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carsties/auction-service/internal/auth"
)

// RequireSeller aborts with 403 unless the authenticated caller may manage
// auctions. It assumes JWTAuth ran earlier in the chain; the service layer
// re-checks the capability, so this middleware only fails fast.
func RequireSeller() echo.MiddlewareFunc {
	return requireCapability(auth.Identity.CanSell, "only auctioneers can manage auctions")
}

// RequireBidder aborts with 403 unless the authenticated caller may place
// bids.
func RequireBidder() echo.MiddlewareFunc {
	return requireCapability(auth.Identity.CanBid, "only bidders can place bids")
}

func requireCapability(allowed func(auth.Identity) bool, message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFrom(c)
			if !id.Present() {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			if !allowed(id) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": message})
			}
			return next(c)
		}
	}
}
