// Package middleware provides shared request processing: bearer-token
// verification, role capability checks and rate limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/carsties/auction-service/internal/auth"
)

// identityKey is the echo context key under which the verified caller
// identity is stored.
const identityKey = "identity"

// JWTAuth returns middleware that validates a Bearer access token minted by
// the external authentication service and injects the caller's (subject,
// role) assertion into the request context. The engine trusts the pair
// completely; token issuance, users and credentials live elsewhere. The
// secret must match the issuer's signing secret.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			id := identityFromClaims(claims)
			if !id.Present() {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token has no subject"})
			}
			c.Set(identityKey, id)
			return next(c)
		}
	}
}

// identityFromClaims builds the caller assertion from token claims. The
// issuer writes the username into "unique_name" with "sub" as a fallback,
// and the single role into "role".
func identityFromClaims(claims jwt.MapClaims) auth.Identity {
	var id auth.Identity
	if v, ok := claims["unique_name"].(string); ok && v != "" {
		id.Subject = v
	} else if v, ok := claims["sub"].(string); ok && v != "" {
		id.Subject = v
	}
	if v, ok := claims["role"].(string); ok {
		id.Role = v
	}
	return id
}

// IdentityFrom extracts the verified caller identity stored by JWTAuth.
// The zero Identity is returned on routes that did not run the middleware.
func IdentityFrom(c echo.Context) auth.Identity {
	if v, ok := c.Get(identityKey).(auth.Identity); ok {
		return v
	}
	return auth.Identity{}
}
