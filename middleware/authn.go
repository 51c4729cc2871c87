// Package middleware holds the HTTP middleware shared by the API groups.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/libris-app/libris/internal/token"
)

// userIDContextKey is the echo context key holding the authenticated
// user's ID.
const userIDContextKey = "auth.userID"

// RequireAccessToken returns a middleware that validates the Bearer access
// token on the Authorization header and stores the subject on the request
// context. Missing or invalid tokens are rejected with 401.
func RequireAccessToken(issuer *token.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return unauthorized(c, "missing Authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return unauthorized(c, "invalid authorization header format: expected Bearer token")
			}

			claims, err := issuer.VerifyAccess(parts[1])
			if err != nil {
				return unauthorized(c, "invalid or expired token")
			}

			c.Set(userIDContextKey, claims.UserID)
			return next(c)
		}
	}
}

// AuthenticatedUserID returns the user ID stored by RequireAccessToken,
// or the empty string when the request is unauthenticated.
func AuthenticatedUserID(c echo.Context) string {
	id, _ := c.Get(userIDContextKey).(string)
	return id
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"error":   "unauthorized",
		"message": message,
	})
}
