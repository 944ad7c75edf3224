// Package middleware provides shared request processing for handlers:
// caller resolution, role enforcement, cached views and rate limiting.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/locaspot/booking-api/internal/model"
	"github.com/locaspot/booking-api/internal/utils"
)

// SessionCookie is the name of the HTTP-only cookie carrying the session
// token.
const SessionCookie = "token"

// userKey is the context key under which the resolved caller is stored.
const userKey = "user"

// UserLoader loads a user record by id. *repository.UserRepo satisfies it;
// tests substitute an in-memory implementation.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// ResolveUser resolves the current caller from the session cookie (or an
// Authorization: Bearer header) and stores the user record in the request
// context. An absent, malformed or expired token is the guest state, not an
// error: the request continues with no user set and handlers that require
// authentication reject it themselves. Inactive accounts also resolve as
// guests.
func ResolveUser(secret string, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return next(c)
			}
			uid, err := utils.ParseSessionToken(secret, raw)
			if err != nil {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := users.GetByID(ctx, uid)
			if err != nil || !u.Active {
				return next(c)
			}
			c.Set(userKey, &u)
			return next(c)
		}
	}
}

// RequireAuth rejects requests that resolved no caller with 401.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			return next(c)
		}
	}
}

// CurrentUser returns the resolved caller, or nil for guests.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(userKey).(*model.User)
	return u
}

// SetCurrentUser stores a caller in the context. Exposed for tests.
func SetCurrentUser(c echo.Context, u *model.User) { c.Set(userKey, u) }

// tokenFromRequest prefers the session cookie and falls back to a bearer
// token so API clients without cookie jars can authenticate too.
func tokenFromRequest(c echo.Context) string {
	if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
