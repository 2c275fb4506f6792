package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/babybliss/babybliss-backend/internal/apperr"
	"github.com/babybliss/babybliss-backend/internal/auth"
	"github.com/babybliss/babybliss-backend/internal/logs"
	"github.com/babybliss/babybliss-backend/internal/utils"
)

// principalKey is the context key under which SessionAuth stores the
// authenticated principal.
const principalKey = "principal"

// Authenticator resolves a bearer token to a principal.  UserRepo satisfies
// this; tests substitute a fake.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Principal, error)
}

// unauthorized is the uniform 401 body.  By design it does not say whether
// the token was missing, malformed, unknown or expired.
func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"success": false,
		"error":   echo.Map{"message": "Unauthorized", "code": "unauthorized"},
	})
}

// SessionAuth returns middleware that validates the bearer token against the
// users table and injects the principal into the request context.  Protected
// handlers read it back via Principal(c).
func SessionAuth(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := utils.BearerToken(c.Request().Header.Get("Authorization"))
			if token == "" {
				return unauthorized(c)
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			p, err := a.Authenticate(ctx, token)
			if err != nil {
				if errors.Is(err, apperr.ErrUnauthorized) {
					return unauthorized(c)
				}
				logs.WithError(err).Error("session lookup failed")
				return c.JSON(http.StatusInternalServerError, echo.Map{
					"success": false,
					"error":   echo.Map{"message": "internal error", "code": "internal_error"},
				})
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// OptionalSessionAuth validates the bearer token when one is present but
// lets the request through either way.  Used by the session probe endpoint,
// which reports {user:null, session:null} for anonymous callers.
func OptionalSessionAuth(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := utils.BearerToken(c.Request().Header.Get("Authorization"))
			if token != "" {
				ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
				defer cancel()
				if p, err := a.Authenticate(ctx, token); err == nil {
					c.Set(principalKey, p)
				}
			}
			return next(c)
		}
	}
}

// Principal returns the authenticated principal stored by SessionAuth.  The
// second return is false when the request is anonymous.
func Principal(c echo.Context) (auth.Principal, bool) {
	p, ok := c.Get(principalKey).(auth.Principal)
	return p, ok
}

// RequireRole returns middleware enforcing that the authenticated principal
// has one of the given roles.  It assumes SessionAuth ran earlier in the
// chain.
func RequireRole(roles ...auth.Role) echo.MiddlewareFunc {
	allowed := make(map[auth.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := Principal(c)
			if !ok || !allowed[p.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{
					"success": false,
					"error":   echo.Map{"message": "forbidden", "code": "forbidden"},
				})
			}
			return next(c)
		}
	}
}
