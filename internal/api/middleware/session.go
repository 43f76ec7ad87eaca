package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lusail/account-service/internal/core/domain"
)

// SessionCookie is the cookie the session token travels in.
const SessionCookie = "token"

// SessionVerifier resolves a session token to its account.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (*domain.Account, error)
}

// Session authenticates the request and injects "account" and "role" into context.
// The token is read from the session cookie, falling back to a Bearer header.
func Session(verifier SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			account, err := verifier.VerifySession(c.Request().Context(), sessionToken(c))
			if err != nil {
				return err
			}

			c.Set("account", account)
			c.Set("role", account.Role)

			return next(c)
		}
	}
}

func sessionToken(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
