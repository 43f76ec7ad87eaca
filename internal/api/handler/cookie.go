package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lusail/account-service/internal/api/middleware"
)

// CookieOptions controls the session cookie attributes.
type CookieOptions struct {
	Secure bool
}

func setSessionCookie(c echo.Context, opts CookieOptions, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context, opts CookieOptions) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
