package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/lusail/account-service/internal/core/domain"
)

// ctxAccount returns the account injected by the Session middleware.
func ctxAccount(c echo.Context) (*domain.Account, error) {
	acc, _ := c.Get("account").(*domain.Account)
	if acc == nil || acc.ID == "" {
		return nil, domain.ErrMissingSession
	}
	return acc, nil
}
