package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lusail/account-service/internal/api/metrics"
	"github.com/lusail/account-service/internal/core/ports"
)

type AdminHandler struct {
	admin ports.AdminService
}

func NewAdminHandler(admin ports.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// ListUsers returns a page of accounts.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  accountListEnvelope
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	var q listUsersQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pagination parameters")
	}

	result, err := h.admin.ListAccounts(c.Request().Context(), ports.ListAccountsInput{Page: q.Page, Limit: q.Limit})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountListEnvelope(result))
}

// GetUser returns a single account.
//
// @Summary      Get user
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  accountEnvelope
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *AdminHandler) GetUser(c echo.Context) error {
	account, err := h.admin.GetAccount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountEnvelope(account, ""))
}

// DeleteUser removes an account and its profile picture.
//
// @Summary      Delete user
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	if err := h.admin.DeleteAccount(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.AccountsDeletedTotal.WithLabelValues("admin").Inc()
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "User deleted successfully"})
}
