package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lusail/account-service/internal/api/metrics"
	"github.com/lusail/account-service/internal/core/domain"
	"github.com/lusail/account-service/internal/core/ports"
)

type PasswordHandler struct {
	reset ports.PasswordResetService
}

func NewPasswordHandler(reset ports.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{reset: reset}
}

// ForgotPassword emails a one-time code to the account owner.
//
// @Summary      Request password reset code
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /forgot-password [put]
func (h *PasswordHandler) ForgotPassword(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	purpose := string(ports.OTPPurposePasswordReset)
	if err := h.reset.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrOTPDelivery) {
			metrics.OTPIssuedTotal.WithLabelValues(purpose, "error").Inc()
		}
		return err
	}
	metrics.OTPIssuedTotal.WithLabelValues(purpose, "sent").Inc()

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "OTP sent to " + req.Email})
}

// VerifyOTP checks a password reset code.
//
// @Summary      Verify password reset code
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        body  body      otpRequest  true  "Email and code"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /verify-otp [put]
func (h *PasswordHandler) VerifyOTP(c echo.Context) error {
	var req otpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	purpose := string(ports.OTPPurposePasswordReset)
	if err := h.reset.VerifyOTP(c.Request().Context(), req.Email, req.OTP); err != nil {
		metrics.OTPVerificationsTotal.WithLabelValues(purpose, otpVerificationResult(err)).Inc()
		return err
	}
	metrics.OTPVerificationsTotal.WithLabelValues(purpose, "valid").Inc()

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "OTP verified successfully"})
}

// ResetPassword sets a new password for the account owning email.
//
// @Summary      Reset password
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Email and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /reset-password [put]
func (h *PasswordHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.reset.ResetPassword(c.Request().Context(), req.Email, req.NewPassword); err != nil {
		return err
	}
	metrics.PasswordChangesTotal.WithLabelValues("reset").Inc()

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Password reset successfully"})
}
