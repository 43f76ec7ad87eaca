package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lusail/account-service/internal/api/metrics"
	"github.com/lusail/account-service/internal/core/domain"
	"github.com/lusail/account-service/internal/core/ports"
)

type AccountHandler struct {
	accounts ports.AccountService
	cookie   CookieOptions
}

func NewAccountHandler(accounts ports.AccountService, cookie CookieOptions) *AccountHandler {
	return &AccountHandler{accounts: accounts, cookie: cookie}
}

// Signup creates a new account.
//
// @Summary      Sign up
// @Tags         account
// @Accept       multipart/form-data
// @Produce      json
// @Param        name        formData  string  false  "Display name"
// @Param        email       formData  string  true   "Email"
// @Param        password    formData  string  true   "Password"
// @Param        role        formData  string  false  "Role (user|admin)"
// @Param        profilePic  formData  file    true   "Profile picture"
// @Success      201  {object}  accountEnvelope
// @Failure      400  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /signup [post]
func (h *AccountHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	image, closeImage, err := formImage(c)
	if err != nil {
		return err
	}
	defer closeImage()

	account, err := h.accounts.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Image:    image,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registrationResult(err)).Inc()
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues("created").Inc()

	message := "User created successfully"
	if account.Status == domain.StatusUnverified {
		message = "User created successfully, please verify your email with the OTP sent to " + account.Email
	}
	return c.JSON(http.StatusCreated, toAccountEnvelope(account, message))
}

// Login authenticates with email and password and sets the session cookie.
//
// @Summary      Log in
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  accountEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		result := loginResult(err)
		metrics.LoginsTotal.WithLabelValues(result).Inc()
		if result == "unverified_purged" {
			metrics.AccountsDeletedTotal.WithLabelValues("unverified_login").Inc()
		}
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	setSessionCookie(c, h.cookie, session.Token, session.ExpiresAt)
	return c.JSON(http.StatusOK, toAccountEnvelope(session.Account, "Logged in successfully"))
}

// Logout clears the session cookie. The token itself stays valid until it expires.
//
// @Summary      Log out
// @Tags         account
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /logout [post]
func (h *AccountHandler) Logout(c echo.Context) error {
	account, err := ctxAccount(c)
	if err != nil {
		return err
	}
	if err := h.accounts.Logout(c.Request().Context(), account.ID); err != nil {
		return err
	}

	clearSessionCookie(c, h.cookie)
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Logged out successfully"})
}

// VerifyEmail confirms the signup code and starts a session.
//
// @Summary      Verify email
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      otpRequest  true  "Email and code"
// @Success      200   {object}  accountEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /verify-email [post]
func (h *AccountHandler) VerifyEmail(c echo.Context) error {
	var req otpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	purpose := string(ports.OTPPurposeEmailVerification)
	session, err := h.accounts.VerifyEmail(c.Request().Context(), req.Email, req.OTP)
	if err != nil {
		metrics.OTPVerificationsTotal.WithLabelValues(purpose, otpVerificationResult(err)).Inc()
		return err
	}
	metrics.OTPVerificationsTotal.WithLabelValues(purpose, "valid").Inc()

	setSessionCookie(c, h.cookie, session.Token, session.ExpiresAt)
	return c.JSON(http.StatusOK, toAccountEnvelope(session.Account, "Email verified successfully"))
}

// ResendVerification issues a fresh signup code.
//
// @Summary      Resend verification code
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /resend-verification [put]
func (h *AccountHandler) ResendVerification(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	purpose := string(ports.OTPPurposeEmailVerification)
	if err := h.accounts.ResendVerification(c.Request().Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrOTPDelivery) {
			metrics.OTPIssuedTotal.WithLabelValues(purpose, "error").Inc()
		}
		return err
	}
	metrics.OTPIssuedTotal.WithLabelValues(purpose, "sent").Inc()

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "OTP sent to " + req.Email})
}

// MyProfile returns the logged-in account.
//
// @Summary      Current profile
// @Tags         account
// @Produce      json
// @Success      200  {object}  accountEnvelope
// @Failure      401  {object}  errorResponse
// @Router       /my-profile [get]
func (h *AccountHandler) MyProfile(c echo.Context) error {
	account, err := ctxAccount(c)
	if err != nil {
		return err
	}
	profile, err := h.accounts.Profile(c.Request().Context(), account.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountEnvelope(profile, ""))
}

// UpdateProfile changes name, role or profile picture.
//
// @Summary      Update profile
// @Tags         account
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Param        name        formData  string  false  "Display name"
// @Param        role        formData  string  false  "Role (user|admin)"
// @Param        profilePic  formData  file    false  "New profile picture"
// @Success      200  {object}  accountEnvelope
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /update-profile [put]
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	account, err := ctxAccount(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	image, closeImage, err := formImage(c)
	if err != nil {
		return err
	}
	defer closeImage()

	updated, err := h.accounts.UpdateProfile(c.Request().Context(), account.ID, ports.UpdateProfileInput{
		Name:  req.Name,
		Role:  req.Role,
		Image: image,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountEnvelope(updated, "Profile updated successfully"))
}

// UpdatePassword changes the password of the logged-in account.
//
// @Summary      Update password
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      updatePasswordRequest  true  "Old and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /update-password [put]
func (h *AccountHandler) UpdatePassword(c echo.Context) error {
	account, err := ctxAccount(c)
	if err != nil {
		return err
	}

	var req updatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.accounts.UpdatePassword(c.Request().Context(), account.ID, ports.UpdatePasswordInput{
		OldPassword:     req.OldPassword,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}); err != nil {
		return err
	}
	metrics.PasswordChangesTotal.WithLabelValues("update").Inc()

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Password updated successfully"})
}

func registrationResult(err error) string {
	if errors.Is(err, domain.ErrAccountExists) {
		return "conflict"
	}
	return "error"
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAccountUnverified):
		return "unverified_purged"
	default:
		return "error"
	}
}

func otpVerificationResult(err error) string {
	if errors.Is(err, domain.ErrInvalidOTP) {
		return "invalid"
	}
	return "error"
}
