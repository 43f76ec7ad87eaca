package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lusail/account-service/internal/core/domain"
	"github.com/lusail/account-service/internal/core/ports"
)

func TestAccountHandler_Signup_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.Account, error) {
			if in.Email != "alice@example.com" || in.Password != "secret" || in.Name != "Alice" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.Image == nil || in.Image.ContentType != "image/png" || in.Image.Filename != "me.png" {
				t.Fatalf("image not forwarded: %+v", in.Image)
			}
			body, _ := io.ReadAll(in.Image.Body)
			if len(body) == 0 {
				t.Fatalf("image body is empty")
			}
			acc := testAccount()
			acc.Status = domain.StatusUnverified
			return acc, nil
		},
	}
	h := NewAccountHandler(stub, CookieOptions{})

	c, rec := multipartContext(t, e, http.MethodPost, "/signup", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "secret",
	}, "image/png")

	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp accountEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Success || resp.User == nil || resp.User.Email != "alice@example.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp.User.ProfilePic == nil || resp.User.ProfilePic.ID != "user-profiles/img_1.png" {
		t.Fatalf("profile picture missing: %+v", resp.User)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("signup must not start a session")
	}
}

func TestAccountHandler_Signup_WithoutImage(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.Account, error) {
			if in.Image != nil {
				t.Fatalf("expected nil image")
			}
			return nil, domain.NewValidationError("profile picture is required")
		},
	}
	h := NewAccountHandler(stub, CookieOptions{})

	c, _ := multipartContext(t, e, http.MethodPost, "/signup", map[string]string{
		"email": "alice@example.com", "password": "secret",
	}, "")

	var verr *domain.ValidationError
	if err := h.Signup(c); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAccountHandler_Signup_Validation(t *testing.T) {
	e := newEcho()
	h := NewAccountHandler(&stubAccountService{}, CookieOptions{})

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"missing email", map[string]string{"password": "secret"}},
		{"bad email", map[string]string{"email": "nope", "password": "secret"}},
		{"missing password", map[string]string{"email": "alice@example.com"}},
		{"unknown role", map[string]string{"email": "alice@example.com", "password": "secret", "role": "root"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := multipartContext(t, e, http.MethodPost, "/signup", tt.fields, "image/png")
			var verr *domain.ValidationError
			if err := h.Signup(c); !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestAccountHandler_Login_SetsCookie(t *testing.T) {
	e := newEcho()
	expires := testTime.Add(15 * 24 * time.Hour)
	stub := &stubAccountService{
		loginFn: func(_ context.Context, email, password string) (*ports.SessionResult, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected credentials: %s %s", email, password)
			}
			return &ports.SessionResult{Token: "tok_1", ExpiresAt: expires, Account: testAccount()}, nil
		},
	}
	h := NewAccountHandler(stub, CookieOptions{Secure: true})

	c, rec := jsonContext(e, http.MethodPost, "/login", `{"email":"alice@example.com","password":"secret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	cookie := sessionCookie(t, rec)
	if cookie.Value != "tok_1" || !cookie.HttpOnly || !cookie.Secure || cookie.Path != "/" {
		t.Fatalf("unexpected cookie: %+v", cookie)
	}
	if !cookie.Expires.Equal(expires) {
		t.Fatalf("expected expiry %v, got %v", expires, cookie.Expires)
	}
}

func TestAccountHandler_Login_Errors(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		loginFn: func(context.Context, string, string) (*ports.SessionResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAccountHandler(stub, CookieOptions{})

	c, rec := jsonContext(e, http.MethodPost, "/login", `{"email":"alice@example.com","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("failed login must not set a cookie")
	}

	c, _ = jsonContext(e, http.MethodPost, "/login", `{not json`)
	var he *echo.HTTPError
	if err := h.Login(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAccountHandler_Logout(t *testing.T) {
	e := newEcho()
	var loggedOut string
	stub := &stubAccountService{
		logoutFn: func(_ context.Context, id string) error {
			loggedOut = id
			return nil
		},
	}
	h := NewAccountHandler(stub, CookieOptions{})

	c, _ := jsonContext(e, http.MethodPost, "/logout", "")
	if err := h.Logout(c); !errors.Is(err, domain.ErrMissingSession) {
		t.Fatalf("expected ErrMissingSession, got %v", err)
	}

	c, rec := jsonContext(e, http.MethodPost, "/logout", "")
	c.Set("account", testAccount())
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if loggedOut != "acc_1" {
		t.Fatalf("expected logout of acc_1, got %q", loggedOut)
	}
	cookie := sessionCookie(t, rec)
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got %+v", cookie)
	}
}

func TestAccountHandler_VerifyEmail(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		verifyEmailFn: func(_ context.Context, email, code string) (*ports.SessionResult, error) {
			if code != "123456" {
				return nil, domain.ErrInvalidOTP
			}
			return &ports.SessionResult{Token: "tok_2", ExpiresAt: testTime, Account: testAccount()}, nil
		},
	}
	h := NewAccountHandler(stub, CookieOptions{})

	c, rec := jsonContext(e, http.MethodPost, "/verify-email", `{"email":"alice@example.com","otp":"123456"}`)
	if err := h.VerifyEmail(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if cookie := sessionCookie(t, rec); cookie.Value != "tok_2" {
		t.Fatalf("unexpected cookie: %+v", cookie)
	}

	c, _ = jsonContext(e, http.MethodPost, "/verify-email", `{"email":"alice@example.com","otp":"654321"}`)
	if err := h.VerifyEmail(c); !errors.Is(err, domain.ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP, got %v", err)
	}

	c, _ = jsonContext(e, http.MethodPost, "/verify-email", `{"email":"alice@example.com","otp":"12ab"}`)
	var verr *domain.ValidationError
	if err := h.VerifyEmail(c); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for non-numeric otp, got %v", err)
	}
}

func TestAccountHandler_ResendVerification(t *testing.T) {
	e := newEcho()
	var sentTo string
	stub := &stubAccountService{
		resendVerificationFn: func(_ context.Context, email string) error {
			sentTo = email
			return nil
		},
	}
	h := NewAccountHandler(stub, CookieOptions{})

	c, rec := jsonContext(e, http.MethodPut, "/resend-verification", `{"email":"alice@example.com"}`)
	if err := h.ResendVerification(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || sentTo != "alice@example.com" {
		t.Fatalf("unexpected result: code=%d sentTo=%q", rec.Code, sentTo)
	}
}

func TestAccountHandler_MyProfile(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		profileFn: func(_ context.Context, id string) (*domain.Account, error) {
			if id != "acc_1" {
				t.Fatalf("unexpected id %q", id)
			}
			return testAccount(), nil
		},
	}
	h := NewAccountHandler(stub, CookieOptions{})

	c, rec := jsonContext(e, http.MethodGet, "/my-profile", "")
	c.Set("account", testAccount())
	if err := h.MyProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password must never be serialized")
	}
	if user["email"] != "alice@example.com" || user["status"] != "verified" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAccountHandler_UpdateProfile(t *testing.T) {
	e := newEcho()
	var got ports.UpdateProfileInput
	stub := &stubAccountService{
		updateProfileFn: func(_ context.Context, _ string, in ports.UpdateProfileInput) (*domain.Account, error) {
			got = in
			acc := testAccount()
			acc.Name = "Alicia"
			return acc, nil
		},
	}
	h := NewAccountHandler(stub, CookieOptions{})

	c, rec := jsonContext(e, http.MethodPut, "/update-profile", `{"name":"Alicia"}`)
	c.Set("account", testAccount())
	if err := h.UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Name != "Alicia" || got.Image != nil {
		t.Fatalf("unexpected input: %+v", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = multipartContext(t, e, http.MethodPut, "/update-profile", map[string]string{"role": "admin"}, "image/jpeg")
	c.Set("account", testAccount())
	if err := h.UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Role != domain.RoleAdmin || got.Image == nil || got.Image.ContentType != "image/jpeg" {
		t.Fatalf("unexpected multipart input: %+v", got)
	}
}

func TestAccountHandler_UpdatePassword(t *testing.T) {
	e := newEcho()
	var got ports.UpdatePasswordInput
	stub := &stubAccountService{
		updatePasswordFn: func(_ context.Context, _ string, in ports.UpdatePasswordInput) error {
			got = in
			if in.Password != in.ConfirmPassword {
				return domain.ErrPasswordMismatch
			}
			return nil
		},
	}
	h := NewAccountHandler(stub, CookieOptions{})

	c, rec := jsonContext(e, http.MethodPut, "/update-password", `{"oldPassword":"a","password":"b","confirmPassword":"b"}`)
	c.Set("account", testAccount())
	if err := h.UpdatePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || got.OldPassword != "a" {
		t.Fatalf("unexpected result: code=%d input=%+v", rec.Code, got)
	}

	c, _ = jsonContext(e, http.MethodPut, "/update-password", `{"oldPassword":"a","password":"b","confirmPassword":"c"}`)
	c.Set("account", testAccount())
	if err := h.UpdatePassword(c); !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}

	c, _ = jsonContext(e, http.MethodPut, "/update-password", `{"password":"b"}`)
	c.Set("account", testAccount())
	var verr *domain.ValidationError
	if err := h.UpdatePassword(c); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
