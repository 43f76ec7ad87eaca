package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lusail/account-service/internal/core/domain"
	"github.com/lusail/account-service/internal/core/ports"
)

type stubAccountService struct {
	registerFn           func(ctx context.Context, in ports.RegisterInput) (*domain.Account, error)
	loginFn              func(ctx context.Context, email, password string) (*ports.SessionResult, error)
	verifySessionFn      func(ctx context.Context, token string) (*domain.Account, error)
	logoutFn             func(ctx context.Context, id string) error
	verifyEmailFn        func(ctx context.Context, email, code string) (*ports.SessionResult, error)
	resendVerificationFn func(ctx context.Context, email string) error
	profileFn            func(ctx context.Context, id string) (*domain.Account, error)
	updateProfileFn      func(ctx context.Context, id string, in ports.UpdateProfileInput) (*domain.Account, error)
	updatePasswordFn     func(ctx context.Context, id string, in ports.UpdatePasswordInput) error
}

func (s *stubAccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAccountService) Login(ctx context.Context, email, password string) (*ports.SessionResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAccountService) VerifySession(ctx context.Context, token string) (*domain.Account, error) {
	return s.verifySessionFn(ctx, token)
}

func (s *stubAccountService) Logout(ctx context.Context, id string) error {
	return s.logoutFn(ctx, id)
}

func (s *stubAccountService) VerifyEmail(ctx context.Context, email, code string) (*ports.SessionResult, error) {
	return s.verifyEmailFn(ctx, email, code)
}

func (s *stubAccountService) ResendVerification(ctx context.Context, email string) error {
	return s.resendVerificationFn(ctx, email)
}

func (s *stubAccountService) Profile(ctx context.Context, id string) (*domain.Account, error) {
	return s.profileFn(ctx, id)
}

func (s *stubAccountService) UpdateProfile(ctx context.Context, id string, in ports.UpdateProfileInput) (*domain.Account, error) {
	return s.updateProfileFn(ctx, id, in)
}

func (s *stubAccountService) UpdatePassword(ctx context.Context, id string, in ports.UpdatePasswordInput) error {
	return s.updatePasswordFn(ctx, id, in)
}

type stubAdminService struct {
	listFn   func(ctx context.Context, in ports.ListAccountsInput) (*ports.ListAccountsResult, error)
	getFn    func(ctx context.Context, id string) (*domain.Account, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubAdminService) ListAccounts(ctx context.Context, in ports.ListAccountsInput) (*ports.ListAccountsResult, error) {
	return s.listFn(ctx, in)
}

func (s *stubAdminService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *stubAdminService) DeleteAccount(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type stubResetService struct {
	forgotFn func(ctx context.Context, email string) error
	verifyFn func(ctx context.Context, email, code string) error
	resetFn  func(ctx context.Context, email, password string) error
}

func (s *stubResetService) ForgotPassword(ctx context.Context, email string) error {
	return s.forgotFn(ctx, email)
}

func (s *stubResetService) VerifyOTP(ctx context.Context, email, code string) error {
	return s.verifyFn(ctx, email, code)
}

func (s *stubResetService) ResetPassword(ctx context.Context, email, password string) error {
	return s.resetFn(ctx, email, password)
}

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testAccount() *domain.Account {
	return &domain.Account{
		ID:           "acc_1",
		Name:         "Alice",
		Email:        "alice@example.com",
		Role:         domain.RoleUser,
		Status:       domain.StatusVerified,
		ProfileImage: &domain.ProfileImage{ExternalID: "user-profiles/img_1.png", URL: "https://cdn.example.com/user-profiles/img_1.png"},
		CreatedAt:    testTime,
		UpdatedAt:    testTime,
	}
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// multipartContext builds a multipart request. An empty imageType skips the file part.
func multipartContext(t *testing.T, e *echo.Echo, method, target string, fields map[string]string, imageType string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if imageType != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+ProfilePicField+`"; filename="me.png"`)
		h.Set("Content-Type", imageType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := io.WriteString(part, "\x89PNG fake image"); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}
