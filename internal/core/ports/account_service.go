package ports

import (
	"context"
	"time"

	"github.com/lusail/account-service/internal/core/domain"
)

// RegisterInput carries everything needed to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Image    *ImageUpload
}

// UpdateProfileInput carries optional profile changes; empty values are ignored.
type UpdateProfileInput struct {
	Name  string
	Role  string
	Image *ImageUpload
}

// UpdatePasswordInput carries a password change for a logged-in account.
type UpdatePasswordInput struct {
	OldPassword     string
	Password        string
	ConfirmPassword string
}

// SessionResult is returned whenever a session token is issued.
type SessionResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *domain.Account
}

// AccountService covers signup, session handling and self-service profile operations.
type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*SessionResult, error)
	VerifySession(ctx context.Context, token string) (*domain.Account, error)
	Logout(ctx context.Context, accountID string) error
	VerifyEmail(ctx context.Context, email, code string) (*SessionResult, error)
	ResendVerification(ctx context.Context, email string) error

	Profile(ctx context.Context, accountID string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, accountID string, input UpdateProfileInput) (*domain.Account, error)
	UpdatePassword(ctx context.Context, accountID string, input UpdatePasswordInput) error
}

// ListAccountsInput carries the admin list query.
type ListAccountsInput struct {
	Page  int
	Limit int
}

// ListAccountsResult is a single page of accounts.
type ListAccountsResult struct {
	Items      []*domain.Account
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// AdminService covers account management by administrators.
type AdminService interface {
	ListAccounts(ctx context.Context, input ListAccountsInput) (*ListAccountsResult, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// PasswordResetService covers the forgot/verify/reset flow.
type PasswordResetService interface {
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, newPassword string) error
}
