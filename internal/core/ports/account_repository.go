package ports

import (
	"context"
	"time"

	"github.com/lusail/account-service/internal/core/domain"
)

// ListAccountsFilter carries pagination for the admin listing.
type ListAccountsFilter struct {
	Page  int // 1-based
	Limit int // capped at 100 by the service
}

// ProfileChanges lists the profile fields to overwrite. Nil fields are left untouched.
type ProfileChanges struct {
	Name  *string
	Role  *string
	Image *domain.ProfileImage
}

// AccountRepository defines persistence operations for account records.
// Implementations return domain.ErrAccountNotFound when no record matches and
// domain.ErrAccountExists when the unique email index rejects an insert.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context, filter ListAccountsFilter) ([]*domain.Account, int64, error)
	Delete(ctx context.Context, id string) error

	UpdateProfile(ctx context.Context, id string, changes ProfileChanges) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	MarkVerified(ctx context.Context, id string) error

	// SetOTP stores code and expiry in a single write.
	SetOTP(ctx context.Context, id string, code string, expires time.Time) error
	// ClearOTP removes code and expiry in a single write.
	ClearOTP(ctx context.Context, id string) error

	// SetSessionIssued records the last login time; nil clears it.
	SetSessionIssued(ctx context.Context, id string, at *time.Time) error
}
