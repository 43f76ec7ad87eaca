package ports

import (
	"context"

	"github.com/lusail/account-service/internal/core/domain"
)

// OTPPurpose selects the email wording for an issued code.
type OTPPurpose string

const (
	OTPPurposeEmailVerification OTPPurpose = "email_verification"
	OTPPurposePasswordReset     OTPPurpose = "password_reset"
)

// OTPService manages the one-time code lifecycle of an account:
// NoPendingOTP -> OTPIssued -> (Consumed | Expired) -> NoPendingOTP.
type OTPService interface {
	// Issue stores a fresh code, replacing any previous one, and emails it.
	// The code is rolled back when delivery fails.
	Issue(ctx context.Context, email string, purpose OTPPurpose) error
	// Verify consumes the pending code when candidate matches and is unexpired.
	Verify(ctx context.Context, email, candidate string) (*domain.Account, error)
}
