package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lusail/account-service/internal/core/domain"
	"github.com/lusail/account-service/internal/pkg/clock"
)

func newPasswordResetFixture() (*PasswordResetService, *stubAccountRepo, *stubMailer, *clock.Fixed) {
	repo := newStubAccountRepo()
	mailer := &stubMailer{}
	clk := &clock.Fixed{At: t0}
	otp := NewOTPService(repo, mailer, noopLocker{}, clk, OTPOptions{TTL: 5 * time.Minute}, zerolog.Nop())
	otp.generate = sequenceCodes("424242", "535353")
	repo.seed(&domain.Account{ID: "acc_alice", Email: "alice@example.com", PasswordHash: "hashed:old", Status: domain.StatusVerified})
	return NewPasswordResetService(repo, plainHasher{}, otp, noopLocker{}, zerolog.Nop()), repo, mailer, clk
}

func TestPasswordReset_FullFlow(t *testing.T) {
	svc, repo, mailer, _ := newPasswordResetFixture()
	ctx := context.Background()

	if err := svc.ForgotPassword(ctx, "alice@example.com"); err != nil {
		t.Fatalf("ForgotPassword returned error: %v", err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].subject != "Password Reset OTP" {
		t.Fatalf("expected reset email, got %+v", mailer.sent)
	}
	if err := svc.VerifyOTP(ctx, "alice@example.com", "424242"); err != nil {
		t.Fatalf("VerifyOTP returned error: %v", err)
	}
	if err := svc.ResetPassword(ctx, "alice@example.com", "fresh"); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if got := repo.get("acc_alice").PasswordHash; got != "hashed:fresh" {
		t.Fatalf("expected new password hash, got %q", got)
	}
}

func TestPasswordReset_VerifyOTP_Expired(t *testing.T) {
	svc, _, _, clk := newPasswordResetFixture()
	ctx := context.Background()

	if err := svc.ForgotPassword(ctx, "alice@example.com"); err != nil {
		t.Fatalf("ForgotPassword returned error: %v", err)
	}
	clk.Advance(301 * time.Second)

	if err := svc.VerifyOTP(ctx, "alice@example.com", "424242"); !errors.Is(err, domain.ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP, got %v", err)
	}
}

func TestPasswordReset_ForgotPassword_UnknownEmail(t *testing.T) {
	svc, _, _, _ := newPasswordResetFixture()

	if err := svc.ForgotPassword(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestPasswordReset_ResetPassword_WithoutOTP(t *testing.T) {
	svc, repo, _, _ := newPasswordResetFixture()

	// Reset is not gated on a verified code.
	if err := svc.ResetPassword(context.Background(), "alice@example.com", "fresh"); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if got := repo.get("acc_alice").PasswordHash; got != "hashed:fresh" {
		t.Fatalf("expected new password hash, got %q", got)
	}
}

func TestPasswordReset_ResetPassword_Validation(t *testing.T) {
	svc, _, _, _ := newPasswordResetFixture()
	ctx := context.Background()

	var verr *domain.ValidationError
	if err := svc.ResetPassword(ctx, "alice@example.com", ""); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := svc.ResetPassword(ctx, "nobody@example.com", "x"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
