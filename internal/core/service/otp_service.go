package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"

	"github.com/lusail/account-service/internal/core/domain"
	"github.com/lusail/account-service/internal/core/ports"
	"github.com/lusail/account-service/internal/pkg/clock"
)

const (
	defaultOTPTTL    = 5 * time.Minute
	defaultOTPDigits = 6
)

// OTPOptions tunes code generation and the email wording.
type OTPOptions struct {
	TTL     time.Duration
	Digits  int
	AppName string
}

// OTPService implements ports.OTPService against the account record.
type OTPService struct {
	repo     ports.AccountRepository
	mailer   ports.EmailDispatcher
	locker   ports.AccountLocker
	clock    clock.Clock
	opts     OTPOptions
	logger   zerolog.Logger
	generate func() (string, error)
}

func NewOTPService(
	repo ports.AccountRepository,
	mailer ports.EmailDispatcher,
	locker ports.AccountLocker,
	clk clock.Clock,
	opts OTPOptions,
	logger zerolog.Logger,
) *OTPService {
	if opts.TTL <= 0 {
		opts.TTL = defaultOTPTTL
	}
	if opts.Digits <= 0 {
		opts.Digits = defaultOTPDigits
	}
	s := &OTPService{
		repo:   repo,
		mailer: mailer,
		locker: locker,
		clock:  clk,
		opts:   opts,
		logger: logger,
	}
	s.generate = func() (string, error) { return generateOTPCode(opts.Digits) }
	return s
}

// Issue stores a fresh code for the account owning email and emails it.
// Any previously issued code is overwritten. If delivery fails both otp fields
// are cleared again and domain.ErrOTPDelivery is returned.
func (s *OTPService) Issue(ctx context.Context, email string, purpose ports.OTPPurpose) error {
	if email == "" {
		return domain.NewValidationError("please provide an email address")
	}

	release, err := s.locker.Acquire(ctx, otpLockKey(email))
	if err != nil {
		return fmt.Errorf("issue otp: %w", err)
	}
	defer release()

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("issue otp: generate code: %w", err)
	}

	subject, body, err := renderOTPEmail(purpose, otpEmailData{
		AppName:   s.opts.AppName,
		Name:      account.Name,
		Code:      code,
		ExpiresIn: humanizeTTL(s.opts.TTL),
	})
	if err != nil {
		return fmt.Errorf("issue otp: %w", err)
	}

	expires := s.clock.Now().Add(s.opts.TTL)
	if err := s.repo.SetOTP(ctx, account.ID, code, expires); err != nil {
		return fmt.Errorf("issue otp: store code: %w", err)
	}

	if err := s.mailer.Send(ctx, account.Email, subject, body); err != nil {
		s.logger.Error().Err(err).Str("account_id", account.ID).Str("purpose", string(purpose)).Msg("otp email dispatch failed")
		if clearErr := s.repo.ClearOTP(ctx, account.ID); clearErr != nil {
			s.logger.Error().Err(clearErr).Str("account_id", account.ID).Msg("failed to roll back otp")
		}
		return fmt.Errorf("%w: %v", domain.ErrOTPDelivery, err)
	}

	s.logger.Info().Str("account_id", account.ID).Str("purpose", string(purpose)).Time("expires", expires).Msg("otp issued")
	return nil
}

// Verify consumes the pending code of the account owning email. Mismatched
// codes leave the pending code in place; expired codes are cleared.
func (s *OTPService) Verify(ctx context.Context, email, candidate string) (*domain.Account, error) {
	if email == "" || candidate == "" {
		return nil, domain.NewValidationError("email and otp are required")
	}

	release, err := s.locker.Acquire(ctx, otpLockKey(email))
	if err != nil {
		return nil, fmt.Errorf("verify otp: %w", err)
	}
	defer release()

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if !account.OTPMatches(candidate, now) {
		if account.HasPendingOTP() && account.OTPExpired(now) {
			if err := s.repo.ClearOTP(ctx, account.ID); err != nil {
				s.logger.Warn().Err(err).Str("account_id", account.ID).Msg("failed to clear expired otp")
			}
		}
		s.logger.Debug().Str("account_id", account.ID).Msg("otp rejected")
		return nil, domain.ErrInvalidOTP
	}

	if err := s.repo.ClearOTP(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("verify otp: consume code: %w", err)
	}
	account.OTP = ""
	account.OTPExpires = nil

	s.logger.Info().Str("account_id", account.ID).Msg("otp verified")
	return account, nil
}

func otpLockKey(email string) string {
	return "otp:" + email
}

// generateOTPCode returns a zero-padded numeric code with the given number of digits.
func generateOTPCode(digits int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
