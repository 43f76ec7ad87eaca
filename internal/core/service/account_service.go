package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/lusail/account-service/internal/core/domain"
	"github.com/lusail/account-service/internal/core/ports"
	"github.com/lusail/account-service/internal/pkg/clock"
)

// AccountOptions toggles optional account behaviour.
type AccountOptions struct {
	// RequireEmailVerification creates accounts unverified and purges them
	// when they try to log in before verifying.
	RequireEmailVerification bool
	// AdminEmails may sign up with the admin role. Everyone else signs up as
	// a user and needs an existing admin to be promoted.
	AdminEmails []string
}

// AccountService implements ports.AccountService and ports.AdminService.
type AccountService struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	signer ports.TokenSigner
	otp    ports.OTPService
	images ports.ImageHost
	clock  clock.Clock
	opts   AccountOptions
	logger zerolog.Logger
}

func NewAccountService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	signer ports.TokenSigner,
	otp ports.OTPService,
	images ports.ImageHost,
	clk clock.Clock,
	opts AccountOptions,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		repo:   repo,
		hasher: hasher,
		signer: signer,
		otp:    otp,
		images: images,
		clock:  clk,
		opts:   opts,
		logger: logger,
	}
}

func (s *AccountService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Account, error) {
	if input.Image == nil {
		return nil, domain.NewValidationError("profile picture is required")
	}
	if input.Email == "" || input.Password == "" {
		return nil, domain.NewValidationError("email and password are required")
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.IsValidRole(role) {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid role %q", role))
	}
	if role == domain.RoleAdmin && !s.isBootstrapAdmin(input.Email) {
		s.logger.Warn().Str("email", input.Email).Msg("admin role requested at signup")
		return nil, domain.ErrForbidden
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrAccountExists
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	image, err := s.uploadImage(ctx, *input.Image)
	if err != nil {
		return nil, err
	}

	status := domain.StatusVerified
	if s.opts.RequireEmailVerification {
		status = domain.StatusUnverified
	}

	now := s.clock.Now()
	created, err := s.repo.Create(ctx, &domain.Account{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		Status:       status,
		ProfileImage: image,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		s.destroyImage(ctx, image)
		return nil, err
	}

	if s.opts.RequireEmailVerification {
		if err := s.otp.Issue(ctx, created.Email, ports.OTPPurposeEmailVerification); err != nil {
			s.logger.Error().Err(err).Str("account_id", created.ID).Msg("verification email failed, removing account")
			if delErr := s.repo.Delete(ctx, created.ID); delErr != nil {
				s.logger.Error().Err(delErr).Str("account_id", created.ID).Msg("failed to remove unverifiable account")
			}
			s.destroyImage(ctx, image)
			return nil, err
		}
	}

	s.logger.Info().Str("account_id", created.ID).Str("role", created.Role).Msg("account registered")
	return created, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*ports.SessionResult, error) {
	if email == "" || password == "" {
		return nil, domain.NewValidationError("email and password are required")
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	// Purge precedes the password check.
	if s.opts.RequireEmailVerification && !account.Verified() {
		if err := s.repo.Delete(ctx, account.ID); err != nil {
			return nil, fmt.Errorf("purge unverified account: %w", err)
		}
		s.destroyImage(ctx, account.ProfileImage)
		s.logger.Info().Str("account_id", account.ID).Msg("unverified account purged on login")
		return nil, domain.ErrAccountUnverified
	}

	if !s.hasher.Compare(account.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.openSession(ctx, account)
}

// VerifySession resolves a token to its account. Only signature and expiry are
// checked; a logged-out token stays valid until it expires.
func (s *AccountService) VerifySession(ctx context.Context, token string) (*domain.Account, error) {
	if token == "" {
		return nil, domain.ErrMissingSession
	}
	id, err := s.signer.Verify(token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("session token rejected")
		return nil, domain.ErrInvalidSession
	}
	return s.repo.FindByID(ctx, id)
}

func (s *AccountService) Logout(ctx context.Context, accountID string) error {
	if _, err := s.repo.FindByID(ctx, accountID); err != nil {
		return err
	}
	if err := s.repo.SetSessionIssued(ctx, accountID, nil); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	s.logger.Info().Str("account_id", accountID).Msg("session ended")
	return nil
}

func (s *AccountService) VerifyEmail(ctx context.Context, email, code string) (*ports.SessionResult, error) {
	account, err := s.otp.Verify(ctx, email, code)
	if err != nil {
		return nil, err
	}
	if !account.Verified() {
		if err := s.repo.MarkVerified(ctx, account.ID); err != nil {
			return nil, fmt.Errorf("mark verified: %w", err)
		}
		account.Status = domain.StatusVerified
	}
	s.logger.Info().Str("account_id", account.ID).Msg("email verified")
	return s.openSession(ctx, account)
}

func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	if email == "" {
		return domain.NewValidationError("please provide an email address")
	}
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account.Verified() {
		return domain.NewValidationError("account is already verified")
	}
	return s.otp.Issue(ctx, email, ports.OTPPurposeEmailVerification)
}

func (s *AccountService) Profile(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.repo.FindByID(ctx, accountID)
}

// UpdateProfile applies the non-empty fields of input. A new image is uploaded
// before the previous one is destroyed.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID string, input ports.UpdateProfileInput) (*domain.Account, error) {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var changes ports.ProfileChanges
	if input.Name != "" {
		changes.Name = &input.Name
	}
	if input.Role != "" && input.Role != account.Role {
		if !domain.IsValidRole(input.Role) {
			return nil, domain.NewValidationError(fmt.Sprintf("invalid role %q", input.Role))
		}
		if account.Role != domain.RoleAdmin {
			s.logger.Warn().Str("account_id", accountID).Str("to", input.Role).Msg("role change refused")
			return nil, domain.ErrForbidden
		}
		s.logger.Warn().Str("account_id", accountID).Str("from", account.Role).Str("to", input.Role).Msg("role changed through profile update")
		changes.Role = &input.Role
	}

	var previous *domain.ProfileImage
	if input.Image != nil {
		image, err := s.uploadImage(ctx, *input.Image)
		if err != nil {
			return nil, err
		}
		changes.Image = image
		previous = account.ProfileImage
	}

	if err := s.repo.UpdateProfile(ctx, accountID, changes); err != nil {
		s.destroyImage(ctx, changes.Image)
		return nil, err
	}
	s.destroyImage(ctx, previous)

	return s.repo.FindByID(ctx, accountID)
}

func (s *AccountService) UpdatePassword(ctx context.Context, accountID string, input ports.UpdatePasswordInput) error {
	if input.OldPassword == "" || input.Password == "" || input.ConfirmPassword == "" {
		return domain.NewValidationError("oldPassword, password and confirmPassword are required")
	}

	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !s.hasher.Compare(account.PasswordHash, input.OldPassword) {
		return domain.ErrIncorrectPassword
	}
	if input.Password != input.ConfirmPassword {
		return domain.ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, accountID, hash); err != nil {
		return err
	}
	s.logger.Info().Str("account_id", accountID).Msg("password updated")
	return nil
}

func (s *AccountService) openSession(ctx context.Context, account *domain.Account) (*ports.SessionResult, error) {
	token, expiresAt, err := s.signer.Sign(account.ID)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	now := s.clock.Now()
	if err := s.repo.SetSessionIssued(ctx, account.ID, &now); err != nil {
		return nil, fmt.Errorf("record session: %w", err)
	}
	account.SessionIssuedAt = &now

	s.logger.Info().Str("account_id", account.ID).Time("expires", expiresAt).Msg("session opened")
	return &ports.SessionResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

// uploadImage passes validation errors through and wraps everything else as ErrImageUpload.
func (s *AccountService) uploadImage(ctx context.Context, img ports.ImageUpload) (*domain.ProfileImage, error) {
	image, err := s.images.Upload(ctx, img)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrImageUpload, err)
	}
	return image, nil
}

// destroyImage removes a hosted image, logging failures instead of returning them.
func (s *AccountService) destroyImage(ctx context.Context, image *domain.ProfileImage) {
	if image == nil || image.ExternalID == "" {
		return
	}
	if err := s.images.Destroy(ctx, image.ExternalID); err != nil {
		s.logger.Warn().Err(fmt.Errorf("%w: %v", domain.ErrImageDestroy, err)).Str("external_id", image.ExternalID).Msg("orphaned profile image")
	}
}

func (s *AccountService) isBootstrapAdmin(email string) bool {
	return lo.ContainsBy(s.opts.AdminEmails, func(e string) bool {
		return strings.EqualFold(strings.TrimSpace(e), email)
	})
}
