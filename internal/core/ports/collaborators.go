package ports

import (
	"context"
	"io"
	"time"

	"github.com/lusail/account-service/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// TokenSigner issues and verifies self-contained session tokens.
// Tokens are not tracked server-side, so they cannot be revoked before expiry.
type TokenSigner interface {
	Sign(accountID string) (token string, expiresAt time.Time, err error)
	Verify(token string) (accountID string, err error)
}

// EmailDispatcher delivers a single HTML email.
type EmailDispatcher interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// ImageUpload is a file received from the client, ready to be hosted.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageHost stores profile images with an external provider.
type ImageHost interface {
	Upload(ctx context.Context, img ImageUpload) (*domain.ProfileImage, error)
	Destroy(ctx context.Context, externalID string) error
}

// AccountLocker serialises read-modify-write sequences on one account.
// The returned release func must be called exactly once.
type AccountLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
