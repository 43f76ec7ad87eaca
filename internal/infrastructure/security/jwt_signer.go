package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lusail/account-service/internal/pkg/clock"
)

const defaultTokenTTL = 15 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the account id in the standard subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTSigner issues HS256 session tokens.
type JWTSigner struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewJWTSigner(secret string, ttl time.Duration, clk clock.Clock) *JWTSigner {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &JWTSigner{secret: []byte(secret), ttl: ttl, clock: clk}
}

func (s *JWTSigner) Sign(accountID string) (string, time.Time, error) {
	now := s.clock.Now()
	exp := now.Add(s.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, algorithm and expiry and returns the subject.
func (s *JWTSigner) Verify(token string) (string, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tkn.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
