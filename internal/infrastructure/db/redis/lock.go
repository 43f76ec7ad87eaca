package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultLockTTL  = 10 * time.Second
	defaultLockWait = 5 * time.Second
	lockPollEvery   = 50 * time.Millisecond
)

// ErrLockTimeout is returned when a lock could not be acquired within the wait window.
var ErrLockTimeout = errors.New("account lock: timed out waiting for lock")

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is an advisory per-key lock backed by SET NX PX.
// Key format: lock:<key>
type Locker struct {
	client redis.UniversalClient
	ttl    time.Duration
	wait   time.Duration
	logger zerolog.Logger
}

// NewLocker creates a Locker wrapping the given Redis client. Zero durations
// fall back to the defaults.
func NewLocker(client redis.UniversalClient, ttl, wait time.Duration, logger zerolog.Logger) *Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &Locker{client: client, ttl: ttl, wait: wait, logger: logger}
}

// Acquire blocks until the lock for key is held, the wait window elapses or ctx is done.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	token, err := newLockToken()
	if err != nil {
		return nil, err
	}
	k := l.key(key)

	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("account lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollEvery):
		}
	}

	return func() {
		// The request context may already be cancelled when release runs.
		releaseCtx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{k}, token).Err(); err != nil {
			l.logger.Warn().Err(err).Str("key", k).Msg("failed to release account lock")
		}
	}, nil
}

func (l *Locker) key(key string) string {
	return "lock:" + key
}

func newLockToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("account lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
