package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers logged-out token ids in Redis until the token would have expired.
// A nil store, or one without a client, revokes nothing and reports nothing revoked.
type RevocationStore struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRevocationStore returns a store backed by rdb, which may be nil.
func NewRevocationStore(rdb *redis.Client) *RevocationStore {
	return &RevocationStore{rdb: rdb, now: time.Now}
}

func revocationKey(jti string) string {
	return fmt.Sprintf("revoked_jti:%s", jti)
}

// Enabled reports whether revocations are persisted anywhere.
func (s *RevocationStore) Enabled() bool {
	return s != nil && s.rdb != nil
}

// Revoke marks jti as revoked until the given expiry.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, until time.Time) error {
	if !s.Enabled() || jti == "" {
		return nil
	}
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, revocationKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was revoked and has not yet aged out.
func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if !s.Enabled() || jti == "" {
		return false, nil
	}
	_, err := s.rdb.Get(ctx, revocationKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return true, nil
}
