package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/portal-hub/student-portal/internal/application/session"
)

// Verify interface compliance.
var _ session.Store = (*Redis)(nil)

const redisKeyPrefix = "portal:session:"

// defaultSessionTTL bounds sessions whose tokens carry no expiry claim.
const defaultSessionTTL = 24 * time.Hour

// Redis persists the session in Redis with a TTL derived from the token
// expiry, so stale sessions evict themselves. Used by shared portal
// deployments where several frontends serve the same device.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis creates a Redis-backed store. The key scopes the session, e.g.
// a device or installation identifier.
func NewRedis(client *redis.Client, key string) *Redis {
	return &Redis{client: client, key: redisKeyPrefix + key}
}

// Save stores the session, expiring it when the token does.
func (r *Redis) Save(ctx context.Context, s *session.Session) error {
	ttl := defaultSessionTTL
	if !s.ExpiresAt.IsZero() {
		ttl = time.Until(s.ExpiresAt)
		if ttl <= 0 {
			// Already expired, nothing worth storing.
			return nil
		}
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load retrieves the stored session, or nil when absent or expired.
func (r *Redis) Load(ctx context.Context) (*session.Session, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

// Clear deletes the stored session.
func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
