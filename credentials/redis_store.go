package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/csv-sheet-sync/internal/errors"
	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps credentials in Redis so they survive restarts and are
// shared between replicas.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisClient connects to Redis and checks the connection
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[credentials NewRedisClient] ping %s: %w", addr, err)
	}
	return client, nil
}

// NewRedisStore creates a Redis backed store. Entries expire after ttl, which
// should match the session lifetime; zero keeps them until deleted.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "credential:",
		ttl:    ttl,
	}
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + userID
}

// Get returns the credential stored for userID
func (s *RedisStore) Get(ctx context.Context, userID string) (StoredCredential, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return StoredCredential{}, apperrors.ErrCredentialNotFound
	}
	if err != nil {
		return StoredCredential{}, fmt.Errorf("credentials: redis get: %w", err)
	}

	var credential StoredCredential
	if err := json.Unmarshal(val, &credential); err != nil {
		return StoredCredential{}, fmt.Errorf("credentials: failed to unmarshal: %w", err)
	}
	return credential, nil
}

// Put creates or replaces the credential for its user
func (s *RedisStore) Put(ctx context.Context, credential StoredCredential) error {
	if credential.UserID == "" {
		return fmt.Errorf("credentials: missing user_id")
	}

	data, err := json.Marshal(credential)
	if err != nil {
		return fmt.Errorf("credentials: failed to marshal: %w", err)
	}
	return s.client.Set(ctx, s.key(credential.UserID), data, s.ttl).Err()
}

// Delete removes the credential for userID
func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}
