package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "qrmenu:session:"

// RedisStore persists sessions in Redis so they survive gateway restarts.
// Each session is written with a TTL matching its expiry, so Redis drops
// dead sessions on its own even if the sweep never sees them.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	sess := new(Session)
	if err := json.Unmarshal([]byte(raw), sess); err != nil {
		return nil, fmt.Errorf("invalid session data for %s: %w", id, err)
	}

	return sess, nil
}

func (s *RedisStore) Put(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", sess.ID, err)
	}

	ttl := time.Until(time.Unix(sess.ExpiresAt, 0))
	if ttl <= 0 {
		// Already dead, nothing worth storing
		return s.Delete(ctx, sess.ID)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+sess.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", sess.ID, err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}

	return nil
}

func (s *RedisStore) All(ctx context.Context) ([]*Session, error) {
	keys, err := s.client.Keys(ctx, redisKeyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list session keys: %w", err)
	}

	sessions := make([]*Session, 0, len(keys))
	for _, key := range keys {
		raw, err := s.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			// Expired between Keys and Get
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get session for key %s: %w", key, err)
		}

		sess := new(Session)
		if err := json.Unmarshal([]byte(raw), sess); err != nil {
			return nil, fmt.Errorf("invalid session data for key %s: %w", key, err)
		}

		sessions = append(sessions, sess)
	}

	return sessions, nil
}
