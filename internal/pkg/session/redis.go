package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "learnway:identity:"

// RedisConfig holds the connection settings of the identity store
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisStore keeps identities as JSON values with a TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisStoreFromClient(rdb, cfg.TTL), nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(memberID string) string {
	return keyPrefix + memberID
}

func (s *RedisStore) Save(ctx context.Context, identity Identity) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	if err := s.client.Set(ctx, key(identity.MemberID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save identity %s: %w", identity.MemberID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, memberID string) (*Identity, error) {
	payload, err := s.client.Get(ctx, key(memberID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("failed to load identity %s: %w", memberID, err)
	}

	var identity Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		return nil, fmt.Errorf("failed to decode identity %s: %w", memberID, err)
	}
	return &identity, nil
}

func (s *RedisStore) Delete(ctx context.Context, memberID string) error {
	if err := s.client.Del(ctx, key(memberID)).Err(); err != nil {
		return fmt.Errorf("failed to delete identity %s: %w", memberID, err)
	}
	return nil
}

// Close releases the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
