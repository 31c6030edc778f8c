package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis"

	"leadbot/internal/models"
	"leadbot/internal/storage"
)

const keyPrefix = "leadbot:session:"

// SessionStore keeps sessions in Redis as JSON. Every Save refreshes the key TTL,
// so idle sessions expire on the server without a sweep.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore connects to Redis and checks the connection
func NewSessionStore(addr, password string, db int, ttl time.Duration) (*SessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return &SessionStore{client: client, ttl: ttl}, nil
}

func key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// Get loads and decodes a session
func (r *SessionStore) Get(ctx context.Context, id int64) (*models.Session, error) {
	data, err := r.client.WithContext(ctx).Get(key(id)).Bytes()
	if err == redis.Nil {
		return nil, storage.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %d: %w", id, err)
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session %d: %w", id, err)
	}
	return &s, nil
}

// Save encodes the session and resets its TTL
func (r *SessionStore) Save(ctx context.Context, session *models.Session) error {
	s := session.Clone()
	s.UpdatedAt = time.Now()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session %d: %w", s.ID, err)
	}
	if err := r.client.WithContext(ctx).Set(key(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %d: %w", s.ID, err)
	}
	return nil
}

// Delete removes a session key
func (r *SessionStore) Delete(ctx context.Context, id int64) error {
	if err := r.client.WithContext(ctx).Del(key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %d: %w", id, err)
	}
	return nil
}

// Close closes the Redis client
func (r *SessionStore) Close() error {
	return r.client.Close()
}
