package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"menupricing/internal/customize"
)

const defaultRecordTTL = 24 * time.Hour

// ErrRecordNotFound is returned by Get when no record was handed off for the session.
var ErrRecordNotFound = errors.New("cart record not found")

// CartStorage receives finished customization records. One record is kept per popup session.
type CartStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func New(addr, password string, db int, ttl time.Duration) *CartStorage {
	return NewFromClient(redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     100,
		MinIdleConns: 10,
	}), ttl)
}

func NewFromClient(client *redis.Client, ttl time.Duration) *CartStorage {
	if ttl <= 0 {
		ttl = defaultRecordTTL
	}
	return &CartStorage{client: client, ttl: ttl}
}

// Close closes the Redis connection
func (s *CartStorage) Close() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

// Push stores the record under its session token. A second push for the same session
// leaves the first record in place and reports false.
func (s *CartStorage) Push(ctx context.Context, record customize.Record) (bool, error) {
	if record.PopupSessionID == "" {
		return false, errors.New("push record: empty session id")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}

	stored, err := s.client.SetNX(ctx, buildRecordKey(record.PopupSessionID), data, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("push record: %w", err)
	}
	return stored, nil
}

func (s *CartStorage) Get(ctx context.Context, sessionID string) (*customize.Record, error) {
	data, err := s.client.Get(ctx, buildRecordKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}

	var record customize.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal failure: %w", err)
	}
	return &record, nil
}

func (s *CartStorage) Drop(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, buildRecordKey(sessionID)).Err()
}

func buildRecordKey(sessionID string) string {
	return fmt.Sprintf("cart:record:%s", sessionID)
}
