// File: services/assistant/sessionStore.go
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/models"

	"github.com/go-redis/redis/v8"
)

const (
	sessionHistoryPrefix = "assistant:history:"
	sessionDetailsPrefix = "assistant:details:"
)

// SessionStore persists per-session conversation history and the evolving
// booking-details aggregate. AppendHistory has append semantics: a later
// save never drops previously stored turns. Implementations must be safe
// for concurrent use across sessions.
type SessionStore interface {
	LoadHistory(ctx context.Context, sessionID string) ([]models.Message, error)
	AppendHistory(ctx context.Context, sessionID string, delta []models.Message) error
	LoadDetails(ctx context.Context, sessionID string) (*models.BookingDetails, error)
	SaveDetails(ctx context.Context, sessionID string, details *models.BookingDetails) error
	Reset(ctx context.Context, sessionID string) error
}

// RedisSessionStore keeps history as a Redis list (RPUSH preserves insertion
// order) and the aggregate as a JSON value, both under a shared TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) LoadHistory(ctx context.Context, sessionID string) ([]models.Message, error) {
	key := sessionHistoryPrefix + sessionID
	entries, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err == redis.Nil {
		return []models.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	messages := make([]models.Message, 0, len(entries))
	for _, entry := range entries {
		var msg models.Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (s *RedisSessionStore) AppendHistory(ctx context.Context, sessionID string, delta []models.Message) error {
	if len(delta) == 0 {
		return nil
	}
	key := sessionHistoryPrefix + sessionID
	values := make([]interface{}, 0, len(delta))
	for _, msg := range delta {
		b, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("encode history entry: %w", err)
		}
		values = append(values, b)
	}
	if err := s.client.RPush(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return s.client.Expire(ctx, key, s.ttl).Err()
}

func (s *RedisSessionStore) LoadDetails(ctx context.Context, sessionID string) (*models.BookingDetails, error) {
	key := sessionDetailsPrefix + sessionID
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return &models.BookingDetails{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load booking details: %w", err)
	}
	var details models.BookingDetails
	if err := json.Unmarshal([]byte(data), &details); err != nil {
		return nil, fmt.Errorf("decode booking details: %w", err)
	}
	return &details, nil
}

func (s *RedisSessionStore) SaveDetails(ctx context.Context, sessionID string, details *models.BookingDetails) error {
	key := sessionDetailsPrefix + sessionID
	b, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode booking details: %w", err)
	}
	return s.client.Set(ctx, key, b, s.ttl).Err()
}

func (s *RedisSessionStore) Reset(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx,
		sessionHistoryPrefix+sessionID,
		sessionDetailsPrefix+sessionID,
	).Err()
}

// MemorySessionStore is the in-process SessionStore used by tests and
// single-node development runs.
type MemorySessionStore struct {
	mu      sync.Mutex
	history map[string][]models.Message
	details map[string]models.BookingDetails
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		history: make(map[string][]models.Message),
		details: make(map[string]models.BookingDetails),
	}
}

func (s *MemorySessionStore) LoadHistory(ctx context.Context, sessionID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.history[sessionID]...), nil
}

func (s *MemorySessionStore) AppendHistory(ctx context.Context, sessionID string, delta []models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[sessionID] = append(s.history[sessionID], delta...)
	return nil
}

func (s *MemorySessionStore) LoadDetails(ctx context.Context, sessionID string) (*models.BookingDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	details := s.details[sessionID]
	return &details, nil
}

func (s *MemorySessionStore) SaveDetails(ctx context.Context, sessionID string, details *models.BookingDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[sessionID] = *details
	return nil
}

func (s *MemorySessionStore) Reset(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, sessionID)
	delete(s.details, sessionID)
	return nil
}
