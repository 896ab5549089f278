package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Session is the proxy-side record for a booking session, keyed first by
// session id and later by booking id once the booking is created.
type Session struct {
	Slip    string `json:"slip"`
	ItemID  string `json:"item_id"`
	Guests  int    `json:"guests"`
	Total   string `json:"total"`
	Summary string `json:"summary"`
	Status  string `json:"status,omitempty"`
}

// SessionStore persists sessions for the lifetime of one booking attempt.
type SessionStore interface {
	Put(ctx context.Context, key string, s Session) error
	Get(ctx context.Context, key string) (*Session, bool, error)
}

const sessionKeyPrefix = "booking:session:"

// RedisSessionStore keeps sessions in redis with a TTL so abandoned carts
// expire on their own.
type RedisSessionStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if client == nil {
		panic("proxy: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisSessionStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("bookingwidget.internal.proxy.sessions"),
	}
}

func (s *RedisSessionStore) Put(ctx context.Context, key string, sess Session) error {
	ctx, span := s.tracer.Start(ctx, "sessions.put")
	defer span.End()

	data, err := json.Marshal(sess)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("proxy: marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKeyPrefix+key, data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("proxy: persist session %s: %w", key, err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, key string) (*Session, bool, error) {
	ctx, span := s.tracer.Start(ctx, "sessions.get")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("proxy: load session %s: %w", key, err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("proxy: decode session %s: %w", key, err)
	}
	return &sess, true, nil
}

// MemorySessionStore is the fallback when no redis is configured (single
// proxy instance, sessions lost on restart).
type MemorySessionStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemorySessionStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemorySessionStore) Put(_ context.Context, key string, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{session: sess, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, key string) (*Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}
	sess := entry.session
	return &sess, true, nil
}
