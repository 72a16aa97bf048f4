package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"login-portal/internal/domain"
)

// ErrNotFound is returned when a token has no live session record.
var ErrNotFound = errors.New("session not found")

// Store keeps session records keyed by opaque token.
type Store interface {
	Save(ctx context.Context, token string, sess *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

// RedisStore keeps JSON-encoded sessions under <prefix>:<token> with a TTL.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(token string) string {
	return s.prefix + ":" + token
}

func (s *RedisStore) Save(ctx context.Context, token string, sess *domain.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}

type memoryEntry struct {
	sess      domain.Session
	expiresAt time.Time
}

// memorySweepInterval bounds how often Save scans for expired entries.
const memorySweepInterval = time.Minute

// MemoryStore is a process-local Store for single-instance deployments and tests.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, token string, sess *domain.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{sess: *sess}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries[token] = entry
	if now := s.now(); now.Sub(s.lastSweep) >= memorySweepInterval {
		s.sweepLocked(now)
		s.lastSweep = now
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok {
		return nil, ErrNotFound
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.entries, token)
		return nil, ErrNotFound
	}
	sess := entry.sess
	return &sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}

// Len reports the number of stored records, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// sweepLocked drops expired entries so abandoned sessions do not accumulate.
func (s *MemoryStore) sweepLocked(now time.Time) {
	for token, entry := range s.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(s.entries, token)
		}
	}
}
