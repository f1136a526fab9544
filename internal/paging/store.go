package paging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
)

// StateStore persists pagination state. Load returns nil, nil when key is unknown.
type StateStore interface {
	Load(ctx context.Context, key string) (*State, error)
	Save(ctx context.Context, key string, st *State) error
	Delete(ctx context.Context, key string) error
}

// RedisStateStore keeps state as BSON so cursor values keep their database types.
type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStateStore(client *redis.Client, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{client: client, ttl: ttl}
}

func (s *RedisStateStore) key(k string) string { return "paging:" + k }

func (s *RedisStateStore) Load(ctx context.Context, key string) (*State, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var st State
	if err := bson.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decoding paging state: %w", err)
	}
	return &st, nil
}

func (s *RedisStateStore) Save(ctx context.Context, key string, st *State) error {
	data, err := bson.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding paging state: %w", err)
	}
	return s.client.Set(ctx, s.key(key), data, s.ttl).Err()
}

func (s *RedisStateStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

type memoryEntry struct {
	state   State
	expires time.Time
}

// MemoryStateStore is a process-local StateStore for single-instance runs.
type MemoryStateStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	return &MemoryStateStore{ttl: ttl, entries: map[string]memoryEntry{}, now: time.Now}
}

func (s *MemoryStateStore) Load(_ context.Context, key string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if s.ttl > 0 && s.now().After(e.expires) {
		delete(s.entries, key)
		return nil, nil
	}
	st := copyState(e.state)
	return &st, nil
}

func (s *MemoryStateStore) Save(_ context.Context, key string, st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{state: copyState(*st), expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStateStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func copyState(st State) State {
	cursors := make(map[string]Cursor, len(st.Cursors))
	for k, v := range st.Cursors {
		cursors[k] = v
	}
	st.Cursors = cursors
	return st
}
