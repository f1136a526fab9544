package paging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker is implemented by state stores shared between processes. Fetch and
// Reset hold the lock for a key while they read and write its state.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// keyedMutex serialises the fetches of one key inside the process.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[string]*keyLock{}}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

const (
	redisLockTTL   = 30 * time.Second
	redisLockRetry = 20 * time.Millisecond
)

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Lock takes a SET NX lock on key, retrying until ctx is done. The lock
// expires on its own if the holder dies.
func (s *RedisStateStore) Lock(ctx context.Context, key string) (func(), error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	lockKey := "lock:" + s.key(key)
	owner := hex.EncodeToString(b)

	for {
		ok, err := s.client.SetNX(ctx, lockKey, owner, redisLockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquiring lock %s: %w", lockKey, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquiring lock %s: %w", lockKey, ctx.Err())
		case <-time.After(redisLockRetry):
		}
	}

	return func() {
		// The request context may already be cancelled.
		_ = releaseScript.Run(context.Background(), s.client, []string{lockKey}, owner).Err()
	}, nil
}
