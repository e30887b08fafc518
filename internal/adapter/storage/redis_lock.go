package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/pharmacy-records/internal/port"
)

const (
	lockKeyPrefix        = "lock:"
	defaultLockTTL       = 30 * time.Second
	minKeepAliveInterval = 10 * time.Millisecond
)

var releaseLockScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end

return 0
`)

var extendLockScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('PEXPIRE', KEYS[1], ARGV[2])
end

return 0
`)

// RedisLock serialises writers across processes sharing one data directory.
// The key expires after ttl so a crashed holder cannot wedge the files; a live
// holder keeps extending it until release.
type RedisLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisLock(client *redis.Client, name string, ttl time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{client: client, key: lockKeyPrefix + name, ttl: ttl}
}

func (r *RedisLock) Acquire(ctx context.Context) (port.ReleaseFunc, error) {
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, r.key, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, port.ErrLockHeld
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go r.keepAlive(token, stop, done)

	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() { close(stop) })
		<-done

		// only the holder's token may delete the key
		n, err := releaseLockScript.Run(ctx, r.client, []string{r.key}, token).Int()
		if err != nil {
			return fmt.Errorf("release lock: %w", err)
		}
		if n == 0 {
			return port.ErrLockLost
		}
		return nil
	}, nil
}

// keepAlive pushes the key's expiry forward every third of the ttl until stop
// is closed or the key no longer carries token.
func (r *RedisLock) keepAlive(token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := max(r.ttl/3, minKeepAliveInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			n, err := extendLockScript.Run(ctx, r.client, []string{r.key}, token, r.ttl.Milliseconds()).Int()
			cancel()
			if err != nil {
				// transient; retried on the next tick
				continue
			}
			if n == 0 {
				return
			}
		}
	}
}

// NoopLock is the default WriterLock: every Acquire succeeds immediately.
type NoopLock struct{}

func (NoopLock) Acquire(context.Context) (port.ReleaseFunc, error) {
	return func(context.Context) error { return nil }, nil
}
