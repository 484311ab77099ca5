package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/ports"
)

// RedisLocker serializes work across replicas with redislock.
type RedisLocker struct {
	client *redislock.Client
	prefix string
	log    *zap.Logger
}

func NewRedisLocker(rdb *redis.Client, prefix string, log *zap.Logger) ports.Locker {
	return &RedisLocker{
		client: redislock.New(rdb),
		prefix: prefix,
		log:    log,
	}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	lock, err := l.client.Obtain(ctx, l.prefix+"lock:"+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("obtain lock %s: %w", key, err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(lock, key, ttl, stop, done)

	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() {
			close(stop)
			<-done
		})
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, true, nil
}

// keepAlive extends the lock every half TTL until stop is closed, so work
// that outlives the TTL keeps other replicas out.
func (l *RedisLocker) keepAlive(lock *redislock.Lock, key string, ttl time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := ttl / 2
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			err := lock.Refresh(ctx, ttl, nil)
			cancel()
			if err != nil {
				l.log.Warn("Lost distributed lock", zap.String("key", key), zap.Error(err))
				return
			}
		}
	}
}

type localLock struct {
	owner   uint64
	expires time.Time
}

// LocalLocker is the single-process fallback used when Redis is not configured.
type LocalLocker struct {
	mu   sync.Mutex
	seq  uint64
	held map[string]localLock
}

func NewLocalLocker() ports.Locker {
	return &LocalLocker{held: make(map[string]localLock)}
}

func (l *LocalLocker) TryLock(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cur, ok := l.held[key]; ok && time.Now().Before(cur.expires) {
		return nil, false, nil
	}
	l.seq++
	owner := l.seq
	l.held[key] = localLock{owner: owner, expires: time.Now().Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		// An expired lock may have been taken by someone else since.
		if cur, ok := l.held[key]; ok && cur.owner == owner {
			delete(l.held, key)
		}
		return nil
	}, true, nil
}
