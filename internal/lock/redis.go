package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the lock is still held by another owner
// after MaxWait.
var ErrNotAcquired = errors.New("lock: not acquired")

const (
	defaultTTL   = 30 * time.Second
	defaultRetry = 50 * time.Millisecond
)

var unlockScript = redis.NewScript(`if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0`)

// Redis serialises work on a key across API replicas using SET NX PX and a
// compare-and-delete release. A holder that outlives TTL loses the lock.
type Redis struct {
	Client  redis.Cmdable
	Retry   time.Duration
	MaxWait time.Duration
}

// WithLock runs fn while holding key. The lock is released when fn returns,
// including on error.
func (l Redis) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	if l.Client == nil {
		return errors.New("lock: redis client not configured")
	}
	if fn == nil {
		return errors.New("lock: callback not provided")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	token, err := l.acquire(ctx, key, ttl)
	if err != nil {
		return err
	}
	defer l.release(key, token)
	return fn(ctx)
}

func (l Redis) acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	retry := l.Retry
	if retry <= 0 {
		retry = defaultRetry
	}
	if l.MaxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.MaxWait)
		defer cancel()
	}
	token := uuid.NewString()
	ticker := time.NewTicker(retry)
	defer ticker.Stop()
	for {
		ok, err := l.Client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && l.MaxWait > 0 {
				return "", fmt.Errorf("%w: %s", ErrNotAcquired, key)
			}
			return "", fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			return token, nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) && l.MaxWait > 0 {
				return "", fmt.Errorf("%w: %s", ErrNotAcquired, key)
			}
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l Redis) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = unlockScript.Run(ctx, l.Client, []string{key}, token).Err()
}
