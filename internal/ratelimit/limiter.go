package ratelimit

import (
	"fmt"

	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// DefaultPrefix namespaces limiter counters in Redis.
const DefaultPrefix = "rl"

// NewRedisStore returns a limiter store keeping counters in Redis so every API
// replica shares the same budget.
func NewRedisStore(client *redis.Client, prefix string) (limiter.Store, error) {
	if client == nil {
		return nil, fmt.Errorf("ratelimit: redis client required")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return limiterredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: prefix})
}

// New builds a limiter for a formatted rate such as "30-M" or "5-S".
func New(store limiter.Store, formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: parse rate %q: %w", formatted, err)
	}
	return limiter.New(store, rate), nil
}
