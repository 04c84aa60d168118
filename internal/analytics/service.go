package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/backend-tour/internal/cache"
	"github.com/noah-isme/backend-tour/internal/domain"
)

// CachePrefix namespaces cached statistics in Redis.
const CachePrefix = "an:stats"

// OrderSource loads the orders matching a statistics filter.
type OrderSource interface {
	FindOrders(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error)
}

// Service computes revenue statistics with an optional Redis cache in front.
type Service struct {
	Orders   OrderSource
	Cache    *cache.JSON
	Location *time.Location
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) location() *time.Location {
	if s != nil && s.Location != nil {
		return s.Location
	}
	return time.Local
}

func filterKey(c *cache.JSON, f domain.OrderFilter) string {
	status, from, to := "*", "*", "*"
	if f.Status != nil {
		status = string(*f.Status)
	}
	if f.From != nil {
		from = f.From.UTC().Format(time.RFC3339)
	}
	if f.To != nil {
		to = f.To.UTC().Format(time.RFC3339)
	}
	return c.Key(status, from, to, f.Text)
}

// Statistics returns monthly revenue buckets for the orders matching f.
func (s *Service) Statistics(ctx context.Context, f domain.OrderFilter) ([]Bucket, error) {
	if s == nil || s.Orders == nil {
		return nil, fmt.Errorf("analytics service not configured")
	}
	key := filterKey(s.Cache, f)
	var cached []Bucket
	if ok, err := s.Cache.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	orders, err := s.Orders.FindOrders(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	buckets := Aggregate(orders, s.location())
	_ = s.Cache.Set(ctx, key, buckets)
	return buckets, nil
}

// Invalidate drops every cached statistics result. Called when orders change.
func (s *Service) Invalidate(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.Cache.Purge(ctx)
}
