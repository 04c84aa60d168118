package analytics_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tour/internal/analytics"
	"github.com/noah-isme/backend-tour/internal/cache"
	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
)

type stubOrders struct {
	calls int
	last  domain.OrderFilter
}

func (s *stubOrders) FindOrders(_ context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	s.calls++
	s.last = f
	return []domain.Order{{
		CreatedAt: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		Tours:     []domain.TourLine{{Price: 100, TimeStarts: []domain.TimeStart{{Stock: 5}}}},
	}}, nil
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestStatisticsCached(t *testing.T) {
	orders := &stubOrders{}
	svc := &analytics.Service{
		Orders:   orders,
		Cache:    cache.NewJSON(newRedis(t), analytics.CachePrefix, time.Minute),
		Location: time.UTC,
	}
	f := domain.OrderFilter{}.WithStatus(domain.OrderStatusPaid)

	first, err := svc.Statistics(context.Background(), f)
	require.NoError(t, err)
	second, err := svc.Statistics(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, 1, orders.calls)
	require.Equal(t, first[0].Month, second[0].Month)
	require.Equal(t, int64(500), second[0].TotalPrice)

	require.NoError(t, svc.Invalidate(context.Background()))
	_, err = svc.Statistics(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, 2, orders.calls)
}

func TestStatisticsWithoutCache(t *testing.T) {
	orders := &stubOrders{}
	svc := &analytics.Service{Orders: orders}
	_, err := svc.Statistics(context.Background(), domain.OrderFilter{})
	require.NoError(t, err)
	_, err = svc.Statistics(context.Background(), domain.OrderFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, orders.calls)
}

func TestParseFilter(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)

	f, err := analytics.ParseFilter(url.Values{
		"status":    {"paid"},
		"startDate": {"2024-03-01"},
		"endDate":   {"2024-03-31"},
	}, loc)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPaid, *f.Status)
	require.True(t, f.From.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, loc)))
	require.True(t, f.To.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, loc)))

	f, err = analytics.ParseFilter(url.Values{"year": {"2024"}, "month": {"2"}}, loc)
	require.NoError(t, err)
	require.Nil(t, f.Status)
	require.True(t, f.From.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, loc)))
	require.True(t, f.To.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, loc)))

	f, err = analytics.ParseFilter(url.Values{"year": {"2024"}}, loc)
	require.NoError(t, err)
	require.True(t, f.To.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, loc)))

	f, err = analytics.ParseFilter(url.Values{"year": {"2024"}, "startDate": {"2024-06-15"}}, loc)
	require.NoError(t, err)
	require.True(t, f.From.Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, loc)))
	require.True(t, f.To.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, loc)))
}

func TestParseFilterRejects(t *testing.T) {
	cases := map[string]url.Values{
		"month without year": {"month": {"3"}},
		"month out of range": {"year": {"2024"}, "month": {"13"}},
		"bad status":         {"status": {"shipped"}},
		"bad date":           {"startDate": {"01/03/2024"}},
		"empty range":        {"startDate": {"2024-03-05"}, "endDate": {"2024-03-01"}},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := analytics.ParseFilter(q, time.UTC)
			require.True(t, common.HasKind(err, common.KindValidation))
		})
	}
}

func TestStatisticsHandler(t *testing.T) {
	orders := &stubOrders{}
	h := &analytics.Handler{Svc: &analytics.Service{Orders: orders, Location: time.UTC}, Logger: zerolog.Nop()}

	rr := httptest.NewRecorder()
	h.Statistics(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/statistics?year=2024&month=3", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"month":"3/2024"`)
	require.Contains(t, rr.Body.String(), `"tours":5`)

	rr = httptest.NewRecorder()
	h.Statistics(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/statistics?month=3", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, 1, orders.calls)
}
