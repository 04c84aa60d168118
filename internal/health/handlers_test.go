package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tour/internal/health"
)

func stub(name string, err error) health.Probe {
	return health.Probe{Name: name, Check: func(context.Context) error { return err }}
}

func ready(t *testing.T, h health.Handler) (int, map[string]string) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var status map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	return rr.Code, status
}

func TestLive(t *testing.T) {
	rr := httptest.NewRecorder()
	health.Handler{}.Live(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}

func TestReadySuccess(t *testing.T) {
	code, status := ready(t, health.Handler{Probes: []health.Probe{stub("mongo", nil), stub("redis", nil)}})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, map[string]string{"mongo": "ok", "redis": "ok"}, status)
}

func TestReadyFailure(t *testing.T) {
	code, status := ready(t, health.Handler{Probes: []health.Probe{stub("mongo", errors.New("db down")), stub("redis", nil)}})
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "db down", status["mongo"])
}

func TestReadyProbeTimeout(t *testing.T) {
	slow := health.Probe{Name: "mongo", Timeout: 10 * time.Millisecond, Check: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	code, _ := ready(t, health.Handler{Probes: []health.Probe{slow}})
	require.Equal(t, http.StatusServiceUnavailable, code)
}

func TestRedisProbe(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	code, _ := ready(t, health.Handler{Probes: []health.Probe{health.RedisProbe(client, time.Second)}})
	require.Equal(t, http.StatusOK, code)

	code, status := ready(t, health.Handler{Probes: []health.Probe{health.RedisProbe(nil, time.Second), health.MongoProbe(nil, time.Second)}})
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "redis not configured", status["redis"])
	require.Equal(t, "mongo not configured", status["mongo"])
}

func TestReadinessAfterShutdown(t *testing.T) {
	h := health.Handler{Probes: []health.Probe{stub("redis", nil)}}

	health.SetReady(false)
	t.Cleanup(func() { health.SetReady(true) })
	code, status := ready(t, h)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "draining", status["server"])

	health.SetReady(true)
	code, _ = ready(t, h)
	require.Equal(t, http.StatusOK, code)
}
