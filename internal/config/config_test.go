package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func requiredEnv() map[string]string {
	return map[string]string{
		"MONGO_URI":       "mongodb://localhost:27017",
		"REDIS_URL":       "redis://localhost:6379/0",
		"JWT_SECRET":      "secret",
		"VNP_TMN_CODE":    "TMN01",
		"VNP_HASH_SECRET": "hash",
	}
}

func TestLoadDefaults(t *testing.T) {
	env := requiredEnv()
	env["ACCESS_TOKEN_TTL"] = ""
	env["TIMEZONE"] = ""
	env["OBS_ENABLE_PROMETHEUS"] = ""
	env["PORT"] = ""
	setEnv(t, env)
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "booking_tour", cfg.MongoDatabase)
	require.Equal(t, 8*time.Hour, cfg.AccessTokenTTL)
	require.Equal(t, defaultVNPayURL, cfg.VNPay.PayURL)
	require.Equal(t, "Asia/Ho_Chi_Minh", cfg.Timezone)
	require.True(t, cfg.Obs.Prometheus)
	require.Equal(t, ":8080", cfg.HTTPAddr())

	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, cfg.Location()).Zone()
	require.Equal(t, 7*60*60, offset)
}

func TestLoadOverrides(t *testing.T) {
	env := requiredEnv()
	env["PORT"] = ":9000"
	env["CORS_ALLOWED_ORIGINS"] = "https://a.vn, ,https://b.vn"
	env["STATISTICS_CACHE_TTL"] = "90s"
	env["BODY_LIMIT_BYTES"] = "2048"
	env["OBS_ENABLE_TRACING"] = "yes"
	env["LOCK_TTL"] = "nonsense"
	setEnv(t, env)
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTPAddr())
	require.Equal(t, []string{"https://a.vn", "https://b.vn"}, cfg.CORSAllowedOrigins)
	require.Equal(t, 90*time.Second, cfg.StatisticsCacheTTL)
	require.EqualValues(t, 2048, cfg.BodyLimitBytes)
	require.True(t, cfg.Obs.Tracing)
	require.Equal(t, 30*time.Second, cfg.LockTTL)
}

func TestLoadReportsMissingKeys(t *testing.T) {
	env := requiredEnv()
	env["JWT_SECRET"] = ""
	env["VNP_HASH_SECRET"] = ""
	setEnv(t, env)
	_, err := Load()
	require.EqualError(t, err, "missing required configuration: JWT_SECRET, VNP_HASH_SECRET")
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	env := requiredEnv()
	env["TIMEZONE"] = "Mars/Olympus"
	setEnv(t, env)
	_, err := Load()
	require.Error(t, err)
}
