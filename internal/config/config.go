package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const defaultVNPayURL = "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	MongoURI           string
	MongoDatabase      string
	RedisURL           string
	JWTSecret          string
	CORSAllowedOrigins []string
	AccessTokenTTL     time.Duration
	AccessCookieName   string
	CookieSecure       bool
	Timezone           string

	VNPay VNPay

	StatisticsCacheTTL time.Duration
	CatalogCacheTTL    time.Duration
	RateLimitVoucher   string
	LockTTL            time.Duration
	BodyLimitBytes     int64
	WorkerConcurrency  int

	Obs Obs
}

// VNPay groups the payment gateway settings.
type VNPay struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
	IntentTTL  time.Duration
}

// Obs groups logging, metrics and tracing settings.
type Obs struct {
	LogFormat        string
	LogLevel         string
	MetricsNamespace string
	MetricsBuckets   string
	Prometheus       bool
	Tracing          bool
	TracingExporter  string
	OTLPEndpoint     string
	SamplingRatio    float64
	ReadyDB          time.Duration
	ReadyRedis       time.Duration
	Pprof            bool
	PprofUser        string
	PprofPass        string
}

// Load reads configuration from the environment, after merging an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	e := envReader{k}

	cfg := &Config{
		AppEnv:             e.str("APP_ENV", "development"),
		Port:               e.str("PORT", "8080"),
		MongoURI:           e.str("MONGO_URI", ""),
		MongoDatabase:      e.str("MONGO_DATABASE", "booking_tour"),
		RedisURL:           e.str("REDIS_URL", ""),
		JWTSecret:          e.str("JWT_SECRET", ""),
		CORSAllowedOrigins: e.list("CORS_ALLOWED_ORIGINS"),
		AccessTokenTTL:     e.duration("ACCESS_TOKEN_TTL", 8*time.Hour),
		AccessCookieName:   e.str("ACCESS_COOKIE_NAME", "access_token"),
		CookieSecure:       e.flag("COOKIE_SECURE", false),
		Timezone:           e.str("TIMEZONE", "Asia/Ho_Chi_Minh"),
		VNPay: VNPay{
			TmnCode:    e.str("VNP_TMN_CODE", ""),
			HashSecret: e.str("VNP_HASH_SECRET", ""),
			PayURL:     e.str("VNP_URL", defaultVNPayURL),
			ReturnURL:  e.str("VNP_RETURN_URL", ""),
			IntentTTL:  e.duration("VNP_INTENT_TTL", 15*time.Minute),
		},
		StatisticsCacheTTL: e.duration("STATISTICS_CACHE_TTL", 5*time.Minute),
		CatalogCacheTTL:    e.duration("CATALOG_CACHE_TTL", 2*time.Minute),
		RateLimitVoucher:   e.str("RATE_LIMIT_VOUCHER", "30-M"),
		LockTTL:            e.duration("LOCK_TTL", 30*time.Second),
		BodyLimitBytes:     e.int64("BODY_LIMIT_BYTES", 1<<20),
		WorkerConcurrency:  int(e.int64("WORKER_CONCURRENCY", 10)),
		Obs: Obs{
			LogFormat:        e.str("OBS_LOG_FORMAT", "json"),
			LogLevel:         e.str("OBS_LOG_LEVEL", "info"),
			MetricsNamespace: e.str("OBS_METRICS_NAMESPACE", "tour"),
			MetricsBuckets:   e.str("OBS_METRICS_BUCKETS_MS", ""),
			Prometheus:       e.flag("OBS_ENABLE_PROMETHEUS", true),
			Tracing:          e.flag("OBS_ENABLE_TRACING", false),
			TracingExporter:  e.str("OBS_TRACING_EXPORTER", "otlp"),
			OTLPEndpoint:     e.str("OBS_OTLP_ENDPOINT", ""),
			SamplingRatio:    e.float("OBS_TRACING_SAMPLING_RATIO", 1.0),
			ReadyDB:          e.duration("HEALTH_READY_DB_TIMEOUT", 500*time.Millisecond),
			ReadyRedis:       e.duration("HEALTH_READY_REDIS_TIMEOUT", 300*time.Millisecond),
			Pprof:            e.flag("OBS_ENABLE_PPROF", false),
			PprofUser:        e.str("PPROF_BASIC_AUTH_USER", ""),
			PprofPass:        e.str("PPROF_BASIC_AUTH_PASS", ""),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is Load for process start-up; it panics on invalid configuration.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	var missing []string
	for key, v := range map[string]string{
		"MONGO_URI":       c.MongoURI,
		"REDIS_URL":       c.RedisURL,
		"JWT_SECRET":      c.JWTSecret,
		"VNP_TMN_CODE":    c.VNPay.TmnCode,
		"VNP_HASH_SECRET": c.VNPay.HashSecret,
	} {
		if v == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.WorkerConcurrency < 1 {
		return errors.New("WORKER_CONCURRENCY must be positive")
	}
	return nil
}

// Location resolves the configured business timezone, falling back to UTC+7.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}

// HTTPAddr is the listen address; PORT may be given with or without a colon.
func (c *Config) HTTPAddr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// envReader reads trimmed values from koanf. Blank or unparsable values
// fall back to the supplied default.
type envReader struct {
	k *koanf.Koanf
}

func (e envReader) raw(key string) string {
	return strings.TrimSpace(e.k.String(key))
}

func (e envReader) str(key, def string) string {
	if v := e.raw(key); v != "" {
		return v
	}
	return def
}

func (e envReader) list(key string) []string {
	var out []string
	for _, part := range strings.Split(e.raw(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (e envReader) duration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(e.raw(key)); err == nil {
		return d
	}
	return def
}

func (e envReader) flag(key string, def bool) bool {
	switch strings.ToLower(e.raw(key)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	}
	return def
}

func (e envReader) int64(key string, def int64) int64 {
	if n, err := strconv.ParseInt(e.raw(key), 10, 64); err == nil {
		return n
	}
	return def
}

func (e envReader) float(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(e.raw(key), 64); err == nil {
		return f
	}
	return def
}
