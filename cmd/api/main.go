package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/noah-isme/backend-tour/internal/analytics"
	"github.com/noah-isme/backend-tour/internal/audit"
	"github.com/noah-isme/backend-tour/internal/auth"
	"github.com/noah-isme/backend-tour/internal/cache"
	"github.com/noah-isme/backend-tour/internal/catalog"
	"github.com/noah-isme/backend-tour/internal/config"
	"github.com/noah-isme/backend-tour/internal/health"
	"github.com/noah-isme/backend-tour/internal/lock"
	"github.com/noah-isme/backend-tour/internal/obs"
	"github.com/noah-isme/backend-tour/internal/order"
	"github.com/noah-isme/backend-tour/internal/payment"
	"github.com/noah-isme/backend-tour/internal/ratelimit"
	"github.com/noah-isme/backend-tour/internal/repo"
	"github.com/noah-isme/backend-tour/internal/tasks"
	"github.com/noah-isme/backend-tour/internal/user"
	"github.com/noah-isme/backend-tour/internal/voucher"
)

func main() {
	cfg := config.MustLoad()
	logger := obs.NewLogger(cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().
		Str("service", "tour-api").Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, obs.TracingConfig{
		Enabled:       cfg.Obs.Tracing,
		ServiceName:   "tour-api",
		Environment:   cfg.AppEnv,
		Exporter:      cfg.Obs.TracingExporter,
		Endpoint:      cfg.Obs.OTLPEndpoint,
		SamplingRatio: cfg.Obs.SamplingRatio,
	})
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
		shutdownTracer = func(context.Context) error { return nil }
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error().Err(err).Msg("shutdown tracer")
		}
	}()

	var httpMetrics *obs.HTTPMetrics
	if cfg.Obs.Prometheus {
		obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, prometheus.DefaultRegisterer)
		httpMetrics = obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, obs.ParseBucketsCSV(cfg.Obs.MetricsBuckets), prometheus.DefaultRegisterer)
	}

	mongoClient := mustInitMongo(ctx, cfg, logger)
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("disconnect mongo")
		}
	}()
	db := mongoClient.Database(cfg.MongoDatabase)

	redisClient := mustInitRedis(ctx, cfg, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	taskOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse task queue redis url")
	}
	asynqClient := asynq.NewClient(taskOpt)
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	loc := cfg.Location()
	orderRepo := repo.NewOrderRepo(db)
	voucherRepo := repo.NewVoucherRepo(db)
	catalogRepo := repo.NewCatalogRepo(db)
	userRepo := repo.NewUserRepo(db)
	auditSvc := &audit.Service{Store: repo.NewAuditRepo(db)}

	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{
		Store: catalogRepo,
		Cache: cache.NewJSON(redisClient, catalog.CachePrefix, cfg.CatalogCacheTTL),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}
	voucherSvc := &voucher.Service{Store: voucherRepo}
	statsSvc := &analytics.Service{
		Orders:   orderRepo,
		Cache:    cache.NewJSON(redisClient, analytics.CachePrefix, cfg.StatisticsCacheTTL),
		Location: loc,
	}
	orderSvc := &order.Service{
		Store:    orderRepo,
		Catalog:  catalogRepo,
		Vouchers: voucherSvc,
		Tasks:    tasks.NewClient(asynqClient, ""),
		Stats:    statsSvc,
		Logger:   logger.With().Str("component", "order").Logger(),
	}
	paymentSvc := &payment.Service{
		Orders: orderSvc,
		Provider: payment.VNPay{
			TmnCode:    cfg.VNPay.TmnCode,
			HashSecret: cfg.VNPay.HashSecret,
			PayURL:     cfg.VNPay.PayURL,
			ReturnURL:  cfg.VNPay.ReturnURL,
			Location:   loc,
		},
		Locker:    lock.Redis{Client: redisClient, MaxWait: 10 * time.Second},
		LockTTL:   cfg.LockTTL,
		IntentTTL: cfg.VNPay.IntentTTL,
		Logger:    logger.With().Str("component", "payment").Logger(),
	}
	authSvc, err := auth.NewService(auth.Config{
		Users:          userRepo,
		Secret:         cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise auth service")
	}

	limiterStore, err := ratelimit.NewRedisStore(redisClient, ratelimit.DefaultPrefix)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limit store")
	}
	voucherLimiter, err := ratelimit.New(limiterStore, cfg.RateLimitVoucher)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise voucher rate limit")
	}

	router := newRouter(routerDeps{
		cfg:     cfg,
		logger:  logger,
		metrics: httpMetrics,
		health: health.Handler{Probes: []health.Probe{
			health.MongoProbe(mongoClient, cfg.Obs.ReadyDB),
			health.RedisProbe(redisClient, cfg.Obs.ReadyRedis),
		}},
		authMW: auth.Middleware{Service: authSvc, AccessCookie: cfg.AccessCookieName},
		auth: &auth.Handler{
			Service:          authSvc,
			Logger:           logger,
			AccessCookieName: cfg.AccessCookieName,
			CookieSecure:     cfg.CookieSecure,
		},
		catalog:      catalog.NewHandler(catalog.HandlerConfig{Service: catalogSvc, Logger: logger}),
		vouchers:     &voucher.Handler{Svc: voucherSvc, Logger: logger},
		voucherLimit: ratelimit.Handler{Limiter: voucherLimiter, Key: ratelimit.ByClientIP("voucher"), Logger: logger},
		orders:       &order.Handler{Svc: orderSvc, Logger: logger},
		ordersAdmin:  &order.AdminHandler{Svc: orderSvc, Location: loc, Logger: logger},
		payments:     &payment.Handler{Svc: paymentSvc, Logger: logger},
		stats:        &analytics.Handler{Svc: statsSvc, Logger: logger},
		users:        &user.Handler{Service: &user.Service{Store: userRepo}, Logger: logger},
		audit:        audit.Recorder{Service: auditSvc, Logger: logger.With().Str("component", "audit").Logger()},
		auditLogs:    &audit.Handler{Service: auditSvc, Logger: logger},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case <-ctx.Done():
		health.SetReady(false)
		logger.Info().Msg("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}
	logger.Info().Msg("server stopped")
}

func mustInitMongo(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *mongo.Client {
	var monitor *event.CommandMonitor
	if cfg.Obs.Tracing {
		monitor = (&obs.MongoTracer{}).Monitor()
	}
	client, err := repo.Connect(ctx, cfg.MongoURI, monitor)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect mongo")
	}
	idxCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := repo.EnsureIndexes(idxCtx, client.Database(cfg.MongoDatabase)); err != nil {
		logger.Fatal().Err(err).Msg("ensure mongo indexes")
	}
	return client
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	client := redis.NewClient(opts)
	if cfg.Obs.Tracing {
		if err := redisotel.InstrumentTracing(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
	}
	if cfg.Obs.Prometheus {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return client
}
