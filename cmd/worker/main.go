package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/config"
	"github.com/noah-isme/backend-tour/internal/obs"
	"github.com/noah-isme/backend-tour/internal/repo"
	"github.com/noah-isme/backend-tour/internal/tasks"
	"github.com/noah-isme/backend-tour/internal/voucher"
)

func main() {
	cfg := config.MustLoad()
	logger := obs.NewLogger(cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().
		Str("service", "tour-worker").Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, obs.TracingConfig{
		Enabled:       cfg.Obs.Tracing,
		ServiceName:   "tour-worker",
		Environment:   cfg.AppEnv,
		Exporter:      cfg.Obs.TracingExporter,
		Endpoint:      cfg.Obs.OTLPEndpoint,
		SamplingRatio: cfg.Obs.SamplingRatio,
	})
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
		shutdownTracer = func(context.Context) error { return nil }
	}
	defer func() { _ = shutdownTracer(context.Background()) }()
	if cfg.Obs.Prometheus {
		obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, prometheus.DefaultRegisterer)
	}

	mongoClient, err := repo.Connect(ctx, cfg.MongoURI, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect mongo")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("disconnect mongo")
		}
	}()
	db := mongoClient.Database(cfg.MongoDatabase)

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}

	handler := &tasks.Handler{
		Vouchers: &voucher.Service{Store: repo.NewVoucherRepo(db)},
		Mail:     common.LogEmailSender{Logger: logger.With().Str("component", "mail").Logger()},
		Logger:   logger,
		Location: cfg.Location(),
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.WorkerConcurrency,
		Queues:          map[string]int{"critical": 6, "default": 3},
		ShutdownTimeout: 20 * time.Second,
		Logger:          asynqLogger{logger.With().Str("component", "asynq").Logger()},
		ErrorHandler: asynq.ErrorHandlerFunc(func(tctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(tctx)
			logger.Error().Err(err).Str("task", task.Type()).Int("retried", retried).Msg("task failed")
		}),
	})

	logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker starting")
	if err := srv.Start(handler.Mux()); err != nil {
		logger.Fatal().Err(err).Msg("start worker")
	}
	<-ctx.Done()
	logger.Info().Msg("worker shutting down")
	srv.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}

// asynqLogger routes asynq's internal logs through zerolog.
type asynqLogger struct {
	l zerolog.Logger
}

func (a asynqLogger) Debug(args ...interface{}) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...interface{})  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...interface{})  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...interface{}) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...interface{}) { a.l.Fatal().Msg(fmt.Sprint(args...)) }
