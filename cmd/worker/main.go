package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-api/internal/config"
	"github.com/jwalitptl/dental-api/internal/email"
	"github.com/jwalitptl/dental-api/internal/handler/health"
	promHandler "github.com/jwalitptl/dental-api/internal/handler/prometheus"
	"github.com/jwalitptl/dental-api/internal/repository/postgres"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/messaging/redis"
	"github.com/jwalitptl/dental-api/pkg/metrics"
	"github.com/jwalitptl/dental-api/pkg/worker"
)

const healthAddr = ":8081"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	lg := logger.NewLogger(&logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Service: "dental-worker",
		Pretty:  cfg.Log.Pretty,
	})
	log.Logger = lg.Zerolog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.ToDBConfig())
	if err != nil {
		lg.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	if cfg.Redis.URL == "" {
		lg.Fatal(errors.New("REDIS_URL is required"), "Outbox worker needs a broker")
	}
	broker, err := redis.NewRedisBroker(ctx, cfg.Redis.ToBrokerConfig(), lg.Zerolog())
	if err != nil {
		lg.Fatal(err, "Failed to create Redis broker")
	}
	defer broker.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	m := metrics.NewMetrics(registry, "dental", "worker")

	base := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(base)

	var handlers []worker.EventHandler
	if cfg.SMTP.Enabled() {
		sender := email.NewSMTPSender(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		handlers = append(handlers, email.NewAppointmentNotifier(sender, cfg.SMTP.To))
		lg.Info("Appointment emails enabled", "to", cfg.SMTP.To)
	}

	processor, err := worker.NewOutboxProcessor(
		outboxRepo,
		postgres.NewTransactor(base),
		broker,
		cfg.Outbox.ToWorkerConfig(),
		lg.WithFields(map[string]interface{}{"component": "outbox_processor"}),
		m,
		handlers...,
	)
	if err != nil {
		lg.Fatal(err, "Failed to create outbox processor")
	}
	cleanup := worker.NewOutboxCleanupWorker(
		outboxRepo,
		cfg.Outbox.Retention,
		cfg.Outbox.CleanupInterval,
		lg.WithFields(map[string]interface{}{"component": "outbox_cleanup"}),
		m,
	)

	srv := setupHealthCheck(db, health.PingFunc(broker.Ping), registry)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error(err, "Health check server failed")
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleanup.Start(ctx)
	}()

	<-ctx.Done()
	lg.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error(err, "Health server shutdown failed")
	}
	wg.Wait()
}

func setupHealthCheck(db health.Pinger, redis health.Pinger, registry *prometheus.Registry) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	health.NewHandler(db, redis).RegisterRoutes(engine)
	promHandler.New(registry).RegisterRoutes(engine)

	return &http.Server{
		Addr:    healthAddr,
		Handler: engine,
	}
}
