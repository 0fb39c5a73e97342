package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/dental-api/internal/config"
	appointmentHandler "github.com/jwalitptl/dental-api/internal/handler/appointment"
	authHandler "github.com/jwalitptl/dental-api/internal/handler/auth"
	catalogHandler "github.com/jwalitptl/dental-api/internal/handler/catalog"
	clinicHandler "github.com/jwalitptl/dental-api/internal/handler/clinic"
	clinicPatientHandler "github.com/jwalitptl/dental-api/internal/handler/clinicpatient"
	"github.com/jwalitptl/dental-api/internal/handler/health"
	patientHandler "github.com/jwalitptl/dental-api/internal/handler/patient"
	promHandler "github.com/jwalitptl/dental-api/internal/handler/prometheus"
	toothServiceHandler "github.com/jwalitptl/dental-api/internal/handler/toothservice"
	orderHandler "github.com/jwalitptl/dental-api/internal/handler/treatmentorder"
	planHandler "github.com/jwalitptl/dental-api/internal/handler/treatmentplan"
	userHandler "github.com/jwalitptl/dental-api/internal/handler/user"
	visitHandler "github.com/jwalitptl/dental-api/internal/handler/visit"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/realtime"
	"github.com/jwalitptl/dental-api/internal/repository/postgres"
	"github.com/jwalitptl/dental-api/internal/router"
	appointmentService "github.com/jwalitptl/dental-api/internal/service/appointment"
	authService "github.com/jwalitptl/dental-api/internal/service/auth"
	"github.com/jwalitptl/dental-api/internal/service/bootstrap"
	catalogService "github.com/jwalitptl/dental-api/internal/service/catalog"
	clinicService "github.com/jwalitptl/dental-api/internal/service/clinic"
	clinicPatientService "github.com/jwalitptl/dental-api/internal/service/clinicpatient"
	"github.com/jwalitptl/dental-api/internal/service/notification"
	patientService "github.com/jwalitptl/dental-api/internal/service/patient"
	toothServiceService "github.com/jwalitptl/dental-api/internal/service/toothservice"
	orderService "github.com/jwalitptl/dental-api/internal/service/treatmentorder"
	planService "github.com/jwalitptl/dental-api/internal/service/treatmentplan"
	userService "github.com/jwalitptl/dental-api/internal/service/user"
	visitService "github.com/jwalitptl/dental-api/internal/service/visit"
	"github.com/jwalitptl/dental-api/pkg/auth"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/messaging"
	"github.com/jwalitptl/dental-api/pkg/messaging/redis"
	"github.com/jwalitptl/dental-api/pkg/metrics"
	"github.com/jwalitptl/dental-api/pkg/security"
)

const userCacheTTL = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.NewLogger(&logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Service: "dental-api",
		Pretty:  cfg.Log.Pretty,
	}).Zerolog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.ToDBConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := postgres.Migrate(ctx, db)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		log.Info().Strs("applied", applied).Msg("migrations complete")
	}

	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redis.NewRedisBroker(ctx, cfg.Redis.ToBrokerConfig(), log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
	} else {
		log.Warn().Msg("REDIS_URL not set, WebSocket notifications are delivered by this instance only")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry, "dental", "api")

	srv, err := buildServer(ctx, cfg, db, broker, registry, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build server")
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}

func buildServer(ctx context.Context, cfg *config.Config, db *sqlx.DB, broker messaging.Broker, registry *prometheus.Registry, m *metrics.Metrics) (*http.Server, error) {
	jwtSvc, err := auth.NewJWTService(cfg.ToAuthConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to init token service: %w", err)
	}
	hasher := security.NewBcryptHasher(0)

	base := postgres.NewBaseRepository(db)
	tx := postgres.NewTransactor(base)
	clinicRepo := postgres.NewClinicRepository(base)
	userRepo := postgres.NewUserRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	clinicPatientRepo := postgres.NewClinicPatientRepository(base)
	catalogRepo := postgres.NewServiceRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	planRepo := postgres.NewTreatmentPlanRepository(base)
	orderRepo := postgres.NewTreatmentOrderRepository(base)
	toothRepo := postgres.NewToothServiceRepository(base)
	visitRepo := postgres.NewVisitRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	if cfg.Server.Bootstrap {
		_, err := bootstrap.NewService(clinicRepo, userRepo, hasher).Run(ctx, bootstrap.Options{
			ClinicName: cfg.Superuser.ClinicName,
			Phone:      cfg.Superuser.Phone,
			Password:   cfg.Superuser.Password,
			FullName:   cfg.Superuser.FullName,
		})
		if err != nil {
			return nil, err
		}
	}

	// Realtime fan-out goes through Redis when available so every instance
	// reaches its own sockets.
	hub := realtime.NewHub(m)
	var publisher realtime.Publisher = hub
	var redisPing health.Pinger
	if broker != nil {
		publisher = realtime.NewBrokerPublisher(broker, hub)
		if err := realtime.Relay(ctx, broker, hub); err != nil {
			return nil, fmt.Errorf("failed to subscribe to realtime channel: %w", err)
		}
		redisPing = health.PingFunc(broker.Ping)
	}

	authSvc := authService.NewService(userRepo, jwtSvc, hasher, userCacheTTL)
	notifier := notification.NewService(publisher, outboxRepo)
	clinicPatientSvc := clinicPatientService.NewService(clinicPatientRepo, patientRepo)
	planSvc := planService.NewService(planRepo, patientRepo, catalogRepo, tx)

	handlers := router.Handlers{
		Auth:           authHandler.NewHandler(authSvc),
		Clinics:        clinicHandler.NewHandler(clinicService.NewService(clinicRepo)),
		Users:          userHandler.NewHandler(userService.NewService(userRepo, clinicRepo, hasher, authSvc)),
		Patients:       patientHandler.NewHandler(patientService.NewService(patientRepo)),
		ClinicPatients: clinicPatientHandler.NewHandler(clinicPatientSvc),
		Services:       catalogHandler.NewHandler(catalogService.NewService(catalogRepo)),
		Appointments: appointmentHandler.NewHandler(appointmentService.NewService(
			appointmentRepo, patientRepo, userRepo, tx, clinicPatientSvc, notifier,
		)),
		TreatmentPlans: planHandler.NewHandler(planSvc),
		Orders: orderHandler.NewHandler(orderService.NewService(
			orderRepo, patientRepo, userRepo, tx, planSvc, notifier,
		)),
		ToothServices: toothServiceHandler.NewHandler(toothServiceService.NewService(toothRepo, planRepo)),
		Visits: visitHandler.NewHandler(visitService.NewService(
			visitRepo, patientRepo, userRepo, appointmentRepo, catalogRepo,
		)),
		Health:    health.NewHandler(db, redisPing),
		Metrics:   promHandler.New(registry),
		WebSocket: realtime.NewHandler(hub),
	}

	if err := middleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	routerCfg := router.RouterConfig{
		CORSConfig:  middleware.DefaultCORSConfig(cfg.CORS.AllowedOrigins),
		MaxBodySize: middleware.DefaultMaxBodySize,
		Mode:        gin.ReleaseMode,
	}
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimit = &middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		}
		login := middleware.PerMinute(cfg.RateLimit.LoginPerMinute)
		routerCfg.LoginRateLimit = &login
	}

	r := router.NewRouter(authSvc, handlers, m, routerCfg)
	r.Setup()

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
