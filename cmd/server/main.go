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

	"alcyxob/liftlog/internal/api"
	"alcyxob/liftlog/internal/catalog"
	"alcyxob/liftlog/internal/config"
	"alcyxob/liftlog/internal/logging"
	"alcyxob/liftlog/internal/mailer"
	"alcyxob/liftlog/internal/metrics"
	"alcyxob/liftlog/internal/repository"
	"alcyxob/liftlog/internal/repository/memory"
	"alcyxob/liftlog/internal/repository/mongo"
	"alcyxob/liftlog/internal/repository/postgres"
	"alcyxob/liftlog/internal/runner"
	"alcyxob/liftlog/internal/service"
	"alcyxob/liftlog/internal/session"
	"alcyxob/liftlog/internal/storage"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// closer releases one resource on shutdown.
type closer func(ctx context.Context) error

// @title liftlog API
// @version 1.0
// @description Plan workouts, run them set by set and review training volume.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	logging.Setup(logging.SetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.Stdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	log.WithFields(log.Fields{"driver": cfg.Database.Driver, "address": cfg.Server.Address}).Info("starting liftlog")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var closers []closer

	// --- Database Connection ---
	store, dbClose, collectors, err := openStore(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("could not open %s store: %v", cfg.Database.Driver, err)
	}
	closers = append(closers, dbClose)

	if cfg.Catalog.Seed {
		seedCtx, seedCancel := context.WithTimeout(ctx, 30*time.Second)
		err := catalog.Seed(seedCtx, store.Exercises)
		seedCancel()
		if err != nil {
			log.Fatalf("could not seed exercise catalog: %v", err)
		}
	}

	promRegistry := metrics.SetupPrometheus(collectors...)
	metricsManager := metrics.NewManager("liftlog", "main", promRegistry)

	// --- Sessions ---
	var sessions session.Store = session.NewMemoryStore()
	var loginLimiter api.RequestRateLimiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("could not ping redis at %s: %v", cfg.Redis.Addr, err)
		}
		sessions = session.NewRedisStore(rdb)
		loginLimiter = redis_rate.NewLimiter(rdb)
		closers = append(closers, func(context.Context) error { return rdb.Close() })
		log.Debug("session revocations and login rate limits kept in redis")
	} else {
		log.Warn("redis.addr not set: revocations are kept in process and logins are not rate limited")
	}

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("could not initialize S3 storage: %v", err)
		}
	} else {
		log.Info("s3.bucket_name not set: workout export is disabled")
	}

	broker := session.NewBroker()
	registry := runner.NewRegistry()
	events, unsubscribe := broker.Subscribe()
	go registry.Watch(ctx, events)

	// --- Initialize Services ---
	clock := service.ClockIn(cfg.Server.Location())
	var sender mailer.Sender
	if cfg.Mail.Enabled() {
		sender, err = mailer.NewResendSender(cfg.Mail)
		if err != nil {
			log.Fatalf("could not initialize mailer: %v", err)
		}
		log.WithField("from", cfg.Mail.From).Info("Confirmation emails go out through Resend")
	}

	exerciseService := service.NewExerciseService(store.Exercises)
	services := api.Services{
		Auth: service.NewAuthService(store.Users, sessions, broker, service.AuthOptions{
			JWTSecret:                cfg.JWT.Secret,
			JWTExpiration:            cfg.JWT.Expiration,
			RequireEmailConfirmation: cfg.Auth.RequireEmailConfirmation,
			Mailer:                   sender,
			PublicURL:                cfg.Server.PublicURL,
		}),
		Exercises: exerciseService,
		Workouts:  service.NewWorkoutService(store.Workouts, clock, cfg.Dashboard.RecentLimit),
		Plans:     service.NewPlanService(store.Workouts, store.Templates, exerciseService, metricsManager, clock),
		Templates: service.NewTemplateService(store.Templates, store.Workouts),
		Runner:    service.NewRunnerService(store.Workouts, registry, metricsManager),
		Analytics: service.NewAnalyticsService(store.Workouts),
		Export:    service.NewExportService(store.Workouts, fileStorage, metricsManager, clock),
	}

	// --- Initialize Gin Engine ---
	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	api.SetupRoutes(router, services, api.RouterOptions{
		CookieSecure:    cfg.Auth.CookieSecure,
		Metrics:         metricsManager,
		Gatherer:        promRegistry,
		LoginLimiter:    loginLimiter,
		LoginRatePerMin: cfg.Redis.LoginRatePerMin,
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	err = server.Shutdown(ctxShutdown)
	unsubscribe()
	broker.Close()
	cancel()
	for i := len(closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, closers[i](ctxShutdown))
	}
	if err != nil {
		log.Errorf("shutdown: %v", err)
		os.Exit(1)
	}
	log.Info("server exited")
}

// openStore connects the configured backend and returns its repositories,
// a closer and any metrics collectors it exposes.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (*repository.Store, closer, []prometheus.Collector, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, nil, nil, err
		}
		db := client.Database(cfg.Name)

		// --- Ensure Indexes ---
		go func() {
			idxCtx, idxCancel := context.WithTimeout(context.Background(), time.Minute)
			defer idxCancel()
			mongo.EnsureIndexes(idxCtx, db)
			log.Debug("index creation process completed")
		}()
		return mongo.NewStore(db), func(context.Context) error { return mongo.DisconnectDB(client) }, nil, nil

	case config.DriverPostgres:
		if err := postgres.RunMigrations(cfg.URI); err != nil {
			return nil, nil, nil, err
		}
		connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
		defer connectCancel()
		pool, err := postgres.Connect(connectCtx, cfg.URI)
		if err != nil {
			return nil, nil, nil, err
		}
		poolCollector := pgxpoolprometheus.NewCollector(pool, map[string]string{"db_name": pool.Config().ConnConfig.Database})
		closePool := func(context.Context) error {
			pool.Close()
			return nil
		}
		return postgres.NewStore(pool), closePool, []prometheus.Collector{poolCollector}, nil

	case config.DriverMemory:
		log.Warn("using the in-memory store: data is lost on restart")
		return memory.NewStore(), func(context.Context) error { return nil }, nil, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
