package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Fazeel2019/Upskill-sub000/internal/ai"
	"github.com/Fazeel2019/Upskill-sub000/internal/cache"
	"github.com/Fazeel2019/Upskill-sub000/internal/config"
	"github.com/Fazeel2019/Upskill-sub000/internal/database"
	"github.com/Fazeel2019/Upskill-sub000/internal/handlers"
	"github.com/Fazeel2019/Upskill-sub000/internal/jobs"
	"github.com/Fazeel2019/Upskill-sub000/internal/log"
	"github.com/Fazeel2019/Upskill-sub000/internal/middleware"
	"github.com/Fazeel2019/Upskill-sub000/internal/observability"
	"github.com/Fazeel2019/Upskill-sub000/internal/payment"
	"github.com/Fazeel2019/Upskill-sub000/internal/queue"
	"github.com/Fazeel2019/Upskill-sub000/internal/realtime"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
	"github.com/Fazeel2019/Upskill-sub000/internal/server"
	"github.com/Fazeel2019/Upskill-sub000/internal/service"
	"github.com/Fazeel2019/Upskill-sub000/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, cfg.Environment, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init tracing")
	}

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	if err := database.Migrate(ctx, dbPool, "up"); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply migrations")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, "upskill-api")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	// Every instance forwards the shared channel into its own hub, so a write
	// on one instance reaches streams held open on the others.
	hub := realtime.NewHub(logger)
	bus := realtime.NewRedisBus(redisClient, cfg.Redis.Channel, logger)
	if err := bus.StartForwarder(ctx, hub.Broadcast); err != nil {
		logger.Fatal().Err(err).Msg("failed to start realtime forwarder")
	}
	events := realtime.NewPublisher(bus, logger)
	producer := queue.NewProducer(redisClient, cfg.Redis.Stream)

	var gateway payment.Gateway = payment.NewStripeGateway(cfg.Payments.SecretKey)
	if cfg.Payments.SecretKey == "" && !cfg.IsProduction() {
		logger.Warn().Msg("no payments key configured; using in-memory gateway")
		gateway = payment.NewFake()
	}

	flows := ai.NewFlows(ai.NewOpenAIClient(cfg.AI, logger))

	users := repository.NewUserRepository(dbPool)
	sessions := repository.NewSessionRepository(dbPool)
	connections := repository.NewConnectionRepository(dbPool)
	courses := repository.NewCourseRepository(dbPool)
	progress := repository.NewProgressRepository(dbPool)
	notifications := repository.NewNotificationRepository(dbPool)
	chats := repository.NewChatRepository(dbPool)
	content := repository.NewContentRepository(dbPool)
	posts := repository.NewPostRepository(dbPool)
	payments := repository.NewPaymentRepository(dbPool)
	media := repository.NewMediaRepository(dbPool)

	services := handlers.Services{
		Auth:            service.NewAuthService(users, sessions, cfg.Security, logger),
		Profiles:        service.NewProfileService(users, connections, logger),
		Connections:     service.NewConnectionService(users, connections, events, producer, logger),
		Courses:         service.NewCourseService(courses, events, logger),
		Progress:        service.NewProgressService(courses, progress, payments, gateway, events, producer, logger),
		Messaging:       service.NewMessagingService(users, chats, events, logger),
		Notifications:   service.NewNotificationService(notifications, events, logger),
		Content:         service.NewContentService(content, events, logger),
		Feed:            service.NewFeedService(posts, flows, events, logger),
		Recommendations: service.NewRecommendationService(flows, users, courses, content, logger),
		Checkout:        service.NewCheckoutService(courses, payments, gateway, cfg.Payments.Currency, logger),
		Media:           service.NewMediaService(media, objectStore, cfg.Storage.MaxBytes, logger),
	}

	checks := map[string]handlers.Check{
		"postgres": dbPool.Ping,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		"storage":  objectStore.Ping,
	}

	handlerSet := handlers.NewHandlerSet(logger, cfg, services, hub, middleware.NewRedisCounter(redisClient), checks)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(producer, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")
	shutdown(logger, httpServer, scheduler, shutdownTracing, dbPool, redisClient)
}

func shutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, tracing observability.Shutdown, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	scheduler.Stop()

	if err := tracing(ctx); err != nil {
		logger.Error().Err(err).Msg("tracing shutdown failed")
	}

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
