package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/Fazeel2019/Upskill-sub000/internal/cache"
	"github.com/Fazeel2019/Upskill-sub000/internal/config"
	"github.com/Fazeel2019/Upskill-sub000/internal/database"
	"github.com/Fazeel2019/Upskill-sub000/internal/log"
	"github.com/Fazeel2019/Upskill-sub000/internal/mailer"
	"github.com/Fazeel2019/Upskill-sub000/internal/payment"
	"github.com/Fazeel2019/Upskill-sub000/internal/queue"
	"github.com/Fazeel2019/Upskill-sub000/internal/realtime"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
	"github.com/Fazeel2019/Upskill-sub000/internal/service"
	"github.com/Fazeel2019/Upskill-sub000/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	client, err := cache.NewRedisClient(ctx, cfg.Redis, "upskill-worker")
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	events := realtime.NewPublisher(realtime.NewRedisBus(client, cfg.Redis.Channel, logger), logger)
	producer := queue.NewProducer(client, cfg.Redis.Stream)

	users := repository.NewUserRepository(dbPool)
	courses := repository.NewCourseRepository(dbPool)

	// The worker never takes payments; enrollment is not reachable from here.
	progress := service.NewProgressService(
		courses,
		repository.NewProgressRepository(dbPool),
		repository.NewPaymentRepository(dbPool),
		payment.NewFake(),
		events,
		producer,
		logger,
	)
	notifications := service.NewNotificationService(repository.NewNotificationRepository(dbPool), events, logger)
	auth := service.NewAuthService(users, repository.NewSessionRepository(dbPool), cfg.Security, logger)

	processor := tasks.NewProcessor(tasks.Deps{
		Users:         users,
		Courses:       courses,
		Mailer:        mailer.New(cfg.Mail, logger),
		Notifications: notifications,
		Sessions:      auth,
		Progress:      progress,
		Retention:     cfg.Worker.NotificationRetention,
		AppURL:        cfg.Mail.AppURL,
	}, logger)

	consumer := queue.NewConsumer(
		client,
		cfg.Redis.Stream,
		cfg.Redis.Group,
		cfg.Redis.Consumer,
		cfg.Worker.ClaimInterval,
		logger,
		processor,
	)

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")
	time.Sleep(500 * time.Millisecond)
}
