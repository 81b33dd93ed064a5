package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/brandreg/crm-api/internal/api"
	"github.com/brandreg/crm-api/internal/api/handler"
	"github.com/brandreg/crm-api/internal/core/service"
	mongodb "github.com/brandreg/crm-api/internal/infrastructure/db/mongo"
	redisdb "github.com/brandreg/crm-api/internal/infrastructure/db/redis"
	"github.com/brandreg/crm-api/internal/infrastructure/queue"
	"github.com/brandreg/crm-api/internal/infrastructure/render"
	"github.com/brandreg/crm-api/internal/infrastructure/storage"
	"github.com/brandreg/crm-api/internal/pkg/config"
	"github.com/brandreg/crm-api/pkg/logger"
)

// @title        Registration CRM API
// @version      1.0
// @description  Backend for the trademark and patent registration workflow.
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	files, err := storage.New(cfg.Storage.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("storage init failed")
	}

	// --- Repositories ---
	jobRepo := mongodb.NewJobRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	notificationRepo := mongodb.NewNotificationRepository(db)
	messageRepo := mongodb.NewMessageRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"jobs":          jobRepo.EnsureIndexes,
		"users":         userRepo.EnsureIndexes,
		"notifications": notificationRepo.EnsureIndexes,
		"messages":      messageRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	// --- Services ---
	unreadCache := redisdb.NewUnreadCache(rdb, cfg.Notify.UnreadTTL)
	notificationService := service.NewNotificationService(notificationRepo, unreadCache, log)

	dispatcher := queue.NewDispatcher(notificationService, cfg.Notify.Workers, log)
	dispatcher.Start(ctx)

	transitionService := service.NewTransitionService(jobRepo, userRepo, dispatcher, cfg.Fees.Reviewer, cfg.Fees.Lawyer, log)
	jobService := service.NewJobService(jobRepo, messageRepo, notificationRepo, files, render.NewRenderer(), log)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour)

	archiver := service.NewArchiver(jobRepo, transitionService, cfg.Archive.Interval, cfg.Archive.MinAge, log)
	archiver.Start(ctx)

	// --- HTTP ---
	e := api.NewRouter(api.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Jobs:          handler.NewJobHandler(jobService, transitionService),
		Messages:      handler.NewMessageHandler(jobService, messageRepo),
		Notifications: handler.NewNotificationHandler(notificationService),
		Users:         handler.NewUserHandler(userRepo),
		Health:        handler.NewHealthHandler(db, rdb),
	}, cfg.JWTSecret, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	// Flush notifications still sitting in the dispatcher queues.
	dispatcher.Wait()
}
