package main

import (
	"context"
	"log"
	"time"

	"linklet/config"
	"linklet/internal/handler"
	"linklet/internal/redis"
	"linklet/internal/repository"
	"linklet/internal/server"
	"linklet/internal/services"
	"linklet/internal/storage"
	"linklet/internal/ws"
	"linklet/pkg/database"
	"linklet/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(l)

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	redis.Initialize(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redis.Ping(context.Background()); err != nil {
		l.Warnf("Redis unavailable: %v", err)
	}

	userRepo := repository.NewUserRepository(database.DB)
	friendRepo := repository.NewFriendRepository(database.DB)
	convRepo := repository.NewConversationRepository(database.DB)
	msgRepo := repository.NewMessageRepository(database.DB)
	notifRepo := repository.NewNotificationRepository(database.DB)

	authService := services.NewAuthService(userRepo, cfg)
	convService := services.NewConversationService(convRepo, friendRepo)
	msgService := services.NewMessageService(msgRepo, convRepo)
	notifService := services.NewNotificationService(notifRepo, userRepo)

	presenceStore := redis.NewPresenceStore(redis.GetClient())
	hub := ws.NewHub(ws.NewDBPresenceTracker(userRepo, presenceStore), l)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	dispatcher := ws.NewDispatcher(hub, l)
	friendService := services.NewFriendService(userRepo, friendRepo, convService, notifService, dispatcher, l)

	var s3Client *storage.Client
	if cfg.S3Bucket != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
			PresignTTL: 15 * time.Minute,
		})
		cancel()
		if err != nil {
			l.Warnf("S3 unavailable, uploads disabled: %v", err)
		} else {
			s3Client = client
		}
	}

	limiter := redis.NewRateLimiter(redis.GetClient(), redis.DefaultRateLimitConfig())

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Friend:       handler.NewFriendHandler(friendService),
		Conversation: handler.NewConversationHandler(convService, msgService),
		Message:      handler.NewMessageHandler(msgService, dispatcher),
		Notification: handler.NewNotificationHandler(notifService),
		Upload:       handler.NewUploadHandler(s3Client),
		WS:           ws.NewHandler(authService, convService, hub, l),
	}, authService, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
