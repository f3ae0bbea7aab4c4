package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linklet/config"
	"linklet/internal/handler"
	"linklet/internal/middleware"
	"linklet/internal/redis"
	"linklet/internal/services"
	"linklet/internal/transport/httpdto"
	"linklet/internal/ws"
	"linklet/pkg/database"
	"linklet/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Friend       *handler.FriendHandler
	Conversation *handler.ConversationHandler
	Message      *handler.MessageHandler
	Notification *handler.NotificationHandler
	Upload       *handler.UploadHandler
	WS           *ws.Handler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))
	if limiter != nil {
		s.engine.Use(middleware.RateLimitMiddleware(limiter))
	}

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	authRequired := middleware.AuthMiddleware(authService)

	auth := s.engine.Group("/v1/auth")
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
	}

	friends := s.engine.Group("/v1/friends", authRequired)
	{
		if limiter != nil {
			friends.POST("/requests", middleware.FriendRequestRateLimitMiddleware(limiter), handlers.Friend.SendRequest)
		} else {
			friends.POST("/requests", handlers.Friend.SendRequest)
		}
		friends.GET("/requests", handlers.Friend.ListRequests)
		friends.POST("/requests/accept", handlers.Friend.AcceptRequest)
		friends.POST("/requests/reject", handlers.Friend.RejectRequest)
		friends.GET("", handlers.Friend.List)
		friends.DELETE("/:id", handlers.Friend.Remove)
		friends.GET("/search", handlers.Friend.SearchFriends)
	}

	users := s.engine.Group("/v1/users", authRequired)
	{
		users.GET("/search", handlers.Friend.SearchUsers)
	}

	conversations := s.engine.Group("/v1/conversations", authRequired)
	{
		conversations.POST("/direct", handlers.Conversation.CreateDirect)
		conversations.POST("/group", handlers.Conversation.CreateGroup)
		conversations.GET("", handlers.Conversation.List)
		conversations.GET("/:id", handlers.Conversation.GetByID)
		conversations.GET("/:id/messages", handlers.Conversation.ListMessages)
	}

	messages := s.engine.Group("/v1/messages", authRequired)
	{
		if limiter != nil {
			messages.POST("", middleware.MessageRateLimitMiddleware(limiter), handlers.Message.Send)
		} else {
			messages.POST("", handlers.Message.Send)
		}
		messages.POST("/:id/read", handlers.Message.MarkRead)
		messages.GET("/:id/reads", handlers.Message.Reads)
		messages.PUT("/:id/reactions", handlers.Message.AddReaction)
		messages.DELETE("/:id/reactions", handlers.Message.RemoveReaction)
		messages.GET("/:id/reactions", handlers.Message.Reactions)
	}

	notifications := s.engine.Group("/v1/notifications", authRequired)
	{
		notifications.GET("", handlers.Notification.List)
		notifications.POST("/:id/read", handlers.Notification.MarkRead)
		notifications.POST("/read-all", handlers.Notification.MarkAllRead)
	}

	uploads := s.engine.Group("/v1/uploads", authRequired)
	{
		uploads.POST("", handlers.Upload.Upload)
		uploads.POST("/presign", handlers.Upload.Presign)
	}

	s.engine.GET("/ws/chat", handlers.WS.ConnectChat)
	s.engine.GET("/ws/notifications", handlers.WS.ConnectNotifications)
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
