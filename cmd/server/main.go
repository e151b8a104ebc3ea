package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/picstream/picstream/internal/api"
	"github.com/picstream/picstream/internal/cache"
	"github.com/picstream/picstream/internal/clients"
	"github.com/picstream/picstream/internal/counter"
	"github.com/picstream/picstream/internal/db"
	"github.com/picstream/picstream/internal/feed"
	"github.com/picstream/picstream/internal/notify"
	"github.com/picstream/picstream/pkg/config"
	"github.com/picstream/picstream/pkg/logging"
	"github.com/picstream/picstream/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Picstream API Server")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	// Connect to database
	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to Redis (optional; everything degrades without it)
	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisCache != nil {
		defer redisCache.Close()
	}

	// Collaborator service clients
	userClient := clients.NewUserClient(cfg.Services.UserURL, cfg.Services.Timeout)
	postClient := clients.NewPostClient(cfg.Services.PostURL, cfg.Services.Timeout)
	commentClient := clients.NewCommentClient(cfg.Services.CommentURL, cfg.Services.Timeout)
	likeClient := clients.NewLikeClient(cfg.Services.LikeURL, cfg.Services.Timeout)

	propagator := counter.NewPropagator(userClient, postClient, commentClient)

	feedCache := feed.NewCache(redisCache, userClient, feed.CacheConfig{
		TTL:                 cfg.Feed.CacheTTL,
		InvalidationWorkers: cfg.Feed.InvalidationWorkers,
		InvalidationTimeout: cfg.Feed.InvalidationTimeout,
	})
	aggregator := feed.NewAggregator(feedCache, userClient, postClient, likeClient, cfg.Feed.MaxPageSize)

	// Notification pipeline
	publisher := notify.NewPublisher(&cfg.Kafka)
	if publisher != nil {
		defer publisher.Close()
	}
	inbox := notify.NewInbox(redisCache)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	consumer := notify.NewConsumer(&cfg.Kafka, inbox)
	if consumer != nil {
		go consumer.Run(consumerCtx)
	}

	// Create Gin router
	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	router := api.NewRouter(api.Deps{
		DB:         database,
		Cache:      redisCache,
		Users:      userClient,
		Posts:      postClient,
		Comments:   commentClient,
		Likes:      likeClient,
		Propagator: propagator,
		FeedCache:  feedCache,
		Aggregator: aggregator,
		Publisher:  publisher,
		Inbox:      inbox,
	})
	router.SetupRoutes(engine)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopConsumer()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
