package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/internal/service"
	"sellerlift/backend/internal/ws"
	"sellerlift/backend/pkg/config"
	"sellerlift/backend/pkg/di"
	"sellerlift/backend/pkg/health"
	"sellerlift/backend/pkg/logger"
	"sellerlift/backend/pkg/router"
	"sellerlift/backend/pkg/secrets"
	"sellerlift/backend/shared/observability"
	"sellerlift/backend/shared/redis"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.New()

	log := logger.New(logger.Config{
		Level: cfg.Logging.Level,
		JSON:  cfg.Logging.Format == "json",
	})
	logger.SetGlobal(log)

	log.Info("starting sellerlift backend", "version", os.Getenv("APP_VERSION"), "env", cfg.Server.Env)

	if err := secrets.Init(log); err != nil {
		log.Warn("secrets manager unavailable, falling back to environment", "error", err)
	}

	shutdownTracing := observability.SetupTracing("sellerlift-backend")
	defer shutdownTracing()
	observability.SetupPrometheusMetrics(":9090")

	db, err := config.NewDB()
	if err != nil {
		log.LogError(err, "failed to initialize database")
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Lead{},
		&models.Package{},
		&models.SiteContent{},
		&models.SiteSettings{},
		&models.BlogPost{},
		&models.ConversionSettings{},
		&models.Message{},
		&models.ConversationState{},
	); err != nil {
		log.LogError(err, "failed to migrate database")
		os.Exit(1)
	}

	redisClient := redis.NewClient()
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx); err != nil {
		// Presence and live updates degrade without Redis; the REST
		// dashboard keeps working.
		log.Warn("redis unavailable at startup", "error", err)
	}
	pingCancel()
	defer redisClient.Close()

	container := di.New(db, redisClient, cfg, log)

	r := router.New(container, cfg)
	r.SetupRoutes()

	if schemaPath := os.Getenv("OPENAPI_SCHEMA_PATH"); schemaPath != "" {
		r.AddOpenAPIValidation(schemaPath)
	}

	// Background checker behind /health/components; the plain /health
	// endpoint stays cheap for load balancers.
	checker := health.NewChecker(log, 30*time.Second)
	checker.RegisterDatabaseCheck(func() error {
		return db.Exec("SELECT 1").Error
	})
	checker.RegisterRedisCheck(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return redisClient.Ping(ctx)
	})
	checker.Start()
	r.Engine.GET("/health/components", gin.WrapF(checker.HTTPHandler()))

	feedCtx, stopFeed := context.WithCancel(context.Background())
	go consumeChangeFeed(feedCtx, redisClient, container, r.Hub, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r.Engine,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	stopFeed()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.LogError(err, "server forced to shutdown")
	}

	log.Info("server exited gracefully")
}

// consumeChangeFeed subscribes to the chat channels and reacts to
// events published by this or any other instance: presence changes go
// to the open sessions, everything else invalidates the directory
// snapshot so the next read rebuilds.
func consumeChangeFeed(ctx context.Context, redisClient *redis.Client, container *di.Container, hub *ws.Hub, log *logger.Logger) {
	events, cancel := redisClient.Subscribe(ctx, "chat:*")
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}

			msg, err := service.DecodeFeedMessage(event.Payload)
			if err != nil {
				log.Warn("malformed feed event", "channel", event.Channel, "error", err)
				continue
			}

			switch msg.Kind {
			case service.EventPresenceChanged:
				hub.BroadcastPresence(msg.ConversationID, msg.SenderID, msg.Status)
			case service.EventMessageAppended, service.EventConversationPurged:
				container.DirectoryService.Invalidate()
			}
		}
	}
}
