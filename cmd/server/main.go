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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"shellos-packages/internal/adapters/primary/http/handlers"
	"shellos-packages/internal/adapters/primary/http/middleware"
	"shellos-packages/internal/adapters/secondary/authapi"
	"shellos-packages/internal/adapters/secondary/natsbus"
	"shellos-packages/internal/adapters/secondary/postgres"
	"shellos-packages/internal/adapters/secondary/s3store"
	"shellos-packages/internal/config"
	"shellos-packages/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if err := postgres.Migrate(cfg.Database.DSN()); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("parse db config: %v", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Fatalf("create db pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	log.Info("database connection established")

	// Push bus
	bus, err := natsbus.New(cfg.Bus.URL, cfg.Bus.Subject)
	if err != nil {
		log.Fatalf("connect to nats: %v", err)
	}
	defer bus.Close()

	// Durable artifact storage
	store, err := s3store.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("init artifact store: %v", err)
	}

	// Secondary Adapters (Output Ports)
	packageRepo := postgres.NewPackageRepository(pool)
	authClient := authapi.NewClient(cfg.Auth.URL, cfg.Auth.Timeout)

	// Core Services
	identitySvc := services.NewIdentityService(authClient, cfg.Auth.Credential)
	catalogSvc := services.NewCatalogService(packageRepo, bus)
	uploaderSvc := services.NewUploaderService(store)
	publishSvc := services.NewPublishService(identitySvc, uploaderSvc, packageRepo, bus)

	// Identity resolves first; the catalog subscription and every other
	// store operation waits for its readiness signal.
	go identitySvc.Start(ctx)
	go func() {
		<-identitySvc.Ready()
		if err := catalogSvc.Start(ctx); err != nil {
			log.WithError(err).Error("open catalog subscription failed")
		}
	}()
	defer func() {
		if err := catalogSvc.Close(); err != nil {
			log.WithError(err).Warn("close catalog subscription failed")
		}
	}()

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(publishSvc, catalogSvc, uploaderSvc, identitySvc)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1")
	h.RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
