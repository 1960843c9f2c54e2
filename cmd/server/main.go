package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/cheatloop/storefront/internal/api"
	"github.com/cheatloop/storefront/internal/config"
	"github.com/cheatloop/storefront/internal/engine"
	"github.com/cheatloop/storefront/internal/pkg/logger"
	"github.com/cheatloop/storefront/internal/repository/postgres"
	"github.com/cheatloop/storefront/internal/service/catalog"
	"github.com/cheatloop/storefront/internal/service/intents"
	"github.com/cheatloop/storefront/internal/service/keys"
	"github.com/cheatloop/storefront/internal/stats"
	"github.com/cheatloop/storefront/internal/storage"
	"github.com/cheatloop/storefront/internal/worker"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	if cfg.Log.RedactPII != nil {
		logger.SetRedactPII(*cfg.Log.RedactPII)
	}

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	// Database
	if cfg.Database.URL == "" {
		log.Fatal("database url is required (config database.url or DATABASE_URL)")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.Lifetime())
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("database connected")

	// Redis is optional; without it background loops fall back to PG
	// advisory locks.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unavailable, using advisory locks", "error", err)
			redisClient = nil
		} else {
			logger.Info("redis connected", "addr", cfg.Redis.Addr)
		}
	}

	// Services
	keySvc := keys.NewService(postgres.NewKeyRepo(db))
	intentSvc := intents.NewService(postgres.NewIntentRepo(db))
	catalogSvc := catalog.NewService(postgres.NewCatalogRepo(db))

	priceBook := stats.NewPriceBook(cfg.Pricing.NetPrices)
	priceBook.SetFallbackRatio(cfg.Pricing.FallbackRatio)
	statsSvc := stats.NewService(postgres.NewStatsRepo(db), priceBook)

	var imageSvc *storage.ImageService
	if cfg.Storage.S3Bucket != "" {
		store, err := storage.NewS3Store(context.Background(),
			cfg.Storage.S3Bucket, cfg.Storage.AWSRegion,
			cfg.Storage.GetAWSProfile(), cfg.Storage.PublicBaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize S3 storage: %v", err)
		}
		imageSvc = storage.NewImageService(postgres.NewImageRepo(db), store)
		logger.Info("image storage ready", "bucket", cfg.Storage.S3Bucket)
	} else {
		logger.Warn("image storage disabled: no s3 bucket configured")
	}

	// Background workers
	hub := engine.NewIntentHub()

	watcher := worker.NewIntentWatcher(intentSvc, hub, db)
	watcher.SetRedisClient(redisClient)
	watcher.SetInterval(cfg.Polling.Interval())
	watcher.SetLimit(cfg.Polling.IntentLimit)
	if err := watcher.Start(); err != nil {
		log.Fatalf("Failed to start intent watcher: %v", err)
	}

	expiryMonitor := worker.NewExpiryMonitor(keySvc, db)
	expiryMonitor.SetRedisClient(redisClient)
	expiryMonitor.SetInterval(cfg.Expiry.CheckInterval())
	if err := expiryMonitor.Start(); err != nil {
		log.Fatalf("Failed to start expiry monitor: %v", err)
	}

	// HTTP server
	handlers := api.NewHandlers(keySvc, intentSvc, catalogSvc, statsSvc, imageSvc, hub, expiryMonitor)
	server := api.NewServer(cfg.Server, handlers)

	addr := fmt.Sprintf("%s:%d", host, cfg.Server.Port)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	watcher.Stop()
	expiryMonitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}
	logger.Info("bye")
}
