package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"property-management-backend/config"
	"property-management-backend/internal/api"
	"property-management-backend/internal/auth"
	"property-management-backend/internal/db"
	"property-management-backend/internal/logging"
	"property-management-backend/internal/notification"
	"property-management-backend/internal/store"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, "propertyd")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("configuration loaded", zap.String("path", configPath))

	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = randomSecret()
		logger.Warn("no session secret configured; sessions will not survive a restart")
	}

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB, logger)

	adminHash, err := auth.HashPassword(cfg.Auth.AdminPassword)
	if err != nil {
		logger.Fatal("failed to hash admin password", zap.Error(err))
	}
	if _, err := db.Seed(ctx, appStore, adminHash, logger); err != nil {
		logger.Fatal("failed to seed database", zap.Error(err))
	}

	opts := api.Options{
		AtomicImport: cfg.Import.IsAtomic(),
		Logger:       logger,
	}
	if cfg.Push.Enabled() {
		opts.Webpush = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, opts.Webpush, logger)
		pool.Start(ctx)
		opts.Notifier = pool
		logger.Info("push notifications enabled", zap.Int("workers", cfg.WorkerPool.Size))
	} else {
		logger.Info("push notifications disabled; VAPID keys are not configured")
	}

	handler := api.NewHandler(appStore,
		auth.NewAuthenticator(appStore.Users(), cfg.Auth.SessionTTL, logger),
		auth.NewTokenIssuer(cfg.Auth.Secret),
		opts)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(handler, cfg.Server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("HTTP server Shutdown", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
