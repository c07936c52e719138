package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"uptask/config"
	"uptask/middleware"
	"uptask/routes"
	"uptask/store"
	"uptask/utils"
	"uptask/worker"
)

func main() {
	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := config.AppConfig

	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	if err := utils.InitSentry(cfg.SentryDSN, cfg.Environment); err != nil {
		logrus.WithError(err).Warn("Sentry initialization failed, continuing without error reporting")
	}
	defer sentry.Flush(2 * time.Second)

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	redisClient := config.ConnectRedis()
	var tokens store.TokenStore
	if redisClient != nil {
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logrus.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		tokens = store.NewRedisTokenStore(redisClient, cfg.TokenTTL)
	} else {
		tokens = store.NewGormTokenStore(config.DB, cfg.TokenTTL)
	}

	emails := utils.NewAuthEmail(utils.NewSMTPMailer(cfg.SMTP), cfg.FrontendURL, cfg.TokenTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := worker.NewTokenSweeper(tokens, cfg.TokenSweepInterval, logrus.WithField("component", "token_sweeper"))
	go sweeper.Start(ctx)

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = []string{cfg.FrontendURL}
	corsConfig.AllowNoOrigin = cfg.AllowNoOrigin

	app := routes.NewApp(routes.Dependencies{
		DB:            config.DB,
		Tokens:        tokens,
		Emails:        emails,
		Redis:         redisClient,
		CORS:          corsConfig,
		AuthRateLimit: cfg.AuthRateLimit,
		AccessLog:     true,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logrus.Info("Shutting down server...")
		cancel()

		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	logrus.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}

	emails.Wait()
	logrus.Info("Server stopped")
}
