// Package main initializes and starts the secretdrop HTTP server, setting
// up configuration, logging, the database connection, repository, service,
// handlers, and the expiry cleaner.
package main

import (
	"cmp"
	"context"
	"fmt"

	nethttp "net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mkravets/secretdrop/internal/config"
	"github.com/mkravets/secretdrop/internal/crypto"
	"github.com/mkravets/secretdrop/internal/db"
	"github.com/mkravets/secretdrop/internal/logger"
	"github.com/mkravets/secretdrop/internal/ratelimit"
	"github.com/mkravets/secretdrop/internal/repository"
	"github.com/mkravets/secretdrop/internal/server/handler/http"
	"github.com/mkravets/secretdrop/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Pick up a local .env before reading configuration.
	_ = godotenv.Load()

	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	if options.SecretKey == "" {
		zapLogger.Fatal("SECRET_KEY is required")
	}
	if options.SessionKey == "" {
		zapLogger.Fatal("SESSION_KEY is required")
	}

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Initialize repository and the lifecycle service.
	secretRepo := repository.NewPostgresSecretRepository(postgresDB)
	cipher := crypto.NewCipher(options.SecretKey)
	secretService := service.NewSecretService(secretRepo, cipher)

	// Periodically sweep expired secrets.
	db.StartExpiryCleaner(context.Background(), secretService,
		options.CleanupInterval,
		zapLogger,
	)

	// Reveal throttling, keyed by source address.
	limiter := ratelimit.New()

	// Create HTTP handlers and build the router.
	secretHandler := &http.SecretHandler{
		Service:   secretService,
		CronToken: options.CronToken,
		Logger:    zapLogger,
	}
	router := http.NewRouter(secretHandler, limiter, zapLogger, []byte(options.SessionKey))

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
