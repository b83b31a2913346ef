// Package main initializes and starts the cart backend server,
// setting up configuration, logging, database connections, repositories,
// services, and handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/avolkov/cartsync/internal/config"
	"github.com/avolkov/cartsync/internal/db"
	"github.com/avolkov/cartsync/internal/logger"
	"github.com/avolkov/cartsync/internal/repository"
	"github.com/avolkov/cartsync/internal/server/handler/http"
	"github.com/avolkov/cartsync/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()
	addr := options.Port
	dbName := options.DatabaseDSN

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(dbName)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Revoke bearer tokens that outlived the retention window.
	db.StartStaleSessionCleaner(context.Background(), postgresDB,
		time.Hour,       // interval
		30*24*time.Hour, // retention: 30 days
		zapLogger,
	)

	// Initialize repositories for authentication and cart storage.
	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	cartRepo := repository.NewPostgresCartRepository(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(authRepo)
	cartService := service.NewCartService(cartRepo)

	// Create HTTP handlers for auth and cart endpoints.
	authHandler := &http.AuthHandler{AuthService: authService}
	cartHandler := &http.CartHandler{CartService: cartService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, cartHandler, authService, zapLogger)

	// Create and start the HTTP server.
	server := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
