package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wolfnote/30-day-trading-tracker/internal/auth"
	"github.com/wolfnote/30-day-trading-tracker/internal/config"
	"github.com/wolfnote/30-day-trading-tracker/internal/database"
	"github.com/wolfnote/30-day-trading-tracker/internal/importer"
	"github.com/wolfnote/30-day-trading-tracker/internal/ledger"
	"github.com/wolfnote/30-day-trading-tracker/internal/logger"
	"github.com/wolfnote/30-day-trading-tracker/internal/scanner"
	"github.com/wolfnote/30-day-trading-tracker/internal/server"
	"github.com/wolfnote/30-day-trading-tracker/internal/session"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Open the ledger database once; the store borrows this handle for
	// every operation instead of reconnecting per call.
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	store := ledger.NewStore(db, log, cfg.Trading.ApprovedStrategies)
	imp := importer.New(store, log)

	var scan *scanner.Client
	if cfg.Scanner.APIKey != "" {
		scan = scanner.NewClient(&cfg.Scanner, log)
	} else {
		log.Warn("Scanner API key not configured, /api/scanner disabled")
	}

	verifier := auth.NewStaticVerifier(cfg.Auth.Username, cfg.Auth.Password)
	tokens := auth.JWT{
		Secret:   []byte(cfg.Auth.JWTSecret),
		TokenTTL: time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute,
	}
	sessions := session.NewManager()

	srv := server.New(&cfg, log, store, imp, scan, verifier, tokens, sessions)
	srv.Start()

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	log.Info("Tracker has been shut down.")
}
