// Package main runs the HTTP API on its own, without the CLI:
// - /api/v1/...: watchlist, prices, leaderboard and search
// - /health and /metrics for probes and Prometheus
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"crypto-tracker/internal/api"
	"crypto-tracker/internal/app"
	"crypto-tracker/internal/config"
	"crypto-tracker/internal/logging"
)

func main() {
	cfgFile := pflag.String("config", "", "config file (default is ./tracker.yaml)")
	pflag.String("addr", ":8080", "HTTP listen address")
	config.RegisterFlags(pflag.CommandLine)
	pflag.Parse()

	cfg, err := config.Load(config.Options{ConfigFile: *cfgFile, Flags: pflag.CommandLine})
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open watchlist backend", zap.Error(err))
	}
	defer a.Close()

	// Channel to signal completion
	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, initiating graceful shutdown", zap.Stringer("signal", sig))
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Warn("received second signal, forcing immediate shutdown", zap.Stringer("signal", sig))
			os.Exit(1)
		case <-time.After(api.ShutdownTimeout + 5*time.Second):
			logger.Warn("graceful shutdown timed out, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	srv := api.NewServer(a.Tracker, logger.Named("api"))
	err = srv.ListenAndServe(ctx, cfg.Server.Addr)
	close(done)

	if err != nil {
		logger.Error("server error", zap.Error(err))
		a.Close()
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
