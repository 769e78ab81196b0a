package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/carteira-app/carteira/internal/api"
	"github.com/carteira-app/carteira/internal/bcb"
	"github.com/carteira-app/carteira/internal/config"
	"github.com/carteira-app/carteira/internal/database"
	"github.com/carteira-app/carteira/internal/logger"
	"github.com/carteira-app/carteira/internal/marketdata"
	"github.com/carteira-app/carteira/internal/repository"
	"github.com/carteira-app/carteira/internal/scheduler"
	"github.com/carteira-app/carteira/internal/service"
	"github.com/carteira-app/carteira/internal/version"
	"github.com/carteira-app/carteira/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// the logger is not configured yet
		bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)
	log.Info().Str("version", version.Version).Msg("starting carteira")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server exited")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := database.Migrate(context.Background(), db)
	if err != nil {
		return err
	}
	log.Info().Str("path", cfg.Database.Path).Int("migrations_applied", applied).Msg("connected to database")

	// Create repositories
	transactionRepo := repository.NewTransactionRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	watchlistRepo := repository.NewWatchlistRepository(db)

	// Market data feed; the context of every call bounds it, the client adds a hard ceiling
	httpClient := &http.Client{Timeout: 2 * cfg.Feed.Timeout}
	feed := marketdata.NewFeed(
		yahoo.NewFinanceClient(httpClient),
		bcb.NewClient(httpClient),
		marketdata.Options{
			Timeout:           cfg.Feed.Timeout,
			PriceCacheTTL:     cfg.Feed.PriceCacheTTL,
			DividendCacheTTL:  cfg.Feed.DividendCacheTTL,
			BenchmarkCacheTTL: cfg.Feed.BenchmarkCacheTTL,
		},
		logger.Component(log, "marketdata"),
	)

	// Create services
	services := api.Services{
		System:      service.NewSystemService(db),
		Portfolio:   service.NewPortfolioService(transactionRepo, feed, cfg.Feed.Concurrency, log),
		Transaction: service.NewTransactionService(transactionRepo, log).WithTickerCheck(feed),
		Alert: service.NewAlertService(
			alertRepo,
			transactionRepo,
			feed,
			service.NewLogNotifier(log),
			cfg.Feed.Concurrency,
			log,
		),
		Allocation: service.NewAllocationService(allocationRepo, transactionRepo, feed, cfg.Feed.Concurrency, log),
		Watchlist:  service.NewWatchlistService(watchlistRepo, feed, cfg.Feed.Concurrency, log),
	}

	// Background jobs
	sched := scheduler.New(logger.Component(log, "scheduler"))
	if err := sched.AddJob(cfg.Scheduler.AlertSchedule, scheduler.NewAlertSweepJob(services.Alert, 2*time.Minute, log)); err != nil {
		return fmt.Errorf("failed to schedule alert sweep: %w", err)
	}
	if err := sched.AddJob(cfg.Scheduler.PurgeSchedule, scheduler.NewCachePurgeJob(feed, log)); err != nil {
		return fmt.Errorf("failed to schedule cache purge: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// Create HTTP server
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(services, cfg, logger.Component(log, "http")),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	case err := <-serverErr:
		return err
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
