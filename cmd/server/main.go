package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eulaly/discoin-backend/internal/access"
	"github.com/eulaly/discoin-backend/internal/alerts"
	"github.com/eulaly/discoin-backend/internal/api"
	"github.com/eulaly/discoin-backend/internal/config"
	"github.com/eulaly/discoin-backend/internal/db"
	"github.com/eulaly/discoin-backend/internal/external"
	"github.com/eulaly/discoin-backend/internal/notifications"
	"github.com/eulaly/discoin-backend/internal/repository"
	"github.com/eulaly/discoin-backend/internal/scheduler"
)

const banner = `
╔══════════════════════════════════════╗
║      DISCOIN Portfolio Backend       ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Database
	fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(context.Background(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		pool.Close()
		fmt.Println("[DB] Connection pool closed")
	}()

	if err := db.TestConnection(context.Background(), pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Test query failed: %v\n", err)
		os.Exit(1)
	}

	if err := db.InitSchema(context.Background(), pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Schema init failed: %v\n", err)
		os.Exit(1)
	}

	// Repos
	txnRepo := repository.NewTransactionRepo(pool)
	priceRepo := repository.NewPriceRepo(pool)
	coinRepo := repository.NewCoinListRepo(pool)
	watcherRepo := repository.NewWatcherRepo(pool)
	blocklistRepo := repository.NewBlocklistRepo(pool)

	// External clients
	gecko := external.NewCoinGeckoClient(cfg.CoinGeckoAPIKey)
	charts := external.NewQuickChartClient(cfg.QuickChartURL)

	// Notifications
	notify := notifications.NewSender(cfg.WebhookURL, cfg.BotName)

	// Price alerts, evaluated on every snapshot refresh
	alertSvc := alerts.NewService(watcherRepo, notify)

	// Write gatekeeper
	gate := access.NewGatekeeper(
		access.Limits{MaxTxnsPerUser: cfg.MaxTxnsPerUser},
		blocklistRepo, txnRepo,
	)

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. API server
	srv := api.NewServer(pool, api.Config{
		Port:            cfg.APIPort,
		APIKey:          cfg.APIKey,
		CORSOrigin:      cfg.CORSAllowOrigin,
		WatcherLifeDays: cfg.WatcherLifeDays,
	}, gecko, charts, gate)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// 2. Price scheduler: refreshes the snapshot for every currency held in
	// any ledger or named by an active watcher, and the coin list daily.
	sched := scheduler.NewPriceScheduler(gecko, priceRepo, coinRepo, scheduler.Config{
		PriceInterval:    time.Duration(cfg.PriceRefreshMinutes) * time.Minute,
		CoinListInterval: time.Duration(cfg.CoinListRefreshHours) * time.Hour,
		OnSnapshot:       alertSvc.Evaluate,
	}, txnRepo, watcherRepo)
	sched.Start()

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
