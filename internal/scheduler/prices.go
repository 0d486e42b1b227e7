// Package scheduler runs the background refresh loops. Its main job is to
// call CoinGecko responsibly, within the demo API rate limit: one batched
// price call per refresh interval, one coin-list call per day, never
// per-request fan-out.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eulaly/discoin-backend/internal/models"
)

// PriceSource fetches market data. Satisfied by external.CoinGeckoClient;
// abstracted so tests run without the network.
type PriceSource interface {
	SimplePrices(ctx context.Context, coinIDs []string) (map[string]float64, error)
	CoinList(ctx context.Context) ([]models.CoinListing, error)
}

// CurrencyLister yields the coin ids whose prices must stay fresh.
// Satisfied by repository.TransactionRepo and repository.WatcherRepo.
type CurrencyLister interface {
	DistinctCurrencies(ctx context.Context) ([]string, error)
}

// PriceStore persists a refreshed snapshot. Satisfied by repository.PriceRepo.
type PriceStore interface {
	ReplaceAll(ctx context.Context, prices map[string]float64) error
}

// ListingStore persists the coin reference list. Satisfied by
// repository.CoinListRepo.
type ListingStore interface {
	ReplaceAll(ctx context.Context, listings []models.CoinListing) error
}

type Config struct {
	PriceInterval    time.Duration // e.g. 5*time.Minute
	CoinListInterval time.Duration // e.g. 24*time.Hour
	FetchTimeout     time.Duration
	// OnSnapshot is called after each successful price refresh with the new
	// snapshot (the alert service hooks in here).
	OnSnapshot func(ctx context.Context, prices map[string]float64)
}

type PriceScheduler struct {
	source   PriceSource
	ledgers  []CurrencyLister
	prices   PriceStore
	listings ListingStore
	cfg      Config

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func NewPriceScheduler(source PriceSource, prices PriceStore, listings ListingStore, cfg Config, ledgers ...CurrencyLister) *PriceScheduler {
	if cfg.PriceInterval <= 0 {
		cfg.PriceInterval = 5 * time.Minute
	}
	if cfg.CoinListInterval <= 0 {
		cfg.CoinListInterval = 24 * time.Hour
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 90 * time.Second
	}
	return &PriceScheduler{
		source:   source,
		ledgers:  ledgers,
		prices:   prices,
		listings: listings,
		cfg:      cfg,
	}
}

func (s *PriceScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		fmt.Println("[SCHEDULER] Already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	// Initial refreshes on startup (fire-and-forget)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.FetchTimeout)
		defer cancel()
		if err := s.RefreshCoinList(ctx); err != nil {
			fmt.Printf("[SCHEDULER] Initial coin list refresh failed: %v\n", err)
		}
		if err := s.RefreshPrices(ctx); err != nil {
			fmt.Printf("[SCHEDULER] Initial price refresh failed: %v\n", err)
		}
	}()

	go s.loop(s.cfg.PriceInterval, "price refresh", s.RefreshPrices)
	go s.loop(s.cfg.CoinListInterval, "coin list refresh", s.RefreshCoinList)

	fmt.Printf("[SCHEDULER] Started (prices every %s, coin list every %s)\n",
		s.cfg.PriceInterval, s.cfg.CoinListInterval)
}

func (s *PriceScheduler) loop(interval time.Duration, name string, fn func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.FetchTimeout)
			if err := fn(ctx); err != nil {
				fmt.Printf("[SCHEDULER] %s failed: %v\n", name, err)
			}
			cancel()
		}
	}
}

func (s *PriceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
	fmt.Println("[SCHEDULER] Stopped")
}

func (s *PriceScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RefreshPrices replaces the latest-price cache with fresh quotes for every
// coin currently referenced by a ledger or an active watcher. A refresh with
// nothing to watch is a no-op, not an error.
func (s *PriceScheduler) RefreshPrices(ctx context.Context) error {
	coins, err := s.watchedCurrencies(ctx)
	if err != nil {
		return fmt.Errorf("list currencies: %w", err)
	}
	if len(coins) == 0 {
		fmt.Println("[SCHEDULER] No currencies to refresh")
		return nil
	}

	prices, err := s.source.SimplePrices(ctx, coins)
	if err != nil {
		return fmt.Errorf("fetch prices: %w", err)
	}
	if len(prices) == 0 {
		return fmt.Errorf("price source returned no data for %d coins", len(coins))
	}

	if err := s.prices.ReplaceAll(ctx, prices); err != nil {
		return fmt.Errorf("store prices: %w", err)
	}
	fmt.Printf("[SCHEDULER] %d coin values updated\n", len(prices))

	if s.cfg.OnSnapshot != nil {
		s.cfg.OnSnapshot(ctx, prices)
	}
	return nil
}

// RefreshCoinList replaces the coin reference list. The store only swaps on
// success, so a failed fetch keeps yesterday's list.
func (s *PriceScheduler) RefreshCoinList(ctx context.Context) error {
	listings, err := s.source.CoinList(ctx)
	if err != nil {
		return fmt.Errorf("fetch coin list: %w", err)
	}
	if len(listings) == 0 {
		return fmt.Errorf("coin list came back empty")
	}

	if err := s.listings.ReplaceAll(ctx, listings); err != nil {
		return fmt.Errorf("store coin list: %w", err)
	}
	fmt.Printf("[SCHEDULER] Coin reference updated (%d listings)\n", len(listings))
	return nil
}

func (s *PriceScheduler) watchedCurrencies(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, l := range s.ledgers {
		coins, err := l.DistinctCurrencies(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range coins {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out, nil
}
