package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Secrets (from .env)
	CoinGeckoAPIKey string
	QuickChartURL   string
	WebhookURL      string
	BotName         string
	APIKey          string
	CORSAllowOrigin string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// API
	APIPort int

	// Scheduler cadence
	PriceRefreshMinutes  int
	CoinListRefreshHours int

	// Ledger limits
	MaxTxnsPerUser  int
	WatcherLifeDays int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Secrets
		CoinGeckoAPIKey: envStr("COINGECKO_API_KEY", ""),
		QuickChartURL:   envStr("QUICKCHART_URL", "https://quickchart.io/chart"),
		WebhookURL:      envStr("WEBHOOK_URL", ""),
		BotName:         envStr("BOT_NAME", "Discoin"),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		// Database
		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "discoin"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),

		// API
		APIPort: envInt("API_PORT", 3001),

		// Scheduler
		PriceRefreshMinutes:  envInt("PRICE_REFRESH_MINUTES", 5),
		CoinListRefreshHours: envInt("COINLIST_REFRESH_HOURS", 24),

		// Limits
		MaxTxnsPerUser:  envInt("MAX_TXNS_PER_USER", 1000),
		WatcherLifeDays: envInt("WATCHER_LIFE_DAYS", 90),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.DBUser == "" {
		errs = append(errs, "DB_USER is required")
	}
	if c.PriceRefreshMinutes < 1 {
		errs = append(errs, "PRICE_REFRESH_MINUTES must be at least 1")
	}
	if c.CoinGeckoAPIKey == "" {
		fmt.Println("[WARN] COINGECKO_API_KEY not set - anonymous CoinGecko quota is tight, expect 429s")
	}
	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set - REST API has no authentication")
	}
	if c.WebhookURL == "" {
		fmt.Println("[WARN] WEBHOOK_URL not set - watcher alerts go to console only")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== Discoin Backend Configuration ===")
	fmt.Printf("Database: %s:%d/%s\n", c.DBHost, c.DBPort, c.DBName)
	fmt.Printf("API port: %d\n", c.APIPort)
	fmt.Println("-------------------------------------")
	fmt.Println("Market data:")
	fmt.Printf("  Price refresh: every %d min\n", c.PriceRefreshMinutes)
	fmt.Printf("  Coin list refresh: every %d hours\n", c.CoinListRefreshHours)
	fmt.Printf("  CoinGecko key: %s\n", boolLabel(c.CoinGeckoAPIKey != "", "configured", "not set"))
	fmt.Println("-------------------------------------")
	fmt.Printf("Chart rendering: %s\n", c.QuickChartURL)
	fmt.Printf("Webhook: %s\n", boolLabel(c.WebhookURL != "", "configured", "not set"))
	fmt.Printf("Ledger cap: %d txns/user\n", c.MaxTxnsPerUser)
	fmt.Println("=====================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
