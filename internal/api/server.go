package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/eulaly/discoin-backend/internal/access"
	"github.com/eulaly/discoin-backend/internal/external"
	"github.com/eulaly/discoin-backend/internal/portfolio"
	"github.com/eulaly/discoin-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxQueryLimit  = 1000
	maxSearchLimit = 10
	maxImportBody  = 4 << 20 // 4 MiB CSV upload cap
)

var dateRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Config carries the request-facing knobs; connection wiring comes in
// through NewServer's explicit dependencies.
type Config struct {
	Port            int
	APIKey          string
	CORSOrigin      string
	WatcherLifeDays int
}

type Server struct {
	pool        *pgxpool.Pool
	txnRepo     *repository.TransactionRepo
	priceRepo   *repository.PriceRepo
	coinRepo    *repository.CoinListRepo
	watcherRepo *repository.WatcherRepo
	blocklist   *repository.BlocklistRepo
	portfolio   *portfolio.Service
	gate        *access.Gatekeeper
	gecko       *external.CoinGeckoClient
	charts      *external.QuickChartClient
	httpServer  *http.Server
	apiKey      string
	watcherLife time.Duration
}

func NewServer(pool *pgxpool.Pool, cfg Config, gecko *external.CoinGeckoClient, charts *external.QuickChartClient, gate *access.Gatekeeper) *Server {
	txnRepo := repository.NewTransactionRepo(pool)
	priceRepo := repository.NewPriceRepo(pool)

	s := &Server{
		pool:        pool,
		txnRepo:     txnRepo,
		priceRepo:   priceRepo,
		coinRepo:    repository.NewCoinListRepo(pool),
		watcherRepo: repository.NewWatcherRepo(pool),
		blocklist:   repository.NewBlocklistRepo(pool),
		portfolio:   portfolio.NewService(txnRepo, priceRepo),
		gate:        gate,
		gecko:       gecko,
		charts:      charts,
		apiKey:      cfg.APIKey,
		watcherLife: time.Duration(cfg.WatcherLifeDays) * 24 * time.Hour,
	}

	mux := http.NewServeMux()

	// Portfolio routes
	mux.HandleFunc("GET /v1/portfolio/{owner}", s.handlePortfolio)
	mux.HandleFunc("GET /v1/portfolio/{owner}/chart", s.handlePortfolioChart)

	// Transaction routes
	mux.HandleFunc("POST /v1/transactions/{owner}", s.handleRecordBuy)
	mux.HandleFunc("POST /v1/transactions/{owner}/sell", s.handleRecordSale)
	mux.HandleFunc("GET /v1/transactions/{owner}", s.handleListTransactions)
	mux.HandleFunc("GET /v1/transactions/{owner}/export", s.handleExportTransactions)
	mux.HandleFunc("DELETE /v1/transactions/{owner}/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("DELETE /v1/transactions/{owner}", s.handleWipeTransactions)
	mux.HandleFunc("POST /v1/import/{owner}", s.handleImport)

	// Coin and market routes
	mux.HandleFunc("GET /v1/coins/search", s.handleCoinSearch)
	mux.HandleFunc("GET /v1/market/{coin}", s.handleMarketSeries)
	mux.HandleFunc("GET /v1/market/{coin}/chart", s.handleMarketChart)
	mux.HandleFunc("GET /v1/market/{coin}/history", s.handleMarketHistory)
	mux.HandleFunc("GET /v1/market/compare/chart", s.handleMarketCompareChart)

	// Watcher routes
	mux.HandleFunc("POST /v1/watchers/{owner}", s.handleCreateWatcher)
	mux.HandleFunc("GET /v1/watchers/{owner}", s.handleListWatchers)
	mux.HandleFunc("DELETE /v1/watchers/{owner}/{id}", s.handleDeleteWatcher)

	// Admin routes
	mux.HandleFunc("POST /v1/admin/blocked/{user}", s.handleBlockUser)
	mux.HandleFunc("DELETE /v1/admin/blocked/{user}", s.handleUnblockUser)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := s.authMiddleware(corsMiddleware(mux, cfg.CORSOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	fmt.Printf("[API] REST API server started on http://localhost%s\n", s.httpServer.Addr)
	fmt.Printf("[API] Health check: http://localhost%s/health\n", s.httpServer.Addr)
	if s.apiKey != "" {
		fmt.Println("[API] Authentication: enabled (Bearer token)")
	} else {
		fmt.Println("[API] Authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- validation helpers ---

func validateDate(date string) bool {
	if !dateRegexp.MatchString(date) {
		return false
	}
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

func parseLimit(r *http.Request, defaultLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxQueryLimit {
		return maxQueryLimit
	}
	return n
}

func parseDays(r *http.Request, defaultDays int) int {
	v := r.URL.Query().Get("days")
	if v == "" {
		return defaultDays
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultDays
	}
	return n
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
