package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eulaly/discoin-backend/internal/httputil"
	"github.com/eulaly/discoin-backend/internal/models"
)

const (
	coingeckoBaseURL = "https://api.coingecko.com/api/v3"

	// CoinGecko caps /simple/price at 250 ids per request.
	simplePriceChunkSize = 250
)

type CoinGeckoClient struct {
	baseURL    string
	apiKey     string // demo key, sent as x_cg_demo_api_key
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewCoinGeckoClient(apiKey string) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    coingeckoBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    15 * time.Second,
		},
	}
}

// SimplePrices fetches the latest USD unit price for every given coin id.
// Ids absent from the response are simply missing from the returned map;
// the valuation engine turns that into an explicit error downstream.
func (c *CoinGeckoClient) SimplePrices(ctx context.Context, coinIDs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(coinIDs))
	for start := 0; start < len(coinIDs); start += simplePriceChunkSize {
		end := start + simplePriceChunkSize
		if end > len(coinIDs) {
			end = len(coinIDs)
		}
		if err := c.simplePriceChunk(ctx, coinIDs[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *CoinGeckoClient) simplePriceChunk(ctx context.Context, coinIDs []string, out map[string]float64) error {
	params := url.Values{
		"ids":           {strings.Join(coinIDs, ",")},
		"vs_currencies": {"usd"},
	}

	body, err := c.get(ctx, "/simple/price", params)
	if err != nil {
		return fmt.Errorf("simple price: %w", err)
	}

	var data map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return fmt.Errorf("decode simple price: %w", err)
	}

	for id, v := range data {
		out[id] = v.USD
	}
	return nil
}

// CoinList fetches the full coin reference list (id, symbol, name).
func (c *CoinGeckoClient) CoinList(ctx context.Context) ([]models.CoinListing, error) {
	body, err := c.get(ctx, "/coins/list", nil)
	if err != nil {
		return nil, fmt.Errorf("coin list: %w", err)
	}

	var raw []struct {
		ID     string `json:"id"`
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode coin list: %w", err)
	}

	listings := make([]models.CoinListing, len(raw))
	for i, r := range raw {
		listings[i] = models.CoinListing{CoinID: r.ID, Symbol: r.Symbol, Name: r.Name}
	}
	return listings, nil
}

// MarketSeries is a coin's daily performance since the start of the window,
// expressed as percent change from the first data point.
type MarketSeries struct {
	Coin       string    `json:"coin"`
	Dates      []string  `json:"dates"` // YYYY-MM-DD per point
	PctChange  []float64 `json:"pctChange"`
	CurrentUSD float64   `json:"currentUsd"`
	OldestDate string    `json:"oldestDate"`
	OldestDays int       `json:"oldestDays"`
	Truncated  bool      `json:"truncated"` // series starts later than requested
}

// MarketChart fetches a coin's price history over the last `days` days and
// converts it to a percent-change series. CoinGecko silently clamps the
// window when the coin is younger than requested; Truncated flags that so
// callers can rerun or annotate.
func (c *CoinGeckoClient) MarketChart(ctx context.Context, coinID string, days int) (*MarketSeries, error) {
	params := url.Values{
		"vs_currency": {"usd"},
		"days":        {fmt.Sprintf("%d", days)},
	}

	body, err := c.get(ctx, "/coins/"+url.PathEscape(coinID)+"/market_chart", params)
	if err != nil {
		return nil, fmt.Errorf("market chart for %s: %w", coinID, err)
	}

	var data struct {
		Prices [][2]float64 `json:"prices"` // [unix ms, usd]
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode market chart: %w", err)
	}
	if len(data.Prices) == 0 {
		return nil, fmt.Errorf("no market data for %s", coinID)
	}

	series := &MarketSeries{
		Coin:      coinID,
		Dates:     make([]string, len(data.Prices)),
		PctChange: make([]float64, len(data.Prices)),
	}

	first := data.Prices[0][1]
	for i, p := range data.Prices {
		ts := time.UnixMilli(int64(p[0])).UTC()
		series.Dates[i] = ts.Format("2006-01-02")
		if first != 0 {
			series.PctChange[i] = (p[1] - first) / first * 100
		}
	}

	series.CurrentUSD = data.Prices[len(data.Prices)-1][1]
	series.OldestDate = series.Dates[0]
	oldest := time.UnixMilli(int64(data.Prices[0][0])).UTC()
	series.OldestDays = int(time.Since(oldest).Hours() / 24)

	expected := time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
	series.Truncated = series.OldestDate > expected

	return series, nil
}

// HistoricalPrice returns a coin's USD price as of `daysAgo` days in the past.
func (c *CoinGeckoClient) HistoricalPrice(ctx context.Context, coinID string, daysAgo int) (float64, error) {
	// The /history endpoint wants DD-MM-YYYY.
	date := time.Now().UTC().AddDate(0, 0, -daysAgo).Format("02-01-2006")
	params := url.Values{
		"date":         {date},
		"localization": {"false"},
	}

	body, err := c.get(ctx, "/coins/"+url.PathEscape(coinID)+"/history", params)
	if err != nil {
		return 0, fmt.Errorf("history for %s: %w", coinID, err)
	}

	var data struct {
		MarketData struct {
			CurrentPrice struct {
				USD float64 `json:"usd"`
			} `json:"current_price"`
		} `json:"market_data"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return 0, fmt.Errorf("decode history: %w", err)
	}
	if data.MarketData.CurrentPrice.USD == 0 {
		return 0, fmt.Errorf("no historical price for %s at %s", coinID, date)
	}
	return data.MarketData.CurrentPrice.USD, nil
}

func (c *CoinGeckoClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("x_cg_demo_api_key", c.apiKey)
	}
	fullURL := c.baseURL + path + "?" + params.Encode()

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	return readAll(resp)
}
