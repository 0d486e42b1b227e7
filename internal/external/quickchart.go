package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eulaly/discoin-backend/internal/httputil"
)

// Discord-embed friendly dark background.
const chartBackground = "#2f3136"

type QuickChartClient struct {
	chartURL   string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewQuickChartClient(chartURL string) *QuickChartClient {
	return &QuickChartClient{
		chartURL:   chartURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 2,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
		},
	}
}

// Dataset is one labeled series within a chart.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor string    `json:"backgroundColor,omitempty"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
	PointRadius     int       `json:"pointRadius,omitempty"`
	Fill            string    `json:"fill,omitempty"`
}

type chartPayload struct {
	Chart           chartSpec `json:"chart"`
	BackgroundColor string    `json:"backgroundColor"`
}

type chartSpec struct {
	Type string    `json:"type"`
	Data chartData `json:"data"`
}

type chartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// BarChart renders a bar chart PNG (used for the per-coin ROI portfolio chart).
func (c *QuickChartClient) BarChart(ctx context.Context, labels []string, ds Dataset) ([]byte, error) {
	if ds.BackgroundColor == "" {
		ds.BackgroundColor = "#db9d16"
	}
	return c.render(ctx, "bar", labels, []Dataset{ds})
}

// LineChart renders a line chart PNG with one or more series (market
// performance and coin comparison charts).
func (c *QuickChartClient) LineChart(ctx context.Context, labels []string, datasets []Dataset) ([]byte, error) {
	for i := range datasets {
		if datasets[i].BorderWidth == 0 {
			datasets[i].BorderWidth = 1
		}
		if datasets[i].PointRadius == 0 {
			datasets[i].PointRadius = 1
		}
		if datasets[i].Fill == "" {
			datasets[i].Fill = "false"
		}
	}
	return c.render(ctx, "line", labels, datasets)
}

func (c *QuickChartClient) render(ctx context.Context, chartType string, labels []string, datasets []Dataset) ([]byte, error) {
	payload := chartPayload{
		Chart: chartSpec{
			Type: chartType,
			Data: chartData{Labels: labels, Datasets: datasets},
		},
		BackgroundColor: chartBackground,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal chart config: %w", err)
	}

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chartURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("quickchart render: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quickchart returned status %d", resp.StatusCode)
	}

	png, err := readAll(resp)
	if err != nil {
		return nil, err
	}
	fmt.Printf("[QUICKCHART] Rendered %s chart (%d bytes)\n", chartType, len(png))
	return png, nil
}

func readAll(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}
