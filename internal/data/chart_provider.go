package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/mohamedamin/halal-screener/internal/config"
	"github.com/mohamedamin/halal-screener/internal/models"
	"github.com/mohamedamin/halal-screener/pkg/logger"
)

// ChartProvider fetches OHLCV data from a Yahoo-style chart API. All
// requests pass through a token-bucket rate limiter so scans stay
// within the upstream provider's limits.
type ChartProvider struct {
	name    string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewChartProvider creates a rate-limited chart API provider.
func NewChartProvider(name string, cfg config.ProviderConfig) *ChartProvider {
	return &ChartProvider{
		name:    name,
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
	}
}

// GetName returns the provider type
func (p *ChartProvider) GetName() string {
	return p.name
}

// chartResponse mirrors the subset of the chart API payload we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				ShortName          string  `json:"shortName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (p *ChartProvider) fetchChart(ctx context.Context, symbol, period, interval string) (*chartResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", p.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("range", period)
	q.Set("interval", interval)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", "halal-screener/1.0")

	start := time.Now()
	resp, err := p.client.Do(req)
	logger.ProviderRequestDuration.WithLabelValues(p.name, "chart").Observe(time.Since(start).Seconds())
	if err != nil {
		logger.ProviderErrorsTotal.WithLabelValues(p.name, "chart").Inc()
		return nil, fmt.Errorf("%w: %v", models.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.ProviderErrorsTotal.WithLabelValues(p.name, "chart").Inc()
		return nil, fmt.Errorf("%w: chart API returned %d for %s", models.ErrProviderFailure, resp.StatusCode, symbol)
	}

	var parsed chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		logger.ProviderErrorsTotal.WithLabelValues(p.name, "chart").Inc()
		return nil, fmt.Errorf("%w: decode chart response: %v", models.ErrProviderFailure, err)
	}
	if parsed.Chart.Error != nil {
		// "Not found" is absence, not failure.
		return &parsed, nil
	}
	return &parsed, nil
}

// GetHistory fetches OHLCV history. An unknown symbol yields an empty
// series rather than an error.
func (p *ChartProvider) GetHistory(ctx context.Context, symbol, period, interval string) ([]models.PriceBar, error) {
	parsed, err := p.fetchChart(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := parsed.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]models.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}
		bars = append(bars, models.PriceBar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      at(quote.Open, i),
			High:      at(quote.High, i),
			Low:       at(quote.Low, i),
			Close:     quote.Close[i],
			Volume:    atInt(quote.Volume, i),
		})
	}
	return bars, nil
}

// GetQuote fetches the current price from the chart meta. Zero means
// the symbol is unknown.
func (p *ChartProvider) GetQuote(ctx context.Context, symbol string) (float64, error) {
	parsed, err := p.fetchChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return 0, err
	}
	if len(parsed.Chart.Result) == 0 {
		return 0, nil
	}
	return parsed.Chart.Result[0].Meta.RegularMarketPrice, nil
}

// GetBatchPrices fetches quotes one symbol at a time through the rate
// limiter. Failed symbols are omitted from the result.
func (p *ChartProvider) GetBatchPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(symbols))
	for _, s := range symbols {
		price, err := p.GetQuote(ctx, s)
		if err != nil {
			logger.Debug("Batch quote failed",
				logger.String("symbol", s),
				logger.ErrorField(err),
			)
			continue
		}
		if price > 0 {
			prices[s] = price
		}
	}
	return prices, nil
}

// GetTickerInfo returns metadata from the chart meta. The chart API
// carries no sector information; callers fall back to "Unknown".
func (p *ChartProvider) GetTickerInfo(ctx context.Context, symbol string) (models.TickerInfo, error) {
	parsed, err := p.fetchChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return models.TickerInfo{}, err
	}
	if len(parsed.Chart.Result) == 0 {
		return models.TickerInfo{}, nil
	}
	return models.TickerInfo{Name: parsed.Chart.Result[0].Meta.ShortName}, nil
}

// GetMarketStatus approximates NSE trading hours (09:15-15:30 IST,
// weekdays only).
func (p *ChartProvider) GetMarketStatus(ctx context.Context) (models.MarketStatus, error) {
	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Now().In(ist)

	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return models.MarketStatus{Status: "closed", NextEvent: "Opens Monday 09:15 IST"}, nil
	}
	minutes := now.Hour()*60 + now.Minute()
	openAt := 9*60 + 15
	closeAt := 15*60 + 30
	if minutes >= openAt && minutes < closeAt {
		return models.MarketStatus{Status: "open", NextEvent: "Closes 15:30 IST"}, nil
	}
	return models.MarketStatus{Status: "closed", NextEvent: "Opens 09:15 IST"}, nil
}

func at(series []float64, i int) float64 {
	if i < len(series) {
		return series[i]
	}
	return 0
}

func atInt(series []int64, i int) int64 {
	if i < len(series) {
		return series[i]
	}
	return 0
}
