package data

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/mohamedamin/halal-screener/internal/models"
)

// MockProvider generates deterministic synthetic market data: the same
// symbol always yields the same price path, so scans and tests are
// reproducible without network access.
type MockProvider struct {
	now func() time.Time
}

// NewMockProvider creates a mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{now: time.Now}
}

// GetName returns the provider type
func (m *MockProvider) GetName() string {
	return "mock"
}

// symbolSeed derives a stable seed from a symbol.
func symbolSeed(symbol string) int64 {
	var seed int64
	for _, c := range symbol {
		seed += int64(c)
	}
	return seed
}

// GetHistory generates a seeded random-walk OHLCV series ending today.
func (m *MockProvider) GetHistory(ctx context.Context, symbol, period, interval string) ([]models.PriceBar, error) {
	days := 365
	switch period {
	case "1mo", "1m":
		days = 30
	case "3mo", "3m":
		days = 90
	case "5d":
		days = 5
	}

	rng := rand.New(rand.NewSource(symbolSeed(symbol)))
	end := m.now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -days+1)

	bars := make([]models.PriceBar, 0, days)
	price := 1000.0
	for i := 0; i < days; i++ {
		price *= 1 + rng.NormFloat64()*0.02
		price = math.Max(price, 1.0)
		bars = append(bars, models.PriceBar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      price,
			High:      price * 1.01,
			Low:       price * 0.99,
			Close:     price,
			Volume:    1000 + rng.Int63n(99000),
		})
	}
	return bars, nil
}

// GetQuote returns a seeded price that drifts hourly.
func (m *MockProvider) GetQuote(ctx context.Context, symbol string) (float64, error) {
	rng := rand.New(rand.NewSource(symbolSeed(symbol) + int64(m.now().Hour())))
	price := 1000.0 * (1 + rng.NormFloat64()*0.05)
	return math.Round(price*100) / 100, nil
}

// GetBatchPrices returns quotes for every requested symbol.
func (m *MockProvider) GetBatchPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(symbols))
	for _, s := range symbols {
		p, err := m.GetQuote(ctx, s)
		if err != nil {
			continue
		}
		prices[s] = p
	}
	return prices, nil
}

// GetTickerInfo returns synthetic metadata.
func (m *MockProvider) GetTickerInfo(ctx context.Context, symbol string) (models.TickerInfo, error) {
	return models.TickerInfo{
		Name:   "Mock " + symbol + " Ltd",
		Sector: "Technology",
	}, nil
}

// GetMarketStatus always reports an open market.
func (m *MockProvider) GetMarketStatus(ctx context.Context) (models.MarketStatus, error) {
	return models.MarketStatus{Status: "open", NextEvent: "Closes in 4h"}, nil
}
