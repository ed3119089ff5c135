// Package data defines the market-data provider capability and its
// concrete variants. The scoring core depends only on the Provider
// interface, never on a concrete implementation.
package data

import (
	"context"
	"errors"

	"github.com/mohamedamin/halal-screener/internal/config"
	"github.com/mohamedamin/halal-screener/internal/models"
)

var (
	// ErrUnknownProvider is returned for an unregistered provider type.
	ErrUnknownProvider = errors.New("unknown provider type")
)

// Provider is the capability interface the scoring core consumes.
//
// Absence is never an error condition: an unknown symbol yields an
// empty history, a zero quote, or a partial batch result. Errors are
// reserved for transport failures and are always contained to the
// symbol being processed.
type Provider interface {
	// GetName returns the provider type (e.g. "mock", "yahoo")
	GetName() string

	// GetHistory fetches ordered OHLCV history for a symbol. The result
	// is strictly increasing in timestamp and may be empty on failure
	// or for an unknown symbol.
	GetHistory(ctx context.Context, symbol, period, interval string) ([]models.PriceBar, error)

	// GetQuote fetches a single current price. Zero means unknown.
	GetQuote(ctx context.Context, symbol string) (float64, error)

	// GetBatchPrices fetches current prices for multiple symbols.
	// Partial results are allowed; missing symbols are simply absent.
	GetBatchPrices(ctx context.Context, symbols []string) (map[string]float64, error)

	// GetTickerInfo returns basic instrument metadata.
	GetTickerInfo(ctx context.Context, symbol string) (models.TickerInfo, error)

	// GetMarketStatus reports whether the market is open.
	GetMarketStatus(ctx context.Context) (models.MarketStatus, error)
}

// FactoryFunc builds a provider from its configuration.
type FactoryFunc func(cfg config.ProviderConfig) (Provider, error)

// Factory creates provider instances by registered type.
type Factory struct {
	factories map[string]FactoryFunc
}

// NewFactory creates a factory with the built-in providers registered.
func NewFactory() *Factory {
	f := &Factory{factories: make(map[string]FactoryFunc)}
	f.Register("mock", func(cfg config.ProviderConfig) (Provider, error) {
		return NewMockProvider(), nil
	})
	f.Register("yahoo", func(cfg config.ProviderConfig) (Provider, error) {
		return NewChartProvider("yahoo", cfg), nil
	})
	// The broker gateway exposes a chart API compatible with the live
	// provider; only the base URL differs.
	f.Register("broker", func(cfg config.ProviderConfig) (Provider, error) {
		return NewChartProvider("broker", cfg), nil
	})
	return f
}

// Register registers a provider constructor, replacing any existing one
// of the same type.
func (f *Factory) Register(providerType string, fn FactoryFunc) {
	f.factories[providerType] = fn
}

// Create builds a provider of the given type.
func (f *Factory) Create(providerType string, cfg config.ProviderConfig) (Provider, error) {
	fn, ok := f.factories[providerType]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return fn(cfg)
}

// List returns the registered provider types.
func (f *Factory) List() []string {
	types := make([]string, 0, len(f.factories))
	for t := range f.factories {
		types = append(types, t)
	}
	return types
}
