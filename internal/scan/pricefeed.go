package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mohamedamin/halal-screener/internal/data"
	"github.com/mohamedamin/halal-screener/pkg/logger"
)

// PriceListener receives live price updates from the feed. The
// websocket gateway implements this to push updates to clients.
type PriceListener interface {
	OnPrices(prices map[string]float64)
}

// PriceFeedConfig holds configuration for the live price feed.
type PriceFeedConfig struct {
	BatchSize      int           // symbols per provider request (default: 10)
	BatchPause     time.Duration // pause between batches (default: 500ms)
	UpdateInterval time.Duration // pause between full rounds (default: 10s)
	ExchangeSuffix string
}

// DefaultPriceFeedConfig returns default configuration.
func DefaultPriceFeedConfig() PriceFeedConfig {
	return PriceFeedConfig{
		BatchSize:      10,
		BatchPause:     500 * time.Millisecond,
		UpdateInterval: 10 * time.Second,
	}
}

// PriceFeed polls the provider for live quotes across the active
// universe in small batches and forwards each batch to the listener.
// Batching plus the inter-batch pause keeps the provider request rate
// flat regardless of universe size.
type PriceFeed struct {
	provider data.Provider
	universe *Universe
	listener PriceListener
	config   PriceFeedConfig

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewPriceFeed creates a price feed.
func NewPriceFeed(provider data.Provider, universe *Universe, listener PriceListener, config PriceFeedConfig) *PriceFeed {
	if config.BatchSize <= 0 {
		config.BatchSize = 10
	}
	if config.UpdateInterval <= 0 {
		config.UpdateInterval = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &PriceFeed{
		provider: provider,
		universe: universe,
		listener: listener,
		config:   config,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the polling loop.
func (f *PriceFeed) Start() error {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return fmt.Errorf("price feed is already running")
	}
	f.running = true
	f.mu.Unlock()

	logger.Info("Starting price feed",
		logger.Int("batch_size", f.config.BatchSize),
		logger.Duration("update_interval", f.config.UpdateInterval),
	)

	f.wg.Add(1)
	go f.run()
	return nil
}

// Stop stops the polling loop.
func (f *PriceFeed) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	f.running = false
	f.mu.Unlock()

	f.cancel()
	f.wg.Wait()
	logger.Info("Price feed stopped")
}

func (f *PriceFeed) run() {
	defer f.wg.Done()

	for {
		f.Round(f.ctx)

		select {
		case <-f.ctx.Done():
			return
		case <-time.After(f.config.UpdateInterval):
		}
	}
}

// Round polls the whole universe once, batch by batch. Exported for the
// tests and for forcing a refresh.
func (f *PriceFeed) Round(ctx context.Context) {
	symbols := f.universe.Symbols()

	for start := 0; start < len(symbols); start += f.config.BatchSize {
		end := start + f.config.BatchSize
		if end > len(symbols) {
			end = len(symbols)
		}

		batch := make([]string, 0, end-start)
		for _, s := range symbols[start:end] {
			batch = append(batch, data.ProviderSymbol(s, f.config.ExchangeSuffix))
		}

		prices, err := f.provider.GetBatchPrices(ctx, batch)
		if err != nil {
			logger.Warn("Price batch failed", logger.ErrorField(err))
		} else if len(prices) > 0 && f.listener != nil {
			f.listener.OnPrices(f.cleanKeys(prices))
		}

		if end < len(symbols) && f.config.BatchPause > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(f.config.BatchPause):
			}
		}
	}
}

// cleanKeys strips the exchange suffix so listeners see the same symbol
// form the rest of the system uses.
func (f *PriceFeed) cleanKeys(prices map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(prices))
	for sym, price := range prices {
		out[data.CleanSymbol(sym, f.config.ExchangeSuffix)] = price
	}
	return out
}
