package scan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedamin/halal-screener/internal/compliance"
	"github.com/mohamedamin/halal-screener/internal/models"
	"github.com/mohamedamin/halal-screener/internal/signal"
)

// stubProvider serves canned histories and batch prices per symbol.
// Keys are provider-form symbols (with exchange suffix).
type stubProvider struct {
	histories map[string][]models.PriceBar
	errs      map[string]error
	batch     map[string]float64
	panicOn   string
}

func (p *stubProvider) GetName() string { return "stub" }

func (p *stubProvider) GetHistory(ctx context.Context, symbol, period, interval string) ([]models.PriceBar, error) {
	if symbol == p.panicOn {
		panic("corrupt series")
	}
	if err := p.errs[symbol]; err != nil {
		return nil, err
	}
	return p.histories[symbol], nil
}

func (p *stubProvider) GetQuote(ctx context.Context, symbol string) (float64, error) {
	return p.batch[symbol], nil
}

func (p *stubProvider) GetBatchPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, s := range symbols {
		if price, ok := p.batch[s]; ok {
			out[s] = price
		}
	}
	return out, nil
}

func (p *stubProvider) GetTickerInfo(ctx context.Context, symbol string) (models.TickerInfo, error) {
	return models.TickerInfo{}, nil
}

func (p *stubProvider) GetMarketStatus(ctx context.Context) (models.MarketStatus, error) {
	return models.MarketStatus{Status: "closed"}, nil
}

// passingFundamentals always clears the compliance thresholds.
type passingFundamentals struct{}

func (passingFundamentals) Ratios(symbol string) (float64, float64) { return 20.0, 10.0 }

// failingFundamentals always breaches the debt threshold.
type failingFundamentals struct{}

func (failingFundamentals) Ratios(symbol string) (float64, float64) { return 60.0, 10.0 }

func flatHistory(n int, price float64) []models.PriceBar {
	bars := make([]models.PriceBar, n)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = models.PriceBar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    1000,
		}
	}
	return bars
}

func testAssembler(t *testing.T, provider *stubProvider, funds compliance.FundamentalsSource) *Assembler {
	t.Helper()
	screener := compliance.NewScreener(funds, 50, 35)
	a, err := NewAssembler(provider, screener, AssemblerConfig{
		MinHistory:     50,
		HistoryPeriod:  "1y",
		ExchangeSuffix: ".NS",
		SparklineLen:   20,
		Weights:        signal.DefaultWeights(),
	})
	require.NoError(t, err)
	return a
}

func TestAssemble_FlatSeriesIsNeutral(t *testing.T) {
	provider := &stubProvider{histories: map[string][]models.PriceBar{
		"A.NS": flatHistory(60, 100),
	}}
	a := testAssembler(t, provider, passingFundamentals{})

	snap, err := a.Assemble(context.Background(), "A")
	require.NoError(t, err)

	assert.Equal(t, "A", snap.Symbol)
	assert.Equal(t, 100.0, snap.Price)

	tech := snap.Technicals
	// A perfectly flat series carries no directional information: RSI
	// falls back to the neutral midpoint and every family holds.
	assert.Equal(t, 50.0, tech.RSI)
	assert.Equal(t, models.SignalHold, tech.Signals.RSI)
	assert.Equal(t, models.SignalHold, tech.Signals.MACD)
	assert.Equal(t, models.SignalHold, tech.Signals.MA)
	assert.Equal(t, models.SignalHold, tech.Signals.BB)
	assert.Equal(t, 50, tech.Composite.Score)
	assert.Equal(t, models.LabelHold, tech.Composite.Label)
	assert.Equal(t, models.LabelHold, tech.FinalLabel)
	assert.Equal(t, 50, tech.FinalScore)
	assert.Nil(t, tech.Risk)

	assert.Len(t, snap.PriceHistory, 20)
	assert.True(t, snap.Compliance.Passed)
}

func TestAssemble_InsufficientHistory(t *testing.T) {
	provider := &stubProvider{histories: map[string][]models.PriceBar{
		"B.NS": flatHistory(10, 100),
	}}
	a := testAssembler(t, provider, passingFundamentals{})

	_, err := a.Assemble(context.Background(), "B")
	assert.ErrorIs(t, err, models.ErrInsufficientHistory)
}

func TestAssemble_ProviderFailure(t *testing.T) {
	provider := &stubProvider{errs: map[string]error{
		"A.NS": errors.New("connection reset"),
	}}
	a := testAssembler(t, provider, passingFundamentals{})

	_, err := a.Assemble(context.Background(), "A")
	assert.ErrorIs(t, err, models.ErrProviderFailure)
}

func TestAssemble_ComplianceGateOverridesComposite(t *testing.T) {
	provider := &stubProvider{histories: map[string][]models.PriceBar{
		"A.NS": flatHistory(60, 100),
	}}
	a := testAssembler(t, provider, failingFundamentals{})

	snap, err := a.Assemble(context.Background(), "A")
	require.NoError(t, err)

	assert.False(t, snap.Compliance.Passed)
	assert.Equal(t, models.LabelNA, snap.Technicals.FinalLabel)
	assert.Equal(t, 0, snap.Technicals.FinalScore)
	assert.Nil(t, snap.Technicals.Risk)
	// The composite itself is reported untouched so the UI can still
	// show the technical view.
	assert.Equal(t, 50, snap.Technicals.Composite.Score)
}

func TestNewAssembler_RejectsInvalidWeights(t *testing.T) {
	provider := &stubProvider{}
	screener := compliance.NewScreener(passingFundamentals{}, 50, 35)

	_, err := NewAssembler(provider, screener, AssemblerConfig{
		MinHistory:    50,
		HistoryPeriod: "1y",
		Weights:       signal.Weights{RSI: -1, MACD: 0.3, MA: 0.2, BB: 0.2},
	})
	assert.ErrorIs(t, err, models.ErrInvalidWeights)
}

func testOrchestrator(t *testing.T, provider *stubProvider, symbols []string) (*Orchestrator, *MemoryCache) {
	t.Helper()
	a := testAssembler(t, provider, passingFundamentals{})
	cache := NewMemoryCache()
	universe := NewUniverse("test", symbols)
	o := NewOrchestrator(a, universe, cache, nil, OrchestratorConfig{
		WorkerCount:  2,
		ScanInterval: time.Hour,
		ScanTimeout:  5 * time.Second,
	})
	return o, cache
}

func TestRunPass_SkipsFailingSymbols(t *testing.T) {
	provider := &stubProvider{histories: map[string][]models.PriceBar{
		"A.NS": flatHistory(60, 100),
		// B returns an empty history; no entry needed.
	}}
	o, cache := testOrchestrator(t, provider, []string{"A", "B"})

	result := o.RunPass(context.Background(), []string{"A", "B"})

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Skipped)
	assert.NotEmpty(t, result.PassID)

	require.Len(t, result.Snapshots, 1)
	assert.Equal(t, "A", result.Snapshots[0].Symbol)

	n, err := cache.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	snap, err := cache.Get("A")
	require.NoError(t, err)
	require.NotNil(t, snap)

	missing, err := cache.Get("B")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRunPass_Idempotent(t *testing.T) {
	provider := &stubProvider{histories: map[string][]models.PriceBar{
		"A.NS": flatHistory(60, 100),
	}}
	o, cache := testOrchestrator(t, provider, []string{"A"})

	o.RunPass(context.Background(), []string{"A"})
	first, err := cache.Get("A")
	require.NoError(t, err)
	require.NotNil(t, first)

	o.RunPass(context.Background(), []string{"A"})
	second, err := cache.Get("A")
	require.NoError(t, err)
	require.NotNil(t, second)

	// Same input series, same result; only the generation timestamp
	// moves.
	assert.Equal(t, first.Price, second.Price)
	assert.Equal(t, first.Technicals, second.Technicals)
	assert.Equal(t, first.Compliance, second.Compliance)
	assert.Equal(t, first.PriceHistory, second.PriceHistory)
	assert.False(t, second.GeneratedAt.Before(first.GeneratedAt))
}

func TestRunPass_ContainsPanic(t *testing.T) {
	provider := &stubProvider{
		histories: map[string][]models.PriceBar{
			"A.NS": flatHistory(60, 100),
		},
		panicOn: "BAD.NS",
	}
	o, cache := testOrchestrator(t, provider, []string{"A", "BAD"})

	result := o.RunPass(context.Background(), []string{"A", "BAD"})

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Skipped)

	snap, err := cache.Get("A")
	require.NoError(t, err)
	assert.NotNil(t, snap)
}

func TestRunPass_KeepsStaleSnapshotOnFailure(t *testing.T) {
	provider := &stubProvider{histories: map[string][]models.PriceBar{
		"A.NS": flatHistory(60, 100),
	}}
	o, cache := testOrchestrator(t, provider, []string{"A"})

	o.RunPass(context.Background(), []string{"A"})
	stale, err := cache.Get("A")
	require.NoError(t, err)
	require.NotNil(t, stale)

	provider.errs = map[string]error{"A.NS": errors.New("timeout")}
	result := o.RunPass(context.Background(), []string{"A"})
	assert.Equal(t, 1, result.Skipped)

	kept, err := cache.Get("A")
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, stale.GeneratedAt, kept.GeneratedAt)
}

// recordingSink captures everything the orchestrator persists.
type recordingSink struct {
	saved []string
}

func (s *recordingSink) SaveSnapshot(ctx context.Context, passID string, snap *models.Snapshot) error {
	s.saved = append(s.saved, snap.Symbol)
	return nil
}

func TestRunPass_ForwardsToHistorySink(t *testing.T) {
	provider := &stubProvider{histories: map[string][]models.PriceBar{
		"A.NS": flatHistory(60, 100),
	}}
	a := testAssembler(t, provider, passingFundamentals{})
	sink := &recordingSink{}
	o := NewOrchestrator(a, NewUniverse("test", []string{"A"}), NewMemoryCache(), sink, OrchestratorConfig{
		WorkerCount: 1,
	})

	o.RunPass(context.Background(), []string{"A"})
	assert.Equal(t, []string{"A"}, sink.saved)
}

func TestOrchestrator_StartStop(t *testing.T) {
	provider := &stubProvider{histories: map[string][]models.PriceBar{
		"A.NS": flatHistory(60, 100),
	}}
	o, cache := testOrchestrator(t, provider, []string{"A"})

	require.NoError(t, o.Start())
	assert.Error(t, o.Start()) // double start

	// The initial pass runs immediately on start.
	deadline := time.Now().Add(2 * time.Second)
	for {
		n, err := cache.Len()
		require.NoError(t, err)
		if n == 1 || time.Now().After(deadline) {
			assert.Equal(t, 1, n)
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	o.Stop()
	assert.False(t, o.IsRunning())

	stats := o.GetStats()
	assert.GreaterOrEqual(t, stats.Passes, int64(1))
	assert.NotEmpty(t, stats.LastPassID)
}
