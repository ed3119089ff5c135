// Package scan orchestrates the per-symbol snapshot pipeline: price
// history in, indicators, signals, composite score, compliance gate and
// risk levels out.
package scan

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mohamedamin/halal-screener/internal/compliance"
	"github.com/mohamedamin/halal-screener/internal/data"
	"github.com/mohamedamin/halal-screener/internal/models"
	"github.com/mohamedamin/halal-screener/internal/signal"
	"github.com/mohamedamin/halal-screener/pkg/indicator"
)

// Default indicator parameters.
const (
	rsiPeriod     = 14
	macdFast      = 12
	macdSlow      = 26
	macdSignal    = 9
	bbPeriod      = 20
	bbMultiplier  = 2.0
	volumePeriod  = 20
	smaShort      = 20
	smaTrend      = 50
	smaLong       = 200
	neutralRSI    = 50.0
)

// AssemblerConfig holds the per-pipeline settings.
type AssemblerConfig struct {
	MinHistory     int           // minimum observations for a snapshot
	HistoryPeriod  string        // provider period code, e.g. "1y"
	ExchangeSuffix string        // appended for provider queries
	SparklineLen   int           // closes kept for the sparkline
	Weights        signal.Weights
}

// Assembler computes one immutable snapshot per symbol and pass. It
// owns the fetched price series for the duration of a computation and
// shares no mutable state between symbols, so a single assembler is
// safe for concurrent use.
type Assembler struct {
	provider data.Provider
	screener *compliance.Screener
	cfg      AssemblerConfig
}

// NewAssembler creates an assembler. An invalid weight map is a
// configuration fault and is rejected here, before any scan runs.
func NewAssembler(provider data.Provider, screener *compliance.Screener, cfg AssemblerConfig) (*Assembler, error) {
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	if cfg.MinHistory < 2 {
		return nil, fmt.Errorf("min history must be at least 2, got %d", cfg.MinHistory)
	}
	if cfg.SparklineLen < 1 {
		cfg.SparklineLen = 20
	}
	return &Assembler{provider: provider, screener: screener, cfg: cfg}, nil
}

// Assemble runs the full pipeline for one symbol. It returns
// ErrProviderFailure when the history fetch fails,
// ErrInsufficientHistory when fewer than MinHistory observations came
// back, and ErrComputationFault for unexpected numeric failures. All
// three are symbol-level conditions the orchestrator contains.
func (a *Assembler) Assemble(ctx context.Context, symbol string) (*models.Snapshot, error) {
	providerSymbol := data.ProviderSymbol(symbol, a.cfg.ExchangeSuffix)
	clean := data.CleanSymbol(symbol, a.cfg.ExchangeSuffix)

	bars, err := a.provider.GetHistory(ctx, providerSymbol, a.cfg.HistoryPeriod, "1d")
	if err != nil {
		return nil, fmt.Errorf("%w: history for %s: %v", models.ErrProviderFailure, clean, err)
	}
	if len(bars) < a.cfg.MinHistory {
		return nil, fmt.Errorf("%w: %s has %d of %d observations",
			models.ErrInsufficientHistory, clean, len(bars), a.cfg.MinHistory)
	}

	closes := make([]float64, len(bars))
	volumes := make([]int64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
	}
	price := closes[len(closes)-1]

	tech, err := a.computeTechnicals(closes, volumes, price)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrComputationFault, clean, err)
	}

	// Compliance is screened independently of the technicals, then
	// gates the final signal and score.
	check := a.screener.Check(clean)
	tech.FinalLabel, tech.FinalScore = compliance.ApplyGate(tech.Composite, check)

	// Risk parameters only exist for actionable, compliant results.
	if tech.FinalLabel == models.LabelBuy || tech.FinalLabel == models.LabelStrongBuy {
		risk := signal.DeriveRisk(price, tech.RSI)
		tech.Risk = &risk
	}

	info := a.tickerInfo(ctx, providerSymbol, clean)

	return &models.Snapshot{
		Symbol:       clean,
		Name:         info.Name,
		Sector:       info.Sector,
		Price:        round2(price),
		Compliance:   check,
		Technicals:   tech,
		PriceHistory: sparkline(closes, a.cfg.SparklineLen),
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// computeTechnicals runs the indicator and signal stages over the close
// and volume series.
func (a *Assembler) computeTechnicals(closes []float64, volumes []int64, price float64) (models.Technicals, error) {
	var tech models.Technicals

	rsiSeries, err := indicator.RSI(closes, rsiPeriod)
	if err != nil {
		return tech, err
	}
	rsi := indicator.Last(rsiSeries)
	if !indicator.IsDefined(rsi) {
		// Too little movement or history for a defined RSI; fall back
		// to the neutral midpoint.
		rsi = neutralRSI
	}

	sma20Series, err := indicator.SMA(closes, smaShort)
	if err != nil {
		return tech, err
	}
	sma50Series, err := indicator.SMA(closes, smaTrend)
	if err != nil {
		return tech, err
	}
	sma200Series, err := indicator.SMA(closes, smaLong)
	if err != nil {
		return tech, err
	}
	sma50 := indicator.Last(sma50Series)
	sma200 := indicator.Last(sma200Series)

	macdLine, signalLine, histogram, err := indicator.MACD(closes, macdFast, macdSlow, macdSignal)
	if err != nil {
		return tech, err
	}

	_, upper, lower, err := indicator.BollingerBands(closes, bbPeriod, bbMultiplier)
	if err != nil {
		return tech, err
	}

	volMASeries, err := indicator.VolumeMA(volumes, volumePeriod)
	if err != nil {
		return tech, err
	}

	signals := models.SignalSet{
		RSI:  signal.FromRSI(price, rsi, sma50),
		MACD: signal.FromMACD(indicator.Last(macdLine), indicator.Last(signalLine), indicator.Prev(macdLine), indicator.Prev(signalLine)),
		MA:   signal.FromMACross(sma50, sma200),
		BB:   signal.FromBollinger(price, indicator.Last(lower), indicator.Last(upper)),
	}

	composite, err := signal.Score(signals, a.cfg.Weights)
	if err != nil {
		return tech, err
	}

	tech = models.Technicals{
		RSI:        round1(rsi),
		SMA20:      round2(indicator.Last(sma20Series)),
		SMA50:      round2(sma50),
		SMA200:     round2(sma200),
		MACD:       round2(indicator.Last(macdLine)),
		MACDSignal: round2(indicator.Last(signalLine)),
		MACDHist:   round2(indicator.Last(histogram)),
		BBUpper:    round2(indicator.Last(upper)),
		BBLower:    round2(indicator.Last(lower)),
		Volume:     volumes[len(volumes)-1],
		VolumeMA:   math.Round(zeroIfUndefined(indicator.Last(volMASeries))),
		Signals:    signals,
		Composite:  composite,
	}
	return tech, nil
}

// tickerInfo fetches metadata with graceful fallbacks; metadata is
// cosmetic and must never fail a snapshot.
func (a *Assembler) tickerInfo(ctx context.Context, providerSymbol, clean string) models.TickerInfo {
	info, err := a.provider.GetTickerInfo(ctx, providerSymbol)
	if err != nil || info.Name == "" {
		info.Name = clean
	}
	if info.Sector == "" {
		info.Sector = "Unknown"
	}
	return info
}

func sparkline(closes []float64, n int) []float64 {
	if len(closes) > n {
		closes = closes[len(closes)-n:]
	}
	out := make([]float64, len(closes))
	for i, c := range closes {
		out[i] = round2(c)
	}
	return out
}

func zeroIfUndefined(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(zeroIfUndefined(v)*10) / 10
}

func round2(v float64) float64 {
	return math.Round(zeroIfUndefined(v)*100) / 100
}
