// Package compliance implements the Shariah financial-ratio screen and
// the gate that suppresses trading signals for non-compliant
// instruments.
package compliance

import (
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/mohamedamin/halal-screener/internal/models"
)

// Fundamentals ratio ranges for the synthetic source. Real financial
// statements would replace this; the screener contract stays the same.
const (
	minDebtRatio = 10.0
	maxDebtRatio = 50.0
	minCashRatio = 5.0
	maxCashRatio = 40.0
)

// FundamentalsSource yields the financial ratios an instrument is
// screened on.
type FundamentalsSource interface {
	Ratios(symbol string) (debtRatio, cashRatio float64)
}

// SeededFundamentals is a deterministic fundamentals source: ratios are
// derived from a hash of the symbol, so the same symbol always screens
// the same way across runs and processes.
type SeededFundamentals struct{}

// Ratios returns the synthetic debt and cash ratios for a symbol,
// rounded to one decimal place.
func (SeededFundamentals) Ratios(symbol string) (float64, float64) {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	debt := round1(minDebtRatio + rng.Float64()*(maxDebtRatio-minDebtRatio))
	cash := round1(minCashRatio + rng.Float64()*(maxCashRatio-minCashRatio))
	return debt, cash
}

// Screener applies the pass/fail thresholds to a fundamentals source.
type Screener struct {
	source   FundamentalsSource
	maxDebt  float64
	maxCash  float64
}

// NewScreener creates a screener with the given thresholds.
func NewScreener(source FundamentalsSource, maxDebtRatio, maxCashRatio float64) *Screener {
	return &Screener{
		source:  source,
		maxDebt: maxDebtRatio,
		maxCash: maxCashRatio,
	}
}

// Check screens a symbol. The result is independent of price action.
func (s *Screener) Check(symbol string) models.Compliance {
	debt, cash := s.source.Ratios(symbol)
	passed := debt < s.maxDebt && cash < s.maxCash

	status := "Halal"
	if !passed {
		status = "Non-Halal"
	}
	return models.Compliance{
		Status:    status,
		DebtRatio: debt,
		CashRatio: cash,
		Passed:    passed,
	}
}

// ApplyGate produces the final signal and score from a composite result
// and a compliance check. A failed screen overrides the composite
// entirely: the final signal becomes the non-actionable marker and the
// score is forced to zero. It never merges with the technical result.
func ApplyGate(composite models.CompositeResult, c models.Compliance) (label string, score int) {
	if !c.Passed {
		return models.LabelNA, 0
	}
	return composite.Label, composite.Score
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
