package signal

import (
	"fmt"
	"math"

	"github.com/mohamedamin/halal-screener/internal/models"
)

// Weights assigns a contribution weight to each signal family. The
// defaults sum to 1.0 but the sum is not enforced; only negative
// weights are rejected.
type Weights struct {
	RSI  float64
	MACD float64
	MA   float64
	BB   float64
}

// DefaultWeights returns the standard family weighting.
func DefaultWeights() Weights {
	return Weights{RSI: 0.3, MACD: 0.3, MA: 0.2, BB: 0.2}
}

// Validate rejects weight maps no scorer should run with. A negative
// weight is a programming or deployment error, surfaced immediately.
func (w Weights) Validate() error {
	for _, v := range []float64{w.RSI, w.MACD, w.MA, w.BB} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: weights must be non-negative finite values, got %+v",
				models.ErrInvalidWeights, w)
		}
	}
	return nil
}

// contribution is the score swing of a fully weighted family.
const contribution = 20.0

// Score combines the four family signals into a 0-100 composite score
// and a five-level label. Starting from the neutral baseline of 50,
// each family adds contribution×weight on Buy and subtracts it on Sell;
// the result is clamped to [0,100].
func Score(signals models.SignalSet, weights Weights) (models.CompositeResult, error) {
	if err := weights.Validate(); err != nil {
		return models.CompositeResult{}, err
	}

	score := 50.0
	for _, fam := range []struct {
		sig    models.Signal
		weight float64
	}{
		{signals.RSI, weights.RSI},
		{signals.MACD, weights.MACD},
		{signals.MA, weights.MA},
		{signals.BB, weights.BB},
	} {
		switch fam.sig {
		case models.SignalBuy:
			score += contribution * fam.weight
		case models.SignalSell:
			score -= contribution * fam.weight
		}
	}

	score = math.Max(0, math.Min(100, score))
	rounded := int(math.Round(score))

	return models.CompositeResult{
		Score: rounded,
		Label: labelFor(rounded),
	}, nil
}

func labelFor(score int) string {
	switch {
	case score >= 80:
		return models.LabelStrongBuy
	case score >= 60:
		return models.LabelBuy
	case score <= 20:
		return models.LabelStrongSell
	case score <= 40:
		return models.LabelSell
	default:
		return models.LabelHold
	}
}
