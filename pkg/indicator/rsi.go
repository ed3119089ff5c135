package indicator

import (
	"fmt"
	"math"
)

// RSI calculates the Relative Strength Index of a close series.
// RSI = 100 - (100 / (1 + RS)) where RS is the ratio of the rolling
// mean of gains to the rolling mean of losses over the period.
//
// The first `period` positions are undefined (one delta is consumed by
// the diff, period more by the rolling window). When the average loss
// is zero but gains exist, RS is infinite and the RSI is defined as
// 100. When both averages are zero (a flat window) the value stays
// undefined and callers substitute their neutral fallback.
func RSI(closes []float64, period int) ([]float64, error) {
	if period < 2 {
		return nil, fmt.Errorf("RSI period must be at least 2, got %d", period)
	}

	out := undefinedSeries(len(closes))
	if len(closes) <= period {
		return out, nil
	}

	var gainSum, lossSum float64
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gainSum += change
		} else {
			lossSum += -change
		}

		// Drop the delta that fell out of the rolling window.
		if i > period {
			old := closes[i-period] - closes[i-period-1]
			if old > 0 {
				gainSum -= old
			} else {
				lossSum -= -old
			}
		}

		// Rounding residue from the rolling subtraction can leave a tiny
		// negative sum; clamp so the zero-loss policy stays exact.
		if gainSum < 0 {
			gainSum = 0
		}
		if lossSum < 0 {
			lossSum = 0
		}

		if i < period {
			continue
		}

		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)
		switch {
		case avgLoss == 0 && avgGain == 0:
			// Flat window: 0/0, leave undefined.
		case avgLoss == 0:
			out[i] = 100.0
		default:
			rs := avgGain / avgLoss
			out[i] = math.Max(0.0, math.Min(100.0, 100.0-(100.0/(1.0+rs))))
		}
	}
	return out, nil
}
