package indicator

import (
	"fmt"
	"math"
)

// BollingerBands calculates volatility bands around a simple moving
// average: middle = SMA(period), upper/lower = middle ± mult times the
// rolling sample standard deviation over the same window. The first
// period-1 positions of all three series are undefined.
func BollingerBands(closes []float64, period int, mult float64) (middle, upper, lower []float64, err error) {
	if period < 2 {
		return nil, nil, nil, fmt.Errorf("Bollinger period must be at least 2, got %d", period)
	}
	if mult <= 0 {
		return nil, nil, nil, fmt.Errorf("Bollinger multiplier must be positive, got %f", mult)
	}

	middle, err = SMA(closes, period)
	if err != nil {
		return nil, nil, nil, err
	}

	upper = undefinedSeries(len(closes))
	lower = undefinedSeries(len(closes))

	for i := period - 1; i < len(closes); i++ {
		mean := middle[i]
		var sq float64
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - mean
			sq += d * d
		}
		// Sample standard deviation (N-1), matching pandas rolling std.
		std := math.Sqrt(sq / float64(period-1))
		upper[i] = mean + mult*std
		lower[i] = mean - mult*std
	}
	return middle, upper, lower, nil
}
