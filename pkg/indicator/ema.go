package indicator

import "fmt"

// EMA calculates the Exponential Moving Average of a series.
// Smoothing factor is 2/(period+1) and the average is seeded by the
// first observation with no bias adjustment, so every position is
// defined.
func EMA(values []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, fmt.Errorf("EMA period must be at least 1, got %d", period)
	}

	out := make([]float64, len(values))
	if len(values) == 0 {
		return out, nil
	}

	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*alpha + out[i-1]
	}
	return out, nil
}
