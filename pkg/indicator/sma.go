package indicator

import "fmt"

// SMA calculates the Simple Moving Average of a series.
// Output position i holds the arithmetic mean of values[i-period+1..i];
// the first period-1 positions are undefined.
func SMA(values []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, fmt.Errorf("SMA period must be at least 1, got %d", period)
	}

	out := undefinedSeries(len(values))

	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out, nil
}
