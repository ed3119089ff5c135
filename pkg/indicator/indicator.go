// Package indicator provides pure technical-analysis transforms over
// price and volume series.
//
// Every function returns an output series aligned 1:1 by position with
// its input. Positions that lack enough history for the requested
// window hold NaN; callers decide the substitution policy for the
// undefined region. All functions are deterministic and tolerate
// series shorter than the window without error.
package indicator

import "math"

// Undefined is the marker value for positions lacking enough history.
func Undefined() float64 {
	return math.NaN()
}

// IsDefined reports whether an indicator value is usable.
func IsDefined(v float64) bool {
	return !math.IsNaN(v)
}

// Last returns the final value of a series, or NaN for an empty series.
func Last(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}

// Prev returns the next-to-last value of a series, or NaN if the series
// has fewer than two entries.
func Prev(series []float64) float64 {
	if len(series) < 2 {
		return math.NaN()
	}
	return series[len(series)-2]
}

// undefinedSeries returns a series of the given length filled with NaN.
func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
