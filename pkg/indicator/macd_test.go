package indicator

import (
	"math"
	"testing"
)

func TestMACD_HistogramIdentity(t *testing.T) {
	closes := []float64{100, 102, 101, 105, 107, 104, 109, 111, 108, 113, 116, 112, 118, 121}
	macd, signal, hist, err := MACD(closes, 12, 26, 9)
	if err != nil {
		t.Fatalf("MACD failed: %v", err)
	}
	// Histogram is an algebraic identity, not an approximation.
	for i := range closes {
		if hist[i] != macd[i]-signal[i] {
			t.Errorf("Position %d: histogram %f != macd-signal %f", i, hist[i], macd[i]-signal[i])
		}
	}
}

func TestMACD_FlatSeriesIsZero(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 250.0
	}
	macd, signal, hist, _ := MACD(closes, 12, 26, 9)
	for i := range closes {
		if macd[i] != 0 || signal[i] != 0 || hist[i] != 0 {
			t.Errorf("Position %d: flat series should give zero MACD, got (%f, %f, %f)",
				i, macd[i], signal[i], hist[i])
		}
	}
}

func TestMACD_MatchesComponentEMAs(t *testing.T) {
	closes := []float64{10, 11, 13, 12, 14, 16, 15, 17, 19, 18, 20, 22}
	macd, _, _, _ := MACD(closes, 3, 6, 2)
	fast, _ := EMA(closes, 3)
	slow, _ := EMA(closes, 6)
	for i := range closes {
		want := fast[i] - slow[i]
		if math.Abs(macd[i]-want) > 1e-12 {
			t.Errorf("Position %d: expected %f, got %f", i, want, macd[i])
		}
	}
}

func TestMACD_InvalidPeriods(t *testing.T) {
	if _, _, _, err := MACD([]float64{1, 2}, 0, 26, 9); err == nil {
		t.Error("Expected error for zero fast period")
	}
	if _, _, _, err := MACD([]float64{1, 2}, 26, 12, 9); err == nil {
		t.Error("Expected error for fast >= slow")
	}
}
