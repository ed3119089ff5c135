package indicator

import (
	"math"
	"testing"
)

func TestSMA_InvalidPeriod(t *testing.T) {
	if _, err := SMA([]float64{1, 2, 3}, 0); err == nil {
		t.Error("Expected error for period < 1")
	}
}

func TestSMA_LeadingUndefined(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104}
	out, err := SMA(closes, 5)
	if err != nil {
		t.Fatalf("SMA failed: %v", err)
	}
	if len(out) != len(closes) {
		t.Fatalf("Expected aligned output, got len %d", len(out))
	}
	for i := 0; i < 4; i++ {
		if !math.IsNaN(out[i]) {
			t.Errorf("Position %d should be undefined, got %f", i, out[i])
		}
	}
	expected := (100.0 + 101.0 + 102.0 + 103.0 + 104.0) / 5.0
	if out[4] != expected {
		t.Errorf("Expected SMA %f, got %f", expected, out[4])
	}
}

func TestSMA_RollingWindow(t *testing.T) {
	closes := make([]float64, 10)
	for i := range closes {
		closes[i] = 100.0 + float64(i)
	}
	out, _ := SMA(closes, 5)

	// Every defined position is the mean of the prior 5 closes.
	for i := 4; i < len(closes); i++ {
		var sum float64
		for j := i - 4; j <= i; j++ {
			sum += closes[j]
		}
		expected := sum / 5.0
		if math.Abs(out[i]-expected) > 1e-9 {
			t.Errorf("Position %d: expected %f, got %f", i, expected, out[i])
		}
	}
}

func TestSMA_ShortSeries(t *testing.T) {
	out, err := SMA([]float64{100, 101}, 50)
	if err != nil {
		t.Fatalf("SMA should tolerate short series: %v", err)
	}
	for i, v := range out {
		if !math.IsNaN(v) {
			t.Errorf("Position %d should be undefined for short series, got %f", i, v)
		}
	}
}

func TestSMA_EmptySeries(t *testing.T) {
	out, err := SMA(nil, 5)
	if err != nil {
		t.Fatalf("SMA should tolerate empty series: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Expected empty output, got len %d", len(out))
	}
}
