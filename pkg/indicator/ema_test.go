package indicator

import (
	"math"
	"testing"
)

func TestEMA_SeededByFirstObservation(t *testing.T) {
	closes := []float64{100, 102, 104}
	out, err := EMA(closes, 9)
	if err != nil {
		t.Fatalf("EMA failed: %v", err)
	}
	if out[0] != 100.0 {
		t.Errorf("EMA should seed from first observation, got %f", out[0])
	}

	alpha := 2.0 / 10.0
	want := 100.0
	for i := 1; i < len(closes); i++ {
		want = (closes[i]-want)*alpha + want
		if math.Abs(out[i]-want) > 1e-12 {
			t.Errorf("Position %d: expected %f, got %f", i, want, out[i])
		}
	}
}

func TestEMA_ConstantSeries(t *testing.T) {
	closes := []float64{50, 50, 50, 50, 50}
	out, _ := EMA(closes, 3)
	for i, v := range out {
		if v != 50.0 {
			t.Errorf("Position %d: EMA of constant series should stay constant, got %f", i, v)
		}
	}
}

func TestEMA_InvalidPeriod(t *testing.T) {
	if _, err := EMA([]float64{1}, 0); err == nil {
		t.Error("Expected error for period < 1")
	}
}

func TestEMA_Determinism(t *testing.T) {
	closes := []float64{10, 12, 11, 13, 15, 14, 16}
	a, _ := EMA(closes, 4)
	b, _ := EMA(closes, 4)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("EMA not deterministic at position %d: %f vs %f", i, a[i], b[i])
		}
	}
}
