package indicator

import (
	"math"
	"testing"
)

func TestVolumeMA_Basic(t *testing.T) {
	volumes := []int64{1000, 2000, 3000, 4000, 5000}
	out, err := VolumeMA(volumes, 5)
	if err != nil {
		t.Fatalf("VolumeMA failed: %v", err)
	}
	for i := 0; i < 4; i++ {
		if !math.IsNaN(out[i]) {
			t.Errorf("Position %d should be undefined, got %f", i, out[i])
		}
	}
	if out[4] != 3000.0 {
		t.Errorf("Expected volume MA 3000, got %f", out[4])
	}
}

func TestVolumeMA_Rolling(t *testing.T) {
	volumes := []int64{10, 20, 30, 40, 50, 60}
	out, _ := VolumeMA(volumes, 3)
	// Last window is {40, 50, 60}
	if out[5] != 50.0 {
		t.Errorf("Expected 50, got %f", out[5])
	}
}

func TestVolumeMA_InvalidPeriod(t *testing.T) {
	if _, err := VolumeMA([]int64{1}, 0); err == nil {
		t.Error("Expected error for period < 1")
	}
}
