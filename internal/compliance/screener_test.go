package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedamin/halal-screener/internal/models"
)

// fixedFundamentals returns the same ratios for every symbol.
type fixedFundamentals struct {
	debt float64
	cash float64
}

func (f fixedFundamentals) Ratios(string) (float64, float64) {
	return f.debt, f.cash
}

func TestSeededFundamentals_Deterministic(t *testing.T) {
	var src SeededFundamentals
	d1, c1 := src.Ratios("RELIANCE")
	d2, c2 := src.Ratios("RELIANCE")
	assert.Equal(t, d1, d2)
	assert.Equal(t, c1, c2)

	d3, _ := src.Ratios("TCS")
	// Different symbols should screen independently.
	assert.NotEqual(t, d1, d3)
}

func TestSeededFundamentals_Ranges(t *testing.T) {
	var src SeededFundamentals
	for _, sym := range []string{"RELIANCE", "TCS", "INFY", "WIPRO", "TITAN", "A", "B"} {
		debt, cash := src.Ratios(sym)
		require.GreaterOrEqual(t, debt, 10.0)
		require.LessOrEqual(t, debt, 50.0)
		require.GreaterOrEqual(t, cash, 5.0)
		require.LessOrEqual(t, cash, 40.0)
	}
}

func TestScreener_Thresholds(t *testing.T) {
	tests := []struct {
		name       string
		debt, cash float64
		wantPassed bool
	}{
		{"both under", 30, 20, true},
		{"debt at threshold", 50, 20, false},
		{"debt over", 60, 20, false},
		{"cash over", 30, 36, false},
		{"both over", 60, 40, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScreener(fixedFundamentals{tt.debt, tt.cash}, 50, 35)
			got := s.Check("X")
			assert.Equal(t, tt.wantPassed, got.Passed)
			assert.Equal(t, tt.debt, got.DebtRatio)
			assert.Equal(t, tt.cash, got.CashRatio)
			if tt.wantPassed {
				assert.Equal(t, "Halal", got.Status)
			} else {
				assert.Equal(t, "Non-Halal", got.Status)
			}
		})
	}
}

// A technically perfect composite must not survive a failed screen.
func TestApplyGate_OverridesStrongBuy(t *testing.T) {
	composite := models.CompositeResult{Score: 95, Label: models.LabelStrongBuy}

	s := NewScreener(fixedFundamentals{debt: 60, cash: 20}, 50, 35)
	check := s.Check("X")
	require.False(t, check.Passed)

	label, score := ApplyGate(composite, check)
	assert.Equal(t, models.LabelNA, label)
	assert.Equal(t, 0, score)
}

func TestApplyGate_PassesThroughWhenCompliant(t *testing.T) {
	composite := models.CompositeResult{Score: 62, Label: models.LabelBuy}
	label, score := ApplyGate(composite, models.Compliance{Passed: true})
	assert.Equal(t, models.LabelBuy, label)
	assert.Equal(t, 62, score)
}
