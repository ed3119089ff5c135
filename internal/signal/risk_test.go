package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveRisk_OversoldEntry(t *testing.T) {
	// RSI below both cutoffs: tight 3% stop, wide 10% target.
	risk := DeriveRisk(1000, 25)
	assert.Equal(t, 970.0, risk.StopLoss)
	assert.Equal(t, 1100.0, risk.TakeProfit)
	assert.Equal(t, 10.0, risk.PotentialGain)
}

func TestDeriveRisk_NeutralEntry(t *testing.T) {
	// RSI above both cutoffs: wide 5% stop, base 7% target.
	risk := DeriveRisk(1000, 55)
	assert.Equal(t, 950.0, risk.StopLoss)
	assert.Equal(t, 1070.0, risk.TakeProfit)
	assert.Equal(t, 7.0, risk.PotentialGain)
}

func TestDeriveRisk_BetweenCutoffs(t *testing.T) {
	// RSI in [30,35): tight stop but base target.
	risk := DeriveRisk(1000, 32)
	assert.Equal(t, 970.0, risk.StopLoss)
	assert.Equal(t, 1070.0, risk.TakeProfit)
	assert.Equal(t, 7.0, risk.PotentialGain)
}

func TestDeriveRisk_Rounding(t *testing.T) {
	risk := DeriveRisk(123.456, 50)
	assert.Equal(t, 117.28, risk.StopLoss)   // 123.456 * 0.95 = 117.2832
	assert.Equal(t, 132.1, risk.TakeProfit)  // 123.456 * 1.07 = 132.09792
}
