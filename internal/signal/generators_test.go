package signal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mohamedamin/halal-screener/internal/models"
)

func TestFromRSI(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		rsi   float64
		sma50 float64
		want  models.Signal
	}{
		{"oversold above trend", 105, 25, 100, models.SignalBuy},
		{"overbought", 105, 75, 100, models.SignalSell},
		{"below trend", 95, 50, 100, models.SignalSell},
		{"oversold below trend still sells", 95, 25, 100, models.SignalSell},
		{"neutral", 105, 50, 100, models.SignalHold},
		{"price exactly at trend", 100, 50, 100, models.SignalHold},
		{"undefined rsi", 105, math.NaN(), 100, models.SignalHold},
		{"undefined sma", 105, 25, math.NaN(), models.SignalHold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromRSI(tt.price, tt.rsi, tt.sma50))
		})
	}
}

// The Sell branch is an OR and would dominate a simultaneous Buy, but
// Buy requires price above SMA50 while the only overlapping Sell
// condition requires it below, so the conflict is unreachable.
func TestFromRSI_BuyAndSellMutuallyExclusive(t *testing.T) {
	for _, rsi := range []float64{5, 25, 29.9} {
		sig := FromRSI(105, rsi, 100)
		assert.Equal(t, models.SignalBuy, sig, "rsi=%f", rsi)
	}
}

func TestFromMACD_CrossoverPriority(t *testing.T) {
	// Crossed from below to above.
	assert.Equal(t, models.SignalBuy, FromMACD(1.0, 0.5, -0.5, 0.2))
	// Crossed from above to below.
	assert.Equal(t, models.SignalSell, FromMACD(0.2, 0.8, 1.0, 0.5))
	// Bullish crossover wins even with MACD below zero, where the
	// trend fallback would have said Sell.
	assert.Equal(t, models.SignalBuy, FromMACD(-0.1, -0.5, -1.0, -0.2))
}

func TestFromMACD_TrendFallback(t *testing.T) {
	nan := math.NaN()
	// No prior values: trend confirmation.
	assert.Equal(t, models.SignalBuy, FromMACD(1.0, 0.5, nan, nan))
	assert.Equal(t, models.SignalSell, FromMACD(-1.0, -0.5, nan, nan))
	// MACD above signal but below zero is not a confirmed trend.
	assert.Equal(t, models.SignalHold, FromMACD(-0.2, -0.5, nan, nan))
	assert.Equal(t, models.SignalHold, FromMACD(0.0, 0.0, nan, nan))
}

func TestFromBollinger(t *testing.T) {
	assert.Equal(t, models.SignalBuy, FromBollinger(95, 96, 110))
	assert.Equal(t, models.SignalBuy, FromBollinger(96, 96, 110))
	assert.Equal(t, models.SignalSell, FromBollinger(111, 96, 110))
	assert.Equal(t, models.SignalSell, FromBollinger(110, 96, 110))
	assert.Equal(t, models.SignalHold, FromBollinger(100, 96, 110))
	// Collapsed bands carry no information.
	assert.Equal(t, models.SignalHold, FromBollinger(100, 100, 100))
	assert.Equal(t, models.SignalHold, FromBollinger(100, math.NaN(), 110))
}

func TestFromMACross_Binary(t *testing.T) {
	assert.Equal(t, models.SignalBuy, FromMACross(105, 100))
	assert.Equal(t, models.SignalSell, FromMACross(100, 105))
	// Equal averages are not an uptrend.
	assert.Equal(t, models.SignalSell, FromMACross(100, 100))
	// Hold only when the slow average does not exist yet.
	assert.Equal(t, models.SignalHold, FromMACross(100, math.NaN()))
}
