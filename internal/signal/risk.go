package signal

import (
	"math"

	"github.com/mohamedamin/halal-screener/internal/models"
)

// Stop-loss and take-profit percentages keyed off RSI. An oversold
// entry gets a tighter stop and a wider target.
const (
	tightStopLossPct  = 3.0
	wideStopLossPct   = 5.0
	wideTakeProfitPct = 10.0
	baseTakeProfitPct = 7.0

	stopLossRSICutoff   = 35.0
	takeProfitRSICutoff = 30.0
)

// DeriveRisk computes stop-loss, take-profit and potential-gain levels
// from the current price and RSI. Callers attach the result to a
// snapshot only when the compliance-gated final signal is actionable.
func DeriveRisk(price, rsi float64) models.RiskLevels {
	slPct := wideStopLossPct
	if rsi < stopLossRSICutoff {
		slPct = tightStopLossPct
	}
	tpPct := baseTakeProfitPct
	if rsi < takeProfitRSICutoff {
		tpPct = wideTakeProfitPct
	}

	stopLoss := round2(price * (1 - slPct/100))
	takeProfit := round2(price * (1 + tpPct/100))
	gain := round2((takeProfit - price) / price * 100)

	return models.RiskLevels{
		StopLoss:      stopLoss,
		TakeProfit:    takeProfit,
		PotentialGain: gain,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
