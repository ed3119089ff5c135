// Package signal maps indicator values to per-family trading signals
// and blends them into a weighted composite score.
package signal

import (
	"math"

	"github.com/mohamedamin/halal-screener/internal/models"
)

// RSIOversold and RSIOverbought are the fixed thresholds of the
// RSI+trend strategy.
const (
	RSIOversold   = 30.0
	RSIOverbought = 70.0
)

// FromRSI generates the RSI+trend signal. Buy requires an oversold RSI
// while the price holds above its 50-day average; the Sell branch fires
// on an overbought RSI or a price below that average. The Sell OR is
// deliberate: because Buy requires price > SMA50, the two branches can
// never be satisfied at once.
func FromRSI(price, rsi, sma50 float64) models.Signal {
	if math.IsNaN(rsi) || math.IsNaN(sma50) {
		return models.SignalHold
	}
	if price > sma50 && rsi < RSIOversold {
		return models.SignalBuy
	}
	if rsi > RSIOverbought || price < sma50 {
		return models.SignalSell
	}
	return models.SignalHold
}

// FromMACD generates the MACD signal. A crossover between the previous
// and current (macd, signal) pairs takes priority; without prior values
// it falls back to trend confirmation, requiring the MACD line on the
// matching side of both the signal line and zero.
func FromMACD(macd, signalLine, prevMACD, prevSignal float64) models.Signal {
	if !math.IsNaN(prevMACD) && !math.IsNaN(prevSignal) {
		if prevMACD < prevSignal && macd > signalLine {
			return models.SignalBuy
		}
		if prevMACD > prevSignal && macd < signalLine {
			return models.SignalSell
		}
	}

	if macd > signalLine && macd > 0 {
		return models.SignalBuy
	}
	if macd < signalLine && macd < 0 {
		return models.SignalSell
	}
	return models.SignalHold
}

// FromBollinger generates the band-reversal signal: a close at or below
// the lower band is a Buy, at or above the upper band a Sell. Collapsed
// bands (zero volatility) carry no information and yield Hold.
func FromBollinger(price, lowerBand, upperBand float64) models.Signal {
	if math.IsNaN(lowerBand) || math.IsNaN(upperBand) || lowerBand == upperBand {
		return models.SignalHold
	}
	if price <= lowerBand {
		return models.SignalBuy
	}
	if price >= upperBand {
		return models.SignalSell
	}
	return models.SignalHold
}

// FromMACross generates the golden/death-cross signal from the 50- and
// 200-day averages. The signal is binary: any defined pair is either an
// uptrend (Buy) or a downtrend (Sell), never Hold. Hold appears only
// when the slow average has too little history to exist.
func FromMACross(smaFast, smaSlow float64) models.Signal {
	if math.IsNaN(smaFast) || math.IsNaN(smaSlow) {
		return models.SignalHold
	}
	if smaFast > smaSlow {
		return models.SignalBuy
	}
	return models.SignalSell
}
