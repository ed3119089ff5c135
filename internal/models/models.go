package models

import (
	"time"
)

// Signal is a per-indicator-family trading signal.
type Signal string

const (
	SignalBuy  Signal = "Buy"
	SignalSell Signal = "Sell"
	SignalHold Signal = "Hold"
)

// Labels produced by the composite scorer, plus the non-actionable
// marker applied by the compliance gate.
const (
	LabelStrongBuy  = "Strong Buy"
	LabelBuy        = "Buy"
	LabelHold       = "Hold"
	LabelSell       = "Sell"
	LabelStrongSell = "Strong Sell"
	LabelNA         = "N/A"
)

// PriceBar represents a single OHLCV observation.
type PriceBar struct {
	Timestamp time.Time `json:"date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Validate validates a PriceBar
func (b *PriceBar) Validate() error {
	if b.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	if b.High < b.Low {
		return ErrInvalidBar
	}
	if b.Volume < 0 {
		return ErrInvalidVolume
	}
	return nil
}

// TickerInfo holds basic instrument metadata.
type TickerInfo struct {
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

// MarketStatus describes whether the market is open and what happens next.
type MarketStatus struct {
	Status    string `json:"status"` // "open" or "closed"
	NextEvent string `json:"nextEvent"`
}

// Compliance is the result of the Shariah financial-ratio screen.
// It is independent of price action: a non-compliant instrument stays
// non-compliant no matter how bullish the technicals are.
type Compliance struct {
	Status    string  `json:"status"` // "Halal" or "Non-Halal"
	DebtRatio float64 `json:"debtRatio"`
	CashRatio float64 `json:"cashRatio"`
	Passed    bool    `json:"passed"`
}

// SignalSet holds the four per-family signals that feed the composite scorer.
type SignalSet struct {
	RSI  Signal `json:"rsi"`
	MACD Signal `json:"macd"`
	MA   Signal `json:"ma"`
	BB   Signal `json:"bb"`
}

// CompositeResult is the weighted blend of the four family signals.
type CompositeResult struct {
	Score int    `json:"score"` // 0-100, 50 is neutral
	Label string `json:"label"`
}

// RiskLevels holds the derived risk-management prices. Attached to a
// snapshot only when the compliance-gated final signal is actionable.
type RiskLevels struct {
	StopLoss      float64 `json:"sl"`
	TakeProfit    float64 `json:"tp"`
	PotentialGain float64 `json:"gain"`
}

// Technicals is the full technical block of a snapshot: raw indicator
// values, per-family signals, the composite result and the final
// compliance-gated signal/score.
type Technicals struct {
	RSI        float64         `json:"rsi"`
	SMA20      float64         `json:"sma20"`
	SMA50      float64         `json:"sma50"`
	SMA200     float64         `json:"sma200"`
	MACD       float64         `json:"macd"`
	MACDSignal float64         `json:"macd_signal"`
	MACDHist   float64         `json:"macd_hist"`
	BBUpper    float64         `json:"bb_upper"`
	BBLower    float64         `json:"bb_lower"`
	Volume     int64           `json:"volume"`
	VolumeMA   float64         `json:"volume_ma"`
	Signals    SignalSet       `json:"signals"`
	Composite  CompositeResult `json:"composite"`

	// FinalLabel and FinalScore reflect the compliance gate: for a
	// non-compliant instrument they are "N/A" and 0 regardless of the
	// composite result.
	FinalLabel string      `json:"label"`
	FinalScore int         `json:"score"`
	Risk       *RiskLevels `json:"risk,omitempty"`
}

// Snapshot is one symbol's fully computed, immutable result for a scan
// pass. The most recent snapshot per symbol replaces the previous one in
// the shared cache; snapshot history is an external storage concern.
type Snapshot struct {
	Symbol       string     `json:"symbol"` // case-normalized, no exchange suffix
	Name         string     `json:"name"`
	Sector       string     `json:"sector"`
	Price        float64    `json:"price"`
	Compliance   Compliance `json:"shariah"`
	Technicals   Technicals `json:"technicals"`
	PriceHistory []float64  `json:"priceHistory"` // recent closes, for sparklines
	GeneratedAt  time.Time  `json:"generatedAt"`
}

// Actionable reports whether the final (gated) signal permits risk
// parameters to be attached.
func (s *Snapshot) Actionable() bool {
	return s.Technicals.FinalLabel == LabelBuy || s.Technicals.FinalLabel == LabelStrongBuy
}

// Quote is a single live price for a symbol.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}
