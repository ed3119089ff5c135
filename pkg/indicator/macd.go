package indicator

import "fmt"

// MACD calculates the Moving Average Convergence Divergence of a close
// series: EMA(fast) - EMA(slow) is the MACD line, its EMA(signal) is
// the signal line, and the histogram is exactly their difference.
// Because the EMAs seed from the first observation, every position of
// all three series is defined.
func MACD(closes []float64, fast, slow, signal int) (macd, signalLine, histogram []float64, err error) {
	if fast < 1 || slow < 1 || signal < 1 {
		return nil, nil, nil, fmt.Errorf("MACD periods must be at least 1, got (%d, %d, %d)", fast, slow, signal)
	}
	if fast >= slow {
		return nil, nil, nil, fmt.Errorf("MACD fast period %d must be shorter than slow period %d", fast, slow)
	}

	emaFast, err := EMA(closes, fast)
	if err != nil {
		return nil, nil, nil, err
	}
	emaSlow, err := EMA(closes, slow)
	if err != nil {
		return nil, nil, nil, err
	}

	macd = make([]float64, len(closes))
	for i := range macd {
		macd[i] = emaFast[i] - emaSlow[i]
	}

	signalLine, err = EMA(macd, signal)
	if err != nil {
		return nil, nil, nil, err
	}

	histogram = make([]float64, len(closes))
	for i := range histogram {
		histogram[i] = macd[i] - signalLine[i]
	}
	return macd, signalLine, histogram, nil
}
