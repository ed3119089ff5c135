package indicator

import "fmt"

// VolumeMA calculates the rolling mean of a volume series. The first
// period-1 positions are undefined.
func VolumeMA(volumes []int64, period int) ([]float64, error) {
	if period < 1 {
		return nil, fmt.Errorf("volume MA period must be at least 1, got %d", period)
	}

	out := undefinedSeries(len(volumes))

	var sum int64
	for i, v := range volumes {
		sum += v
		if i >= period {
			sum -= volumes[i-period]
		}
		if i >= period-1 {
			out[i] = float64(sum) / float64(period)
		}
	}
	return out, nil
}
