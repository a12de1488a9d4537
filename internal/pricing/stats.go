package pricing

import "math"

// PriceStats summarizes a set of competitor prices.
type PriceStats struct {
	Mean   float64
	Min    float64
	Max    float64
	StdDev float64
}

// Stats computes mean, min, max and the sample standard deviation of the
// given prices. It returns (zero, false) for an empty input and a zero
// standard deviation when fewer than two values are supplied.
func Stats(prices []float64) (PriceStats, bool) {
	if len(prices) == 0 {
		return PriceStats{}, false
	}

	sum := 0.0
	min := prices[0]
	max := prices[0]
	for _, p := range prices {
		sum += p
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	mean := sum / float64(len(prices))

	stdDev := 0.0
	if len(prices) > 1 {
		var sq float64
		for _, p := range prices {
			d := p - mean
			sq += d * d
		}
		stdDev = math.Sqrt(sq / float64(len(prices)-1))
	}

	return PriceStats{Mean: mean, Min: min, Max: max, StdDev: stdDev}, true
}
