package analytics

import "math"

// Slope returns the slope of an ordinary least-squares regression over the
// index-ordered series: index is sample position, not wall-clock spacing.
// Returns 0 for fewer than two samples.
func Slope(series []float64) float64 {
	n := float64(len(series))
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// Mean returns the arithmetic mean, or 0 for an empty series.
func Mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

// MovingAverage returns the mean of the trailing window samples, or of the
// whole series when it is shorter than the window.
func MovingAverage(series []float64, window int) float64 {
	if len(series) > window {
		series = series[len(series)-window:]
	}
	return Mean(series)
}

// PopStdDev returns the population standard deviation over the series.
func PopStdDev(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	mean := Mean(series)
	var sum float64
	for _, v := range series {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(series)))
}

// MinMax returns the extremes of a non-empty series.
func MinMax(series []float64) (minV, maxV float64) {
	minV, maxV = series[0], series[0]
	for _, v := range series[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return minV, maxV
}
