package utilities

import "math"

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}

// RoundToInt rounds v to the nearest integer.
func RoundToInt(v float64) int {
	return int(math.Round(v))
}
