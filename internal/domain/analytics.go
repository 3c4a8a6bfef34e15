package domain

import "time"

// QuantityStats holds the derived statistics for one quantity over a window.
type QuantityStats struct {
	Trend         float64 `json:"trend"`
	MovingAverage float64 `json:"moving_average"`
	StdDev        float64 `json:"std_dev"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Current       float64 `json:"current"`
	Predicted     float64 `json:"predicted"`
	SampleCount   int     `json:"sample_count"`
}

// AnalyticsReport is the full analysis of the historical window.
type AnalyticsReport struct {
	WindowHours     int                         `json:"window_hours"`
	From            time.Time                   `json:"from"`
	To              time.Time                   `json:"to"`
	Stats           map[Quantity]*QuantityStats `json:"stats"`
	Recommendations []string                    `json:"recommendations"`
}
