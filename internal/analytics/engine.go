package analytics

import (
	"context"

	"github.com/okieraised/farm-telemetry-agent/internal/cerrors"
	"github.com/okieraised/farm-telemetry-agent/internal/constants"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/store"
)

// Engine derives trends, statistics and advisory recommendations from the
// stored history. It only reads from the store and tolerates new readings
// arriving mid-computation; slight staleness is acceptable.
type Engine struct {
	store store.ReadingStore
}

func NewEngine(s store.ReadingStore) *Engine {
	return &Engine{store: s}
}

// Analyze computes per-quantity statistics over the trailing window plus a
// short-horizon prediction and advisory recommendation strings.
func (e *Engine) Analyze(ctx context.Context, windowHours int, ownerRef string) (*domain.AnalyticsReport, *cerrors.AppError) {
	if windowHours <= 0 {
		return nil, cerrors.ErrInvalidWindow.WithMessage("window must be a positive number of hours, got %d", windowHours)
	}

	readings, err := e.store.Historical(ctx, windowHours, 0, ownerRef)
	if err != nil {
		return nil, cerrors.ErrStoreUnavailable.WithCause(err)
	}
	if len(readings) == 0 {
		return nil, cerrors.ErrNoTelemetryData
	}

	report := &domain.AnalyticsReport{
		WindowHours: windowHours,
		From:        readings[0].Timestamp,
		To:          readings[len(readings)-1].Timestamp,
		Stats:       make(map[domain.Quantity]*domain.QuantityStats),
	}

	for _, q := range domain.Quantities {
		series := seriesOf(readings, q)
		if len(series) == 0 {
			continue
		}

		trend := Slope(series)
		current := series[len(series)-1]
		minV, maxV := MinMax(series)

		stats := &domain.QuantityStats{
			Trend:         trend,
			MovingAverage: MovingAverage(series, constants.MovingAverageWindow),
			StdDev:        PopStdDev(series),
			Min:           minV,
			Max:           maxV,
			Current:       current,
			Predicted:     current + trend*constants.PredictionHorizonTicks,
			SampleCount:   len(series),
		}
		report.Stats[q] = stats
		report.Recommendations = append(report.Recommendations, recommendationsFor(q, stats)...)
	}

	return report, nil
}

// seriesOf extracts the present values of one quantity in ascending
// timestamp order.
func seriesOf(readings []domain.Reading, q domain.Quantity) []float64 {
	out := make([]float64, 0, len(readings))
	for i := range readings {
		if v, ok := readings[i].Value(q); ok {
			out = append(out, v)
		}
	}
	return out
}
