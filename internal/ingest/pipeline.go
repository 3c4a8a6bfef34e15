package ingest

import (
	"context"
	"time"

	"github.com/okieraised/farm-telemetry-agent/internal/cerrors"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/log"
	"github.com/okieraised/farm-telemetry-agent/internal/ingest/validate"
	"github.com/okieraised/farm-telemetry-agent/internal/store"
	"go.uber.org/zap"
)

// Broadcaster fans a stored reading out to live subscribers. Implementations
// must be best-effort and non-blocking; failures never surface here.
type Broadcaster interface {
	PublishReading(r domain.Reading)
}

// Pipeline is the single convergence point for the poll, push and manual
// ingestion paths: validate, persist, fan out. The store's insert-if-absent
// keyed by timestamp is the only concurrency-safety mechanism between the
// producers.
type Pipeline struct {
	store    store.ReadingStore
	bus      Broadcaster
	ownerRef string
	logger   *log.Logger
	now      func() time.Time
}

func NewPipeline(s store.ReadingStore, bus Broadcaster, ownerRef string) *Pipeline {
	return &Pipeline{
		store:    s,
		bus:      bus,
		ownerRef: ownerRef,
		logger:   log.MustNewECSLogger().WithComponent("pipeline"),
		now:      time.Now,
	}
}

// Process validates the sample under the given mode, persists it and fans it
// out. Returns the stored reading, or the reading that already existed for
// a duplicate timestamp (stored=false in that case).
func (p *Pipeline) Process(ctx context.Context, sample domain.PartialSample, src domain.Source, mode validate.Mode) (*domain.Reading, bool, *cerrors.AppError) {
	res := validate.Validate(sample, mode)
	if res.Fatal {
		return nil, false, res.Err()
	}
	if len(res.Missing) > 0 {
		p.logger.Debug("Sample accepted with missing quantities",
			zap.Any("missing", res.Missing), zap.String("source", string(src)))
	}

	reading := domain.Reading{
		Temperature: res.Accepted.Temperature,
		Humidity:    res.Accepted.Humidity,
		Timestamp:   res.Accepted.Timestamp(p.now()),
		Source:      src,
		OwnerRef:    p.ownerRef,
	}
	if res.Accepted.SoilMoisture != nil {
		sm := int(*res.Accepted.SoilMoisture)
		reading.SoilMoisture = &sm
	}

	stored, err := p.store.Save(ctx, reading)
	if err != nil {
		return nil, false, cerrors.ErrStoreUnavailable.WithCause(err)
	}
	if !stored {
		// Duplicate timestamp is a silent no-op, not an error.
		p.logger.Info("Duplicate reading timestamp, skipping",
			zap.Time("timestamp", reading.Timestamp), zap.String("source", string(src)))
		return &reading, false, nil
	}

	if p.bus != nil {
		p.bus.PublishReading(reading)
	}
	return &reading, true, nil
}
