package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/ingest"
	"github.com/okieraised/farm-telemetry-agent/internal/store"
	"github.com/okieraised/farm-telemetry-agent/internal/utilities"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type stubPuller struct {
	mu       sync.Mutex
	calls    int
	failures int
	sample   domain.PartialSample
}

func (p *stubPuller) FetchAll(_ context.Context) (domain.PartialSample, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failures {
		return domain.PartialSample{}, errors.New("hub unreachable")
	}
	return p.sample, nil
}

func (p *stubPuller) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type recordingBus struct {
	mu       sync.Mutex
	readings []domain.Reading
}

func (b *recordingBus) PublishReading(r domain.Reading) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readings = append(b.readings, r)
}

func (b *recordingBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.readings)
}

type unreachableStore struct {
	*store.MemoryStore
}

func (s *unreachableStore) Ping(_ context.Context) error {
	return errors.New("connection refused")
}

func sampleAt(ts time.Time) domain.PartialSample {
	return domain.PartialSample{
		Temperature:    utilities.Ptr(21.0),
		Humidity:       utilities.Ptr(60.0),
		SoilMoisture:   utilities.Ptr(700.0),
		TemperatureAt:  ts,
		HumidityAt:     ts,
		SoilMoistureAt: ts,
	}
}

func TestNextDelay(t *testing.T) {
	base := 5 * time.Second
	assert.Equal(t, 5*time.Second, NextDelay(base, 1))
	assert.Equal(t, 10*time.Second, NextDelay(base, 2))
	assert.Equal(t, 20*time.Second, NextDelay(base, 3))

	// Attempt below 1 clamps to the base delay.
	assert.Equal(t, 5*time.Second, NextDelay(base, 0))
}

func TestTickStoresAndBroadcasts(t *testing.T) {
	mem := store.NewMemoryStore()
	bus := &recordingBus{}
	puller := &stubPuller{sample: sampleAt(time.Now())}

	sched := NewScheduler(puller, ingest.NewPipeline(mem, bus, ""), mem,
		WithBackoff(time.Millisecond, 3))
	sched.Tick(context.Background())

	assert.Equal(t, 1, puller.callCount())
	assert.Equal(t, 1, bus.count())

	latest, err := mem.Latest(context.Background(), "")
	assert.NoError(t, err)
	assert.NotNil(t, latest)
	assert.Equal(t, domain.SourcePoll, latest.Source)
	assert.Equal(t, 700, *latest.SoilMoisture)
}

func TestTickRetriesThenSucceeds(t *testing.T) {
	mem := store.NewMemoryStore()
	bus := &recordingBus{}
	puller := &stubPuller{failures: 2, sample: sampleAt(time.Now())}

	sched := NewScheduler(puller, ingest.NewPipeline(mem, bus, ""), mem,
		WithBackoff(time.Millisecond, 3))
	sched.Tick(context.Background())

	assert.Equal(t, 3, puller.callCount())

	latest, err := mem.Latest(context.Background(), "")
	assert.NoError(t, err)
	assert.NotNil(t, latest)
}

func TestTickGivesUpAfterMaxRetries(t *testing.T) {
	mem := store.NewMemoryStore()
	bus := &recordingBus{}
	puller := &stubPuller{failures: 10, sample: sampleAt(time.Now())}

	sched := NewScheduler(puller, ingest.NewPipeline(mem, bus, ""), mem,
		WithBackoff(time.Millisecond, 3))
	sched.Tick(context.Background())

	// Exactly maxRetries attempts, then the tick ends.
	assert.Equal(t, 3, puller.callCount())

	latest, err := mem.Latest(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, latest)
	assert.Equal(t, 0, bus.count())
}

func TestAttemptCounterResetsBetweenTicks(t *testing.T) {
	mem := store.NewMemoryStore()
	bus := &recordingBus{}
	puller := &stubPuller{failures: 2, sample: sampleAt(time.Now())}

	sched := NewScheduler(puller, ingest.NewPipeline(mem, bus, ""), mem,
		WithBackoff(time.Millisecond, 3))

	sched.Tick(context.Background())
	assert.Equal(t, 3, puller.callCount())

	// A fresh tick starts at attempt 1 again: one successful call.
	sched.Tick(context.Background())
	assert.Equal(t, 4, puller.callCount())
}

func TestTickSkipsWhenStoreUnreachable(t *testing.T) {
	mem := &unreachableStore{MemoryStore: store.NewMemoryStore()}
	bus := &recordingBus{}
	puller := &stubPuller{sample: sampleAt(time.Now())}

	sched := NewScheduler(puller, ingest.NewPipeline(mem, bus, ""), mem,
		WithBackoff(time.Millisecond, 3))
	sched.Tick(context.Background())

	// The adapter is never invoked when the pre-tick ping fails.
	assert.Equal(t, 0, puller.callCount())
}

func TestDuplicateTimestampTickIsNotAnError(t *testing.T) {
	mem := store.NewMemoryStore()
	bus := &recordingBus{}
	ts := time.Now()
	puller := &stubPuller{sample: sampleAt(ts)}

	sched := NewScheduler(puller, ingest.NewPipeline(mem, bus, ""), mem,
		WithBackoff(time.Millisecond, 3))

	sched.Tick(context.Background())
	sched.Tick(context.Background())

	// Second tick pulled the same observation: one call each, no retries,
	// one stored reading, one broadcast.
	assert.Equal(t, 2, puller.callCount())
	assert.Equal(t, 1, bus.count())

	got, err := mem.Historical(context.Background(), 24, 0, "")
	assert.NoError(t, err)
	assert.Len(t, got, 1)
}
