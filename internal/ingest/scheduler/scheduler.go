package scheduler

import (
	"context"
	"time"

	"github.com/okieraised/farm-telemetry-agent/internal/cerrors"
	"github.com/okieraised/farm-telemetry-agent/internal/constants"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/log"
	"github.com/okieraised/farm-telemetry-agent/internal/ingest"
	"github.com/okieraised/farm-telemetry-agent/internal/ingest/validate"
	"github.com/okieraised/farm-telemetry-agent/internal/store"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Puller fetches the latest per-feed values from the remote hub.
type Puller interface {
	FetchAll(ctx context.Context) (domain.PartialSample, error)
}

// NextDelay returns the backoff before retry number attempt (1-based):
// base * 2^(attempt-1).
func NextDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}

type Options struct {
	Interval    time.Duration
	BaseBackoff time.Duration
	MaxRetries  int
	TickTimeout time.Duration
}

type Option func(*Options)

func WithInterval(d time.Duration) Option { return func(o *Options) { o.Interval = d } }

func WithBackoff(base time.Duration, maxRetries int) Option {
	return func(o *Options) { o.BaseBackoff, o.MaxRetries = base, maxRetries }
}

func WithTickTimeout(d time.Duration) Option { return func(o *Options) { o.TickTimeout = d } }

// Scheduler drives periodic pull ingestion: one tick per period, with
// bounded exponential-backoff retries inside the tick. Ticks run on a single
// goroutine, so a new tick never starts while the previous adapter call is
// outstanding.
type Scheduler struct {
	puller   Puller
	pipeline *ingest.Pipeline
	store    store.ReadingStore
	logger   *log.Logger

	interval    time.Duration
	baseBackoff time.Duration
	maxRetries  int
	tickTimeout time.Duration
}

func NewScheduler(puller Puller, pipeline *ingest.Pipeline, s store.ReadingStore, optFns ...Option) *Scheduler {
	conf := Options{
		Interval:    constants.FeedDefaultPollInterval,
		BaseBackoff: constants.FeedDefaultRetryBaseBackoff,
		MaxRetries:  constants.FeedDefaultMaxRetries,
		TickTimeout: time.Minute,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&conf)
		}
	}

	return &Scheduler{
		puller:      puller,
		pipeline:    pipeline,
		store:       s,
		logger:      log.MustNewECSLogger().WithComponent("scheduler"),
		interval:    conf.Interval,
		baseBackoff: conf.BaseBackoff,
		maxRetries:  conf.MaxRetries,
		tickTimeout: conf.TickTimeout,
	}
}

// Run executes ticks until ctx is cancelled. Cancellation halts future
// ticks; an in-flight tick finishes or fails naturally on its own timeout.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Starting scheduled ingestion",
		zap.Duration("interval", s.interval), zap.Int("max_retries", s.maxRetries))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Ingest once at startup rather than waiting a full period.
	s.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping scheduled ingestion")
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one ingestion attempt with retries. The attempt counter always
// resets when the tick ends, whether it succeeded or exhausted its retries.
func (s *Scheduler) Tick(ctx context.Context) {
	// The store must be reachable before any work; an unreachable store
	// skips the tick entirely rather than entering the retry loop.
	pingCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	err := s.store.Ping(pingCtx)
	cancel()
	if err != nil {
		s.logger.Warn("Store unreachable, skipping tick", zap.Error(err))
		return
	}

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err = s.runOnce(ctx)
		if err == nil {
			return
		}

		if attempt == s.maxRetries {
			s.logger.Error("Tick failed, giving up until next period",
				zap.Int("attempts", attempt), zap.Error(err))
			return
		}

		delay := NextDelay(s.baseBackoff, attempt)
		s.logger.Warn("Tick failed, retrying",
			zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) error {
	// Detached from the run context so cancellation lets the in-flight
	// tick complete instead of aborting it mid-call.
	tickCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.tickTimeout)
	defer cancel()

	sample, err := s.puller.FetchAll(tickCtx)
	if err != nil {
		return errors.Wrap(err, "pull adapter failed")
	}

	_, stored, appErr := s.pipeline.Process(tickCtx, sample, domain.SourcePoll, validate.ModeScheduled)
	if appErr != nil {
		if cerrors.IsCode(appErr, cerrors.ErrStoreUnavailable.Code) {
			// The store went away mid-tick; treat like the pre-tick
			// reachability failure and wait for the next period.
			s.logger.Warn("Store became unavailable mid-tick", zap.Error(appErr))
			return nil
		}
		return appErr
	}
	if !stored {
		s.logger.Debug("Tick produced a duplicate timestamp, nothing stored")
	}
	return nil
}
