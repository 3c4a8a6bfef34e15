package store

import (
	"context"
	"time"

	"github.com/okieraised/farm-telemetry-agent/internal/domain"
)

// ReadingStore persists readings keyed by timestamp. Uniqueness is enforced
// by the store itself with an atomic insert-if-absent, so concurrent writers
// from the poll and push paths cannot create duplicates under race.
type ReadingStore interface {
	// Save stores the reading. Returns stored=false when a reading with the
	// same timestamp already exists; that is a no-op, not an error.
	Save(ctx context.Context, r domain.Reading) (stored bool, err error)

	// Latest returns the most recent reading, optionally filtered by owner.
	// Returns nil when no reading exists.
	Latest(ctx context.Context, ownerRef string) (*domain.Reading, error)

	// Historical returns readings within the trailing window, ascending by
	// timestamp. limit <= 0 means no limit.
	Historical(ctx context.Context, windowHours int, limit int, ownerRef string) ([]domain.Reading, error)

	// DeleteOlderThan removes readings older than the age threshold and
	// returns the number removed.
	DeleteOlderThan(ctx context.Context, ageDays int) (int64, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	Close()
}

// AlertRuleStore persists operator-defined alert rules.
type AlertRuleStore interface {
	CreateRule(ctx context.Context, rule domain.AlertRule) (domain.AlertRule, error)
	ListRules(ctx context.Context) ([]domain.AlertRule, error)
	DeleteRule(ctx context.Context, id string) (bool, error)
}

// windowStart computes the inclusive lower bound of a trailing window.
func windowStart(now time.Time, windowHours int) time.Time {
	return now.Add(-time.Duration(windowHours) * time.Hour)
}
