package alerting

import (
	"context"
	"fmt"

	"github.com/okieraised/farm-telemetry-agent/internal/cerrors"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/store"
)

// Engine grades the latest reading against the fixed severity ladders and
// any operator-defined rules. Evaluation is read-only; rules are never
// mutated.
type Engine struct {
	store store.ReadingStore
	rules store.AlertRuleStore
}

func NewEngine(s store.ReadingStore, rules store.AlertRuleStore) *Engine {
	return &Engine{store: s, rules: rules}
}

// Evaluate returns every alert that fires for the latest reading. Multiple
// alerts may fire at once; none suppresses another. An empty slice means
// nothing fired; a missing reading is reported as not found.
func (e *Engine) Evaluate(ctx context.Context, ownerRef string) ([]domain.Alert, *cerrors.AppError) {
	latest, err := e.store.Latest(ctx, ownerRef)
	if err != nil {
		return nil, cerrors.ErrStoreUnavailable.WithCause(err)
	}
	if latest == nil {
		return nil, cerrors.ErrNoTelemetryData
	}

	alerts := ladderAlerts(latest)

	if e.rules != nil {
		custom, err := e.customAlerts(ctx, latest)
		if err != nil {
			return nil, cerrors.ErrStoreUnavailable.WithCause(err)
		}
		alerts = append(alerts, custom...)
	}

	return alerts, nil
}

func (e *Engine) customAlerts(ctx context.Context, latest *domain.Reading) ([]domain.Alert, error) {
	rules, err := e.rules.ListRules(ctx)
	if err != nil {
		return nil, err
	}

	var out []domain.Alert
	for _, rule := range rules {
		value, present := latest.Value(rule.Quantity)
		if !present || !rule.Matches(value) {
			continue
		}
		message := rule.Message
		if message == "" {
			message = fmt.Sprintf("%s is %s threshold %g (current %g)", rule.Quantity, rule.Condition, rule.Threshold, value)
		}
		out = append(out, domain.Alert{
			Quantity:       rule.Quantity,
			Severity:       rule.Severity,
			Value:          value,
			Message:        message,
			Recommendation: rule.Recommendation,
			Custom:         true,
		})
	}
	return out, nil
}
