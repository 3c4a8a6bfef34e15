package domain

import "time"

type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

type AlertCondition string

const (
	ConditionAbove AlertCondition = "above"
	ConditionBelow AlertCondition = "below"
	ConditionEqual AlertCondition = "equal"
)

// AlertRule is an operator-defined threshold evaluated against the latest
// reading. Rules are created and deleted by the operator and never mutated
// by evaluation.
type AlertRule struct {
	ID             string         `json:"id"`
	Quantity       Quantity       `json:"quantity"`
	Threshold      float64        `json:"threshold"`
	Condition      AlertCondition `json:"condition"`
	Severity       AlertSeverity  `json:"severity"`
	Message        string         `json:"message"`
	Recommendation string         `json:"recommendation,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Matches reports whether the rule condition holds for the given value.
func (r *AlertRule) Matches(value float64) bool {
	switch r.Condition {
	case ConditionAbove:
		return value > r.Threshold
	case ConditionBelow:
		return value < r.Threshold
	case ConditionEqual:
		return value == r.Threshold
	default:
		return false
	}
}

// Alert is one fired alert. Multiple alerts may fire for a single reading;
// none suppresses another.
type Alert struct {
	Quantity       Quantity      `json:"quantity"`
	Severity       AlertSeverity `json:"severity"`
	Value          float64       `json:"value"`
	Message        string        `json:"message"`
	Recommendation string        `json:"recommendation,omitempty"`
	Custom         bool          `json:"custom"`
}

// ValidSeverity reports whether s is one of the declared severities.
func ValidSeverity(s AlertSeverity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ValidCondition reports whether c is one of the declared conditions.
func ValidCondition(c AlertCondition) bool {
	switch c {
	case ConditionAbove, ConditionBelow, ConditionEqual:
		return true
	}
	return false
}

// ValidQuantity reports whether q is one of the declared quantities.
func ValidQuantity(q Quantity) bool {
	switch q {
	case QuantityTemperature, QuantityHumidity, QuantitySoilMoisture:
		return true
	}
	return false
}
