package restful

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/okieraised/farm-telemetry-agent/internal/api_response"
	"github.com/okieraised/farm-telemetry-agent/internal/cerrors"
	"github.com/okieraised/farm-telemetry-agent/internal/constants"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/log"
	"github.com/okieraised/farm-telemetry-agent/internal/store"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type IAlertRuleService interface {
	Create(ctx *gin.Context, input *CreateAlertRuleInput) (*api_response.BaseOutput, *cerrors.AppError)
	List(ctx *gin.Context, input *ListAlertRulesInput) (*api_response.BaseOutput, *cerrors.AppError)
	Delete(ctx *gin.Context, input *DeleteAlertRuleInput) (*api_response.BaseOutput, *cerrors.AppError)
}

type AlertRuleService struct {
	rules  store.AlertRuleStore
	logger *log.Logger
}

func NewAlertRuleService(options ...func(*AlertRuleService)) *AlertRuleService {
	svc := &AlertRuleService{}
	for _, opt := range options {
		opt(svc)
	}
	svc.logger = log.MustNewECSLogger()
	return svc
}

func WithAlertRuleStore(s store.AlertRuleStore) func(*AlertRuleService) {
	return func(svc *AlertRuleService) { svc.rules = s }
}

type CreateAlertRuleInput struct {
	TracerCtx      context.Context
	Tracer         trace.Tracer
	Quantity       string
	Threshold      float64
	Condition      string
	Severity       string
	Message        string
	Recommendation string
}

type ListAlertRulesInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
}

type DeleteAlertRuleInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
	ID        string
}

// Create validates and persists an operator-defined alert rule.
func (svc *AlertRuleService) Create(ctx *gin.Context, input *CreateAlertRuleInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "create-alert-rule-handler")
	defer span.End()

	lg := svc.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)

	rule := domain.AlertRule{
		ID:             uuid.New().String(),
		Quantity:       domain.Quantity(input.Quantity),
		Threshold:      input.Threshold,
		Condition:      domain.AlertCondition(input.Condition),
		Severity:       domain.AlertSeverity(input.Severity),
		Message:        input.Message,
		Recommendation: input.Recommendation,
		CreatedAt:      time.Now(),
	}

	if !domain.ValidQuantity(rule.Quantity) {
		return nil, cerrors.ErrInvalidAlertRule.WithMessage("unknown quantity %q", input.Quantity)
	}
	if !domain.ValidCondition(rule.Condition) {
		return nil, cerrors.ErrInvalidAlertRule.WithMessage("unknown condition %q", input.Condition)
	}
	if !domain.ValidSeverity(rule.Severity) {
		return nil, cerrors.ErrInvalidAlertRule.WithMessage("unknown severity %q", input.Severity)
	}
	if rule.Message == "" {
		return nil, cerrors.ErrInvalidAlertRule.WithMessage("rule message must not be empty")
	}

	created, err := svc.rules.CreateRule(ctx, rule)
	if err != nil {
		lg.Error(err.Error())
		return nil, cerrors.ErrStoreUnavailable.WithCause(err)
	}
	lg.Info("Alert rule created",
		zap.String("rule_id", created.ID),
		zap.String("quantity", string(created.Quantity)),
		zap.String("severity", string(created.Severity)),
	)

	resp := &api_response.BaseOutput{Code: cerrors.OK.Code, Message: cerrors.OK.Message}
	resp.Data = created
	return resp, nil
}

func (svc *AlertRuleService) List(ctx *gin.Context, input *ListAlertRulesInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "list-alert-rules-handler")
	defer span.End()

	rules, err := svc.rules.ListRules(ctx)
	if err != nil {
		svc.logger.Error(err.Error())
		return nil, cerrors.ErrStoreUnavailable.WithCause(err)
	}
	if rules == nil {
		rules = []domain.AlertRule{}
	}

	resp := &api_response.BaseOutput{Code: cerrors.OK.Code, Message: cerrors.OK.Message}
	resp.Data = rules
	resp.Count = len(rules)
	return resp, nil
}

func (svc *AlertRuleService) Delete(ctx *gin.Context, input *DeleteAlertRuleInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "delete-alert-rule-handler")
	defer span.End()

	if input.ID == "" {
		return nil, cerrors.ErrInvalidAlertRule.WithMessage("rule id must not be empty")
	}

	removed, err := svc.rules.DeleteRule(ctx, input.ID)
	if err != nil {
		svc.logger.Error(err.Error())
		return nil, cerrors.ErrStoreUnavailable.WithCause(err)
	}
	if !removed {
		return nil, cerrors.ErrAlertRuleNotFound.WithMessage("no alert rule with id %q", input.ID)
	}
	svc.logger.Info("Alert rule deleted", zap.String("rule_id", input.ID))

	resp := &api_response.BaseOutput{Code: cerrors.OK.Code, Message: cerrors.OK.Message}
	resp.Data = map[string]any{"id": input.ID, "deleted": true}
	return resp, nil
}
