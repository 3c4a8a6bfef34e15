package restful

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/okieraised/farm-telemetry-agent/internal/api_response"
	"github.com/okieraised/farm-telemetry-agent/internal/cerrors"
	"github.com/okieraised/farm-telemetry-agent/internal/constants"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/log"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/tracer_client"
	"github.com/okieraised/farm-telemetry-agent/internal/server/rest_server/services/v1/restful"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type AlertRuleRouter struct {
	svc    restful.IAlertRuleService
	logger *log.Logger
	tracer trace.Tracer
}

func NewAlertRuleRouter(svc restful.IAlertRuleService) *AlertRuleRouter {
	logger := log.MustNewECSLogger()
	return &AlertRuleRouter{
		svc:    svc,
		logger: logger,
		tracer: tracer_client.Tracer("alert_rule_router"),
	}
}

func (r *AlertRuleRouter) Routes(engine *gin.RouterGroup) {
	routes := engine.Group("/alert-rules")
	routes.POST("", r.create)
	routes.GET("", r.list)
	routes.DELETE("/:id", r.remove)
}

type CreateAlertRuleRequest struct {
	Quantity       *string  `json:"quantity"`
	Threshold      *float64 `json:"threshold"`
	Condition      *string  `json:"condition"`
	Severity       *string  `json:"severity"`
	Message        *string  `json:"message"`
	Recommendation *string  `json:"recommendation"`
}

func (req *CreateAlertRuleRequest) validate() *cerrors.AppError {
	if req.Quantity == nil || req.Threshold == nil || req.Condition == nil || req.Severity == nil || req.Message == nil {
		return cerrors.ErrInvalidAlertRule.WithMessage("quantity, threshold, condition, severity and message are required")
	}
	return nil
}

func (req *CreateAlertRuleRequest) ToCreateAlertRuleInput(
	ctx context.Context,
	tracer trace.Tracer,
) *restful.CreateAlertRuleInput {
	input := &restful.CreateAlertRuleInput{
		TracerCtx: ctx,
		Tracer:    tracer,
		Quantity:  *req.Quantity,
		Threshold: *req.Threshold,
		Condition: *req.Condition,
		Severity:  *req.Severity,
		Message:   *req.Message,
	}
	if req.Recommendation != nil {
		input.Recommendation = *req.Recommendation
	}
	return input
}

func (r *AlertRuleRouter) create(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)
	lg := r.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)
	lg.Info("Received new alert rule request")

	// serialization
	_, cSpan := r.tracer.Start(rootCtx, "serialization")
	var req CreateAlertRuleRequest
	err := ctx.ShouldBindJSON(&req)
	if err != nil {
		cSpan.End()
		lg.Error(err.Error())
		resp.Populate(cerrors.ErrGenericBadRequest.Code, cerrors.ErrGenericBadRequest.Message, nil, nil, nil)
		ctx.JSON(http.StatusBadRequest, resp)
		return
	}
	cSpan.End()

	// Validation
	_, cSpan = r.tracer.Start(rootCtx, "validation")
	appErr := req.validate()
	if appErr != nil {
		cSpan.End()
		lg.Error(appErr.Error())
		resp.Populate(appErr.Code, appErr.Message, nil, nil, nil)
		ctx.JSON(http.StatusBadRequest, resp)
		return
	}
	cSpan.End()

	// Handler
	_, cSpan = r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.Create(ctx, req.ToCreateAlertRuleInput(rootCtx, r.tracer))
	if appErr != nil {
		cSpan.End()
		lg.Error(appErr.Error())
		resp.Populate(appErr.Code, appErr.Message, nil, nil, nil)
		ctx.JSON(cerrors.HTTPStatusOf(appErr), resp)
		return
	}
	cSpan.End()

	resp.Populate(result.Code, result.Message, result.Data, nil, nil)
	ctx.JSON(http.StatusCreated, resp)
}

func (r *AlertRuleRouter) list(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)
	lg := r.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)

	result, appErr := r.svc.List(ctx, &restful.ListAlertRulesInput{TracerCtx: rootCtx, Tracer: r.tracer})
	if appErr != nil {
		lg.Error(appErr.Error())
		resp.Populate(appErr.Code, appErr.Message, nil, nil, nil)
		ctx.JSON(cerrors.HTTPStatusOf(appErr), resp)
		return
	}

	resp.Populate(result.Code, result.Message, result.Data, nil, result.Count)
	ctx.JSON(http.StatusOK, resp)
}

func (r *AlertRuleRouter) remove(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)
	lg := r.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)

	input := &restful.DeleteAlertRuleInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
		ID:        ctx.Param("id"),
	}

	result, appErr := r.svc.Delete(ctx, input)
	if appErr != nil {
		lg.Error(appErr.Error())
		resp.Populate(appErr.Code, appErr.Message, nil, nil, nil)
		ctx.JSON(cerrors.HTTPStatusOf(appErr), resp)
		return
	}

	resp.Populate(result.Code, result.Message, result.Data, nil, nil)
	ctx.JSON(http.StatusOK, resp)
}
