package restful

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

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

type TelemetryRouter struct {
	svc    restful.ITelemetryService
	logger *log.Logger
	tracer trace.Tracer
}

func NewTelemetryRouter(svc restful.ITelemetryService) *TelemetryRouter {
	logger := log.MustNewECSLogger()
	return &TelemetryRouter{
		svc:    svc,
		logger: logger,
		tracer: tracer_client.Tracer("telemetry_router"),
	}
}

func (r *TelemetryRouter) Routes(engine *gin.RouterGroup) {
	routes := engine.Group("/telemetry")
	routes.POST("/fetch", r.fetchNow)
	routes.GET("/latest", r.latest)
	routes.GET("/historical", r.historical)
	routes.GET("/stats", r.stats)
	routes.POST("", r.manualAdd)
	routes.DELETE("/cleanup", r.cleanup)
	routes.GET("/export", r.export)
	routes.GET("/analytics", r.analytics)
	routes.GET("/alerts", r.alerts)
}

func (r *TelemetryRouter) startSpan(ctx *gin.Context) (trace.Span, *api_response.Response[any], *log.Logger, *restful.TelemetryInput) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))

	resp := api_response.New[any](ctx)
	lg := r.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)
	input := &restful.TelemetryInput{TracerCtx: rootCtx, Tracer: r.tracer}
	return span, resp, lg, input
}

// queryInt reads an integer query parameter, falling back when absent or
// unparsable.
func queryInt(ctx *gin.Context, name string, fallback int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func (r *TelemetryRouter) fetchNow(ctx *gin.Context) {
	span, resp, lg, input := r.startSpan(ctx)
	defer span.End()

	lg.Info("Received on-demand fetch request")

	result, appErr := r.svc.FetchNow(ctx, input)
	if appErr != nil {
		lg.Error(appErr.Error())
		resp.Populate(appErr.Code, appErr.Message, nil, nil, nil)
		ctx.JSON(cerrors.HTTPStatusOf(appErr), resp)
		return
	}

	resp.Populate(result.Code, result.Message, result.Data, nil, nil)
	ctx.JSON(http.StatusOK, resp)
}

func (r *TelemetryRouter) latest(ctx *gin.Context) {
	span, resp, lg, input := r.startSpan(ctx)
	defer span.End()

	result, appErr := r.svc.GetLatest(ctx, input)
	if appErr != nil {
		lg.Error(appErr.Error())
		resp.Populate(appErr.Code, appErr.Message, nil, nil, nil)
		ctx.JSON(cerrors.HTTPStatusOf(appErr), resp)
		return
	}

	resp.Populate(result.Code, result.Message, result.Data, nil, nil)
	ctx.JSON(http.StatusOK, resp)
}

func (r *TelemetryRouter) historical(ctx *gin.Context) {
	span, resp, lg, base := r.startSpan(ctx)
	defer span.End()

	input := &restful.HistoricalInput{
		TracerCtx: base.TracerCtx,
		Tracer:    base.Tracer,
		Hours:     queryInt(ctx, "hours", 24),
		Limit:     queryInt(ctx, "limit", 0),
	}

	result, appErr := r.svc.GetHistorical(ctx, input)
	if appErr != nil {
		lg.Error(appErr.Error())
		resp.Populate(appErr.Code, appErr.Message, nil, nil, nil)
		ctx.JSON(cerrors.HTTPStatusOf(appErr), resp)
		return
	}

	resp.Populate(result.Code, result.Message, result.Data, nil, result.Count)
	ctx.JSON(http.StatusOK, resp)
}

func (r *TelemetryRouter) stats(ctx *gin.Context) {
	span, resp, lg, base := r.startSpan(ctx)
	defer span.End()

	input := &restful.WindowInput{
		TracerCtx: base.TracerCtx,
		Tracer:    base.Tracer,
		Hours:     queryInt(ctx, "hours", 24),
	}

	result, appErr := r.svc.GetStats(ctx, input)
	if appErr != nil {
		lg.Error(appErr.Error())
		resp.Populate(appErr.Code, appErr.Message, nil, nil, nil)
		ctx.JSON(cerrors.HTTPStatusOf(appErr), resp)
		return
	}

	resp.Populate(result.Code, result.Message, result.Data, nil, result.Count)
	ctx.JSON(http.StatusOK, resp)
}

type ManualAddRequest struct {
	Temperature  *float64 `json:"temperature"`
	Humidity     *float64 `json:"humidity"`
	SoilMoisture *float64 `json:"soil_moisture"`
}

func (r *TelemetryRouter) manualAdd(ctx *gin.Context) {
	span, resp, lg, base := r.startSpan(ctx)
	defer span.End()

	lg.Info("Received manual reading submission")

	var req ManualAddRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		lg.Error(err.Error())
		resp.Populate(cerrors.ErrGenericBadRequest.Code, cerrors.ErrGenericBadRequest.Message, nil, nil, nil)
		ctx.JSON(http.StatusBadRequest, resp)
		return
	}

	input := &restful.ManualAddInput{
		TracerCtx:    base.TracerCtx,
		Tracer:       base.Tracer,
		Temperature:  req.Temperature,
		Humidity:     req.Humidity,
		SoilMoisture: req.SoilMoisture,
	}

	result, appErr := r.svc.ManualAdd(ctx, input)
	if appErr != nil {
		lg.Error(appErr.Error())
		resp.Populate(appErr.Code, appErr.Message, nil, nil, nil)
		ctx.JSON(cerrors.HTTPStatusOf(appErr), resp)
		return
	}

	resp.Populate(result.Code, result.Message, result.Data, nil, nil)
	ctx.JSON(http.StatusCreated, resp)
}

func (r *TelemetryRouter) cleanup(ctx *gin.Context) {
	span, resp, lg, base := r.startSpan(ctx)
	defer span.End()

	input := &restful.CleanupInput{
		TracerCtx: base.TracerCtx,
		Tracer:    base.Tracer,
		Days:      queryInt(ctx, "days", 30),
	}
	lg.Info("Received retention cleanup request", zap.Int("age_days", input.Days))

	result, appErr := r.svc.Cleanup(ctx, input)
	if appErr != nil {
		lg.Error(appErr.Error())
		resp.Populate(appErr.Code, appErr.Message, nil, nil, nil)
		ctx.JSON(cerrors.HTTPStatusOf(appErr), resp)
		return
	}

	resp.Populate(result.Code, result.Message, result.Data, nil, nil)
	ctx.JSON(http.StatusOK, resp)
}

func (r *TelemetryRouter) export(ctx *gin.Context) {
	span, resp, lg, base := r.startSpan(ctx)
	defer span.End()

	input := &restful.ExportInput{
		TracerCtx: base.TracerCtx,
		Tracer:    base.Tracer,
		Hours:     queryInt(ctx, "hours", 24),
		Archive:   ctx.Query("archive") == "true",
	}

	body, archivedKey, appErr := r.svc.ExportCSV(ctx, input)
	if appErr != nil {
		lg.Error(appErr.Error())
		resp.Populate(appErr.Code, appErr.Message, nil, nil, nil)
		ctx.JSON(cerrors.HTTPStatusOf(appErr), resp)
		return
	}

	filename := fmt.Sprintf("telemetry-%s.csv", time.Now().Format("2006-01-02"))
	if archivedKey != "" {
		ctx.Header("X-Archive-Key", archivedKey)
	}
	ctx.Header(constants.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, constants.ContentTypeCSV, body)
}

func (r *TelemetryRouter) analytics(ctx *gin.Context) {
	span, resp, lg, base := r.startSpan(ctx)
	defer span.End()

	input := &restful.WindowInput{
		TracerCtx: base.TracerCtx,
		Tracer:    base.Tracer,
		Hours:     queryInt(ctx, "hours", 24),
	}

	result, appErr := r.svc.GetAnalytics(ctx, input)
	if appErr != nil {
		lg.Error(appErr.Error())
		resp.Populate(appErr.Code, appErr.Message, nil, nil, nil)
		ctx.JSON(cerrors.HTTPStatusOf(appErr), resp)
		return
	}

	resp.Populate(result.Code, result.Message, result.Data, nil, nil)
	ctx.JSON(http.StatusOK, resp)
}

func (r *TelemetryRouter) alerts(ctx *gin.Context) {
	span, resp, lg, input := r.startSpan(ctx)
	defer span.End()

	result, appErr := r.svc.GetAlerts(ctx, input)
	if appErr != nil {
		lg.Error(appErr.Error())
		resp.Populate(appErr.Code, appErr.Message, nil, nil, nil)
		ctx.JSON(cerrors.HTTPStatusOf(appErr), resp)
		return
	}

	resp.Populate(result.Code, result.Message, result.Data, nil, result.Count)
	ctx.JSON(http.StatusOK, resp)
}
