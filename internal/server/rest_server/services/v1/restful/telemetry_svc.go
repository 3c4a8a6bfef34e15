package restful

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/okieraised/farm-telemetry-agent/internal/analytics"
	"github.com/okieraised/farm-telemetry-agent/internal/api_response"
	"github.com/okieraised/farm-telemetry-agent/internal/cerrors"
	"github.com/okieraised/farm-telemetry-agent/internal/constants"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/export"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/log"
	"github.com/okieraised/farm-telemetry-agent/internal/ingest"
	"github.com/okieraised/farm-telemetry-agent/internal/ingest/validate"
	"github.com/okieraised/farm-telemetry-agent/internal/store"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ITelemetryService interface {
	FetchNow(ctx *gin.Context, input *TelemetryInput) (*api_response.BaseOutput, *cerrors.AppError)
	GetLatest(ctx *gin.Context, input *TelemetryInput) (*api_response.BaseOutput, *cerrors.AppError)
	GetHistorical(ctx *gin.Context, input *HistoricalInput) (*api_response.BaseOutput, *cerrors.AppError)
	GetStats(ctx *gin.Context, input *WindowInput) (*api_response.BaseOutput, *cerrors.AppError)
	ManualAdd(ctx *gin.Context, input *ManualAddInput) (*api_response.BaseOutput, *cerrors.AppError)
	Cleanup(ctx *gin.Context, input *CleanupInput) (*api_response.BaseOutput, *cerrors.AppError)
	ExportCSV(ctx *gin.Context, input *ExportInput) ([]byte, string, *cerrors.AppError)
	GetAnalytics(ctx *gin.Context, input *WindowInput) (*api_response.BaseOutput, *cerrors.AppError)
	GetAlerts(ctx *gin.Context, input *TelemetryInput) (*api_response.BaseOutput, *cerrors.AppError)
}

// Puller matches the pull adapter contract used by the fetch-now operation.
type Puller interface {
	FetchAll(ctx context.Context) (domain.PartialSample, error)
}

type TelemetryService struct {
	store     store.ReadingStore
	pipeline  *ingest.Pipeline
	puller    Puller
	analytics *analytics.Engine
	alerts    AlertEvaluator
	ownerRef  string

	archiveEnabled bool
	archiveBucket  string

	logger *log.Logger
}

// AlertEvaluator matches the alert engine contract.
type AlertEvaluator interface {
	Evaluate(ctx context.Context, ownerRef string) ([]domain.Alert, *cerrors.AppError)
}

func NewTelemetryService(options ...func(*TelemetryService)) *TelemetryService {
	svc := &TelemetryService{}
	for _, opt := range options {
		opt(svc)
	}
	svc.logger = log.MustNewECSLogger()
	return svc
}

func WithReadingStore(s store.ReadingStore) func(*TelemetryService) {
	return func(svc *TelemetryService) { svc.store = s }
}

func WithPipeline(p *ingest.Pipeline) func(*TelemetryService) {
	return func(svc *TelemetryService) { svc.pipeline = p }
}

func WithPuller(p Puller) func(*TelemetryService) {
	return func(svc *TelemetryService) { svc.puller = p }
}

func WithAnalyticsEngine(e *analytics.Engine) func(*TelemetryService) {
	return func(svc *TelemetryService) { svc.analytics = e }
}

func WithAlertEngine(e AlertEvaluator) func(*TelemetryService) {
	return func(svc *TelemetryService) { svc.alerts = e }
}

func WithOwnerRef(ref string) func(*TelemetryService) {
	return func(svc *TelemetryService) { svc.ownerRef = ref }
}

func WithArchive(enabled bool, bucket string) func(*TelemetryService) {
	return func(svc *TelemetryService) {
		svc.archiveEnabled = enabled
		svc.archiveBucket = bucket
	}
}

type TelemetryInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
}

type HistoricalInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
	Hours     int
	Limit     int
}

type WindowInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
	Hours     int
}

type ManualAddInput struct {
	TracerCtx    context.Context
	Tracer       trace.Tracer
	Temperature  *float64
	Humidity     *float64
	SoilMoisture *float64
}

type CleanupInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
	Days      int
}

type ExportInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
	Hours     int
	Archive   bool
}

// ReadingOutput wraps a reading with its irrigation flag for API consumers.
type ReadingOutput struct {
	domain.Reading
	NeedsIrrigation bool `json:"needs_irrigation"`
	Stored          bool `json:"stored"`
}

// QuantitySummary is one quantity's slice of the stats endpoint.
type QuantitySummary struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
	Current float64 `json:"current"`
	Count   int     `json:"count"`
}

// FetchNow triggers one pull-ingestion pass outside the schedule. It runs
// the same scheduled-path strictness: a partial sample is accepted, any
// out-of-range field rejects the whole sample.
func (svc *TelemetryService) FetchNow(ctx *gin.Context, input *TelemetryInput) (*api_response.BaseOutput, *cerrors.AppError) {
	rootCtx, span := input.Tracer.Start(input.TracerCtx, "fetch-now-handler")
	defer span.End()

	lg := svc.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)

	_, cSpan := input.Tracer.Start(rootCtx, "pull-feeds")
	sample, err := svc.puller.FetchAll(ctx)
	if err != nil {
		cSpan.End()
		lg.Error(err.Error())
		if appErr, ok := err.(*cerrors.AppError); ok {
			return nil, appErr
		}
		return nil, cerrors.ErrSourceUnreachable.WithCause(err)
	}
	cSpan.End()

	_, cSpan = input.Tracer.Start(rootCtx, "process-sample")
	reading, stored, appErr := svc.pipeline.Process(ctx, sample, domain.SourcePoll, validate.ModeScheduled)
	cSpan.End()
	if appErr != nil {
		lg.Error(appErr.Error())
		return nil, appErr
	}

	resp := &api_response.BaseOutput{Code: cerrors.OK.Code, Message: cerrors.OK.Message}
	resp.Data = ReadingOutput{Reading: *reading, NeedsIrrigation: reading.NeedsIrrigation(), Stored: stored}
	return resp, nil
}

func (svc *TelemetryService) GetLatest(ctx *gin.Context, input *TelemetryInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "get-latest-handler")
	defer span.End()

	latest, err := svc.store.Latest(ctx, svc.ownerRef)
	if err != nil {
		svc.logger.Error(err.Error())
		return nil, cerrors.ErrStoreUnavailable.WithCause(err)
	}
	if latest == nil {
		return nil, cerrors.ErrNoTelemetryData
	}

	resp := &api_response.BaseOutput{Code: cerrors.OK.Code, Message: cerrors.OK.Message}
	resp.Data = ReadingOutput{Reading: *latest, NeedsIrrigation: latest.NeedsIrrigation(), Stored: true}
	return resp, nil
}

func (svc *TelemetryService) GetHistorical(ctx *gin.Context, input *HistoricalInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "get-historical-handler")
	defer span.End()

	if input.Hours <= 0 {
		return nil, cerrors.ErrInvalidWindow.WithMessage("window must be a positive number of hours, got %d", input.Hours)
	}

	readings, err := svc.store.Historical(ctx, input.Hours, input.Limit, svc.ownerRef)
	if err != nil {
		svc.logger.Error(err.Error())
		return nil, cerrors.ErrStoreUnavailable.WithCause(err)
	}

	resp := &api_response.BaseOutput{Code: cerrors.OK.Code, Message: cerrors.OK.Message}
	resp.Data = readings
	resp.Count = len(readings)
	return resp, nil
}

func (svc *TelemetryService) GetStats(ctx *gin.Context, input *WindowInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "get-stats-handler")
	defer span.End()

	if input.Hours <= 0 {
		return nil, cerrors.ErrInvalidWindow.WithMessage("window must be a positive number of hours, got %d", input.Hours)
	}

	readings, err := svc.store.Historical(ctx, input.Hours, 0, svc.ownerRef)
	if err != nil {
		svc.logger.Error(err.Error())
		return nil, cerrors.ErrStoreUnavailable.WithCause(err)
	}
	if len(readings) == 0 {
		return nil, cerrors.ErrNoTelemetryData
	}

	stats := make(map[domain.Quantity]QuantitySummary)
	for _, q := range domain.Quantities {
		var series []float64
		for i := range readings {
			if v, ok := readings[i].Value(q); ok {
				series = append(series, v)
			}
		}
		if len(series) == 0 {
			continue
		}
		minV, maxV := analytics.MinMax(series)
		stats[q] = QuantitySummary{
			Min:     minV,
			Max:     maxV,
			Average: analytics.Mean(series),
			Current: series[len(series)-1],
			Count:   len(series),
		}
	}

	resp := &api_response.BaseOutput{Code: cerrors.OK.Code, Message: cerrors.OK.Message}
	resp.Data = stats
	resp.Count = len(readings)
	return resp, nil
}

// ManualAdd stores an operator-entered reading. Unlike the scheduled path,
// all three quantities are required.
func (svc *TelemetryService) ManualAdd(ctx *gin.Context, input *ManualAddInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "manual-add-handler")
	defer span.End()

	now := time.Now()
	sample := domain.PartialSample{
		Temperature:    input.Temperature,
		Humidity:       input.Humidity,
		SoilMoisture:   input.SoilMoisture,
		TemperatureAt:  now,
		HumidityAt:     now,
		SoilMoistureAt: now,
	}

	reading, stored, appErr := svc.pipeline.Process(ctx, sample, domain.SourceManual, validate.ModeManual)
	if appErr != nil {
		svc.logger.Error(appErr.Error())
		return nil, appErr
	}

	resp := &api_response.BaseOutput{Code: cerrors.OK.Code, Message: cerrors.OK.Message}
	resp.Data = ReadingOutput{Reading: *reading, NeedsIrrigation: reading.NeedsIrrigation(), Stored: stored}
	return resp, nil
}

func (svc *TelemetryService) Cleanup(ctx *gin.Context, input *CleanupInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "cleanup-handler")
	defer span.End()

	if input.Days <= 0 {
		return nil, cerrors.ErrGenericBadRequest.WithMessage("retention age must be a positive number of days, got %d", input.Days)
	}

	removed, err := svc.store.DeleteOlderThan(ctx, input.Days)
	if err != nil {
		svc.logger.Error(err.Error())
		return nil, cerrors.ErrStoreUnavailable.WithCause(err)
	}
	svc.logger.Info("Retention cleanup finished",
		zap.Int("age_days", input.Days), zap.Int64("removed", removed))

	resp := &api_response.BaseOutput{Code: cerrors.OK.Code, Message: cerrors.OK.Message}
	resp.Data = map[string]any{"removed": removed, "age_days": input.Days}
	return resp, nil
}

// ExportCSV renders the trailing window as CSV. When archiving is enabled
// and requested, the document is also uploaded to the archive bucket.
func (svc *TelemetryService) ExportCSV(ctx *gin.Context, input *ExportInput) ([]byte, string, *cerrors.AppError) {
	rootCtx, span := input.Tracer.Start(input.TracerCtx, "export-csv-handler")
	defer span.End()

	if input.Hours <= 0 {
		return nil, "", cerrors.ErrInvalidWindow.WithMessage("window must be a positive number of hours, got %d", input.Hours)
	}

	readings, err := svc.store.Historical(ctx, input.Hours, 0, svc.ownerRef)
	if err != nil {
		svc.logger.Error(err.Error())
		return nil, "", cerrors.ErrStoreUnavailable.WithCause(err)
	}
	if len(readings) == 0 {
		return nil, "", cerrors.ErrNoTelemetryData
	}

	body, err := export.CSV(readings)
	if err != nil {
		svc.logger.Error(err.Error())
		return nil, "", cerrors.ErrGenericInternalServer.WithCause(err)
	}

	var archivedKey string
	if input.Archive && svc.archiveEnabled {
		_, cSpan := input.Tracer.Start(rootCtx, "archive-upload")
		archivedKey, err = export.Archive(ctx, svc.archiveBucket, "export", body)
		cSpan.End()
		if err != nil {
			svc.logger.Error(err.Error())
			return nil, "", cerrors.ErrArchiveUnavailable.WithCause(err)
		}
		svc.logger.Info("Export archived", zap.String("key", archivedKey))
	}

	return body, archivedKey, nil
}

func (svc *TelemetryService) GetAnalytics(ctx *gin.Context, input *WindowInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "get-analytics-handler")
	defer span.End()

	report, appErr := svc.analytics.Analyze(ctx, input.Hours, svc.ownerRef)
	if appErr != nil {
		return nil, appErr
	}

	resp := &api_response.BaseOutput{Code: cerrors.OK.Code, Message: cerrors.OK.Message}
	resp.Data = report
	return resp, nil
}

func (svc *TelemetryService) GetAlerts(ctx *gin.Context, input *TelemetryInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "get-alerts-handler")
	defer span.End()

	alerts, appErr := svc.alerts.Evaluate(ctx, svc.ownerRef)
	if appErr != nil {
		return nil, appErr
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}

	resp := &api_response.BaseOutput{Code: cerrors.OK.Code, Message: cerrors.OK.Message}
	resp.Data = alerts
	resp.Count = len(alerts)
	return resp, nil
}
