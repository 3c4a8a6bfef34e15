package restful

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/okieraised/farm-telemetry-agent/internal/api_response"
	"github.com/okieraised/farm-telemetry-agent/internal/cerrors"
	"github.com/okieraised/farm-telemetry-agent/internal/constants"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/log"
	"github.com/okieraised/farm-telemetry-agent/internal/ingest/push"
	"github.com/okieraised/farm-telemetry-agent/internal/store"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type IHealthcheckService interface {
	Healthcheck(ctx *gin.Context, input *HealthcheckInput) (*api_response.BaseOutput, *cerrors.AppError)
}

// PushStatus exposes the push adapter state to the health endpoint.
type PushStatus interface {
	State() push.State
	Pending() domain.PartialSample
}

type HealthcheckService struct {
	store     store.ReadingStore
	push      PushStatus
	startedAt time.Time
	logger    *log.Logger
}

func NewHealthcheckService(options ...func(*HealthcheckService)) *HealthcheckService {
	svc := &HealthcheckService{startedAt: time.Now()}
	for _, opt := range options {
		opt(svc)
	}
	svc.logger = log.MustNewECSLogger()
	return svc
}

func WithHealthcheckStore(s store.ReadingStore) func(*HealthcheckService) {
	return func(svc *HealthcheckService) { svc.store = s }
}

func WithPushStatus(p PushStatus) func(*HealthcheckService) {
	return func(svc *HealthcheckService) { svc.push = p }
}

type HealthcheckInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
}

type HealthcheckOutput struct {
	Status        string    `json:"status"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Store         StoreInfo `json:"store"`
	Push          PushInfo  `json:"push"`
}

type StoreInfo struct {
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

type PushInfo struct {
	State           string `json:"state"`
	PendingSample   bool   `json:"pending_sample"`
	PendingComplete bool   `json:"pending_complete"`
}

func (svc *HealthcheckService) Healthcheck(ctx *gin.Context, input *HealthcheckInput) (*api_response.BaseOutput, *cerrors.AppError) {
	rootCtx, span := input.Tracer.Start(input.TracerCtx, "healthcheck-handler")
	defer span.End()

	resp := &api_response.BaseOutput{}
	lg := svc.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)

	respData := HealthcheckOutput{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(svc.startedAt).Seconds()),
	}

	_, cSpan := input.Tracer.Start(rootCtx, "ping-store")
	respData.Store.Reachable = true
	if err := svc.store.Ping(ctx); err != nil {
		respData.Status = "degraded"
		respData.Store.Reachable = false
		respData.Store.Error = err.Error()
		lg.Warn("Store unreachable during healthcheck", zap.Error(err))
	}
	cSpan.End()

	if svc.push != nil {
		state := svc.push.State()
		pending := svc.push.Pending()
		respData.Push = PushInfo{
			State:           state.String(),
			PendingSample:   !pending.IsEmpty(),
			PendingComplete: pending.IsComplete(),
		}
		if state != push.StateConnected {
			respData.Status = "degraded"
		}
	} else {
		respData.Push.State = "disabled"
	}

	resp.Code = cerrors.OK.Code
	resp.Message = cerrors.OK.Message
	resp.Data = respData

	return resp, nil
}
