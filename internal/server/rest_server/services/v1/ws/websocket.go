package ws

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/okieraised/farm-telemetry-agent/internal/api_response"
	"github.com/okieraised/farm-telemetry-agent/internal/broadcast"
	"github.com/okieraised/farm-telemetry-agent/internal/cerrors"
	"github.com/okieraised/farm-telemetry-agent/internal/constants"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/log"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type IWebsocketService interface {
	Subscribe(ctx *gin.Context, tracerCtx context.Context, tracer trace.Tracer) (*api_response.BaseOutput, *cerrors.AppError)
}

type WebsocketService struct {
	hub      *broadcast.Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewWebsocketService(options ...func(*WebsocketService)) *WebsocketService {
	var upgrader = websocket.Upgrader{
		HandshakeTimeout: 5 * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	svc := &WebsocketService{}
	for _, opt := range options {
		opt(svc)
	}
	logger := log.MustNewECSLogger()
	svc.upgrader = upgrader
	svc.logger = logger

	return svc
}

func WithBroadcastHub(hub *broadcast.Hub) func(*WebsocketService) {
	return func(c *WebsocketService) {
		c.hub = hub
	}
}

// Subscribe upgrades the request to a websocket session and registers the
// subscriber with the fan-out hub. The subscriber then receives every newly
// stored reading until it disconnects or falls too far behind.
func (svc *WebsocketService) Subscribe(
	ctx *gin.Context,
	tracerCtx context.Context,
	tracer trace.Tracer,
) (*api_response.BaseOutput, *cerrors.AppError) {
	rootCtx, span := tracer.Start(tracerCtx, "subscribe-telemetry")
	defer span.End()

	resp := &api_response.BaseOutput{}
	lg := svc.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)

	_, cSpan := tracer.Start(rootCtx, "upgrade-connection")
	connID := uuid.New()
	conn, err := svc.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		cSpan.End()
		lg.Error(err.Error())
		return nil, cerrors.ErrGenericBadRequest.WithCause(err)
	}
	cSpan.End()
	lg.Info(fmt.Sprintf("New subscriber connection established with ID: %s", connID.String()))

	client := broadcast.NewClient(connID, conn, svc.hub)

	svc.hub.Register(client)
	go client.Write()
	go client.Read()

	resp.Code = cerrors.OK.Code
	resp.Message = cerrors.OK.Message
	return resp, nil
}
