package routers

import (
	"github.com/gin-gonic/gin"
	"github.com/okieraised/farm-telemetry-agent/internal/server/rest_server/routers/v1/restful"
	"github.com/okieraised/farm-telemetry-agent/internal/server/rest_server/routers/v1/ws"
)

type RootRouter struct {
	appState *AppState
}

func NewRootRouter(appState *AppState) *RootRouter {
	return &RootRouter{
		appState: appState,
	}
}

func (rr *RootRouter) InitRouters(engine *gin.Engine) {
	// http
	rootAPIRouter := engine.Group("/api")
	v1Router := rootAPIRouter.Group("/v1")
	{
		telemetryRouter := restful.NewTelemetryRouter(rr.appState.GetV1RestState().GetTelemetryService())
		telemetryRouter.Routes(v1Router)

		alertRuleRouter := restful.NewAlertRuleRouter(rr.appState.GetV1RestState().GetAlertRuleService())
		alertRuleRouter.Routes(v1Router)

		healthcheckRouter := restful.NewHealthcheckRouter(rr.appState.GetV1RestState().GetHealthcheckService())
		healthcheckRouter.Routes(v1Router)
	}

	// websocket
	{
		rootWSRouter := engine.Group("/ws")
		websocketRouter := ws.NewWebsocketRouter(rr.appState.GetWebsocketState().GetWebsocketService())
		websocketRouter.Routes(rootWSRouter)
	}
}
