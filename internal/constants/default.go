package constants

import "time"

const (
	AgentDefaultHTTPPort       = 8080
	AgentDefaultMonitoringPort = 6060
)

const (
	DefaultHTTPRequestTimeout = 10
	GraceWaitPeriod           = 10 * time.Second
)

const (
	MqttDefaultWriteTimeout         = 10 * time.Second
	MqttDefaultKeepAlive            = 30 * time.Second
	MqttDefaultPingTimeout          = 5 * time.Second
	MqttDefaultMaxReconnectInterval = 30 * time.Second
	MqttDefaultConnectTimeout       = 10 * time.Second
	MqttDefaultConnectRetryInterval = 10 * time.Second
)

const (
	FeedDefaultRequestTimeout   = 10 * time.Second
	FeedDefaultPollInterval     = 5 * time.Minute
	FeedDefaultRetryBaseBackoff = 5 * time.Second
	FeedDefaultMaxRetries       = 3
)

const (
	PushDefaultReconnectDelay       = 5 * time.Second
	PushDefaultMaxReconnectAttempts = 10
)
