package config

const (
	AgentID                 = "agent.id"
	AgentEnableMonitoring   = "agent.enable_monitoring"
	AgentMonitoringPort     = "agent.monitoring_port"
	AgentLogLevel           = "agent.log_level"
	AgentHTTPPort           = "agent.http_port"
	AgentHTTPMode           = "agent.http_mode"
	AgentHTTPRequestTimeout = "agent.http_request_timeout"
	AgentTLSCertFile        = "agent.tls_cert_file"
	AgentTLSKeyFile         = "agent.tls_key_file"
	AgentEnableMQTT         = "agent.enable_mqtt"
	AgentEnableTracing      = "agent.enable_tracing"
	AgentEnableArchive      = "agent.enable_archive"
	AgentOwnerRef           = "agent.owner_ref"
)

const (
	FeedUsername         = "feed.username"
	FeedAPIKey           = "feed.api_key"
	FeedBaseURL          = "feed.base_url"
	FeedTemperatureKey   = "feed.temperature_key"
	FeedHumidityKey      = "feed.humidity_key"
	FeedSoilMoistureKey  = "feed.soil_moisture_key"
	FeedRequestTimeout   = "feed.request_timeout"
	FeedPollInterval     = "feed.poll_interval"
	FeedRetryBaseBackoff = "feed.retry_base_backoff"
	FeedMaxRetries       = "feed.max_retries"
)

const (
	MqttEndpoint              = "mqtt.endpoint"
	MqttClientId              = "mqtt.client_id"
	MqttCleanSession          = "mqtt.clean_session"
	MqttAutoReconnect         = "mqtt.auto_reconnect"
	MqttConnectRetry          = "mqtt.connect_retry"
	MqttMaxConnectInterval    = "mqtt.max_connect_interval"
	MqttWriteTimeout          = "mqtt.write_timeout"
	MqttPingTimeout           = "mqtt.ping_timeout"
	MqttKeepAliveDuration     = "mqtt.keep_alive_duration"
	MqttResumeSubs            = "mqtt.resume_subs"
	MqttConnectTimeout        = "mqtt.connect_timeout"
	MqttConnectRetryInterval  = "mqtt.connect_retry_interval"
	MqttTLSInsecureSkipVerify = "mqtt.tls_insecure_skip_verify"
	MqttReconnectDelay        = "mqtt.reconnect_delay"
	MqttMaxReconnectAttempts  = "mqtt.max_reconnect_attempts"
)

const (
	DatabaseHost     = "database.host"
	DatabasePort     = "database.port"
	DatabaseUser     = "database.user"
	DatabasePassword = "database.password"
	DatabaseName     = "database.name"
	DatabaseMaxConns = "database.max_conns"
)

const (
	S3Region                = "s3.region"
	S3Endpoint              = "s3.endpoint"
	S3AccessKey             = "s3.access_key"
	S3SecretKey             = "s3.secret_key"
	S3ArchiveBucket         = "s3.archive_bucket"
	S3UsePathStyle          = "s3.use_path_style"
	S3TLSInsecureSkipVerify = "s3.tls_insecure_skip_verify"
)
