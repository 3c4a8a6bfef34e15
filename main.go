package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"
	"github.com/okieraised/farm-telemetry-agent/internal/alerting"
	"github.com/okieraised/farm-telemetry-agent/internal/analytics"
	"github.com/okieraised/farm-telemetry-agent/internal/broadcast"
	"github.com/okieraised/farm-telemetry-agent/internal/config"
	"github.com/okieraised/farm-telemetry-agent/internal/constants"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/local_cache"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/log"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/mqtt_client"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/pg_client"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/s3_client"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/tracer_client"
	"github.com/okieraised/farm-telemetry-agent/internal/ingest"
	"github.com/okieraised/farm-telemetry-agent/internal/ingest/pull"
	"github.com/okieraised/farm-telemetry-agent/internal/ingest/push"
	"github.com/okieraised/farm-telemetry-agent/internal/ingest/scheduler"
	"github.com/okieraised/farm-telemetry-agent/internal/ingest/validate"
	"github.com/okieraised/farm-telemetry-agent/internal/server/monitoring"
	"github.com/okieraised/farm-telemetry-agent/internal/server/rest_server"
	"github.com/okieraised/farm-telemetry-agent/internal/server/rest_server/routers"
	"github.com/okieraised/farm-telemetry-agent/internal/server/rest_server/services/v1/restful"
	"github.com/okieraised/farm-telemetry-agent/internal/server/rest_server/services/v1/ws"
	"github.com/okieraised/farm-telemetry-agent/internal/store"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var once sync.Once

func mirrorEnvCase() {
	for _, kv := range os.Environ() {
		i := strings.IndexByte(kv, '=')
		if i <= 0 {
			continue
		}
		k, v := kv[:i], kv[i+1:]
		_ = os.Setenv(strings.ToUpper(k), v)
		_ = os.Setenv(strings.ToLower(k), v)
	}
}

func loadDotenvIfExists(filename string, overload bool) (bool, error) {
	if _, err := os.Stat(filename); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if overload {
		return true, godotenv.Overload(filename)
	}
	return true, godotenv.Load(filename)
}

func readConfigIfExists(path string, merge bool) (bool, error) {
	viper.SetConfigFile(path)
	var err error
	if merge {
		err = viper.MergeInConfig()
	} else {
		err = viper.ReadInConfig()
	}
	if err == nil {
		return true, nil
	}
	var nf viper.ConfigFileNotFoundError
	if errors.As(err, &nf) || os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func detectProfile() string {
	from := func(k string) (string, bool) {
		if v, ok := os.LookupEnv(k); ok {
			return strings.ToLower(v), true
		}
		if v, ok := os.LookupEnv(strings.ToUpper(k)); ok {
			return strings.ToLower(v), true
		}
		if v, ok := os.LookupEnv(strings.ToLower(k)); ok {
			return strings.ToLower(v), true
		}
		return "", false
	}
	if v, ok := from("APP_ENV"); ok {
		return v
	}
	return "dev"
}

func Load() error {
	envFound, err := loadDotenvIfExists(".env", false)
	if err != nil {
		return err
	}
	if envFound {
		mirrorEnvCase()
	}
	profile := detectProfile()

	if pfFound, err := loadDotenvIfExists("."+profile+".env", true); err != nil {
		return err
	} else if pfFound {
		mirrorEnvCase()
	}

	cfgFound, err := readConfigIfExists("conf/config.toml", false)
	if err != nil {
		return err
	}

	if !envFound && !cfgFound {
		return fmt.Errorf("no configuration sources found: missing both .env and conf/config.toml")
	}

	if _, err := readConfigIfExists("conf/"+profile+".config.toml", true); err != nil {
		return err
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	return nil
}

// pollingOptions reads the scheduler knobs, falling back to defaults for
// anything unset.
func pollingOptions() []scheduler.Option {
	interval := viper.GetDuration(config.FeedPollInterval)
	if interval <= 0 {
		interval = constants.FeedDefaultPollInterval
	}
	backoff := viper.GetDuration(config.FeedRetryBaseBackoff)
	if backoff <= 0 {
		backoff = constants.FeedDefaultRetryBaseBackoff
	}
	maxRetries := viper.GetInt(config.FeedMaxRetries)
	if maxRetries <= 0 {
		maxRetries = constants.FeedDefaultMaxRetries
	}
	return []scheduler.Option{
		scheduler.WithInterval(interval),
		scheduler.WithBackoff(backoff, maxRetries),
	}
}

func feedKeys() map[domain.Quantity]string {
	return map[domain.Quantity]string{
		domain.QuantityTemperature:  viper.GetString(config.FeedTemperatureKey),
		domain.QuantityHumidity:     viper.GetString(config.FeedHumidityKey),
		domain.QuantitySoilMoisture: viper.GetString(config.FeedSoilMoistureKey),
	}
}

// newPushAdapter wires the broker client and the push adapter together. The
// paho-side auto reconnect stays off so the adapter's bounded reconnect loop
// is the only recovery path.
func newPushAdapter(pipeline *ingest.Pipeline) (*push.Adapter, error) {
	var adapter *push.Adapter

	client, err := mqtt_client.NewMQTTClient(
		viper.GetString(config.MqttEndpoint),
		viper.GetString(config.MqttClientId),
		mqtt_client.WithCredentials(viper.GetString(config.FeedUsername), viper.GetString(config.FeedAPIKey)),
		mqtt_client.WithAutoReconnect(false),
		mqtt_client.WithConnectRetry(false),
		mqtt_client.WithConnectionLostHandler(func(c mqtt.Client, lostErr error) {
			adapter.HandleConnectionLost(c, lostErr)
		}),
	)
	if err != nil {
		return nil, err
	}

	reconnectDelay := viper.GetDuration(config.MqttReconnectDelay)
	if reconnectDelay <= 0 {
		reconnectDelay = constants.PushDefaultReconnectDelay
	}
	maxAttempts := viper.GetInt(config.MqttMaxReconnectAttempts)
	if maxAttempts <= 0 {
		maxAttempts = constants.PushDefaultMaxReconnectAttempts
	}

	adapter = push.NewAdapter(
		client,
		viper.GetString(config.FeedUsername),
		feedKeys(),
		push.WithReconnectPolicy(reconnectDelay, maxAttempts),
	)
	adapter.OnSample(func(sample domain.PartialSample) {
		_, _, appErr := pipeline.Process(context.Background(), sample, domain.SourcePush, validate.ModeScheduled)
		if appErr != nil {
			log.Default().Error(fmt.Sprintf("Failed to process pushed sample: %v", appErr))
		}
	})

	return adapter, nil
}

func init() {
	once.Do(func() {
		err := Load()
		if err != nil {
			panic(fmt.Sprintf("Failed to setup service configuration: %v", err))
		}

		// Init default logger
		err = log.InitDefault()
		if err != nil {
			panic(err)
		}

		if viper.GetBool(config.AgentEnableArchive) {
			log.Default().Info("Started initializing client connection to external S3 storage")
			err = s3_client.NewS3Client(
				context.Background(),
				s3_client.WithRegion(viper.GetString(config.S3Region)),
				s3_client.WithEndpoint(viper.GetString(config.S3Endpoint), viper.GetBool(config.S3UsePathStyle)),
				s3_client.WithStaticCredentials(viper.GetString(config.S3AccessKey), viper.GetString(config.S3SecretKey), ""),
				s3_client.WithRetry(5, 30*time.Second),
				s3_client.WithHTTPClient(
					&http.Client{
						Transport: &http.Transport{
							TLSClientConfig: &tls.Config{
								InsecureSkipVerify: viper.GetBool(config.S3TLSInsecureSkipVerify),
							},
						},
					},
				),
			)
			if err != nil {
				log.Default().Fatal(fmt.Sprintf("Failed to initialize client connection to external S3 storage: %v", err))
			}
			log.Default().Info("Finished initializing client connection to external S3 storage")
		}

		// Initialize OTEL tracer if enabled
		if viper.GetBool(config.AgentEnableTracing) {
			log.Default().Info("Started initializing OTEL tracer")
			_, err = tracer_client.NewTracerClient()
			if err != nil {
				log.Default().Fatal(fmt.Sprintf("Failed to initialize OTEL tracer: %v", err))
			}
			log.Default().Info("Finished initializing OTEL tracer")
		}

		// Initialize local cache
		log.Default().Info("Started initializing local cache")
		err = local_cache.NewLocalCache()
		if err != nil {
			log.Default().Fatal(fmt.Sprintf("Failed to initialize local cache: %v", err))
		}
		log.Default().Info("Finished initializing local cache")
		log.Default().Info("Finished initializing connection to external services")
	})
}

func main() {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	parentCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init database
	err := pg_client.NewPGClient(parentCtx)
	if err != nil {
		log.Default().Fatal(fmt.Sprintf("Failed to initialize database connection: %v", err))
		return
	}
	pgStore := store.NewPostgresStore(pg_client.Pool())
	err = pgStore.Migrate(parentCtx)
	if err != nil {
		log.Default().Fatal(fmt.Sprintf("Failed to migrate telemetry schema: %v", err))
		return
	}
	readingStore := store.NewCachedStore(pgStore, local_cache.Cache())
	defer readingStore.Close()

	// Init fan-out hub
	hub := broadcast.NewHub()
	hub.Run(parentCtx)

	ownerRef := viper.GetString(config.AgentOwnerRef)
	pipeline := ingest.NewPipeline(readingStore, hub, ownerRef)

	puller, err := pull.NewClient()
	if err != nil {
		log.Default().Fatal(fmt.Sprintf("Failed to initialize pull adapter: %v", err))
		return
	}

	// Init push adapter if enabled. A broker that is down at boot leaves the
	// agent in pull-only mode, reported as degraded by the health endpoint.
	var pushAdapter *push.Adapter
	if viper.GetBool(config.AgentEnableMQTT) {
		pushAdapter, err = newPushAdapter(pipeline)
		if err != nil {
			log.Default().Fatal(fmt.Sprintf("Failed to initialize push adapter: %v", err))
			return
		}
		if cErr := pushAdapter.Connect(); cErr != nil {
			log.Default().Error(fmt.Sprintf("Failed to connect push adapter: %v", cErr))
		}
		defer pushAdapter.Disconnect()
	}

	g, ctx := errgroup.WithContext(parentCtx)

	// Init scheduled ingestion
	g.Go(func() error {
		sErr := scheduler.NewScheduler(puller, pipeline, readingStore, pollingOptions()...).Run(ctx)
		if sErr != nil && !errors.Is(sErr, context.Canceled) {
			return sErr
		}
		return ctx.Err()
	})

	// Init profiling
	g.Go(func() error {
		if viper.GetBool(config.AgentEnableMonitoring) {
			mErr := monitoring.NewMonitoringServer(ctx)
			if mErr != nil {
				return mErr
			}
		}

		return ctx.Err()
	})

	// Init HTTP server
	g.Go(func() error {
		// app state
		appState := routers.NewAppState()

		// v1 restful svc
		v1RestState := routers.NewV1RestState()
		v1RestState.SetTelemetryService(
			restful.NewTelemetryService(
				restful.WithReadingStore(readingStore),
				restful.WithPipeline(pipeline),
				restful.WithPuller(puller),
				restful.WithAnalyticsEngine(analytics.NewEngine(readingStore)),
				restful.WithAlertEngine(alerting.NewEngine(readingStore, pgStore)),
				restful.WithOwnerRef(ownerRef),
				restful.WithArchive(viper.GetBool(config.AgentEnableArchive), viper.GetString(config.S3ArchiveBucket)),
			),
		)
		v1RestState.SetAlertRuleService(
			restful.NewAlertRuleService(
				restful.WithAlertRuleStore(pgStore),
			),
		)
		healthOpts := []func(*restful.HealthcheckService){
			restful.WithHealthcheckStore(readingStore),
		}
		if pushAdapter != nil {
			healthOpts = append(healthOpts, restful.WithPushStatus(pushAdapter))
		}
		v1RestState.SetHealthcheckService(
			restful.NewHealthcheckService(healthOpts...),
		)
		appState.SetV1RestState(v1RestState)

		websocketState := routers.NewWebsocketState()
		websocketState.SetWebsocketService(
			ws.NewWebsocketService(
				ws.WithBroadcastHub(hub),
			),
		)
		appState.SetWebsocketState(websocketState)

		rErr := rest_server.NewHTTPServer(ctx, routers.NewRootRouter(appState).InitRouters)
		if rErr != nil {
			return rErr
		}
		return ctx.Err()
	})

	select {
	case sig := <-sigCh:
		log.Default().Debug(fmt.Sprintf("Signal received: %v", sig))
		cancel()

		done := make(chan error, 1)
		go func() {
			done <- g.Wait()
		}()

		select {
		case err = <-done:
			log.Default().Info("All tasks exited, shutting down agent")
			return
		case sig2 := <-sigCh:
			log.Default().Debug(fmt.Sprintf("Second signal received: %v", sig2))
			return
		case <-time.After(constants.GraceWaitPeriod):
			log.Default().Info("Grace period timed out, forcing exit")
			return
		}

	case err = <-func() chan error {
		ch := make(chan error, 1)
		go func() {
			ch <- g.Wait()
		}()
		return ch
	}():
		log.Default().Info(fmt.Sprintf("Services finished early with error: %v", err))
	}
}
