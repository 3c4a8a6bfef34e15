package push

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/log"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// State is the adapter connection state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// SampleHandler receives each complete sample assembled from the per-feed
// topics.
type SampleHandler func(sample domain.PartialSample)

type Options struct {
	ConnectTimeout       time.Duration
	SubscribeTimeout     time.Duration
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
}

type Option func(*Options)

func WithConnectTimeout(d time.Duration) Option {
	return func(o *Options) { o.ConnectTimeout = d }
}

func WithReconnectPolicy(delay time.Duration, maxAttempts int) Option {
	return func(o *Options) { o.ReconnectDelay, o.MaxReconnectAttempts = delay, maxAttempts }
}

// Adapter subscribes to one broker topic per quantity and assembles complete
// samples from the inbound per-feed messages. Reconnection after a transport
// loss is bounded: a fixed delay between attempts and a capped attempt
// count, after which the adapter stays down until externally restarted.
type Adapter struct {
	client  mqtt.Client
	topics  map[string]domain.Quantity // topic -> quantity
	acc     accumulator
	state   atomic.Int32
	handler atomic.Pointer[SampleHandler]
	logger  *log.Logger

	connectTimeout   time.Duration
	subscribeTimeout time.Duration
	reconnectDelay   time.Duration
	maxReconnects    int

	mu       sync.Mutex
	stopCh   chan struct{}
	stopOnce *sync.Once
}

// NewAdapter wires the adapter onto a broker client. Topics follow the
// sensor hub convention <account>/feeds/<feedKey>.
func NewAdapter(client mqtt.Client, account string, feeds map[domain.Quantity]string, optFns ...Option) *Adapter {
	conf := Options{
		ConnectTimeout:       10 * time.Second,
		SubscribeTimeout:     5 * time.Second,
		ReconnectDelay:       5 * time.Second,
		MaxReconnectAttempts: 10,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&conf)
		}
	}

	topics := make(map[string]domain.Quantity, len(feeds))
	for q, feedKey := range feeds {
		if feedKey == "" {
			continue
		}
		topics[fmt.Sprintf("%s/feeds/%s", account, feedKey)] = q
	}

	return &Adapter{
		client:           client,
		topics:           topics,
		logger:           log.MustNewECSLogger().WithComponent("push-adapter"),
		connectTimeout:   conf.ConnectTimeout,
		subscribeTimeout: conf.SubscribeTimeout,
		reconnectDelay:   conf.ReconnectDelay,
		maxReconnects:    conf.MaxReconnectAttempts,
		stopCh:           make(chan struct{}),
		stopOnce:         &sync.Once{},
	}
}

// OnSample registers the handler invoked for each complete sample.
func (a *Adapter) OnSample(fn SampleHandler) {
	a.handler.Store(&fn)
}

// State returns the current connection state.
func (a *Adapter) State() State {
	return State(a.state.Load())
}

// Connect establishes the broker session and subscribes to the per-quantity
// topics. On a later transport loss the adapter schedules bounded reconnect
// attempts on its own.
func (a *Adapter) Connect() error {
	a.mu.Lock()
	select {
	case <-a.stopCh:
		// Re-arm after an explicit Disconnect.
		a.stopCh = make(chan struct{})
		a.stopOnce = &sync.Once{}
	default:
	}
	a.mu.Unlock()

	return a.connect()
}

func (a *Adapter) connect() error {
	a.state.Store(int32(StateConnecting))

	tok := a.client.Connect()
	if !tok.WaitTimeout(a.connectTimeout) {
		a.state.Store(int32(StateDisconnected))
		return errors.Errorf("broker connect timeout after %s", a.connectTimeout)
	}
	if err := tok.Error(); err != nil {
		a.state.Store(int32(StateDisconnected))
		return errors.Wrap(err, "failed to connect to broker")
	}

	if err := a.subscribeAll(); err != nil {
		a.client.Disconnect(250)
		a.state.Store(int32(StateDisconnected))
		return err
	}

	a.state.Store(int32(StateConnected))
	a.logger.Info("Connected to broker", zap.Int("topics", len(a.topics)))
	return nil
}

func (a *Adapter) subscribeAll() error {
	for topic := range a.topics {
		tok := a.client.Subscribe(topic, 0, a.handleMessage)
		if !tok.WaitTimeout(a.subscribeTimeout) {
			return errors.Errorf("subscribe timeout on topic %s", topic)
		}
		if err := tok.Error(); err != nil {
			return errors.Wrapf(err, "failed to subscribe to topic %s", topic)
		}
	}
	return nil
}

// HandleConnectionLost transitions back to Disconnected and starts the
// bounded reconnect loop. Wire this as the paho connection-lost handler.
func (a *Adapter) HandleConnectionLost(_ mqtt.Client, err error) {
	a.state.Store(int32(StateDisconnected))
	a.logger.Warn("Broker connection lost", zap.Error(err))
	go a.reconnectLoop()
}

func (a *Adapter) reconnectLoop() {
	for attempt := 1; attempt <= a.maxReconnects; attempt++ {
		select {
		case <-a.stopCh:
			return
		case <-time.After(a.reconnectDelay):
		}

		a.logger.Info("Attempting broker reconnect",
			zap.Int("attempt", attempt), zap.Int("max_attempts", a.maxReconnects))
		if err := a.connect(); err != nil {
			a.logger.Warn("Broker reconnect failed", zap.Error(err))
			continue
		}
		return
	}
	a.logger.Error("Broker reconnect attempts exhausted, push ingestion stopped until restart")
}

// Disconnect closes the session and cancels any pending reconnect attempts.
func (a *Adapter) Disconnect() {
	a.mu.Lock()
	a.stopOnce.Do(func() { close(a.stopCh) })
	a.mu.Unlock()

	if a.client.IsConnected() {
		a.client.Disconnect(250)
	}
	a.state.Store(int32(StateDisconnected))
	a.logger.Info("Disconnected from broker")
}

// handleMessage parses one per-feed message and feeds the accumulator.
// Payloads are plain numeric strings; anything else is logged and dropped
// without touching the values collected for the other quantities.
func (a *Adapter) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	q, ok := a.topics[msg.Topic()]
	if !ok {
		return
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(string(msg.Payload())), 64)
	if err != nil {
		a.logger.Warn("Dropping malformed feed payload",
			zap.String("topic", msg.Topic()), zap.String("payload", string(msg.Payload())))
		return
	}

	sample, emitted := a.acc.set(q, value, time.Now())
	if !emitted {
		return
	}
	if fn := a.handler.Load(); fn != nil {
		(*fn)(sample)
	}
}

// Pending exposes the partially accumulated sample, used by the health
// endpoint to report assembly progress.
func (a *Adapter) Pending() domain.PartialSample {
	return a.acc.snapshot()
}
