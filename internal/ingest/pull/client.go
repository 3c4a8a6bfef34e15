package pull

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okieraised/farm-telemetry-agent/internal/cerrors"
	"github.com/okieraised/farm-telemetry-agent/internal/config"
	"github.com/okieraised/farm-telemetry-agent/internal/constants"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/log"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const apiKeyHeader = "X-AIO-Key"

// feedRecord is the remote "latest value" document for one feed.
type feedRecord struct {
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

type Options struct {
	BaseURL    string
	Username   string
	APIKey     string
	Feeds      map[domain.Quantity]string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Option func(*Options)

func WithBaseURL(u string) Option { return func(o *Options) { o.BaseURL = u } }

func WithCredentials(username, apiKey string) Option {
	return func(o *Options) { o.Username, o.APIKey = username, apiKey }
}

func WithFeed(q domain.Quantity, key string) Option {
	return func(o *Options) { o.Feeds[q] = key }
}

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }

func WithHTTPClient(c *http.Client) Option { return func(o *Options) { o.HTTPClient = c } }

func defaultOptionsFromViper() Options {
	timeout := viper.GetDuration(config.FeedRequestTimeout)
	if timeout <= 0 {
		timeout = constants.FeedDefaultRequestTimeout
	}
	return Options{
		BaseURL:  viper.GetString(config.FeedBaseURL),
		Username: viper.GetString(config.FeedUsername),
		APIKey:   viper.GetString(config.FeedAPIKey),
		Feeds: map[domain.Quantity]string{
			domain.QuantityTemperature:  viper.GetString(config.FeedTemperatureKey),
			domain.QuantityHumidity:     viper.GetString(config.FeedHumidityKey),
			domain.QuantitySoilMoisture: viper.GetString(config.FeedSoilMoistureKey),
		},
		Timeout: timeout,
	}
}

// Client fetches the latest per-feed values from the remote sensor-hub REST
// API, one request per physical quantity.
type Client struct {
	baseURL  string
	username string
	apiKey   string
	feeds    map[domain.Quantity]string
	http     *http.Client
	logger   *log.Logger
	now      func() time.Time
}

func NewClient(optFns ...Option) (*Client, error) {
	conf := defaultOptionsFromViper()
	for _, fn := range optFns {
		if fn != nil {
			fn(&conf)
		}
	}

	if conf.BaseURL == "" || conf.Username == "" || conf.APIKey == "" {
		return nil, errors.New("feed base url, username and api key must be configured")
	}

	httpClient := conf.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: conf.Timeout}
	}

	return &Client{
		baseURL:  conf.BaseURL,
		username: conf.Username,
		apiKey:   conf.APIKey,
		feeds:    conf.Feeds,
		http:     httpClient,
		logger:   log.MustNewECSLogger().WithComponent("pull-adapter"),
		now:      time.Now,
	}, nil
}

// FetchAll issues one request per quantity and combines the results into a
// partial sample. A feed that has not emitted yet ("not found") is absent,
// not an error; only an unreachable or misconfigured transport fails the
// whole invocation.
func (c *Client) FetchAll(ctx context.Context) (domain.PartialSample, error) {
	var sample domain.PartialSample

	for _, q := range domain.Quantities {
		feedKey := c.feeds[q]
		if feedKey == "" {
			continue
		}

		value, at, found, err := c.fetchFeed(ctx, feedKey)
		if err != nil {
			return domain.PartialSample{}, err
		}
		if !found {
			c.logger.Debug("Feed has no data yet", zap.String("feed", feedKey))
			continue
		}

		switch q {
		case domain.QuantityTemperature:
			sample.Temperature, sample.TemperatureAt = &value, at
		case domain.QuantityHumidity:
			sample.Humidity, sample.HumidityAt = &value, at
		case domain.QuantitySoilMoisture:
			sample.SoilMoisture, sample.SoilMoistureAt = &value, at
		}
	}

	return sample, nil
}

// fetchFeed returns the latest value for one feed. found=false means the
// feed exists but holds no data, or the payload was unusable.
func (c *Client) fetchFeed(ctx context.Context, feedKey string) (value float64, at time.Time, found bool, err error) {
	url := fmt.Sprintf("%s/%s/feeds/%s/data/last", c.baseURL, c.username, feedKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, time.Time{}, false, errors.Wrap(err, "failed to build feed request")
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, time.Time{}, false, cerrors.ErrSourceUnreachable.WithCause(err).
			WithMessage("feed endpoint unreachable: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, time.Time{}, false, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return 0, time.Time{}, false, cerrors.ErrSourceUnreachable.
			WithMessage("feed credentials rejected with status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("Unexpected feed response status",
			zap.String("feed", feedKey), zap.Int("status", resp.StatusCode))
		return 0, time.Time{}, false, nil
	}

	var rec feedRecord
	if err = json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		c.logger.Warn("Failed to decode feed payload",
			zap.String("feed", feedKey), zap.Error(err))
		return 0, time.Time{}, false, nil
	}

	value, err = strconv.ParseFloat(rec.Value, 64)
	if err != nil {
		c.logger.Warn("Feed payload is not numeric",
			zap.String("feed", feedKey), zap.String("value", rec.Value))
		return 0, time.Time{}, false, nil
	}

	return value, rec.CreatedAt, true, nil
}

// Now resolves the fallback timestamp used when no per-feed observation time
// is available.
func (c *Client) Now() time.Time {
	return c.now()
}
