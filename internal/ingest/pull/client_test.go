package pull

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okieraised/farm-telemetry-agent/internal/cerrors"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(
		WithBaseURL(srv.URL),
		WithCredentials("farmer", "aio-key"),
		WithFeed(domain.QuantityTemperature, "temperature"),
		WithFeed(domain.QuantityHumidity, "humidity"),
		WithFeed(domain.QuantitySoilMoisture, "soil-moisture"),
		WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return srv, client
}

func writeFeedRecord(w http.ResponseWriter, value string, at time.Time) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"value":%q,"created_at":%q}`, value, at.Format(time.RFC3339))
}

func TestFetchAllCombinesFeeds(t *testing.T) {
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	_, client := feedServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "aio-key", r.Header.Get("X-AIO-Key"))
		switch r.URL.Path {
		case "/farmer/feeds/temperature/data/last":
			writeFeedRecord(w, "21.5", at)
		case "/farmer/feeds/humidity/data/last":
			writeFeedRecord(w, "60", at.Add(time.Minute))
		case "/farmer/feeds/soil-moisture/data/last":
			writeFeedRecord(w, "700", at.Add(2*time.Minute))
		default:
			http.NotFound(w, r)
		}
	})

	sample, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	assert.True(t, sample.IsComplete())
	assert.Equal(t, 21.5, *sample.Temperature)
	assert.Equal(t, float64(60), *sample.Humidity)
	assert.Equal(t, float64(700), *sample.SoilMoisture)

	// The combined timestamp is the latest per-feed observation time.
	assert.Equal(t, at.Add(2*time.Minute), sample.Timestamp(time.Time{}))
}

func TestFetchAllToleratesEmptyFeed(t *testing.T) {
	at := time.Now().UTC().Truncate(time.Second)
	_, client := feedServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/farmer/feeds/humidity/data/last" {
			http.NotFound(w, r)
			return
		}
		writeFeedRecord(w, "42", at)
	})

	sample, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	assert.False(t, sample.IsComplete())
	assert.Nil(t, sample.Humidity)
	assert.NotNil(t, sample.Temperature)
	assert.NotNil(t, sample.SoilMoisture)
}

func TestFetchAllRejectedCredentials(t *testing.T) {
	_, client := feedServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.FetchAll(context.Background())
	require.Error(t, err)
	assert.True(t, cerrors.IsCode(err, cerrors.ErrSourceUnreachable.Code))
}

func TestFetchAllUnreachableHost(t *testing.T) {
	srv, client := feedServer(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := client.FetchAll(context.Background())
	require.Error(t, err)
	assert.True(t, cerrors.IsCode(err, cerrors.ErrSourceUnreachable.Code))
}

func TestFetchAllSkipsNonNumericPayload(t *testing.T) {
	at := time.Now().UTC()
	_, client := feedServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/farmer/feeds/temperature/data/last" {
			writeFeedRecord(w, "unavailable", at)
			return
		}
		writeFeedRecord(w, "55", at)
	})

	sample, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sample.Temperature)
	assert.NotNil(t, sample.Humidity)
	assert.NotNil(t, sample.SoilMoisture)
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(WithBaseURL("https://io.example.com/api/v2"))
	assert.Error(t, err)
}
