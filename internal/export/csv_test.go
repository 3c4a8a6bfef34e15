package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/utilities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVHeaderOnly(t *testing.T) {
	body, err := CSV(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, csvHeader, records[0])
}

func TestCSVRendersReadings(t *testing.T) {
	ts := time.Date(2026, 8, 30, 6, 30, 0, 0, time.UTC)
	readings := []domain.Reading{
		{
			Temperature:  utilities.Ptr(21.5),
			Humidity:     utilities.Ptr(60.25),
			SoilMoisture: utilities.Ptr(250),
			Timestamp:    ts,
			Source:       domain.SourcePoll,
		},
		{
			// Partial reading: absent quantities render as empty cells.
			SoilMoisture: utilities.Ptr(900),
			Timestamp:    ts.Add(time.Minute),
			Source:       domain.SourcePush,
		},
	}

	body, err := CSV(readings)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"2026-08-30T06:30:00Z", "21.5", "60.25", "250", "poll", "true",
	}, records[1])
	assert.Equal(t, []string{
		"2026-08-30T06:31:00Z", "", "", "900", "push", "false",
	}, records[2])
}
