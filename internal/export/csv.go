package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/okieraised/farm-telemetry-agent/internal/constants"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/s3_client"
	"github.com/pkg/errors"
)

var csvHeader = []string{"timestamp", "temperature", "humidity", "soil_moisture", "source", "needs_irrigation"}

// CSV renders readings as a CSV document, one row per reading in the order
// given. Absent quantities render as empty cells.
func CSV(readings []domain.Reading) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, errors.Wrap(err, "failed to write csv header")
	}

	for i := range readings {
		r := &readings[i]
		row := []string{
			r.Timestamp.Format(time.RFC3339),
			formatFloat(r.Temperature),
			formatFloat(r.Humidity),
			formatInt(r.SoilMoisture),
			string(r.Source),
			strconv.FormatBool(r.NeedsIrrigation()),
		}
		if err := w.Write(row); err != nil {
			return nil, errors.Wrap(err, "failed to write csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to flush csv")
	}
	return buf.Bytes(), nil
}

// Archive uploads a rendered CSV to the archive bucket, keyed by date and a
// caller-supplied label.
func Archive(ctx context.Context, bucket, label string, body []byte) (string, error) {
	key := fmt.Sprintf("telemetry/%s-%s.csv", time.Now().Format("2006-01-02"), label)
	if err := s3_client.Upload(ctx, bucket, key, constants.ContentTypeCSV, body); err != nil {
		return "", err
	}
	return key, nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
