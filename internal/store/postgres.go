package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/pkg/errors"
)

// PostgresStore backs ReadingStore and AlertRuleStore with a pgx pool.
//
// Schema:
//
//	CREATE TABLE IF NOT EXISTS sensor_readings (
//	    ts             TIMESTAMPTZ PRIMARY KEY,
//	    temperature    DOUBLE PRECISION,
//	    humidity       DOUBLE PRECISION,
//	    soil_moisture  INTEGER,
//	    source         TEXT NOT NULL,
//	    owner_ref      TEXT NOT NULL DEFAULT ''
//	);
//	CREATE INDEX IF NOT EXISTS sensor_readings_owner_ts ON sensor_readings (owner_ref, ts DESC);
//
//	CREATE TABLE IF NOT EXISTS alert_rules (
//	    id             UUID PRIMARY KEY,
//	    quantity       TEXT NOT NULL,
//	    threshold      DOUBLE PRECISION NOT NULL,
//	    condition      TEXT NOT NULL,
//	    severity       TEXT NOT NULL,
//	    message        TEXT NOT NULL,
//	    recommendation TEXT NOT NULL DEFAULT '',
//	    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
// The primary key on ts is the dedup mechanism: Save relies on
// ON CONFLICT DO NOTHING instead of a read-then-write check.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS sensor_readings (
    ts             TIMESTAMPTZ PRIMARY KEY,
    temperature    DOUBLE PRECISION,
    humidity       DOUBLE PRECISION,
    soil_moisture  INTEGER,
    source         TEXT NOT NULL,
    owner_ref      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS sensor_readings_owner_ts ON sensor_readings (owner_ref, ts DESC);
CREATE TABLE IF NOT EXISTS alert_rules (
    id             UUID PRIMARY KEY,
    quantity       TEXT NOT NULL,
    threshold      DOUBLE PRECISION NOT NULL,
    condition      TEXT NOT NULL,
    severity       TEXT NOT NULL,
    message        TEXT NOT NULL,
    recommendation TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// Migrate creates the tables and indexes if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return errors.Wrap(err, "failed to run schema migration")
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, r domain.Reading) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO sensor_readings (ts, temperature, humidity, soil_moisture, source, owner_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (ts) DO NOTHING`,
		r.Timestamp, r.Temperature, r.Humidity, r.SoilMoisture, string(r.Source), r.OwnerRef,
	)
	if err != nil {
		return false, errors.Wrap(err, "failed to insert reading")
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) Latest(ctx context.Context, ownerRef string) (*domain.Reading, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT ts, temperature, humidity, soil_moisture, source, owner_ref
		FROM sensor_readings
		WHERE ($1 = '' OR owner_ref = $1)
		ORDER BY ts DESC
		LIMIT 1`, ownerRef,
	)
	var r domain.Reading
	var source string
	err := row.Scan(&r.Timestamp, &r.Temperature, &r.Humidity, &r.SoilMoisture, &source, &r.OwnerRef)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query latest reading")
	}
	r.Source = domain.Source(source)
	return &r, nil
}

func (s *PostgresStore) Historical(ctx context.Context, windowHours int, limit int, ownerRef string) ([]domain.Reading, error) {
	from := windowStart(time.Now(), windowHours)
	rows, err := s.pool.Query(ctx, `
		SELECT ts, temperature, humidity, soil_moisture, source, owner_ref
		FROM sensor_readings
		WHERE ts >= $1 AND ($2 = '' OR owner_ref = $2)
		ORDER BY ts ASC`, from, ownerRef,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query historical readings")
	}
	defer rows.Close()

	var out []domain.Reading
	for rows.Next() {
		var r domain.Reading
		var source string
		if err = rows.Scan(&r.Timestamp, &r.Temperature, &r.Humidity, &r.SoilMoisture, &source, &r.OwnerRef); err != nil {
			return nil, errors.Wrap(err, "failed to scan reading row")
		}
		r.Source = domain.Source(source)
		out = append(out, r)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate reading rows")
	}

	if limit > 0 && len(out) > limit {
		// Keep the most recent N while preserving ascending order.
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *PostgresStore) DeleteOlderThan(ctx context.Context, ageDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -ageDays)
	tag, err := s.pool.Exec(ctx, `DELETE FROM sensor_readings WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete old readings")
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) CreateRule(ctx context.Context, rule domain.AlertRule) (domain.AlertRule, error) {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO alert_rules (id, quantity, threshold, condition, severity, message, recommendation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rule.ID, string(rule.Quantity), rule.Threshold, string(rule.Condition),
		string(rule.Severity), rule.Message, rule.Recommendation, rule.CreatedAt,
	)
	if err != nil {
		return domain.AlertRule{}, errors.Wrap(err, "failed to insert alert rule")
	}
	return rule, nil
}

func (s *PostgresStore) ListRules(ctx context.Context) ([]domain.AlertRule, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, quantity, threshold, condition, severity, message, recommendation, created_at
		FROM alert_rules
		ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query alert rules")
	}
	defer rows.Close()

	var out []domain.AlertRule
	for rows.Next() {
		var r domain.AlertRule
		var quantity, condition, severity string
		if err = rows.Scan(&r.ID, &quantity, &r.Threshold, &condition, &severity, &r.Message, &r.Recommendation, &r.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan alert rule row")
		}
		r.Quantity = domain.Quantity(quantity)
		r.Condition = domain.AlertCondition(condition)
		r.Severity = domain.AlertSeverity(severity)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteRule(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM alert_rules WHERE id = $1`, id)
	if err != nil {
		return false, errors.Wrap(err, "failed to delete alert rule")
	}
	return tag.RowsAffected() > 0, nil
}
