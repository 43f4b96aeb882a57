package store

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/i474232898/weather-insights/internal/common"
	"github.com/i474232898/weather-insights/internal/weather"
)

//go:embed schema.sql
var schema string

const snapshotColumns = `id, display_city, country, temperature, feels_like, humidity,
	wind_speed, pressure, precip_mm, condition, recorded_at`

// PostgresStore persists weather snapshots in the weather_records table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the weather_records table and its index when missing.
func (r *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: failed to apply schema: %w", err)
	}
	return nil
}

// Health checks database connectivity.
func (r *PostgresStore) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

// SaveSnapshot persists a snapshot. The city is stored normalized so lookups
// are case-insensitive; display_city keeps the spelling that was observed.
func (r *PostgresStore) SaveSnapshot(ctx context.Context, loc weather.Location, s weather.WeatherSnapshot) error {
	query := `
		INSERT INTO weather_records (
			id, city, display_city, country, temperature, feels_like, humidity,
			wind_speed, pressure, precip_mm, condition, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		s.ID, common.NormalizeCity(loc.City), loc.City, countryKey(loc), s.Temperature, s.FeelsLike, s.Humidity,
		s.WindSpeed, s.Pressure, s.PrecipMM, string(s.Condition), s.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save weather snapshot: %w", err)
	}
	return nil
}

// GetLatest returns the most recent snapshot for a location.
func (r *PostgresStore) GetLatest(ctx context.Context, loc weather.Location) (weather.WeatherSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM weather_records
		WHERE city = $1 AND country = $2
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	rows, err := r.pool.Query(ctx, query, common.NormalizeCity(loc.City), countryKey(loc))
	if err != nil {
		return weather.WeatherSnapshot{}, fmt.Errorf("postgres: failed to query latest snapshot: %w", err)
	}
	snapshots, err := scanSnapshots(rows, loc)
	if err != nil {
		return weather.WeatherSnapshot{}, err
	}
	if len(snapshots) == 0 {
		return weather.WeatherSnapshot{}, ErrNotFound
	}
	return snapshots[0], nil
}

// GetRange returns snapshots recorded between from and to (inclusive), oldest first.
func (r *PostgresStore) GetRange(ctx context.Context, loc weather.Location, from, to time.Time) ([]weather.WeatherSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM weather_records
		WHERE city = $1 AND country = $2 AND recorded_at BETWEEN $3 AND $4
		ORDER BY recorded_at ASC
	`

	rows, err := r.pool.Query(ctx, query, common.NormalizeCity(loc.City), countryKey(loc), from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query weather range: %w", err)
	}
	snapshots, err := scanSnapshots(rows, loc)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, ErrNotFound
	}
	return snapshots, nil
}

// Recent returns up to limit of the newest snapshots, oldest first.
func (r *PostgresStore) Recent(ctx context.Context, loc weather.Location, limit int) ([]weather.WeatherSnapshot, error) {
	query := `
		SELECT * FROM (
			SELECT ` + snapshotColumns + `
			FROM weather_records
			WHERE city = $1 AND country = $2
			ORDER BY recorded_at DESC
			LIMIT $3
		) newest
		ORDER BY recorded_at ASC
	`

	// LIMIT NULL means no limit.
	var lim *int
	if limit > 0 {
		lim = &limit
	}

	rows, err := r.pool.Query(ctx, query, common.NormalizeCity(loc.City), countryKey(loc), lim)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query recent snapshots: %w", err)
	}
	snapshots, err := scanSnapshots(rows, loc)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, ErrNotFound
	}
	return snapshots, nil
}

func scanSnapshots(rows pgx.Rows, loc weather.Location) ([]weather.WeatherSnapshot, error) {
	defer rows.Close()

	var results []weather.WeatherSnapshot
	for rows.Next() {
		var (
			s         weather.WeatherSnapshot
			city      string
			country   string
			condition string
		)
		err := rows.Scan(
			&s.ID, &city, &country, &s.Temperature, &s.FeelsLike, &s.Humidity,
			&s.WindSpeed, &s.Pressure, &s.PrecipMM, &condition, &s.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan weather row: %w", err)
		}
		s.Location = weather.Location{City: city, Country: country, Lat: loc.Lat, Lon: loc.Lon}
		s.Condition = weather.Condition(condition)
		s.Timestamp = s.Timestamp.UTC()
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read weather rows: %w", err)
	}
	return results, nil
}

func countryKey(loc weather.Location) string {
	return strings.ToUpper(strings.TrimSpace(loc.Country))
}
