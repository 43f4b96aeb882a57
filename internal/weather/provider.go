package weather

import (
	"context"
	"time"
)

// ProviderReading represents a single provider's normalized reading
// that can be aggregated into a WeatherSnapshot.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time

	TemperatureC float64
	FeelsLikeC   float64
	HumidityPct  float64
	WindSpeedMS  float64
	PressureHpa  float64
	PrecipMm     float64
	Condition    Condition
}

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (ProviderReading, error)
}

// ForecastProvider is implemented by providers that also serve multi-day forecasts.
type ForecastProvider interface {
	FetchForecast(ctx context.Context, loc Location, days int) ([]ProviderReading, error)
}

// Store is the contract the in-memory and Postgres stores satisfy.
// Every method returning snapshots returns them oldest first. A store with
// nothing matching the query returns ErrNoData.
type Store interface {
	SaveSnapshot(ctx context.Context, loc Location, snapshot WeatherSnapshot) error
	GetLatest(ctx context.Context, loc Location) (WeatherSnapshot, error)
	GetRange(ctx context.Context, loc Location, from, to time.Time) ([]WeatherSnapshot, error)
	// Recent returns the newest limit snapshots.
	Recent(ctx context.Context, loc Location, limit int) ([]WeatherSnapshot, error)
}
