package weather

import (
	"strings"
	"time"

	"github.com/i474232898/weather-insights/internal/common"
	"github.com/i474232898/weather-insights/internal/insight"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Location represents a logical place for which we track weather.
// City/Country must be provided; coordinates are optional and only used by
// providers that cannot look up a city by name.
type Location struct {
	City    string   `json:"city" yaml:"city"`
	Country string   `json:"country" yaml:"country"`
	Lat     *float64 `json:"lat,omitempty" yaml:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty" yaml:"lon,omitempty"`
}

// Key returns a canonical string key for indexing this location in stores.
// City matching is case-insensitive.
func (l Location) Key() string {
	return common.NormalizeCity(l.City) + ":" + strings.ToUpper(strings.TrimSpace(l.Country))
}

// WeatherSnapshot is the normalized, aggregated weather view at a point in time.
type WeatherSnapshot struct {
	ID          string    `json:"id"`
	Location    Location  `json:"location"`
	Timestamp   time.Time `json:"timestamp"` // always UTC
	Temperature float64   `json:"temperatureC"`
	FeelsLike   float64   `json:"feelsLikeC"`
	Humidity    float64   `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeed"`
	Pressure    float64   `json:"pressureHpa"`
	PrecipMM    float64   `json:"precipMm"`
	Condition   Condition `json:"condition"`

	// Providers contributing to this snapshot.
	Providers []ProviderContribution `json:"providers,omitempty"`
}

// Forecast is a multi-day forecast, one aggregated snapshot per day,
// ordered by Timestamp ascending.
type Forecast []WeatherSnapshot

// ProviderContribution describes data coming from a single provider used in aggregation.
type ProviderContribution struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}

// TemperatureReport is the temperature insight for one location together with
// the history it was built from.
type TemperatureReport struct {
	City     string          `json:"city"`
	Country  string          `json:"country"`
	Readings int             `json:"readings"`
	From     time.Time       `json:"from"`
	To       time.Time       `json:"to"`
	Insight  insight.Insight `json:"insight"`
}

// InsightQuery selects the history a TemperatureReport is built from.
// Limit, when positive, takes the last Limit snapshots and wins over Window.
type InsightQuery struct {
	Window  time.Duration
	Limit   int
	Refresh bool
}

// Temperatures extracts the temperature series from snapshots, keeping order.
func Temperatures(snapshots []WeatherSnapshot) []float64 {
	out := make([]float64, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, s.Temperature)
	}
	return out
}
