package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/weather-insights/internal/weather"
	"github.com/sony/gobreaker"
)

const openMeteoTimeLayout = "2006-01-02T15:04"

// OpenMeteoProvider implements weather.Provider and weather.ForecastProvider
// for Open-Meteo. Locations without coordinates are resolved by the geocoder.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	geocoder Geocoder
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, geo Geocoder) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  "https://api.open-meteo.com/v1/forecast",
		geocoder: geo,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	values, err := p.coordinates(ctx, loc)
	if err != nil {
		return weather.ProviderReading{}, err
	}
	values.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,wind_speed_10m,surface_pressure,precipitation,weather_code")

	var payload struct {
		Current struct {
			Time                string  `json:"time"`
			Temperature         float64 `json:"temperature_2m"`
			RelativeHumidity    float64 `json:"relative_humidity_2m"`
			ApparentTemperature float64 `json:"apparent_temperature"`
			WindSpeed           float64 `json:"wind_speed_10m"`
			SurfacePressure     float64 `json:"surface_pressure"`
			Precipitation       float64 `json:"precipitation"`
			WeatherCode         int     `json:"weather_code"`
		} `json:"current"`
	}
	if err := p.get(ctx, values, &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	c := payload.Current
	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    parseOpenMeteoTime(c.Time),
		TemperatureC: c.Temperature,
		FeelsLikeC:   c.ApparentTemperature,
		HumidityPct:  c.RelativeHumidity,
		WindSpeedMS:  c.WindSpeed,
		PressureHpa:  c.SurfacePressure,
		PrecipMm:     c.Precipitation,
		Condition:    mapOpenMeteoCondition(c.WeatherCode),
	}, nil
}

// FetchForecast returns one reading per forecast day built from Open-Meteo's
// daily aggregates. The temperature is the midpoint of the daily min and max.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, loc weather.Location, days int) ([]weather.ProviderReading, error) {
	values, err := p.coordinates(ctx, loc)
	if err != nil {
		return nil, err
	}
	values.Set("daily", "temperature_2m_max,temperature_2m_min,apparent_temperature_max,apparent_temperature_min,precipitation_sum,wind_speed_10m_max,weather_code,relative_humidity_2m_mean,pressure_msl_mean")
	values.Set("forecast_days", strconv.Itoa(days))

	var payload struct {
		Daily struct {
			Time          []string  `json:"time"`
			TempMax       []float64 `json:"temperature_2m_max"`
			TempMin       []float64 `json:"temperature_2m_min"`
			ApparentMax   []float64 `json:"apparent_temperature_max"`
			ApparentMin   []float64 `json:"apparent_temperature_min"`
			Precipitation []float64 `json:"precipitation_sum"`
			WindSpeedMax  []float64 `json:"wind_speed_10m_max"`
			WeatherCode   []int     `json:"weather_code"`
			HumidityMean  []float64 `json:"relative_humidity_2m_mean"`
			PressureMean  []float64 `json:"pressure_msl_mean"`
		} `json:"daily"`
	}
	if err := p.get(ctx, values, &payload); err != nil {
		return nil, err
	}

	d := payload.Daily
	n := len(d.Time)
	for _, l := range []int{len(d.TempMax), len(d.TempMin), len(d.ApparentMax), len(d.ApparentMin), len(d.Precipitation), len(d.WindSpeedMax), len(d.WeatherCode)} {
		if l < n {
			n = l
		}
	}

	readings := make([]weather.ProviderReading, 0, n)
	for i := 0; i < n; i++ {
		ts, err := time.Parse(time.DateOnly, d.Time[i])
		if err != nil {
			continue
		}
		readings = append(readings, weather.ProviderReading{
			ProviderName: p.name,
			// Noon keeps the reading inside its UTC day.
			Timestamp:    ts.Add(12 * time.Hour).UTC(),
			TemperatureC: (d.TempMax[i] + d.TempMin[i]) / 2,
			FeelsLikeC:   (d.ApparentMax[i] + d.ApparentMin[i]) / 2,
			HumidityPct:  valueAt(d.HumidityMean, i),
			WindSpeedMS:  d.WindSpeedMax[i],
			PressureHpa:  valueAt(d.PressureMean, i),
			PrecipMm:     d.Precipitation[i],
			Condition:    mapOpenMeteoCondition(d.WeatherCode[i]),
		})
	}
	return readings, nil
}

func (p *OpenMeteoProvider) coordinates(ctx context.Context, loc weather.Location) (url.Values, error) {
	var lat, lon float64
	switch {
	case loc.Lat != nil && loc.Lon != nil:
		lat, lon = *loc.Lat, *loc.Lon
	case p.geocoder != nil:
		var err error
		lat, lon, err = p.geocoder.Geocode(ctx, loc)
		if err != nil {
			return nil, fmt.Errorf("openmeteo: %w", err)
		}
	default:
		return nil, fmt.Errorf("openmeteo: %w: coordinates required and no geocoder configured", weather.ErrProviderUnavailable)
	}

	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	values.Set("wind_speed_unit", "ms")
	values.Set("timezone", "UTC")
	return values, nil
}

func (p *OpenMeteoProvider) get(ctx context.Context, values url.Values, out any) error {
	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return fmt.Errorf("openmeteo: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("openmeteo: %w: decode response: %v", weather.ErrProviderUnavailable, err)
	}
	return nil
}

// valueAt returns vals[i], or zero when the series is shorter. Zero marks the
// field as not reported.
func valueAt(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

func parseOpenMeteoTime(s string) time.Time {
	ts, err := time.Parse(openMeteoTimeLayout, s)
	if err != nil {
		return time.Now().UTC()
	}
	return ts.UTC()
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// WMO weather interpretation codes.
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}
