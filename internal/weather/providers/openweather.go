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

// OpenWeather serves at most 5 days in 3-hour steps.
const openWeatherMaxForecastSlots = 40

// OpenWeatherProvider implements weather.Provider and weather.ForecastProvider
// for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type openWeatherItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneH   float64 `json:"1h"`
		ThreeH float64 `json:"3h"`
	} `json:"rain"`
	Weather []openWeatherCondition `json:"weather"`
}

type openWeatherCondition struct {
	Main string `json:"main"`
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, fmt.Errorf("openweather: %w", errMissingAPIKey)
	}

	var payload openWeatherItem
	if err := p.get(ctx, "/weather", p.query(loc, nil), &payload); err != nil {
		return weather.ProviderReading{}, err
	}
	return p.reading(payload), nil
}

// FetchForecast returns the 3-hourly forecast entries covering the next days.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, loc weather.Location, days int) ([]weather.ProviderReading, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather: %w", errMissingAPIKey)
	}

	cnt := days * 8
	if cnt > openWeatherMaxForecastSlots {
		cnt = openWeatherMaxForecastSlots
	}
	extra := url.Values{}
	extra.Set("cnt", strconv.Itoa(cnt))

	var payload struct {
		List []openWeatherItem `json:"list"`
	}
	if err := p.get(ctx, "/forecast", p.query(loc, extra), &payload); err != nil {
		return nil, err
	}

	readings := make([]weather.ProviderReading, 0, len(payload.List))
	for _, item := range payload.List {
		readings = append(readings, p.reading(item))
	}
	return readings, nil
}

func (p *OpenWeatherProvider) query(loc weather.Location, extra url.Values) url.Values {
	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	// city,country
	q := loc.City
	if loc.Country != "" {
		q = fmt.Sprintf("%s,%s", loc.City, loc.Country)
	}
	values.Set("q", q)

	for k, v := range extra {
		values[k] = v
	}
	return values
}

func (p *OpenWeatherProvider) get(ctx context.Context, path string, values url.Values, out any) error {
	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return fmt.Errorf("openweather: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("openweather: %w: decode response: %v", weather.ErrProviderUnavailable, err)
	}
	return nil
}

func (p *OpenWeatherProvider) reading(item openWeatherItem) weather.ProviderReading {
	ts := time.Now().UTC()
	if item.Dt > 0 {
		ts = time.Unix(item.Dt, 0).UTC()
	}

	precip := item.Rain.OneH
	if precip == 0 {
		precip = item.Rain.ThreeH
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		TemperatureC: item.Main.Temp,
		FeelsLikeC:   item.Main.FeelsLike,
		HumidityPct:  item.Main.Humidity,
		WindSpeedMS:  item.Wind.Speed,
		PressureHpa:  item.Main.Pressure,
		PrecipMm:     precip,
		Condition:    mapOpenWeatherCondition(item.Weather),
	}
}

func mapOpenWeatherCondition(items []openWeatherCondition) weather.Condition {
	if len(items) == 0 {
		return weather.ConditionUnknown
	}
	switch items[0].Main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}
