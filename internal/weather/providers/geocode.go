package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/i474232898/weather-insights/internal/weather"
	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"
)

// Geocoder resolves a city/country pair to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, loc weather.Location) (lat, lon float64, err error)
}

// GoogleGeocoder resolves locations through the Google Geocoding API.
type GoogleGeocoder struct{}

// NewGoogleGeocoder configures the geocoder package with apiKey.
// The key is process-wide.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, loc weather.Location) (float64, float64, error) {
	type result struct {
		loc geocoder.Location
		err error
	}

	// geocoder.Geocoding takes no context, so run it aside and honour ctx here.
	ch := make(chan result, 1)
	go func() {
		l, err := geocoder.Geocoding(geocoder.Address{City: loc.City, Country: loc.Country})
		ch <- result{loc: l, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return 0, 0, fmt.Errorf("google geocoder: %w: %v", weather.ErrLocationNotFound, r.err)
		}
		return r.loc.Latitude, r.loc.Longitude, nil
	}
}

// OpenMeteoGeocoder resolves locations through the free Open-Meteo geocoding API.
type OpenMeteoGeocoder struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoGeocoder(client *http.Client) *OpenMeteoGeocoder {
	return &OpenMeteoGeocoder{
		baseURL: "https://geocoding-api.open-meteo.com/v1/search",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("openmeteo-geocoding"),
	}
}

func (g *OpenMeteoGeocoder) Geocode(ctx context.Context, loc weather.Location) (float64, float64, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", loc.City)
		values.Set("count", "10")
		values.Set("format", "json")
		return http.NewRequest(http.MethodGet, g.baseURL+"?"+values.Encode(), nil)
	}

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		return 0, 0, fmt.Errorf("openmeteo geocoder: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
			CountryCode string  `json:"country_code"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, 0, fmt.Errorf("openmeteo geocoder: %w: decode response: %v", weather.ErrProviderUnavailable, err)
	}

	for _, r := range payload.Results {
		if loc.Country == "" || strings.EqualFold(r.CountryCode, strings.TrimSpace(loc.Country)) {
			return r.Latitude, r.Longitude, nil
		}
	}
	return 0, 0, fmt.Errorf("openmeteo geocoder: %w: %s", weather.ErrLocationNotFound, loc.Key())
}

type coordinates struct{ lat, lon float64 }

// CachedGeocoder memoizes successful lookups of another Geocoder.
type CachedGeocoder struct {
	next Geocoder

	mu    sync.RWMutex
	known map[string]coordinates
}

func NewCachedGeocoder(next Geocoder) *CachedGeocoder {
	return &CachedGeocoder{next: next, known: make(map[string]coordinates)}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, loc weather.Location) (float64, float64, error) {
	key := loc.Key()

	c.mu.RLock()
	coords, ok := c.known[key]
	c.mu.RUnlock()
	if ok {
		return coords.lat, coords.lon, nil
	}

	lat, lon, err := c.next.Geocode(ctx, loc)
	if err != nil {
		return 0, 0, err
	}

	c.mu.Lock()
	c.known[key] = coordinates{lat: lat, lon: lon}
	c.mu.Unlock()
	return lat, lon, nil
}
