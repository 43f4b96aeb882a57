package weather_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-insights/internal/insight"
	"github.com/i474232898/weather-insights/internal/store"
	"github.com/i474232898/weather-insights/internal/weather"
)

type fakeProvider struct {
	name     string
	reading  weather.ProviderReading
	forecast []weather.ProviderReading
	err      error
	calls    atomic.Int32
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	p.calls.Add(1)
	if p.err != nil {
		return weather.ProviderReading{}, p.err
	}
	r := p.reading
	r.ProviderName = p.name
	return r, nil
}

type fakeForecastProvider struct {
	fakeProvider
}

func (p *fakeForecastProvider) FetchForecast(ctx context.Context, loc weather.Location, days int) ([]weather.ProviderReading, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.forecast, nil
}

var (
	lisbon = weather.Location{City: "Lisbon", Country: "PT"}
	clock  = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

func fixedNow() time.Time { return clock }

func seed(t *testing.T, st *store.MemoryStore, temps ...float64) {
	t.Helper()
	start := clock.Add(-time.Duration(len(temps)) * time.Hour)
	for i, temp := range temps {
		snap := weather.WeatherSnapshot{
			Location:    lisbon,
			Timestamp:   start.Add(time.Duration(i) * time.Hour),
			Temperature: temp,
		}
		if err := st.SaveSnapshot(context.Background(), lisbon, snap); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestCurrent_CachesAndPersists(t *testing.T) {
	st := store.NewMemoryStore(0, 0)
	p := &fakeProvider{name: "a", reading: weather.ProviderReading{Timestamp: clock, TemperatureC: 21}}
	svc := weather.NewService(st, []weather.Provider{p}, weather.WithClock(fixedNow))

	for i := 0; i < 3; i++ {
		snap, err := svc.Current(context.Background(), lisbon)
		if err != nil {
			t.Fatalf("Current: %v", err)
		}
		if snap.Temperature != 21 {
			t.Fatalf("Temperature: got %v, want 21", snap.Temperature)
		}
		if snap.ID == "" {
			t.Fatal("snapshot ID must be set")
		}
	}

	if got := p.calls.Load(); got != 1 {
		t.Errorf("provider calls: got %d, want 1 (cached)", got)
	}
	if _, err := st.GetLatest(context.Background(), lisbon); err != nil {
		t.Errorf("live snapshot was not persisted: %v", err)
	}
}

func TestCurrent_CacheDisabled(t *testing.T) {
	p := &fakeProvider{name: "a", reading: weather.ProviderReading{TemperatureC: 21}}
	svc := weather.NewService(store.NewMemoryStore(0, 0), []weather.Provider{p}, weather.WithCacheTTL(0))

	_, _ = svc.Current(context.Background(), lisbon)
	_, _ = svc.Current(context.Background(), lisbon)

	if got := p.calls.Load(); got != 2 {
		t.Errorf("provider calls: got %d, want 2", got)
	}
}

func TestCurrent_PartialFailure(t *testing.T) {
	ok := &fakeProvider{name: "ok", reading: weather.ProviderReading{TemperatureC: 18}}
	bad := &fakeProvider{name: "bad", err: weather.ErrProviderUnavailable}
	svc := weather.NewService(store.NewMemoryStore(0, 0), []weather.Provider{ok, bad})

	snap, err := svc.Current(context.Background(), lisbon)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if snap.Temperature != 18 || len(snap.Providers) != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestCurrent_ErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		errs []error
		want error
	}{
		{"not found wins", []error{weather.ErrProviderAuth, weather.ErrLocationNotFound}, weather.ErrLocationNotFound},
		{"auth over unavailable", []error{weather.ErrProviderUnavailable, weather.ErrProviderAuth}, weather.ErrProviderAuth},
		{"unavailable", []error{errors.New("boom")}, weather.ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var providers []weather.Provider
			for i, err := range tt.errs {
				providers = append(providers, &fakeProvider{name: string(rune('a' + i)), err: err})
			}
			svc := weather.NewService(store.NewMemoryStore(0, 0), providers)

			_, err := svc.Current(context.Background(), lisbon)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCurrent_NoProviders(t *testing.T) {
	svc := weather.NewService(store.NewMemoryStore(0, 0), nil)
	if _, err := svc.Current(context.Background(), lisbon); !errors.Is(err, weather.ErrNoProviders) {
		t.Fatalf("got %v, want ErrNoProviders", err)
	}
}

func TestFetchAndStore_TotalFailureKeepsHistory(t *testing.T) {
	st := store.NewMemoryStore(0, 0)
	seed(t, st, 20)
	bad := &fakeProvider{name: "bad", err: weather.ErrProviderUnavailable}
	svc := weather.NewService(st, []weather.Provider{bad})

	if err := svc.FetchAndStore(context.Background(), lisbon); err != nil {
		t.Fatalf("FetchAndStore: %v", err)
	}
	history, _ := st.Recent(context.Background(), lisbon, 0)
	if len(history) != 1 {
		t.Fatalf("history: got %d snapshots, want 1", len(history))
	}
}

func TestTemperatureInsight_Limit(t *testing.T) {
	st := store.NewMemoryStore(0, 0)
	seed(t, st, 30, 20, 22, 25)
	svc := weather.NewService(st, nil, weather.WithClock(fixedNow))

	report, err := svc.TemperatureInsight(context.Background(), lisbon, weather.InsightQuery{Limit: 3})
	if err != nil {
		t.Fatalf("TemperatureInsight: %v", err)
	}
	if report.Readings != 3 {
		t.Errorf("Readings: got %d, want 3", report.Readings)
	}
	if report.City != "Lisbon" || report.Country != "PT" {
		t.Errorf("location: got %s/%s", report.City, report.Country)
	}
	a := report.Insight.Analysis
	if a.Trend != insight.TrendUp || a.Variation != insight.VariationModerate {
		t.Errorf("analysis: got %s/%s, want up/moderate", a.Trend, a.Variation)
	}
	if a.Min == nil || *a.Min != 20 {
		t.Errorf("Min: got %v, want 20", a.Min)
	}
	if !report.From.Before(report.To) {
		t.Errorf("From %v should precede To %v", report.From, report.To)
	}
}

func TestTemperatureInsight_Window(t *testing.T) {
	st := store.NewMemoryStore(0, 0)
	// Readings one hour apart ending one hour before the clock.
	seed(t, st, 10, 10, 10, 20, 21)
	svc := weather.NewService(st, nil, weather.WithClock(fixedNow))

	report, err := svc.TemperatureInsight(context.Background(), lisbon, weather.InsightQuery{Window: 2 * time.Hour})
	if err != nil {
		t.Fatalf("TemperatureInsight: %v", err)
	}
	if report.Readings != 2 {
		t.Fatalf("Readings: got %d, want 2", report.Readings)
	}
	if report.Insight.Analysis.Variation != insight.VariationLow {
		t.Errorf("Variation: got %s, want low", report.Insight.Analysis.Variation)
	}
}

func TestTemperatureInsight_InsufficientData(t *testing.T) {
	st := store.NewMemoryStore(0, 0)
	seed(t, st, 20)
	svc := weather.NewService(st, nil, weather.WithClock(fixedNow))

	_, err := svc.TemperatureInsight(context.Background(), lisbon, weather.InsightQuery{Limit: 10})
	if !errors.Is(err, weather.ErrInsufficientData) {
		t.Fatalf("got %v, want ErrInsufficientData", err)
	}
}

func TestTemperatureInsight_HistoryOutsideWindow(t *testing.T) {
	st := store.NewMemoryStore(0, 0)
	for i := 0; i < 3; i++ {
		snap := weather.WeatherSnapshot{
			Location:    lisbon,
			Timestamp:   clock.Add(-48*time.Hour + time.Duration(i)*time.Hour),
			Temperature: 20,
		}
		if err := st.SaveSnapshot(context.Background(), lisbon, snap); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	svc := weather.NewService(st, nil, weather.WithClock(fixedNow))

	_, err := svc.TemperatureInsight(context.Background(), lisbon, weather.InsightQuery{Window: 2 * time.Hour})
	if !errors.Is(err, weather.ErrInsufficientData) {
		t.Fatalf("got %v, want ErrInsufficientData", err)
	}
}

func TestTemperatureInsight_NoHistory(t *testing.T) {
	svc := weather.NewService(store.NewMemoryStore(0, 0), nil, weather.WithClock(fixedNow))

	_, err := svc.TemperatureInsight(context.Background(), lisbon, weather.InsightQuery{})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want store.ErrNotFound", err)
	}
}

func TestTemperatureInsight_Refresh(t *testing.T) {
	st := store.NewMemoryStore(0, 0)
	seed(t, st, 20)
	p := &fakeProvider{name: "a", reading: weather.ProviderReading{Timestamp: clock, TemperatureC: 26}}
	svc := weather.NewService(st, []weather.Provider{p}, weather.WithClock(fixedNow))

	report, err := svc.TemperatureInsight(context.Background(), lisbon, weather.InsightQuery{Limit: 5, Refresh: true})
	if err != nil {
		t.Fatalf("TemperatureInsight: %v", err)
	}
	if report.Readings != 2 || report.Insight.Analysis.Trend != insight.TrendUp {
		t.Errorf("got %d readings trend %s, want 2 readings trending up", report.Readings, report.Insight.Analysis.Trend)
	}
}

func TestGetForecast(t *testing.T) {
	day1 := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	a := &fakeForecastProvider{fakeProvider{name: "a"}}
	a.forecast = []weather.ProviderReading{
		{Timestamp: day1, TemperatureC: 20, Condition: weather.ConditionClear},
		{Timestamp: day2, TemperatureC: 16, Condition: weather.ConditionRain},
	}
	b := &fakeForecastProvider{fakeProvider{name: "b"}}
	b.forecast = []weather.ProviderReading{
		{Timestamp: day1.Add(3 * time.Hour), TemperatureC: 24, Condition: weather.ConditionClear},
	}
	// Providers without forecasts are skipped.
	plain := &fakeProvider{name: "plain"}

	svc := weather.NewService(store.NewMemoryStore(0, 0), []weather.Provider{a, b, plain})

	forecast, err := svc.GetForecast(context.Background(), lisbon, 2)
	if err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	if len(forecast) != 2 {
		t.Fatalf("days: got %d, want 2", len(forecast))
	}
	if forecast[0].Temperature != 22 || forecast[0].Condition != weather.ConditionClear {
		t.Errorf("day 1: got %+v", forecast[0])
	}
	if !forecast[0].Timestamp.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("day 1 timestamp: got %v", forecast[0].Timestamp)
	}
	if forecast[1].Condition != weather.ConditionRain {
		t.Errorf("day 2 condition: got %q", forecast[1].Condition)
	}
}

func TestGetForecast_MixesThreeHourlyAndDaily(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	hourly := &fakeForecastProvider{fakeProvider{name: "hourly"}}
	for i := 0; i < 8; i++ {
		hourly.forecast = append(hourly.forecast, weather.ProviderReading{
			Timestamp:    day.Add(time.Duration(i*3) * time.Hour),
			TemperatureC: 10,
			HumidityPct:  80,
			PressureHpa:  1013,
			PrecipMm:     0.5,
			Condition:    weather.ConditionRain,
		})
	}
	// Daily forecast without humidity or pressure.
	daily := &fakeForecastProvider{fakeProvider{name: "daily"}}
	daily.forecast = []weather.ProviderReading{
		{Timestamp: day.Add(12 * time.Hour), TemperatureC: 20, PrecipMm: 6, Condition: weather.ConditionRain},
	}

	svc := weather.NewService(store.NewMemoryStore(0, 0), []weather.Provider{hourly, daily})

	forecast, err := svc.GetForecast(context.Background(), lisbon, 1)
	if err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	if len(forecast) != 1 {
		t.Fatalf("days: got %d, want 1", len(forecast))
	}
	got := forecast[0]
	if got.Temperature != 15 {
		t.Errorf("Temperature: got %v, want 15 with both providers weighted equally", got.Temperature)
	}
	if got.Humidity != 80 || got.Pressure != 1013 {
		t.Errorf("humidity/pressure: got %v/%v, want 80/1013", got.Humidity, got.Pressure)
	}
	if got.PrecipMM != 5 {
		t.Errorf("PrecipMM: got %v, want 5", got.PrecipMM)
	}
	if len(got.Providers) != 2 {
		t.Errorf("Providers: got %d, want one per provider", len(got.Providers))
	}
}

func TestGetForecast_DaysOutOfRange(t *testing.T) {
	svc := weather.NewService(store.NewMemoryStore(0, 0), nil)
	for _, days := range []int{0, weather.MaxForecastDays + 1} {
		if _, err := svc.GetForecast(context.Background(), lisbon, days); err == nil {
			t.Errorf("days=%d: expected error", days)
		}
	}
}
