package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-insights/internal/insight"
)

const (
	// DefaultCacheTTL is how long a live snapshot is served from memory.
	DefaultCacheTTL = 10 * time.Minute

	// DefaultInsightWindow is the history window used when a query sets neither
	// a window nor a limit.
	DefaultInsightWindow = 24 * time.Hour

	// MaxForecastDays is the longest forecast the service aggregates.
	MaxForecastDays = 7

	forecastTimeout = 10 * time.Second
)

// Service orchestrates fetching from multiple providers and persisting snapshots.
type Service struct {
	store     Store
	providers []Provider
	cache     *snapshotCache
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithCacheTTL sets how long live snapshots are cached. Zero disables the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = newSnapshotCache(ttl)
	}
}

// WithClock replaces the clock used for history windows and the cache.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new Service.
func NewService(store Store, providers []Provider, opts ...Option) *Service {
	s := &Service{
		store:     store,
		providers: providers,
		cache:     newSnapshotCache(DefaultCacheTTL),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache.now = s.now
	return s
}

// fetchAll queries every provider concurrently and returns the successful
// readings together with the failures.
func (s *Service) fetchAll(ctx context.Context, loc Location) ([]ProviderReading, []error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings []ProviderReading
		errs     []error
	)

	for _, p := range s.providers {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := p.Fetch(ctx, loc)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Log and continue; we want partial success when possible.
				log.Printf("provider %s fetch failed for %s: %v", p.Name(), loc.Key(), err)
				errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
				return
			}
			readings = append(readings, r)
		}()
	}

	wg.Wait()
	return readings, errs
}

func (s *Service) newSnapshot(loc Location, readings []ProviderReading) WeatherSnapshot {
	snapshot := AggregateReadings(loc, readings)
	snapshot.ID = uuid.NewString()
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = s.now().UTC()
	}
	return snapshot
}

// FetchAndStore fetches data from all providers concurrently for the given location,
// aggregates successful readings, and stores a snapshot.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) error {
	log.Printf("DEBUG: FetchAndStore called for %s with %d providers", loc.Key(), len(s.providers))
	if len(s.providers) == 0 {
		log.Printf("ERROR: No providers available to fetch weather data for %s", loc.Key())
		return ErrNoProviders
	}

	readings, _ := s.fetchAll(ctx, loc)
	if len(readings) == 0 {
		// No providers succeeded; do not overwrite last good snapshot.
		log.Printf("no successful provider readings for %s; keeping last good snapshot if any", loc.Key())
		return nil
	}

	snapshot := s.newSnapshot(loc, readings)
	if err := s.store.SaveSnapshot(ctx, loc, snapshot); err != nil {
		return fmt.Errorf("save snapshot for %s: %w", loc.Key(), err)
	}
	s.cache.put(loc.Key(), snapshot)
	return nil
}

// Current returns a live snapshot for the location, served from the cache when
// a recent one exists. A fresh snapshot is also persisted to the history.
func (s *Service) Current(ctx context.Context, loc Location) (WeatherSnapshot, error) {
	if snapshot, ok := s.cache.get(loc.Key()); ok {
		return snapshot, nil
	}
	if len(s.providers) == 0 {
		return WeatherSnapshot{}, ErrNoProviders
	}

	readings, errs := s.fetchAll(ctx, loc)
	if len(readings) == 0 {
		return WeatherSnapshot{}, classifyProviderErrors(errs)
	}

	snapshot := s.newSnapshot(loc, readings)
	if err := s.store.SaveSnapshot(ctx, loc, snapshot); err != nil {
		log.Printf("ERROR: failed to persist live snapshot for %s: %v", loc.Key(), err)
	}
	s.cache.put(loc.Key(), snapshot)
	return snapshot, nil
}

// GetForecast fetches multi-day forecasts from providers that support it,
// aggregates them per day, and returns a normalized Forecast.
func (s *Service) GetForecast(ctx context.Context, loc Location, days int) (Forecast, error) {
	if days <= 0 || days > MaxForecastDays {
		return nil, fmt.Errorf("days must be between 1 and %d", MaxForecastDays)
	}

	log.Printf("DEBUG: GetForecast called for %s for %d days", loc.Key(), days)

	// Use a bounded context for outbound provider calls.
	ctx, cancel := context.WithTimeout(ctx, forecastTimeout)
	defer cancel()

	type dayKey string

	var (
		wg            sync.WaitGroup
		mu            sync.Mutex
		errs          []error
		dayReadings   = make(map[dayKey][]ProviderReading)
		dayTimestamps = make(map[dayKey]time.Time)
	)

	for _, p := range s.providers {
		fp, ok := p.(ForecastProvider)
		if !ok {
			continue
		}

		providerName := p.Name()

		wg.Add(1)
		go func(fp ForecastProvider, providerName string) {
			defer wg.Done()

			readings, err := fp.FetchForecast(ctx, loc, days)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				log.Printf("provider %s forecast failed for %s: %v", providerName, loc.Key(), err)
				errs = append(errs, fmt.Errorf("%s: %w", providerName, err))
				return
			}

			// Each provider contributes one reading per day, whether it
			// forecasts daily or every three hours.
			perDay := make(map[dayKey][]ProviderReading)
			var order []dayKey
			for _, r := range readings {
				ts := r.Timestamp.UTC()
				k := dayKey(ts.Format("2006-01-02"))

				if _, exists := perDay[k]; !exists {
					order = append(order, k)
				}
				perDay[k] = append(perDay[k], r)

				if _, exists := dayTimestamps[k]; !exists {
					dayTimestamps[k] = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
				}
			}
			for _, k := range order {
				dayReadings[k] = append(dayReadings[k], collapseReadings(providerName, perDay[k]))
			}
		}(fp, providerName)
	}

	wg.Wait()

	if len(dayReadings) == 0 {
		log.Printf("no successful forecast readings for %s", loc.Key())
		return nil, classifyProviderErrors(errs)
	}

	// Collect and sort all date keys.
	keys := make([]string, 0, len(dayReadings))
	for k := range dayReadings {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	forecast := make(Forecast, 0, days)
	for _, k := range keys {
		if len(forecast) >= days {
			break
		}

		dk := dayKey(k)
		snapshot := AggregateReadings(loc, dayReadings[dk])
		snapshot.Timestamp = dayTimestamps[dk]
		forecast = append(forecast, snapshot)
	}

	return forecast, nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(ctx context.Context, loc Location) (WeatherSnapshot, error) {
	return s.store.GetLatest(ctx, loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(ctx context.Context, loc Location, from, to time.Time) ([]WeatherSnapshot, error) {
	return s.store.GetRange(ctx, loc, from, to)
}

// History returns the newest limit snapshots, oldest first.
func (s *Service) History(ctx context.Context, loc Location, limit int) ([]WeatherSnapshot, error) {
	return s.store.Recent(ctx, loc, limit)
}

// RecentTemperatures returns the temperatures recorded since the given time,
// oldest first.
func (s *Service) RecentTemperatures(ctx context.Context, loc Location, since time.Time) ([]float64, error) {
	snapshots, err := s.store.GetRange(ctx, loc, since, s.now())
	if err != nil {
		return nil, err
	}
	return Temperatures(snapshots), nil
}

// LastTemperatures returns the last n recorded temperatures, oldest first.
func (s *Service) LastTemperatures(ctx context.Context, loc Location, n int) ([]float64, error) {
	snapshots, err := s.store.Recent(ctx, loc, n)
	if err != nil {
		return nil, err
	}
	return Temperatures(snapshots), nil
}

// TemperatureInsight builds the temperature insight for a location from its
// stored history. With q.Refresh a new observation is fetched first; a failed
// refresh is logged and the stored history is used as is.
func (s *Service) TemperatureInsight(ctx context.Context, loc Location, q InsightQuery) (TemperatureReport, error) {
	if q.Refresh {
		if err := s.FetchAndStore(ctx, loc); err != nil {
			log.Printf("ERROR: refresh before insight failed for %s: %v", loc.Key(), err)
		}
	}

	var (
		snapshots []WeatherSnapshot
		err       error
	)
	if q.Limit > 0 {
		snapshots, err = s.store.Recent(ctx, loc, q.Limit)
	} else {
		window := q.Window
		if window <= 0 {
			window = DefaultInsightWindow
		}
		now := s.now()
		snapshots, err = s.store.GetRange(ctx, loc, now.Add(-window), now)
		if errors.Is(err, ErrNoData) {
			// History older than the window is not missing history.
			if _, latestErr := s.store.GetLatest(ctx, loc); latestErr == nil {
				snapshots, err = nil, nil
			}
		}
	}
	if err != nil {
		return TemperatureReport{}, err
	}
	if len(snapshots) < insight.MinReadings {
		return TemperatureReport{}, ErrInsufficientData
	}

	result, err := insight.BuildChecked(Temperatures(snapshots))
	if err != nil {
		return TemperatureReport{}, fmt.Errorf("temperature insight for %s: %w", loc.Key(), err)
	}

	newest := snapshots[len(snapshots)-1]
	return TemperatureReport{
		City:     newest.Location.City,
		Country:  newest.Location.Country,
		Readings: len(snapshots),
		From:     snapshots[0].Timestamp,
		To:       newest.Timestamp,
		Insight:  result,
	}, nil
}
