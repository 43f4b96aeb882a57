package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/atomic"

	"github.com/i474232898/weather-insights/internal/weather"
)

const (
	defaultInterval = 15 * time.Minute
	perLocationTTL  = 30 * time.Second
)

// Fetcher fetches and persists one observation for a location.
type Fetcher interface {
	FetchAndStore(ctx context.Context, loc weather.Location) error
}

// Config selects when the collection job runs. A non-empty Cron expression
// wins over Interval.
type Config struct {
	Interval time.Duration
	Cron     string
}

// Stats reports what the collection job has done since start.
type Stats struct {
	Runs      int64     `json:"runs"`
	Failures  int64     `json:"failures"`
	LastRun   time.Time `json:"lastRun,omitempty"`
	LastError string    `json:"lastError,omitempty"`
	Locations int       `json:"locations"`
}

// Scheduler periodically fetches weather data for configured locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	fetcher   Fetcher
	cfg       Config

	mu        sync.RWMutex
	locations []weather.Location

	runs      *atomic.Int64
	failures  *atomic.Int64
	lastRun   *atomic.Int64 // unix nanoseconds
	lastError *atomic.String
}

// New creates a new Scheduler.
func New(locations []weather.Location, cfg Config, fetcher Fetcher) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}

	s := gocron.NewScheduler(time.UTC)
	// A slow run must not overlap the next one.
	s.SingletonModeAll()

	return &Scheduler{
		scheduler: s,
		fetcher:   fetcher,
		cfg:       cfg,
		locations: locations,
		runs:      atomic.NewInt64(0),
		failures:  atomic.NewInt64(0),
		lastRun:   atomic.NewInt64(0),
		lastError: atomic.NewString(""),
	}
}

// SetLocations replaces the tracked locations. The next run picks them up.
func (s *Scheduler) SetLocations(locations []weather.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations = append([]weather.Location(nil), locations...)
	log.Printf("INFO: scheduler: now tracking %d locations", len(locations))
}

// Locations returns a copy of the tracked locations.
func (s *Scheduler) Locations() []weather.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]weather.Location(nil), s.locations...)
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	var job *gocron.Scheduler
	if s.cfg.Cron != "" {
		job = s.scheduler.Cron(s.cfg.Cron)
	} else {
		job = s.scheduler.Every(s.cfg.Interval)
	}

	if _, err := job.Do(s.runOnce); err != nil {
		return fmt.Errorf("scheduler: failed to schedule collection job: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// Stats returns the job counters.
func (s *Scheduler) Stats() Stats {
	st := Stats{
		Runs:      s.runs.Load(),
		Failures:  s.failures.Load(),
		LastError: s.lastError.Load(),
		Locations: len(s.Locations()),
	}
	if ns := s.lastRun.Load(); ns > 0 {
		st.LastRun = time.Unix(0, ns).UTC()
	}
	return st
}

func (s *Scheduler) runOnce() {
	locations := s.Locations()
	if len(locations) == 0 {
		log.Println("scheduler: no locations configured; nothing to fetch")
		return
	}

	log.Println("scheduler: running weather fetch job")

	var wg sync.WaitGroup
	for _, loc := range locations {
		wg.Add(1)
		go func(loc weather.Location) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), perLocationTTL)
			defer cancel()

			if err := s.fetcher.FetchAndStore(ctx, loc); err != nil {
				log.Printf("scheduler: fetch failed for %s: %v", loc.Key(), err)
				s.failures.Inc()
				s.lastError.Store(fmt.Sprintf("%s: %v", loc.Key(), err))
			}
		}(loc)
	}
	wg.Wait()

	s.runs.Inc()
	s.lastRun.Store(time.Now().UnixNano())
	log.Println("scheduler: completed weather fetch job")
}
