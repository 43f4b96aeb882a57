package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-insights/internal/scheduler"
	"github.com/i474232898/weather-insights/internal/weather"
)

// WeatherService is what the handlers need from weather.Service.
type WeatherService interface {
	Current(ctx context.Context, loc weather.Location) (weather.WeatherSnapshot, error)
	GetLatest(ctx context.Context, loc weather.Location) (weather.WeatherSnapshot, error)
	GetRange(ctx context.Context, loc weather.Location, from, to time.Time) ([]weather.WeatherSnapshot, error)
	History(ctx context.Context, loc weather.Location, limit int) ([]weather.WeatherSnapshot, error)
	GetForecast(ctx context.Context, loc weather.Location, days int) (weather.Forecast, error)
	TemperatureInsight(ctx context.Context, loc weather.Location, q weather.InsightQuery) (weather.TemperatureReport, error)
}

// Options tunes the routes. Zero values fall back to the weather defaults.
type Options struct {
	// InsightWindow and InsightLimit are used when a request names neither
	// hours nor limit. The window applies unless InsightLimit is positive.
	InsightWindow time.Duration
	InsightLimit  int

	// Stats, when set, is reported on /health.
	Stats func() scheduler.Stats
}

type handler struct {
	service WeatherService
	opts    Options
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service WeatherService, opts Options) {
	if opts.InsightWindow <= 0 {
		opts.InsightWindow = weather.DefaultInsightWindow
	}
	h := &handler{service: service, opts: opts}

	app.Get("/health", h.health)
	app.Get("/", h.page)

	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", h.current)
	v1.Get("/weather/live", h.live)
	v1.Get("/weather/history", h.history)
	v1.Get("/weather/forecast", h.forecast)

	v1.Get("/insights/temperature", h.temperatureInsight)
	v1.Get("/insights/thermal-comfort", h.thermalComfort)
}

func (h *handler) health(c *fiber.Ctx) error {
	body := fiber.Map{
		"status":  "ok",
		"service": "weather-insights",
	}
	if h.opts.Stats != nil {
		body["scheduler"] = h.opts.Stats()
	}
	return c.JSON(body)
}

// current returns the latest stored snapshot.
func (h *handler) current(c *fiber.Ctx) error {
	var q locationQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	snapshot, err := h.service.GetLatest(c.UserContext(), q.toLocation())
	if err != nil {
		return toHTTPError(err, "weather data")
	}
	return c.JSON(snapshot)
}

// live returns a snapshot fetched from the providers, reusing a cached one
// when it is recent enough.
func (h *handler) live(c *fiber.Ctx) error {
	var q locationQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	snapshot, err := h.service.Current(c.UserContext(), q.toLocation())
	if err != nil {
		return toHTTPError(err, "live weather")
	}
	return c.JSON(snapshot)
}

func (h *handler) history(c *fiber.Ctx) error {
	var q historyQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	from, err := parseTime(q.From)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "from: "+err.Error())
	}
	to, err := parseTime(q.To)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "to: "+err.Error())
	}
	if to.Before(from) {
		return fiber.NewError(fiber.StatusBadRequest, "to must not be before from")
	}

	loc := q.toLocation()
	snapshots, err := h.service.GetRange(c.UserContext(), loc, from, to)
	if err != nil {
		return toHTTPError(err, "weather history")
	}

	return c.JSON(fiber.Map{
		"location":  loc,
		"from":      from,
		"to":        to,
		"snapshots": snapshots,
	})
}

func (h *handler) forecast(c *fiber.Ctx) error {
	var q forecastQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	loc := q.toLocation()
	forecast, err := h.service.GetForecast(c.UserContext(), loc, q.Days)
	if err != nil {
		return toHTTPError(err, "forecast")
	}

	return c.JSON(fiber.Map{
		"location": loc,
		"days":     q.Days,
		"forecast": forecast,
	})
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	City    string `query:"city" validate:"required,max=100"`
	Country string `query:"country" validate:"required,max=10"`
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: l.Country,
	}
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	City    string `query:"city" validate:"required,max=100"`
	Country string `query:"country" validate:"required,max=10"`
	From    string `query:"from" validate:"required"`
	To      string `query:"to" validate:"required"`
}

func (q historyQuery) toLocation() weather.Location {
	return locationQuery{City: q.City, Country: q.Country}.toLocation()
}

type forecastQuery struct {
	City    string `query:"city" validate:"required,max=100"`
	Country string `query:"country" validate:"required,max=10"`
	Days    int    `query:"days" validate:"required,min=1,max=7"`
}

func (q forecastQuery) toLocation() weather.Location {
	return locationQuery{City: q.City, Country: q.Country}.toLocation()
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
