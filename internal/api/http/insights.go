package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-insights/internal/insight"
	"github.com/i474232898/weather-insights/internal/weather"
)

// insightQuery selects the readings a temperature insight is built from.
// limit wins over hours when both are given.
type insightQuery struct {
	City    string `query:"city" validate:"required,max=100"`
	Country string `query:"country" validate:"required,max=10"`
	Hours   int    `query:"hours" validate:"omitempty,min=1,max=720"`
	Limit   int    `query:"limit" validate:"omitempty,min=2,max=1000"`
	Refresh bool   `query:"refresh"`
}

func (q insightQuery) toLocation() weather.Location {
	return locationQuery{City: q.City, Country: q.Country}.toLocation()
}

func (h *handler) insightQuery(q insightQuery) weather.InsightQuery {
	wq := weather.InsightQuery{Refresh: q.Refresh}
	switch {
	case q.Limit > 0:
		wq.Limit = q.Limit
	case q.Hours > 0:
		wq.Window = time.Duration(q.Hours) * time.Hour
	case h.opts.InsightLimit > 0:
		wq.Limit = h.opts.InsightLimit
	default:
		wq.Window = h.opts.InsightWindow
	}
	return wq
}

func (h *handler) temperatureInsight(c *fiber.Ctx) error {
	var q insightQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	report, err := h.service.TemperatureInsight(c.UserContext(), q.toLocation(), h.insightQuery(q))
	if err != nil {
		return toHTTPError(err, "temperature history")
	}
	return c.JSON(report)
}

type comfortResponse struct {
	City        string          `json:"city"`
	Country     string          `json:"country"`
	Temperature float64         `json:"temperatureC"`
	Humidity    float64         `json:"humidityPercent"`
	Comfort     insight.Comfort `json:"comfort"`
	UILevel     string          `json:"ui_level"`
}

func (h *handler) thermalComfort(c *fiber.Ctx) error {
	var q locationQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	snapshot, err := h.service.Current(c.UserContext(), q.toLocation())
	if err != nil {
		return toHTTPError(err, "live weather")
	}

	comfort := insight.ThermalComfort(&snapshot.Temperature, &snapshot.Humidity)
	return c.JSON(comfortResponse{
		City:        snapshot.Location.City,
		Country:     snapshot.Location.Country,
		Temperature: snapshot.Temperature,
		Humidity:    snapshot.Humidity,
		Comfort:     comfort,
		UILevel:     comfort.UILevel(),
	})
}
