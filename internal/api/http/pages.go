package httpapi

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-insights/internal/insight"
	"github.com/i474232898/weather-insights/internal/weather"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const pageHistoryRows = 10

type historyRow struct {
	Time        string
	Temperature float64
	Humidity    float64
	Condition   weather.Condition
}

type pageData struct {
	City    string
	Country string
	Error   string

	Weather *weather.WeatherSnapshot
	Comfort *insight.Comfort

	History     []historyRow
	ChartLabels []string
	ChartTemps  []float64

	Report       *weather.TemperatureReport
	InsightError string
}

// page renders the dashboard for ?city&country. Each section degrades on its
// own: a provider failure still shows stored history and the insight.
func (h *handler) page(c *fiber.Ctx) error {
	data := pageData{
		City:    strings.TrimSpace(c.Query("city")),
		Country: strings.TrimSpace(c.Query("country")),
	}

	switch {
	case data.City == "" && data.Country == "":
		// Empty form.
	case data.City == "" || data.Country == "":
		data.Error = "Both city and country are required."
	default:
		h.fillPage(c, &data)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *handler) fillPage(c *fiber.Ctx, data *pageData) {
	ctx := c.UserContext()
	loc := weather.Location{City: data.City, Country: data.Country}

	if snapshot, err := h.service.Current(ctx, loc); err != nil {
		data.Error = errorMessage(toHTTPError(err, "live weather"))
	} else {
		comfort := insight.ThermalComfort(&snapshot.Temperature, &snapshot.Humidity)
		data.Weather = &snapshot
		data.Comfort = &comfort
	}

	if snapshots, err := h.service.History(ctx, loc, pageHistoryRows); err == nil {
		for _, s := range snapshots {
			data.History = append(data.History, historyRow{
				Time:        s.Timestamp.Format("2006-01-02 15:04"),
				Temperature: s.Temperature,
				Humidity:    s.Humidity,
				Condition:   s.Condition,
			})
			data.ChartLabels = append(data.ChartLabels, s.Timestamp.Format("15:04"))
			data.ChartTemps = append(data.ChartTemps, s.Temperature)
		}
	}

	q := h.insightQuery(insightQuery{})
	if report, err := h.service.TemperatureInsight(ctx, loc, q); err != nil {
		data.InsightError = errorMessage(toHTTPError(err, "temperature history"))
	} else {
		data.Report = &report
	}
}

func errorMessage(err error) string {
	var e *fiber.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
