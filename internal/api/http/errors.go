package httpapi

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-insights/internal/insight"
	"github.com/i474232898/weather-insights/internal/store"
	"github.com/i474232898/weather-insights/internal/weather"
)

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// toHTTPError maps domain errors onto status codes. what names the resource
// in not-found messages.
func toHTTPError(err error, what string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "no "+what+" for requested location")
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, "location not found")
	case errors.Is(err, weather.ErrInsufficientData):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "insufficient data: at least 2 readings are required")
	case errors.Is(err, insight.ErrInvalidInput):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, weather.ErrProviderAuth):
		return fiber.NewError(fiber.StatusBadGateway, "weather provider rejected credentials")
	case errors.Is(err, weather.ErrProviderUnavailable), errors.Is(err, weather.ErrNoProviders):
		return fiber.NewError(fiber.StatusServiceUnavailable, "weather provider unavailable")
	default:
		log.Printf("ERROR: %s request failed: %v", what, err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch "+what)
	}
}
