package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrLocationNotFound is returned when a provider does not know the location.
	ErrLocationNotFound = errors.New("location not found")

	// ErrProviderAuth is returned when a provider rejects the configured API key.
	ErrProviderAuth = errors.New("weather provider rejected credentials")

	// ErrProviderUnavailable is returned when no provider could serve the request.
	ErrProviderUnavailable = errors.New("weather provider unavailable")

	// ErrNoProviders is returned when the service has no providers configured.
	ErrNoProviders = errors.New("no weather providers configured")

	// ErrNoData is what a Store returns when it holds nothing matching a query.
	ErrNoData = errors.New("no weather data for location")

	// ErrInsufficientData is returned when fewer than two readings are stored
	// for the requested window.
	ErrInsufficientData = errors.New("insufficient data for temperature trend analysis")
)

// classifyProviderErrors reduces the errors of a failed fan-out to one error.
// A location unknown to any provider wins over bad credentials, which wins
// over plain unavailability.
func classifyProviderErrors(errs []error) error {
	if len(errs) == 0 {
		return ErrProviderUnavailable
	}
	joined := errors.Join(errs...)
	switch {
	case errors.Is(joined, ErrLocationNotFound):
		return fmt.Errorf("%w: %v", ErrLocationNotFound, joined)
	case errors.Is(joined, ErrProviderAuth):
		return fmt.Errorf("%w: %v", ErrProviderAuth, joined)
	default:
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, joined)
	}
}
