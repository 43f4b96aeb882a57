package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-insights/internal/weather"
)

// locationsFile is the YAML layout of LOCATIONS_FILE:
//
//	locations:
//	  - city: Lisbon
//	    country: PT
//	  - city: Sao Paulo
//	    country: BR
//	    lat: -23.55
//	    lon: -46.63
type locationsFile struct {
	Locations []weather.Location `yaml:"locations"`
}

// LoadLocations reads and validates a locations file.
func LoadLocations(path string) ([]weather.Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locations file: %w", err)
	}

	var f locationsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse locations file %s: %w", path, err)
	}

	for i := range f.Locations {
		loc := &f.Locations[i]
		loc.City = strings.TrimSpace(loc.City)
		loc.Country = strings.TrimSpace(loc.Country)
		if loc.City == "" || loc.Country == "" {
			return nil, fmt.Errorf("locations file %s: entry %d: city and country are required", path, i+1)
		}
		if (loc.Lat == nil) != (loc.Lon == nil) {
			return nil, fmt.Errorf("locations file %s: entry %d: lat and lon must be set together", path, i+1)
		}
	}
	return MergeLocations(f.Locations), nil
}
