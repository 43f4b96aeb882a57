// Package insight turns a sequence of temperature readings into a trend
// analysis, a sentence describing it, a health and comfort assessment and a
// list of suggested actions. Every function in the package is pure.
package insight

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned for readings the analyzer cannot compare.
var ErrInvalidInput = errors.New("invalid input")

// Insight aggregates the output of every pipeline stage for one reading sequence.
type Insight struct {
	Analysis       Analysis `json:"analysis"`
	Interpretation string   `json:"interpretation"`
	Impact         Impact   `json:"impact"`
	Suggestions    []string `json:"suggestions"`
}

// Build runs analyze, interpret, assess and suggest in order.
// Readings must be finite and ordered oldest first.
func Build(readings []float64) Insight {
	analysis := Analyze(readings)
	interpretation := Interpret(analysis)
	impact := AssessImpact(analysis)
	suggestions := Suggest(analysis, impact)

	return Insight{
		Analysis:       analysis,
		Interpretation: interpretation,
		Impact:         impact,
		Suggestions:    suggestions,
	}
}

// BuildChecked validates readings before building the insight.
func BuildChecked(readings []float64) (Insight, error) {
	if err := Validate(readings); err != nil {
		return Insight{}, err
	}
	return Build(readings), nil
}

// Validate rejects NaN and infinite readings.
func Validate(readings []float64) error {
	for i, r := range readings {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("%w: reading %d is not a finite number", ErrInvalidInput, i)
		}
	}
	return nil
}
