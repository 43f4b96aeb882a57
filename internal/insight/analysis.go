package insight

import (
	"math"

	"github.com/i474232898/weather-insights/internal/common"
)

// Trend is the direction between the first and the last reading.
type Trend string

const (
	TrendUp               Trend = "up"
	TrendDown             Trend = "down"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
)

// Variation buckets the amplitude (max - min) of the readings.
type Variation string

const (
	VariationLow              Variation = "low"
	VariationModerate         Variation = "moderate"
	VariationHigh             Variation = "high"
	VariationInsufficientData Variation = "insufficient_data"
)

// Stability buckets the mean absolute change between consecutive readings.
type Stability string

const (
	StabilityStable           Stability = "stable"
	StabilityUnstable         Stability = "unstable"
	StabilityInsufficientData Stability = "insufficient_data"
)

const (
	// MinReadings is the shortest sequence that can be classified.
	MinReadings = 2

	lowVariationBelow  = 2.0
	highVariationAbove = 5.0
	stableDeltaBelow   = 1.0

	displayPlaces = 2
)

// Analysis is the statistical summary of a reading sequence.
// Numeric fields are nil when there is not enough data.
type Analysis struct {
	Trend     Trend     `json:"trend"`
	Variation Variation `json:"variation"`
	Stability Stability `json:"stability"`
	Min       *float64  `json:"min"`
	Max       *float64  `json:"max"`
	Average   *float64  `json:"average"`
	Amplitude *float64  `json:"amplitude"`
}

// Insufficient reports whether the analysis carries the insufficient-data sentinel.
func (a Analysis) Insufficient() bool {
	return a.Trend == TrendInsufficientData
}

// Analyze reduces chronologically ordered readings (oldest first) to trend,
// variation and stability classes plus summary statistics.
// Classification uses the raw values; only the reported numbers are rounded.
func Analyze(readings []float64) Analysis {
	if len(readings) < MinReadings {
		return Analysis{
			Trend:     TrendInsufficientData,
			Variation: VariationInsufficientData,
			Stability: StabilityInsufficientData,
		}
	}

	first := readings[0]
	last := readings[len(readings)-1]

	lo, hi := first, first
	var sum, deltaSum float64
	for i, r := range readings {
		if r < lo {
			lo = r
		}
		if r > hi {
			hi = r
		}
		sum += r
		if i > 0 {
			deltaSum += math.Abs(r - readings[i-1])
		}
	}

	amplitude := hi - lo
	averageDelta := deltaSum / float64(len(readings)-1)
	average := sum / float64(len(readings))

	return Analysis{
		Trend:     classifyTrend(first, last),
		Variation: classifyVariation(amplitude),
		Stability: classifyStability(averageDelta),
		Min:       rounded(lo),
		Max:       rounded(hi),
		Average:   rounded(average),
		Amplitude: rounded(amplitude),
	}
}

func classifyTrend(first, last float64) Trend {
	switch {
	case last > first:
		return TrendUp
	case last < first:
		return TrendDown
	default:
		return TrendStable
	}
}

// Boundaries are load-bearing: 2 and 5 are both moderate.
func classifyVariation(amplitude float64) Variation {
	switch {
	case amplitude < lowVariationBelow:
		return VariationLow
	case amplitude <= highVariationAbove:
		return VariationModerate
	default:
		return VariationHigh
	}
}

func classifyStability(averageDelta float64) Stability {
	if averageDelta < stableDeltaBelow {
		return StabilityStable
	}
	return StabilityUnstable
}

func rounded(v float64) *float64 {
	r := common.RoundTo(v, displayPlaces)
	return &r
}
