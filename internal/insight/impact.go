package insight

import "strings"

// Impact is the health and comfort narrative for an analysis.
type Impact struct {
	Health  string `json:"health"`
	Comfort string `json:"comfort"`
}

const (
	noHealthImpact  = "It is not possible to assess the health impact right now due to lack of data."
	noComfortImpact = "It is not possible to assess comfort right now due to lack of data."
)

type impactFragment struct {
	health  string
	comfort string
}

var variationImpact = map[Variation]impactFragment{
	VariationHigh: {
		health:  "Extreme swings can affect health, especially for vulnerable groups.",
		comfort: "High temperature variation can cause thermal discomfort throughout the period.",
	},
	VariationModerate: {
		health:  "Moderate swings generally pose no health risk.",
		comfort: "Moderate temperature variation may be noticeable during the day.",
	},
	VariationLow: {
		health:  "Steady temperatures favor well-being and health.",
		comfort: "Low temperature variation tends to provide greater thermal comfort.",
	},
}

// Stability only feeds the health narrative.
var stabilityImpact = map[Stability]string{
	StabilityUnstable: "Abrupt changes may signal a health risk and call for closer attention.",
	StabilityStable:   "Gradual changes point to a more predictable and safer environment.",
}

// A stable trend contributes nothing.
var trendImpact = map[Trend]impactFragment{
	TrendUp: {
		health:  "Rising temperatures can increase the risk of dehydration.",
		comfort: "The upward trend may lead to a higher perceived temperature.",
	},
	TrendDown: {
		health:  "Falling temperatures raise the risk of hypothermia in vulnerable groups.",
		comfort: "The downward trend may lead to a milder perceived temperature.",
	},
}

// AssessImpact builds the health and comfort texts from fragments triggered
// by variation, then stability, then trend.
func AssessImpact(a Analysis) Impact {
	if a.Insufficient() {
		return Impact{Health: noHealthImpact, Comfort: noComfortImpact}
	}

	var health, comfort []string

	if f, ok := variationImpact[a.Variation]; ok {
		health = append(health, f.health)
		comfort = append(comfort, f.comfort)
	}
	if h, ok := stabilityImpact[a.Stability]; ok {
		health = append(health, h)
	}
	if f, ok := trendImpact[a.Trend]; ok {
		health = append(health, f.health)
		comfort = append(comfort, f.comfort)
	}

	return Impact{
		Health:  strings.Join(health, " "),
		Comfort: strings.Join(comfort, " "),
	}
}
