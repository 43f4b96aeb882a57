package insight

import "fmt"

const notEnoughDataInterpretation = "There is not enough data yet to analyze the temperature variation."

var trendClauses = map[Trend]string{
	TrendUp:     "The temperature showed an upward trend",
	TrendDown:   "The temperature showed a downward trend",
	TrendStable: "The temperature held steady",
}

var variationClauses = map[Variation]string{
	VariationLow:      "with little variation over the period",
	VariationModerate: "with moderate variation over the period",
	VariationHigh:     "with sharp variation over the period",
}

var stabilityClauses = map[Stability]string{
	StabilityStable:   "and gradual changes between readings",
	StabilityUnstable: "and abrupt changes between readings",
}

// Interpret renders an analysis as one sentence made of a trend, a variation
// and a stability clause, in that order.
func Interpret(a Analysis) string {
	if a.Insufficient() {
		return notEnoughDataInterpretation
	}

	return fmt.Sprintf("%s, %s, %s.",
		trendClauses[a.Trend],
		variationClauses[a.Variation],
		stabilityClauses[a.Stability],
	)
}
