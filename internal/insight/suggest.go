package insight

const waitForDataSuggestion = "Wait for more data to receive climate suggestions."

// Low variation has no suggestion.
var variationSuggestions = map[Variation]string{
	VariationHigh:     "Be prepared for temperature swings throughout the day.",
	VariationModerate: "Keep possible temperature changes over the period in mind.",
}

var stabilitySuggestions = map[Stability]string{
	StabilityUnstable: "Keep an extra layer of clothing handy for rapid weather changes.",
	StabilityStable:   "Stable conditions favor planning outdoor activities.",
}

var trendSuggestions = map[Trend]string{
	TrendUp:   "Lighter clothing may be more comfortable.",
	TrendDown: "An additional layer of clothing may be useful.",
}

// Suggest returns recommended actions ordered variation, stability, trend.
// The impact is accepted alongside the analysis but never changes the result.
func Suggest(a Analysis, _ Impact) []string {
	if a.Insufficient() {
		return []string{waitForDataSuggestion}
	}

	suggestions := make([]string, 0, 3)
	if s, ok := variationSuggestions[a.Variation]; ok {
		suggestions = append(suggestions, s)
	}
	if s, ok := stabilitySuggestions[a.Stability]; ok {
		suggestions = append(suggestions, s)
	}
	if s, ok := trendSuggestions[a.Trend]; ok {
		suggestions = append(suggestions, s)
	}
	return suggestions
}
