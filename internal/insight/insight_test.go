package insight

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

// every classified combination the analyzer can produce
func allAnalyses() []Analysis {
	var out []Analysis
	for _, tr := range []Trend{TrendUp, TrendDown, TrendStable} {
		for _, v := range []Variation{VariationLow, VariationModerate, VariationHigh} {
			for _, s := range []Stability{StabilityStable, StabilityUnstable} {
				out = append(out, Analysis{Trend: tr, Variation: v, Stability: s})
			}
		}
	}
	return out
}

func TestInterpret(t *testing.T) {
	got := Interpret(Analyze(nil))
	if got != notEnoughDataInterpretation {
		t.Errorf("insufficient data: got %q", got)
	}

	for _, a := range allAnalyses() {
		s := Interpret(a)
		if strings.Count(s, ",") != 2 {
			t.Errorf("%+v: want exactly two commas in %q", a, s)
		}
		if !strings.HasSuffix(s, ".") {
			t.Errorf("%+v: want trailing period in %q", a, s)
		}
		parts := strings.Split(strings.TrimSuffix(s, "."), ", ")
		if len(parts) != 3 {
			t.Fatalf("%+v: want three clauses, got %d", a, len(parts))
		}
		if parts[0] != trendClauses[a.Trend] || parts[1] != variationClauses[a.Variation] || parts[2] != stabilityClauses[a.Stability] {
			t.Errorf("%+v: clauses out of order in %q", a, s)
		}
	}
}

func TestAssessImpact(t *testing.T) {
	imp := AssessImpact(Analyze([]float64{3}))
	if imp.Health != noHealthImpact || imp.Comfort != noComfortImpact {
		t.Errorf("insufficient data: got %+v", imp)
	}

	tests := []struct {
		name    string
		a       Analysis
		health  []string
		comfort []string
	}{
		{
			name: "stable trend adds nothing",
			a:    Analysis{Trend: TrendStable, Variation: VariationLow, Stability: StabilityStable},
			health: []string{
				variationImpact[VariationLow].health,
				stabilityImpact[StabilityStable],
			},
			comfort: []string{variationImpact[VariationLow].comfort},
		},
		{
			name: "rising and unstable",
			a:    Analysis{Trend: TrendUp, Variation: VariationHigh, Stability: StabilityUnstable},
			health: []string{
				variationImpact[VariationHigh].health,
				stabilityImpact[StabilityUnstable],
				trendImpact[TrendUp].health,
			},
			comfort: []string{
				variationImpact[VariationHigh].comfort,
				trendImpact[TrendUp].comfort,
			},
		},
		{
			name: "falling with moderate variation",
			a:    Analysis{Trend: TrendDown, Variation: VariationModerate, Stability: StabilityStable},
			health: []string{
				variationImpact[VariationModerate].health,
				stabilityImpact[StabilityStable],
				trendImpact[TrendDown].health,
			},
			comfort: []string{
				variationImpact[VariationModerate].comfort,
				trendImpact[TrendDown].comfort,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssessImpact(tt.a)
			if want := strings.Join(tt.health, " "); got.Health != want {
				t.Errorf("Health:\n got %q\nwant %q", got.Health, want)
			}
			if want := strings.Join(tt.comfort, " "); got.Comfort != want {
				t.Errorf("Comfort:\n got %q\nwant %q", got.Comfort, want)
			}
		})
	}

	for _, a := range allAnalyses() {
		got := AssessImpact(a)
		for _, text := range []string{got.Health, got.Comfort} {
			if text == "" || strings.Contains(text, "  ") || strings.TrimSpace(text) != text {
				t.Errorf("%+v: badly joined fragments %q", a, text)
			}
		}
	}
}

func TestSuggest(t *testing.T) {
	got := Suggest(Analyze([]float64{}), Impact{})
	if !reflect.DeepEqual(got, []string{waitForDataSuggestion}) {
		t.Errorf("insufficient data: got %v", got)
	}

	tests := []struct {
		name string
		a    Analysis
		want []string
	}{
		{
			name: "only stability fires",
			a:    Analysis{Trend: TrendStable, Variation: VariationLow, Stability: StabilityStable},
			want: []string{stabilitySuggestions[StabilityStable]},
		},
		{
			name: "all three fire in order",
			a:    Analysis{Trend: TrendDown, Variation: VariationHigh, Stability: StabilityUnstable},
			want: []string{
				variationSuggestions[VariationHigh],
				stabilitySuggestions[StabilityUnstable],
				trendSuggestions[TrendDown],
			},
		},
		{
			name: "moderate variation and rising",
			a:    Analysis{Trend: TrendUp, Variation: VariationModerate, Stability: StabilityStable},
			want: []string{
				variationSuggestions[VariationModerate],
				stabilitySuggestions[StabilityStable],
				trendSuggestions[TrendUp],
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Suggest(tt.a, AssessImpact(tt.a)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSuggest_IgnoresImpactText(t *testing.T) {
	for _, a := range allAnalyses() {
		base := Suggest(a, AssessImpact(a))
		other := Suggest(a, Impact{Health: "anything", Comfort: "else"})
		if !reflect.DeepEqual(base, other) {
			t.Errorf("%+v: impact text changed suggestions", a)
		}
		if len(base) < 1 || len(base) > 3 {
			t.Errorf("%+v: got %d suggestions", a, len(base))
		}
	}
}

func TestBuild(t *testing.T) {
	readings := []float64{22, 23, 25, 28, 27, 26}
	got := Build(readings)

	if got.Analysis.Trend != TrendUp || got.Analysis.Variation != VariationHigh || got.Analysis.Stability != StabilityUnstable {
		t.Fatalf("unexpected analysis %+v", got.Analysis)
	}
	if got.Interpretation != Interpret(got.Analysis) {
		t.Errorf("Interpretation not derived from analysis: %q", got.Interpretation)
	}
	if len(got.Suggestions) != 3 {
		t.Errorf("Suggestions: got %d, want 3", len(got.Suggestions))
	}

	if again := Build(readings); !reflect.DeepEqual(got, again) {
		t.Errorf("Build is not deterministic:\n%+v\n%+v", got, again)
	}
}

func TestBuild_Insufficient(t *testing.T) {
	got := Build([]float64{18})
	if !got.Analysis.Insufficient() {
		t.Fatalf("expected insufficient analysis, got %+v", got.Analysis)
	}
	if len(got.Suggestions) != 1 {
		t.Errorf("Suggestions: got %v", got.Suggestions)
	}
}

func TestBuildChecked(t *testing.T) {
	for _, bad := range [][]float64{
		{20, math.NaN()},
		{math.Inf(1), 20},
		{20, 21, math.Inf(-1)},
	} {
		if _, err := BuildChecked(bad); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("BuildChecked(%v): got %v, want ErrInvalidInput", bad, err)
		}
	}

	got, err := BuildChecked([]float64{20, 20, 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Analysis.Trend != TrendStable {
		t.Errorf("Trend: got %s, want stable", got.Analysis.Trend)
	}
}
