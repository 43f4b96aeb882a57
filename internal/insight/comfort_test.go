package insight

import (
	"reflect"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestThermalComfort(t *testing.T) {
	tests := []struct {
		name     string
		temp     *float64
		humidity *float64
		level    ComfortLevel
		factors  []string
		ui       string
	}{
		{"missing temperature", nil, f(50), ComfortUnknown, []string{}, "neutral"},
		{"missing humidity", f(20), nil, ComfortUnknown, []string{}, "neutral"},
		{"hot and humid", f(30), f(70), ComfortLow, []string{FactorHighHumidity, FactorHighTemperature}, "bad"},
		{"hot but dry", f(34), f(30), ComfortModerate, []string{FactorHighTemperature}, "good"},
		{"cold", f(10), f(40), ComfortLow, []string{FactorLowTemperature}, "bad"},
		{"cold and humid", f(2), f(90), ComfortLow, []string{FactorHighHumidity, FactorLowTemperature}, "bad"},
		{"mild", f(22), f(55), ComfortModerate, []string{}, "good"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ThermalComfort(tt.temp, tt.humidity)
			if got.Level != tt.level {
				t.Errorf("Level: got %s, want %s", got.Level, tt.level)
			}
			if !reflect.DeepEqual(got.Factors, tt.factors) {
				t.Errorf("Factors: got %v, want %v", got.Factors, tt.factors)
			}
			if got.Summary == "" {
				t.Error("Summary must not be empty")
			}
			if got.UILevel() != tt.ui {
				t.Errorf("UILevel: got %s, want %s", got.UILevel(), tt.ui)
			}
		})
	}
}
