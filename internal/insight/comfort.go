package insight

// ComfortLevel grades how comfortable current conditions feel.
type ComfortLevel string

const (
	ComfortLow      ComfortLevel = "low"
	ComfortModerate ComfortLevel = "moderate"
	ComfortUnknown  ComfortLevel = "unknown"
)

// Factors reported by ThermalComfort.
const (
	FactorHighHumidity    = "high_humidity"
	FactorHighTemperature = "high_temperature"
	FactorLowTemperature  = "low_temperature"
)

const (
	highHumidityPct  = 70.0
	highTemperatureC = 30.0
	lowTemperatureC  = 10.0
)

// Comfort is a rule-based thermal comfort reading for a live snapshot.
type Comfort struct {
	Level   ComfortLevel `json:"level"`
	Summary string       `json:"summary"`
	Factors []string     `json:"factors"`
}

// UILevel maps the comfort level to the badge used by the dashboard.
func (c Comfort) UILevel() string {
	switch c.Level {
	case ComfortModerate:
		return "good"
	case ComfortLow:
		return "bad"
	default:
		return "neutral"
	}
}

// ThermalComfort grades current conditions. A nil temperature or humidity
// yields ComfortUnknown.
func ThermalComfort(temperature, humidity *float64) Comfort {
	if temperature == nil || humidity == nil {
		return Comfort{
			Level:   ComfortUnknown,
			Summary: "Not enough data to assess thermal comfort",
			Factors: []string{},
		}
	}

	factors := []string{}
	if *humidity >= highHumidityPct {
		factors = append(factors, FactorHighHumidity)
	}
	hot := *temperature >= highTemperatureC
	cold := *temperature <= lowTemperatureC
	if hot {
		factors = append(factors, FactorHighTemperature)
	}
	if cold {
		factors = append(factors, FactorLowTemperature)
	}

	switch {
	case hot && *humidity >= highHumidityPct:
		return Comfort{Level: ComfortLow, Summary: "Intense, muggy heat", Factors: factors}
	case cold:
		return Comfort{Level: ComfortLow, Summary: "Noticeably cold", Factors: factors}
	default:
		return Comfort{Level: ComfortModerate, Summary: "Reasonably comfortable thermal conditions", Factors: factors}
	}
}
