package weather

import "time"

// AggregateReadings combines multiple provider readings into a single WeatherSnapshot.
// Numeric fields are averaged; the condition is chosen by majority, ties going
// to the condition seen first. Humidity and pressure are averaged only over
// readings that report them: zero means the provider left the field out.
func AggregateReadings(loc Location, readings []ProviderReading) WeatherSnapshot {
	if len(readings) == 0 {
		return WeatherSnapshot{
			Location:  loc,
			Timestamp: time.Now().UTC(),
			Condition: ConditionUnknown,
		}
	}

	var (
		sumTemp     float64
		sumFeels    float64
		sumHumidity float64
		sumWind     float64
		sumPressure float64
		sumPrecip   float64

		nHumidity, nPressure int
	)

	conditionCounts := make(map[Condition]int)
	var conditionOrder []Condition
	providers := make([]ProviderContribution, 0, len(readings))
	var newestTS time.Time

	for _, r := range readings {
		sumTemp += r.TemperatureC
		sumFeels += r.FeelsLikeC
		if r.HumidityPct > 0 {
			sumHumidity += r.HumidityPct
			nHumidity++
		}
		sumWind += r.WindSpeedMS
		if r.PressureHpa > 0 {
			sumPressure += r.PressureHpa
			nPressure++
		}
		sumPrecip += r.PrecipMm

		if conditionCounts[r.Condition] == 0 {
			conditionOrder = append(conditionOrder, r.Condition)
		}
		conditionCounts[r.Condition]++

		if r.Timestamp.After(newestTS) {
			newestTS = r.Timestamp
		}

		providers = append(providers, ProviderContribution{
			ProviderName: r.ProviderName,
			Timestamp:    r.Timestamp,
		})
	}

	n := float64(len(readings))

	bestCond := ConditionUnknown
	bestCount := 0
	for _, cond := range conditionOrder {
		if count := conditionCounts[cond]; count > bestCount {
			bestCount = count
			bestCond = cond
		}
	}

	if newestTS.IsZero() {
		newestTS = time.Now().UTC()
	}

	return WeatherSnapshot{
		Location:    loc,
		Timestamp:   newestTS.UTC(),
		Temperature: sumTemp / n,
		FeelsLike:   sumFeels / n,
		Humidity:    mean(sumHumidity, nHumidity),
		WindSpeed:   sumWind / n,
		Pressure:    mean(sumPressure, nPressure),
		PrecipMM:    sumPrecip / n,
		Condition:   bestCond,
		Providers:   providers,
	}
}

// collapseReadings reduces one provider's readings for a single day to one
// reading, so every provider carries the same weight in the daily aggregate.
// Precipitation is summed into a daily total.
func collapseReadings(providerName string, readings []ProviderReading) ProviderReading {
	snap := AggregateReadings(Location{}, readings)
	var precip float64
	for _, r := range readings {
		precip += r.PrecipMm
	}
	return ProviderReading{
		ProviderName: providerName,
		Timestamp:    snap.Timestamp,
		TemperatureC: snap.Temperature,
		FeelsLikeC:   snap.FeelsLike,
		HumidityPct:  snap.Humidity,
		WindSpeedMS:  snap.WindSpeed,
		PressureHpa:  snap.Pressure,
		PrecipMm:     precip,
		Condition:    snap.Condition,
	}
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
