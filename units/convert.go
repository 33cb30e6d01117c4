package units

import "fmt"

// Conversion factors
const (
	mbarPerInHg = 33.8639
	kmPerMile   = 1.609344
	mpsPerMph   = 0.44704
	mmPerInch   = 25.4
	cmPerInch   = 2.54
	inchPerMm   = 1.0 / mmPerInch
	inchPerCm   = 1.0 / cmPerInch
)

// conversions maps a source unit to the functions producing each reachable
// target unit
var conversions = map[string]map[string]func(float64) float64{
	UnitInHg: {
		UnitMbar: func(v float64) float64 { return v * mbarPerInHg },
	},
	UnitMbar: {
		UnitInHg: func(v float64) float64 { return v / mbarPerInHg },
	},
	UnitFahrenheit: {
		UnitCelsius: func(v float64) float64 { return (v - 32.0) * 5.0 / 9.0 },
	},
	UnitCelsius: {
		UnitFahrenheit: func(v float64) float64 { return v*9.0/5.0 + 32.0 },
	},
	UnitMilePerHour: {
		UnitKmPerHour:   func(v float64) float64 { return v * kmPerMile },
		UnitMeterPerSec: func(v float64) float64 { return v * mpsPerMph },
	},
	UnitKmPerHour: {
		UnitMilePerHour: func(v float64) float64 { return v / kmPerMile },
		UnitMeterPerSec: func(v float64) float64 { return v / 3.6 },
	},
	UnitMeterPerSec: {
		UnitMilePerHour: func(v float64) float64 { return v / mpsPerMph },
		UnitKmPerHour:   func(v float64) float64 { return v * 3.6 },
	},
	UnitInch: {
		UnitMm: func(v float64) float64 { return v * mmPerInch },
		UnitCm: func(v float64) float64 { return v * cmPerInch },
	},
	UnitMm: {
		UnitInch: func(v float64) float64 { return v * inchPerMm },
		UnitCm:   func(v float64) float64 { return v / 10.0 },
	},
	UnitCm: {
		UnitInch: func(v float64) float64 { return v * inchPerCm },
		UnitMm:   func(v float64) float64 { return v * 10.0 },
	},
	UnitInchPerHour: {
		UnitMmPerHour: func(v float64) float64 { return v * mmPerInch },
		UnitCmPerHour: func(v float64) float64 { return v * cmPerInch },
	},
	UnitMmPerHour: {
		UnitInchPerHour: func(v float64) float64 { return v * inchPerMm },
		UnitCmPerHour:   func(v float64) float64 { return v / 10.0 },
	},
	UnitCmPerHour: {
		UnitInchPerHour: func(v float64) float64 { return v * inchPerCm },
		UnitMmPerHour:   func(v float64) float64 { return v * 10.0 },
	},
}

// ConvertValue converts a single value between two units. Converting a
// value to its own unit is the identity.
func ConvertValue(v float64, fromUnit, toUnit string) (float64, error) {
	if fromUnit == toUnit {
		return v, nil
	}
	targets, ok := conversions[fromUnit]
	if !ok {
		return 0, fmt.Errorf("no conversions from unit %q", fromUnit)
	}
	fn, ok := targets[toUnit]
	if !ok {
		return 0, fmt.Errorf("no conversion from %q to %q", fromUnit, toUnit)
	}
	return fn(v), nil
}
