// Package units defines the unit systems observation records are expressed
// in, the observation-type to unit-group mapping, and value-level
// conversions between units.
package units

import "fmt"

// System identifies the unit system a record's values are expressed in.
// The numeric codes match the values stored in the archive database.
type System int

// Supported unit systems
const (
	US       System = 1  // US customary: inHg, degree F, mph, inch
	Metric   System = 16 // mbar, degree C, km/h, cm
	MetricWX System = 17 // mbar, degree C, m/s, mm
)

// String returns the conventional name of the unit system
func (s System) String() string {
	switch s {
	case US:
		return "US"
	case Metric:
		return "METRIC"
	case MetricWX:
		return "METRICWX"
	default:
		return fmt.Sprintf("System(%d)", int(s))
	}
}

// Valid reports whether s is a known unit system
func (s System) Valid() bool {
	return s == US || s == Metric || s == MetricWX
}

// Unit groups. Every observation type belongs to one group; the group and
// the unit system together determine the concrete unit.
const (
	GroupPressure    = "group_pressure"
	GroupTemperature = "group_temperature"
	GroupSpeed       = "group_speed"
	GroupRain        = "group_rain"
	GroupRainRate    = "group_rainrate"
	GroupPercent     = "group_percent"
	GroupDirection   = "group_direction"
	GroupRadiation   = "group_radiation"
	GroupUV          = "group_uv"
)

// Unit names
const (
	UnitInHg          = "inHg"
	UnitMbar          = "mbar"
	UnitFahrenheit    = "degree_F"
	UnitCelsius       = "degree_C"
	UnitMilePerHour   = "mile_per_hour"
	UnitKmPerHour     = "km_per_hour"
	UnitMeterPerSec   = "meter_per_second"
	UnitInch          = "inch"
	UnitCm            = "cm"
	UnitMm            = "mm"
	UnitInchPerHour   = "inch_per_hour"
	UnitCmPerHour     = "cm_per_hour"
	UnitMmPerHour     = "mm_per_hour"
	UnitPercent       = "percent"
	UnitDegreeCompass = "degree_compass"
	UnitWattPerM2     = "watt_per_meter_squared"
	UnitUVIndex       = "uv_index"
)

// obsGroups maps observation types to their unit group
var obsGroups = map[string]string{
	"barometer":   GroupPressure,
	"altimeter":   GroupPressure,
	"pressure":    GroupPressure,
	"outTemp":     GroupTemperature,
	"inTemp":      GroupTemperature,
	"dewpoint":    GroupTemperature,
	"windchill":   GroupTemperature,
	"heatindex":   GroupTemperature,
	"windSpeed":   GroupSpeed,
	"windGust":    GroupSpeed,
	"rain":        GroupRain,
	"hourRain":    GroupRain,
	"rain24":      GroupRain,
	"dayRain":     GroupRain,
	"totalRain":   GroupRain,
	"rainRate":    GroupRainRate,
	"outHumidity": GroupPercent,
	"inHumidity":  GroupPercent,
	"windDir":     GroupDirection,
	"windGustDir": GroupDirection,
	"radiation":   GroupRadiation,
	"UV":          GroupUV,
}

// ObsGroup returns the unit group for an observation type
func ObsGroup(obsType string) (string, bool) {
	g, ok := obsGroups[obsType]
	return g, ok
}

// systemUnits maps (group, system) to the concrete unit
var systemUnits = map[string]map[System]string{
	GroupPressure: {
		US:       UnitInHg,
		Metric:   UnitMbar,
		MetricWX: UnitMbar,
	},
	GroupTemperature: {
		US:       UnitFahrenheit,
		Metric:   UnitCelsius,
		MetricWX: UnitCelsius,
	},
	GroupSpeed: {
		US:       UnitMilePerHour,
		Metric:   UnitKmPerHour,
		MetricWX: UnitMeterPerSec,
	},
	GroupRain: {
		US:       UnitInch,
		Metric:   UnitCm,
		MetricWX: UnitMm,
	},
	GroupRainRate: {
		US:       UnitInchPerHour,
		Metric:   UnitCmPerHour,
		MetricWX: UnitMmPerHour,
	},
	GroupPercent: {
		US:       UnitPercent,
		Metric:   UnitPercent,
		MetricWX: UnitPercent,
	},
	GroupDirection: {
		US:       UnitDegreeCompass,
		Metric:   UnitDegreeCompass,
		MetricWX: UnitDegreeCompass,
	},
	GroupRadiation: {
		US:       UnitWattPerM2,
		Metric:   UnitWattPerM2,
		MetricWX: UnitWattPerM2,
	},
	GroupUV: {
		US:       UnitUVIndex,
		Metric:   UnitUVIndex,
		MetricWX: UnitUVIndex,
	},
}

// UnitFor returns the concrete unit for a group within a unit system
func UnitFor(group string, s System) (string, bool) {
	m, ok := systemUnits[group]
	if !ok {
		return "", false
	}
	u, ok := m[s]
	return u, ok
}
