package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemString(t *testing.T) {
	assert.Equal(t, "US", US.String())
	assert.Equal(t, "METRIC", Metric.String())
	assert.Equal(t, "METRICWX", MetricWX.String())
	assert.Equal(t, "System(99)", System(99).String())
}

func TestSystemValid(t *testing.T) {
	assert.True(t, US.Valid())
	assert.True(t, Metric.Valid())
	assert.True(t, MetricWX.Valid())
	assert.False(t, System(0).Valid())
	assert.False(t, System(2).Valid())
}

func TestObsGroup(t *testing.T) {
	g, ok := ObsGroup("barometer")
	require.True(t, ok)
	assert.Equal(t, GroupPressure, g)

	g, ok = ObsGroup("windSpeed")
	require.True(t, ok)
	assert.Equal(t, GroupSpeed, g)

	_, ok = ObsGroup("noSuchType")
	assert.False(t, ok)
}

func TestUnitFor(t *testing.T) {
	u, ok := UnitFor(GroupRain, Metric)
	require.True(t, ok)
	assert.Equal(t, UnitCm, u)

	u, ok = UnitFor(GroupSpeed, MetricWX)
	require.True(t, ok)
	assert.Equal(t, UnitMeterPerSec, u)

	_, ok = UnitFor("group_bogus", US)
	assert.False(t, ok)
}

func TestConvertValue(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		from, to string
		want     float64
	}{
		{"inHg to mbar", 29.92, UnitInHg, UnitMbar, 1013.21},
		{"mbar to inHg", 1013.25, UnitMbar, UnitInHg, 29.9212},
		{"F to C", 32.0, UnitFahrenheit, UnitCelsius, 0.0},
		{"C to F", 100.0, UnitCelsius, UnitFahrenheit, 212.0},
		{"mph to km/h", 10.0, UnitMilePerHour, UnitKmPerHour, 16.09344},
		{"m/s to mph", 10.0, UnitMeterPerSec, UnitMilePerHour, 22.3694},
		{"inch to mm", 1.0, UnitInch, UnitMm, 25.4},
		{"cm to inch", 2.54, UnitCm, UnitInch, 1.0},
		{"identity", 42.0, UnitMbar, UnitMbar, 42.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertValue(tt.v, tt.from, tt.to)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}
}

func TestConvertValueUnknown(t *testing.T) {
	_, err := ConvertValue(1.0, "furlongs", UnitMbar)
	assert.Error(t, err)

	_, err = ConvertValue(1.0, UnitInHg, UnitCelsius)
	assert.Error(t, err)
}
