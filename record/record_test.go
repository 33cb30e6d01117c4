package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmcgeorge/weewx/units"
)

func TestCopyIsIndependent(t *testing.T) {
	r := New(1000, units.US)
	r.Set("outTemp", 68.0)

	c := r.Copy()
	c.Set("outTemp", 50.0)
	c.Set("windSpeed", 5.0)

	v, ok := r.Get("outTemp")
	require.True(t, ok)
	assert.Equal(t, 68.0, v)
	assert.False(t, r.Has("windSpeed"))
}

func TestObsTypesSorted(t *testing.T) {
	r := New(1000, units.US)
	r.Set("windSpeed", 1)
	r.Set("barometer", 2)
	r.Set("outTemp", 3)

	assert.Equal(t, []string{"barometer", "outTemp", "windSpeed"}, r.ObsTypes())
}

func TestStdConverterRecord(t *testing.T) {
	r := New(1383755400, units.Metric)
	r.Set("outTemp", 20.0)    // degree C
	r.Set("barometer", 1020.0) // mbar
	r.Set("outHumidity", 85.0)
	r.Set("windDir", 270.0)

	conv := StdConverter{}
	out, err := conv.ConvertRecord(r, units.US)
	require.NoError(t, err)

	assert.Equal(t, units.US, out.Units)
	assert.Equal(t, r.Timestamp, out.Timestamp)

	temp, _ := out.Get("outTemp")
	assert.InDelta(t, 68.0, temp, 0.001)
	baro, _ := out.Get("barometer")
	assert.InDelta(t, 30.1206, baro, 0.001)

	// Dimensionless groups pass through
	hum, _ := out.Get("outHumidity")
	assert.Equal(t, 85.0, hum)
	dir, _ := out.Get("windDir")
	assert.Equal(t, 270.0, dir)

	// Original record untouched
	origTemp, _ := r.Get("outTemp")
	assert.Equal(t, 20.0, origTemp)
}

func TestStdConverterSameSystem(t *testing.T) {
	r := New(1000, units.US)
	r.Set("outTemp", 68.0)

	out, err := StdConverter{}.ConvertRecord(r, units.US)
	require.NoError(t, err)
	v, _ := out.Get("outTemp")
	assert.Equal(t, 68.0, v)

	// Copy, not alias
	out.Set("outTemp", 0)
	v, _ = r.Get("outTemp")
	assert.Equal(t, 68.0, v)
}

func TestStdConverterInvalidTarget(t *testing.T) {
	r := New(1000, units.US)
	_, err := StdConverter{}.ConvertRecord(r, units.System(99))
	assert.Error(t, err)
}
