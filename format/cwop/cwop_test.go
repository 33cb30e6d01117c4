package cwop

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmcgeorge/weewx/record"
	"github.com/pmcgeorge/weewx/units"
)

func testFormatter() Formatter {
	return Formatter{
		Station:         "CW1234",
		Passcode:        ReceiveOnlyPasscode,
		Latitude:        45.247,
		Longitude:       -122.714,
		SoftwareName:    "weewx",
		SoftwareVersion: "4.10.2",
		Hardware:        "Vantage",
		Converter:       record.StdConverter{},
	}
}

func TestLoginLine(t *testing.T) {
	got := testFormatter().LoginLine()
	assert.Equal(t, "user CW1234 pass -1 vers weewx 4.10.2\r\n", got)
}

func TestPacketLineComplete(t *testing.T) {
	rec := record.New(1383755400, units.US) // 2013-11-06 16:30:00 UTC
	rec.Set("windDir", 270.0)
	rec.Set("windSpeed", 5.7)
	rec.Set("windGust", 9.0)
	rec.Set("outTemp", 68.2)
	rec.Set("hourRain", 0.12)
	rec.Set("rain24", 0.25)
	rec.Set("dayRain", 0.12)
	rec.Set("altimeter", 29.92)
	rec.Set("outHumidity", 85.4)
	rec.Set("radiation", 421.0)

	got, err := testFormatter().PacketLine(rec)
	require.NoError(t, err)

	assert.Equal(t,
		"CW1234>APRS,TCPIP*:@061630z4514.82N/12242.84W"+
			"_270/005g009t068r012p025P012b10132h85L421.weewx-4.10.2-Vantage\r\n",
		got)
}

func TestPacketLineSentinels(t *testing.T) {
	rec := record.New(1383755400, units.US)

	got, err := testFormatter().PacketLine(rec)
	require.NoError(t, err)

	// Every missing field renders dot-filled at its declared width
	assert.Contains(t, got, "_.../...g...t...")
	assert.Contains(t, got, "r...p...P...")
	assert.Contains(t, got, "b.....")
	assert.Contains(t, got, "h..")
	assert.NotContains(t, got, "L")
	assert.True(t, strings.HasSuffix(got, ".weewx-4.10.2-Vantage\r\n"))
}

func TestPacketLineMissingTemperature(t *testing.T) {
	rec := record.New(1383755400, units.US)
	rec.Set("windDir", 90.0)
	rec.Set("windSpeed", 3.0)
	rec.Set("windGust", 5.0)

	got, err := testFormatter().PacketLine(rec)
	require.NoError(t, err)

	assert.Contains(t, got, "_090/003g005t...")
}

func TestPacketLineHumidityEncoding(t *testing.T) {
	f := testFormatter()

	rec := record.New(1383755400, units.US)
	rec.Set("outHumidity", 100.0)
	got, err := f.PacketLine(rec)
	require.NoError(t, err)
	assert.Contains(t, got, "h00", "100%% humidity encodes as 00")

	rec.Set("outHumidity", 7.0)
	got, err = f.PacketLine(rec)
	require.NoError(t, err)
	assert.Contains(t, got, "h07")
}

func TestPacketLineRadiationSplitScale(t *testing.T) {
	f := testFormatter()
	tests := []struct {
		radiation float64
		want      string
	}{
		{421.0, "L421"},
		{999.0, "L999"},
		{1000.0, "l000"},
		{1234.5, "l234"},
		{2000.0, ""},
		{2500.0, ""},
	}

	for _, tt := range tests {
		rec := record.New(1383755400, units.US)
		rec.Set("radiation", tt.radiation)
		got, err := f.PacketLine(rec)
		require.NoError(t, err)
		if tt.want == "" {
			assert.NotContains(t, got, "L")
			assert.NotContains(t, got, "l0")
		} else {
			assert.Contains(t, got, tt.want)
		}
	}
}

func TestPacketLinePressureReference(t *testing.T) {
	rec := record.New(1383755400, units.US)
	rec.Set("altimeter", 29.92)

	got, err := testFormatter().PacketLine(rec)
	require.NoError(t, err)

	// 29.92 inHg is 1013.2 mbar; tenth-of-millibar scaling gives 10132
	assert.Contains(t, got, "b10132")
}

func TestPacketLineConvertsMetricRecord(t *testing.T) {
	rec := record.New(1383755400, units.MetricWX)
	rec.Set("outTemp", 20.0)  // degree C -> 68 F
	rec.Set("windSpeed", 4.5) // m/s -> 10.07 mph

	got, err := testFormatter().PacketLine(rec)
	require.NoError(t, err)

	assert.Contains(t, got, "t068")
	assert.Contains(t, got, "/010g")
}

func TestPacketLineNoConverter(t *testing.T) {
	f := testFormatter()
	f.Converter = nil

	rec := record.New(1383755400, units.Metric)
	_, _, err := f.Format(rec)
	assert.Error(t, err)
}

func TestHasValidPrefix(t *testing.T) {
	assert.True(t, HasValidPrefix("CW1234"))
	assert.True(t, HasValidPrefix("dw5678"))
	assert.True(t, HasValidPrefix("EW0001"))
	assert.False(t, HasValidPrefix("K7ABC"))
}

func TestLatlonString(t *testing.T) {
	assert.Equal(t, "4514.82N", latlonString(45.247, 'N', 'S', 2))
	assert.Equal(t, "12242.84W", latlonString(-122.714, 'E', 'W', 3))
	assert.Equal(t, "0030.00S", latlonString(-0.5, 'N', 'S', 2))
}
