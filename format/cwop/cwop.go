// Package cwop formats observation records as CWOP TNC2/APRS packets: a
// login line and a position/weather packet line, both CRLF-terminated.
package cwop

import (
	"fmt"
	"math"
	"strings"
	"time"

	werrors "github.com/pmcgeorge/weewx/errors"
	"github.com/pmcgeorge/weewx/record"
	"github.com/pmcgeorge/weewx/units"
)

// ValidPrefixes are the station-id prefixes registered as receive-only
// CWOP stations; they authenticate with passcode -1.
var ValidPrefixes = []string{"CW", "DW", "EW"}

// ReceiveOnlyPasscode is the passcode for CW/DW/EW stations
const ReceiveOnlyPasscode = "-1"

// Formatter produces CWOP login and packet lines. The packet body is in US
// customary units except barometric pressure, which CWOP wants in
// millibars; records in another unit system are converted first.
type Formatter struct {
	// Station is the station id, upper case
	Station string
	// Passcode authenticates registered (non CW/DW/EW) stations
	Passcode string
	// Latitude and Longitude of the station in decimal degrees
	Latitude  float64
	Longitude float64
	// SoftwareName, SoftwareVersion and Hardware make up the login version
	// tag and the trailing equipment tag
	SoftwareName    string
	SoftwareVersion string
	Hardware        string
	// Converter supplies unit conversions
	Converter record.Converter
}

// HasValidPrefix reports whether a station id starts with a receive-only
// CWOP prefix
func HasValidPrefix(station string) bool {
	for _, p := range ValidPrefixes {
		if strings.HasPrefix(strings.ToUpper(station), p) {
			return true
		}
	}
	return false
}

// LoginLine renders the server login line
func (f Formatter) LoginLine() string {
	return fmt.Sprintf("user %s pass %s vers %s %s\r\n",
		f.Station, f.Passcode, f.SoftwareName, f.SoftwareVersion)
}

// Format renders a record into the login line and the TNC2 packet line
func (f Formatter) Format(rec record.Record) (loginLine, packetLine string, err error) {
	packetLine, err = f.PacketLine(rec)
	if err != nil {
		return "", "", err
	}
	return f.LoginLine(), packetLine, nil
}

// PacketLine renders the TNC2 packet: fixed-width sub-fields concatenated
// in order, with dot-filled placeholders for missing values.
func (f Formatter) PacketLine(rec record.Record) (string, error) {
	if rec.Units != units.US {
		if f.Converter == nil {
			return "", werrors.WrapInvalid(
				fmt.Errorf("record in %s but no converter configured", rec.Units),
				"cwop", "PacketLine", "unit conversion")
		}
		converted, convErr := f.Converter.ConvertRecord(rec, units.US)
		if convErr != nil {
			return "", werrors.WrapInvalid(convErr, "cwop", "PacketLine", "unit conversion")
		}
		rec = converted
	}

	var b strings.Builder

	b.WriteString(f.Station)
	b.WriteString(">APRS,TCPIP*:")

	b.WriteString(time.Unix(rec.Timestamp, 0).UTC().Format("@021504z"))

	b.WriteString(latlonString(f.Latitude, 'N', 'S', 2))
	b.WriteByte('/')
	b.WriteString(latlonString(f.Longitude, 'E', 'W', 3))

	// Wind direction/speed/gust and temperature, 3 digits each
	b.WriteByte('_')
	b.WriteString(intField(rec, "windDir", 1.0))
	b.WriteByte('/')
	b.WriteString(intField(rec, "windSpeed", 1.0))
	b.WriteByte('g')
	b.WriteString(intField(rec, "windGust", 1.0))
	b.WriteByte('t')
	b.WriteString(intField(rec, "outTemp", 1.0))

	// Rain totals, hundredths of an inch
	b.WriteByte('r')
	b.WriteString(intField(rec, "hourRain", 100.0))
	b.WriteByte('p')
	b.WriteString(intField(rec, "rain24", 100.0))
	b.WriteByte('P')
	b.WriteString(intField(rec, "dayRain", 100.0))

	baroStr, err := f.pressureField(rec)
	if err != nil {
		return "", err
	}
	b.WriteString(baroStr)

	b.WriteString(humidityField(rec))
	b.WriteString(radiationField(rec))

	// Trailing equipment tag
	fmt.Fprintf(&b, ".%s-%s-%s", f.SoftwareName, f.SoftwareVersion, f.Hardware)

	b.WriteString("\r\n")
	return b.String(), nil
}

// pressureField renders the barometric pressure in tenths of a millibar.
// The rest of the packet is US customary but CWOP wants millibars here.
func (f Formatter) pressureField(rec record.Record) (string, error) {
	baro, ok := rec.Get("altimeter")
	if !ok {
		return "b.....", nil
	}
	if f.Converter == nil {
		return "", werrors.WrapInvalid(
			fmt.Errorf("altimeter present but no converter configured"),
			"cwop", "PacketLine", "pressure conversion")
	}
	mbar, err := f.Converter.ConvertValue(baro, units.UnitInHg, units.UnitMbar, units.GroupPressure)
	if err != nil {
		return "", werrors.WrapInvalid(err, "cwop", "PacketLine", "pressure conversion")
	}
	return fmt.Sprintf("b%05d", int(mbar*10.0)), nil
}

// intField renders a scaled observation as a 3-digit zero-padded integer,
// or the "..." sentinel when the observation is missing
func intField(rec record.Record, obsType string, scale float64) string {
	v, ok := rec.Get(obsType)
	if !ok {
		return "..."
	}
	return fmt.Sprintf("%03d", int(v*scale))
}

func humidityField(rec record.Record) string {
	humidity, ok := rec.Get("outHumidity")
	if !ok {
		return "h.."
	}
	// 00 is the wire encoding for 100%
	if humidity >= 100.0 {
		return "h00"
	}
	return fmt.Sprintf("h%02d", int(humidity))
}

// radiationField renders solar radiation on the split L/l scale: 0-999 as
// Lnnn, 1000-1999 as lnnn with 1000 subtracted, anything higher omitted
func radiationField(rec record.Record) string {
	radiation, ok := rec.Get("radiation")
	if !ok {
		return ""
	}
	switch {
	case radiation < 1000.0:
		return fmt.Sprintf("L%03d", int(radiation))
	case radiation < 2000.0:
		return fmt.Sprintf("l%03d", int(radiation-1000.0))
	default:
		return ""
	}
}

// latlonString renders a coordinate in APRS degree-minute form, e.g.
// "4514.83N" for latitude or "12242.88W" for longitude
func latlonString(ll float64, posHemi, negHemi byte, degWidth int) string {
	hemi := posHemi
	if ll < 0 {
		hemi = negHemi
		ll = -ll
	}
	deg := int(ll)
	minutes := (ll - math.Floor(ll)) * 60.0
	return fmt.Sprintf("%0*d%05.2f%c", degWidth, deg, minutes, hemi)
}
