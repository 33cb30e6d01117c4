// Package ambient formats observation records for the Ambient HTTP query
// protocol used by Weather Underground, PWSweather and compatible
// providers.
package ambient

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	werrors "github.com/pmcgeorge/weewx/errors"
	"github.com/pmcgeorge/weewx/record"
	"github.com/pmcgeorge/weewx/units"
)

// fieldSpec maps one observation type to its protocol field name and
// fixed-point format
type fieldSpec struct {
	obsType string
	param   string
	format  string
}

// Observation fields in the order they appear in the query string. A field
// whose observation is absent from the record is omitted, never defaulted.
var fields = []fieldSpec{
	{"barometer", "baromin", "%.3f"},
	{"outTemp", "tempf", "%.1f"},
	{"outHumidity", "humidity", "%03.0f"},
	{"windSpeed", "windspeedmph", "%03.0f"},
	{"windDir", "winddir", "%03.0f"},
	{"windGust", "windgustmph", "%03.0f"},
	{"dewpoint", "dewptf", "%.1f"},
	{"hourRain", "rainin", "%.2f"},
	{"dayRain", "dailyrainin", "%.2f"},
	{"radiation", "solarradiation", "%.2f"},
	{"UV", "UV", "%.2f"},
}

// Formatter produces Ambient GET request URLs. The protocol requires US
// customary units; records in another system are converted first.
type Formatter struct {
	// URL is the provider's update endpoint (without query string)
	URL string
	// Station and Password identify the account
	Station  string
	Password string
	// SoftwareType is the software identification tag sent with each post
	SoftwareType string
	// RapidFire adds the rapid-update markers to every post
	RapidFire bool
	// Converter supplies the unit conversion when a record is not in US
	// customary units
	Converter record.Converter
}

// Format renders a record into a complete request URL
func (f Formatter) Format(rec record.Record) (string, error) {
	if f.URL == "" {
		return "", werrors.WrapInvalid(werrors.ErrMissingConfig, "ambient", "Format", "endpoint URL")
	}

	if rec.Units != units.US {
		if f.Converter == nil {
			return "", werrors.WrapInvalid(
				fmt.Errorf("record in %s but no converter configured", rec.Units),
				"ambient", "Format", "unit conversion")
		}
		converted, err := f.Converter.ConvertRecord(rec, units.US)
		if err != nil {
			return "", werrors.WrapInvalid(err, "ambient", "Format", "unit conversion")
		}
		rec = converted
	}

	var query []string
	add := func(param, value string) {
		query = append(query, param+"="+value)
	}

	add("action", "updateraw")
	add("ID", url.QueryEscape(f.Station))
	add("PASSWORD", url.QueryEscape(f.Password))
	add("softwaretype", url.QueryEscape(f.SoftwareType))
	add("dateutc", formatDateUTC(rec.Timestamp))

	for _, spec := range fields {
		v, ok := rec.Get(spec.obsType)
		if !ok {
			continue
		}
		add(spec.param, fmt.Sprintf(spec.format, v))
	}

	if f.RapidFire {
		add("realtime", "1")
		add("rtfreq", "2.5")
	}

	return f.URL + "?" + strings.Join(query, "&"), nil
}

// formatDateUTC renders the record time the way the providers expect:
// ISO-8601 in UTC with '+' separating date and time and the colons
// percent-escaped for URL safety, e.g. "2013-11-06+16%3A30%3A00".
func formatDateUTC(ts int64) string {
	iso := time.Unix(ts, 0).UTC().Format("2006-01-02+15:04:05")
	return strings.ReplaceAll(iso, ":", "%3A")
}
