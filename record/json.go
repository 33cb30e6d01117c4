package record

import (
	"encoding/json"
	"fmt"

	werrors "github.com/pmcgeorge/weewx/errors"
	"github.com/pmcgeorge/weewx/units"
)

// Wire field names for the record envelope
const (
	jsonFieldTimestamp = "dateTime"
	jsonFieldUnits     = "usUnits"
)

// FromJSON decodes a flat archive-record object: "dateTime" (epoch
// seconds) and "usUnits" plus numeric observation fields. Null and
// non-numeric observation values are treated as absent.
func FromJSON(data []byte) (Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, werrors.WrapInvalid(err, "record", "FromJSON", "parse object")
	}

	ts, ok := raw[jsonFieldTimestamp].(float64)
	if !ok {
		return Record{}, werrors.WrapInvalid(
			fmt.Errorf("missing or non-numeric %q field", jsonFieldTimestamp),
			"record", "FromJSON", "read envelope")
	}
	sys, ok := raw[jsonFieldUnits].(float64)
	if !ok {
		return Record{}, werrors.WrapInvalid(
			fmt.Errorf("missing or non-numeric %q field", jsonFieldUnits),
			"record", "FromJSON", "read envelope")
	}
	system := units.System(int(sys))
	if !system.Valid() {
		return Record{}, werrors.WrapInvalid(
			fmt.Errorf("unknown unit system %d", int(sys)),
			"record", "FromJSON", "read envelope")
	}

	rec := New(int64(ts), system)
	for name, v := range raw {
		if name == jsonFieldTimestamp || name == jsonFieldUnits {
			continue
		}
		if f, ok := v.(float64); ok {
			rec.Set(name, f)
		}
	}
	return rec, nil
}
