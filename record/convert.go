package record

import (
	"fmt"

	"github.com/pmcgeorge/weewx/units"
)

// Converter converts records and individual values between unit systems.
// The pipeline only ever calls it; implementations may come from the host
// application.
type Converter interface {
	// ConvertRecord returns a copy of the record with every convertible
	// value expressed in the target unit system.
	ConvertRecord(r Record, target units.System) (Record, error)

	// ConvertValue converts a single value between two named units within
	// a unit group.
	ConvertValue(v float64, fromUnit, toUnit, group string) (float64, error)
}

// StdConverter is the standard Converter built on the units package
// conversion tables.
type StdConverter struct{}

var _ Converter = StdConverter{}

// ConvertRecord converts every value whose observation type has a known
// unit group. Values of unknown types are copied through unchanged, the
// way dimensionless values are.
func (StdConverter) ConvertRecord(r Record, target units.System) (Record, error) {
	if !target.Valid() {
		return Record{}, fmt.Errorf("invalid target unit system %d", int(target))
	}
	if r.Units == target {
		return r.Copy(), nil
	}

	out := New(r.Timestamp, target)
	for obsType, v := range r.Values {
		group, ok := units.ObsGroup(obsType)
		if !ok {
			out.Values[obsType] = v
			continue
		}
		fromUnit, ok := units.UnitFor(group, r.Units)
		if !ok {
			return Record{}, fmt.Errorf("no unit for %s in system %s", group, r.Units)
		}
		toUnit, ok := units.UnitFor(group, target)
		if !ok {
			return Record{}, fmt.Errorf("no unit for %s in system %s", group, target)
		}
		converted, err := units.ConvertValue(v, fromUnit, toUnit)
		if err != nil {
			return Record{}, fmt.Errorf("convert %s: %w", obsType, err)
		}
		out.Values[obsType] = converted
	}
	return out, nil
}

// ConvertValue converts a single value between two named units
func (StdConverter) ConvertValue(v float64, fromUnit, toUnit, _ string) (float64, error) {
	return units.ConvertValue(v, fromUnit, toUnit)
}
