// Package record defines the observation record consumed by the upload
// pipeline and the unit-conversion seam used when a destination requires a
// fixed unit system.
package record

import (
	"sort"

	"github.com/pmcgeorge/weewx/units"
)

// Record is one weather observation: a mapping from observation-type name
// to numeric value, stamped with the observation time and the unit system
// the values are expressed in.
//
// Records handed to the pipeline are treated as immutable; augmentation
// works on a copy.
type Record struct {
	Timestamp int64        // epoch seconds
	Units     units.System // unit system of all Values
	Values    map[string]float64
}

// New creates an empty record for the given time and unit system
func New(timestamp int64, system units.System) Record {
	return Record{
		Timestamp: timestamp,
		Units:     system,
		Values:    make(map[string]float64),
	}
}

// Get returns the value for an observation type and whether it is present
func (r Record) Get(obsType string) (float64, bool) {
	v, ok := r.Values[obsType]
	return v, ok
}

// Has reports whether an observation type is present
func (r Record) Has(obsType string) bool {
	_, ok := r.Values[obsType]
	return ok
}

// Set stores a value for an observation type
func (r Record) Set(obsType string, v float64) {
	r.Values[obsType] = v
}

// Copy returns a deep copy of the record
func (r Record) Copy() Record {
	values := make(map[string]float64, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return Record{
		Timestamp: r.Timestamp,
		Units:     r.Units,
		Values:    values,
	}
}

// ObsTypes returns the present observation types in sorted order
func (r Record) ObsTypes() []string {
	keys := make([]string, 0, len(r.Values))
	for k := range r.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
