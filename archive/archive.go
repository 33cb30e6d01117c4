// Package archive exposes the narrow aggregate-query surface the upload
// pipeline needs from the historical-data store, plus a SQL-backed adapter.
package archive

import "context"

// RainAggregate is the result of an aggregate rain query: the summed rain
// over the window plus the minimum and maximum unit-system code across the
// matched rows. Sum is nil when no row matched or all matched rain values
// were NULL.
type RainAggregate struct {
	Sum      *float64
	MinUnits int
	MaxUnits int
	Rows     int
}

// Consistent reports whether every matched row used the given unit system
func (a RainAggregate) Consistent(system int) bool {
	if a.Rows == 0 {
		return true
	}
	return a.MinUnits == a.MaxUnits && a.MinUnits == system
}

// Archive answers aggregate rain-sum queries over a time window. The window
// bounds are epoch seconds; each bound is inclusive or exclusive per its
// flag.
type Archive interface {
	AggregateRain(ctx context.Context, fromTS, toTS int64, fromInclusive, toInclusive bool) (RainAggregate, error)
}
