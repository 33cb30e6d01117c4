// Package augment enriches an observation record with derived rain totals
// computed from the archive before the record is formatted for a
// destination.
package augment

import (
	"context"
	"fmt"
	"time"

	"github.com/pmcgeorge/weewx/archive"
	werrors "github.com/pmcgeorge/weewx/errors"
	"github.com/pmcgeorge/weewx/record"
)

// Derived observation types filled in from the archive
const (
	ObsHourRain = "hourRain"
	ObsRain24   = "rain24"
	ObsDayRain  = "dayRain"
)

// Augmenter computes derived rain totals via aggregate queries. The zero
// value uses the local time zone for the start-of-day boundary.
type Augmenter struct {
	// Location resolves the start-of-day boundary for dayRain. Nil means
	// time.Local.
	Location *time.Location
}

// window describes one derived total: the query window relative to the
// record time and the bound inclusivity.
type window struct {
	obsType       string
	fromInclusive bool
}

// Augment returns a copy of rec with hourRain, rain24 and dayRain filled
// in when absent. Each total comes from one aggregate query; a query whose
// matched rows span unit systems, or disagree with the record's own unit
// system, fails with ErrInconsistentUnits. A record that already carries
// all three totals makes no queries at all.
func (a Augmenter) Augment(ctx context.Context, rec record.Record, arch archive.Archive) (record.Record, error) {
	out := rec.Copy()
	if arch == nil {
		return out, nil
	}

	ts := rec.Timestamp

	// Rain in the past hour and past 24 hours: exclusive on the left so
	// the archive row at exactly t-3600 (or t-86400) is not counted twice.
	if err := a.fill(ctx, out, arch, ObsHourRain, ts-3600, ts, false); err != nil {
		return record.Record{}, err
	}
	if err := a.fill(ctx, out, arch, ObsRain24, ts-86400, ts, false); err != nil {
		return record.Record{}, err
	}

	// Day-to-date rain. The midnight row is attributed to the current day
	// because the Ambient providers count it that way, so this window is
	// inclusive on both ends.
	if err := a.fill(ctx, out, arch, ObsDayRain, a.startOfDay(ts), ts, true); err != nil {
		return record.Record{}, err
	}

	return out, nil
}

func (a Augmenter) fill(ctx context.Context, out record.Record, arch archive.Archive,
	obsType string, fromTS, toTS int64, fromInclusive bool) error {

	if out.Has(obsType) {
		return nil
	}

	agg, err := arch.AggregateRain(ctx, fromTS, toTS, fromInclusive, true)
	if err != nil {
		return werrors.WrapTransient(err, "augment", "Augment", obsType+" query")
	}
	if !agg.Consistent(int(out.Units)) {
		return werrors.WrapInvalid(
			fmt.Errorf("%w: archive units %d..%d vs record %d",
				werrors.ErrInconsistentUnits, agg.MinUnits, agg.MaxUnits, int(out.Units)),
			"augment", "Augment", obsType+" query")
	}
	if agg.Sum != nil {
		out.Set(obsType, *agg.Sum)
	}
	return nil
}

func (a Augmenter) startOfDay(ts int64) int64 {
	loc := a.Location
	if loc == nil {
		loc = time.Local
	}
	t := time.Unix(ts, 0).In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).Unix()
}
