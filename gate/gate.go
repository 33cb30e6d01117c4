// Package gate decides whether an observation record is eligible to post
// to a destination at all: records that are too old are dropped, and posts
// closer together than the destination's minimum interval are dropped.
package gate

import "fmt"

// SkipReason explains why a record was not posted
type SkipReason int

const (
	// None means the record is eligible to post
	None SkipReason = iota
	// Stale means the record is older than the destination allows
	Stale
	// TooFrequent means the minimum post interval has not passed
	TooFrequent
)

// String returns a short label for the reason
func (r SkipReason) String() string {
	switch r {
	case None:
		return "none"
	case Stale:
		return "stale"
	case TooFrequent:
		return "too_frequent"
	default:
		return fmt.Sprintf("SkipReason(%d)", int(r))
	}
}

// Params holds a destination's gating thresholds. A nil threshold disables
// that check.
type Params struct {
	StaleSeconds       *int64 // maximum record age at posting time
	MinIntervalSeconds *int64 // minimum spacing between posts
}

// ShouldSkip decides whether a record should be skipped. recordTS and now
// are epoch seconds; lastPostTS is the time of the destination's last
// attempted post, zero if none has happened. ShouldSkip has no side
// effects; the caller owns lastPostTS.
func ShouldSkip(recordTS, now int64, p Params, lastPostTS int64) SkipReason {
	if p.StaleSeconds != nil && now-recordTS > *p.StaleSeconds {
		return Stale
	}
	if lastPostTS != 0 && p.MinIntervalSeconds != nil && recordTS-lastPostTS < *p.MinIntervalSeconds {
		return TooFrequent
	}
	return None
}
