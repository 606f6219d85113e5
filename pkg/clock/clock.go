// Package clock provides timezone-safe time access for the retention engine.
//
// All instants handed out or parsed by this package are normalized to UTC so
// that age arithmetic is immune to daylight-saving transitions and local
// wall-clock skew. Parsing is deliberately lenient: memory snapshots arrive
// with heterogeneous ISO-8601 encodings (Z-suffixed, explicit offsets, and
// offset-naive strings written by older producers), and a timestamp the
// parser cannot make sense of must degrade rather than fail.
package clock

import (
	"strings"
	"time"
)

// Clock supplies the engine's notion of "now". Implementations must return
// UTC instants.
type Clock interface {
	Now() time.Time
}

// System is the production clock backed by the OS.
type System struct{}

// Now returns the current time in UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a clock pinned to a single instant, for tests.
type Fixed struct {
	t time.Time
}

// At creates a Fixed clock pinned to t.
func At(t time.Time) Fixed {
	return Fixed{t: t.UTC()}
}

// Now returns the pinned instant.
func (f Fixed) Now() time.Time {
	return f.t
}

// layouts are tried in order by Parse. Offset-naive layouts parse in UTC
// because time.Parse defaults to UTC when the layout carries no zone.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parse converts an ISO-8601 timestamp into a UTC instant. It accepts
// Z-suffixed strings, explicit numeric offsets, and offset-naive strings
// (treated as UTC). It never returns an error: a malformed or empty input
// yields (time.Time{}, false), which callers treat as maximally stale so
// corrupt records bias toward eviction instead of being protected forever.
func Parse(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

// Age returns how long ago t was relative to now, clamped to zero. Future
// timestamps (clock skew between producers) never yield a negative age, and
// the zero time yields an age spanning the whole epoch, i.e. maximally stale.
func Age(now, t time.Time) time.Duration {
	d := now.Sub(t)
	if d < 0 {
		return 0
	}
	return d
}

// AgeDays returns Age expressed in fractional days.
func AgeDays(now, t time.Time) float64 {
	return Age(now, t).Hours() / 24
}
