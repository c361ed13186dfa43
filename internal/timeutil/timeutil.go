// Package timeutil converts wall-clock date/time strings between a
// user's IANA timezone and the naive-UTC representation used for
// storage.  The functions here are pure and safe for concurrent use;
// they touch no shared state and do no I/O beyond the process's
// zoneinfo database.
package timeutil

import (
	"fmt"
	"time"
)

// Wire formats for the form's split date and time fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// LocalToUTC combines a "YYYY-MM-DD" date and an "HH:MM" clock time,
// interprets them as wall-clock time in the named zone, and returns
// the equivalent instant in UTC.  Unparseable strings or an unknown
// zone name yield an error.
func LocalToUTC(date, clock, zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("unknown timezone %q: %w", zone, err)
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse local time %q %q: %w", date, clock, err)
	}
	return t.UTC(), nil
}

// UTCToLocal renders a stored UTC instant as separate date and time
// strings in the first resolvable zone out of primary, fallback and
// UTC, in that order.  A blank or unknown zone name falls through to
// the next candidate, so the conversion never fails.
func UTCToLocal(t time.Time, primary, fallback string) (string, string) {
	loc := time.UTC
	for _, zone := range []string{primary, fallback} {
		if zone == "" {
			continue
		}
		if l, err := time.LoadLocation(zone); err == nil {
			loc = l
			break
		}
	}
	local := t.UTC().In(loc)
	return local.Format(DateLayout), local.Format(TimeLayout)
}

// OffsetHours returns the named zone's UTC offset in whole hours at
// the given instant, truncated toward zero (a +05:30 zone reports
// +5).  The offset is instant-dependent across DST transitions, so
// callers must recompute it per relevant instant rather than cache
// it.
func OffsetHours(zone string, at time.Time) (int, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return 0, fmt.Errorf("unknown timezone %q: %w", zone, err)
	}
	_, offset := at.In(loc).Zone()
	return offset / 3600, nil
}
