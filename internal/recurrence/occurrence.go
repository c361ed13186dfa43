package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/aleccorey/reminder-api/internal/model"
)

// frequencies maps canonical names to rrule constants.
var frequencies = map[string]rrule.Frequency{
	"SECONDLY": rrule.SECONDLY,
	"MINUTELY": rrule.MINUTELY,
	"HOURLY":   rrule.HOURLY,
	"DAILY":    rrule.DAILY,
	"WEEKLY":   rrule.WEEKLY,
	"MONTHLY":  rrule.MONTHLY,
	"YEARLY":   rrule.YEARLY,
}

// weekdays maps the stored weekday indices (0=Monday .. 6=Sunday) to
// rrule weekdays.
var weekdays = []rrule.Weekday{
	rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU,
}

// NormalizeHours folds hour values into the canonical 0-23 range.
// Stored byhour values are shifted by a UTC offset at write time and
// can legitimately be negative or exceed 23; -1 means 23, 25 means
// 1.  Any consumer that evaluates a rule must apply this before use.
func NormalizeHours(hours []int) []int {
	if len(hours) == 0 {
		return nil
	}
	out := make([]int, len(hours))
	for i, h := range hours {
		out[i] = ((h % 24) + 24) % 24
	}
	return out
}

// Rule builds an evaluable RFC 5545 recurrence rule from a stored
// record.  All evaluation happens in UTC; the byhour list is
// normalized modulo 24 here, per the storage contract.  Weekday
// indices outside 0-6 in stored data are skipped rather than
// rejected, matching the tolerant read path.
func Rule(rem *model.Reminder) (*rrule.RRule, error) {
	freq, ok := frequencies[rem.Freq]
	if !ok {
		return nil, fmt.Errorf("unknown frequency %q", rem.Freq)
	}
	opt := rrule.ROption{
		Freq:     freq,
		Interval: rem.Interval,
		Dtstart:  rem.DtStart.UTC(),
	}
	if rem.Count != nil {
		opt.Count = *rem.Count
	}
	if rem.Until != nil {
		opt.Until = rem.Until.UTC()
	}
	for _, d := range ParseIntList(rem.ByWeekday) {
		if d >= 0 && d < len(weekdays) {
			opt.Byweekday = append(opt.Byweekday, weekdays[d])
		}
	}
	opt.Byhour = NormalizeHours(ParseIntList(rem.ByHour))
	opt.Byminute = ParseIntList(rem.ByMinute)
	opt.Bysecond = ParseIntList(rem.BySecond)
	opt.Bymonth = ParseIntList(rem.ByMonth)
	opt.Bymonthday = ParseIntList(rem.ByMonthDay)
	opt.Byyearday = ParseIntList(rem.ByYearDay)
	opt.Byweekno = ParseIntList(rem.ByWeekNo)
	opt.Bysetpos = ParseIntList(rem.BySetPos)
	if rem.WkSt != nil && *rem.WkSt >= 0 && *rem.WkSt < len(weekdays) {
		opt.Wkst = weekdays[*rem.WkSt]
	}
	return rrule.NewRRule(opt)
}

// NextAfter returns the first occurrence strictly after the given
// instant, in UTC.  The second return is false when the schedule is
// exhausted or the stored rule cannot be evaluated.
func NextAfter(rem *model.Reminder, after time.Time) (time.Time, bool) {
	rule, err := Rule(rem)
	if err != nil {
		return time.Time{}, false
	}
	next := rule.After(after.UTC(), false)
	if next.IsZero() {
		return time.Time{}, false
	}
	return next.UTC(), true
}
