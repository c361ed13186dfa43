package recurrence

import (
	"net/url"
	"strconv"
	"time"

	"github.com/aleccorey/reminder-api/internal/model"
	"github.com/aleccorey/reminder-api/internal/timeutil"
)

// FormValues is the inverse of the creation path: it reconstructs
// form-ready field values from a stored record so an edit form can
// be pre-filled.  The record is rendered in the first resolvable
// zone out of the caller's preferred timezone and the reminder's own
// stored timezone, and the timezone field is set to that same zone,
// so resubmitting the values unedited reproduces the stored record
// (dtstart, freq, interval, byweekday and byhour modulo 24 are all
// preserved).
func FormValues(rem *model.Reminder, preferredTZ string, now time.Time) url.Values {
	zone := displayZone(preferredTZ, rem.Timezone)
	date, clock := timeutil.UTCToLocal(rem.DtStart, zone, "")

	form := url.Values{}
	form.Set(FieldTimezone, zone)
	form.Set(FieldStartDate, date)
	form.Set(FieldStartTime, clock)
	form.Set(FieldMessage, rem.Message)
	form.Set(FieldRecipient, strconv.FormatInt(rem.Recipient, 10))
	form.Set(FieldReminderID, strconv.FormatInt(rem.ID, 10))

	if !rem.Routine() {
		return form
	}

	form.Set(FieldRoutine, "on")
	form.Set(FieldInterval, strconv.Itoa(rem.Interval))
	form.Set(FieldUnits, rem.Freq)

	if rem.Count != nil {
		form.Set(FieldCount, strconv.Itoa(*rem.Count))
	}
	if rem.Until != nil {
		endDate, endClock := timeutil.UTCToLocal(*rem.Until, zone, "")
		form.Set(FieldEndDate, endDate)
		form.Set(FieldEndTime, endClock)
	}

	// Weekday indices are zone-independent and pass through as-is.
	for _, d := range ParseIntList(rem.ByWeekday) {
		form.Add(FieldDays, strconv.Itoa(d))
	}

	// Stored hours are UTC-based and possibly outside 0-23; shift
	// back to local by the zone's current offset and normalize so
	// the form shows canonical clock hours.
	if stored := ParseIntList(rem.ByHour); len(stored) > 0 {
		offset, err := timeutil.OffsetHours(zone, now)
		if err == nil {
			local := make([]int, len(stored))
			for i, h := range stored {
				local[i] = h + offset
			}
			for _, h := range NormalizeHours(local) {
				form.Add(FieldHours, strconv.Itoa(h))
			}
		}
	}

	if rem.WkSt != nil {
		form.Set(FieldWkSt, strconv.Itoa(*rem.WkSt))
	}
	return form
}

// displayZone resolves which zone a record is rendered in: the
// caller's preference when it names a real zone, otherwise the
// reminder's stored zone, otherwise UTC.
func displayZone(preferred, stored string) string {
	for _, zone := range []string{preferred, stored} {
		if zone == "" {
			continue
		}
		if _, err := time.LoadLocation(zone); err == nil {
			return zone
		}
	}
	return "UTC"
}
