package recurrence

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aleccorey/reminder-api/internal/model"
	"github.com/aleccorey/reminder-api/internal/timeutil"
)

// Form field names accepted on the submission boundary.  The input
// is a flat field -> value(s) mapping, exactly the shape of a form
// POST.
const (
	FieldTimezone   = "timezone"
	FieldStartDate  = "start_date"
	FieldStartTime  = "start_time"
	FieldMessage    = "message"
	FieldRoutine    = "routine"
	FieldCount      = "count"
	FieldEndDate    = "schedule_end_date"
	FieldEndTime    = "schedule_end_time"
	FieldDays       = "schedule_days"
	FieldHours      = "schedule_hours"
	FieldInterval   = "schedule_interval"
	FieldUnits      = "schedule_units"
	FieldWkSt       = "schedule_wkst"
	FieldRecipient  = "recipient"
	FieldReminderID = "reminder_id"
)

// maxMessageLength bounds the user-supplied message text.
const maxMessageLength = 1024

// requiredFields must all be present and non-blank on every
// submission, routine or not.
var requiredFields = []string{FieldTimezone, FieldStartDate, FieldStartTime, FieldMessage}

// CreateIntent is a request to create a new reminder owned by the
// authenticated caller.  Create and edit are explicit variants
// sharing one validation core rather than a single type branching on
// an optional reminder argument.
type CreateIntent struct {
	Form   url.Values
	Caller int64
}

// Normalize validates the submission and returns the canonical
// record to insert, or one of the package's three error kinds.  The
// now argument anchors "current UTC offset" calculations for the
// hour-list conversion.
func (in CreateIntent) Normalize(now time.Time) (*model.Reminder, error) {
	return normalize(in.Form, in.Caller, now)
}

// EditIntent is a request to replace an existing reminder's fields
// wholesale.  The target id comes from the request path, never from
// the form body; the repository scopes the update to
// (ReminderID, Caller) so an edit can only ever touch the caller's
// own row.
type EditIntent struct {
	Form       url.Values
	Caller     int64
	ReminderID int64
}

// Normalize validates the submission exactly like the create path;
// update semantics are full-record replacement, not a partial patch.
func (in EditIntent) Normalize(now time.Time) (*model.Reminder, error) {
	rem, err := normalize(in.Form, in.Caller, now)
	if err != nil {
		return nil, err
	}
	rem.ID = in.ReminderID
	return rem, nil
}

// normalize is the shared validation pipeline.  It either returns a
// fully-populated record or an error; no partially-built state is
// ever produced.
func normalize(form url.Values, caller int64, now time.Time) (*model.Reminder, error) {
	var missing []string
	for _, f := range requiredFields {
		if strings.TrimSpace(form.Get(f)) == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}

	zone := strings.TrimSpace(form.Get(FieldTimezone))
	dtstart, err := timeutil.LocalToUTC(form.Get(FieldStartDate), form.Get(FieldStartTime), zone)
	if err != nil {
		return nil, &InvalidTimeError{
			Field: FieldStartDate,
			Value: form.Get(FieldStartDate) + " " + form.Get(FieldStartTime) + " " + zone,
			Err:   err,
		}
	}

	// A submission may carry its recipient for display purposes,
	// but ownership cannot be forged: it must match the caller.
	if rcpt := strings.TrimSpace(form.Get(FieldRecipient)); rcpt != "" {
		id, err := strconv.ParseInt(rcpt, 10, 64)
		if err != nil || id != caller {
			return nil, ErrPermission
		}
	}

	message := form.Get(FieldMessage)
	if len(message) > maxMessageLength {
		return nil, &InvalidTimeError{Field: FieldMessage, Value: "(too long)"}
	}

	rem := &model.Reminder{
		Message:   message,
		Recipient: caller,
		Finished:  false,
		Timezone:  zone,
		DtStart:   dtstart,
		// One-shot encoding: a single immediately-evaluable
		// occurrence, so one-time and recurring reminders share
		// one evaluation model.
		Freq:     "MINUTELY",
		Interval: 1,
	}

	if !isTruthy(form.Get(FieldRoutine)) {
		return rem, nil
	}
	if err := normalizeRoutine(form, zone, now, rem); err != nil {
		return nil, err
	}
	return rem, nil
}

// normalizeRoutine fills in the recurrence fields for a routine
// submission.
func normalizeRoutine(form url.Values, zone string, now time.Time, rem *model.Reminder) error {
	var missing []string
	if strings.TrimSpace(form.Get(FieldInterval)) == "" {
		missing = append(missing, FieldInterval)
	}
	if strings.TrimSpace(form.Get(FieldUnits)) == "" {
		missing = append(missing, FieldUnits)
	}
	// An end date without an end time is unanswerable: the cutoff
	// would be ambiguous within the day.
	endDate := strings.TrimSpace(form.Get(FieldEndDate))
	if endDate != "" && strings.TrimSpace(form.Get(FieldEndTime)) == "" {
		missing = append(missing, FieldEndTime)
	}
	if len(missing) > 0 {
		return &MissingFieldError{Fields: missing}
	}

	interval, err := strconv.Atoi(strings.TrimSpace(form.Get(FieldInterval)))
	if err != nil || interval < 1 {
		return &InvalidTimeError{Field: FieldInterval, Value: form.Get(FieldInterval), Err: err}
	}
	freq, ok := canonicalFreq(form.Get(FieldUnits))
	if !ok {
		return &InvalidTimeError{Field: FieldUnits, Value: form.Get(FieldUnits)}
	}
	rem.Interval = interval
	rem.Freq = freq

	if raw := strings.TrimSpace(form.Get(FieldCount)); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil || count < 1 {
			return &InvalidTimeError{Field: FieldCount, Value: raw, Err: err}
		}
		rem.Count = &count
	}

	if endDate != "" {
		until, err := timeutil.LocalToUTC(endDate, form.Get(FieldEndTime), zone)
		if err != nil {
			return &InvalidTimeError{
				Field: FieldEndDate,
				Value: endDate + " " + form.Get(FieldEndTime),
				Err:   err,
			}
		}
		// Count and until cannot coexist in a recurrence rule;
		// until takes priority and count is cleared.
		rem.Until = &until
		rem.Count = nil
	}

	if days, err := parseIntFields(form[FieldDays], FieldDays); err != nil {
		return err
	} else if len(days) > 0 {
		rem.ByWeekday = FormatIntList(days)
	}

	if hours, err := parseIntFields(form[FieldHours], FieldHours); err != nil {
		return err
	} else if len(hours) > 0 {
		// Submitted hours are local wall-clock hours in the
		// submission timezone at this moment; recurrence
		// evaluation happens in UTC, so shift by the current
		// offset.  The shifted values may leave 0-23; consumers
		// take them modulo 24.
		offset, err := timeutil.OffsetHours(zone, now)
		if err != nil {
			return &InvalidTimeError{Field: FieldTimezone, Value: zone, Err: err}
		}
		utcHours := make([]int, len(hours))
		for i, h := range hours {
			if h < 0 || h > 23 {
				return &InvalidTimeError{Field: FieldHours, Value: strconv.Itoa(h)}
			}
			utcHours[i] = h - offset
		}
		rem.ByHour = FormatIntList(utcHours)
	}

	if raw := strings.TrimSpace(form.Get(FieldWkSt)); raw != "" {
		wkst, err := strconv.Atoi(raw)
		if err != nil || wkst < 0 || wkst > 6 {
			return &InvalidTimeError{Field: FieldWkSt, Value: raw, Err: err}
		}
		rem.WkSt = &wkst
	}
	return nil
}

// parseIntFields parses a multi-valued form field into integers.
// Blank entries are skipped; anything else that fails to parse is an
// invalid submission (unlike the tolerant storage-side ParseIntList,
// this is the write path and bad input must be reported).
func parseIntFields(raw []string, field string) ([]int, error) {
	var vals []int
	for _, tok := range raw {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, &InvalidTimeError{Field: field, Value: tok, Err: err}
		}
		vals = append(vals, n)
	}
	return vals, nil
}

// canonicalFreq maps a submitted schedule unit to the canonical
// frequency name.  Both the RFC 5545 names and the duration-style
// aliases the form historically sent are accepted.
func canonicalFreq(s string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SECONDLY", "SECONDS":
		return "SECONDLY", true
	case "MINUTELY", "MINUTES":
		return "MINUTELY", true
	case "HOURLY", "HOURS":
		return "HOURLY", true
	case "DAILY", "DAYS":
		return "DAILY", true
	case "WEEKLY", "WEEKS":
		return "WEEKLY", true
	case "MONTHLY", "MONTHS":
		return "MONTHLY", true
	case "YEARLY", "YEARS":
		return "YEARLY", true
	}
	return "", false
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
