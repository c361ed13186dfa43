package model

import "time"

// Reminder is the canonical, fully validated reminder record as
// stored in the `reminders` table.  All instants (DtStart, Until)
// are stored in UTC; the Timezone column only records which IANA
// zone the user's local-facing fields were entered in, so the
// record can be rendered back into local form.  The recurrence
// columns follow the RFC 5545 recurrence-rule vocabulary.  A
// one-shot reminder is encoded as freq=MINUTELY interval=1 with no
// count or until, keeping one-time and recurring reminders on a
// single evaluation model.
//
// Fields:
//  ID         – primary key identifier.
//  Message    – text delivered to the recipient (max 1024 chars).
//  Recipient  – Discord user id of the owner/receiver.
//  Finished   – true once the schedule is exhausted or a one-shot fired.
//  Timezone   – IANA zone name the local fields were entered in.
//  DtStart    – first occurrence instant, UTC.
//  Freq       – recurrence granularity (SECONDLY .. YEARLY).
//  Interval   – occurrences happen every Interval units of Freq (>= 1).
//  Count      – optional cap on total occurrences (nil when unset).
//  Until      – optional UTC cutoff instant (nil when unset).
//  ByWeekday  – textual integer list, e.g. "[0, 2, 4]"; "" when unset.
//  ByHour     – textual integer list of UTC hours; values may leave
//               0–23 and are taken modulo 24 by consumers.
//  ByMinute, BySecond, ByMonth, ByMonthDay, ByYearDay, ByWeekNo,
//  BySetPos   – further constraint lists, same encoding.
//  WkSt       – optional week-start day for weekly calculations.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
//
// Exactly one of Count/Until may be set; when a submission carries
// both, Until wins and Count is cleared.
type Reminder struct {
	ID         int64      // reminders.id
	Message    string     // reminders.message
	Recipient  int64      // reminders.recipient
	Finished   bool       // reminders.finished
	Timezone   string     // reminders.timezone
	DtStart    time.Time  // reminders.dtstart (UTC)
	Freq       string     // reminders.freq
	Interval   int        // reminders.interval
	Count      *int       // reminders.count (nullable)
	Until      *time.Time // reminders.until (nullable, UTC)
	ByWeekday  string     // reminders.byweekday
	ByHour     string     // reminders.byhour
	ByMinute   string     // reminders.byminute
	BySecond   string     // reminders.bysecond
	ByMonth    string     // reminders.bymonth
	ByMonthDay string     // reminders.bymonthday
	ByYearDay  string     // reminders.byyearday
	ByWeekNo   string     // reminders.byweekno
	BySetPos   string     // reminders.bysetpos
	WkSt       *int       // reminders.wkst (nullable)
	CreatedAt  time.Time  // reminders.created_at
	UpdatedAt  time.Time  // reminders.updated_at
}

// Routine reports whether the record describes a recurring schedule
// rather than the one-shot encoding.
func (r *Reminder) Routine() bool {
	return !(r.Freq == "MINUTELY" && r.Interval == 1 &&
		r.Count == nil && r.Until == nil &&
		r.ByWeekday == "" && r.ByHour == "")
}
