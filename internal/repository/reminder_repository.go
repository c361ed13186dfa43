package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/aleccorey/reminder-api/internal/model"
)

// ReminderRepo provides CRUD operations for reminder records.  All
// mutating operations except MarkFinished are scoped by the owning
// recipient: the WHERE clause carries both the id and the owner, so
// a caller can never affect another user's rows and a zero
// affected-row count doubles as the ownership check.  All instants
// are stored and read as UTC (the connection DSN pins loc=UTC).
type ReminderRepo struct {
	db *sql.DB
}

// NewReminderRepo returns a ReminderRepo bound to the given database.
func NewReminderRepo(db *sql.DB) *ReminderRepo { return &ReminderRepo{db: db} }

// reminderColumns is the canonical column list shared by every
// SELECT so scans stay in one shape.
const reminderColumns = "id, message, recipient, finished, timezone, dtstart, freq, " +
	"`interval`, count, until, byweekday, byhour, byminute, bysecond, bymonth, " +
	"bymonthday, byyearday, byweekno, bysetpos, wkst, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (*model.Reminder, error) {
	var (
		rem   model.Reminder
		count sql.NullInt64
		until sql.NullTime
		wkst  sql.NullInt64
	)
	err := row.Scan(
		&rem.ID, &rem.Message, &rem.Recipient, &rem.Finished, &rem.Timezone,
		&rem.DtStart, &rem.Freq, &rem.Interval, &count, &until,
		&rem.ByWeekday, &rem.ByHour, &rem.ByMinute, &rem.BySecond, &rem.ByMonth,
		&rem.ByMonthDay, &rem.ByYearDay, &rem.ByWeekNo, &rem.BySetPos, &wkst,
		&rem.CreatedAt, &rem.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if count.Valid {
		c := int(count.Int64)
		rem.Count = &c
	}
	if until.Valid {
		u := until.Time.UTC()
		rem.Until = &u
	}
	if wkst.Valid {
		w := int(wkst.Int64)
		rem.WkSt = &w
	}
	rem.DtStart = rem.DtStart.UTC()
	return &rem, nil
}

// Get returns a single reminder scoped to its owner.  A miss on the
// (id, owner) pair returns ErrForbidden whether the row is absent or
// owned by someone else.
func (r *ReminderRepo) Get(ctx context.Context, id, owner int64) (*model.Reminder, error) {
	const q = "SELECT " + reminderColumns + " FROM reminders WHERE id = ? AND recipient = ?"
	rem, err := scanReminder(r.db.QueryRowContext(ctx, q, id, owner))
	if err == sql.ErrNoRows {
		return nil, ErrForbidden
	}
	return rem, err
}

// Create inserts a new reminder and populates the generated id on
// the provided record.
func (r *ReminderRepo) Create(ctx context.Context, rem *model.Reminder) error {
	const q = `INSERT INTO reminders
		(message, recipient, finished, timezone, dtstart, freq, ` + "`interval`" + `, count, until,
		 byweekday, byhour, byminute, bysecond, bymonth, bymonthday, byyearday, byweekno, bysetpos, wkst)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		rem.Message, rem.Recipient, rem.Finished, rem.Timezone, rem.DtStart.UTC(),
		rem.Freq, rem.Interval, nullableInt(rem.Count), nullableTime(rem.Until),
		rem.ByWeekday, rem.ByHour, rem.ByMinute, rem.BySecond, rem.ByMonth,
		rem.ByMonthDay, rem.ByYearDay, rem.ByWeekNo, rem.BySetPos, nullableInt(rem.WkSt),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rem.ID = id
	return nil
}

// UpdateScoped replaces every mutable field of the reminder
// identified by (rem.ID, owner).  It returns the number of affected
// rows; zero means the target does not exist or is not owned by the
// caller, and the two cases are deliberately indistinguishable.
func (r *ReminderRepo) UpdateScoped(ctx context.Context, owner int64, rem *model.Reminder) (int64, error) {
	const q = `UPDATE reminders SET
		message = ?, finished = ?, timezone = ?, dtstart = ?, freq = ?, ` + "`interval`" + ` = ?,
		count = ?, until = ?, byweekday = ?, byhour = ?, byminute = ?, bysecond = ?,
		bymonth = ?, bymonthday = ?, byyearday = ?, byweekno = ?, bysetpos = ?, wkst = ?
		WHERE id = ? AND recipient = ?`
	res, err := r.db.ExecContext(ctx, q,
		rem.Message, rem.Finished, rem.Timezone, rem.DtStart.UTC(), rem.Freq, rem.Interval,
		nullableInt(rem.Count), nullableTime(rem.Until),
		rem.ByWeekday, rem.ByHour, rem.ByMinute, rem.BySecond, rem.ByMonth,
		rem.ByMonthDay, rem.ByYearDay, rem.ByWeekNo, rem.BySetPos, nullableInt(rem.WkSt),
		rem.ID, owner,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteScoped removes the reminder identified by (id, owner) and
// returns the affected-row count, with the same zero-row semantics
// as UpdateScoped.
func (r *ReminderRepo) DeleteScoped(ctx context.Context, id, owner int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM reminders WHERE id = ? AND recipient = ?", id, owner)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListForOwner returns every reminder belonging to the owner,
// soonest dtstart first.  An owner with no reminders gets an empty
// slice.
func (r *ReminderRepo) ListForOwner(ctx context.Context, owner int64) ([]*model.Reminder, error) {
	const q = "SELECT " + reminderColumns + " FROM reminders WHERE recipient = ? ORDER BY dtstart ASC, id ASC"
	rows, err := r.db.QueryContext(ctx, q, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := make([]*model.Reminder, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reminders, nil
}

// DeleteAllForOwner removes every reminder the owner has.  Used by
// the forget-me flow before the user record itself is deleted.
func (r *ReminderRepo) DeleteAllForOwner(ctx context.Context, owner int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reminders WHERE recipient = ?", owner)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListUnfinished returns all reminders whose schedule has not been
// exhausted.  The delivery backend filters these by next occurrence;
// the repository does not interpret recurrence rules.
func (r *ReminderRepo) ListUnfinished(ctx context.Context) ([]*model.Reminder, error) {
	const q = "SELECT " + reminderColumns + " FROM reminders WHERE finished = FALSE ORDER BY dtstart ASC, id ASC"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := make([]*model.Reminder, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reminders, nil
}

// MarkFinished flags a reminder as exhausted.  This is invoked by
// the delivery backend's service identity, not by end users, so it
// is intentionally unscoped.
func (r *ReminderRepo) MarkFinished(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE reminders SET finished = TRUE WHERE id = ? AND finished = FALSE", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC()
}
