package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/aleccorey/reminder-api/internal/model"
)

// UserRepo persists Discord user records.  Users are keyed by the
// Discord snowflake id the OAuth identity endpoint reports; there is
// no locally chosen identifier and no credential storage.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = "id, username, discriminator, tag, avatar, locale, mfa_enabled, " +
	"public_flags, flags, setup_flags, in_setup, message_preference, preferred_timezone, " +
	"last_login, created_at, updated_at"

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Discriminator, &u.Tag, &u.Avatar, &u.Locale,
		&u.MFAEnabled, &u.PublicFlags, &u.Flags, &u.SetupFlags, &u.InSetup,
		&u.MessagePreference, &u.PreferredTimezone, &u.LastLogin,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user by Discord id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const q = "SELECT " + userColumns + " FROM users WHERE id = ? LIMIT 1"
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// Upsert records a successful login for the identity described by u.
// A known id has its profile fields and last_login refreshed; an
// unknown id is created in the initial onboarding state, unless
// allowCreate is false, in which case authentication of unseen
// accounts fails with ErrRegistrationClosed instead of
// auto-creating.  The stored record is returned either way.
func (r *UserRepo) Upsert(ctx context.Context, u *model.User, allowCreate bool) (*model.User, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = ?, discriminator = ?, tag = ?, avatar = ?, locale = ?,
			mfa_enabled = ?, public_flags = ?, flags = ?, last_login = ?
		 WHERE id = ?`,
		u.Username, u.Discriminator, u.Tag, u.Avatar, u.Locale,
		u.MFAEnabled, u.PublicFlags, u.Flags, now, u.ID)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// RowsAffected is zero both for a missing row and for an
		// update that changed nothing, so confirm absence before
		// inserting.
		existing, err := r.GetByID(ctx, u.ID)
		if err == nil {
			return existing, nil
		}
		if err != sql.ErrNoRows {
			return nil, err
		}
		if !allowCreate {
			return nil, ErrRegistrationClosed
		}
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO users (id, username, discriminator, tag, avatar, locale,
				mfa_enabled, public_flags, flags, setup_flags, in_setup, last_login)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Username, u.Discriminator, u.Tag, u.Avatar, u.Locale,
			u.MFAEnabled, u.PublicFlags, u.Flags, model.SetupNew, true, now)
		if err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, u.ID)
}

// AdvanceSetup moves a user's onboarding state from the expected
// current step to the next one.  The compare-and-set WHERE clause
// makes out-of-order or concurrent transitions fail with
// ErrSetupState rather than skipping steps.  Reaching the final
// step clears in_setup and unlocks reminder features.
func (r *UserRepo) AdvanceSetup(ctx context.Context, id int64, from, to int) error {
	inSetup := to < model.SetupTested
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET setup_flags = ?, in_setup = ? WHERE id = ? AND setup_flags = ?",
		to, inSetup, id, from)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSetupState
	}
	return nil
}

// SetMessagePreference records the delivery preference chosen during
// onboarding.
func (r *UserRepo) SetMessagePreference(ctx context.Context, id int64, pref string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET message_preference = ? WHERE id = ?", pref, id)
	return err
}

// SetPreferredTimezone remembers the zone the user last submitted a
// reminder in; display paths use it as the primary rendering zone.
func (r *UserRepo) SetPreferredTimezone(ctx context.Context, id int64, zone string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET preferred_timezone = ? WHERE id = ?", zone, id)
	return err
}

// Delete removes the user record.  Callers delete the user's
// reminders first (ReminderRepo.DeleteAllForOwner) so no orphaned
// rows survive the forget-me flow.
func (r *UserRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
