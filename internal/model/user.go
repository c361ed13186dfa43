package model

import "time"

// Onboarding milestones recorded in users.setup_flags.  A new user
// starts at SetupNew and advances one step at a time until
// SetupTested, at which point InSetup is cleared and reminder
// features unlock.
const (
	SetupNew        = 0 // account created, nothing configured
	SetupJoined     = 1 // joined the delivery guild
	SetupPreference = 2 // chose a message delivery preference
	SetupTested     = 3 // test message confirmed working
)

// User represents a logged-in Discord account as stored in the
// `users` table.  The primary key is the Discord snowflake id
// supplied by the OAuth identity endpoint; there are no local
// credentials.  PreferredTimezone records the zone the user last
// submitted a reminder form in and is used to localize display
// fields, falling back to each reminder's own stored zone.
//
// Fields:
//  ID                – Discord user id (snowflake), primary key.
//  Username          – Discord username.
//  Discriminator     – legacy four-digit discriminator ("0" on new accounts).
//  Tag               – username#discriminator convenience rendering.
//  Avatar            – avatar hash from the identity payload.
//  Locale            – locale reported by Discord.
//  MFAEnabled        – whether the account has MFA enabled.
//  PublicFlags       – public flag bits from the identity payload.
//  Flags             – flag bits from the identity payload.
//  SetupFlags        – onboarding milestone (SetupNew .. SetupTested).
//  InSetup           – true while SetupFlags < SetupTested; gates
//                      access to reminder endpoints.
//  MessagePreference – delivery preference chosen during onboarding
//                      (e.g. "dm" or "channel"); "" until chosen.
//  PreferredTimezone – zone most recently submitted by the user; may be "".
//  LastLogin         – last successful OAuth login.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type User struct {
	ID                int64     // users.id
	Username          string    // users.username
	Discriminator     string    // users.discriminator
	Tag               string    // users.tag
	Avatar            string    // users.avatar
	Locale            string    // users.locale
	MFAEnabled        bool      // users.mfa_enabled
	PublicFlags       int       // users.public_flags
	Flags             int       // users.flags
	SetupFlags        int       // users.setup_flags
	InSetup           bool      // users.in_setup
	MessagePreference string    // users.message_preference
	PreferredTimezone string    // users.preferred_timezone
	LastLogin         time.Time // users.last_login
	CreatedAt         time.Time // users.created_at
	UpdatedAt         time.Time // users.updated_at
}
