// Package queue defines message payloads exchanged with the Discord
// bot over the message broker.  The bot consumes these events to act
// inside Discord; the API never talks to Discord gateways directly.
package queue

// ChannelProvisionRequested is published when a user who prefers
// channel delivery finishes the preference step of onboarding.  The
// bot creates a private reminder channel for the user in response.
type ChannelProvisionRequested struct {
	UserID      int64  `json:"user_id"`
	Tag         string `json:"tag"`
	RequestedAt string `json:"requested_at"`
}

// SetupTestRequested is published when a user asks for a test
// delivery during onboarding.  The bot sends a throwaway message via
// the user's chosen preference so they can confirm delivery works.
type SetupTestRequested struct {
	UserID      int64  `json:"user_id"`
	Tag         string `json:"tag"`
	Preference  string `json:"preference"`
	RequestedAt string `json:"requested_at"`
}
