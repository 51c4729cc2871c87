package domain

import (
	"time"

	"github.com/libris-app/libris/errors"
)

// Session is a persisted binding of a user to one device/user-agent
// combination. At most one non-revoked session exists per
// (UserID, UserAgent, Device) triple; the store enforces this via an
// upsert on that composite key.
type Session struct {
	ID string `bson:"_id,omitempty" json:"id,omitempty"`

	UserID    string `bson:"user_id" json:"userId"`
	UserAgent string `bson:"user_agent" json:"userAgent"`
	Device    string `bson:"device" json:"device"`

	// SessionIdentity is a fingerprint of the refresh token that currently
	// backs this session (its signature segment), never the token itself.
	// It changes on every rotation.
	SessionIdentity string `bson:"session_identity" json:"sessionIdentity"`

	IPAddress string `bson:"ip_address,omitempty" json:"ipAddress,omitempty"`
	Location  string `bson:"location,omitempty" json:"location,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	ExpiresAt time.Time `bson:"expires_at" json:"expiresAt"`

	Active    bool `bson:"active" json:"active"`
	IsRevoked bool `bson:"is_revoked" json:"isRevoked"`
}

// Live reports whether the session is usable at the given instant.
// A session past ExpiresAt is dead even if the cleanup job has not swept
// it yet.
func (s *Session) Live(now time.Time) bool {
	return !s.IsRevoked && now.Before(s.ExpiresAt)
}

// DeviceContext carries the client attributes a session is bound to.
// UserAgent and Device make up the session's composite key together with
// the user ID; IPAddress and Location are informational.
type DeviceContext struct {
	UserAgent string `json:"userAgent"`
	Device    string `json:"device"`
	IPAddress string `json:"ipAddress"`
	Location  string `json:"location,omitempty"`
}

// Validate checks the context shape before any store access.
func (c DeviceContext) Validate() error {
	verr := &errors.ValidationError{}
	if c.UserAgent == "" {
		verr.Add("required", "userAgent")
	}
	if c.Device == "" {
		verr.Add("required", "device")
	}
	if verr.Empty() {
		return nil
	}
	return verr
}
