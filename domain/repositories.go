package domain

import (
	"context"
	"errors"
)

// ErrUserExists is returned when creating a user whose email is taken.
var ErrUserExists = errors.New("user with this email already exists")

// ErrUserNotFound is returned by credential lookups with no matching user.
var ErrUserNotFound = errors.New("user not found")

// SessionRepository is the session store contract consumed by the session
// manager and the cleanup job. The store is the source of truth; the cache
// only mirrors it.
type SessionRepository interface {
	// SaveSession upserts by (UserID, UserAgent, Device) and returns the
	// stored document. CreatedAt of an existing row is preserved.
	SaveSession(ctx context.Context, session *Session) (*Session, error)

	// FindSessionByUserDevice returns the session for the composite key,
	// or nil (and no error) when absent.
	FindSessionByUserDevice(ctx context.Context, userID, userAgent, device string) (*Session, error)

	// DeleteSession removes the session with the given identity and returns
	// the identity, or the empty string when nothing matched.
	DeleteSession(ctx context.Context, sessionIdentity string) (string, error)

	// CountUserSessions counts non-revoked, non-expired sessions for a user.
	CountUserSessions(ctx context.Context, userID string) (int64, error)

	// CountActiveSessions counts non-revoked, non-expired sessions across
	// all users; it feeds the active-session gauge.
	CountActiveSessions(ctx context.Context) (int64, error)

	// RevokeSession marks the session with the given identity as revoked.
	// Revoking an unknown identity is a no-op.
	RevokeSession(ctx context.Context, sessionIdentity string) error

	// RevokeUserSessions revokes every session of a user and returns the
	// number of sessions affected.
	RevokeUserSessions(ctx context.Context, userID string) (int64, error)

	// ListSessionsByUserID returns all session rows for a user, newest first.
	ListSessionsByUserID(ctx context.Context, userID string) ([]*Session, error)

	// CleanupExpiredSessions deletes every session past its expiry and
	// returns the number deleted.
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// UserRepository is the credential store contract.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}

// CatalogRepository backs the cached catalog read path.
type CatalogRepository interface {
	ListBooks(ctx context.Context, params ListParams) ([]*Book, error)
	GetBook(ctx context.Context, id string) (*Book, error)
	CreateBook(ctx context.Context, book *Book) error
	ListAuthors(ctx context.Context, params ListParams) ([]*Author, error)
	GetAuthor(ctx context.Context, id string) (*Author, error)
}
