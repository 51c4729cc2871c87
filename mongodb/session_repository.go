package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/libris-app/libris/domain"
)

// SessionRepository implements domain.SessionRepository using MongoDB.
// The (user_id, user_agent, device) uniqueness invariant lives entirely in
// the store: SaveSession is an atomic upsert on a unique compound index
// over that triple, so concurrent logins for the same device resolve to
// last-write-wins without in-process locking.
type SessionRepository struct {
	collection *mongo.Collection
}

// NewSessionRepository creates a SessionRepository and ensures its indexes.
func NewSessionRepository(ctx context.Context, db *mongo.Database) (domain.SessionRepository, error) {
	repo := &SessionRepository{
		collection: db.Collection(SessionsCollection),
	}

	indexModels := []mongo.IndexModel{
		{
			// One non-revoked session per (user, user-agent, device).
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "user_agent", Value: 1},
				{Key: "device", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_revoked": false}),
		},
		{
			Keys:    bson.D{{Key: "session_identity", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			// Plain index, not a TTL index: expiry deletion is owned by the
			// cleanup job so it can be metered and reported.
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := repo.collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Warn().Err(err).Msg("Issue creating indexes for user_sessions collection (might already exist)")
	} else {
		log.Info().Msg("Indexes for user_sessions collection ensured.")
	}

	return repo, nil
}

// SaveSession upserts by (user_id, user_agent, device) and returns the
// stored document. CreatedAt of an existing row is preserved; ExpiresAt is
// always refreshed by the caller before the write.
func (r *SessionRepository) SaveSession(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	filter := bson.M{
		"user_id":    session.UserID,
		"user_agent": session.UserAgent,
		"device":     session.Device,
	}
	createdAt := session.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	update := bson.M{
		"$set": bson.M{
			"session_identity": session.SessionIdentity,
			"ip_address":       session.IPAddress,
			"location":         session.Location,
			"expires_at":       session.ExpiresAt,
			"active":           true,
			"is_revoked":       false,
		},
		"$setOnInsert": bson.M{
			"_id":        NewObjectID(),
			"created_at": createdAt,
		},
	}

	if _, err := r.collection.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true)); err != nil {
		log.Error().Err(err).Str("userID", session.UserID).Msg("Error upserting session in MongoDB")
		return nil, err
	}

	// Read back so callers (and the write-through cache) hold the stored
	// document, including the surrogate ID and preserved CreatedAt.
	return r.FindSessionByUserDevice(ctx, session.UserID, session.UserAgent, session.Device)
}

// FindSessionByUserDevice returns the session for the composite key, or
// nil when absent.
func (r *SessionRepository) FindSessionByUserDevice(ctx context.Context, userID, userAgent, device string) (*domain.Session, error) {
	filter := bson.M{
		"user_id":    userID,
		"user_agent": userAgent,
		"device":     device,
		"is_revoked": false,
	}
	var session domain.Session
	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		log.Error().Err(err).Str("userID", userID).Msg("Error finding session by user/device in MongoDB")
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes the session with the given identity. Returns the
// identity, or the empty string when nothing matched.
func (r *SessionRepository) DeleteSession(ctx context.Context, sessionIdentity string) (string, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"session_identity": sessionIdentity})
	if err != nil {
		log.Error().Err(err).Msg("Error deleting session from MongoDB")
		return "", err
	}
	if result.DeletedCount == 0 {
		return "", nil
	}
	return sessionIdentity, nil
}

// CountUserSessions counts non-revoked, non-expired sessions for a user.
func (r *SessionRepository) CountUserSessions(ctx context.Context, userID string) (int64, error) {
	filter := bson.M{
		"user_id":    userID,
		"is_revoked": false,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Error counting sessions in MongoDB")
		return 0, err
	}
	return count, nil
}

// CountActiveSessions counts non-revoked, non-expired sessions across all
// users.
func (r *SessionRepository) CountActiveSessions(ctx context.Context) (int64, error) {
	filter := bson.M{
		"is_revoked": false,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Error counting active sessions in MongoDB")
		return 0, err
	}
	return count, nil
}

// RevokeSession marks the session with the given identity as revoked.
// Unknown identities are a no-op.
func (r *SessionRepository) RevokeSession(ctx context.Context, sessionIdentity string) error {
	update := bson.M{"$set": bson.M{"is_revoked": true, "active": false}}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"session_identity": sessionIdentity}, update); err != nil {
		log.Error().Err(err).Msg("Error revoking session in MongoDB")
		return err
	}
	return nil
}

// RevokeUserSessions revokes every session of a user.
func (r *SessionRepository) RevokeUserSessions(ctx context.Context, userID string) (int64, error) {
	update := bson.M{"$set": bson.M{"is_revoked": true, "active": false}}
	result, err := r.collection.UpdateMany(ctx, bson.M{"user_id": userID, "is_revoked": false}, update)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Error revoking user sessions in MongoDB")
		return 0, err
	}
	return result.ModifiedCount, nil
}

// ListSessionsByUserID returns all session rows for a user, newest first.
func (r *SessionRepository) ListSessionsByUserID(ctx context.Context, userID string) ([]*domain.Session, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Error listing sessions by user ID from MongoDB")
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*domain.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		log.Error().Err(err).Msg("Error decoding listed sessions from MongoDB")
		return nil, err
	}
	return sessions, nil
}

// CleanupExpiredSessions deletes every session past its expiry and returns
// the number deleted.
func (r *SessionRepository) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now().UTC()}})
	if err != nil {
		log.Error().Err(err).Msg("Error deleting expired sessions from MongoDB")
		return 0, err
	}
	return result.DeletedCount, nil
}

var _ domain.SessionRepository = (*SessionRepository)(nil)
