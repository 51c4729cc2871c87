package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/libris-app/libris/cache"
	"github.com/libris-app/libris/domain"
	apperrors "github.com/libris-app/libris/errors"
	"github.com/libris-app/libris/internal/metrics"
	"github.com/libris-app/libris/internal/token"
)

// SessionService orchestrates the session lifecycle: login, token refresh,
// logout, the per-user session cap, and the cache mirror of the session
// store. The store is authoritative; the cache is a write-through shortcut
// keyed by (userId, userAgent, device) with the refresh token's lifetime.
type SessionService struct {
	users        domain.UserRepository
	sessions     domain.SessionRepository
	cache        cache.Cache
	issuer       *token.Issuer
	hasher       PasswordHasher
	sessionLimit int64
}

// NewSessionService creates a SessionService. sessionLimit is the maximum
// number of concurrent non-revoked sessions per user.
func NewSessionService(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	sessionCache cache.Cache,
	issuer *token.Issuer,
	hasher PasswordHasher,
	sessionLimit int64,
) *SessionService {
	return &SessionService{
		users:        users,
		sessions:     sessions,
		cache:        sessionCache,
		issuer:       issuer,
		hasher:       hasher,
		sessionLimit: sessionLimit,
	}
}

// sessionCacheKey derives the deterministic cache key for one device
// binding.
func sessionCacheKey(userID, userAgent, device string) string {
	return cache.Key("auth", map[string]string{
		"userId":    userID,
		"userAgent": userAgent,
		"device":    device,
	})
}

// Login validates credentials, enforces the session cap, mints a token
// pair bound to the device context, and persists the session in the store
// and its cache mirror.
//
// The cap is checked before any token is minted so we never issue tokens
// for a session that cannot be persisted. Unknown email and wrong password
// produce the identical InvalidCredentials error.
func (s *SessionService) Login(ctx context.Context, email, password string, device domain.DeviceContext) (*token.Pair, error) {
	verr := &apperrors.ValidationError{}
	if email == "" {
		verr.Add("required", "email")
	}
	if password == "" {
		verr.Add("required", "password")
	}
	if !verr.Empty() {
		return nil, verr
	}
	if err := device.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		// Only a confirmed unknown email is a credential failure; a store
		// outage must not masquerade as one.
		if errors.Is(err, domain.ErrUserNotFound) {
			log.Warn().Str("email", email).Msg("Login: unknown email")
			metrics.LoginFailureTotal.Inc()
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.NewInternal("could not look up user", err)
	}
	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		log.Warn().Str("userID", user.ID).Msg("Login: incorrect password")
		metrics.LoginFailureTotal.Inc()
		return nil, apperrors.NewInvalidCredentials()
	}

	if err := s.enforceSessionLimit(ctx, user.ID, false); err != nil {
		return nil, err
	}

	pair, err := s.issuer.IssuePair(user.ID, device.UserAgent)
	if err != nil {
		return nil, apperrors.NewInternal("could not generate tokens", err)
	}

	if _, err := s.persistSession(ctx, user.ID, device, pair.RefreshToken); err != nil {
		return nil, err
	}

	metrics.LoginSuccessTotal.Inc()
	log.Debug().Str("userID", user.ID).Str("device", device.Device).Msg("Login: session established")
	return pair, nil
}

// Refresh rotates a token pair. The presented refresh token must verify
// cryptographically AND match the identity of the live session for its
// (user, user-agent, device) triple; a well-signed token with no matching
// live session is treated as compromised and its identity is revoked
// defensively.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string, device domain.DeviceContext) (*token.Pair, error) {
	if err := device.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid or expired refresh token")
	}
	presentedIdentity, err := token.SessionIdentity(refreshToken)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid or expired refresh token")
	}

	key := sessionCacheKey(claims.UserID, device.UserAgent, device.Device)
	session, err := s.lookupSession(ctx, key, claims.UserID, device)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if session == nil || !session.Live(now) || session.SessionIdentity != presentedIdentity {
		// A verifiable token with a confirmed missing, dead, or mismatched
		// session is stale or stolen: revoke its identity so it cannot be
		// replayed.
		if revokeErr := s.sessions.RevokeSession(ctx, presentedIdentity); revokeErr != nil {
			log.Error().Err(revokeErr).Msg("Refresh: defensive revocation failed")
		} else {
			metrics.SessionsRevokedTotal.Inc()
		}
		s.cache.Delete(ctx, key)
		return nil, apperrors.NewInvalidSession()
	}

	if err := s.enforceSessionLimit(ctx, claims.UserID, true); err != nil {
		return nil, err
	}

	pair, err := s.issuer.IssuePair(claims.UserID, device.UserAgent)
	if err != nil {
		return nil, apperrors.NewInternal("could not generate tokens", err)
	}

	if _, err := s.persistSession(ctx, claims.UserID, device, pair.RefreshToken); err != nil {
		return nil, err
	}

	metrics.TokensRefreshedTotal.Inc()
	return pair, nil
}

// Logout deletes the session backing the presented refresh token and its
// cache entry. An invalid or expired token is a benign no-op, and logging
// out twice is safe.
func (s *SessionService) Logout(ctx context.Context, refreshToken string, device domain.DeviceContext) error {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		log.Debug().Msg("Logout: token did not verify, nothing to do")
		return nil
	}
	identity, err := token.SessionIdentity(refreshToken)
	if err != nil {
		return nil
	}

	deleted, err := s.sessions.DeleteSession(ctx, identity)
	if err != nil {
		return apperrors.NewInternal("could not delete session", err)
	}
	s.cache.Delete(ctx, sessionCacheKey(claims.UserID, device.UserAgent, device.Device))

	if deleted != "" {
		log.Debug().Str("userID", claims.UserID).Msg("Logout: session deleted")
	}
	return nil
}

// persistSession derives the session identity from the refresh token,
// upserts the session row, and writes the stored document through to the
// cache. Store and cache are not updated transactionally: a crash between
// the two leaves a stale cache entry that heals on the next lookup because
// the store stays authoritative.
func (s *SessionService) persistSession(ctx context.Context, userID string, device domain.DeviceContext, refreshToken string) (*domain.Session, error) {
	identity, err := token.SessionIdentity(refreshToken)
	if err != nil {
		return nil, apperrors.NewInternal("could not fingerprint refresh token", err)
	}

	session := &domain.Session{
		UserID:          userID,
		UserAgent:       device.UserAgent,
		Device:          device.Device,
		SessionIdentity: identity,
		IPAddress:       device.IPAddress,
		Location:        device.Location,
		ExpiresAt:       time.Now().Add(s.issuer.RefreshTTL()),
		Active:          true,
	}
	saved, err := s.sessions.SaveSession(ctx, session)
	if err != nil {
		return nil, apperrors.NewInternal("could not persist session", err)
	}
	if saved == nil {
		saved = session
	}

	key := sessionCacheKey(userID, device.UserAgent, device.Device)
	cache.Put(ctx, s.cache, key, s.issuer.RefreshTTL(), saved)
	return saved, nil
}

// lookupSession is the cache-aside session read: a cache hit is treated as
// the authoritative current session; a miss falls back to the store. A
// store read failure is surfaced as an internal error — a transient outage
// must never be mistaken for a confirmed-absent session, since that
// confirmation is what arms defensive revocation.
func (s *SessionService) lookupSession(ctx context.Context, key, userID string, device domain.DeviceContext) (*domain.Session, error) {
	if raw, ok := s.cache.Get(ctx, key); ok {
		var session domain.Session
		if err := json.Unmarshal(raw, &session); err == nil {
			metrics.CacheHitTotal.Inc()
			return &session, nil
		}
		log.Warn().Str("key", key).Msg("dropping undecodable session cache entry")
		s.cache.Delete(ctx, key)
	}
	metrics.CacheMissTotal.Inc()

	session, err := s.sessions.FindSessionByUserDevice(ctx, userID, device.UserAgent, device.Device)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Refresh: session store lookup failed")
		return nil, apperrors.NewInternal("could not read session", err)
	}
	return session, nil
}

// enforceSessionLimit applies the per-user cap. Login rejects at the cap
// (a new session would exceed it); refresh only rejects above the cap,
// since the refreshed session already counts toward it. The check-then-act
// is advisory: a small overshoot under concurrent logins is accepted, the
// composite-key upsert bounds the damage.
func (s *SessionService) enforceSessionLimit(ctx context.Context, userID string, existing bool) error {
	count, err := s.sessions.CountUserSessions(ctx, userID)
	if err != nil {
		return apperrors.NewInternal("could not count sessions", err)
	}
	limit := s.sessionLimit
	if existing {
		limit++
	}
	if count >= limit {
		log.Warn().Str("userID", userID).Int64("count", count).Msg("session limit reached")
		return apperrors.NewSessionLimitExceeded()
	}
	return nil
}
