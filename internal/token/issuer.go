// Package token implements the stateless HMAC token issuer. Access and
// refresh tokens carry the same claim shape but are signed with distinct
// secrets and TTLs; the audience claim binds a pair to the requesting
// user-agent.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrMalformedToken is returned when a compact encoding does not have the
// expected three segments.
var ErrMalformedToken = errors.New("malformed token")

// Pair is one access/refresh token issuance.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
}

// Claims is the verified payload of a token.
type Claims struct {
	UserID   string
	Audience string
}

// Issuer signs and verifies token pairs.
type Issuer struct {
	issuer        string
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewIssuer creates an Issuer. The two secrets must differ so a refresh
// token can never be replayed as an access token.
func NewIssuer(issuer string, accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		issuer:        issuer,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// RefreshTTL returns the refresh token lifetime. Session rows and their
// cache mirrors expire together with the refresh token.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// IssuePair mints a new token pair for userID, bound to audience.
func (i *Issuer) IssuePair(userID, audience string) (*Pair, error) {
	access, err := i.sign(userID, audience, i.accessSecret, i.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := i.sign(userID, audience, i.refreshSecret, i.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(i.accessTTL.Seconds()),
	}, nil
}

func (i *Issuer) sign(userID, audience string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    i.issuer,
		Subject:   userID,
		Audience:  jwt.ClaimStrings{audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccess verifies an access token and returns its claims.
func (i *Issuer) VerifyAccess(tokenValue string) (*Claims, error) {
	return i.verify(tokenValue, i.accessSecret)
}

// VerifyRefresh verifies a refresh token and returns its claims.
func (i *Issuer) VerifyRefresh(tokenValue string) (*Claims, error) {
	return i.verify(tokenValue, i.refreshSecret)
}

func (i *Issuer) verify(tokenValue string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenValue, &jwt.RegisteredClaims{},
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	var audience string
	if len(claims.Audience) > 0 {
		audience = claims.Audience[0]
	}
	return &Claims{UserID: claims.Subject, Audience: audience}, nil
}

// SessionIdentity extracts the signature segment (the third dot-delimited
// part) of a compact token encoding. It is a stable fingerprint of one
// specific issuance, independent of payload field ordering, and is what
// the session store keys revocation on, never the raw token.
func SessionIdentity(tokenValue string) (string, error) {
	parts := strings.Split(tokenValue, ".")
	if len(parts) != 3 || parts[2] == "" {
		return "", ErrMalformedToken
	}
	return parts[2], nil
}
