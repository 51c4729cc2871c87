package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libris-app/libris/internal/token"
)

func newTestIssuer() *token.Issuer {
	return token.NewIssuer("libris-test",
		[]byte("access-secret"), []byte("refresh-secret"),
		15*time.Minute, 7*24*time.Hour)
}

func protectedRequest(t *testing.T, issuer *token.Issuer, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.String(http.StatusOK, AuthenticatedUserID(c))
	}, RequireAccessToken(issuer))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireAccessTokenAllowsValidToken(t *testing.T) {
	issuer := newTestIssuer()
	pair, err := issuer.IssuePair("user-1", "agent")
	require.NoError(t, err)

	rec := protectedRequest(t, issuer, "Bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestRequireAccessTokenMissingHeader(t *testing.T) {
	rec := protectedRequest(t, newTestIssuer(), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAccessTokenBadScheme(t *testing.T) {
	issuer := newTestIssuer()
	pair, err := issuer.IssuePair("user-1", "agent")
	require.NoError(t, err)

	rec := protectedRequest(t, issuer, "Basic "+pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAccessTokenRejectsRefreshToken(t *testing.T) {
	issuer := newTestIssuer()
	pair, err := issuer.IssuePair("user-1", "agent")
	require.NoError(t, err)

	rec := protectedRequest(t, issuer, "Bearer "+pair.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticatedUserIDEmptyWithoutMiddleware(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Empty(t, AuthenticatedUserID(c))
}
