// Package echo wires the application services to HTTP routes.
package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/libris-app/libris/domain"
	"github.com/libris-app/libris/dto"
	apperrors "github.com/libris-app/libris/errors"
	"github.com/libris-app/libris/services"
)

// AuthAPI exposes the session lifecycle endpoints.
type AuthAPI struct {
	sessions *services.SessionService
	users    *services.UserService
}

// NewAuthAPI initializes the auth API.
func NewAuthAPI(sessions *services.SessionService, users *services.UserService) *AuthAPI {
	return &AuthAPI{sessions: sessions, users: users}
}

// RegisterRoutes registers the auth routes.
func (a *AuthAPI) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.RegisterHandler)
	g.POST("/login", a.LoginHandler)
	g.POST("/refresh", a.RefreshHandler)
	g.POST("/logout", a.LogoutHandler)
}

// deviceContext assembles the session-binding context from the request.
// The device identifier comes from the X-Device-Id header and falls back
// to the user-agent so browser clients without the header still bind a
// session.
func deviceContext(c echo.Context) domain.DeviceContext {
	userAgent := c.Request().UserAgent()
	device := c.Request().Header.Get("X-Device-Id")
	if device == "" {
		device = userAgent
	}
	return domain.DeviceContext{
		UserAgent: userAgent,
		Device:    device,
		IPAddress: c.RealIP(),
		Location:  c.Request().Header.Get("X-Client-Location"),
	}
}

// RegisterHandler handles user registration.
func (a *AuthAPI) RegisterHandler(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, (&apperrors.ValidationError{}).Add("malformed JSON body", "body"))
	}

	user, err := a.users.Register(c.Request().Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// LoginHandler handles credential login and returns a token pair.
func (a *AuthAPI) LoginHandler(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, (&apperrors.ValidationError{}).Add("malformed JSON body", "body"))
	}

	pair, err := a.sessions.Login(c.Request().Context(), req.Email, req.Password, deviceContext(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// RefreshHandler rotates a token pair.
func (a *AuthAPI) RefreshHandler(c echo.Context) error {
	var req dto.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, (&apperrors.ValidationError{}).Add("malformed JSON body", "body"))
	}
	if req.RefreshToken == "" {
		return writeError(c, (&apperrors.ValidationError{}).Add("required", "refreshToken"))
	}

	pair, err := a.sessions.Refresh(c.Request().Context(), req.RefreshToken, deviceContext(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// LogoutHandler tears down the session behind a refresh token. Logging out
// an already-invalid token succeeds with an empty result.
func (a *AuthAPI) LogoutHandler(c echo.Context) error {
	var req dto.LogoutRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, (&apperrors.ValidationError{}).Add("malformed JSON body", "body"))
	}

	if err := a.sessions.Logout(c.Request().Context(), req.RefreshToken, deviceContext(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{})
}

// errorBody is the wire shape of every error response.
type errorBody struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Fields  []apperrors.FieldError `json:"fields,omitempty"`
}

// writeError maps a taxonomy error onto its HTTP response. Internal causes
// are logged server-side and never leak to the client.
func writeError(c echo.Context, err error) error {
	kind := apperrors.KindOf(err)

	var valErr *apperrors.ValidationError
	if errors.As(err, &valErr) {
		return c.JSON(kind.HTTPStatus(), errorBody{
			Error:   string(kind),
			Message: "request validation failed",
			Fields:  valErr.Entries,
		})
	}

	var appErr *apperrors.Error
	message := "internal server error"
	if errors.As(err, &appErr) && kind != apperrors.KindInternal {
		message = appErr.Message
	}
	if kind == apperrors.KindInternal {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.JSON(kind.HTTPStatus(), errorBody{Error: string(kind), Message: message})
}
