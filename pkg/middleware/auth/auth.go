package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	userIDKey = "user_id"
	roleKey   = "role"
	tokenKey  = "user"
)

// Refresher exchanges a refresh token for a new pair.
type Refresher func(ctx context.Context, refreshToken string) (*tokens.Pair, error)

type Config struct {
	AccessSecret []byte
	// Refresh is used when the access token has expired and a refresh cookie
	// is present. Nil disables auto refresh.
	Refresh Refresher
}

// RequireAuth accepts the access token from the Authorization header or the
// access cookie. An expired token is renewed in place from the refresh cookie.
func RequireAuth(cfg Config) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    cfg.AccessSecret,
		SigningMethod: echojwt.AlgorithmHS256,
		ContextKey:    tokenKey,
		TokenLookup:   "header:Authorization:Bearer ,cookie:" + tokens.AccessCookie,
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(tokens.AccessClaims) },
		SuccessHandler: func(c echo.Context) {
			tok, ok := c.Get(tokenKey).(*jwt.Token)
			if !ok {
				return
			}
			if claims, ok := tok.Claims.(*tokens.AccessClaims); ok {
				setUserContext(c, claims)
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return refreshExpired(c, cfg, err)
		},
		ContinueOnIgnoredError: true,
	})
}

func refreshExpired(c echo.Context, cfg Config, err error) error {
	l := logging.FromContext(c.Request().Context()).With("mw", "auth")

	var extractErr *echojwt.TokenExtractionError
	if errors.As(err, &extractErr) {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}
	if !errors.Is(err, jwt.ErrTokenExpired) || cfg.Refresh == nil {
		l.Warn("auth_error", "status", http.StatusUnauthorized, "reason", "invalid access token", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
	}

	cookie, cErr := c.Cookie(tokens.RefreshCookie)
	if cErr != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "access token expired")
	}

	pair, rErr := cfg.Refresh(c.Request().Context(), cookie.Value)
	if rErr != nil {
		l.Warn("auth_error", "status", http.StatusUnauthorized, "reason", "refresh failed", "error", rErr)
		ClearSessionCookies(c)
		return echo.NewHTTPError(http.StatusUnauthorized, "session expired, log in again")
	}

	claims, pErr := tokens.AccessClaimsFromToken(pair.AccessToken, cfg.AccessSecret)
	if pErr != nil {
		l.Error("auth_error", "status", http.StatusInternalServerError, "reason", "refreshed token unreadable", "error", pErr)
		ClearSessionCookies(c)
		return echo.NewHTTPError(http.StatusUnauthorized, "session expired, log in again")
	}

	SetSessionCookies(c, pair)
	setUserContext(c, claims)
	l.Info("session_refreshed", "user_id", claims.Subject)
	return nil
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if Role(c) != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

func Role(c echo.Context) string {
	role, _ := c.Get(roleKey).(string)
	return role
}

func SetSessionCookies(c echo.Context, pair *tokens.Pair) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, pair.AccessToken, "/", pair.AccessExp))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, pair.RefreshToken, "/", pair.RefreshExp))
}

func ClearSessionCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(userIDKey, claims.Subject)
	c.Set(roleKey, claims.Role)
}
