package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "login_error", err)
	}

	pair, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err)
	}
	authmw.SetSessionCookies(c, pair)

	l.Info("login_success", "user_id", pair.UserID)
	return respond(c, http.StatusOK, "logged in", pair)
}

// Refresh takes the refresh token from the body or, failing that, the cookie.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "refresh_error", err)
	}
	if req.RefreshToken == "" {
		if ck, err := c.Cookie(tokens.RefreshCookie); err == nil {
			req.RefreshToken = ck.Value
		}
	}

	pair, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		authmw.ClearSessionCookies(c)
		return fail(l, "refresh_error", err)
	}
	authmw.SetSessionCookies(c, pair)

	l.Info("refresh_success", "user_id", pair.UserID)
	return respond(c, http.StatusOK, "tokens refreshed", pair)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil && ck.Value != "" {
		if err := h.Svc.Logout(ctx, ck.Value); err != nil {
			l.Warn("logout_error", "reason", "cannot revoke refresh token", "error", err)
		}
	}
	authmw.ClearSessionCookies(c)

	l.Info("logout_success")
	return respond(c, http.StatusOK, "logged out", nil)
}
