package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_user_error", err)
	}

	u, err := h.Svc.CreateUser(ctx, req)
	if err != nil {
		return fail(l, "create_user_error", err)
	}

	l.Info("create_user_success", "user_id", u.ID)
	return respond(c, http.StatusCreated, "user created", u)
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get")

	id := c.Param("id")
	if id != authmw.UserID(c) {
		return fail(l, "get_user_error", service.ErrForbidden)
	}
	u, err := h.Svc.GetUser(ctx, id)
	if err != nil {
		return fail(l, "get_user_error", err)
	}
	return respond(c, http.StatusOK, "user fetched", u)
}

func (h *UserHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	offset, limit := pageParams(c)
	total, users, err := h.Svc.ListUsers(ctx, offset, limit)
	if err != nil {
		return fail(l, "list_users_error", err)
	}
	return respondPage(c, "users fetched", users, offset, limit, total)
}

func (h *UserHTTP) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update")

	var req transport.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_user_error", err)
	}

	u, err := h.Svc.UpdateUser(ctx, c.Param("id"), authmw.UserID(c), req)
	if err != nil {
		return fail(l, "update_user_error", err)
	}

	l.Info("update_user_success", "user_id", u.ID)
	return respond(c, http.StatusOK, "user updated", u)
}

func (h *UserHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	if err := h.Svc.DeleteUser(ctx, c.Param("id"), authmw.UserID(c)); err != nil {
		return fail(l, "delete_user_error", err)
	}
	authmw.ClearSessionCookies(c)

	l.Info("delete_user_success", "user_id", c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func pageParams(c echo.Context) (offset, limit int) {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	return util.Calculate(page, size)
}
