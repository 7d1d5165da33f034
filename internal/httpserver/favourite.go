package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type FavouriteHTTP struct {
	Svc *service.FavouriteService
}

func (h *FavouriteHTTP) AddFavourite(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "favourite.add")

	var req transport.FavouriteRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "add_favourite_error", err)
	}

	u, err := h.Svc.AddFavourite(ctx, c.Param("id"), authmw.UserID(c), req.ProductID)
	if err != nil {
		return fail(l, "add_favourite_error", err)
	}
	return respond(c, http.StatusOK, "product added to favourites", u.Favourites)
}

func (h *FavouriteHTTP) RemoveFavourite(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "favourite.remove")

	u, err := h.Svc.RemoveFavourite(ctx, c.Param("id"), authmw.UserID(c), c.Param("productId"))
	if err != nil {
		return fail(l, "remove_favourite_error", err)
	}
	return respond(c, http.StatusOK, "product removed from favourites", u.Favourites)
}

func (h *FavouriteHTTP) ListFavourites(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "favourite.list")

	products, err := h.Svc.ListFavourites(ctx, c.Param("id"), authmw.UserID(c))
	if err != nil {
		return fail(l, "list_favourites_error", err)
	}
	return respond(c, http.StatusOK, "favourites fetched", products)
}
