package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "add_to_cart_error", err)
	}

	cart, err := h.Svc.AddToCart(ctx, authmw.UserID(c), req)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("add_to_cart_success", "cart_id", cart.ID, "product_id", req.ProductID)
	return respond(c, http.StatusCreated, "item added to cart", cart)
}

func (h *CartHTTP) UpdateCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	var req transport.UpdateCartRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_cart_error", err)
	}

	cart, err := h.Svc.UpdateCart(ctx, c.Param("id"), authmw.UserID(c), req)
	if err != nil {
		return fail(l, "update_cart_error", err)
	}

	l.Info("update_cart_success", "cart_id", cart.ID)
	return respond(c, http.StatusOK, "cart updated", cart)
}

func (h *CartHTTP) RemoveCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	cart, err := h.Svc.RemoveCartItem(ctx, c.Param("id"), authmw.UserID(c), c.Param("productId"))
	if err != nil {
		return fail(l, "remove_cart_item_error", err)
	}
	return respond(c, http.StatusOK, "item removed from cart", cart)
}

func (h *CartHTTP) DeleteCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.delete")

	if err := h.Svc.DeleteCart(ctx, c.Param("id"), authmw.UserID(c)); err != nil {
		return fail(l, "delete_cart_error", err)
	}

	l.Info("delete_cart_success", "cart_id", c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	cart, err := h.Svc.GetCart(ctx, c.Param("id"), authmw.UserID(c))
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return respond(c, http.StatusOK, "cart fetched", cart)
}

func (h *CartHTTP) GetUserCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_user_cart")

	cart, err := h.Svc.GetUserCart(ctx, c.Param("id"), authmw.UserID(c))
	if err != nil {
		return fail(l, "get_user_cart_error", err)
	}
	return respond(c, http.StatusOK, "cart fetched", cart)
}

func (h *CartHTTP) GetAllCarts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.list")

	offset, limit := pageParams(c)
	total, carts, err := h.Svc.ListCarts(ctx, offset, limit)
	if err != nil {
		return fail(l, "get_all_carts_error", err)
	}
	return respondPage(c, "carts fetched", carts, offset, limit, total)
}
