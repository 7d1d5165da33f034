package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_order_error", err)
	}

	order, err := h.Svc.CreateOrder(ctx, authmw.UserID(c), req)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID, "product_id", req.ProductID, "quantity", req.Quantity)
	return respond(c, http.StatusCreated, "order created", order)
}

func (h *OrderHTTP) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update")

	var req transport.UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_order_error", err)
	}

	order, err := h.Svc.UpdateOrder(ctx, c.Param("id"), authmw.UserID(c), req)
	if err != nil {
		return fail(l, "update_order_error", err)
	}

	l.Info("update_order_success", "order_id", order.ID)
	return respond(c, http.StatusOK, "order updated", order)
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete")

	if err := h.Svc.DeleteOrder(ctx, c.Param("id"), authmw.UserID(c)); err != nil {
		return fail(l, "delete_order_error", err)
	}

	l.Info("delete_order_success", "order_id", c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	order, err := h.Svc.GetOrder(ctx, c.Param("id"), authmw.UserID(c))
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return respond(c, http.StatusOK, "order fetched", order)
}

func (h *OrderHTTP) GetUserOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_user_order")

	order, err := h.Svc.GetUserOrder(ctx, c.Param("id"), authmw.UserID(c))
	if err != nil {
		return fail(l, "get_user_order_error", err)
	}
	return respond(c, http.StatusOK, "order fetched", order)
}

func (h *OrderHTTP) GetAllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	offset, limit := pageParams(c)
	total, orders, err := h.Svc.ListOrders(ctx, offset, limit)
	if err != nil {
		return fail(l, "get_all_orders_error", err)
	}
	return respondPage(c, "orders fetched", orders, offset, limit, total)
}
