package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type ProductHTTP struct {
	Svc *service.ProductService
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	p, err := h.Svc.GetProduct(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return respond(c, http.StatusOK, "product fetched", p)
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	offset, limit := pageParams(c)
	total, items, err := h.Svc.ListProducts(ctx, offset, limit)
	if err != nil {
		return fail(l, "get_products_error", err)
	}
	return respondPage(c, "products fetched", items, offset, limit, total)
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	offset, limit := pageParams(c)
	total, items, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return fail(l, "search_products_error", err)
	}
	return respondPage(c, "products found", items, offset, limit, total)
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_product_error", err)
	}

	p, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "create_product_error", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return respond(c, http.StatusCreated, "product created", p)
}

func (h *ProductHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "patch_product_error", err)
	}

	p, err := h.Svc.UpdateProduct(ctx, c.Param("id"), req)
	if err != nil {
		return fail(l, "patch_product_error", err)
	}

	l.Info("patch_product_success", "product_id", p.ID)
	return respond(c, http.StatusOK, "product updated", p)
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	if err := h.Svc.DeleteProduct(ctx, c.Param("id")); err != nil {
		return fail(l, "delete_product_error", err)
	}

	l.Info("delete_product_success", "product_id", c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}
