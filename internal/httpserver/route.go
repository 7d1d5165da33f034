package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Deps struct {
	Users      *UserHTTP
	Auth       *AuthHTTP
	Products   *ProductHTTP
	Carts      *CartHTTP
	Orders     *OrderHTTP
	Favourites *FavouriteHTTP

	// RequireAuth authenticates the caller and sets user_id and role.
	RequireAuth echo.MiddlewareFunc
	// Ready reports store health for /health/ready. Nil means always ready.
	Ready func() bool
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil && !d.Ready() {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api/v1")
	api.GET("/healthcheck", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "message": "Application is running..."})
	})

	api.POST("/auth/register", d.Users.CreateUser)
	api.POST("/auth/login", d.Auth.Login)
	api.POST("/auth/refresh", d.Auth.Refresh)
	api.POST("/auth/logout", d.Auth.Logout)

	api.GET("/products", d.Products.GetProducts)
	api.GET("/products/search", d.Products.SearchProducts)
	api.GET("/products/:id", d.Products.GetProduct)

	private := api.Group("", d.RequireAuth)
	admin := private.Group("", authmw.RequireAdmin)

	admin.POST("/products", d.Products.CreateProduct)
	admin.PATCH("/products/:id", d.Products.PatchProduct)
	admin.DELETE("/products/:id", d.Products.DeleteProduct)

	admin.GET("/users", d.Users.ListUsers)
	private.GET("/users/:id", d.Users.GetUser)
	private.PATCH("/users/:id", d.Users.UpdateUser)
	private.DELETE("/users/:id", d.Users.DeleteUser)
	private.GET("/users/:id/cart", d.Carts.GetUserCart)
	private.GET("/users/:id/order", d.Orders.GetUserOrder)
	private.GET("/users/:id/favourites", d.Favourites.ListFavourites)
	private.POST("/users/:id/favourites", d.Favourites.AddFavourite)
	private.DELETE("/users/:id/favourites/:productId", d.Favourites.RemoveFavourite)

	admin.GET("/carts", d.Carts.GetAllCarts)
	private.POST("/carts", d.Carts.AddToCart)
	private.GET("/carts/:id", d.Carts.GetCart)
	private.PATCH("/carts/:id", d.Carts.UpdateCart)
	private.DELETE("/carts/:id", d.Carts.DeleteCart)
	private.DELETE("/carts/:id/items/:productId", d.Carts.RemoveCartItem)

	admin.GET("/orders", d.Orders.GetAllOrders)
	private.POST("/orders", d.Orders.CreateOrder)
	private.GET("/orders/:id", d.Orders.GetOrder)
	private.PATCH("/orders/:id", d.Orders.UpdateOrder)
	private.DELETE("/orders/:id", d.Orders.DeleteOrder)
}
