// Package repo holds the storage contract shared by the gorm and mongo
// backends.
package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/storefront/internal/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("duplicate key")
	ErrStaleVersion      = errors.New("stale version")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrTokenRevoked      = errors.New("token expired or revoked")
)

type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, offset, limit int) (int64, []models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id string) error
	AddFavourite(ctx context.Context, userID, productID string) (*models.User, error)
	RemoveFavourite(ctx context.Context, userID, productID string) (*models.User, error)
	AddUserOrder(ctx context.Context, userID, orderID string) error
}

type Products interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	ListProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error)
	SearchProducts(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error)
	// UpdateProduct writes every field except availability, which only moves
	// through AdjustAvailability and SetAvailability.
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	// AdjustAvailability adds delta to availability. A negative delta that
	// would take it below zero fails with ErrInsufficientStock.
	AdjustAvailability(ctx context.Context, id string, delta int) error
	SetAvailability(ctx context.Context, id string, availability int) error
}

type Carts interface {
	GetCart(ctx context.Context, id string) (*models.Cart, error)
	GetCartByUser(ctx context.Context, userID string) (*models.Cart, error)
	ListCarts(ctx context.Context, offset, limit int) (int64, []models.Cart, error)
	// AppendCartItem pushes a new line and increments the grand total by its
	// total, creating the user's cart when none exists.
	AppendCartItem(ctx context.Context, userID string, item models.CartItem) (*models.Cart, error)
	// SaveCart replaces the stored lines and grand total when cart.Version is
	// current, and bumps the version.
	SaveCart(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context, id string) error
}

type Orders interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetOrderByUser(ctx context.Context, userID string) (*models.Order, error)
	ListOrders(ctx context.Context, offset, limit int) (int64, []models.Order, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	SaveOrder(ctx context.Context, o *models.Order) error
	DeleteOrder(ctx context.Context, id string) error
}

type Tokens interface {
	SaveRefreshToken(ctx context.Context, t *models.RefreshToken) error
	GetRefreshToken(ctx context.Context, jti string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, jti string) error
	RevokeUserTokens(ctx context.Context, userID string) error
	// RotateRefreshToken revokes oldJTI and stores next in one step; it fails
	// with ErrTokenRevoked when oldJTI is already revoked or expired.
	RotateRefreshToken(ctx context.Context, oldJTI string, next *models.RefreshToken) error
}

type Store interface {
	Users
	Products
	Carts
	Orders
	Tokens
}
