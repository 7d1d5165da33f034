package gormrepo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/db"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	gdb, err := db.Open(context.Background(), "sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	r := &GormRepo{DB: gdb}
	require.NoError(t, r.Migrate(context.Background()))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return r
}

func seedProduct(t *testing.T, r *GormRepo, availability int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:         "Linen shirt",
		Description:  "Loose fit",
		Price:        decimal.RequireFromString("19.99"),
		Category:     models.Category{Main: "clothing", Sub: "shirts"},
		Colours:      models.StringList{"red", "blue"},
		Sizes:        models.StringList{"M", "42"},
		Availability: availability,
		Images:       models.StringList{"https://img/1.png"},
	}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func TestProduct_RoundTrip(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, 5)

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Colours, got.Colours)
	assert.Equal(t, p.Sizes, got.Sizes)
	assert.Equal(t, "shirts", got.Category.Sub)
	assert.True(t, p.Price.Equal(got.Price))

	got.Name = "Linen shirt v2"
	got.Availability = 9
	require.NoError(t, r.UpdateProduct(ctx, got))

	again, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Linen shirt v2", again.Name)
	assert.Equal(t, 5, again.Availability)

	require.NoError(t, r.SetAvailability(ctx, p.ID, 9))
	again, err = r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, again.Availability)
	assert.ErrorIs(t, r.SetAvailability(ctx, "missing", 1), repo.ErrNotFound)

	total, found, err := r.SearchProducts(ctx, "LINEN", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, found, 1)

	require.NoError(t, r.DeleteProduct(ctx, p.ID))
	_, err = r.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.ErrorIs(t, r.DeleteProduct(ctx, p.ID), repo.ErrNotFound)
}

func TestAdjustAvailability_NeverNegative(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, 5)

	require.NoError(t, r.AdjustAvailability(ctx, p.ID, -3))
	assert.ErrorIs(t, r.AdjustAvailability(ctx, p.ID, -3), repo.ErrInsufficientStock)
	require.NoError(t, r.AdjustAvailability(ctx, p.ID, 1))
	assert.ErrorIs(t, r.AdjustAvailability(ctx, "missing", -1), repo.ErrNotFound)

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Availability)
}

func TestAppendCartItem_UpsertsAndIncrements(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	userID := uuid.NewString()

	c, err := r.AppendCartItem(ctx, userID, models.CartItem{ProductID: "p1", Quantity: 2, Total: decimal.RequireFromString("39.98")})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.True(t, decimal.RequireFromString("39.98").Equal(c.GrandTotal))

	c, err = r.AppendCartItem(ctx, userID, models.CartItem{ProductID: "p2", Quantity: 1, Total: decimal.RequireFromString("5")})
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.Equal(t, "p1", c.Items[0].ProductID)
	assert.Equal(t, "p2", c.Items[1].ProductID)
	assert.True(t, decimal.RequireFromString("44.98").Equal(c.GrandTotal))

	total, carts, err := r.ListCarts(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, carts, 1)
}

func TestSaveCart_RejectsStaleVersion(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	c, err := r.AppendCartItem(ctx, uuid.NewString(), models.CartItem{ProductID: "p1", Quantity: 1, Total: decimal.NewFromInt(10)})
	require.NoError(t, err)
	stale := *c

	c.Items[0].Quantity = 3
	c.Items[0].Total = decimal.NewFromInt(30)
	c.Recalculate()
	require.NoError(t, r.SaveCart(ctx, c))

	stale.Items = nil
	assert.ErrorIs(t, r.SaveCart(ctx, &stale), repo.ErrStaleVersion)

	got, err := r.GetCart(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(30).Equal(got.GrandTotal))

	require.NoError(t, r.DeleteCart(ctx, c.ID))
	assert.ErrorIs(t, r.DeleteCart(ctx, c.ID), repo.ErrNotFound)
}

func TestOrder_CreateSaveDelete(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	userID := uuid.NewString()

	o := &models.Order{UserID: userID, Items: []models.OrderItem{{
		ProductID: "p1", Quantity: 1, Colour: "red", Size: "M",
		Total: decimal.NewFromInt(10), Status: models.StatusPending, ShippingType: models.ShippingInStore,
	}}}
	require.NoError(t, r.CreateOrder(ctx, o))
	assert.EqualValues(t, 1, o.Version)

	dup := &models.Order{UserID: userID}
	assert.ErrorIs(t, r.CreateOrder(ctx, dup), repo.ErrDuplicate)

	got, err := r.GetOrderByUser(ctx, userID)
	require.NoError(t, err)
	got.Items = append(got.Items, models.OrderItem{
		ProductID: "p2", Quantity: 2, Colour: "blue", Size: "L",
		Total: decimal.NewFromInt(20), Status: models.StatusPending, ShippingType: models.ShippingExpress,
	})
	require.NoError(t, r.SaveOrder(ctx, got))
	assert.EqualValues(t, 2, got.Version)

	again, err := r.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, again.Items, 2)
	assert.Equal(t, "p2", again.Items[1].ProductID)

	require.NoError(t, r.DeleteOrder(ctx, o.ID))
	_, err = r.GetOrder(ctx, o.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestUser_SetsAndDuplicates(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := &models.User{Email: "ann@shop.io", PasswordHash: "x", FullName: "Ann", Role: models.RoleUser,
		Addresses: []models.Address{{Street: "1 Main", City: "Oslo", Type: models.AddressMain}}}
	require.NoError(t, r.CreateUser(ctx, u))
	assert.ErrorIs(t, r.CreateUser(ctx, &models.User{Email: "ann@shop.io", PasswordHash: "y", FullName: "B", Role: models.RoleUser}), repo.ErrDuplicate)

	got, err := r.AddFavourite(ctx, u.ID, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"p1"}, got.Favourites)

	got, err = r.AddFavourite(ctx, u.ID, "p1")
	require.NoError(t, err)
	assert.Len(t, got.Favourites, 1)

	got, err = r.RemoveFavourite(ctx, u.ID, "p1")
	require.NoError(t, err)
	assert.Empty(t, got.Favourites)

	require.NoError(t, r.AddUserOrder(ctx, u.ID, "o1"))
	require.NoError(t, r.AddUserOrder(ctx, u.ID, "o1"))

	stored, err := r.GetUserByEmail(ctx, "ann@shop.io")
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"o1"}, stored.Orders)
	require.Len(t, stored.Addresses, 1)
	assert.Equal(t, "Oslo", stored.Addresses[0].City)

	_, err = r.AddFavourite(ctx, "missing", "p1")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestRotateRefreshToken(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	old := &models.RefreshToken{JTI: uuid.NewString(), TokenHash: "h1", UserID: "u1", Role: models.RoleUser, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, r.SaveRefreshToken(ctx, old))

	next := &models.RefreshToken{JTI: uuid.NewString(), TokenHash: "h2", UserID: "u1", Role: models.RoleUser, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, r.RotateRefreshToken(ctx, old.JTI, next))

	again := &models.RefreshToken{JTI: uuid.NewString(), TokenHash: "h3", UserID: "u1", Role: models.RoleUser, ExpiresAt: time.Now().Add(time.Hour)}
	assert.ErrorIs(t, r.RotateRefreshToken(ctx, old.JTI, again), repo.ErrTokenRevoked)

	require.NoError(t, r.RevokeUserTokens(ctx, "u1"))
	got, err := r.GetRefreshToken(ctx, next.JTI)
	require.NoError(t, err)
	assert.True(t, got.Revoked)
}
