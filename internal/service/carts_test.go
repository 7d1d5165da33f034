package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func decimalEq(want string, got decimal.Decimal) bool {
	return decimal.RequireFromString(want).Equal(got)
}

func requireGrandTotal(t *testing.T, c *models.Cart) {
	t.Helper()
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.Total)
	}
	require.True(t, sum.Equal(c.GrandTotal), "grand total %s != sum %s", c.GrandTotal, sum)
}

func TestAddToCart_SameProductIncrementsOneLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "buyer@shop.io")
	p := f.product(t, "3.25", 1)

	cart, err := f.carts.AddToCart(ctx, u.ID, transport.AddToCartRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	requireGrandTotal(t, cart)

	cart, err = f.carts.AddToCart(ctx, u.ID, transport.AddToCartRequest{ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.True(t, decimalEq("16.25", cart.GrandTotal))
	requireGrandTotal(t, cart)

	other := f.product(t, "1.00", 1)
	cart, err = f.carts.AddToCart(ctx, u.ID, transport.AddToCartRequest{ProductID: other.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.True(t, decimalEq("17.25", cart.GrandTotal))
	requireGrandTotal(t, cart)
}

func TestAddToCart_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "buyer@shop.io")
	p := f.product(t, "1.00", 1)

	_, err := f.carts.AddToCart(ctx, u.ID, transport.AddToCartRequest{ProductID: p.ID, Quantity: 0})
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.carts.AddToCart(ctx, u.ID, transport.AddToCartRequest{ProductID: "missing", Quantity: 1})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = f.carts.AddToCart(ctx, "ghost", transport.AddToCartRequest{ProductID: p.ID, Quantity: 1})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateCart_OverwritesLineAndChecksStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "buyer@shop.io")
	a := f.product(t, "2.00", 4)
	b := f.product(t, "5.00", 4)

	_, err := f.carts.AddToCart(ctx, u.ID, transport.AddToCartRequest{ProductID: a.ID, Quantity: 1})
	require.NoError(t, err)
	cart, err := f.carts.AddToCart(ctx, u.ID, transport.AddToCartRequest{ProductID: b.ID, Quantity: 1})
	require.NoError(t, err)

	cart, err = f.carts.UpdateCart(ctx, cart.ID, u.ID, transport.UpdateCartRequest{ProductID: a.ID, Quantity: 3})
	require.NoError(t, err)
	assert.True(t, decimalEq("11", cart.GrandTotal))
	requireGrandTotal(t, cart)

	_, err = f.carts.UpdateCart(ctx, cart.ID, u.ID, transport.UpdateCartRequest{ProductID: a.ID, Quantity: 5})
	require.ErrorIs(t, err, ErrInvalidField)
	_, err = f.carts.UpdateCart(ctx, cart.ID, u.ID, transport.UpdateCartRequest{ProductID: "missing", Quantity: 1})
	require.ErrorIs(t, err, ErrNotFound)

	cart, err = f.carts.RemoveCartItem(ctx, cart.ID, u.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.True(t, decimalEq("6", cart.GrandTotal))
	requireGrandTotal(t, cart)
}

func TestCart_OwnershipEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@shop.io")
	other := f.user(t, "other@shop.io")
	p := f.product(t, "2.00", 4)

	cart, err := f.carts.AddToCart(ctx, owner.ID, transport.AddToCartRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.carts.UpdateCart(ctx, cart.ID, other.ID, transport.UpdateCartRequest{ProductID: p.ID, Quantity: 2})
	require.ErrorIs(t, err, ErrForbidden)
	require.ErrorIs(t, f.carts.DeleteCart(ctx, cart.ID, other.ID), ErrForbidden)
	_, err = f.carts.GetUserCart(ctx, owner.ID, other.ID)
	require.ErrorIs(t, err, ErrForbidden)

	stored, err := f.carts.GetCart(ctx, cart.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Items[0].Quantity)

	require.NoError(t, f.carts.DeleteCart(ctx, cart.ID, owner.ID))
	_, err = f.carts.GetUserCart(ctx, owner.ID, owner.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 4, f.availability(t, p.ID))
}
