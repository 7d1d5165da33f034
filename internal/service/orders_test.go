package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func orderReq(productID string, qty int) transport.CreateOrderRequest {
	return transport.CreateOrderRequest{ProductID: productID, Quantity: qty, Colour: "red", Size: "M"}
}

func TestCreateOrder_DecrementsAndRejectsOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "buyer@shop.io")
	p := f.product(t, "10.00", 5)

	order, err := f.orders.CreateOrder(ctx, u.ID, orderReq(p.ID, 3))
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, f.availability(t, p.ID))
	assert.Equal(t, models.StatusPending, order.Items[0].Status)
	assert.Equal(t, models.ShippingInStore, order.Items[0].ShippingType)
	assert.True(t, decimalEq("30", order.Items[0].Total))

	_, err = f.orders.CreateOrder(ctx, u.ID, orderReq(p.ID, 3))
	require.ErrorIs(t, err, ErrInsufficientStock)

	stored, err := f.repo.GetOrderByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 3, stored.Items[0].Quantity)
	assert.Equal(t, 2, f.availability(t, p.ID))

	reloaded, err := f.repo.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{order.ID}, reloaded.Orders)
}

func TestCreateOrder_MergesPendingLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "buyer@shop.io")
	p := f.product(t, "2.50", 10)

	_, err := f.orders.CreateOrder(ctx, u.ID, orderReq(p.ID, 2))
	require.NoError(t, err)
	order, err := f.orders.CreateOrder(ctx, u.ID, transport.CreateOrderRequest{
		ProductID: p.ID, Quantity: 1, Colour: " RED ", Size: "m",
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.True(t, decimalEq("7.5", order.Items[0].Total))

	order, err = f.orders.CreateOrder(ctx, u.ID, transport.CreateOrderRequest{
		ProductID: p.ID, Quantity: 1, Colour: "blue", Size: "42.0",
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "42", order.Items[1].Size)
	assert.Equal(t, 6, f.availability(t, p.ID))
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "buyer@shop.io")
	p := f.product(t, "1.00", 5)

	cases := []struct {
		name string
		req  transport.CreateOrderRequest
		want error
	}{
		{"zero quantity", orderReq(p.ID, 0), ErrInvalidField},
		{"unknown colour", transport.CreateOrderRequest{ProductID: p.ID, Quantity: 1, Colour: "green", Size: "M"}, ErrInvalidField},
		{"unknown size", transport.CreateOrderRequest{ProductID: p.ID, Quantity: 1, Colour: "red", Size: "XL"}, ErrInvalidField},
		{"bad status", transport.CreateOrderRequest{ProductID: p.ID, Quantity: 1, Colour: "red", Size: "M", Status: "lost"}, ErrInvalidField},
		{"bad shipping", transport.CreateOrderRequest{ProductID: p.ID, Quantity: 1, Colour: "red", Size: "M", ShippingType: "drone"}, ErrInvalidField},
		{"missing product", orderReq("nope", 1), ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orders.CreateOrder(ctx, u.ID, tc.req)
			require.ErrorIs(t, err, tc.want)
		})
	}

	_, err := f.orders.CreateOrder(ctx, "ghost", orderReq(p.ID, 1))
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 5, f.availability(t, p.ID))
}

func TestUpdateOrder_AdjustsStockByDelta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "buyer@shop.io")
	p := f.product(t, "4.00", 10)

	order, err := f.orders.CreateOrder(ctx, u.ID, orderReq(p.ID, 4))
	require.NoError(t, err)
	require.Equal(t, 6, f.availability(t, p.ID))

	order, err = f.orders.UpdateOrder(ctx, order.ID, u.ID, transport.UpdateOrderRequest{Quantity: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, order.Items[0].Quantity)
	assert.True(t, decimalEq("4", order.Items[0].Total))
	assert.Equal(t, 9, f.availability(t, p.ID))

	order, err = f.orders.UpdateOrder(ctx, order.ID, u.ID, transport.UpdateOrderRequest{
		Quantity: ptr(5),
		Status:   ptr(models.StatusShipped),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, order.Items[0].Status)
	assert.Equal(t, 5, f.availability(t, p.ID))
}

func TestUpdateOrder_SwitchProductMovesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "buyer@shop.io")
	first := f.product(t, "4.00", 10)
	second := f.product(t, "6.00", 10)

	order, err := f.orders.CreateOrder(ctx, u.ID, orderReq(first.ID, 3))
	require.NoError(t, err)

	order, err = f.orders.UpdateOrder(ctx, order.ID, u.ID, transport.UpdateOrderRequest{
		ItemID:    order.Items[0].ID,
		ProductID: ptr(second.ID),
		Quantity:  ptr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, second.ID, order.Items[0].ProductID)
	assert.True(t, decimalEq("12", order.Items[0].Total))
	assert.Equal(t, 10, f.availability(t, first.ID))
	assert.Equal(t, 8, f.availability(t, second.ID))
}

func TestUpdateOrder_InvalidColourLeavesOrderUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "buyer@shop.io")
	p := f.product(t, "4.00", 10)

	order, err := f.orders.CreateOrder(ctx, u.ID, orderReq(p.ID, 2))
	require.NoError(t, err)

	_, err = f.orders.UpdateOrder(ctx, order.ID, u.ID, transport.UpdateOrderRequest{
		Quantity: ptr(5),
		Colour:   ptr("green"),
	})
	require.ErrorIs(t, err, ErrInvalidField)

	stored, err := f.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.Equal(t, "red", stored.Items[0].Colour)
	assert.Equal(t, order.Version, stored.Version)
	assert.Equal(t, 8, f.availability(t, p.ID))

	_, err = f.orders.UpdateOrder(ctx, order.ID, u.ID, transport.UpdateOrderRequest{Quantity: ptr(11)})
	require.ErrorIs(t, err, ErrInvalidField)

	_, err = f.orders.UpdateOrder(ctx, order.ID, u.ID, transport.UpdateOrderRequest{ItemID: "missing"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOrder_OwnershipEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@shop.io")
	other := f.user(t, "other@shop.io")
	p := f.product(t, "4.00", 10)

	order, err := f.orders.CreateOrder(ctx, owner.ID, orderReq(p.ID, 1))
	require.NoError(t, err)

	_, err = f.orders.UpdateOrder(ctx, order.ID, other.ID, transport.UpdateOrderRequest{Quantity: ptr(2)})
	require.ErrorIs(t, err, ErrForbidden)
	require.ErrorIs(t, f.orders.DeleteOrder(ctx, order.ID, other.ID), ErrForbidden)
	_, err = f.orders.GetOrder(ctx, order.ID, other.ID)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.orders.GetUserOrder(ctx, owner.ID, other.ID)
	require.ErrorIs(t, err, ErrForbidden)

	stored, err := f.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Items[0].Quantity)
}

func TestDeleteOrder_KeepsStockConsumed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "buyer@shop.io")
	p := f.product(t, "4.00", 10)

	order, err := f.orders.CreateOrder(ctx, u.ID, orderReq(p.ID, 4))
	require.NoError(t, err)
	require.NoError(t, f.orders.DeleteOrder(ctx, order.ID, u.ID))

	_, err = f.orders.GetOrder(ctx, order.ID, u.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 6, f.availability(t, p.ID))
	assert.Contains(t, f.events.types(), "order_deleted")
}

func TestCreateOrder_MergesOnlyPendingRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "buyer@shop.io")
	p := f.product(t, "3.00", 10)

	first := orderReq(p.ID, 2)
	first.ShippingType = models.ShippingExpress
	_, err := f.orders.CreateOrder(ctx, u.ID, first)
	require.NoError(t, err)

	shipped := orderReq(p.ID, 1)
	shipped.Status = models.StatusShipped
	order, err := f.orders.CreateOrder(ctx, u.ID, shipped)
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, models.StatusPending, order.Items[0].Status)
	assert.Equal(t, models.StatusShipped, order.Items[1].Status)

	order, err = f.orders.CreateOrder(ctx, u.ID, orderReq(p.ID, 1))
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, models.ShippingExpress, order.Items[0].ShippingType)
	assert.Equal(t, 6, f.availability(t, p.ID))
}

func TestUpdateOrder_ReduceWhenSoldOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "buyer@shop.io")
	p := f.product(t, "4.00", 5)

	order, err := f.orders.CreateOrder(ctx, u.ID, orderReq(p.ID, 5))
	require.NoError(t, err)
	require.Equal(t, 0, f.availability(t, p.ID))

	order, err = f.orders.UpdateOrder(ctx, order.ID, u.ID, transport.UpdateOrderRequest{Quantity: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, 0, f.availability(t, p.ID))

	order, err = f.orders.UpdateOrder(ctx, order.ID, u.ID, transport.UpdateOrderRequest{Quantity: ptr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 3, f.availability(t, p.ID))

	_, err = f.orders.UpdateOrder(ctx, order.ID, u.ID, transport.UpdateOrderRequest{Quantity: ptr(6)})
	require.ErrorIs(t, err, ErrInvalidField)
	assert.Equal(t, 3, f.availability(t, p.ID))
}

// bumpingOrders saves a fresh copy of the order right before each save, so
// the caller's copy is always one version behind.
type bumpingOrders struct {
	repo.Orders
}

func (b *bumpingOrders) SaveOrder(ctx context.Context, o *models.Order) error {
	fresh, err := b.Orders.GetOrder(ctx, o.ID)
	if err != nil {
		return err
	}
	if err := b.Orders.SaveOrder(ctx, fresh); err != nil {
		return err
	}
	return b.Orders.SaveOrder(ctx, o)
}

func TestCreateOrder_ReleasesStockOnConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "buyer@shop.io")
	p := f.product(t, "4.00", 10)

	_, err := f.orders.CreateOrder(ctx, u.ID, orderReq(p.ID, 2))
	require.NoError(t, err)
	require.Equal(t, 8, f.availability(t, p.ID))

	f.orders.Orders = &bumpingOrders{Orders: f.repo}
	_, err = f.orders.CreateOrder(ctx, u.ID, orderReq(p.ID, 3))
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 8, f.availability(t, p.ID))

	stored, err := f.repo.GetOrderByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 2, stored.Items[0].Quantity)
}

func TestUpdateOrder_ConflictLeavesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "buyer@shop.io")
	p := f.product(t, "4.00", 10)

	order, err := f.orders.CreateOrder(ctx, u.ID, orderReq(p.ID, 4))
	require.NoError(t, err)
	require.Equal(t, 6, f.availability(t, p.ID))

	f.orders.Orders = &bumpingOrders{Orders: f.repo}
	for _, qty := range []int{7, 1} {
		_, err = f.orders.UpdateOrder(ctx, order.ID, u.ID, transport.UpdateOrderRequest{Quantity: ptr(qty)})
		require.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, 6, f.availability(t, p.ID))
	}

	stored, err := f.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Items[0].Quantity)
}
