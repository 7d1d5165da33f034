package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type stubIndex struct {
	indexed []string
	deleted []string
	hits    []models.Product
	err     error
}

func (s *stubIndex) IndexProduct(_ context.Context, p *models.Product) error {
	s.indexed = append(s.indexed, p.ID)
	return s.err
}

func (s *stubIndex) DeleteProduct(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func (s *stubIndex) SearchProducts(context.Context, string, int, int) (int64, []models.Product, error) {
	if s.err != nil {
		return 0, nil, s.err
	}
	return int64(len(s.hits)), s.hits, nil
}

func TestCreateProduct_NormalizesAndDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.products.CreateProduct(ctx, transport.CreateProductRequest{
		Name:        "Boots",
		Description: "Leather",
		Price:       decimal.RequireFromString("99.90"),
		Category:    transport.Category{Main: "shoes"},
		Colours:     []string{" Brown", "brown", "BLACK"},
		Sizes:       []transport.SizeToken{"42", "42.0", "xl"},
		Images:      []string{"a.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Availability)
	assert.Equal(t, models.StringList{"brown", "black"}, p.Colours)
	assert.Equal(t, models.StringList{"42", "XL"}, p.Sizes)

	cases := map[string]transport.CreateProductRequest{
		"no images":      {Name: "x", Description: "y", Category: transport.Category{Main: "z"}},
		"missing name":   {Description: "y", Category: transport.Category{Main: "z"}, Images: []string{"a"}},
		"bad size":       {Name: "x", Description: "y", Category: transport.Category{Main: "z"}, Images: []string{"a"}, Sizes: []transport.SizeToken{"huge"}},
		"negative stock": {Name: "x", Description: "y", Category: transport.Category{Main: "z"}, Images: []string{"a"}, Availability: ptr(-1)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.products.CreateProduct(ctx, req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidField))
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	idx := &stubIndex{}
	f.products.Index = idx
	p := f.product(t, "5.00", 3)

	got, err := f.products.UpdateProduct(ctx, p.ID, transport.PatchProductRequest{
		Price:    ptr(decimal.RequireFromString("7.50")),
		Category: &transport.CategoryPatch{Sub: ptr("tees")},
		Colours:  []string{"Green"},
	})
	require.NoError(t, err)
	assert.Equal(t, "clothing", got.Category.Main)
	assert.Equal(t, "tees", got.Category.Sub)
	assert.Equal(t, models.StringList{"green"}, got.Colours)
	assert.Equal(t, models.StringList{"M", "42"}, got.Sizes)

	stored, err := f.products.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimalEq("7.5", stored.Price))
	assert.Equal(t, []string{p.ID, p.ID}, idx.indexed)

	_, err = f.products.UpdateProduct(ctx, p.ID, transport.PatchProductRequest{Availability: ptr(-2)})
	require.ErrorIs(t, err, ErrInvalidField)
	_, err = f.products.UpdateProduct(ctx, "missing", transport.PatchProductRequest{})
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.products.DeleteProduct(ctx, p.ID))
	assert.Equal(t, []string{p.ID}, idx.deleted)
	require.ErrorIs(t, f.products.DeleteProduct(ctx, p.ID), ErrNotFound)
}

// racingProducts runs afterRead once, right after the first product read.
type racingProducts struct {
	repo.Products
	afterRead func()
}

func (r *racingProducts) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := r.Products.GetProduct(ctx, id)
	if r.afterRead != nil {
		hook := r.afterRead
		r.afterRead = nil
		hook()
	}
	return p, err
}

func TestUpdateProduct_KeepsConcurrentOrderDecrement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "buyer@shop.io")
	p := f.product(t, "5.00", 5)

	f.products.Repo = &racingProducts{Products: f.repo, afterRead: func() {
		_, err := f.orders.CreateOrder(ctx, u.ID, orderReq(p.ID, 3))
		require.NoError(t, err)
	}}

	got, err := f.products.UpdateProduct(ctx, p.ID, transport.PatchProductRequest{Name: ptr("Linen shirt v2")})
	require.NoError(t, err)
	assert.Equal(t, "Linen shirt v2", got.Name)
	assert.Equal(t, 2, got.Availability)
	assert.Equal(t, 2, f.availability(t, p.ID))

	_, err = f.orders.CreateOrder(ctx, u.ID, orderReq(p.ID, 3))
	require.ErrorIs(t, err, ErrInsufficientStock)
}

func TestUpdateProduct_SetsAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "5.00", 5)

	got, err := f.products.UpdateProduct(ctx, p.ID, transport.PatchProductRequest{Availability: ptr(12)})
	require.NoError(t, err)
	assert.Equal(t, 12, got.Availability)
	assert.Equal(t, 12, f.availability(t, p.ID))
}

func TestSearchProducts_FallsBackToStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "5.00", 3)

	idx := &stubIndex{hits: []models.Product{{ID: "from-index"}}}
	f.products.Index = idx
	total, hits, err := f.products.SearchProducts(ctx, "linen", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "from-index", hits[0].ID)

	idx.err = errors.New("cluster down")
	total, hits, err = f.products.SearchProducts(ctx, "linen", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, p.ID, hits[0].ID)

	_, _, err = f.products.SearchProducts(ctx, "  ", 0, 10)
	require.ErrorIs(t, err, ErrValidation)
}
