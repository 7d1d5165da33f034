package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

func TestFavourites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "buyer@shop.io")
	a := f.product(t, "1.00", 1)
	b := f.product(t, "2.00", 1)

	_, err := f.favourite.AddFavourite(ctx, u.ID, u.ID, b.ID)
	require.NoError(t, err)
	_, err = f.favourite.AddFavourite(ctx, u.ID, u.ID, a.ID)
	require.NoError(t, err)
	got, err := f.favourite.AddFavourite(ctx, u.ID, u.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{b.ID, a.ID}, got.Favourites)

	list, err := f.favourite.ListFavourites(ctx, u.ID, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)

	_, err = f.favourite.AddFavourite(ctx, u.ID, u.ID, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	other := f.user(t, "other@shop.io")
	_, err = f.favourite.ListFavourites(ctx, u.ID, other.ID)
	require.ErrorIs(t, err, ErrForbidden)

	got, err = f.favourite.RemoveFavourite(ctx, u.ID, u.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{a.ID}, got.Favourites)

	list, err = f.favourite.ListFavourites(ctx, u.ID, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
