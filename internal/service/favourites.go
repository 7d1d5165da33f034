package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/events"
)

type FavouriteService struct {
	Users    repo.Users
	Products repo.Products
	Events   Publisher
}

// AddFavourite is idempotent; the product must exist.
func (s *FavouriteService) AddFavourite(ctx context.Context, userID, callerID, productID string) (*models.User, error) {
	if err := forbidUnlessOwner(userID, callerID, "favourites"); err != nil {
		return nil, err
	}
	if productID == "" {
		return nil, fmt.Errorf("product_id is required: %w", ErrValidation)
	}
	if _, err := s.Products.GetProduct(ctx, productID); err != nil {
		return nil, mapRepoErr(err, "product")
	}
	u, err := s.Users.AddFavourite(ctx, userID, productID)
	if err != nil {
		return nil, mapRepoErr(err, "user")
	}
	publish(ctx, s.Events, events.TopicUsers, userID, map[string]any{
		"type":      "favourite_added",
		"userID":    userID,
		"productID": productID,
	})
	return u, nil
}

func (s *FavouriteService) RemoveFavourite(ctx context.Context, userID, callerID, productID string) (*models.User, error) {
	if err := forbidUnlessOwner(userID, callerID, "favourites"); err != nil {
		return nil, err
	}
	u, err := s.Users.RemoveFavourite(ctx, userID, productID)
	if err != nil {
		return nil, mapRepoErr(err, "user")
	}
	publish(ctx, s.Events, events.TopicUsers, userID, map[string]any{
		"type":      "favourite_removed",
		"userID":    userID,
		"productID": productID,
	})
	return u, nil
}

// ListFavourites returns the favourite products in the order they were added.
// Products deleted since are skipped.
func (s *FavouriteService) ListFavourites(ctx context.Context, userID, callerID string) ([]models.Product, error) {
	if err := forbidUnlessOwner(userID, callerID, "favourites"); err != nil {
		return nil, err
	}
	u, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(err, "user")
	}
	if len(u.Favourites) == 0 {
		return []models.Product{}, nil
	}

	found, err := s.Products.GetProductsByIDs(ctx, u.Favourites)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range u.Favourites {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
