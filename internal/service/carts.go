package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/events"
)

type CartService struct {
	Carts    repo.Carts
	Products repo.Products
	Users    repo.Users
	Events   Publisher
}

// AddToCart increments an existing line for the product or appends a new one,
// creating the user's cart on first use. Stock is not checked here.
func (s *CartService) AddToCart(ctx context.Context, userID string, req transport.AddToCartRequest) (*models.Cart, error) {
	if req.ProductID == "" {
		return nil, fmt.Errorf("product_id is required: %w", ErrValidation)
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}
	if _, err := s.Users.GetUser(ctx, userID); err != nil {
		return nil, mapRepoErr(err, "user")
	}
	product, err := s.Products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, mapRepoErr(err, "product")
	}

	cart, err := s.Carts.GetCartByUser(ctx, userID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		cart = nil
	case err != nil:
		return nil, err
	}

	if cart != nil {
		if line := cart.Item(product.ID); line != nil {
			line.Quantity += req.Quantity
			line.Total = lineTotal(product.Price, line.Quantity)
			cart.Recalculate()
			if err := s.Carts.SaveCart(ctx, cart); err != nil {
				return nil, mapRepoErr(err, "cart")
			}
			s.published(ctx, "cart_item_added", cart, product.ID, line.Quantity)
			return cart, nil
		}
	}

	cart, err = s.Carts.AppendCartItem(ctx, userID, models.CartItem{
		ProductID: product.ID,
		Quantity:  req.Quantity,
		Total:     lineTotal(product.Price, req.Quantity),
	})
	if err != nil {
		return nil, mapRepoErr(err, "cart")
	}
	s.published(ctx, "cart_item_added", cart, product.ID, req.Quantity)
	return cart, nil
}

// UpdateCart overwrites the quantity of the line holding productID.
func (s *CartService) UpdateCart(ctx context.Context, cartID, callerID string, req transport.UpdateCartRequest) (*models.Cart, error) {
	if req.ProductID == "" {
		return nil, fmt.Errorf("product_id is required: %w", ErrValidation)
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrInvalidField)
	}

	cart, err := s.ownedCart(ctx, cartID, callerID)
	if err != nil {
		return nil, err
	}
	line := cart.Item(req.ProductID)
	if line == nil {
		return nil, fmt.Errorf("cart item: %w", ErrNotFound)
	}
	product, err := s.Products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, mapRepoErr(err, "product")
	}
	if req.Quantity > product.Availability {
		return nil, fmt.Errorf("quantity exceeds availability (%d): %w", product.Availability, ErrInvalidField)
	}

	line.Quantity = req.Quantity
	line.Total = lineTotal(product.Price, req.Quantity)
	cart.Recalculate()
	if err := s.Carts.SaveCart(ctx, cart); err != nil {
		return nil, mapRepoErr(err, "cart")
	}
	s.published(ctx, "cart_updated", cart, product.ID, req.Quantity)
	return cart, nil
}

func (s *CartService) RemoveCartItem(ctx context.Context, cartID, callerID, productID string) (*models.Cart, error) {
	cart, err := s.ownedCart(ctx, cartID, callerID)
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	for _, it := range cart.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(cart.Items) {
		return nil, fmt.Errorf("cart item: %w", ErrNotFound)
	}
	cart.Items = kept
	cart.Recalculate()

	if err := s.Carts.SaveCart(ctx, cart); err != nil {
		return nil, mapRepoErr(err, "cart")
	}
	s.published(ctx, "cart_item_removed", cart, productID, 0)
	return cart, nil
}

func (s *CartService) DeleteCart(ctx context.Context, cartID, callerID string) error {
	cart, err := s.ownedCart(ctx, cartID, callerID)
	if err != nil {
		return err
	}
	if err := s.Carts.DeleteCart(ctx, cart.ID); err != nil {
		return mapRepoErr(err, "cart")
	}
	publish(ctx, s.Events, events.TopicCarts, cart.UserID, map[string]any{
		"type":   "cart_deleted",
		"cartID": cart.ID,
		"userID": cart.UserID,
	})
	return nil
}

func (s *CartService) GetCart(ctx context.Context, cartID, callerID string) (*models.Cart, error) {
	return s.ownedCart(ctx, cartID, callerID)
}

func (s *CartService) GetUserCart(ctx context.Context, userID, callerID string) (*models.Cart, error) {
	if err := forbidUnlessOwner(userID, callerID, "cart"); err != nil {
		return nil, err
	}
	cart, err := s.Carts.GetCartByUser(ctx, userID)
	return cart, mapRepoErr(err, "cart")
}

func (s *CartService) ListCarts(ctx context.Context, offset, limit int) (int64, []models.Cart, error) {
	return s.Carts.ListCarts(ctx, offset, limit)
}

func (s *CartService) ownedCart(ctx context.Context, cartID, callerID string) (*models.Cart, error) {
	cart, err := s.Carts.GetCart(ctx, cartID)
	if err != nil {
		return nil, mapRepoErr(err, "cart")
	}
	if err := forbidUnlessOwner(cart.UserID, callerID, "cart"); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) published(ctx context.Context, kind string, cart *models.Cart, productID string, quantity int) {
	publish(ctx, s.Events, events.TopicCarts, cart.UserID, map[string]any{
		"type":       kind,
		"cartID":     cart.ID,
		"userID":     cart.UserID,
		"productID":  productID,
		"quantity":   quantity,
		"grandTotal": cart.GrandTotal.String(),
	})
}
