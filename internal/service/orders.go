package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderService struct {
	Orders   repo.Orders
	Products repo.Products
	Users    repo.Users
	Events   Publisher
}

// CreateOrder reserves stock, then merges a pending request into a pending line
// with the same product, colour and size or appends a new line. The
// reservation is released when the order write fails.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "orders.create")

	if req.ProductID == "" {
		return nil, fmt.Errorf("product_id is required: %w", ErrValidation)
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrInvalidField)
	}
	status := req.Status
	if status == "" {
		status = models.StatusPending
	}
	shipping := req.ShippingType
	if shipping == "" {
		shipping = models.ShippingInStore
	}
	if err := checkEnums(status, shipping); err != nil {
		return nil, err
	}

	if _, err := s.Users.GetUser(ctx, userID); err != nil {
		return nil, mapRepoErr(err, "user")
	}
	product, err := s.Products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, mapRepoErr(err, "product")
	}
	colour, size, err := checkVariant(product, req.Colour, string(req.Size))
	if err != nil {
		return nil, err
	}
	if req.Quantity > product.Availability {
		return nil, fmt.Errorf("requested %d, available %d: %w", req.Quantity, product.Availability, ErrInsufficientStock)
	}

	order, err := s.Orders.GetOrderByUser(ctx, userID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		order = nil
	case err != nil:
		return nil, err
	}

	if err := s.Products.AdjustAvailability(ctx, product.ID, -req.Quantity); err != nil {
		return nil, mapRepoErr(err, "product")
	}

	if order == nil {
		order = &models.Order{UserID: userID}
		order.Items = append(order.Items, newOrderLine(product, req.Quantity, colour, size, status, shipping))
		err = s.Orders.CreateOrder(ctx, order)
	} else {
		var line *models.OrderItem
		if status == models.StatusPending {
			line = order.PendingMatch(product.ID, colour, size)
		}
		if line != nil {
			line.Quantity += req.Quantity
			line.Total = lineTotal(product.Price, line.Quantity)
			if req.ShippingType != "" {
				line.ShippingType = shipping
			}
		} else {
			order.Items = append(order.Items, newOrderLine(product, req.Quantity, colour, size, status, shipping))
		}
		err = s.Orders.SaveOrder(ctx, order)
	}
	if err != nil {
		s.restock(ctx, product.ID, req.Quantity)
		return nil, mapRepoErr(err, "order")
	}

	if err := s.Users.AddUserOrder(ctx, userID, order.ID); err != nil {
		l.Error("add_user_order_error", "user_id", userID, "order_id", order.ID, "error", err)
	}

	publish(ctx, s.Events, events.TopicOrders, userID, map[string]any{
		"type":      "order_created",
		"orderID":   order.ID,
		"userID":    userID,
		"productID": product.ID,
		"quantity":  req.Quantity,
	})
	return order, nil
}

// UpdateOrder edits one line, ItemID or else the first. Every field is
// checked against the line's product before anything is written.
func (s *OrderService) UpdateOrder(ctx context.Context, orderID, callerID string, req transport.UpdateOrderRequest) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, orderID, callerID)
	if err != nil {
		return nil, err
	}
	line := order.Item(req.ItemID)
	if line == nil {
		return nil, fmt.Errorf("order item: %w", ErrNotFound)
	}

	productID := line.ProductID
	if req.ProductID != nil {
		productID = *req.ProductID
	}
	product, err := s.Products.GetProduct(ctx, productID)
	if err != nil {
		return nil, mapRepoErr(err, "product")
	}

	quantity := line.Quantity
	if req.Quantity != nil {
		quantity = *req.Quantity
		if quantity < 1 {
			return nil, fmt.Errorf("quantity must be at least 1: %w", ErrInvalidField)
		}
	}

	colour, size := line.Colour, line.Size
	if req.Colour != nil {
		colour = *req.Colour
	}
	if req.Size != nil {
		size = string(*req.Size)
	}
	if colour, size, err = checkVariant(product, colour, size); err != nil {
		return nil, err
	}

	status, shipping := line.Status, line.ShippingType
	if req.Status != nil {
		status = *req.Status
	}
	if req.ShippingType != nil {
		shipping = *req.ShippingType
	}
	if err := checkEnums(status, shipping); err != nil {
		return nil, err
	}

	// charge is taken from product before the write; the old stock goes back
	// after it.
	oldProductID, oldQuantity := line.ProductID, line.Quantity
	charge, refund := quantity, oldQuantity
	if productID == oldProductID {
		charge, refund = max(quantity-oldQuantity, 0), max(oldQuantity-quantity, 0)
	}
	// Stock already held by the line does not count against availability.
	if charge > product.Availability {
		return nil, fmt.Errorf("quantity exceeds availability (%d): %w", product.Availability, ErrInvalidField)
	}

	if charge > 0 {
		if err := s.Products.AdjustAvailability(ctx, productID, -charge); err != nil {
			return nil, mapRepoErr(err, "product")
		}
	}

	line.ProductID = productID
	line.Quantity = quantity
	line.Colour = colour
	line.Size = size
	line.Status = status
	line.ShippingType = shipping
	line.Total = lineTotal(product.Price, quantity)

	if err := s.Orders.SaveOrder(ctx, order); err != nil {
		if charge > 0 {
			s.restock(ctx, productID, charge)
		}
		return nil, mapRepoErr(err, "order")
	}
	if refund > 0 {
		s.restock(ctx, oldProductID, refund)
	}

	publish(ctx, s.Events, events.TopicOrders, order.UserID, map[string]any{
		"type":      "order_updated",
		"orderID":   order.ID,
		"itemID":    line.ID,
		"productID": productID,
		"quantity":  quantity,
		"status":    status,
	})
	return order, nil
}

// DeleteOrder removes the aggregate; reserved stock stays consumed.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID, callerID string) error {
	order, err := s.ownedOrder(ctx, orderID, callerID)
	if err != nil {
		return err
	}
	if err := s.Orders.DeleteOrder(ctx, order.ID); err != nil {
		return mapRepoErr(err, "order")
	}
	publish(ctx, s.Events, events.TopicOrders, order.UserID, map[string]any{
		"type":    "order_deleted",
		"orderID": order.ID,
		"userID":  order.UserID,
	})
	return nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID, callerID string) (*models.Order, error) {
	return s.ownedOrder(ctx, orderID, callerID)
}

func (s *OrderService) GetUserOrder(ctx context.Context, userID, callerID string) (*models.Order, error) {
	if err := forbidUnlessOwner(userID, callerID, "order"); err != nil {
		return nil, err
	}
	order, err := s.Orders.GetOrderByUser(ctx, userID)
	return order, mapRepoErr(err, "order")
}

func (s *OrderService) ListOrders(ctx context.Context, offset, limit int) (int64, []models.Order, error) {
	return s.Orders.ListOrders(ctx, offset, limit)
}

func (s *OrderService) ownedOrder(ctx context.Context, orderID, callerID string) (*models.Order, error) {
	order, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, mapRepoErr(err, "order")
	}
	if err := forbidUnlessOwner(order.UserID, callerID, "order"); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) restock(ctx context.Context, productID string, quantity int) {
	if err := s.Products.AdjustAvailability(ctx, productID, quantity); err != nil {
		logging.FromContext(ctx).Error("restock_error", "product_id", productID, "quantity", quantity, "error", err)
	}
}

func newOrderLine(p *models.Product, quantity int, colour, size, status, shipping string) models.OrderItem {
	return models.OrderItem{
		ProductID:    p.ID,
		Quantity:     quantity,
		Colour:       colour,
		Size:         size,
		Total:        lineTotal(p.Price, quantity),
		Status:       status,
		ShippingType: shipping,
	}
}

// checkVariant normalizes colour and size and checks both against the product.
func checkVariant(p *models.Product, colour, size string) (string, string, error) {
	colour = normalizeColour(colour)
	if colour == "" || !p.HasColour(colour) {
		return "", "", fmt.Errorf("colour %q is not offered for this product: %w", colour, ErrInvalidField)
	}
	canon, ok := normalizeSize(size)
	if !ok || !p.HasSize(canon) {
		return "", "", fmt.Errorf("size %q is not offered for this product: %w", size, ErrInvalidField)
	}
	return colour, canon, nil
}

func checkEnums(status, shipping string) error {
	if !oneOf(status, models.OrderStatuses) {
		return fmt.Errorf("status must be one of %v: %w", models.OrderStatuses, ErrInvalidField)
	}
	if !oneOf(shipping, models.ShippingTypes) {
		return fmt.Errorf("shipping_type must be one of %v: %w", models.ShippingTypes, ErrInvalidField)
	}
	return nil
}
