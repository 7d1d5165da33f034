package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const defaultAvailability = 1

// ProductIndex is the full-text search backend kept in sync with the store.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	SearchProducts(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type ProductService struct {
	Repo   repo.Products
	Index  ProductIndex
	Events Publisher
}

func (s *ProductService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	p := &models.Product{
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		Price:        req.Price,
		Category:     models.Category{Main: strings.TrimSpace(req.Category.Main), Sub: strings.TrimSpace(req.Category.Sub)},
		Availability: defaultAvailability,
	}
	if p.Name == "" || p.Description == "" || p.Category.Main == "" {
		return nil, fmt.Errorf("name, description and category.main are required: %w", ErrValidation)
	}
	if req.Availability != nil {
		p.Availability = *req.Availability
	}
	if err := checkStockAndPrice(p.Price, p.Availability); err != nil {
		return nil, err
	}

	var err error
	if p.Colours, err = normalizeColours(req.Colours); err != nil {
		return nil, err
	}
	if p.Sizes, err = normalizeSizes(req.Sizes); err != nil {
		return nil, err
	}
	if p.Images, err = normalizeImages(req.Images); err != nil {
		return nil, err
	}

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	s.index(ctx, p)
	publish(ctx, s.Events, events.TopicProducts, p.ID, map[string]any{
		"type":      "product_created",
		"productID": p.ID,
		"name":      p.Name,
	})
	return p, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	return p, mapRepoErr(err, "product")
}

func (s *ProductService) ListProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, offset, limit)
}

// SearchProducts prefers the search index and falls back to the store when
// the index is absent or failing.
func (s *ProductService) SearchProducts(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("query must not be empty: %w", ErrValidation)
	}
	if s.Index != nil {
		total, found, err := s.Index.SearchProducts(ctx, query, offset, limit)
		if err == nil {
			return total, found, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "query", query, "error", err)
	}
	return s.Repo.SearchProducts(ctx, query, offset, limit)
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, req transport.PatchProductRequest) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "product")
	}

	if req.Name != nil {
		if p.Name = strings.TrimSpace(*req.Name); p.Name == "" {
			return nil, fmt.Errorf("name must not be empty: %w", ErrInvalidField)
		}
	}
	if req.Description != nil {
		if p.Description = strings.TrimSpace(*req.Description); p.Description == "" {
			return nil, fmt.Errorf("description must not be empty: %w", ErrInvalidField)
		}
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	availability := p.Availability
	if req.Availability != nil {
		availability = *req.Availability
	}
	if err := checkStockAndPrice(p.Price, availability); err != nil {
		return nil, err
	}
	if req.Category != nil {
		if req.Category.Main != nil {
			if p.Category.Main = strings.TrimSpace(*req.Category.Main); p.Category.Main == "" {
				return nil, fmt.Errorf("category.main must not be empty: %w", ErrInvalidField)
			}
		}
		if req.Category.Sub != nil {
			p.Category.Sub = strings.TrimSpace(*req.Category.Sub)
		}
	}
	if req.Colours != nil {
		if p.Colours, err = normalizeColours(req.Colours); err != nil {
			return nil, err
		}
	}
	if req.Sizes != nil {
		if p.Sizes, err = normalizeSizes(req.Sizes); err != nil {
			return nil, err
		}
	}
	if req.Images != nil {
		if p.Images, err = normalizeImages(req.Images); err != nil {
			return nil, err
		}
	}

	// availability in p is a snapshot; orders may have moved it since.
	if err := s.Repo.UpdateProduct(ctx, p); err != nil {
		return nil, mapRepoErr(err, "product")
	}
	if req.Availability != nil {
		if err := s.Repo.SetAvailability(ctx, p.ID, *req.Availability); err != nil {
			return nil, mapRepoErr(err, "product")
		}
	}
	if p, err = s.Repo.GetProduct(ctx, id); err != nil {
		return nil, mapRepoErr(err, "product")
	}

	s.index(ctx, p)
	publish(ctx, s.Events, events.TopicProducts, p.ID, map[string]any{
		"type":      "product_updated",
		"productID": p.ID,
		"name":      p.Name,
	})
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return mapRepoErr(err, "product")
	}
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_unindex_error", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProducts, id, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

func (s *ProductService) index(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "product_id", p.ID, "error", err)
	}
}

func checkStockAndPrice(price decimal.Decimal, availability int) error {
	if price.IsNegative() {
		return fmt.Errorf("price must not be negative: %w", ErrInvalidField)
	}
	if availability < 0 {
		return fmt.Errorf("availability must not be negative: %w", ErrInvalidField)
	}
	return nil
}

func normalizeColours(in []string) (models.StringList, error) {
	out := models.StringList{}
	for _, c := range in {
		c = normalizeColour(c)
		if c == "" {
			return nil, fmt.Errorf("colours must not contain blanks: %w", ErrInvalidField)
		}
		out.Add(c)
	}
	return out, nil
}

func normalizeSizes(in []transport.SizeToken) (models.StringList, error) {
	out := models.StringList{}
	for _, raw := range in {
		size, ok := normalizeSize(string(raw))
		if !ok {
			return nil, fmt.Errorf("size %q is neither a letter size nor a number: %w", raw, ErrInvalidField)
		}
		out.Add(size)
	}
	return out, nil
}

func normalizeImages(in []string) (models.StringList, error) {
	out := models.StringList{}
	for _, img := range in {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one image is required: %w", ErrValidation)
	}
	return out, nil
}
