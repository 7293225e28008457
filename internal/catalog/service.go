package catalog

import (
	"context"
	"errors"
	"strings"
)

// Service coordinates catalog operations.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new product after normalising its SKU.
func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	in.SKU = strings.ToUpper(strings.TrimSpace(in.SKU))
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" || in.Name == "" {
		return Product{}, errors.New("catalog: sku and name required")
	}
	if in.SellPrice < 0 || in.CostPrice < 0 {
		return Product{}, errors.New("catalog: prices must be >= 0")
	}
	if in.StockQty < 0 || in.MinStock < 0 {
		return Product{}, errors.New("catalog: stock levels must be >= 0")
	}
	return s.repo.Create(ctx, in)
}

// Get fetches an active product by id.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

// List returns products matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	return s.repo.List(ctx, filter)
}

// LowStock lists active products at or below their minimum level.
func (s *Service) LowStock(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx, ListFilter{LowStockOnly: true})
}
