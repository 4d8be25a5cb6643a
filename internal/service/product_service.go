package service

import (
	"context"
	"fmt"
	"strings"

	"prepline/internal/model"
	"prepline/internal/repository"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	stats       StatsRefresher
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, stats StatsRefresher, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		stats:       stats,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// Menu returns the catalogue grouped by menu category, categories in
// first-seen order.
func (s *productService) Menu(ctx context.Context) (*model.Menu, error) {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}

	menu := &model.Menu{Products: make(map[string][]model.Product)}
	for _, p := range products {
		if _, ok := menu.Products[p.MenuCategory]; !ok {
			menu.Categories = append(menu.Categories, p.MenuCategory)
		}
		menu.Products[p.MenuCategory] = append(menu.Products[p.MenuCategory], p)
	}

	return menu, nil
}

// Restock adds stock to a product.
func (s *productService) Restock(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return model.ErrInvalidQuantity
	}

	if err := s.productRepo.Restock(ctx, productID, qty); err != nil {
		return err
	}

	s.stats.Refresh()
	s.logger.Info().Str("product_id", productID).Int("quantity", qty).Msg("product restocked")
	return nil
}

// Update applies a catalogue edit.
func (s *productService) Update(ctx context.Context, productID string, upd *model.ProductUpdate) error {
	if strings.TrimSpace(upd.Name) == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Product name is required")
	}
	if upd.Price < 0 {
		return model.NewDomainError(model.ErrCodeMissingField, "Price cannot be negative")
	}
	if upd.Stock < 0 {
		return model.ErrInvalidQuantity
	}
	if strings.TrimSpace(upd.DashboardCategory) == "" {
		return model.NewDomainError(model.ErrCodeInvalidCategory, "Dashboard category is required")
	}
	upd.DashboardCategory = normalizeCategory(upd.DashboardCategory)

	if err := s.productRepo.Update(ctx, productID, upd); err != nil {
		return err
	}

	s.stats.Refresh()
	return nil
}

// Delete removes a product from the catalogue. Historical order lines keep
// their snapshot of the product.
func (s *productService) Delete(ctx context.Context, productID string) error {
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return err
	}

	s.stats.Refresh()
	s.logger.Info().Str("product_id", productID).Msg("product deleted")
	return nil
}
