package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/camilovelasq/tienda-backend/internal/apperr"
)

type Service interface {
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	UpdateProduct(ctx context.Context, p *Product) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, int, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Product, error)

	CreateCategory(ctx context.Context, name string) (*Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name string, status ProductStatus) (*Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]Category, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if p.Status == "" {
		p.Status = ProductActive
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		log.Error().Err(err).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", p.ID).Str("name", p.Name).Msg("service: product created")
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to fetch product")
		return nil, fmt.Errorf("service: failed to fetch product: %w", err)
	}
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, p *Product) (*Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		log.Error().Err(err).Stringer("product_id", p.ID).Msg("service: failed to update product")
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return err
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}
	log.Info().Stringer("product_id", id).Msg("service: product deleted")
	return nil
}

func (s *service) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products")
		return nil, 0, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, total, nil
}

func (s *service) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Product, error) {
	if delta == 0 {
		return nil, apperr.InvalidInput("stock adjustment cannot be zero")
	}
	p, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		log.Error().Err(err).Stringer("product_id", id).Int("delta", delta).Msg("service: failed to adjust stock")
		return nil, fmt.Errorf("service: failed to adjust stock: %w", err)
	}
	log.Info().Stringer("product_id", id).Int("delta", delta).Int("stock", p.Stock).Msg("service: stock adjusted")
	return p, nil
}

func (s *service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	c := &Category{Name: name, Status: ProductActive}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		log.Error().Err(err).Str("name", name).Msg("service: failed to create category")
		return nil, fmt.Errorf("service: failed to create category: %w", err)
	}
	return c, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, name string, status ProductStatus) (*Category, error) {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to fetch category: %w", err)
	}

	c.Name = name
	c.Status = status
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		log.Error().Err(err).Stringer("category_id", id).Msg("service: failed to update category")
		return nil, fmt.Errorf("service: failed to update category: %w", err)
	}
	return c, nil
}

// DeleteCategory soft-deactivates a category that still has products, and
// removes it outright otherwise.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	count, err := s.repo.CountProductsInCategory(ctx, id)
	if err != nil {
		log.Error().Err(err).Stringer("category_id", id).Msg("service: failed to count products in category")
		return fmt.Errorf("service: failed to count products in category: %w", err)
	}

	if count > 0 {
		if err := s.repo.DeactivateCategory(ctx, id); err != nil {
			var ae *apperr.Error
			if errors.As(err, &ae) {
				return err
			}
			return fmt.Errorf("service: failed to deactivate category: %w", err)
		}
		log.Info().Stringer("category_id", id).Int("products", count).Msg("service: category deactivated, still referenced by products")
		return nil
	}

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return err
		}
		return fmt.Errorf("service: failed to delete category: %w", err)
	}
	log.Info().Stringer("category_id", id).Msg("service: category deleted")
	return nil
}

func (s *service) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list categories")
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}
	return categories, nil
}

func validateProduct(p *Product) error {
	if p.Price <= 0 {
		return apperr.InvalidInput("price must be greater than zero")
	}
	if p.OriginalPrice != nil && *p.OriginalPrice <= p.Price {
		return apperr.InvalidInput("original price must be greater than the current price")
	}
	if p.Stock < 0 {
		return apperr.InvalidInput("stock cannot be negative")
	}
	if p.Rating < 0 || p.Rating > 5 {
		return apperr.InvalidInput("rating must be between 0 and 5")
	}
	return nil
}
