package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/camilovelasq/tienda-backend/internal/apperr"
	"github.com/camilovelasq/tienda-backend/internal/catalog"
	"github.com/camilovelasq/tienda-backend/internal/order"
)

// ProductGetter is the slice of the catalog the cart needs.
type ProductGetter interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

type Service interface {
	Add(ctx context.Context, userID, productID uuid.UUID, quantity int, size string) (*Item, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int, size string) error
	Remove(ctx context.Context, userID, productID uuid.UUID, size *string) error
	Clear(ctx context.Context, userID uuid.UUID) (int, error)
	Validate(ctx context.Context, userID uuid.UUID) ([]Issue, error)
	AutoAdjust(ctx context.Context, userID uuid.UUID) ([]Issue, error)
	Summary(ctx context.Context, userID uuid.UUID) (*Summary, error)
}

type service struct {
	repo          Repository
	products      ProductGetter
	freeThreshold float64
	shippingFee   float64
}

// NewService wires the cart. freeThreshold and shippingFee fall back to the
// package defaults when non-positive.
func NewService(repo Repository, products ProductGetter, freeThreshold, shippingFee float64) Service {
	if freeThreshold <= 0 {
		freeThreshold = DefaultFreeShippingThreshold
	}
	if shippingFee <= 0 {
		shippingFee = DefaultShippingFee
	}
	return &service{repo: repo, products: products, freeThreshold: freeThreshold, shippingFee: shippingFee}
}

func (s *service) Add(ctx context.Context, userID, productID uuid.UUID, quantity int, size string) (*Item, error) {
	if quantity < 1 {
		return nil, apperr.InvalidInput("quantity must be at least 1")
	}

	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Status != catalog.ProductActive {
		return nil, apperr.ProductUnavailable(p.Name)
	}

	existing, err := s.repo.GetItem(ctx, userID, productID, size)
	if err != nil && !errors.Is(err, apperr.NotFound("cart item")) {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to look up cart line")
		return nil, fmt.Errorf("service: failed to look up cart line: %w", err)
	}

	// Stock is checked against the quantity the line would end up with, not
	// just the increment.
	resulting := quantity
	if existing != nil {
		resulting += existing.Quantity
	}
	if p.Stock < resulting {
		return nil, apperr.InsufficientStock(p.Name, p.Stock, resulting)
	}

	if existing != nil {
		if err := s.repo.UpdateQuantity(ctx, existing.ID, resulting); err != nil {
			return nil, fmt.Errorf("service: failed to increment cart line: %w", err)
		}
		existing.Quantity = resulting
		return existing, nil
	}

	item := &Item{UserID: userID, ProductID: productID, Size: size, Quantity: quantity}
	if err := s.repo.Insert(ctx, item); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to insert cart line")
		return nil, fmt.Errorf("service: failed to insert cart line: %w", err)
	}
	return item, nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int, size string) error {
	if quantity <= 0 {
		return s.Remove(ctx, userID, productID, &size)
	}

	existing, err := s.repo.GetItem(ctx, userID, productID, size)
	if err != nil {
		return err
	}

	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	// The new quantity is absolute, so the check is against it directly.
	if p.Stock < quantity {
		return apperr.InsufficientStock(p.Name, p.Stock, quantity)
	}

	return s.repo.UpdateQuantity(ctx, existing.ID, quantity)
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID, size *string) error {
	removed, err := s.repo.DeleteByProduct(ctx, userID, productID, size)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to remove cart line")
		return fmt.Errorf("service: failed to remove cart line: %w", err)
	}
	if removed == 0 {
		return apperr.NotFound("cart item")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (int, error) {
	removed, err := s.repo.Clear(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to clear cart")
		return 0, fmt.Errorf("service: failed to clear cart: %w", err)
	}
	return removed, nil
}

// Validate reports lines whose product can no longer satisfy them. It never
// mutates the cart.
func (s *service) Validate(ctx context.Context, userID uuid.UUID) ([]Issue, error) {
	items, err := s.repo.GetItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to read cart: %w", err)
	}
	return classify(items), nil
}

// AutoAdjust removes unavailable lines and clamps low-stock lines down to
// what the product can satisfy, returning what it changed.
func (s *service) AutoAdjust(ctx context.Context, userID uuid.UUID) ([]Issue, error) {
	items, err := s.repo.GetItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to read cart: %w", err)
	}

	issues := classify(items)
	for _, issue := range issues {
		detail := findItem(items, issue.ProductID, issue.Size)
		if detail == nil {
			continue
		}
		switch issue.Kind {
		case IssueUnavailable:
			if err := s.repo.Delete(ctx, detail.ID); err != nil {
				return nil, fmt.Errorf("service: failed to drop unavailable line: %w", err)
			}
		case IssueLowStock:
			if err := s.repo.UpdateQuantity(ctx, detail.ID, issue.Available); err != nil {
				return nil, fmt.Errorf("service: failed to clamp low-stock line: %w", err)
			}
		}
	}

	if len(issues) > 0 {
		log.Info().Stringer("user_id", userID).Int("adjusted", len(issues)).Msg("service: cart auto-adjusted")
	}
	return issues, nil
}

func (s *service) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	items, err := s.repo.GetItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to read cart: %w", err)
	}

	summary := &Summary{Items: items}
	for _, d := range items {
		summary.Count += d.Quantity
		summary.Subtotal += order.Subtotal(d.Quantity, d.ProductPrice)
	}

	// Free shipping is inclusive at the threshold.
	summary.FreeShipping = summary.Subtotal >= s.freeThreshold
	if !summary.FreeShipping {
		summary.ShippingCost = s.shippingFee
	}
	summary.Total = summary.Subtotal + summary.ShippingCost
	return summary, nil
}

func classify(items []ItemDetail) []Issue {
	issues := make([]Issue, 0)
	for _, d := range items {
		available := d.ProductStock
		if d.ProductStatus != catalog.ProductActive {
			available = 0
		}
		switch {
		case available == 0:
			issues = append(issues, Issue{
				ProductID: d.ProductID, ProductName: d.ProductName, Size: d.Size,
				Requested: d.Quantity, Available: 0, Kind: IssueUnavailable,
			})
		case available < d.Quantity:
			issues = append(issues, Issue{
				ProductID: d.ProductID, ProductName: d.ProductName, Size: d.Size,
				Requested: d.Quantity, Available: available, Kind: IssueLowStock,
			})
		}
	}
	return issues
}

func findItem(items []ItemDetail, productID uuid.UUID, size string) *ItemDetail {
	for i := range items {
		if items[i].ProductID == productID && items[i].Size == size {
			return &items[i]
		}
	}
	return nil
}
