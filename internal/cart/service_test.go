package cart_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camilovelasq/tienda-backend/internal/apperr"
	"github.com/camilovelasq/tienda-backend/internal/cart"
	"github.com/camilovelasq/tienda-backend/internal/catalog"
)

type mockRepository struct {
	getItemsFunc        func(ctx context.Context, userID uuid.UUID) ([]cart.ItemDetail, error)
	getItemFunc         func(ctx context.Context, userID, productID uuid.UUID, size string) (*cart.Item, error)
	insertFunc          func(ctx context.Context, item *cart.Item) error
	updateQuantityFunc  func(ctx context.Context, id uuid.UUID, quantity int) error
	deleteFunc          func(ctx context.Context, id uuid.UUID) error
	deleteByProductFunc func(ctx context.Context, userID, productID uuid.UUID, size *string) (int, error)
	clearFunc           func(ctx context.Context, userID uuid.UUID) (int, error)
}

func (m *mockRepository) GetItems(ctx context.Context, userID uuid.UUID) ([]cart.ItemDetail, error) {
	return m.getItemsFunc(ctx, userID)
}
func (m *mockRepository) GetItem(ctx context.Context, userID, productID uuid.UUID, size string) (*cart.Item, error) {
	return m.getItemFunc(ctx, userID, productID, size)
}
func (m *mockRepository) Insert(ctx context.Context, item *cart.Item) error {
	return m.insertFunc(ctx, item)
}
func (m *mockRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return m.updateQuantityFunc(ctx, id, quantity)
}
func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}
func (m *mockRepository) DeleteByProduct(ctx context.Context, userID, productID uuid.UUID, size *string) (int, error) {
	return m.deleteByProductFunc(ctx, userID, productID, size)
}
func (m *mockRepository) Clear(ctx context.Context, userID uuid.UUID) (int, error) {
	return m.clearFunc(ctx, userID)
}

type mockProducts struct {
	products map[uuid.UUID]*catalog.Product
}

func (m *mockProducts) GetProduct(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, apperr.NotFound("product")
	}
	return p, nil
}

var (
	userID    = uuid.Must(uuid.FromString("123e4567-e89b-12d3-a456-426614174000"))
	productID = uuid.Must(uuid.FromString("550e8400-e29b-41d4-a716-446655440000"))
)

func activeProduct(stock int) *mockProducts {
	return &mockProducts{products: map[uuid.UUID]*catalog.Product{
		productID: {ID: productID, Name: "Camiseta", Price: 100, Stock: stock, Status: catalog.ProductActive},
	}}
}

func noLine(_ context.Context, _, _ uuid.UUID, _ string) (*cart.Item, error) {
	return nil, apperr.NotFound("cart item")
}

func TestService_Add(t *testing.T) {
	t.Run("creates_new_line", func(t *testing.T) {
		var inserted *cart.Item
		repo := &mockRepository{
			getItemFunc: noLine,
			insertFunc: func(_ context.Context, item *cart.Item) error {
				inserted = item
				return nil
			},
		}
		svc := cart.NewService(repo, activeProduct(5), 0, 0)

		item, err := svc.Add(context.Background(), userID, productID, 2, "M")
		require.NoError(t, err)
		require.NotNil(t, inserted)
		assert.Equal(t, 2, item.Quantity)
		assert.Equal(t, "M", item.Size)
	})

	t.Run("increments_existing_line", func(t *testing.T) {
		lineID := uuid.Must(uuid.FromString("999e8400-e29b-41d4-a716-446655440000"))
		var updatedQty int
		repo := &mockRepository{
			getItemFunc: func(_ context.Context, _, _ uuid.UUID, size string) (*cart.Item, error) {
				return &cart.Item{ID: lineID, UserID: userID, ProductID: productID, Size: size, Quantity: 2}, nil
			},
			updateQuantityFunc: func(_ context.Context, id uuid.UUID, quantity int) error {
				assert.Equal(t, lineID, id)
				updatedQty = quantity
				return nil
			},
			insertFunc: func(_ context.Context, _ *cart.Item) error {
				t.Fatal("must increment the existing line, not insert a duplicate")
				return nil
			},
		}
		svc := cart.NewService(repo, activeProduct(5), 0, 0)

		item, err := svc.Add(context.Background(), userID, productID, 3, "M")
		require.NoError(t, err)
		assert.Equal(t, 5, updatedQty)
		assert.Equal(t, 5, item.Quantity)
	})

	t.Run("checks_stock_against_resulting_quantity", func(t *testing.T) {
		repo := &mockRepository{
			getItemFunc: func(_ context.Context, _, _ uuid.UUID, size string) (*cart.Item, error) {
				return &cart.Item{ID: uuid.Must(uuid.NewV4()), Quantity: 3, Size: size}, nil
			},
		}
		svc := cart.NewService(repo, activeProduct(5), 0, 0)

		// 3 already in cart + 3 more > 5 in stock.
		_, err := svc.Add(context.Background(), userID, productID, 3, "M")
		assert.True(t, errors.Is(err, apperr.InsufficientStock("", 0, 0)))
	})

	t.Run("rejects_inactive_product", func(t *testing.T) {
		products := &mockProducts{products: map[uuid.UUID]*catalog.Product{
			productID: {ID: productID, Name: "Camiseta", Stock: 5, Status: catalog.ProductInactive},
		}}
		svc := cart.NewService(&mockRepository{}, products, 0, 0)

		_, err := svc.Add(context.Background(), userID, productID, 1, "")
		assert.True(t, errors.Is(err, apperr.ProductUnavailable("")))
	})

	t.Run("rejects_zero_quantity", func(t *testing.T) {
		svc := cart.NewService(&mockRepository{}, activeProduct(5), 0, 0)
		_, err := svc.Add(context.Background(), userID, productID, 0, "")
		assert.True(t, errors.Is(err, apperr.InvalidInput("")))
	})
}

func TestService_UpdateQuantity(t *testing.T) {
	lineID := uuid.Must(uuid.FromString("999e8400-e29b-41d4-a716-446655440000"))

	t.Run("overwrites_with_absolute_quantity", func(t *testing.T) {
		var updatedQty int
		repo := &mockRepository{
			getItemFunc: func(_ context.Context, _, _ uuid.UUID, size string) (*cart.Item, error) {
				return &cart.Item{ID: lineID, Quantity: 4, Size: size}, nil
			},
			updateQuantityFunc: func(_ context.Context, _ uuid.UUID, quantity int) error {
				updatedQty = quantity
				return nil
			},
		}
		svc := cart.NewService(repo, activeProduct(5), 0, 0)

		// 4 in cart, 5 in stock: absolute 5 is fine even though +5 would not be.
		err := svc.UpdateQuantity(context.Background(), userID, productID, 5, "M")
		require.NoError(t, err)
		assert.Equal(t, 5, updatedQty)
	})

	t.Run("rejects_absolute_quantity_over_stock", func(t *testing.T) {
		repo := &mockRepository{
			getItemFunc: func(_ context.Context, _, _ uuid.UUID, size string) (*cart.Item, error) {
				return &cart.Item{ID: lineID, Quantity: 1, Size: size}, nil
			},
		}
		svc := cart.NewService(repo, activeProduct(5), 0, 0)

		err := svc.UpdateQuantity(context.Background(), userID, productID, 6, "M")
		assert.True(t, errors.Is(err, apperr.InsufficientStock("", 0, 0)))
	})

	t.Run("zero_or_negative_means_remove", func(t *testing.T) {
		var deleted bool
		repo := &mockRepository{
			deleteByProductFunc: func(_ context.Context, _, _ uuid.UUID, size *string) (int, error) {
				require.NotNil(t, size)
				assert.Equal(t, "M", *size)
				deleted = true
				return 1, nil
			},
		}
		svc := cart.NewService(repo, activeProduct(5), 0, 0)

		err := svc.UpdateQuantity(context.Background(), userID, productID, 0, "M")
		require.NoError(t, err)
		assert.True(t, deleted)
	})
}

func TestService_ValidateAndAutoAdjust(t *testing.T) {
	soldOut := uuid.Must(uuid.FromString("aaae8400-e29b-41d4-a716-446655440000"))
	lowStock := uuid.Must(uuid.FromString("bbbe8400-e29b-41d4-a716-446655440000"))
	healthy := uuid.Must(uuid.FromString("ccce8400-e29b-41d4-a716-446655440000"))

	details := []cart.ItemDetail{
		{Item: cart.Item{ID: uuid.Must(uuid.NewV4()), ProductID: soldOut, Quantity: 2}, ProductName: "Agotado", ProductStock: 0, ProductStatus: catalog.ProductActive},
		{Item: cart.Item{ID: uuid.Must(uuid.NewV4()), ProductID: lowStock, Quantity: 4}, ProductName: "Escaso", ProductStock: 2, ProductStatus: catalog.ProductActive},
		{Item: cart.Item{ID: uuid.Must(uuid.NewV4()), ProductID: healthy, Quantity: 1}, ProductName: "Sano", ProductStock: 10, ProductStatus: catalog.ProductActive},
	}

	t.Run("validate_classifies_without_mutating", func(t *testing.T) {
		repo := &mockRepository{
			getItemsFunc: func(_ context.Context, _ uuid.UUID) ([]cart.ItemDetail, error) {
				return details, nil
			},
			deleteFunc: func(_ context.Context, _ uuid.UUID) error {
				t.Fatal("validate must not mutate the cart")
				return nil
			},
			updateQuantityFunc: func(_ context.Context, _ uuid.UUID, _ int) error {
				t.Fatal("validate must not mutate the cart")
				return nil
			},
		}
		svc := cart.NewService(repo, activeProduct(5), 0, 0)

		issues, err := svc.Validate(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, issues, 2)
		assert.Equal(t, cart.IssueUnavailable, issues[0].Kind)
		assert.Equal(t, soldOut, issues[0].ProductID)
		assert.Equal(t, cart.IssueLowStock, issues[1].Kind)
		assert.Equal(t, 2, issues[1].Available)
	})

	t.Run("inactive_product_counts_as_unavailable", func(t *testing.T) {
		repo := &mockRepository{
			getItemsFunc: func(_ context.Context, _ uuid.UUID) ([]cart.ItemDetail, error) {
				return []cart.ItemDetail{
					{Item: cart.Item{ProductID: healthy, Quantity: 1}, ProductName: "Retirado", ProductStock: 10, ProductStatus: catalog.ProductInactive},
				}, nil
			},
		}
		svc := cart.NewService(repo, activeProduct(5), 0, 0)

		issues, err := svc.Validate(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, cart.IssueUnavailable, issues[0].Kind)
	})

	t.Run("auto_adjust_removes_and_clamps", func(t *testing.T) {
		var removed []uuid.UUID
		clamped := map[uuid.UUID]int{}
		repo := &mockRepository{
			getItemsFunc: func(_ context.Context, _ uuid.UUID) ([]cart.ItemDetail, error) {
				return details, nil
			},
			deleteFunc: func(_ context.Context, id uuid.UUID) error {
				removed = append(removed, id)
				return nil
			},
			updateQuantityFunc: func(_ context.Context, id uuid.UUID, quantity int) error {
				clamped[id] = quantity
				return nil
			},
		}
		svc := cart.NewService(repo, activeProduct(5), 0, 0)

		issues, err := svc.AutoAdjust(context.Background(), userID)
		require.NoError(t, err)
		assert.Len(t, issues, 2)
		require.Len(t, removed, 1)
		assert.Equal(t, details[0].ID, removed[0])
		assert.Equal(t, map[uuid.UUID]int{details[1].ID: 2}, clamped)
	})
}

func TestService_Summary(t *testing.T) {
	newSvc := func(subtotalItems []cart.ItemDetail) cart.Service {
		repo := &mockRepository{
			getItemsFunc: func(_ context.Context, _ uuid.UUID) ([]cart.ItemDetail, error) {
				return subtotalItems, nil
			},
		}
		return cart.NewService(repo, activeProduct(5), 0, 0)
	}

	t.Run("below_threshold_pays_shipping", func(t *testing.T) {
		svc := newSvc([]cart.ItemDetail{
			{Item: cart.Item{Quantity: 1}, ProductPrice: 199999},
		})
		summary, err := svc.Summary(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, 199999.0, summary.Subtotal)
		assert.False(t, summary.FreeShipping)
		assert.Equal(t, 15000.0, summary.ShippingCost)
		assert.Equal(t, 214999.0, summary.Total)
	})

	t.Run("threshold_is_inclusive", func(t *testing.T) {
		svc := newSvc([]cart.ItemDetail{
			{Item: cart.Item{Quantity: 2}, ProductPrice: 100000},
		})
		summary, err := svc.Summary(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, 200000.0, summary.Subtotal)
		assert.True(t, summary.FreeShipping)
		assert.Equal(t, 0.0, summary.ShippingCost)
		assert.Equal(t, 200000.0, summary.Total)
	})

	t.Run("empty_cart", func(t *testing.T) {
		svc := newSvc(nil)
		summary, err := svc.Summary(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, 0, summary.Count)
		assert.Equal(t, 0.0, summary.Subtotal)
		assert.Equal(t, 15000.0, summary.ShippingCost)
	})
}

func TestService_Clear(t *testing.T) {
	repo := &mockRepository{
		clearFunc: func(_ context.Context, _ uuid.UUID) (int, error) { return 3, nil },
	}
	svc := cart.NewService(repo, activeProduct(5), 0, 0)

	removed, err := svc.Clear(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
}
