package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/camilovelasq/tienda-backend/internal/apperr"
	"github.com/camilovelasq/tienda-backend/internal/order"
)

type Repository interface {
	GetItems(ctx context.Context, userID uuid.UUID) ([]ItemDetail, error)
	GetItem(ctx context.Context, userID, productID uuid.UUID, size string) (*Item, error)
	Insert(ctx context.Context, item *Item) error
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProduct(ctx context.Context, userID, productID uuid.UUID, size *string) (int, error)
	Clear(ctx context.Context, userID uuid.UUID) (int, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetItems(ctx context.Context, userID uuid.UUID) ([]ItemDetail, error) {
	query := `
		SELECT c.id, c.user_id, c.product_id, c.size, c.quantity, c.created_at, c.updated_at,
		       p.name, p.price, p.stock, p.status, p.image_url
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query cart items for user %s: %w", userID, err)
	}
	defer rows.Close()

	items := make([]ItemDetail, 0)
	for rows.Next() {
		var d ItemDetail
		err := rows.Scan(
			&d.ID, &d.UserID, &d.ProductID, &d.Size, &d.Quantity, &d.CreatedAt, &d.UpdatedAt,
			&d.ProductName, &d.ProductPrice, &d.ProductStock, &d.ProductStatus, &d.ImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart item: %w", err)
		}
		d.LineSubtotal = order.Subtotal(d.Quantity, d.ProductPrice)
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating cart items: %w", err)
	}
	return items, nil
}

func (r *postgresRepository) GetItem(ctx context.Context, userID, productID uuid.UUID, size string) (*Item, error) {
	query := `
		SELECT id, user_id, product_id, size, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1 AND product_id = $2 AND size = $3
	`
	var item Item
	err := r.db.QueryRow(ctx, query, userID, productID, size).Scan(
		&item.ID, &item.UserID, &item.ProductID, &item.Size, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("cart item")
		}
		return nil, fmt.Errorf("repository: failed to select cart item: %w", err)
	}
	return &item, nil
}

func (r *postgresRepository) Insert(ctx context.Context, item *Item) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate cart item id: %w", err)
	}
	item.ID = id
	item.CreatedAt = time.Now().UTC()
	item.UpdatedAt = item.CreatedAt

	query := `
		INSERT INTO cart_items (id, user_id, product_id, size, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.Exec(ctx, query,
		item.ID, item.UserID, item.ProductID, item.Size, item.Quantity, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert cart item: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `UPDATE cart_items SET quantity = $1, updated_at = $2 WHERE id = $3`
	cmdTag, err := r.db.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("repository: failed to update cart item %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperr.NotFound("cart item")
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete cart item %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperr.NotFound("cart item")
	}
	return nil
}

func (r *postgresRepository) DeleteByProduct(ctx context.Context, userID, productID uuid.UUID, size *string) (int, error) {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`
	args := []any{userID, productID}
	if size != nil {
		query += ` AND size = $3`
		args = append(args, *size)
	}
	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to delete cart items for product %s: %w", productID, err)
	}
	return int(cmdTag.RowsAffected()), nil
}

func (r *postgresRepository) Clear(ctx context.Context, userID uuid.UUID) (int, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to clear cart for user %s: %w", userID, err)
	}
	return int(cmdTag.RowsAffected()), nil
}
