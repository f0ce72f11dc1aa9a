package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/camilovelasq/tienda-backend/internal/apperr"
	"github.com/camilovelasq/tienda-backend/internal/catalog"
)

type Repository interface {
	// Create runs the whole checkout transaction: lock and validate every
	// product, snapshot it into line rows, decrement stock, commit. Any
	// failure rolls back everything.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]Order, int, error)
	List(ctx context.Context, status *Status, page, limit int) ([]Order, int, error)
	// UpdateStatus moves id from→to, failing with Conflict if the row is no
	// longer in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, reason *string) error
	// Cancel re-checks cancellability under a row lock, flips the status and
	// restores every line's stock, all in one transaction.
	Cancel(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// withTx wraps fn in a transaction with rollback on error or panic.
func (r *postgresRepository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("repository: failed to rollback after panic")
			}
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("repository: failed to rollback transaction")
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()
	err = fn(tx)
	return err
}

func (r *postgresRepository) Create(ctx context.Context, o *Order) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		now := time.Now().UTC()

		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate order id: %w", err)
		}
		o.ID = id
		o.CreatedAt = now
		o.UpdatedAt = now
		o.Subtotal = 0

		// Lock every product row first. The row lock serializes concurrent
		// checkouts of the same product so the stock check below cannot be
		// invalidated between read and decrement. The check runs against the
		// per-product total: the same product on two size lines must not pass
		// two independent checks against the same stock value.
		totals := TotalsByProduct(o.Items)
		lockQuery := `
			SELECT name, description, image_url, price, stock, status
			FROM products
			WHERE id = $1
			FOR UPDATE
		`
		for i := range o.Items {
			item := &o.Items[i]

			var (
				name, description, imageURL string
				price                       float64
				stock                       int
				status                      catalog.ProductStatus
			)
			err := tx.QueryRow(ctx, lockQuery, item.ProductID).Scan(
				&name, &description, &imageURL, &price, &stock, &status,
			)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperr.NotFound("product " + item.ProductID.String())
				}
				return fmt.Errorf("repository: failed to lock product %s: %w", item.ProductID, err)
			}
			if status != catalog.ProductActive {
				return apperr.ProductUnavailable(name)
			}
			if required := totals[item.ProductID]; stock < required {
				return apperr.InsufficientStock(name, stock, required)
			}

			itemID, err := uuid.NewV4()
			if err != nil {
				return fmt.Errorf("repository: failed to generate order item id: %w", err)
			}
			item.ID = itemID
			item.OrderID = o.ID
			item.ProductName = name
			item.ProductDescription = description
			item.ProductImageURL = imageURL
			item.UnitPrice = price
			item.Subtotal = Subtotal(item.Quantity, price)
			o.Subtotal += item.Subtotal
		}
		// Shipping and tax are presented by the cart summary, not stored on
		// the order.
		o.Total = o.Subtotal

		orderQuery := `
			INSERT INTO orders (id, number, user_id, customer_name, customer_email, customer_phone,
			                    shipping_address, shipping_city, payment_method, status, subtotal, total,
			                    reject_reason, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`
		_, err = tx.Exec(ctx, orderQuery,
			o.ID, o.Number, o.UserID, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
			o.ShippingAddress, o.ShippingCity, o.PaymentMethod, string(o.Status), o.Subtotal, o.Total,
			o.RejectReason, o.CreatedAt, o.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return apperr.Conflict("order number already exists")
			}
			return fmt.Errorf("repository: failed to insert order: %w", err)
		}

		itemQuery := `
			INSERT INTO order_items (id, order_id, product_id, product_name, product_description,
			                         product_image_url, size, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		stockQuery := `UPDATE products SET stock = stock - $1, updated_at = $2 WHERE id = $3`
		for i := range o.Items {
			item := &o.Items[i]
			_, err = tx.Exec(ctx, itemQuery,
				item.ID, item.OrderID, item.ProductID, item.ProductName, item.ProductDescription,
				item.ProductImageURL, item.Size, item.Quantity, item.UnitPrice, item.Subtotal,
			)
			if err != nil {
				return fmt.Errorf("repository: failed to insert order item for order %s: %w", o.ID, err)
			}
			if _, err = tx.Exec(ctx, stockQuery, item.Quantity, now, item.ProductID); err != nil {
				return fmt.Errorf("repository: failed to decrement stock for product %s: %w", item.ProductID, err)
			}
		}
		return nil
	})
}

const orderColumns = `id, number, user_id, customer_name, customer_email, customer_phone,
	shipping_address, shipping_city, payment_method, status, subtotal, total,
	reject_reason, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.Number, &o.UserID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.ShippingAddress, &o.ShippingCity, &o.PaymentMethod, &o.Status, &o.Subtotal, &o.Total,
		&o.RejectReason, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *postgresRepository) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return r.getBy(ctx, "number = $1", number)
}

// getBy returns the order together with its lines via two sequenced queries,
// so the aggregate shape is explicit at the call site.
func (r *postgresRepository) getBy(ctx context.Context, where string, arg any) (*Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("order")
		}
		return nil, fmt.Errorf("repository: failed to select order: %w", err)
	}

	items, err := r.itemsFor(ctx, []uuid.UUID{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	if o.Items == nil {
		o.Items = []Item{}
	}
	return o, nil
}

func (r *postgresRepository) itemsFor(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]Item, error) {
	query := `
		SELECT id, order_id, product_id, product_name, product_description,
		       product_image_url, size, quantity, unit_price, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
	`
	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]Item)
	for rows.Next() {
		var item Item
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.ProductDescription,
			&item.ProductImageURL, &item.Size, &item.Quantity, &item.UnitPrice, &item.Subtotal,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}
	return result, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]Order, int, error) {
	return r.list(ctx, "user_id = $1", []any{userID}, page, limit)
}

func (r *postgresRepository) List(ctx context.Context, status *Status, page, limit int) ([]Order, int, error) {
	if status != nil {
		return r.list(ctx, "status = $1", []any{string(*status)}, page, limit)
	}
	return r.list(ctx, "TRUE", nil, page, limit)
}

func (r *postgresRepository) list(ctx context.Context, where string, args []any, page, limit int) ([]Order, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count orders: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	var orderIDs []uuid.UUID
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Items = []Item{}
		orders = append(orders, *o)
		orderIDs = append(orderIDs, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository: error iterating orders: %w", err)
	}
	if len(orderIDs) == 0 {
		return orders, total, nil
	}

	itemsByOrder, err := r.itemsFor(ctx, orderIDs)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		if items, ok := itemsByOrder[orders[i].ID]; ok {
			orders[i].Items = items
		}
	}
	return orders, total, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, reason *string) error {
	query := `
		UPDATE orders
		SET status = $1, reject_reason = COALESCE($2, reject_reason), updated_at = $3
		WHERE id = $4 AND status = $5
	`
	cmdTag, err := r.db.Exec(ctx, query, string(to), reason, time.Now().UTC(), id, string(from))
	if err != nil {
		return fmt.Errorf("repository: failed to update order status %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either the order vanished or its status moved under us.
		return apperr.Conflict("order status changed concurrently")
	}
	return nil
}

func (r *postgresRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var status Status
		err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("order")
			}
			return fmt.Errorf("repository: failed to lock order %s: %w", id, err)
		}
		if !CanCancel(status) {
			return apperr.InvalidTransition(string(status), string(StatusCancelled))
		}

		now := time.Now().UTC()
		_, err = tx.Exec(ctx, `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
			string(StatusCancelled), now, id)
		if err != nil {
			return fmt.Errorf("repository: failed to cancel order %s: %w", id, err)
		}

		// Restore the stock taken at creation. A single UPDATE ... FROM over
		// order_items would apply only one join row per product, so an order
		// holding the same product in several sizes must be restored from the
		// per-product totals instead.
		rows, err := tx.Query(ctx, `SELECT product_id, quantity FROM order_items WHERE order_id = $1`, id)
		if err != nil {
			return fmt.Errorf("repository: failed to query order items for order %s: %w", id, err)
		}
		var items []Item
		for rows.Next() {
			var item Item
			if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
				rows.Close()
				return fmt.Errorf("repository: failed to scan order item: %w", err)
			}
			items = append(items, item)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("repository: error iterating order items: %w", err)
		}

		restoreQuery := `UPDATE products SET stock = stock + $1, updated_at = $2 WHERE id = $3`
		for productID, quantity := range TotalsByProduct(items) {
			if _, err := tx.Exec(ctx, restoreQuery, quantity, now, productID); err != nil {
				return fmt.Errorf("repository: failed to restore stock for product %s: %w", productID, err)
			}
		}
		return nil
	})
}
