package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/camilovelasq/tienda-backend/internal/apperr"
)

type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, int, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Product, error)

	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	DeactivateCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]Category, error)
	CountProductsInCategory(ctx context.Context, id uuid.UUID) (int, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const productColumns = `id, name, description, image_url, price, original_price, stock, status, category_id, rating, sizes, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.ImageURL, &p.Price, &p.OriginalPrice,
		&p.Stock, &p.Status, &p.CategoryID, &p.Rating, &p.Sizes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) CreateProduct(ctx context.Context, p *Product) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate product id: %w", err)
	}
	p.ID = id
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.db.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.ImageURL, p.Price, p.OriginalPrice,
		p.Stock, string(p.Status), p.CategoryID, p.Rating, p.Sizes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return apperr.NotFound("category")
		}
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("product")
		}
		return nil, fmt.Errorf("repository: failed to select product %s: %w", id, err)
	}
	return p, nil
}

func (r *postgresRepository) UpdateProduct(ctx context.Context, p *Product) error {
	p.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE products
		SET name = $1, description = $2, image_url = $3, price = $4, original_price = $5,
		    stock = $6, status = $7, category_id = $8, rating = $9, sizes = $10, updated_at = $11
		WHERE id = $12
	`
	cmdTag, err := r.db.Exec(ctx, query,
		p.Name, p.Description, p.ImageURL, p.Price, p.OriginalPrice,
		p.Stock, string(p.Status), p.CategoryID, p.Rating, p.Sizes, p.UpdatedAt, p.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return apperr.NotFound("category")
		}
		return fmt.Errorf("repository: failed to update product %s: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperr.NotFound("product")
	}
	return nil
}

func (r *postgresRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete product %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperr.NotFound("product")
	}
	return nil
}

func (r *postgresRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, int, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count products: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository: error iterating products: %w", err)
	}
	return products, total, nil
}

// AdjustStock applies a signed delta to a product's stock. The stock CHECK
// constraint keeps the value non-negative; a violation surfaces as
// InsufficientStock.
func (r *postgresRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Product, error) {
	query := `
		UPDATE products
		SET stock = stock + $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + productColumns
	p, err := scanProduct(r.db.QueryRow(ctx, query, delta, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("product")
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
			return nil, apperr.InvalidInput("stock cannot go negative")
		}
		return nil, fmt.Errorf("repository: failed to adjust stock for product %s: %w", id, err)
	}
	return p, nil
}

func (r *postgresRepository) CreateCategory(ctx context.Context, c *Category) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate category id: %w", err)
	}
	c.ID = id
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt

	query := `
		INSERT INTO categories (id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.db.Exec(ctx, query, c.ID, c.Name, string(c.Status), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return apperr.Conflict("category name already exists")
		}
		return fmt.Errorf("repository: failed to insert category: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	query := `SELECT id, name, status, created_at, updated_at FROM categories WHERE id = $1`
	var c Category
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("category")
		}
		return nil, fmt.Errorf("repository: failed to select category %s: %w", id, err)
	}
	return &c, nil
}

func (r *postgresRepository) UpdateCategory(ctx context.Context, c *Category) error {
	c.UpdatedAt = time.Now().UTC()
	query := `UPDATE categories SET name = $1, status = $2, updated_at = $3 WHERE id = $4`
	cmdTag, err := r.db.Exec(ctx, query, c.Name, string(c.Status), c.UpdatedAt, c.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return apperr.Conflict("category name already exists")
		}
		return fmt.Errorf("repository: failed to update category %s: %w", c.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperr.NotFound("category")
	}
	return nil
}

func (r *postgresRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete category %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperr.NotFound("category")
	}
	return nil
}

func (r *postgresRepository) DeactivateCategory(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE categories SET status = $1, updated_at = $2 WHERE id = $3`
	cmdTag, err := r.db.Exec(ctx, query, string(ProductInactive), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("repository: failed to deactivate category %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperr.NotFound("category")
	}
	return nil
}

func (r *postgresRepository) ListCategories(ctx context.Context) ([]Category, error) {
	query := `SELECT id, name, status, created_at, updated_at FROM categories ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating categories: %w", err)
	}
	return categories, nil
}

func (r *postgresRepository) CountProductsInCategory(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count products in category %s: %w", id, err)
	}
	return count, nil
}
