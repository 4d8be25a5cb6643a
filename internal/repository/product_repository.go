package repository

import (
	"context"
	"fmt"

	"prepline/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = `id, name, price, menu_category, dashboard_category, available, stock, sold, created_at`

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.MenuCategory, &p.DashboardCategory,
		&p.Available, &p.Stock, &p.Sold, &p.CreatedAt)
	return p, err
}

// GetAll retrieves the whole catalogue ordered by menu category.
func (r *productRepository) GetAll(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY menu_category, name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// TryDecrement conditionally subtracts qty from stock and adds it to sold.
// The WHERE clause is the whole check: zero rows affected means the stock
// would have gone negative, which is a business outcome, not an error.
func (r *productRepository) TryDecrement(ctx context.Context, tx pgx.Tx, productID string, qty int) (bool, error) {
	query := `
		UPDATE products
		SET stock = stock - $2, sold = sold + $2
		WHERE id = $1 AND stock >= $2
	`

	tag, err := tx.Exec(ctx, query, productID, qty)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID).
			Int("quantity", qty).
			Msg("failed to decrement stock")
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Restore adds qty back to stock and subtracts it from sold.
func (r *productRepository) Restore(ctx context.Context, tx pgx.Tx, productID string, qty int) error {
	query := `
		UPDATE products
		SET stock = stock + $2,
		    sold = sold - $2,
		    available = CASE WHEN stock + $2 > 0 THEN TRUE ELSE available END
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, productID, qty); err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID).
			Int("quantity", qty).
			Msg("failed to restore stock")
		return fmt.Errorf("failed to restore stock: %w", err)
	}

	return nil
}

// Restock adds qty to stock and forces available true when stock ends up positive.
func (r *productRepository) Restock(ctx context.Context, productID string, qty int) error {
	query := `
		UPDATE products
		SET stock = stock + $2,
		    available = CASE WHEN stock + $2 > 0 THEN TRUE ELSE available END
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, productID, qty)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to restock product")
		return fmt.Errorf("failed to restock product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	r.logger.Debug().Str("product_id", productID).Int("quantity", qty).Msg("product restocked")
	return nil
}

// Update applies a catalogue edit. Availability follows the edited stock.
func (r *productRepository) Update(ctx context.Context, id string, upd *model.ProductUpdate) error {
	query := `
		UPDATE products
		SET name = $2, price = $3, dashboard_category = $4, stock = $5, available = $5 > 0
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, upd.Name, upd.Price, upd.DashboardCategory, upd.Stock)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the catalogue.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// ResetAll restores every product to the given stock with zero sold.
func (r *productRepository) ResetAll(ctx context.Context, stock int) error {
	query := `UPDATE products SET available = TRUE, stock = $1, sold = 0`

	if _, err := r.pool.Exec(ctx, query, stock); err != nil {
		r.logger.Error().Err(err).Msg("failed to reset products")
		return fmt.Errorf("failed to reset products: %w", err)
	}

	return nil
}
