package repository

import (
	"context"
	"fmt"

	"prepline/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order header within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, customer_name, table_number, party_size, takeaway, payment_method, completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.Exec(ctx, query, order.ID, order.CustomerName, order.TableNumber,
		order.PartySize, order.Takeaway, order.PaymentMethod, order.Completed, order.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// CreateOrderLines inserts the order's lines within the provided transaction.
func (r *orderRepository) CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_lines (id, order_id, product_id, product_name, unit_price, dashboard_category, quantity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(query, line.ID, line.OrderID, line.ProductID, line.ProductName,
			line.UnitPrice, line.DashboardCategory, line.Quantity, line.Status)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(lines); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", lines[i].OrderID.String()).
				Str("product_id", lines[i].ProductID).
				Msg("failed to create order line")
			return fmt.Errorf("failed to create order line: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, customer_name, table_number, party_size, takeaway, payment_method, completed, created_at`

func scanOrder(row pgx.Row) (model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.CustomerName, &o.TableNumber, &o.PartySize,
		&o.Takeaway, &o.PaymentMethod, &o.Completed, &o.CreatedAt)
	return o, err
}

// GetHeader retrieves an order header by its ID.
func (r *orderRepository) GetHeader(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return &o, nil
}

// GetDetail retrieves an order with its lines and computed total.
func (r *orderRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	header, err := r.GetHeader(ctx, id)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, nil
	}

	query := `
		SELECT id, order_id, product_id, product_name, unit_price, dashboard_category, quantity, status
		FROM order_lines
		WHERE order_id = $1
		ORDER BY product_name
	`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order lines")
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	detail := &model.OrderDetail{Order: *header}
	for rows.Next() {
		var line model.OrderLine
		err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.ProductName,
			&line.UnitPrice, &line.DashboardCategory, &line.Quantity, &line.Status)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order line row")
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		detail.Lines = append(detail.Lines, line)
		detail.Total += line.UnitPrice * float64(line.Quantity)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order line rows")
		return nil, fmt.Errorf("error iterating order lines: %w", err)
	}

	return detail, nil
}

// GetLines retrieves the order's lines within the provided transaction.
func (r *orderRepository) GetLines(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderLine, error) {
	query := `
		SELECT id, order_id, product_id, product_name, unit_price, dashboard_category, quantity, status
		FROM order_lines
		WHERE order_id = $1
	`

	rows, err := tx.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order lines")
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	var lines []model.OrderLine
	for rows.Next() {
		var line model.OrderLine
		err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.ProductName,
			&line.UnitPrice, &line.DashboardCategory, &line.Quantity, &line.Status)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order line row")
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order lines: %w", err)
	}

	return lines, nil
}

// ListAll retrieves every order header with its computed total, newest first.
func (r *orderRepository) ListAll(ctx context.Context) ([]model.OrderSummary, error) {
	query := `
		SELECT o.id, o.customer_name, o.table_number, o.party_size, o.takeaway,
		       o.payment_method, o.completed, o.created_at,
		       COALESCE(SUM(l.unit_price * l.quantity), 0) AS total
		FROM orders o
		LEFT JOIN order_lines l ON l.order_id = o.id
		GROUP BY o.id
		ORDER BY o.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.OrderSummary
	for rows.Next() {
		var s model.OrderSummary
		err := rows.Scan(&s.ID, &s.CustomerName, &s.TableNumber, &s.PartySize,
			&s.Takeaway, &s.PaymentMethod, &s.Completed, &s.CreatedAt, &s.Total)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// ListByCategory retrieves the dashboard view of one category. Lines are
// grouped under their order; the shared status comes off any line since all
// lines of the pair are kept in step. Pending orders come back oldest first,
// completed ones newest first.
func (r *orderRepository) ListByCategory(ctx context.Context, category string) ([]model.BoardOrder, []model.BoardOrder, error) {
	query := `
		SELECT o.id, o.customer_name, o.table_number, o.party_size, o.created_at,
		       l.status, l.product_name, l.quantity
		FROM orders o
		JOIN order_lines l ON l.order_id = o.id
		WHERE l.dashboard_category = $1
		ORDER BY o.created_at ASC, l.product_name
	`

	rows, err := r.pool.Query(ctx, query, category)
	if err != nil {
		r.logger.Error().Err(err).Str("category", category).Msg("failed to query board")
		return nil, nil, fmt.Errorf("failed to query board: %w", err)
	}
	defer rows.Close()

	var ordered []uuid.UUID
	grouped := make(map[uuid.UUID]*model.BoardOrder)
	for rows.Next() {
		var (
			bo   model.BoardOrder
			item model.BoardItem
		)
		err := rows.Scan(&bo.ID, &bo.CustomerName, &bo.TableNumber, &bo.PartySize,
			&bo.CreatedAt, &bo.Status, &item.Name, &item.Quantity)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan board row")
			return nil, nil, fmt.Errorf("failed to scan board row: %w", err)
		}

		existing, ok := grouped[bo.ID]
		if !ok {
			ordered = append(ordered, bo.ID)
			existing = &bo
			grouped[bo.ID] = existing
		}
		existing.Items = append(existing.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating board rows: %w", err)
	}

	var pending, completed []model.BoardOrder
	for _, id := range ordered {
		bo := grouped[id]
		if bo.Status == model.StatusCompleted {
			completed = append(completed, *bo)
		} else {
			pending = append(pending, *bo)
		}
	}

	// Completed list shows the most recent first.
	for i, j := 0, len(completed)-1; i < j; i, j = i+1, j-1 {
		completed[i], completed[j] = completed[j], completed[i]
	}

	return pending, completed, nil
}

// UpdateHeader applies an admin edit to the order header.
func (r *orderRepository) UpdateHeader(ctx context.Context, id uuid.UUID, upd *model.OrderUpdate) error {
	query := `
		UPDATE orders
		SET customer_name = $2, table_number = $3, party_size = $4, payment_method = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, upd.CustomerName, upd.TableNumber, upd.PartySize, upd.PaymentMethod)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

// Delete removes the order's lines and header within the provided transaction.
func (r *orderRepository) Delete(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM order_lines WHERE order_id = $1`, orderID); err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to delete order lines")
		return fmt.Errorf("failed to delete order lines: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

// CategoryStatusForUpdate reads the shared status of the (order, category)
// pair, locking the pair's lines so that two concurrent transitions
// serialise on the store's row locks rather than interleaving.
func (r *orderRepository) CategoryStatusForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, category string) (model.Status, error) {
	query := `
		SELECT status
		FROM order_lines
		WHERE order_id = $1 AND dashboard_category = $2
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, orderID, category)
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_id", orderID.String()).
			Str("category", category).
			Msg("failed to read category status")
		return "", fmt.Errorf("failed to read category status: %w", err)
	}
	defer rows.Close()

	var status model.Status
	found := false
	for rows.Next() {
		if err := rows.Scan(&status); err != nil {
			return "", fmt.Errorf("failed to scan category status: %w", err)
		}
		found = true
	}

	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating category status: %w", err)
	}

	if !found {
		return "", model.ErrNoLines
	}

	return status, nil
}

// SetCategoryStatus moves every line of the (order, category) pair in one statement.
func (r *orderRepository) SetCategoryStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, category string, status model.Status) (int64, error) {
	query := `
		UPDATE order_lines
		SET status = $3
		WHERE order_id = $1 AND dashboard_category = $2
	`

	tag, err := tx.Exec(ctx, query, orderID, category, status)
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_id", orderID.String()).
			Str("category", category).
			Str("status", string(status)).
			Msg("failed to set category status")
		return 0, fmt.Errorf("failed to set category status: %w", err)
	}

	return tag.RowsAffected(), nil
}

// CompleteCategoryIfReady performs the gated automatic-completion write. The
// status guard means a category a human has since moved elsewhere is never
// resurrected by a stale timer.
func (r *orderRepository) CompleteCategoryIfReady(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, category string) (int64, error) {
	query := `
		UPDATE order_lines
		SET status = $3
		WHERE order_id = $1 AND dashboard_category = $2 AND status = $4
	`

	tag, err := tx.Exec(ctx, query, orderID, category, model.StatusCompleted, model.StatusReady)
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_id", orderID.String()).
			Str("category", category).
			Msg("failed to auto-complete category")
		return 0, fmt.Errorf("failed to auto-complete category: %w", err)
	}

	return tag.RowsAffected(), nil
}

// RecomputeCompleted refreshes the order's completed flag from its lines.
// An order with zero remaining non-completed lines is completed.
func (r *orderRepository) RecomputeCompleted(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (bool, error) {
	query := `
		UPDATE orders
		SET completed = NOT EXISTS (
			SELECT 1 FROM order_lines
			WHERE order_id = $1 AND status <> $2
		)
		WHERE id = $1
		RETURNING completed
	`

	var completed bool
	err := tx.QueryRow(ctx, query, orderID, model.StatusCompleted).Scan(&completed)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, model.ErrOrderNotFound
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to recompute completed flag")
		return false, fmt.Errorf("failed to recompute completed flag: %w", err)
	}

	return completed, nil
}

// Categories returns the distinct dashboard categories of the order's lines.
func (r *orderRepository) Categories(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]string, error) {
	query := `
		SELECT DISTINCT dashboard_category
		FROM order_lines
		WHERE order_id = $1
	`

	rows, err := tx.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order categories")
		return nil, fmt.Errorf("failed to query order categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// DeleteAll wipes every order and line.
func (r *orderRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM order_lines`); err != nil {
		return fmt.Errorf("failed to delete order lines: %w", err)
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM orders`); err != nil {
		return fmt.Errorf("failed to delete orders: %w", err)
	}
	return nil
}
