package repository

import (
	"context"
	"fmt"

	"prepline/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Dashboard categories seeded into the statistics tables so every station
// shows up with a zero even before its first order.
var dashboardCategories = []string{"bar", "kitchen", "grill"}

// statsRepository implements the StatsRepository interface using PostgreSQL.
type statsRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStatsRepository creates a new PostgreSQL-backed stats repository.
func NewStatsRepository(pool *pgxpool.Pool, logger zerolog.Logger) StatsRepository {
	return &statsRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "stats").Logger(),
	}
}

// Recompute rebuilds every statistics table from the current orders. The
// rebuild runs in one transaction so readers never observe a half-reset
// snapshot.
func (r *statsRepository) Recompute(ctx context.Context) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin stats transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"stats_totals", "stats_categories", "stats_hours"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}

	totalsQuery := `
		INSERT INTO stats_totals (id, total_orders, completed_orders, revenue_total, revenue_cash, revenue_card)
		SELECT 1,
		       (SELECT COUNT(*) FROM orders),
		       (SELECT COUNT(*) FROM orders WHERE completed),
		       COALESCE(SUM(l.unit_price * l.quantity), 0),
		       COALESCE(SUM(l.unit_price * l.quantity) FILTER (WHERE o.payment_method = $1), 0),
		       COALESCE(SUM(l.unit_price * l.quantity) FILTER (WHERE o.payment_method = $2), 0)
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
	`
	if _, err := tx.Exec(ctx, totalsQuery, model.PaymentCash, model.PaymentCard); err != nil {
		return fmt.Errorf("failed to rebuild stats totals: %w", err)
	}

	categoriesQuery := `
		INSERT INTO stats_categories (dashboard_category, total)
		SELECT c.category, COALESCE(SUM(l.quantity), 0)
		FROM UNNEST($1::text[]) AS c(category)
		LEFT JOIN order_lines l ON l.dashboard_category = c.category
		GROUP BY c.category
	`
	if _, err := tx.Exec(ctx, categoriesQuery, dashboardCategories); err != nil {
		return fmt.Errorf("failed to rebuild category stats: %w", err)
	}

	hoursQuery := `
		INSERT INTO stats_hours (hour, total)
		SELECT h, COALESCE(COUNT(o.id), 0)
		FROM GENERATE_SERIES(0, 23) AS h
		LEFT JOIN orders o ON EXTRACT(HOUR FROM o.created_at)::int = h
		GROUP BY h
	`
	if _, err := tx.Exec(ctx, hoursQuery); err != nil {
		return fmt.Errorf("failed to rebuild hourly stats: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit stats transaction: %w", err)
	}

	r.logger.Debug().Msg("statistics recomputed")
	return nil
}

// Snapshot reads the stored aggregates plus the live best-sellers ranking.
func (r *statsRepository) Snapshot(ctx context.Context) (*model.Stats, error) {
	stats := &model.Stats{}

	totalsQuery := `
		SELECT total_orders, completed_orders, revenue_total, revenue_cash, revenue_card
		FROM stats_totals
		WHERE id = 1
	`
	rows, err := r.pool.Query(ctx, totalsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats totals: %w", err)
	}
	for rows.Next() {
		if err := rows.Scan(&stats.TotalOrders, &stats.CompletedOrders,
			&stats.RevenueTotal, &stats.RevenueCash, &stats.RevenueCard); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan stats totals: %w", err)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats totals: %w", err)
	}

	categoryRows, err := r.pool.Query(ctx, `
		SELECT dashboard_category, total
		FROM stats_categories
		ORDER BY dashboard_category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category stats: %w", err)
	}
	defer categoryRows.Close()

	for categoryRows.Next() {
		var ct model.CategoryTotal
		if err := categoryRows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, fmt.Errorf("failed to scan category stats: %w", err)
		}
		stats.Categories = append(stats.Categories, ct)
	}
	if err := categoryRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category stats: %w", err)
	}

	hourRows, err := r.pool.Query(ctx, `SELECT hour, total FROM stats_hours ORDER BY hour`)
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly stats: %w", err)
	}
	defer hourRows.Close()

	for hourRows.Next() {
		var ht model.HourTotal
		if err := hourRows.Scan(&ht.Hour, &ht.Total); err != nil {
			return nil, fmt.Errorf("failed to scan hourly stats: %w", err)
		}
		stats.Hours = append(stats.Hours, ht)
	}
	if err := hourRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hourly stats: %w", err)
	}

	topRows, err := r.pool.Query(ctx, `
		SELECT name, sold
		FROM products
		ORDER BY sold DESC, name
		LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer topRows.Close()

	for topRows.Next() {
		var tp model.TopProduct
		if err := topRows.Scan(&tp.Name, &tp.Sold); err != nil {
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		stats.TopProducts = append(stats.TopProducts, tp)
	}
	if err := topRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top products: %w", err)
	}

	return stats, nil
}
