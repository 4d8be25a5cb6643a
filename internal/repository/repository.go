package repository

import (
	"context"

	"prepline/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository is the inventory ledger plus catalogue access. The
// conditional stock mutations are individually atomic; callers compose them
// inside one transaction for multi-line work.
type ProductRepository interface {
	// GetAll retrieves the whole catalogue ordered by menu category.
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product, or nil when it does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// TryDecrement subtracts qty from stock and adds qty to sold, but only
	// if the resulting stock stays non-negative. It reports false, without
	// an error, when stock is insufficient.
	TryDecrement(ctx context.Context, tx pgx.Tx, productID string, qty int) (bool, error)

	// Restore adds qty back to stock, subtracts qty from sold, and flips
	// available back on when the resulting stock is positive.
	Restore(ctx context.Context, tx pgx.Tx, productID string, qty int) error

	// Restock adds qty to stock and forces available true when the
	// resulting stock is positive.
	Restock(ctx context.Context, productID string, qty int) error

	// Update applies a catalogue edit.
	Update(ctx context.Context, id string, upd *model.ProductUpdate) error

	// Delete removes a product from the catalogue. Historical order lines
	// keep their snapshot and are not touched.
	Delete(ctx context.Context, id string) error

	// ResetAll restores every product to the given stock with zero sold.
	ResetAll(ctx context.Context, stock int) error
}

// OrderRepository is the order store. Multi-row writes go through an
// explicit transaction started with BeginTx; reads run on the pool.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order header within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderLines inserts the order's lines within the provided transaction.
	CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error

	// GetHeader retrieves an order header, or nil when it does not exist.
	GetHeader(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetDetail retrieves an order with its lines and computed total, or
	// nil when it does not exist.
	GetDetail(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error)

	// GetLines retrieves the order's lines within the provided transaction.
	GetLines(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderLine, error)

	// ListAll retrieves every order header with its computed total, newest first.
	ListAll(ctx context.Context) ([]model.OrderSummary, error)

	// ListByCategory retrieves the dashboard view of one category: pending
	// orders oldest first, completed orders newest first.
	ListByCategory(ctx context.Context, category string) (pending, completed []model.BoardOrder, err error)

	// UpdateHeader applies an admin edit to the order header.
	UpdateHeader(ctx context.Context, id uuid.UUID, upd *model.OrderUpdate) error

	// Delete removes the order's lines and header within the provided transaction.
	Delete(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error

	// CategoryStatusForUpdate reads the shared status of the (order,
	// category) pair within the transaction, locking the pair's lines so
	// concurrent transitions serialise. Returns ErrNoLines when the pair
	// has no lines.
	CategoryStatusForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, category string) (model.Status, error)

	// SetCategoryStatus moves every line of the (order, category) pair to
	// status in one statement and returns the number of lines updated.
	SetCategoryStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, category string, status model.Status) (int64, error)

	// CompleteCategoryIfReady moves the (order, category) pair to completed
	// only if it is still ready, and returns the number of lines updated.
	// A zero count means a manual transition won the race.
	CompleteCategoryIfReady(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, category string) (int64, error)

	// RecomputeCompleted refreshes the order's completed flag from its
	// lines and returns the new value.
	RecomputeCompleted(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (bool, error)

	// Categories returns the distinct dashboard categories of the order's
	// lines within the provided transaction.
	Categories(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]string, error)

	// DeleteAll wipes every order and line.
	DeleteAll(ctx context.Context) error
}

// StatsRepository persists the aggregate statistics tables.
type StatsRepository interface {
	// Recompute rebuilds every statistics table from the current orders in
	// one transaction.
	Recompute(ctx context.Context) error

	// Snapshot reads the stored aggregates plus the live best-sellers ranking.
	Snapshot(ctx context.Context) (*model.Stats, error)
}

// UserRepository provides operator accounts and their page permissions.
type UserRepository interface {
	// GetByUsername retrieves a user, or nil when it does not exist.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// GetByID retrieves a user, or nil when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// HasPermission reports whether the user holds the given page permission.
	HasPermission(ctx context.Context, userID uuid.UUID, page string) (bool, error)
}
