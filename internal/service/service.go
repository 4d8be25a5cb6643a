package service

import (
	"context"

	"prepline/internal/hub"
	"prepline/internal/model"

	"github.com/google/uuid"
)

// Notifier delivers a state-change notification to the subscribers of a
// category. Satisfied by *hub.Hub.
type Notifier interface {
	Notify(category string, n hub.Notification)
}

// StatsRefresher schedules a best-effort statistics recomputation.
// Satisfied by the stats service.
type StatsRefresher interface {
	Refresh()
}

// OrderService orchestrates order creation, lifecycle transitions and the
// auto-completion path.
type OrderService interface {
	// Create creates an order with its lines, decrementing stock
	// all-or-nothing across every requested product.
	Create(ctx context.Context, req *model.CreateOrderRequest) (*model.OrderDetail, error)

	// Delete removes an order, restoring the stock its lines consumed.
	Delete(ctx context.Context, orderID uuid.UUID) error

	// Advance performs a manual transition for every line of the (order,
	// category) pair and returns the new shared status.
	Advance(ctx context.Context, orderID uuid.UUID, category string) (model.Status, error)

	// Board returns the dashboard view of one category.
	Board(ctx context.Context, category string) (*model.Board, error)

	// Detail returns an order with its lines and total.
	Detail(ctx context.Context, orderID uuid.UUID) (*model.OrderDetail, error)

	// ListAll returns every order with its total, newest first.
	ListAll(ctx context.Context) ([]model.OrderSummary, error)

	// UpdateHeader applies an admin edit to the order header.
	UpdateHeader(ctx context.Context, orderID uuid.UUID, upd *model.OrderUpdate) error

	// ResetData wipes all orders and restores every product's stock.
	ResetData(ctx context.Context) error
}

// ProductService manages the catalogue.
type ProductService interface {
	// Menu returns the catalogue grouped by menu category.
	Menu(ctx context.Context) (*model.Menu, error)

	// Restock adds stock to a product, re-enabling it when stock goes positive.
	Restock(ctx context.Context, productID string, qty int) error

	// Update applies a catalogue edit.
	Update(ctx context.Context, productID string, upd *model.ProductUpdate) error

	// Delete removes a product from the catalogue.
	Delete(ctx context.Context, productID string) error
}

// StatsService owns the aggregate statistics lifecycle.
type StatsService interface {
	StatsRefresher

	// Snapshot returns the current aggregates.
	Snapshot(ctx context.Context) (*model.Stats, error)
}

// AuthService authenticates operators and enforces page permissions.
type AuthService interface {
	// Login verifies credentials and issues a session.
	Login(ctx context.Context, username, password string) (*model.Session, error)

	// Logout invalidates a session token.
	Logout(token string)

	// Authenticate resolves a session token to its user.
	Authenticate(ctx context.Context, token string) (*model.User, error)

	// Authorize checks that the user may access the given page. Admins
	// pass every check; inactive users fail every check.
	Authorize(ctx context.Context, user *model.User, page string) error
}
