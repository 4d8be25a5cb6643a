package model

import (
	"time"

	"github.com/google/uuid"
)

// Payment methods accepted at the till.
const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

// Order represents an order header. TableNumber and PartySize are nil for
// takeaway orders. Completed is recomputed from the lines after every status
// change and is never set independently of them.
type Order struct {
	ID            uuid.UUID `json:"id" db:"id"`
	CustomerName  string    `json:"customerName" db:"customer_name"`
	TableNumber   *int      `json:"tableNumber,omitempty" db:"table_number"`
	PartySize     *int      `json:"partySize,omitempty" db:"party_size"`
	Takeaway      bool      `json:"takeaway" db:"takeaway"`
	PaymentMethod string    `json:"paymentMethod" db:"payment_method"`
	Completed     bool      `json:"completed" db:"completed"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// OrderLine is one (product, quantity) entry within an order. Name, unit
// price and dashboard category are snapshotted from the product at creation
// time, so later catalogue edits or deletions never re-route or re-price a
// historical line.
type OrderLine struct {
	ID                uuid.UUID `json:"-" db:"id"`
	OrderID           uuid.UUID `json:"-" db:"order_id"`
	ProductID         string    `json:"productId" db:"product_id"`
	ProductName       string    `json:"productName" db:"product_name"`
	UnitPrice         float64   `json:"unitPrice" db:"unit_price"`
	DashboardCategory string    `json:"dashboardCategory" db:"dashboard_category"`
	Quantity          int       `json:"quantity" db:"quantity"`
	Status            Status    `json:"status" db:"status"`
}

// CreateOrderRequest is the payload for creating an order.
type CreateOrderRequest struct {
	CustomerName  string             `json:"customerName"`
	TableNumber   *int               `json:"tableNumber,omitempty"`
	PartySize     *int               `json:"partySize,omitempty"`
	Takeaway      bool               `json:"takeaway"`
	PaymentMethod string             `json:"paymentMethod"`
	Lines         []OrderLineRequest `json:"lines"`
}

// OrderLineRequest is a single requested line.
type OrderLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderUpdate carries the editable header fields.
type OrderUpdate struct {
	CustomerName  string `json:"customerName"`
	TableNumber   *int   `json:"tableNumber,omitempty"`
	PartySize     *int   `json:"partySize,omitempty"`
	PaymentMethod string `json:"paymentMethod"`
}

// OrderDetail is an order header with its lines and computed total.
type OrderDetail struct {
	Order
	Lines []OrderLine `json:"lines"`
	Total float64     `json:"total"`
}

// OrderSummary is the admin listing row: header plus computed total.
type OrderSummary struct {
	Order
	Total float64 `json:"total"`
}

// BoardItem is one line as shown on a preparation dashboard.
type BoardItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// BoardOrder is an order as seen by one dashboard category: only the lines
// routed to that category, all sharing one status.
type BoardOrder struct {
	ID           uuid.UUID   `json:"id"`
	CustomerName string      `json:"customerName"`
	TableNumber  *int        `json:"tableNumber,omitempty"`
	PartySize    *int        `json:"partySize,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	Status       Status      `json:"status"`
	Items        []BoardItem `json:"items"`
}

// Board is the dashboard view of a category: pending orders oldest first,
// completed orders newest first.
type Board struct {
	Category  string       `json:"category"`
	Pending   []BoardOrder `json:"pending"`
	Completed []BoardOrder `json:"completed"`
}
