package model

import "time"

// Product represents a sellable item in the catalogue. DashboardCategory is
// the routing key that decides which preparation station receives its order
// lines; MenuCategory only groups products for display at the till.
type Product struct {
	ID                string    `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Price             float64   `json:"price" db:"price"`
	MenuCategory      string    `json:"menuCategory" db:"menu_category"`
	DashboardCategory string    `json:"dashboardCategory" db:"dashboard_category"`
	Available         bool      `json:"available" db:"available"`
	Stock             int       `json:"stock" db:"stock"`
	Sold              int       `json:"sold" db:"sold"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

// ProductUpdate carries the editable catalogue fields. Stock drives the
// available flag: editing to stock > 0 makes the product available, editing
// to zero makes it unavailable.
type ProductUpdate struct {
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	DashboardCategory string  `json:"dashboardCategory"`
	Stock             int     `json:"stock"`
}

// Menu groups the catalogue by menu category, in first-seen order.
type Menu struct {
	Categories []string             `json:"categories"`
	Products   map[string][]Product `json:"products"`
}
