package model

// CategoryTotal is the quantity of lines routed to one dashboard category.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int    `json:"total"`
}

// HourTotal is the number of orders created in one hour bucket (0-23),
// keyed on the order's creation timestamp.
type HourTotal struct {
	Hour  int `json:"hour"`
	Total int `json:"total"`
}

// TopProduct is one entry of the best-sellers ranking.
type TopProduct struct {
	Name string `json:"name"`
	Sold int    `json:"sold"`
}

// Stats is the aggregate snapshot consumed by reporting collaborators.
type Stats struct {
	TotalOrders     int             `json:"totalOrders"`
	CompletedOrders int             `json:"completedOrders"`
	RevenueTotal    float64         `json:"revenueTotal"`
	RevenueCash     float64         `json:"revenueCash"`
	RevenueCard     float64         `json:"revenueCard"`
	Categories      []CategoryTotal `json:"categories"`
	Hours           []HourTotal     `json:"hours"`
	TopProducts     []TopProduct    `json:"topProducts"`
}
