package models

// PopularItem is a menu item ranked by quantity ordered.
type PopularItem struct {
	MenuItem
	Quantity int `json:"quantity"`
}

// CategoryGroup holds the menu items sharing a category label.
type CategoryGroup struct {
	Category string     `json:"category"`
	Items    []MenuItem `json:"items"`
}

// PaymentCount is one slice of the payment breakdown chart.
type PaymentCount struct {
	Method PaymentMethod `json:"method"`
	Count  int           `json:"count"`
}

// AdminDashboard summarizes the venue for admins.
type AdminDashboard struct {
	TotalOrders   int            `json:"totalOrders"`
	OngoingOrders int            `json:"ongoingOrders"` // Pending + In Progress
	TotalStaff    int            `json:"totalStaff"`
	Payments      []PaymentCount `json:"payments"`
}

// CounterDashboard counts orders from the counter's point of view.
type CounterDashboard struct {
	Active    int `json:"active"` // Pending + In Progress
	Ready     int `json:"ready"`
	Completed int `json:"completed"`
}

type WaiterDashboard struct {
	PendingDeliveries int `json:"pendingDeliveries"`
	Delivered         int `json:"delivered"`
}
