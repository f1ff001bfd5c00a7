package models

import "time"

// OrderStatus is a position in the order lifecycle.
type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusInProgress OrderStatus = "In Progress"
	StatusReady      OrderStatus = "Ready"
	StatusServed     OrderStatus = "Served"
	StatusDelivered  OrderStatus = "Delivered"
)

// transitions lists the allowed successors of each status. Served and Delivered are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusInProgress},
	StatusInProgress: {StatusReady},
	StatusReady:      {StatusServed, StatusDelivered},
}

// ParseOrderStatus validates a raw status value.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case StatusPending, StatusInProgress, StatusReady, StatusServed, StatusDelivered:
		return st, true
	}
	return "", false
}

// NextStatuses returns the statuses s may advance to.
func (s OrderStatus) NextStatuses() []OrderStatus {
	return append([]OrderStatus(nil), transitions[s]...)
}

// CanAdvanceTo reports whether to is a legal successor of s.
func (s OrderStatus) CanAdvanceTo(to OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition exists.
func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsCounterActive: the order still needs the counter's attention.
func (s OrderStatus) IsCounterActive() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusReady
}

// IsAwaitingDelivery: the waiter's active set.
func (s OrderStatus) IsAwaitingDelivery() bool {
	return s == StatusReady
}

func (s OrderStatus) IsCompleted() bool {
	return s == StatusServed || s == StatusDelivered
}

// PaymentMethod is recorded on the order, not settled.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "Cash"
	PaymentMobileMoney PaymentMethod = "Mobile Money"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch pm := PaymentMethod(s); pm {
	case PaymentCash, PaymentMobileMoney:
		return pm, true
	}
	return "", false
}

// OrderItem is the frozen line snapshot taken at submission.
type OrderItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order represents a placed order. Items, Subtotal, Tax and Total never change after creation.
type Order struct {
	ID        string        `json:"id"`
	Table     int           `json:"table"`
	Items     []OrderItem   `json:"items"`
	Subtotal  float64       `json:"subtotal,omitempty"`
	Tax       float64       `json:"tax,omitempty"`
	Total     float64       `json:"total"`
	Payment   PaymentMethod `json:"payment"`
	Status    OrderStatus   `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	Notes     string        `json:"notes,omitempty"`
	StaffID   string        `json:"staffId,omitempty"`
	StaffName string        `json:"staffName,omitempty"`
}

// OrderFilters narrows order listings.
type OrderFilters struct {
	Status  *string `form:"status"`
	Table   *int    `form:"table"`
	StaffID *string `form:"staff_id"`
	View    string  `form:"view"` // active, ready or completed
}
