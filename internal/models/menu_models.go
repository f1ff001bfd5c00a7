package models

// MenuItem is a catalog entry. A nil Stock means the item is not stock-tracked;
// tracked stock may go negative under concurrent orders.
type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"img"`
	Stock       *int    `json:"stock,omitempty"`
	Description string  `json:"description,omitempty"`
}

// IntPtr is a small helper for optional stock values.
func IntPtr(v int) *int {
	return &v
}
