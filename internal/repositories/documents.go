package repositories

import (
	"math"

	"pub_pos_backend/internal/models"
	"pub_pos_backend/internal/store"
)

// Decoders turn schemaless documents into typed records. Absent or mistyped fields
// fall back to their defaults here and nowhere else.

func DecodeMenuItem(doc store.Document) models.MenuItem {
	item := models.MenuItem{
		ID:          doc.ID,
		Name:        stringField(doc.Data, "name"),
		Price:       numberField(doc.Data, "price"),
		Category:    stringField(doc.Data, "category"),
		Image:       stringField(doc.Data, "img"),
		Description: stringField(doc.Data, "description"),
	}
	if v, ok := doc.Data["stock"].(float64); ok {
		item.Stock = models.IntPtr(int(math.Round(v)))
	}
	return item
}

func DecodeOrder(doc store.Document) models.Order {
	order := models.Order{
		ID:        doc.ID,
		Table:     int(numberField(doc.Data, "table")),
		Subtotal:  numberField(doc.Data, "subtotal"),
		Tax:       numberField(doc.Data, "tax"),
		Total:     numberField(doc.Data, "total"),
		Payment:   models.PaymentMethod(stringField(doc.Data, "payment")),
		Status:    models.OrderStatus(stringField(doc.Data, "status")),
		CreatedAt: doc.CreatedAt,
		Notes:     stringField(doc.Data, "notes"),
		StaffID:   stringField(doc.Data, "staffId"),
		StaffName: stringField(doc.Data, "staffName"),
	}
	if order.Status == "" {
		order.Status = models.StatusPending
	}
	raw, _ := doc.Data["items"].([]any)
	order.Items = make([]models.OrderItem, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		order.Items = append(order.Items, models.OrderItem{
			ID:       stringField(m, "id"),
			Name:     stringField(m, "name"),
			Quantity: int(numberField(m, "quantity")),
			Price:    numberField(m, "price"),
		})
	}
	return order
}

func DecodeStaff(doc store.Document) models.Staff {
	staff := models.Staff{
		ID:        doc.ID,
		Name:      stringField(doc.Data, "name"),
		Email:     stringField(doc.Data, "email"),
		Role:      models.StaffRole(stringField(doc.Data, "role")),
		Active:    true,
		CreatedAt: doc.CreatedAt,
	}
	if v, ok := doc.Data["active"].(bool); ok {
		staff.Active = v
	}
	return staff
}

func DecodeSettings(doc store.Document) models.AppSettings {
	s := models.DefaultSettings()
	s.ID = doc.ID
	if v, ok := doc.Data["taxRate"].(float64); ok {
		s.TaxRate = models.ClampTaxRate(v)
	}
	if pm, ok := doc.Data["paymentMethods"].(map[string]any); ok {
		if v, ok := pm["cash"].(bool); ok {
			s.PaymentMethods.Cash = v
		}
		if v, ok := pm["mobileMoney"].(bool); ok {
			s.PaymentMethods.MobileMoney = v
		}
	}
	return s
}

func menuItemFields(item *models.MenuItem) map[string]any {
	fields := map[string]any{
		"name":     item.Name,
		"price":    item.Price,
		"category": item.Category,
		"img":      item.Image,
	}
	if item.Stock != nil {
		fields["stock"] = *item.Stock
	}
	if item.Description != "" {
		fields["description"] = item.Description
	}
	return fields
}

func orderFields(order *models.Order) map[string]any {
	items := make([]any, len(order.Items))
	for i, it := range order.Items {
		items[i] = map[string]any{
			"id":       it.ID,
			"name":     it.Name,
			"quantity": it.Quantity,
			"price":    it.Price,
		}
	}
	fields := map[string]any{
		"table":    order.Table,
		"items":    items,
		"subtotal": order.Subtotal,
		"tax":      order.Tax,
		"total":    order.Total,
		"payment":  string(order.Payment),
		"status":   string(order.Status),
	}
	if order.Notes != "" {
		fields["notes"] = order.Notes
	}
	if order.StaffID != "" {
		fields["staffId"] = order.StaffID
		fields["staffName"] = order.StaffName
	}
	return fields
}

func staffFields(staff *models.Staff) map[string]any {
	return map[string]any{
		"name":   staff.Name,
		"email":  models.NormalizeEmail(staff.Email),
		"role":   string(staff.Role),
		"active": staff.Active,
	}
}

func settingsFields(s *models.AppSettings) map[string]any {
	return map[string]any{
		"taxRate": models.ClampTaxRate(s.TaxRate),
		"paymentMethods": map[string]any{
			"cash":        s.PaymentMethods.Cash,
			"mobileMoney": s.PaymentMethods.MobileMoney,
		},
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func numberField(m map[string]any, key string) float64 {
	f, _ := m[key].(float64)
	return f
}

// ViewOrder is the ordering the screens use for each collection's live view.
func ViewOrder(collection string) *store.OrderBy {
	switch collection {
	case CollectionMenu, CollectionStaff:
		return &store.OrderBy{Field: "name", Direction: store.Asc}
	case CollectionOrders:
		return &store.OrderBy{Field: store.FieldCreatedAt, Direction: store.Desc}
	default:
		return &store.OrderBy{Field: store.FieldCreatedAt, Direction: store.Asc}
	}
}
