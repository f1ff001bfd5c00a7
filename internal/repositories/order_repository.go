package repositories

import (
	"context"
	"fmt"

	"pub_pos_backend/internal/models"
)

// OrderRepository defines the interface for order persistence. Orders are never deleted.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) error
}

type orderRepository struct {
	db DocumentExecutor
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db DocumentExecutor) OrderRepository {
	return &orderRepository{db: db}
}

// CreateOrder persists the order. The creation time is assigned by the store.
func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	doc, err := r.db.Create(ctx, CollectionOrders, orderFields(order))
	if err != nil {
		return nil, wrapStoreError(err, "creating order")
	}
	created := DecodeOrder(doc)
	return &created, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	doc, err := r.db.Get(ctx, CollectionOrders, id)
	if err != nil {
		return nil, wrapStoreError(err, fmt.Sprintf("order %s", id))
	}
	order := DecodeOrder(doc)
	return &order, nil
}

// UpdateOrderStatus writes only the status field, and only while the stored status
// is still from. A concurrent change yields ErrStale.
func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	err := r.db.UpdateIf(ctx, CollectionOrders, id, "status", string(from), map[string]any{"status": string(to)})
	return wrapStoreError(err, fmt.Sprintf("updating status of order %s", id))
}
