package services

import (
	"context"
	"errors"
	"fmt"

	"pub_pos_backend/internal/cart"
	"pub_pos_backend/internal/metrics"
	"pub_pos_backend/internal/models"
	"pub_pos_backend/internal/repositories"
	"pub_pos_backend/pkg/utils"
)

// --- Data Transfer Objects (DTOs) ---

// SubmitOrderRequest carries the checkout choices for a cart.
type SubmitOrderRequest struct {
	Table   int    `json:"table"`
	Payment string `json:"payment"`
	Notes   string `json:"notes"`
}

// OrderLineRequest is one line of a direct order placement.
type OrderLineRequest struct {
	ItemID   string `json:"id" binding:"required"`
	Quantity int    `json:"quantity"`
}

// PlaceOrderRequest submits lines without a server-side cart (the staff sell flow).
type PlaceOrderRequest struct {
	SubmitOrderRequest
	Items []OrderLineRequest `json:"items"`
}

// UpdateOrderStatusRequest is used for advancing an order.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// StaffContext attributes an order to the staff member who placed it.
type StaffContext struct {
	StaffID string
	Name    string
}

// DecrementOutcome reports the stock adjustment for one order line.
type DecrementOutcome struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
	Applied  bool   `json:"applied"`
	Error    string `json:"error,omitempty"`
}

// PlacedOrder is the result of a submission. The order is placed even when some
// stock decrements failed.
type PlacedOrder struct {
	Order      models.Order       `json:"order"`
	Decrements []DecrementOutcome `json:"decrements"`
}

// StockFullyApplied reports whether every line's decrement succeeded.
func (p *PlacedOrder) StockFullyApplied() bool {
	for _, d := range p.Decrements {
		if !d.Applied {
			return false
		}
	}
	return true
}

// SettingsReader supplies the settings in effect for pricing.
type SettingsReader interface {
	GetSettings(ctx context.Context) (models.AppSettings, error)
}

// --- OrderService Interface ---
type OrderService interface {
	Submit(ctx context.Context, c *cart.Cart, req SubmitOrderRequest, staff *StaffContext) (*PlacedOrder, error)
	PlaceOrder(ctx context.Context, req PlaceOrderRequest, staff *StaffContext) (*PlacedOrder, error)
	Advance(ctx context.Context, orderID string, to models.OrderStatus, actor models.StaffRole) (*models.Order, error)
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, error)
}

// --- orderService Implementation ---
type orderService struct {
	orderRepo repositories.OrderRepository
	menuRepo  repositories.MenuRepository
	menu      MenuService
	settings  SettingsReader
	orders    Snapshot[models.Order]
	metrics   *metrics.Metrics
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	or repositories.OrderRepository,
	mr repositories.MenuRepository,
	menu MenuService,
	settings SettingsReader,
	orders Snapshot[models.Order],
	m *metrics.Metrics,
) OrderService {
	return &orderService{
		orderRepo: or,
		menuRepo:  mr,
		menu:      menu,
		settings:  settings,
		orders:    orders,
		metrics:   m,
	}
}

// Submit validates the checkout, takes the cart's entries, prices them under the
// current settings, creates the order and then decrements stock once per line. The
// entries are put back if the order cannot be created.
func (s *orderService) Submit(ctx context.Context, c *cart.Cart, req SubmitOrderRequest, staff *StaffContext) (*PlacedOrder, error) {
	if c == nil || c.IsEmpty() {
		return nil, validationError("cart is empty")
	}
	if req.Table <= 0 {
		return nil, validationError("table number is required")
	}
	if req.Payment == "" {
		return nil, validationError("payment method is required")
	}
	payment, ok := models.ParsePaymentMethod(req.Payment)
	if !ok {
		return nil, validationError("unknown payment method %q", req.Payment)
	}

	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.Allows(payment) {
		return nil, validationError("payment method %q is disabled", payment)
	}

	taken := c.Take()
	if taken.IsEmpty() {
		// Another checkout of the same cart got there first.
		return nil, validationError("cart is empty")
	}
	lines := taken.Lines()
	quote := taken.Quote(settings.TaxRate)
	order := &models.Order{
		Table:    req.Table,
		Items:    lines,
		Subtotal: quote.Subtotal,
		Tax:      quote.Tax,
		Total:    quote.Total,
		Payment:  payment,
		Status:   models.StatusPending,
		Notes:    req.Notes,
	}
	if staff != nil && staff.StaffID != "" {
		order.StaffID = staff.StaffID
		order.StaffName = staff.Name
	}

	created, err := s.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		c.Restore(taken)
		utils.LogError(err, "OrderService.Submit: failed to create order")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	s.metrics.OrderPlaced(string(payment))
	utils.LogInfo("Order placed", map[string]interface{}{
		"order_id": created.ID,
		"table":    created.Table,
		"total":    created.Total,
		"payment":  string(created.Payment),
	})

	return &PlacedOrder{Order: *created, Decrements: s.decrementStock(ctx, created.ID, lines)}, nil
}

// decrementStock applies one independent atomic decrement per line. Failures are
// reported per line and never undo the order.
func (s *orderService) decrementStock(ctx context.Context, orderID string, lines []models.OrderItem) []DecrementOutcome {
	outcomes := make([]DecrementOutcome, 0, len(lines))
	for _, line := range lines {
		out := DecrementOutcome{ItemID: line.ID, Quantity: line.Quantity, Applied: true}
		if err := s.menuRepo.AdjustStock(ctx, line.ID, -line.Quantity); err != nil {
			out.Applied = false
			out.Error = err.Error()
			s.metrics.StockDecrementFailed()
			utils.LogWarn(err, "OrderService: stock decrement failed", map[string]interface{}{
				"order_id": orderID,
				"item_id":  line.ID,
				"quantity": line.Quantity,
			})
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// PlaceOrder builds a cart from item ids using the catalog's current name and price,
// then submits it.
func (s *orderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest, staff *StaffContext) (*PlacedOrder, error) {
	if len(req.Items) == 0 {
		return nil, validationError("cart is empty")
	}
	c := cart.New()
	for _, line := range req.Items {
		if line.Quantity < 1 {
			return nil, validationError("quantity for item %q must be at least 1", line.ItemID)
		}
		item, err := s.menu.GetMenuItem(ctx, line.ItemID)
		if err != nil {
			if errors.Is(err, ErrMenuItemNotFound) {
				return nil, validationError("unknown menu item %q", line.ItemID)
			}
			return nil, err
		}
		c.Add(*item, line.Quantity)
	}
	return s.Submit(ctx, c, req.SubmitOrderRequest, staff)
}

// Advance moves an order along the lifecycle. Counter staff start, finish and serve
// orders; waiters mark ready orders delivered; superadmin may do both. The write is
// conditional on the status that was checked, so a stale caller cannot move an order
// out of a status it has already left.
func (s *orderService) Advance(ctx context.Context, orderID string, to models.OrderStatus, actor models.StaffRole) (*models.Order, error) {
	if _, ok := models.ParseOrderStatus(string(to)); !ok {
		return nil, validationError("unknown status %q", to)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to read order: %w", err)
	}

	from := order.Status
	if !from.CanAdvanceTo(to) {
		if from.IsTerminal() {
			return nil, fmt.Errorf("%w: order is already %s", ErrInvalidTransition, from)
		}
		return nil, fmt.Errorf("%w: %s -> %s (allowed: %v)", ErrInvalidTransition, from, to, from.NextStatuses())
	}
	if !actor.Satisfies(transitionRole(to)) {
		return nil, fmt.Errorf("%w: %s may not set %s", ErrTransitionForbidden, actor, to)
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, from, to); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		if errors.Is(err, repositories.ErrStale) {
			return nil, fmt.Errorf("%w: order is no longer %s", ErrInvalidTransition, from)
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	s.metrics.StatusTransition(string(from), string(to))
	utils.LogInfo("Order status changed", map[string]interface{}{
		"order_id": orderID, "from": string(from), "to": string(to), "actor": string(actor),
	})

	order.Status = to
	return order, nil
}

// transitionRole is the role that performs a move into status to.
func transitionRole(to models.OrderStatus) models.StaffRole {
	if to == models.StatusDelivered {
		return models.RoleWaiter
	}
	return models.RoleCounter
}

func (s *orderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to read order: %w", err)
	}
	return order, nil
}

// ListOrders filters the live order snapshot, newest first.
func (s *orderService) ListOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, error) {
	if s.orders == nil {
		return nil, ErrUnavailable
	}
	all, err := current(ctx, s.orders)
	if err != nil {
		return nil, err
	}

	var status models.OrderStatus
	if filters.Status != nil && *filters.Status != "" {
		st, ok := models.ParseOrderStatus(*filters.Status)
		if !ok {
			return nil, validationError("unknown status %q", *filters.Status)
		}
		status = st
	}

	var keep func(models.OrderStatus) bool
	switch filters.View {
	case "":
	case "active":
		keep = models.OrderStatus.IsCounterActive
	case "ready":
		keep = models.OrderStatus.IsAwaitingDelivery
	case "completed":
		keep = models.OrderStatus.IsCompleted
	default:
		return nil, validationError("unknown view %q", filters.View)
	}

	out := make([]models.Order, 0, len(all))
	for _, o := range all {
		if status != "" && o.Status != status {
			continue
		}
		if keep != nil && !keep(o.Status) {
			continue
		}
		if filters.Table != nil && o.Table != *filters.Table {
			continue
		}
		if filters.StaffID != nil && o.StaffID != *filters.StaffID {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}
