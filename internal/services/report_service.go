package services

import (
	"context"
	"sort"
	"strings"

	"pub_pos_backend/internal/models"
)

// popularLimit caps the popularity ranking.
const popularLimit = 6

// MatchesQuery reports whether the item's name or description contains query, case-insensitively.
// An empty query matches everything.
func MatchesQuery(item models.MenuItem, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.Name), q) ||
		strings.Contains(strings.ToLower(item.Description), q)
}

// PopularItems ranks menu items by total quantity ordered across orders. Items never
// ordered are excluded; equal quantities are ordered by name.
func PopularItems(menu []models.MenuItem, orders []models.Order, query string) []models.PopularItem {
	counts := make(map[string]int)
	for _, o := range orders {
		for _, it := range o.Items {
			counts[it.ID] += it.Quantity
		}
	}

	ranked := make([]models.PopularItem, 0)
	for _, item := range menu {
		if !MatchesQuery(item, query) {
			continue
		}
		if n := counts[item.ID]; n > 0 {
			ranked = append(ranked, models.PopularItem{MenuItem: item, Quantity: n})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > popularLimit {
		ranked = ranked[:popularLimit]
	}
	return ranked
}

// GroupByCategory partitions the filtered menu by category. Groups are sorted by
// label and items within a group by name.
func GroupByCategory(menu []models.MenuItem, query string) []models.CategoryGroup {
	byCategory := make(map[string][]models.MenuItem)
	for _, item := range menu {
		if MatchesQuery(item, query) {
			byCategory[item.Category] = append(byCategory[item.Category], item)
		}
	}

	groups := make([]models.CategoryGroup, 0, len(byCategory))
	for category, items := range byCategory {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
		groups = append(groups, models.CategoryGroup{Category: category, Items: items})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Category < groups[j].Category })
	return groups
}

// PaymentBreakdown counts orders per payment method. Known methods are always
// present; any other recorded value follows in alphabetical order.
func PaymentBreakdown(orders []models.Order) []models.PaymentCount {
	counts := map[models.PaymentMethod]int{
		models.PaymentCash:        0,
		models.PaymentMobileMoney: 0,
	}
	for _, o := range orders {
		counts[o.Payment]++
	}

	out := []models.PaymentCount{
		{Method: models.PaymentCash, Count: counts[models.PaymentCash]},
		{Method: models.PaymentMobileMoney, Count: counts[models.PaymentMobileMoney]},
	}
	var others []models.PaymentMethod
	for pm := range counts {
		if pm != models.PaymentCash && pm != models.PaymentMobileMoney {
			others = append(others, pm)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i] < others[j] })
	for _, pm := range others {
		out = append(out, models.PaymentCount{Method: pm, Count: counts[pm]})
	}
	return out
}

func countWhere(orders []models.Order, match func(models.OrderStatus) bool) int {
	n := 0
	for _, o := range orders {
		if match(o.Status) {
			n++
		}
	}
	return n
}

func statusIn(statuses ...models.OrderStatus) func(models.OrderStatus) bool {
	return func(s models.OrderStatus) bool {
		for _, want := range statuses {
			if s == want {
				return true
			}
		}
		return false
	}
}

func AdminDashboardFor(orders []models.Order, staff []models.Staff) models.AdminDashboard {
	return models.AdminDashboard{
		TotalOrders:   len(orders),
		OngoingOrders: countWhere(orders, statusIn(models.StatusPending, models.StatusInProgress)),
		TotalStaff:    len(staff),
		Payments:      PaymentBreakdown(orders),
	}
}

func CounterDashboardFor(orders []models.Order) models.CounterDashboard {
	return models.CounterDashboard{
		Active:    countWhere(orders, statusIn(models.StatusPending, models.StatusInProgress)),
		Ready:     countWhere(orders, statusIn(models.StatusReady)),
		Completed: countWhere(orders, models.OrderStatus.IsCompleted),
	}
}

func WaiterDashboardFor(orders []models.Order) models.WaiterDashboard {
	return models.WaiterDashboard{
		PendingDeliveries: countWhere(orders, models.OrderStatus.IsAwaitingDelivery),
		Delivered:         countWhere(orders, statusIn(models.StatusDelivered)),
	}
}

// ReportService computes aggregations over the live snapshots on every call.
type ReportService interface {
	PopularItems(ctx context.Context, query string) ([]models.PopularItem, error)
	MenuByCategory(ctx context.Context, query string) ([]models.CategoryGroup, error)
	PaymentBreakdown(ctx context.Context) ([]models.PaymentCount, error)
	AdminDashboard(ctx context.Context, actor models.StaffRole) (models.AdminDashboard, error)
	CounterDashboard(ctx context.Context) (models.CounterDashboard, error)
	WaiterDashboard(ctx context.Context) (models.WaiterDashboard, error)
}

type reportService struct {
	menu   Snapshot[models.MenuItem]
	orders Snapshot[models.Order]
	staff  StaffService
}

func NewReportService(menu Snapshot[models.MenuItem], orders Snapshot[models.Order], staff StaffService) ReportService {
	return &reportService{menu: menu, orders: orders, staff: staff}
}

func (s *reportService) PopularItems(ctx context.Context, query string) ([]models.PopularItem, error) {
	menu, err := current(ctx, s.menu)
	if err != nil {
		return nil, err
	}
	orders, err := current(ctx, s.orders)
	if err != nil {
		return nil, err
	}
	return PopularItems(menu, orders, query), nil
}

func (s *reportService) MenuByCategory(ctx context.Context, query string) ([]models.CategoryGroup, error) {
	menu, err := current(ctx, s.menu)
	if err != nil {
		return nil, err
	}
	return GroupByCategory(menu, query), nil
}

func (s *reportService) PaymentBreakdown(ctx context.Context) ([]models.PaymentCount, error) {
	orders, err := current(ctx, s.orders)
	if err != nil {
		return nil, err
	}
	return PaymentBreakdown(orders), nil
}

func (s *reportService) AdminDashboard(ctx context.Context, actor models.StaffRole) (models.AdminDashboard, error) {
	orders, err := current(ctx, s.orders)
	if err != nil {
		return models.AdminDashboard{}, err
	}
	staff, err := s.staff.ListStaff(ctx, actor)
	if err != nil {
		return models.AdminDashboard{}, err
	}
	return AdminDashboardFor(orders, staff), nil
}

func (s *reportService) CounterDashboard(ctx context.Context) (models.CounterDashboard, error) {
	orders, err := current(ctx, s.orders)
	if err != nil {
		return models.CounterDashboard{}, err
	}
	return CounterDashboardFor(orders), nil
}

func (s *reportService) WaiterDashboard(ctx context.Context) (models.WaiterDashboard, error) {
	orders, err := current(ctx, s.orders)
	if err != nil {
		return models.WaiterDashboard{}, err
	}
	return WaiterDashboardFor(orders), nil
}
