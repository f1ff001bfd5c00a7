package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pub_pos_backend/internal/live"
	"pub_pos_backend/internal/metrics"
	"pub_pos_backend/internal/models"
	"pub_pos_backend/internal/repositories"
	"pub_pos_backend/internal/session"
	"pub_pos_backend/internal/store"
)

type fixture struct {
	ctx   context.Context
	store *store.MemoryStore

	menuView     *live.View[models.MenuItem]
	orderView    *live.View[models.Order]
	staffView    *live.View[models.Staff]
	settingsView *live.View[models.AppSettings]

	menuRepo  repositories.MenuRepository
	orderRepo repositories.OrderRepository
	staffRepo repositories.StaffRepository

	sessions *session.Manager
	metrics  *metrics.Metrics

	menu     MenuService
	orders   OrderService
	auth     AuthService
	staff    StaffService
	settings SettingsService
	reports  ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore(repositories.Collections...)

	f := &fixture{
		ctx:       ctx,
		store:     st,
		menuRepo:  repositories.NewMenuRepository(st),
		orderRepo: repositories.NewOrderRepository(st),
		staffRepo: repositories.NewStaffRepository(st),
		sessions:  session.NewManager("test-secret", time.Hour),
		metrics:   metrics.New("pub-pos-test"),
	}
	f.menuView = live.Watch(ctx, st, repositories.CollectionMenu, &store.OrderBy{Field: "name"}, repositories.DecodeMenuItem)
	f.orderView = live.Watch(ctx, st, repositories.CollectionOrders, &store.OrderBy{Field: store.FieldCreatedAt, Direction: store.Desc}, repositories.DecodeOrder)
	f.staffView = live.Watch(ctx, st, repositories.CollectionStaff, &store.OrderBy{Field: "name"}, repositories.DecodeStaff)
	f.settingsView = live.Watch(ctx, st, repositories.CollectionSettings, &store.OrderBy{Field: store.FieldCreatedAt}, repositories.DecodeSettings)
	t.Cleanup(func() {
		f.menuView.Close()
		f.orderView.Close()
		f.staffView.Close()
		f.settingsView.Close()
		_ = st.Close()
	})

	f.settings = NewSettingsService(repositories.NewSettingsRepository(st), f.settingsView)
	f.menu = NewMenuService(f.menuRepo, f.menuView, nil)
	f.orders = NewOrderService(f.orderRepo, f.menuRepo, f.menu, f.settings, f.orderView, f.metrics)
	f.staff = NewStaffService(f.staffRepo, f.staffView)
	f.auth = NewAuthService(f.staffRepo, f.sessions, f.metrics)
	f.reports = NewReportService(f.menuView, f.orderView, f.staff)
	return f
}

func (f *fixture) addMenuItem(t *testing.T, name string, price float64, stock *int) models.MenuItem {
	t.Helper()
	item, err := f.menuRepo.CreateMenuItem(f.ctx, &models.MenuItem{Name: name, Price: price, Category: "Test", Stock: stock})
	require.NoError(t, err)
	return *item
}

func (f *fixture) addStaff(t *testing.T, name, email string, role models.StaffRole, active bool) models.Staff {
	t.Helper()
	s, err := f.staffRepo.CreateStaff(f.ctx, &models.Staff{Name: name, Email: email, Role: role, Active: active})
	require.NoError(t, err)
	return *s
}

// waitFor blocks until cond holds for the view's items.
func waitFor[T any](t *testing.T, v *live.View[T], cond func([]T) bool) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(v.Items()) }, time.Second, 5*time.Millisecond)
}
