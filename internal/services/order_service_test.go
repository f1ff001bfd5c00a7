package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pub_pos_backend/internal/cart"
	"pub_pos_backend/internal/models"
	"pub_pos_backend/internal/repositories"
	"pub_pos_backend/internal/store"
)

func TestSubmit_PricesCartAndPlacesPendingOrder(t *testing.T) {
	f := newFixture(t)
	beer := f.addMenuItem(t, "Club Beer", 15, models.IntPtr(10))
	sprite := f.addMenuItem(t, "Sprite", 8, models.IntPtr(10))

	c := cart.New()
	c.Add(beer, 2)
	c.Add(sprite, 3)

	placed, err := f.orders.Submit(f.ctx, c, SubmitOrderRequest{Table: 7, Payment: "Cash"}, &StaffContext{StaffID: "s1", Name: "Ama"})
	require.NoError(t, err)

	order := placed.Order
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, 7, order.Table)
	assert.InDelta(t, 54.0, order.Subtotal, 1e-9)
	assert.InDelta(t, 2.70, order.Tax, 1e-9)
	assert.InDelta(t, 56.70, order.Total, 1e-9)
	assert.Equal(t, "Ama", order.StaffName)
	assert.False(t, order.CreatedAt.IsZero())
	assert.True(t, c.IsEmpty(), "cart is cleared after a successful submission")

	require.Len(t, placed.Decrements, 2)
	assert.True(t, placed.StockFullyApplied())

	got, err := f.menuRepo.GetMenuItemByID(f.ctx, beer.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, *got.Stock)
}

func TestSubmit_ValidationHappensBeforeAnyWrite(t *testing.T) {
	f := newFixture(t)
	beer := f.addMenuItem(t, "Club Beer", 15, nil)

	full := func() *cart.Cart {
		c := cart.New()
		c.Add(beer, 1)
		return c
	}

	tests := []struct {
		name string
		cart *cart.Cart
		req  SubmitOrderRequest
	}{
		{name: "empty cart", cart: cart.New(), req: SubmitOrderRequest{Table: 1, Payment: "Cash"}},
		{name: "nil cart", cart: nil, req: SubmitOrderRequest{Table: 1, Payment: "Cash"}},
		{name: "missing table", cart: full(), req: SubmitOrderRequest{Payment: "Cash"}},
		{name: "negative table", cart: full(), req: SubmitOrderRequest{Table: -2, Payment: "Cash"}},
		{name: "missing payment", cart: full(), req: SubmitOrderRequest{Table: 1}},
		{name: "unknown payment", cart: full(), req: SubmitOrderRequest{Table: 1, Payment: "Card"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.Submit(f.ctx, tt.cart, tt.req, nil)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	docs, err := f.store.Query(f.ctx, repositories.CollectionOrders, "", nil, 0)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSubmit_RejectsDisabledPaymentMethod(t *testing.T) {
	f := newFixture(t)
	beer := f.addMenuItem(t, "Club Beer", 15, nil)
	rate := 0.1
	_, err := f.settings.UpsertSettings(f.ctx, UpsertSettingsRequest{
		TaxRate:        &rate,
		PaymentMethods: &models.PaymentMethods{Cash: true, MobileMoney: false},
	})
	require.NoError(t, err)
	waitFor(t, f.settingsView, func(s []models.AppSettings) bool { return len(s) == 1 })

	c := cart.New()
	c.Add(beer, 2)
	_, err = f.orders.Submit(f.ctx, c, SubmitOrderRequest{Table: 3, Payment: "Mobile Money"}, nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, c.IsEmpty())

	placed, err := f.orders.Submit(f.ctx, c, SubmitOrderRequest{Table: 3, Payment: "Cash"}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 33.0, placed.Order.Total, 1e-9)
	assert.Empty(t, placed.Order.StaffID, "customer orders carry no staff attribution")
}

func TestSubmit_CreateFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	beer := f.addMenuItem(t, "Club Beer", 15, nil)
	c := cart.New()
	c.Add(beer, 1)

	orders := NewOrderService(
		repositories.NewOrderRepository(store.NewMemoryStore(repositories.CollectionMenu)),
		f.menuRepo, f.menu, f.settings, f.orderView, nil,
	)
	_, err := orders.Submit(f.ctx, c, SubmitOrderRequest{Table: 1, Payment: "Cash"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrDatabaseError)
	assert.Equal(t, 1, c.TotalItems())
}

// slowOrderRepo holds CreateOrder open until release is closed, after signalling entered.
type slowOrderRepo struct {
	repositories.OrderRepository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newSlowOrderRepo(inner repositories.OrderRepository) *slowOrderRepo {
	return &slowOrderRepo{OrderRepository: inner, entered: make(chan struct{}), release: make(chan struct{})}
}

func (r *slowOrderRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	r.once.Do(func() { close(r.entered) })
	<-r.release
	return r.OrderRepository.CreateOrder(ctx, order)
}

func TestSubmit_ConcurrentCheckoutOfOneCartPlacesOneOrder(t *testing.T) {
	f := newFixture(t)
	beer := f.addMenuItem(t, "Club Beer", 15, models.IntPtr(10))
	slow := newSlowOrderRepo(f.orderRepo)
	orders := NewOrderService(slow, f.menuRepo, f.menu, f.settings, f.orderView, nil)

	c := cart.New()
	c.Add(beer, 2)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = orders.Submit(context.Background(), c, SubmitOrderRequest{Table: 1, Payment: "Cash"}, nil)
		}(i)
	}
	<-slow.entered
	time.Sleep(20 * time.Millisecond)
	close(slow.release)
	wg.Wait()

	placed := 0
	for _, err := range errs {
		if err == nil {
			placed++
			continue
		}
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Equal(t, 1, placed, "one cart places one order")

	docs, err := f.store.Query(f.ctx, repositories.CollectionOrders, "", nil, 0)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	got, err := f.menuRepo.GetMenuItemByID(f.ctx, beer.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, *got.Stock)
}

func TestSubmit_ItemAddedDuringCheckoutStaysInCart(t *testing.T) {
	f := newFixture(t)
	beer := f.addMenuItem(t, "Club Beer", 15, nil)
	fries := f.addMenuItem(t, "Fries", 22, nil)
	slow := newSlowOrderRepo(f.orderRepo)
	orders := NewOrderService(slow, f.menuRepo, f.menu, f.settings, f.orderView, nil)

	c := cart.New()
	c.Add(beer, 2)

	done := make(chan *PlacedOrder)
	go func() {
		placed, err := orders.Submit(context.Background(), c, SubmitOrderRequest{Table: 6, Payment: "Cash"}, nil)
		assert.NoError(t, err)
		done <- placed
	}()
	<-slow.entered
	c.Add(fries, 1)
	close(slow.release)

	placed := <-done
	require.NotNil(t, placed)
	require.Len(t, placed.Order.Items, 1)
	assert.Equal(t, "Club Beer", placed.Order.Items[0].Name)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, fries.ID, items[0].ID)
}

// failingOrderRepo rejects every order after letting the caller modify the cart.
type failingOrderRepo struct {
	repositories.OrderRepository
	during func()
}

func (r failingOrderRepo) CreateOrder(context.Context, *models.Order) (*models.Order, error) {
	r.during()
	return nil, repositories.ErrDatabaseError
}

func TestSubmit_CreateFailureRestoresEntriesAlongsideNewOnes(t *testing.T) {
	f := newFixture(t)
	beer := f.addMenuItem(t, "Club Beer", 15, nil)
	fries := f.addMenuItem(t, "Fries", 22, nil)

	c := cart.New()
	c.Add(beer, 2)
	repo := failingOrderRepo{OrderRepository: f.orderRepo, during: func() {
		c.Add(fries, 1)
		c.Add(beer, 1)
	}}
	orders := NewOrderService(repo, f.menuRepo, f.menu, f.settings, f.orderView, nil)

	_, err := orders.Submit(f.ctx, c, SubmitOrderRequest{Table: 2, Payment: "Cash"}, nil)
	require.ErrorIs(t, err, repositories.ErrDatabaseError)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, beer.ID, items[0].ID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, fries.ID, items[1].ID)
}

func TestSubmit_StockDecrementFailureStillPlacesOrder(t *testing.T) {
	f := newFixture(t)
	kept := f.addMenuItem(t, "Heineken", 18, models.IntPtr(5))
	gone := f.addMenuItem(t, "Seasonal Cider", 25, models.IntPtr(5))
	untracked := f.addMenuItem(t, "Chicken Wings", 40, nil)
	require.NoError(t, f.menuRepo.DeleteMenuItem(f.ctx, gone.ID))

	c := cart.New()
	c.Add(kept, 1)
	c.Add(gone, 2)
	c.Add(untracked, 3)

	placed, err := f.orders.Submit(f.ctx, c, SubmitOrderRequest{Table: 2, Payment: "Cash"}, nil)
	require.NoError(t, err)
	assert.False(t, placed.StockFullyApplied())
	require.Len(t, placed.Decrements, 3)
	assert.True(t, placed.Decrements[0].Applied)
	assert.False(t, placed.Decrements[1].Applied)
	assert.NotEmpty(t, placed.Decrements[1].Error)
	assert.True(t, placed.Decrements[2].Applied)

	_, err = f.orders.GetOrderByID(f.ctx, placed.Order.ID)
	require.NoError(t, err)

	wings, err := f.menuRepo.GetMenuItemByID(f.ctx, untracked.ID)
	require.NoError(t, err)
	require.NotNil(t, wings.Stock)
	assert.Equal(t, -3, *wings.Stock, "an untracked item starts counting from zero")
}

func TestSubmit_OrderSnapshotIgnoresLaterPriceEdits(t *testing.T) {
	f := newFixture(t)
	beer := f.addMenuItem(t, "Club Beer", 15, nil)
	c := cart.New()
	c.Add(beer, 2)

	placed, err := f.orders.Submit(f.ctx, c, SubmitOrderRequest{Table: 1, Payment: "Cash"}, nil)
	require.NoError(t, err)

	price := 99.0
	_, err = f.menu.UpdateMenuItem(f.ctx, beer.ID, UpdateMenuItemRequest{Price: &price})
	require.NoError(t, err)

	got, err := f.orders.GetOrderByID(f.ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, got.Items[0].Price)
	assert.InDelta(t, 31.5, got.Total, 1e-9)
}

func TestSubmit_ConcurrentDecrementsGoNegative(t *testing.T) {
	f := newFixture(t)
	burger := f.addMenuItem(t, "Beef Burger", 45, models.IntPtr(1))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := cart.New()
			c.Add(burger, 1)
			_, errs[i] = f.orders.Submit(context.Background(), c, SubmitOrderRequest{Table: i + 1, Payment: "Cash"}, nil)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	got, err := f.menuRepo.GetMenuItemByID(f.ctx, burger.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, *got.Stock)
}

func TestSubmit_SameTableCreatesIndependentOrders(t *testing.T) {
	f := newFixture(t)
	beer := f.addMenuItem(t, "Club Beer", 15, nil)

	var ids []string
	for i := 0; i < 2; i++ {
		c := cart.New()
		c.Add(beer, 1)
		placed, err := f.orders.Submit(f.ctx, c, SubmitOrderRequest{Table: 5, Payment: "Cash"}, nil)
		require.NoError(t, err)
		ids = append(ids, placed.Order.ID)
	}
	assert.NotEqual(t, ids[0], ids[1])
}

func TestPlaceOrder_UsesCatalogPriceAndMergesLines(t *testing.T) {
	f := newFixture(t)
	beer := f.addMenuItem(t, "Club Beer", 15, nil)

	placed, err := f.orders.PlaceOrder(f.ctx, PlaceOrderRequest{
		SubmitOrderRequest: SubmitOrderRequest{Table: 4, Payment: "Mobile Money"},
		Items:              []OrderLineRequest{{ItemID: beer.ID, Quantity: 1}, {ItemID: beer.ID, Quantity: 2}},
	}, nil)
	require.NoError(t, err)
	require.Len(t, placed.Order.Items, 1)
	assert.Equal(t, 3, placed.Order.Items[0].Quantity)
	assert.Equal(t, "Club Beer", placed.Order.Items[0].Name)

	_, err = f.orders.PlaceOrder(f.ctx, PlaceOrderRequest{
		SubmitOrderRequest: SubmitOrderRequest{Table: 4, Payment: "Cash"},
		Items:              []OrderLineRequest{{ItemID: "nope", Quantity: 1}},
	}, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPlaceOrder_RejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(t)
	beer := f.addMenuItem(t, "Club Beer", 15, models.IntPtr(10))

	for _, qty := range []int{0, -2} {
		_, err := f.orders.PlaceOrder(f.ctx, PlaceOrderRequest{
			SubmitOrderRequest: SubmitOrderRequest{Table: 4, Payment: "Cash"},
			Items:              []OrderLineRequest{{ItemID: beer.ID, Quantity: 1}, {ItemID: beer.ID, Quantity: qty}},
		}, nil)
		assert.ErrorIs(t, err, ErrValidation, "quantity %d", qty)
	}

	docs, err := f.store.Query(f.ctx, repositories.CollectionOrders, "", nil, 0)
	require.NoError(t, err)
	assert.Empty(t, docs)
	got, err := f.menuRepo.GetMenuItemByID(f.ctx, beer.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, *got.Stock)
}

func placeOrder(t *testing.T, f *fixture) models.Order {
	t.Helper()
	item := f.addMenuItem(t, "Sprite", 8, nil)
	c := cart.New()
	c.Add(item, 1)
	placed, err := f.orders.Submit(f.ctx, c, SubmitOrderRequest{Table: 1, Payment: "Cash"}, nil)
	require.NoError(t, err)
	return placed.Order
}

func TestAdvance_FollowsTransitionTable(t *testing.T) {
	f := newFixture(t)
	order := placeOrder(t, f)

	steps := []struct {
		to    models.OrderStatus
		actor models.StaffRole
	}{
		{models.StatusInProgress, models.RoleCounter},
		{models.StatusReady, models.RoleCounter},
		{models.StatusDelivered, models.RoleWaiter},
	}
	for _, step := range steps {
		updated, err := f.orders.Advance(f.ctx, order.ID, step.to, step.actor)
		require.NoError(t, err, "advance to %s", step.to)
		assert.Equal(t, step.to, updated.Status)
	}

	_, err := f.orders.Advance(f.ctx, order.ID, models.StatusServed, models.RoleCounter)
	assert.ErrorIs(t, err, ErrInvalidTransition, "delivered is terminal")
}

func TestAdvance_RejectsIllegalMoves(t *testing.T) {
	tests := []struct {
		name    string
		prepare []models.OrderStatus
		to      models.OrderStatus
		actor   models.StaffRole
		wantErr error
	}{
		{name: "skip ahead", to: models.StatusReady, actor: models.RoleCounter, wantErr: ErrInvalidTransition},
		{name: "backwards", prepare: []models.OrderStatus{models.StatusInProgress}, to: models.StatusPending, actor: models.RoleCounter, wantErr: ErrInvalidTransition},
		{name: "same status", to: models.StatusPending, actor: models.RoleCounter, wantErr: ErrInvalidTransition},
		{name: "waiter starts order", to: models.StatusInProgress, actor: models.RoleWaiter, wantErr: ErrTransitionForbidden},
		{name: "counter delivers", prepare: []models.OrderStatus{models.StatusInProgress, models.StatusReady}, to: models.StatusDelivered, actor: models.RoleCounter, wantErr: ErrTransitionForbidden},
		{name: "admin serves", prepare: []models.OrderStatus{models.StatusInProgress, models.StatusReady}, to: models.StatusServed, actor: models.RoleAdmin, wantErr: ErrTransitionForbidden},
		{name: "unknown status", to: models.OrderStatus("Cancelled"), actor: models.RoleCounter, wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			order := placeOrder(t, f)
			for _, st := range tt.prepare {
				_, err := f.orders.Advance(f.ctx, order.ID, st, models.RoleSuperadmin)
				require.NoError(t, err)
			}
			_, err := f.orders.Advance(f.ctx, order.ID, tt.to, tt.actor)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAdvance_SuperadminMayServeOrDeliver(t *testing.T) {
	for _, terminal := range []models.OrderStatus{models.StatusServed, models.StatusDelivered} {
		f := newFixture(t)
		order := placeOrder(t, f)
		for _, st := range []models.OrderStatus{models.StatusInProgress, models.StatusReady, terminal} {
			_, err := f.orders.Advance(f.ctx, order.ID, st, models.RoleSuperadmin)
			require.NoError(t, err)
		}
	}
}

// staleOrderRepo serves reads from a copy taken earlier.
type staleOrderRepo struct {
	repositories.OrderRepository
	stale models.Order
}

func (r staleOrderRepo) GetOrderByID(context.Context, string) (*models.Order, error) {
	o := r.stale
	return &o, nil
}

func TestAdvance_StaleReadCannotMoveOrderBack(t *testing.T) {
	f := newFixture(t)
	order := placeOrder(t, f)
	_, err := f.orders.Advance(f.ctx, order.ID, models.StatusInProgress, models.RoleCounter)
	require.NoError(t, err)
	stale, err := f.orders.GetOrderByID(f.ctx, order.ID)
	require.NoError(t, err)

	for _, st := range []models.OrderStatus{models.StatusReady, models.StatusServed} {
		_, err := f.orders.Advance(f.ctx, order.ID, st, models.RoleCounter)
		require.NoError(t, err)
	}

	orders := NewOrderService(staleOrderRepo{OrderRepository: f.orderRepo, stale: *stale}, f.menuRepo, f.menu, f.settings, f.orderView, nil)
	_, err = orders.Advance(f.ctx, order.ID, models.StatusReady, models.RoleCounter)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := f.orders.GetOrderByID(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusServed, got.Status)
}

func TestAdvance_UnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.Advance(f.ctx, "missing", models.StatusInProgress, models.RoleCounter)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListOrders_ActiveViewsExcludeTerminalOrders(t *testing.T) {
	f := newFixture(t)
	served := placeOrder(t, f)
	delivered := placeOrder(t, f)
	ready := placeOrder(t, f)
	pending := placeOrder(t, f)

	for _, st := range []models.OrderStatus{models.StatusInProgress, models.StatusReady} {
		for _, id := range []string{served.ID, delivered.ID, ready.ID} {
			_, err := f.orders.Advance(f.ctx, id, st, models.RoleCounter)
			require.NoError(t, err)
		}
	}
	_, err := f.orders.Advance(f.ctx, served.ID, models.StatusServed, models.RoleCounter)
	require.NoError(t, err)
	_, err = f.orders.Advance(f.ctx, delivered.ID, models.StatusDelivered, models.RoleWaiter)
	require.NoError(t, err)

	waitFor(t, f.orderView, func(orders []models.Order) bool {
		return CounterDashboardFor(orders).Completed == 2
	})

	idsOf := func(orders []models.Order) []string {
		var out []string
		for _, o := range orders {
			out = append(out, o.ID)
		}
		return out
	}

	active, err := f.orders.ListOrders(f.ctx, models.OrderFilters{View: "active"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{ready.ID, pending.ID}, idsOf(active))

	awaiting, err := f.orders.ListOrders(f.ctx, models.OrderFilters{View: "ready"})
	require.NoError(t, err)
	assert.Equal(t, []string{ready.ID}, idsOf(awaiting))

	completed, err := f.orders.ListOrders(f.ctx, models.OrderFilters{View: "completed"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{served.ID, delivered.ID}, idsOf(completed))

	all, err := f.orders.ListOrders(f.ctx, models.OrderFilters{})
	require.NoError(t, err)
	assert.Equal(t, []string{pending.ID, ready.ID, delivered.ID, served.ID}, idsOf(all), "newest first")

	_, err = f.orders.ListOrders(f.ctx, models.OrderFilters{View: "archived"})
	assert.ErrorIs(t, err, ErrValidation)
}
