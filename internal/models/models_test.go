package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from     OrderStatus
		next     []OrderStatus
		terminal bool
	}{
		{StatusPending, []OrderStatus{StatusInProgress}, false},
		{StatusInProgress, []OrderStatus{StatusReady}, false},
		{StatusReady, []OrderStatus{StatusServed, StatusDelivered}, false},
		{StatusServed, nil, true},
		{StatusDelivered, nil, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			assert.ElementsMatch(t, tt.next, tt.from.NextStatuses())
			assert.Equal(t, tt.terminal, tt.from.IsTerminal())
			for _, to := range tt.next {
				assert.True(t, tt.from.CanAdvanceTo(to))
			}
			assert.False(t, tt.from.CanAdvanceTo(tt.from))
		})
	}
}

func TestNextStatusesReturnsCopy(t *testing.T) {
	next := StatusReady.NextStatuses()
	next[0] = StatusPending

	assert.Equal(t, []OrderStatus{StatusServed, StatusDelivered}, StatusReady.NextStatuses())
}

func TestOrderStatusViews(t *testing.T) {
	assert.True(t, StatusPending.IsCounterActive())
	assert.True(t, StatusReady.IsCounterActive())
	assert.False(t, StatusServed.IsCounterActive())

	assert.True(t, StatusReady.IsAwaitingDelivery())
	assert.False(t, StatusInProgress.IsAwaitingDelivery())

	assert.True(t, StatusServed.IsCompleted())
	assert.True(t, StatusDelivered.IsCompleted())
	assert.False(t, StatusReady.IsCompleted())
}

func TestParseOrderStatus(t *testing.T) {
	st, ok := ParseOrderStatus("In Progress")
	assert.True(t, ok)
	assert.Equal(t, StatusInProgress, st)

	_, ok = ParseOrderStatus("in progress")
	assert.False(t, ok)
	_, ok = ParseOrderStatus("Cancelled")
	assert.False(t, ok)
}

func TestParsePaymentMethod(t *testing.T) {
	pm, ok := ParsePaymentMethod("Mobile Money")
	assert.True(t, ok)
	assert.Equal(t, PaymentMobileMoney, pm)

	_, ok = ParsePaymentMethod("Card")
	assert.False(t, ok)
}

func TestStaffRoles(t *testing.T) {
	r, ok := ParseStaffRole("  Counter ")
	assert.True(t, ok)
	assert.Equal(t, RoleCounter, r)

	_, ok = ParseStaffRole("manager")
	assert.False(t, ok)

	assert.True(t, RoleWaiter.Satisfies(RoleWaiter))
	assert.False(t, RoleAdmin.Satisfies(RoleCounter))
	for _, want := range []StaffRole{RoleWaiter, RoleCounter, RoleAdmin} {
		assert.True(t, RoleSuperadmin.Satisfies(want))
	}

	assert.Equal(t, "ana@pub.test", NormalizeEmail(" Ana@Pub.TEST "))
}

func TestSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, DefaultTaxRate, s.TaxRate)
	assert.True(t, s.Allows(PaymentCash))
	assert.True(t, s.Allows(PaymentMobileMoney))

	s.PaymentMethods.MobileMoney = false
	assert.False(t, s.Allows(PaymentMobileMoney))
	assert.False(t, s.Allows(PaymentMethod("Card")))

	assert.Equal(t, 0.0, ClampTaxRate(-0.2))
	assert.Equal(t, 1.0, ClampTaxRate(3))
	assert.Equal(t, 0.16, ClampTaxRate(0.16))
}
