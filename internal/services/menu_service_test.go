package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pub_pos_backend/internal/models"
	"pub_pos_backend/internal/textgen"
)

type fakeDescriber struct{ got string }

func (f *fakeDescriber) Describe(_ context.Context, name string) string {
	f.got = name
	return "A bold pour."
}

func TestMenu_CreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.menu.CreateMenuItem(f.ctx, CreateMenuItemRequest{Name: "  ", Price: 3})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.menu.CreateMenuItem(f.ctx, CreateMenuItemRequest{Name: "Water", Price: -1})
	assert.ErrorIs(t, err, ErrValidation)

	item, err := f.menu.CreateMenuItem(f.ctx, CreateMenuItemRequest{Name: "Water", Price: 0, Category: "Soft Drinks"})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Nil(t, item.Stock)
}

func TestMenu_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	item := f.addMenuItem(t, "Heineken", 18, models.IntPtr(100))

	desc := "Classic European pale lager."
	updated, err := f.menu.UpdateMenuItem(f.ctx, item.ID, UpdateMenuItemRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, 18.0, updated.Price)

	_, err = f.menu.UpdateMenuItem(f.ctx, item.ID, UpdateMenuItemRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, f.menu.DeleteMenuItem(f.ctx, item.ID))
	assert.ErrorIs(t, f.menu.DeleteMenuItem(f.ctx, item.ID), ErrMenuItemNotFound)
	_, err = f.menu.UpdateMenuItem(f.ctx, item.ID, UpdateMenuItemRequest{Description: &desc})
	assert.ErrorIs(t, err, ErrMenuItemNotFound)
}

func TestMenu_SeedAndList(t *testing.T) {
	f := newFixture(t)

	n, err := f.menu.SeedMenu(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	waitFor(t, f.menuView, func(items []models.MenuItem) bool { return len(items) == 12 })
	items, err := f.menu.ListMenu(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "Beef Burger", items[0].Name, "menu is ordered by name")
	assert.Equal(t, "Sprite", items[len(items)-1].Name)
}

func TestMenu_DescribeItem(t *testing.T) {
	f := newFixture(t)

	text, err := f.menu.DescribeItem(f.ctx, "Mojito")
	require.NoError(t, err)
	assert.Equal(t, textgen.Fallback, text, "no generator configured")

	d := &fakeDescriber{}
	svc := NewMenuService(f.menuRepo, f.menuView, d)
	text, err = svc.DescribeItem(f.ctx, " Mojito ")
	require.NoError(t, err)
	assert.Equal(t, "A bold pour.", text)
	assert.Equal(t, "Mojito", d.got)

	_, err = svc.DescribeItem(f.ctx, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSettings_DefaultsAndClamp(t *testing.T) {
	f := newFixture(t)

	s, err := f.settings.GetSettings(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), s)

	rate := 1.5
	saved, err := f.settings.UpsertSettings(f.ctx, UpsertSettingsRequest{
		TaxRate:        &rate,
		PaymentMethods: &models.PaymentMethods{Cash: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, saved.TaxRate)

	waitFor(t, f.settingsView, func(s []models.AppSettings) bool { return len(s) == 1 })
	rate = 0.08
	again, err := f.settings.UpsertSettings(f.ctx, UpsertSettingsRequest{
		TaxRate:        &rate,
		PaymentMethods: &models.PaymentMethods{Cash: true, MobileMoney: true},
	})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)

	_, err = f.settings.UpsertSettings(f.ctx, UpsertSettingsRequest{})
	assert.ErrorIs(t, err, ErrValidation)
}
