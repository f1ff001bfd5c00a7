package repositories

import (
	"context"
	"fmt"

	"pub_pos_backend/internal/models"
)

// MenuRepository defines the interface for menu catalog operations.
type MenuRepository interface {
	CreateMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error)
	GetMenuItemByID(ctx context.Context, id string) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id string, fields map[string]any) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) error
	// AdjustStock atomically adds delta to the item's stock counter.
	AdjustStock(ctx context.Context, id string, delta int) error
}

type menuRepository struct {
	db DocumentExecutor
}

// NewMenuRepository creates a new instance of MenuRepository.
func NewMenuRepository(db DocumentExecutor) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) CreateMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	doc, err := r.db.Create(ctx, CollectionMenu, menuItemFields(item))
	if err != nil {
		return nil, wrapStoreError(err, "creating menu item")
	}
	created := DecodeMenuItem(doc)
	return &created, nil
}

func (r *menuRepository) GetMenuItemByID(ctx context.Context, id string) (*models.MenuItem, error) {
	doc, err := r.db.Get(ctx, CollectionMenu, id)
	if err != nil {
		return nil, wrapStoreError(err, fmt.Sprintf("menu item %s", id))
	}
	item := DecodeMenuItem(doc)
	return &item, nil
}

func (r *menuRepository) UpdateMenuItem(ctx context.Context, id string, fields map[string]any) (*models.MenuItem, error) {
	if err := r.db.Update(ctx, CollectionMenu, id, fields); err != nil {
		return nil, wrapStoreError(err, fmt.Sprintf("updating menu item %s", id))
	}
	return r.GetMenuItemByID(ctx, id)
}

func (r *menuRepository) DeleteMenuItem(ctx context.Context, id string) error {
	return wrapStoreError(r.db.Delete(ctx, CollectionMenu, id), fmt.Sprintf("deleting menu item %s", id))
}

func (r *menuRepository) AdjustStock(ctx context.Context, id string, delta int) error {
	err := r.db.Increment(ctx, CollectionMenu, id, "stock", float64(delta))
	return wrapStoreError(err, fmt.Sprintf("adjusting stock of %s", id))
}
