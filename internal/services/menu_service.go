package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pub_pos_backend/internal/models"
	"pub_pos_backend/internal/repositories"
	"pub_pos_backend/internal/textgen"
	"pub_pos_backend/pkg/utils"
)

// CreateMenuItemRequest DTO
type CreateMenuItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"img"`
	Stock       *int    `json:"stock"`
	Description string  `json:"description"`
}

// UpdateMenuItemRequest DTO. Nil fields are left unchanged.
type UpdateMenuItemRequest struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Image       *string  `json:"img"`
	Stock       *int     `json:"stock"`
	Description *string  `json:"description"`
}

// MenuService manages the catalog.
type MenuService interface {
	CreateMenuItem(ctx context.Context, req CreateMenuItemRequest) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id string, req UpdateMenuItemRequest) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) error
	GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error)
	ListMenu(ctx context.Context) ([]models.MenuItem, error)
	SeedMenu(ctx context.Context) (int, error)
	DescribeItem(ctx context.Context, name string) (string, error)
}

type menuService struct {
	repo      repositories.MenuRepository
	view      Snapshot[models.MenuItem]
	describer textgen.Describer
}

func NewMenuService(repo repositories.MenuRepository, view Snapshot[models.MenuItem], describer textgen.Describer) MenuService {
	return &menuService{repo: repo, view: view, describer: describer}
}

func (s *menuService) CreateMenuItem(ctx context.Context, req CreateMenuItemRequest) (*models.MenuItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if req.Price < 0 {
		return nil, validationError("price must not be negative")
	}

	item, err := s.repo.CreateMenuItem(ctx, &models.MenuItem{
		Name:        name,
		Price:       req.Price,
		Category:    strings.TrimSpace(req.Category),
		Image:       req.Image,
		Stock:       req.Stock,
		Description: req.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}
	return item, nil
}

// UpdateMenuItem merges the given fields. Orders keep their own price snapshot.
func (s *menuService) UpdateMenuItem(ctx context.Context, id string, req UpdateMenuItemRequest) (*models.MenuItem, error) {
	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationError("name must not be empty")
		}
		fields["name"] = name
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, validationError("price must not be negative")
		}
		fields["price"] = *req.Price
	}
	if req.Category != nil {
		fields["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Image != nil {
		fields["img"] = *req.Image
	}
	if req.Stock != nil {
		fields["stock"] = *req.Stock
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if len(fields) == 0 {
		return nil, validationError("no fields to update")
	}

	item, err := s.repo.UpdateMenuItem(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}
	return item, nil
}

// DeleteMenuItem removes the catalog entry. Existing orders are untouched.
func (s *menuService) DeleteMenuItem(ctx context.Context, id string) error {
	if err := s.repo.DeleteMenuItem(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMenuItemNotFound
		}
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	return nil
}

// GetMenuItem prefers the live view and falls back to a point read.
func (s *menuService) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	if s.view != nil {
		if items, err := current(ctx, s.view); err == nil {
			for i := range items {
				if items[i].ID == id {
					return &items[i], nil
				}
			}
		}
	}
	item, err := s.repo.GetMenuItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("failed to read menu item: %w", err)
	}
	return item, nil
}

// ListMenu returns the live catalog, ordered by name.
func (s *menuService) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	if s.view == nil {
		return nil, ErrUnavailable
	}
	return current(ctx, s.view)
}

// SeedMenu inserts the default pub catalog and returns the number of items written.
func (s *menuService) SeedMenu(ctx context.Context) (int, error) {
	n := 0
	for _, item := range DefaultMenu() {
		if _, err := s.repo.CreateMenuItem(ctx, &item); err != nil {
			return n, fmt.Errorf("failed to seed %q: %w", item.Name, err)
		}
		n++
	}
	utils.LogInfo("Menu seeded", map[string]interface{}{"items": n})
	return n, nil
}

// DescribeItem returns generated copy for name, or the fallback text.
func (s *menuService) DescribeItem(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationError("item name is required")
	}
	if s.describer == nil {
		return textgen.Fallback, nil
	}
	return s.describer.Describe(ctx, name), nil
}
