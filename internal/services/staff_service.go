package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pub_pos_backend/internal/models"
	"pub_pos_backend/internal/repositories"
	"pub_pos_backend/pkg/utils"
)

// CreateStaffRequest DTO
type CreateStaffRequest struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required"`
	Role   string `json:"role" binding:"required"`
	Active *bool  `json:"active"`
}

// UpdateStaffRequest DTO. Nil fields are left unchanged.
type UpdateStaffRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Role   *string `json:"role"`
	Active *bool   `json:"active"`
}

// StaffService manages the staff directory. Admins never see or touch superadmin
// records; a superadmin is unrestricted.
type StaffService interface {
	ListStaff(ctx context.Context, actor models.StaffRole) ([]models.Staff, error)
	GetStaff(ctx context.Context, actor models.StaffRole, id string) (*models.Staff, error)
	CreateStaff(ctx context.Context, actor models.StaffRole, req CreateStaffRequest) (*models.Staff, error)
	UpdateStaff(ctx context.Context, actor models.StaffRole, id string, req UpdateStaffRequest) (*models.Staff, error)
	SetActive(ctx context.Context, actor models.StaffRole, id string, active bool) (*models.Staff, error)
	DeleteStaff(ctx context.Context, actor models.StaffRole, id string) error
}

type staffService struct {
	repo repositories.StaffRepository
	view Snapshot[models.Staff]
}

func NewStaffService(repo repositories.StaffRepository, view Snapshot[models.Staff]) StaffService {
	return &staffService{repo: repo, view: view}
}

// visible reports whether actor may see or manage a record with role target.
func visible(actor, target models.StaffRole) bool {
	return actor == models.RoleSuperadmin || target != models.RoleSuperadmin
}

func (s *staffService) ListStaff(ctx context.Context, actor models.StaffRole) ([]models.Staff, error) {
	if s.view == nil {
		return nil, ErrUnavailable
	}
	all, err := current(ctx, s.view)
	if err != nil {
		return nil, err
	}
	out := make([]models.Staff, 0, len(all))
	for _, st := range all {
		if visible(actor, st.Role) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *staffService) GetStaff(ctx context.Context, actor models.StaffRole, id string) (*models.Staff, error) {
	staff, err := s.repo.GetStaffByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to read staff member: %w", err)
	}
	if !visible(actor, staff.Role) {
		// Hidden records are reported as missing.
		return nil, ErrStaffNotFound
	}
	return staff, nil
}

func (s *staffService) CreateStaff(ctx context.Context, actor models.StaffRole, req CreateStaffRequest) (*models.Staff, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if !utils.IsValidEmail(models.NormalizeEmail(req.Email)) {
		return nil, validationError("a valid email is required")
	}
	role, ok := models.ParseStaffRole(req.Role)
	if !ok {
		return nil, validationError("unknown role %q", req.Role)
	}
	if !visible(actor, role) {
		return nil, ErrForbidden
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	created, err := s.repo.CreateStaff(ctx, &models.Staff{Name: name, Email: req.Email, Role: role, Active: active})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create staff member: %w", err)
	}
	utils.LogInfo("Staff member created", map[string]interface{}{"staff_id": created.ID, "role": string(role)})
	return created, nil
}

func (s *staffService) UpdateStaff(ctx context.Context, actor models.StaffRole, id string, req UpdateStaffRequest) (*models.Staff, error) {
	if _, err := s.GetStaff(ctx, actor, id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationError("name must not be empty")
		}
		fields["name"] = name
	}
	if req.Email != nil {
		if !utils.IsValidEmail(models.NormalizeEmail(*req.Email)) {
			return nil, validationError("a valid email is required")
		}
		fields["email"] = models.NormalizeEmail(*req.Email)
	}
	if req.Role != nil {
		role, ok := models.ParseStaffRole(*req.Role)
		if !ok {
			return nil, validationError("unknown role %q", *req.Role)
		}
		if !visible(actor, role) {
			return nil, ErrForbidden
		}
		fields["role"] = string(role)
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	if len(fields) == 0 {
		return nil, validationError("no fields to update")
	}

	updated, err := s.repo.UpdateStaff(ctx, id, fields)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrStaffNotFound
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to update staff member: %w", err)
	}
	return updated, nil
}

// SetActive suspends (false) or reactivates (true) a staff member.
func (s *staffService) SetActive(ctx context.Context, actor models.StaffRole, id string, active bool) (*models.Staff, error) {
	return s.UpdateStaff(ctx, actor, id, UpdateStaffRequest{Active: &active})
}

func (s *staffService) DeleteStaff(ctx context.Context, actor models.StaffRole, id string) error {
	if _, err := s.GetStaff(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.DeleteStaff(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrStaffNotFound
		}
		return fmt.Errorf("failed to delete staff member: %w", err)
	}
	return nil
}
