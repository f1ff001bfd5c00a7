package repositories

import (
	"context"
	"fmt"

	"pub_pos_backend/internal/models"
)

// StaffRepository defines the interface for the staff directory.
type StaffRepository interface {
	CreateStaff(ctx context.Context, staff *models.Staff) (*models.Staff, error)
	GetStaffByID(ctx context.Context, id string) (*models.Staff, error)
	// GetStaffByEmail matches the lower-cased email.
	GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error)
	HasRole(ctx context.Context, role models.StaffRole) (bool, error)
	UpdateStaff(ctx context.Context, id string, fields map[string]any) (*models.Staff, error)
	DeleteStaff(ctx context.Context, id string) error
}

type staffRepository struct {
	db DocumentExecutor
}

// NewStaffRepository creates a new instance of StaffRepository.
func NewStaffRepository(db DocumentExecutor) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) CreateStaff(ctx context.Context, staff *models.Staff) (*models.Staff, error) {
	email := models.NormalizeEmail(staff.Email)
	existing, err := r.db.Query(ctx, CollectionStaff, "email", email, 1)
	if err != nil {
		return nil, wrapStoreError(err, "checking staff email")
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: email %s is already registered", ErrDuplicateKey, email)
	}

	doc, err := r.db.Create(ctx, CollectionStaff, staffFields(staff))
	if err != nil {
		return nil, wrapStoreError(err, "creating staff member")
	}
	created := DecodeStaff(doc)
	return &created, nil
}

func (r *staffRepository) GetStaffByID(ctx context.Context, id string) (*models.Staff, error) {
	doc, err := r.db.Get(ctx, CollectionStaff, id)
	if err != nil {
		return nil, wrapStoreError(err, fmt.Sprintf("staff member %s", id))
	}
	staff := DecodeStaff(doc)
	return &staff, nil
}

func (r *staffRepository) GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error) {
	docs, err := r.db.Query(ctx, CollectionStaff, "email", models.NormalizeEmail(email), 1)
	if err != nil {
		return nil, wrapStoreError(err, "looking up staff by email")
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	staff := DecodeStaff(docs[0])
	return &staff, nil
}

func (r *staffRepository) HasRole(ctx context.Context, role models.StaffRole) (bool, error) {
	docs, err := r.db.Query(ctx, CollectionStaff, "role", string(role), 1)
	if err != nil {
		return false, wrapStoreError(err, "querying staff role")
	}
	return len(docs) > 0, nil
}

// UpdateStaff merges fields. A changed email must stay unique.
func (r *staffRepository) UpdateStaff(ctx context.Context, id string, fields map[string]any) (*models.Staff, error) {
	if raw, ok := fields["email"].(string); ok {
		email := models.NormalizeEmail(raw)
		fields["email"] = email
		docs, err := r.db.Query(ctx, CollectionStaff, "email", email, 0)
		if err != nil {
			return nil, wrapStoreError(err, "checking staff email")
		}
		for _, d := range docs {
			if d.ID != id {
				return nil, fmt.Errorf("%w: email %s is already registered", ErrDuplicateKey, email)
			}
		}
	}
	if err := r.db.Update(ctx, CollectionStaff, id, fields); err != nil {
		return nil, wrapStoreError(err, fmt.Sprintf("updating staff member %s", id))
	}
	return r.GetStaffByID(ctx, id)
}

func (r *staffRepository) DeleteStaff(ctx context.Context, id string) error {
	return wrapStoreError(r.db.Delete(ctx, CollectionStaff, id), fmt.Sprintf("deleting staff member %s", id))
}
