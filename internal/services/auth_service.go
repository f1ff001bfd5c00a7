package services

import (
	"context"
	"errors"
	"fmt"

	"pub_pos_backend/internal/metrics"
	"pub_pos_backend/internal/models"
	"pub_pos_backend/internal/repositories"
	"pub_pos_backend/internal/session"
	"pub_pos_backend/pkg/utils"
)

const superadminName = "Super Admin"

// --- AuthService Interface ---
type AuthService interface {
	Login(ctx context.Context, req models.Credentials) (*models.LoginResponse, error)
	ProvisionSuperadmin(ctx context.Context, req models.ProvisionPayload) (*models.LoginResponse, error)
	Logout(sess *session.Session)
}

// --- authService Implementation ---
type authService struct {
	staffRepo repositories.StaffRepository
	sessions  *session.Manager
	metrics   *metrics.Metrics
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(staffRepo repositories.StaffRepository, sessions *session.Manager, m *metrics.Metrics) AuthService {
	return &authService{staffRepo: staffRepo, sessions: sessions, metrics: m}
}

// Login resolves email against the staff directory for the requested role.
// A superadmin record satisfies every role.
func (s *authService) Login(ctx context.Context, req models.Credentials) (*models.LoginResponse, error) {
	role, ok := models.ParseStaffRole(req.Role)
	if !ok {
		return nil, validationError("Unknown role.")
	}
	email := models.NormalizeEmail(req.Email)
	if email == "" {
		return nil, validationError("email is required")
	}

	staff, err := s.staffRepo.GetStaffByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("login attempt failed: %w", err)
		}
		s.metrics.Login(string(role), "not_found")
		return nil, s.notFound(ctx, role)
	}

	if !staff.Role.Satisfies(role) {
		s.metrics.Login(string(role), "wrong_role")
		return nil, loginError(ErrWrongRole, "This email belongs to a %s account.", staff.Role)
	}
	if !staff.Active {
		s.metrics.Login(string(role), "suspended")
		return nil, loginError(ErrStaffSuspended, "This staff account is suspended. Contact an admin.")
	}

	resp, err := s.issue(*staff)
	if err != nil {
		return nil, err
	}
	s.metrics.Login(string(role), "ok")
	return resp, nil
}

// notFound decides between a plain miss and the one-time superadmin offer.
func (s *authService) notFound(ctx context.Context, role models.StaffRole) error {
	switch role {
	case models.RoleAdmin:
		return loginError(ErrStaffNotFound, "No admin account found for this email. Ask an existing admin or super admin to create one for you.")
	case models.RoleSuperadmin:
		exists, err := s.staffRepo.HasRole(ctx, models.RoleSuperadmin)
		if err != nil {
			return fmt.Errorf("login attempt failed: %w", err)
		}
		if !exists {
			return loginError(ErrSuperadminAvailable, "No super admin exists. You can create the first super admin below.")
		}
	}
	return loginError(ErrStaffNotFound, "No account found for this email.")
}

// ProvisionSuperadmin creates the first superadmin and signs them in. It re-checks
// that no superadmin exists at the moment of creation.
func (s *authService) ProvisionSuperadmin(ctx context.Context, req models.ProvisionPayload) (*models.LoginResponse, error) {
	email := models.NormalizeEmail(req.Email)
	if email == "" {
		return nil, validationError("email is required")
	}

	exists, err := s.staffRepo.HasRole(ctx, models.RoleSuperadmin)
	if err != nil {
		return nil, fmt.Errorf("could not create super admin: %w", err)
	}
	if exists {
		return nil, loginError(ErrSuperadminExists, "A super admin already exists.")
	}

	created, err := s.staffRepo.CreateStaff(ctx, &models.Staff{
		Name:   superadminName,
		Email:  email,
		Role:   models.RoleSuperadmin,
		Active: true,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrEmailExists, email)
		}
		return nil, fmt.Errorf("could not create super admin: %w", err)
	}
	utils.LogInfo("Superadmin provisioned", map[string]interface{}{"staff_id": created.ID})
	return s.issue(*created)
}

func (s *authService) Logout(sess *session.Session) {
	s.sessions.Revoke(sess)
}

func (s *authService) issue(staff models.Staff) (*models.LoginResponse, error) {
	token, sess, err := s.sessions.Issue(staff)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	return &models.LoginResponse{Token: token, ExpiresAt: sess.ExpiresAt, Staff: staff}, nil
}
