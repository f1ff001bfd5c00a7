package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pub_pos_backend/internal/models"
)

func TestLogin_MatchingRole(t *testing.T) {
	f := newFixture(t)
	waiter := f.addStaff(t, "Efua", "efua@pub.com", models.RoleWaiter, true)

	resp, err := f.auth.Login(f.ctx, models.Credentials{Email: "  EFUA@pub.com ", Role: "waiter"})
	require.NoError(t, err)
	assert.Equal(t, waiter.ID, resp.Staff.ID)
	assert.NotEmpty(t, resp.Token)

	sess, err := f.sessions.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleWaiter, sess.Role)
}

func TestLogin_SuperadminSatisfiesAnyRole(t *testing.T) {
	f := newFixture(t)
	f.addStaff(t, "Boss", "boss@pub.com", models.RoleSuperadmin, true)

	for _, role := range []string{"waiter", "counter", "admin", "superadmin"} {
		resp, err := f.auth.Login(f.ctx, models.Credentials{Email: "boss@pub.com", Role: role})
		require.NoError(t, err, role)

		sess, err := f.sessions.Parse(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, models.RoleSuperadmin, sess.Role, "session keeps the record's role")
	}
}

func TestLogin_WrongRoleIsNotNotFound(t *testing.T) {
	f := newFixture(t)
	f.addStaff(t, "Kofi", "kofi@pub.com", models.RoleAdmin, true)

	_, err := f.auth.Login(f.ctx, models.Credentials{Email: "kofi@pub.com", Role: "waiter"})
	assert.ErrorIs(t, err, ErrWrongRole)
	assert.NotErrorIs(t, err, ErrStaffNotFound)
	assert.EqualError(t, err, "This email belongs to a admin account.")
}

func TestLogin_Suspended(t *testing.T) {
	f := newFixture(t)
	f.addStaff(t, "Yaw", "yaw@pub.com", models.RoleCounter, false)

	_, err := f.auth.Login(f.ctx, models.Credentials{Email: "yaw@pub.com", Role: "counter"})
	assert.ErrorIs(t, err, ErrStaffSuspended)
	assert.EqualError(t, err, "This staff account is suspended. Contact an admin.")
}

func TestLogin_NotFoundMessages(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Login(f.ctx, models.Credentials{Email: "ghost@pub.com", Role: "waiter"})
	assert.ErrorIs(t, err, ErrStaffNotFound)
	assert.EqualError(t, err, "No account found for this email.")

	_, err = f.auth.Login(f.ctx, models.Credentials{Email: "ghost@pub.com", Role: "admin"})
	assert.ErrorIs(t, err, ErrStaffNotFound, "admins are never offered self-provisioning")
	assert.NotErrorIs(t, err, ErrSuperadminAvailable)
}

func TestLogin_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Login(f.ctx, models.Credentials{Email: "a@pub.com", Role: "manager"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.auth.Login(f.ctx, models.Credentials{Email: "   ", Role: "waiter"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSuperadminBootstrapHappensOnce(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Login(f.ctx, models.Credentials{Email: "first@pub.com", Role: "superadmin"})
	assert.ErrorIs(t, err, ErrSuperadminAvailable)

	resp, err := f.auth.ProvisionSuperadmin(f.ctx, models.ProvisionPayload{Email: "First@Pub.com"})
	require.NoError(t, err)
	assert.Equal(t, "Super Admin", resp.Staff.Name)
	assert.Equal(t, "first@pub.com", resp.Staff.Email)
	assert.Equal(t, models.RoleSuperadmin, resp.Staff.Role)
	assert.True(t, resp.Staff.Active)

	_, err = f.auth.Login(f.ctx, models.Credentials{Email: "second@pub.com", Role: "superadmin"})
	assert.ErrorIs(t, err, ErrStaffNotFound)
	assert.NotErrorIs(t, err, ErrSuperadminAvailable)

	_, err = f.auth.ProvisionSuperadmin(f.ctx, models.ProvisionPayload{Email: "second@pub.com"})
	assert.ErrorIs(t, err, ErrSuperadminExists)

	_, err = f.auth.Login(f.ctx, models.Credentials{Email: "first@pub.com", Role: "superadmin"})
	assert.NoError(t, err)
}

func TestLogout_RevokesToken(t *testing.T) {
	f := newFixture(t)
	f.addStaff(t, "Efua", "efua@pub.com", models.RoleWaiter, true)

	resp, err := f.auth.Login(f.ctx, models.Credentials{Email: "efua@pub.com", Role: "waiter"})
	require.NoError(t, err)
	sess, err := f.sessions.Parse(resp.Token)
	require.NoError(t, err)

	f.auth.Logout(sess)
	_, err = f.sessions.Parse(resp.Token)
	assert.Error(t, err)
}
