package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleRanking(t *testing.T) {
	ordered := []Role{RoleKitchen, RoleCashier, RoleManager, RoleTenantOwner, RoleAdmin, RoleSuperAdmin}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, Rank(ordered[i]), Rank(ordered[i-1]),
			"%s should outrank %s", ordered[i], ordered[i-1])
	}
}

func TestRoleRank_Unknown(t *testing.T) {
	assert.Equal(t, 0, Rank(Role("janitor")))
	assert.Equal(t, 0, Rank(RoleAnonymous))
}

func TestRoleThresholds(t *testing.T) {
	tests := []struct {
		role      Role
		adminTier bool
		canSwitch bool
	}{
		{RoleSuperAdmin, true, true},
		{RoleAdmin, true, true},
		{RoleTenantOwner, false, true},
		{RoleManager, false, true},
		{RoleCashier, false, false},
		{RoleKitchen, false, false},
		{RoleAnonymous, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.adminTier, tt.role.IsAdminTier())
			assert.Equal(t, tt.canSwitch, tt.role.CanSwitchOutlet())
		})
	}
}

func TestScope_Unrestricted(t *testing.T) {
	tenant := uint(1)

	assert.True(t, Scope{Role: RoleAdmin}.Unrestricted())
	assert.True(t, Scope{Role: RoleSuperAdmin}.Unrestricted())

	// Narrowed admin is no longer unrestricted
	assert.False(t, Scope{Role: RoleAdmin, TenantID: &tenant}.Unrestricted())

	// No role below the admin tier is unrestricted, tenant or not
	assert.False(t, Scope{Role: RoleTenantOwner}.Unrestricted())
	assert.False(t, Scope{Role: RoleCashier, TenantID: &tenant}.Unrestricted())
	assert.False(t, Scope{Role: RoleAnonymous}.Unrestricted())
}

func TestScope_RequireTenant(t *testing.T) {
	tenant := uint(7)

	assert.NoError(t, Scope{Role: RoleCashier, TenantID: &tenant}.RequireTenant())
	assert.NoError(t, Scope{Role: RoleAdmin}.RequireTenant())

	// Tenant-less non-admin scopes fail closed
	assert.ErrorIs(t, Scope{Role: RoleCashier}.RequireTenant(), ErrScopeRequired)
	assert.ErrorIs(t, Scope{Role: RoleAnonymous}.RequireTenant(), ErrScopeRequired)
}

func TestScope_RequireOutlet(t *testing.T) {
	outlet := uint(3)
	assert.NoError(t, Scope{OutletID: &outlet}.RequireOutlet())
	assert.ErrorIs(t, Scope{}.RequireOutlet(), ErrOutletRequired)
}
