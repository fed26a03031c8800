package scope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dadinjaenudin/kiosk-svelte/internal/model"
)

// fakeOutletStore serves outlets from a map, mirroring the lookup contract of
// returning (nil, nil) for misses
type fakeOutletStore struct {
	outlets map[uint]*model.Outlet
}

func (f *fakeOutletStore) GetOutlet(_ context.Context, id uint) (*model.Outlet, error) {
	return f.outlets[id], nil
}

func (f *fakeOutletStore) FirstActiveOutlet(_ context.Context, tenantID uint) (*model.Outlet, error) {
	var best *model.Outlet
	for _, o := range f.outlets {
		if o.TenantID != tenantID || !o.IsActive {
			continue
		}
		if best == nil || o.ID < best.ID {
			best = o
		}
	}
	return best, nil
}

type fakeSessionStore struct {
	remembered map[uint]uint
}

func (f *fakeSessionStore) RememberedOutlet(_ context.Context, userID uint) (*uint, error) {
	if id, ok := f.remembered[userID]; ok {
		return &id, nil
	}
	return nil, nil
}

func (f *fakeSessionStore) RememberOutlet(_ context.Context, userID, outletID uint) error {
	f.remembered[userID] = outletID
	return nil
}

func uptr(v uint) *uint { return &v }

func newTestResolver(outlets ...*model.Outlet) (*Resolver, *fakeSessionStore) {
	byID := make(map[uint]*model.Outlet)
	for _, o := range outlets {
		byID[o.ID] = o
	}
	sessions := &fakeSessionStore{remembered: make(map[uint]uint)}
	return NewResolver(&fakeOutletStore{outlets: byID}, sessions, zap.NewNop()), sessions
}

func TestResolve_Anonymous(t *testing.T) {
	r, _ := newTestResolver()

	sc, err := r.Resolve(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, RoleAnonymous, sc.Role)
	assert.Nil(t, sc.TenantID)

	// Anonymous may narrow to a tenant for catalog browsing
	sc, err = r.Resolve(context.Background(), nil, uptr(4), nil)
	require.NoError(t, err)
	require.NotNil(t, sc.TenantID)
	assert.Equal(t, uint(4), *sc.TenantID)
}

func TestResolve_AdminTier(t *testing.T) {
	outlet := &model.Outlet{ID: 10, TenantID: 2, IsActive: true}
	r, _ := newTestResolver(outlet)
	admin := &model.User{ID: 1, Role: string(RoleAdmin)}

	// No hint: unrestricted
	sc, err := r.Resolve(context.Background(), admin, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, sc.TenantID)
	assert.True(t, sc.Unrestricted())

	// Tenant hint narrows; outlet hint applies inside the tenant
	sc, err = r.Resolve(context.Background(), admin, uptr(2), uptr(10))
	require.NoError(t, err)
	require.NotNil(t, sc.TenantID)
	assert.Equal(t, uint(2), *sc.TenantID)
	require.NotNil(t, sc.OutletID)
	assert.Equal(t, uint(10), *sc.OutletID)
}

func TestResolve_HomeTenantFixed(t *testing.T) {
	r, _ := newTestResolver()
	cashier := &model.User{ID: 5, Role: string(RoleCashier), TenantID: uptr(3)}

	// A disagreeing tenant hint is ignored, not an error
	sc, err := r.Resolve(context.Background(), cashier, uptr(99), nil)
	require.NoError(t, err)
	require.NotNil(t, sc.TenantID)
	assert.Equal(t, uint(3), *sc.TenantID)
}

func TestResolve_CashierPinnedToHomeOutlet(t *testing.T) {
	home := &model.Outlet{ID: 20, TenantID: 3, IsActive: true}
	other := &model.Outlet{ID: 21, TenantID: 3, IsActive: true}
	r, sessions := newTestResolver(home, other)
	cashier := &model.User{ID: 5, Role: string(RoleCashier), TenantID: uptr(3), OutletID: uptr(20)}

	// An outlet hint from a cashier is ignored; home outlet wins
	sc, err := r.Resolve(context.Background(), cashier, nil, uptr(21))
	require.NoError(t, err)
	require.NotNil(t, sc.OutletID)
	assert.Equal(t, uint(20), *sc.OutletID)
	assert.Empty(t, sessions.remembered, "cashier hints must not be persisted")
}

func TestResolve_ManagerSwitchesWithinAccessible(t *testing.T) {
	a := &model.Outlet{ID: 30, TenantID: 3, IsActive: true}
	b := &model.Outlet{ID: 31, TenantID: 3, IsActive: true}
	foreign := &model.Outlet{ID: 40, TenantID: 9, IsActive: true}
	r, sessions := newTestResolver(a, b, foreign)

	manager := &model.User{
		ID: 6, Role: string(RoleManager), TenantID: uptr(3), OutletID: uptr(30),
		AccessibleOutlets: []model.Outlet{*a, *b},
	}

	// Switch to an accessible outlet persists the choice
	sc, err := r.Resolve(context.Background(), manager, nil, uptr(31))
	require.NoError(t, err)
	require.NotNil(t, sc.OutletID)
	assert.Equal(t, uint(31), *sc.OutletID)
	assert.Equal(t, uint(31), sessions.remembered[6])

	// The remembered outlet sticks on the next hint-less request
	sc, err = r.Resolve(context.Background(), manager, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, sc.OutletID)
	assert.Equal(t, uint(31), *sc.OutletID)

	// An outlet in another tenant is refused; fall back to home outlet after
	// clearing the remembered selection
	delete(sessions.remembered, 6)
	sc, err = r.Resolve(context.Background(), manager, nil, uptr(40))
	require.NoError(t, err)
	require.NotNil(t, sc.OutletID)
	assert.Equal(t, uint(30), *sc.OutletID)
}

func TestResolve_ManagerHintOutsideAccessibleSet(t *testing.T) {
	a := &model.Outlet{ID: 30, TenantID: 3, IsActive: true}
	// Valid and active, same tenant, but not assigned to this manager
	unassigned := &model.Outlet{ID: 32, TenantID: 3, IsActive: true}
	r, sessions := newTestResolver(a, unassigned)

	manager := &model.User{
		ID: 6, Role: string(RoleManager), TenantID: uptr(3), OutletID: uptr(30),
		AccessibleOutlets: []model.Outlet{*a},
	}

	sc, err := r.Resolve(context.Background(), manager, nil, uptr(32))
	require.NoError(t, err)
	require.NotNil(t, sc.OutletID)
	assert.Equal(t, uint(30), *sc.OutletID)
	assert.Empty(t, sessions.remembered, "refused hints must not be persisted")
}

func TestResolve_ManagerFallsBackToFirstActiveAccessible(t *testing.T) {
	inactive := &model.Outlet{ID: 50, TenantID: 3, IsActive: false}
	active := &model.Outlet{ID: 51, TenantID: 3, IsActive: true}
	r, _ := newTestResolver(inactive, active)

	manager := &model.User{
		ID: 7, Role: string(RoleManager), TenantID: uptr(3),
		AccessibleOutlets: []model.Outlet{*inactive, *active},
	}

	sc, err := r.Resolve(context.Background(), manager, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, sc.OutletID)
	assert.Equal(t, uint(51), *sc.OutletID)
}

func TestResolve_TenantOwnerFallsBackToFirstActive(t *testing.T) {
	a := &model.Outlet{ID: 60, TenantID: 4, IsActive: true}
	b := &model.Outlet{ID: 61, TenantID: 4, IsActive: true}
	r, _ := newTestResolver(a, b)

	owner := &model.User{ID: 8, Role: string(RoleTenantOwner), TenantID: uptr(4)}

	sc, err := r.Resolve(context.Background(), owner, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, sc.OutletID)
	assert.Equal(t, uint(60), *sc.OutletID)
}

func TestResolve_OutletUnsetWhenNothingApplies(t *testing.T) {
	r, _ := newTestResolver()
	owner := &model.User{ID: 9, Role: string(RoleTenantOwner), TenantID: uptr(5)}

	sc, err := r.Resolve(context.Background(), owner, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, sc.OutletID, "tenant-wide scope when no outlet resolves")
	assert.ErrorIs(t, sc.RequireOutlet(), ErrOutletRequired)
}

func TestCanAccessOutlet(t *testing.T) {
	outlet := &model.Outlet{ID: 70, TenantID: 6}

	tests := []struct {
		name string
		user *model.User
		want bool
	}{
		{"nil user", nil, false},
		{"super admin anywhere", &model.User{Role: string(RoleSuperAdmin)}, true},
		{"admin anywhere", &model.User{Role: string(RoleAdmin)}, true},
		{"owner same tenant", &model.User{Role: string(RoleTenantOwner), TenantID: uptr(6)}, true},
		{"owner other tenant", &model.User{Role: string(RoleTenantOwner), TenantID: uptr(7)}, false},
		{"manager listed", &model.User{Role: string(RoleManager), TenantID: uptr(6),
			AccessibleOutlets: []model.Outlet{{ID: 70, TenantID: 6}}}, true},
		{"manager not listed", &model.User{Role: string(RoleManager), TenantID: uptr(6),
			AccessibleOutlets: []model.Outlet{{ID: 71, TenantID: 6}}}, false},
		{"cashier assigned", &model.User{Role: string(RoleCashier), TenantID: uptr(6), OutletID: uptr(70)}, true},
		{"cashier other outlet", &model.User{Role: string(RoleCashier), TenantID: uptr(6), OutletID: uptr(71)}, false},
		{"kitchen assigned", &model.User{Role: string(RoleKitchen), TenantID: uptr(6), OutletID: uptr(70)}, true},
		{"kitchen unassigned", &model.User{Role: string(RoleKitchen), TenantID: uptr(6)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccessOutlet(tt.user, outlet))
		})
	}
}

func TestCanAccessOutlet_NilOutlet(t *testing.T) {
	admin := &model.User{Role: string(RoleAdmin)}
	assert.False(t, CanAccessOutlet(admin, nil))
}
