package scope

import "errors"

// Role is a position in the fixed hierarchy:
// super_admin > admin > tenant_owner > manager > cashier > kitchen.
// The role determines the ceiling of scope breadth the resolver will grant.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleAdmin       Role = "admin"
	RoleTenantOwner Role = "tenant_owner"
	RoleManager     Role = "manager"
	RoleCashier     Role = "cashier"
	RoleKitchen     Role = "kitchen"

	// RoleAnonymous is the zero role for unauthenticated kiosk requests
	RoleAnonymous Role = ""
)

// Single ranked lookup table; every access rule in the service is expressed
// as a threshold check against this table instead of ad hoc role lists.
var roleRank = map[Role]int{
	RoleSuperAdmin:  6,
	RoleAdmin:       5,
	RoleTenantOwner: 4,
	RoleManager:     3,
	RoleCashier:     2,
	RoleKitchen:     1,
}

// Rank returns the numeric rank of a role; unknown roles rank 0
func Rank(r Role) int {
	return roleRank[r]
}

// AtLeast reports whether r ranks at or above other
func (r Role) AtLeast(other Role) bool {
	return Rank(r) >= Rank(other)
}

// IsAdminTier reports whether the role is in the top privilege tier
// (unrestricted tenant visibility)
func (r Role) IsAdminTier() bool {
	return r.AtLeast(RoleAdmin)
}

// CanSwitchOutlet reports whether the role may select an outlet explicitly
func (r Role) CanSwitchOutlet() bool {
	return r.AtLeast(RoleManager)
}

var (
	// ErrScopeRequired means the tenant could not be resolved for a
	// tenant-scoped operation
	ErrScopeRequired = errors.New("tenant scope required")

	// ErrOutletRequired means the outlet could not be resolved for an
	// outlet-scoped operation
	ErrOutletRequired = errors.New("outlet scope required")
)

// Scope bounds visibility and write authority for one operation. It is
// constructed once per request and passed explicitly to every core call;
// nothing reads tenant context ambiently.
type Scope struct {
	TenantID *uint
	OutletID *uint
	Role     Role
	UserID   uint
}

// Unrestricted reports whether the scope may see all tenants' rows. Only the
// admin tier with no tenant narrowing gets this.
func (s Scope) Unrestricted() bool {
	return s.TenantID == nil && s.Role.IsAdminTier()
}

// RequireTenant returns ErrScopeRequired unless a tenant is resolved or the
// scope is unrestricted. Tenant-scoped operations call this before touching
// any rows; an unresolved tenant is never defaulted to "all data".
func (s Scope) RequireTenant() error {
	if s.TenantID == nil && !s.Unrestricted() {
		return ErrScopeRequired
	}
	return nil
}

// RequireOutlet returns ErrOutletRequired when no outlet is resolved.
// Outlet-scoped writes call this rather than guessing an outlet.
func (s Scope) RequireOutlet() error {
	if s.OutletID == nil {
		return ErrOutletRequired
	}
	return nil
}
