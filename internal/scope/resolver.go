package scope

import (
	"context"

	"go.uber.org/zap"

	"github.com/dadinjaenudin/kiosk-svelte/internal/model"
)

// OutletStore is the slice of persistence the resolver needs. Lookups return
// (nil, nil) when no row matches.
type OutletStore interface {
	GetOutlet(ctx context.Context, id uint) (*model.Outlet, error)
	FirstActiveOutlet(ctx context.Context, tenantID uint) (*model.Outlet, error)
}

// SessionStore persists the user's remembered outlet selection
type SessionStore interface {
	RememberedOutlet(ctx context.Context, userID uint) (*uint, error)
	RememberOutlet(ctx context.Context, userID, outletID uint) error
}

// Resolver produces a Scope for the current operation from the acting user,
// optional tenant/outlet hints, and the remembered selection.
type Resolver struct {
	outlets  OutletStore
	sessions SessionStore
	log      *zap.Logger
}

func NewResolver(outlets OutletStore, sessions SessionStore, log *zap.Logger) *Resolver {
	return &Resolver{outlets: outlets, sessions: sessions, log: log}
}

// Resolve determines the tenant and outlet scope for user. A nil user is an
// anonymous kiosk request: the scope carries no tenant unless the caller
// hinted one, and operations that require a tenant fail at RequireTenant.
//
// The resolved scope is never wider than the user's role permits: hints that
// disagree with a non-privileged user's home tenant are ignored, and outlet
// hints only apply when the role may switch outlets and the user is
// authorized for the target outlet.
func (r *Resolver) Resolve(ctx context.Context, user *model.User, tenantHint, outletHint *uint) (Scope, error) {
	if user == nil {
		// Public kiosk path. A tenant hint narrows catalog browsing; there
		// is nothing to authorize because public reads are fail-closed in
		// the tenancy layer anyway.
		return Scope{TenantID: tenantHint, Role: RoleAnonymous}, nil
	}

	s := Scope{Role: Role(user.Role), UserID: user.ID}

	// Tenant resolution
	if s.Role.IsAdminTier() {
		// Unrestricted unless explicitly narrowed
		s.TenantID = tenantHint
	} else if user.TenantID != nil {
		// Fixed to the home tenant; a disagreeing hint is ignored for
		// reads. Writes that would cross tenants are rejected by the
		// tenancy layer, not here.
		s.TenantID = user.TenantID
		if tenantHint != nil && *tenantHint != *user.TenantID {
			r.log.Debug("ignoring tenant hint outside home tenant",
				zap.Uint("user_id", user.ID),
				zap.Uint("hint", *tenantHint),
				zap.Uint("home", *user.TenantID))
		}
	}
	// else: no home tenant; scope stays tenant-less and RequireTenant
	// rejects tenant-scoped operations.

	outlet, err := r.resolveOutlet(ctx, user, s, outletHint)
	if err != nil {
		return Scope{}, err
	}
	if outlet != nil {
		s.OutletID = &outlet.ID
	}

	return s, nil
}

// resolveOutlet applies the outlet fallback chain after the tenant is fixed:
// explicit hint, remembered selection, home outlet, first accessible or first
// active outlet, else unset (tenant-wide scope).
func (r *Resolver) resolveOutlet(ctx context.Context, user *model.User, s Scope, outletHint *uint) (*model.Outlet, error) {
	// 1. Explicit hint, only for roles that may switch outlets
	if outletHint != nil && s.Role.CanSwitchOutlet() {
		outlet, err := r.outlets.GetOutlet(ctx, *outletHint)
		if err != nil {
			return nil, err
		}
		if outlet != nil && r.outletInScope(outlet, s) && CanAccessOutlet(user, outlet) {
			// Persist so subsequent requests reuse the choice
			if err := r.sessions.RememberOutlet(ctx, user.ID, outlet.ID); err != nil {
				r.log.Warn("failed to remember outlet selection",
					zap.Uint("user_id", user.ID), zap.Error(err))
			}
			return outlet, nil
		}
	}

	// 2. Remembered prior selection, same authorization check
	rememberedID, err := r.sessions.RememberedOutlet(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if rememberedID != nil {
		outlet, err := r.outlets.GetOutlet(ctx, *rememberedID)
		if err != nil {
			return nil, err
		}
		if outlet != nil && r.outletInScope(outlet, s) && CanAccessOutlet(user, outlet) {
			return outlet, nil
		}
	}

	// 3. Home outlet
	if user.OutletID != nil {
		outlet, err := r.outlets.GetOutlet(ctx, *user.OutletID)
		if err != nil {
			return nil, err
		}
		if outlet != nil {
			return outlet, nil
		}
	}

	// 4. Managers fall back to the first active accessible outlet
	if s.Role == RoleManager {
		for _, o := range user.AccessibleOutlets {
			if o.IsActive {
				outlet := o
				return &outlet, nil
			}
		}
	}

	// 5. Tenant owners fall back to the first active outlet in the tenant
	if s.Role == RoleTenantOwner && s.TenantID != nil {
		outlet, err := r.outlets.FirstActiveOutlet(ctx, *s.TenantID)
		if err != nil {
			return nil, err
		}
		if outlet != nil {
			return outlet, nil
		}
	}

	// Outlet remains unset: tenant-wide scope
	return nil, nil
}

// outletInScope checks the outlet belongs to the resolved tenant, when one is
// resolved. Admin-tier scopes with no tenant narrowing skip this.
func (r *Resolver) outletInScope(outlet *model.Outlet, s Scope) bool {
	if s.TenantID == nil {
		return s.Role.IsAdminTier()
	}
	return outlet.TenantID == *s.TenantID
}

// CanAccessOutlet reports whether the user may operate against the outlet:
// unconditionally for the admin tier, within the home tenant for tenant
// owners, within accessible_outlets for managers, and only the assigned
// outlet for cashier and kitchen staff.
func CanAccessOutlet(user *model.User, outlet *model.Outlet) bool {
	if user == nil || outlet == nil {
		return false
	}

	role := Role(user.Role)
	if role.IsAdminTier() {
		return true
	}

	// Outlet must belong to the user's tenant
	if user.TenantID == nil || outlet.TenantID != *user.TenantID {
		return false
	}

	switch role {
	case RoleTenantOwner:
		return true
	case RoleManager:
		for _, o := range user.AccessibleOutlets {
			if o.ID == outlet.ID {
				return true
			}
		}
		return false
	default:
		return user.OutletID != nil && *user.OutletID == outlet.ID
	}
}
