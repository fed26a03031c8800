package tenancy

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dadinjaenudin/kiosk-svelte/internal/scope"
)

var (
	// ErrCrossTenantWrite means an attempted write's tenant disagreed with the
	// resolved scope and the actor lacks privilege to override
	ErrCrossTenantWrite = errors.New("write crosses tenant boundary")

	// ErrForbidden means the actor's role does not permit the operation
	ErrForbidden = errors.New("operation not permitted for role")
)

// Kind identifies a tenant-owned entity class for visibility rules
type Kind string

const (
	KindOutlet    Kind = "outlet"
	KindProduct   Kind = "product"
	KindOrder     Kind = "order"
	KindPromotion Kind = "promotion"
)

// Kinds browsable without a tenant scope (kiosk catalog and checkout paths).
// Everything else fails closed when no tenant is resolved.
var publicKinds = map[Kind]bool{
	KindProduct:   true,
	KindPromotion: true,
}

// TenantOwned is any row carrying a tenant foreign key
type TenantOwned interface {
	GetTenantID() uint
	SetTenantID(uint)
}

// QueryMod narrows a scoped query with extra filters
type QueryMod func(*gorm.DB) *gorm.DB

// Store enforces row-level multi-tenancy over gorm. Every read is filtered to
// the resolved scope and every write is stamped with (and re-validated
// against) the scope's tenant. There is no ambient tenant state; the scope is
// an explicit argument on every call.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStore(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

// DB exposes the underlying handle for transaction composition
func (s *Store) DB() *gorm.DB {
	return s.db
}

// List fills dest with rows of kind visible to the scope. Unrestricted scopes
// see all rows; tenant scopes see their tenant's rows; a scope with no tenant
// sees public kinds unfiltered and every other kind as the empty set.
func (s *Store) List(ctx context.Context, kind Kind, sc scope.Scope, dest any, mods ...QueryMod) error {
	q := s.db.WithContext(ctx)

	switch {
	case sc.Unrestricted():
		// Admin tier with no narrowing: all tenants
	case sc.TenantID != nil:
		q = q.Where("tenant_id = ?", *sc.TenantID)
	case publicKinds[kind]:
		// Public browsing: no tenant filter, callers add availability filters
	default:
		// Fail closed, never fall through to all tenants' rows
		s.log.Debug("list without tenant scope on non-public kind",
			zap.String("kind", string(kind)))
		q = q.Where("1 = 0")
	}

	for _, mod := range mods {
		q = mod(q)
	}
	return q.Find(dest).Error
}

// Get fetches a single row of kind by id, subject to the same visibility as
// List. A row outside the scope is reported as gorm.ErrRecordNotFound so the
// caller cannot distinguish "wrong tenant" from "does not exist".
func (s *Store) Get(ctx context.Context, kind Kind, sc scope.Scope, dest any, id uint) error {
	if !sc.Unrestricted() && sc.TenantID == nil && !publicKinds[kind] {
		return gorm.ErrRecordNotFound
	}

	q := s.db.WithContext(ctx)
	if !sc.Unrestricted() && sc.TenantID != nil {
		q = q.Where("tenant_id = ?", *sc.TenantID)
	}
	return q.First(dest, id).Error
}

// Create inserts row after stamping the scope's tenant. A row that already
// names a different tenant is rejected with ErrCrossTenantWrite unless the
// actor is in the admin tier.
func (s *Store) Create(ctx context.Context, sc scope.Scope, row TenantOwned) error {
	if err := s.checkWriteTenant(sc, row); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(row).Error
}

// Update re-validates that the target row's tenant matches the scope before
// applying updates, even when the row was fetched through another path. This
// guards against stale references smuggling in another tenant's id.
func (s *Store) Update(ctx context.Context, sc scope.Scope, row TenantOwned, updates any) error {
	if err := s.checkWriteTenant(sc, row); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(row).Updates(updates).Error
}

// Delete re-validates tenant ownership before removing the row
func (s *Store) Delete(ctx context.Context, sc scope.Scope, row TenantOwned) error {
	if err := s.checkWriteTenant(sc, row); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(row).Error
}

// AllTenants is the deliberate escape hatch around tenant filtering. It is a
// distinct call so it can never be reached by accident, and it refuses any
// scope below the admin tier.
func (s *Store) AllTenants(ctx context.Context, sc scope.Scope, dest any, mods ...QueryMod) error {
	if !sc.Role.IsAdminTier() {
		return ErrForbidden
	}
	s.log.Info("tenant filter bypass",
		zap.Uint("user_id", sc.UserID),
		zap.String("role", string(sc.Role)))

	q := s.db.WithContext(ctx)
	for _, mod := range mods {
		q = mod(q)
	}
	return q.Find(dest).Error
}

func (s *Store) checkWriteTenant(sc scope.Scope, row TenantOwned) error {
	if sc.Role.IsAdminTier() {
		// Admin tier may write on behalf of any tenant, but the row must
		// name one
		if row.GetTenantID() == 0 {
			if sc.TenantID == nil {
				return scope.ErrScopeRequired
			}
			row.SetTenantID(*sc.TenantID)
		}
		return nil
	}

	if err := sc.RequireTenant(); err != nil {
		return err
	}
	if row.GetTenantID() == 0 {
		row.SetTenantID(*sc.TenantID)
		return nil
	}
	if row.GetTenantID() != *sc.TenantID {
		s.log.Warn("cross-tenant write rejected",
			zap.Uint("user_id", sc.UserID),
			zap.Uint("row_tenant", row.GetTenantID()),
			zap.Uint("scope_tenant", *sc.TenantID))
		return ErrCrossTenantWrite
	}
	return nil
}
