package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/beezio/marketplace/internal/domain/catalog"
	"github.com/beezio/marketplace/internal/domain/shared"
)

// ErrIdentityRequired is returned when a caller carries neither a profile id
// nor an identity to look one up by.
var ErrIdentityRequired = errors.New("catalog: caller identity required")

// Caller identifies who an imported product will belong to
type Caller struct {
	// ProfileID is an owner id the caller already resolved. It wins when set.
	ProfileID   *uuid.UUID
	Identity    string
	DisplayName string
}

// RolePolicy decides the role of a lazily provisioned owner
type RolePolicy struct {
	PrivilegedIdentities []string
	PrivilegedRole       catalog.OwnerRole
	DefaultRole          catalog.OwnerRole
}

// RoleFor returns the privileged role for allow-listed identities and the
// default role for everyone else. Comparison ignores case.
func (p RolePolicy) RoleFor(identity string) catalog.OwnerRole {
	identity = catalog.NormalizeIdentity(identity)
	for _, privileged := range p.PrivilegedIdentities {
		if identity != "" && catalog.NormalizeIdentity(privileged) == identity {
			return p.PrivilegedRole
		}
	}
	return p.DefaultRole
}

// Resolver maps provider category labels to internal categories and caller
// identities to owners.
type Resolver struct {
	categories   catalog.CategoryRepository
	owners       catalog.OwnerRepository
	roles        RolePolicy
	fallbackName string
	logger       *zap.Logger
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for owner provisioning messages
func WithLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFallbackCategory renames the catch-all category
func WithFallbackCategory(name string) ResolverOption {
	return func(r *Resolver) {
		if name = strings.TrimSpace(name); name != "" {
			r.fallbackName = name
		}
	}
}

// NewResolver creates a new Resolver
func NewResolver(categories catalog.CategoryRepository, owners catalog.OwnerRepository, roles RolePolicy, opts ...ResolverOption) *Resolver {
	if roles.DefaultRole == "" {
		roles.DefaultRole = catalog.OwnerRoleSeller
	}
	if roles.PrivilegedRole == "" {
		roles.PrivilegedRole = catalog.OwnerRoleAdmin
	}
	r := &Resolver{
		categories:   categories,
		owners:       owners,
		roles:        roles,
		fallbackName: catalog.FallbackCategoryName,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveCategory returns the id of the category whose folded name equals
// label, else the fallback category. Both missing yields nil with no error;
// the caller decides whether that is fatal.
func (r *Resolver) ResolveCategory(ctx context.Context, label string) (*uuid.UUID, error) {
	if key := catalog.FoldName(label); key != "" {
		category, err := r.categories.FindByNameKey(ctx, key)
		if err == nil {
			return &category.ID, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	fallback, err := r.fallback(ctx)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fallback.ID, nil
}

// fallback prefers the flagged fallback row, then a row carrying the fallback name.
func (r *Resolver) fallback(ctx context.Context) (*catalog.Category, error) {
	category, err := r.categories.FindFallback(ctx)
	if !errors.Is(err, shared.ErrNotFound) {
		return category, err
	}
	return r.categories.FindByNameKey(ctx, catalog.FoldName(r.fallbackName))
}

// ResolveOwner returns the owner id for caller, provisioning a minimal owner
// on first sight. Provisioning is an upsert, so concurrent first imports by
// one identity converge on a single row.
func (r *Resolver) ResolveOwner(ctx context.Context, caller Caller) (uuid.UUID, error) {
	if caller.ProfileID != nil && *caller.ProfileID != uuid.Nil {
		return *caller.ProfileID, nil
	}

	identity := catalog.NormalizeIdentity(caller.Identity)
	if identity == "" {
		return uuid.Nil, ErrIdentityRequired
	}

	owner, err := r.owners.FindByIdentity(ctx, identity)
	if err == nil {
		return owner.ID, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, err
	}

	role := r.roles.RoleFor(identity)
	owner, err = catalog.NewOwner(identity, caller.DisplayName, role)
	if err != nil {
		return uuid.Nil, err
	}
	stored, err := r.owners.Upsert(ctx, owner)
	if err != nil {
		return uuid.Nil, err
	}

	r.logger.Info("Provisioned owner",
		zap.String("owner_id", stored.ID.String()),
		zap.String("role", string(stored.Role)),
	)
	return stored.ID, nil
}

// EnsureFallbackCategory returns the fallback category, creating it when the
// store has none.
func (r *Resolver) EnsureFallbackCategory(ctx context.Context) (*catalog.Category, error) {
	existing, err := r.fallback(ctx)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	category, err := catalog.NewCategory(r.fallbackName, true)
	if err != nil {
		return nil, err
	}
	if err := r.categories.Create(ctx, category); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Lost a race with another instance.
			return r.fallback(ctx)
		}
		return nil, err
	}
	r.logger.Info("Created fallback category", zap.String("name", category.Name))
	return category, nil
}
