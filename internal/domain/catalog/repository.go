package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository reads categories by folded name
type CategoryRepository interface {
	// FindByNameKey returns the category whose NameKey equals key, or shared.ErrNotFound
	FindByNameKey(ctx context.Context, key string) (*Category, error)
	// FindFallback returns the catch-all category, or shared.ErrNotFound
	FindFallback(ctx context.Context) (*Category, error)
	// Create stores a new category
	Create(ctx context.Context, category *Category) error
	// List returns all categories ordered by name
	List(ctx context.Context) ([]Category, error)
}

// OwnerRepository reads and provisions product owners
type OwnerRepository interface {
	// FindByIdentity returns the owner for a normalized identity, or shared.ErrNotFound
	FindByIdentity(ctx context.Context, identity string) (*Owner, error)
	// Upsert inserts the owner or, when the identity exists, overwrites its
	// display name and role. It returns the stored row.
	Upsert(ctx context.Context, owner *Owner) (*Owner, error)
}

// ProductRepository reads imported products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ImportedProduct, error)
	// ImportedExternalIDs returns the subset of externalIDs already linked to a
	// product for provider
	ImportedExternalIDs(ctx context.Context, provider string, externalIDs []string) (map[string]bool, error)
	// FindOrphans lists products with no supplier link
	FindOrphans(ctx context.Context, limit int) ([]ImportedProduct, error)
}
