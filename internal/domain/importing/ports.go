package importing

import (
	"context"
	"fmt"
	"time"

	"github.com/beezio/marketplace/internal/domain/catalog"
	"github.com/google/uuid"
)

// ServerImporter writes a product and its supplier link atomically on the
// server side. Errors wrap ErrInfrastructureAbsent when the path itself is
// missing and ErrPersistenceRejected for everything else.
type ServerImporter interface {
	ImportProduct(ctx context.Context, product *catalog.ImportedProduct, link *catalog.SupplierLink) (uuid.UUID, error)
}

// ClientWriter performs the two fallback writes separately, product first.
type ClientWriter interface {
	CreateProduct(ctx context.Context, product *catalog.ImportedProduct) error
	CreateSupplierLink(ctx context.Context, link *catalog.SupplierLink) error
}

// JobKey identifies one import job
type JobKey struct {
	Provider   string
	ExternalID string
}

// String renders the key as provider:externalID
func (k JobKey) String() string {
	return fmt.Sprintf("%s:%s", k.Provider, k.ExternalID)
}

// JobRegistry is the set of imports currently in flight. Acquire and Release
// are atomic; a key is held by at most one job at a time. Each hold carries
// the token its job acquired it with, so a job can only free its own hold.
type JobRegistry interface {
	// Acquire adds key held by token and reports whether this caller now owns it
	Acquire(ctx context.Context, key JobKey, token string) (bool, error)
	// Release removes key only while it is still held by token. Releasing an
	// absent key or one held under another token is not an error.
	Release(ctx context.Context, key JobKey, token string) error
	// Remove drops key whoever holds it
	Remove(ctx context.Context, key JobKey) error
	// Contains reports whether key is in flight
	Contains(ctx context.Context, key JobKey) (bool, error)
	// HeldBy reports whether key is in flight under token
	HeldBy(ctx context.Context, key JobKey, token string) (bool, error)
	// InFlight lists the keys currently held
	InFlight(ctx context.Context) ([]string, error)
	// Close releases resources held by the registry
	Close() error
}

// DefaultJobTTL bounds how long a crashed job can hold its key in a shared registry
const DefaultJobTTL = 10 * time.Minute
