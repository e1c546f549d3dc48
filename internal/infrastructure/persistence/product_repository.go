package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beezio/marketplace/internal/domain/catalog"
	"github.com/beezio/marketplace/internal/domain/importing"
	"github.com/beezio/marketplace/internal/domain/shared"
)

// GormProductRepository reads imported products and performs the two
// separate writes of the client fallback path.
type GormProductRepository struct {
	db *gorm.DB
}

var (
	_ catalog.ProductRepository = (*GormProductRepository)(nil)
	_ importing.ClientWriter    = (*GormProductRepository)(nil)
)

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// CreateProduct inserts the product row only
func (r *GormProductRepository) CreateProduct(ctx context.Context, product *catalog.ImportedProduct) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// CreateSupplierLink inserts the supplier link row only
func (r *GormProductRepository) CreateSupplierLink(ctx context.Context, link *catalog.SupplierLink) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("create supplier link: %w", err)
	}
	return nil
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ImportedProduct, error) {
	var product catalog.ImportedProduct
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// ImportedExternalIDs returns which of externalIDs already have a supplier
// link for provider.
func (r *GormProductRepository) ImportedExternalIDs(ctx context.Context, provider string, externalIDs []string) (map[string]bool, error) {
	imported := make(map[string]bool, len(externalIDs))
	if len(externalIDs) == 0 {
		return imported, nil
	}

	var found []string
	if err := r.db.WithContext(ctx).
		Model(&catalog.SupplierLink{}).
		Distinct("external_id").
		Where("provider = ? AND external_id IN ?", provider, externalIDs).
		Pluck("external_id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		imported[id] = true
	}
	return imported, nil
}

// FindOrphans lists the newest products that have no supplier link
func (r *GormProductRepository) FindOrphans(ctx context.Context, limit int) ([]catalog.ImportedProduct, error) {
	if limit <= 0 {
		limit = 100
	}
	var products []catalog.ImportedProduct
	if err := r.db.WithContext(ctx).
		Joins("LEFT JOIN supplier_links ON supplier_links.product_id = imported_products.id").
		Where("supplier_links.id IS NULL").
		Order("imported_products.created_at DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
