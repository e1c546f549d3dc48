package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/beezio/marketplace/internal/domain/catalog"
	"github.com/beezio/marketplace/internal/domain/shared"
)

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByNameKey finds a category by its folded name
func (r *GormCategoryRepository) FindByNameKey(ctx context.Context, key string) (*catalog.Category, error) {
	var category catalog.Category
	if err := r.db.WithContext(ctx).Where("name_key = ?", key).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindFallback returns the oldest category flagged as fallback
func (r *GormCategoryRepository) FindFallback(ctx context.Context) (*catalog.Category, error) {
	var category catalog.Category
	if err := r.db.WithContext(ctx).
		Where("is_fallback = ?", true).
		Order("created_at ASC").
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// Create stores a new category. A duplicate name key maps to shared.ErrAlreadyExists.
func (r *GormCategoryRepository) Create(ctx context.Context, category *catalog.Category) error {
	err := r.db.WithContext(ctx).Create(category).Error
	if isUniqueViolation(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

// List returns all categories ordered by name
func (r *GormCategoryRepository) List(ctx context.Context) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
