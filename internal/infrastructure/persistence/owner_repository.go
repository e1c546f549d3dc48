package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/beezio/marketplace/internal/domain/catalog"
	"github.com/beezio/marketplace/internal/domain/shared"
)

// GormOwnerRepository implements catalog.OwnerRepository using GORM
type GormOwnerRepository struct {
	db *gorm.DB
}

var _ catalog.OwnerRepository = (*GormOwnerRepository)(nil)

// NewGormOwnerRepository creates a new GormOwnerRepository
func NewGormOwnerRepository(db *gorm.DB) *GormOwnerRepository {
	return &GormOwnerRepository{db: db}
}

// FindByIdentity finds an owner by normalized identity
func (r *GormOwnerRepository) FindByIdentity(ctx context.Context, identity string) (*catalog.Owner, error) {
	var owner catalog.Owner
	if err := r.db.WithContext(ctx).
		Where("identity = ?", catalog.NormalizeIdentity(identity)).
		First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &owner, nil
}

// Upsert inserts owner or overwrites the display name and role of the row
// already holding its identity. Concurrent calls for one identity all succeed
// and the last writer's values win. The stored row is returned, so its ID is
// the one first inserted.
func (r *GormOwnerRepository) Upsert(ctx context.Context, owner *catalog.Owner) (*catalog.Owner, error) {
	owner.Identity = catalog.NormalizeIdentity(owner.Identity)
	owner.UpdatedAt = time.Now().UTC()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "role", "updated_at"}),
	}).Create(owner).Error
	if err != nil {
		return nil, err
	}
	return r.FindByIdentity(ctx, owner.Identity)
}
