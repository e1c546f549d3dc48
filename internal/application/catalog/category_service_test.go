package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beezio/marketplace/internal/domain/catalog"
	"github.com/beezio/marketplace/internal/domain/shared"
)

func TestCategoryService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCategoryRepository)
	other := mustCategory(t, "Other", true)
	mugs := mustCategory(t, "Mugs", false)
	repo.On("List", ctx).Return([]catalog.Category{*mugs, *other}, nil)

	got, err := NewCategoryService(repo).List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Mugs", got[0].Name)
	assert.Equal(t, "mugs", got[0].Slug)
	assert.True(t, got[1].IsFallback)
}

func TestOrphanService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("maps orphans", func(t *testing.T) {
		repo := new(MockProductRepository)
		orphan := catalog.ImportedProduct{
			BaseEntity: shared.NewBaseEntity(),
			Title:      "Canvas Tote",
			OwnerID:    uuid.New(),
			CategoryID: uuid.New(),
			SKU:        "pf-88",
		}
		orphan.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		repo.On("FindOrphans", ctx, 50).Return([]catalog.ImportedProduct{orphan}, nil)

		got, err := NewOrphanService(repo, 50).List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, orphan.ID, got[0].ID)
		assert.Equal(t, "pf-88", got[0].SKU)
		assert.Equal(t, orphan.CreatedAt, got[0].CreatedAt)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		repo := new(MockProductRepository)
		boom := errors.New("boom")
		repo.On("FindOrphans", ctx, 10).Return([]catalog.ImportedProduct(nil), boom)

		_, err := NewOrphanService(repo, 10).List(ctx)
		assert.ErrorIs(t, err, boom)
	})
}
