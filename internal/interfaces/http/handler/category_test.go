package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/beezio/marketplace/internal/application/catalog"
	"github.com/beezio/marketplace/internal/interfaces/http/dto"
)

func TestCategoryHandler_List(t *testing.T) {
	t.Run("returns categories", func(t *testing.T) {
		lister := new(MockCategoryLister)
		lister.On("List", mock.Anything).Return([]catalogapp.CategoryResponse{
			{ID: uuid.New(), Name: "Mugs", Slug: "mugs"},
			{ID: uuid.New(), Name: "Other", Slug: "other", IsFallback: true},
		}, nil)

		c, w := newTestContext(http.MethodGet, "/categories", "")
		NewCategoryHandler(lister).List(c)

		require.Equal(t, http.StatusOK, w.Code)
		items := decodeResponse(t, w).Data.([]any)
		require.Len(t, items, 2)
		assert.Equal(t, true, items[1].(map[string]any)["is_fallback"])
	})

	t.Run("store failure", func(t *testing.T) {
		lister := new(MockCategoryLister)
		lister.On("List", mock.Anything).Return(nil, errors.New("connection reset"))

		c, w := newTestContext(http.MethodGet, "/categories", "")
		NewCategoryHandler(lister).List(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, dto.ErrCodeInternal, decodeResponse(t, w).Error.Code)
	})
}
