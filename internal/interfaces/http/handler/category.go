package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/beezio/marketplace/internal/application/catalog"
)

// CategoryLister lists internal categories
type CategoryLister interface {
	List(ctx context.Context) ([]catalogapp.CategoryResponse, error)
}

// CategoryHandler handles category-related API endpoints
type CategoryHandler struct {
	BaseHandler
	categories CategoryLister
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories CategoryLister) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List godoc
// @ID           listCategories
// @Summary      List categories
// @Description  Internal categories that provider labels resolve to, including the fallback
// @Tags         categories
// @Produce      json
// @Success      200 {object} APIResponse[[]catalogapp.CategoryResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}
