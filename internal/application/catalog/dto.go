package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/beezio/marketplace/internal/domain/catalog"
)

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	IsFallback bool      `json:"is_fallback"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:         c.ID,
		Name:       c.Name,
		Slug:       c.Slug,
		IsFallback: c.IsFallback,
	}
}

// ToCategoryResponses converts a slice of domain Categories
func ToCategoryResponses(categories []catalog.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses
}

// OrphanResponse is a product left without a supplier link by a partial write
type OrphanResponse struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	OwnerID    uuid.UUID `json:"owner_id"`
	CategoryID uuid.UUID `json:"category_id"`
	SKU        string    `json:"sku"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToOrphanResponses converts imported products to OrphanResponse values
func ToOrphanResponses(products []catalog.ImportedProduct) []OrphanResponse {
	responses := make([]OrphanResponse, len(products))
	for i, p := range products {
		responses[i] = OrphanResponse{
			ID:         p.ID,
			Title:      p.Title,
			OwnerID:    p.OwnerID,
			CategoryID: p.CategoryID,
			SKU:        p.SKU,
			CreatedAt:  p.CreatedAt,
		}
	}
	return responses
}
