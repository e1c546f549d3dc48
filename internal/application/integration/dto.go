package integration

import (
	"github.com/beezio/marketplace/internal/domain/integration"
	"github.com/beezio/marketplace/internal/domain/shared/valueobject"
)

// CatalogItemResponse is one external product offered for import
type CatalogItemResponse struct {
	Provider        integration.ProviderCode `json:"provider"`
	ExternalID      string                   `json:"external_id"`
	Name            string                   `json:"name"`
	SKU             string                   `json:"sku"`
	ImageURLs       []string                 `json:"image_urls"`
	Category        string                   `json:"category"`
	Price           valueobject.Money        `json:"price"`
	Description     string                   `json:"description,omitempty"`
	Stock           *int                     `json:"stock,omitempty"`
	AlreadyImported bool                     `json:"already_imported"`
}

// CatalogPageResponse is one page of a provider catalog. Remaining lists the
// ids on the page that have not been imported yet, in listing order.
type CatalogPageResponse struct {
	Provider  integration.ProviderCode `json:"provider"`
	Items     []CatalogItemResponse    `json:"items"`
	Total     int                      `json:"total"`
	Page      int                      `json:"page"`
	PageSize  int                      `json:"page_size"`
	Remaining []string                 `json:"remaining"`
}

// ToCatalogItemResponse converts an external product to its response form
func ToCatalogItemResponse(p integration.ExternalProduct, alreadyImported bool) CatalogItemResponse {
	images := p.ImageURLs
	if images == nil {
		images = []string{}
	}
	return CatalogItemResponse{
		Provider:        p.Provider,
		ExternalID:      p.ExternalID,
		Name:            p.Name,
		SKU:             p.SKU,
		ImageURLs:       images,
		Category:        p.CategoryLabel,
		Price:           p.Price,
		Description:     p.Description,
		Stock:           p.Stock,
		AlreadyImported: alreadyImported,
	}
}

// ToProduct converts a response item back to the domain record, for callers
// that echo a listing into an import request
func (r CatalogItemResponse) ToProduct() integration.ExternalProduct {
	return integration.ExternalProduct{
		Provider:      r.Provider,
		ExternalID:    r.ExternalID,
		Name:          r.Name,
		SKU:           r.SKU,
		ImageURLs:     r.ImageURLs,
		CategoryLabel: r.Category,
		Price:         r.Price,
		Description:   r.Description,
		Stock:         r.Stock,
	}
}
