package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	integrationapp "github.com/beezio/marketplace/internal/application/integration"
	"github.com/beezio/marketplace/internal/domain/integration"
)

// CatalogBrowser lists providers and pages through their catalogs
type CatalogBrowser interface {
	Providers() []integration.ProviderCode
	Browse(ctx context.Context, provider integration.ProviderCode, creds integration.Credentials, query integration.CatalogQuery) (*integrationapp.CatalogPageResponse, error)
}

// ProviderHandler handles provider catalog endpoints
type ProviderHandler struct {
	BaseHandler
	catalog CatalogBrowser
}

// NewProviderHandler creates a new ProviderHandler
func NewProviderHandler(catalog CatalogBrowser) *ProviderHandler {
	return &ProviderHandler{catalog: catalog}
}

// ProviderListResponse lists the registered provider codes
type ProviderListResponse struct {
	Providers []integration.ProviderCode `json:"providers"`
}

// BrowseCatalogRequest selects one catalog page. Credentials travel in the
// body so they never appear in access logs.
// @Description Request body for browsing a provider catalog
type BrowseCatalogRequest struct {
	Credentials integration.Credentials `json:"credentials"`
	Page        int                     `json:"page" binding:"omitempty,gte=1" example:"1"`
	PageSize    int                     `json:"page_size" binding:"omitempty,gte=1,lte=100" example:"20"`
	Category    string                  `json:"category" binding:"max=200" example:"T-Shirts"`
}

// List godoc
// @ID           listProviders
// @Summary      List providers
// @Description  Returns the codes of every enabled provider
// @Tags         providers
// @Produce      json
// @Success      200 {object} APIResponse[ProviderListResponse]
// @Router       /providers [get]
func (h *ProviderHandler) List(c *gin.Context) {
	providers := h.catalog.Providers()
	if providers == nil {
		providers = []integration.ProviderCode{}
	}
	h.Success(c, ProviderListResponse{Providers: providers})
}

// Catalog godoc
// @ID           browseProviderCatalog
// @Summary      Browse a provider catalog
// @Description  Returns one page of external products. Items already imported are flagged, and remaining lists the ids still to import.
// @Tags         providers
// @Accept       json
// @Produce      json
// @Param        provider path string true "Provider code" Enums(printful, shopify, cjdropshipping)
// @Param        request body BrowseCatalogRequest true "Credentials and paging"
// @Success      200 {object} APIResponse[integrationapp.CatalogPageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /providers/{provider}/catalog [post]
func (h *ProviderHandler) Catalog(c *gin.Context) {
	var req BrowseCatalogRequest
	if !h.BindJSON(c, &req) {
		return
	}

	page, err := h.catalog.Browse(c.Request.Context(),
		integration.ParseProviderCode(c.Param("provider")),
		req.Credentials,
		integration.CatalogQuery{Page: req.Page, PageSize: req.PageSize, Category: req.Category},
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page, int64(page.Total), page.Page, page.PageSize)
}
