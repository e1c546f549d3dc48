package router

import (
	"github.com/gin-gonic/gin"

	"github.com/beezio/marketplace/internal/interfaces/http/handler"
)

// Handlers groups the HTTP handlers served by the marketplace API.
type Handlers struct {
	System     *handler.SystemHandler
	Providers  *handler.ProviderHandler
	Pricing    *handler.PricingHandler
	Imports    *handler.ImportHandler
	Categories *handler.CategoryHandler
}

// Marketplace returns the domain groups of the marketplace API. Limit runs
// in front of the routes that call out to providers; nil disables it.
func Marketplace(h Handlers, limit gin.HandlerFunc) []*DomainGroup {
	limited := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		if limit == nil {
			return []gin.HandlerFunc{fn}
		}
		return []gin.HandlerFunc{limit, fn}
	}

	providers := NewDomainGroup("providers", "/providers")
	providers.GET("", h.Providers.List)
	providers.POST("/:provider/catalog", limited(h.Providers.Catalog)...)

	pricing := NewDomainGroup("pricing", "/pricing")
	pricing.POST("/quote", h.Pricing.Quote)

	imports := NewDomainGroup("imports", "/imports")
	imports.POST("", limited(h.Imports.Import)...)
	imports.GET("/in-flight", h.Imports.InFlight)
	imports.GET("/orphans", h.Imports.Orphans)
	imports.DELETE("/:provider/:external_id", h.Imports.Cancel)

	categories := NewDomainGroup("categories", "/categories")
	categories.GET("", h.Categories.List)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)

	return []*DomainGroup{providers, pricing, imports, categories, system}
}

// RegisterMarketplace mounts the API groups on r and the health check on the
// bare engine so load balancers can reach it without an API version.
func RegisterMarketplace(engine *gin.Engine, r *Router, h Handlers, limit gin.HandlerFunc) {
	engine.GET("/health", h.System.Health)
	for _, group := range Marketplace(h, limit) {
		r.Register(group)
	}
	r.Setup()
}
