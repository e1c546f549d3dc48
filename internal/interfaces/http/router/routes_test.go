package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beezio/marketplace/internal/interfaces/http/handler"
)

func testHandlers() Handlers {
	return Handlers{
		System:     handler.NewSystemHandler("marketplace", "test", nil),
		Providers:  handler.NewProviderHandler(nil),
		Pricing:    handler.NewPricingHandler(nil),
		Imports:    handler.NewImportHandler(nil, nil),
		Categories: handler.NewCategoryHandler(nil),
	}
}

func TestRegisterMarketplace(t *testing.T) {
	engine := gin.New()
	RegisterMarketplace(engine, NewRouter(engine), testHandlers(), nil)

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	want := []string{
		"GET /health",
		"GET /api/v1/providers",
		"POST /api/v1/providers/:provider/catalog",
		"POST /api/v1/pricing/quote",
		"POST /api/v1/imports",
		"GET /api/v1/imports/in-flight",
		"GET /api/v1/imports/orphans",
		"DELETE /api/v1/imports/:provider/:external_id",
		"GET /api/v1/categories",
		"GET /api/v1/system/info",
	}
	for _, route := range want {
		assert.True(t, registered[route], "missing route %s", route)
	}
	assert.Len(t, engine.Routes(), len(want))
}

func TestRegisterMarketplace_Health(t *testing.T) {
	engine := gin.New()
	RegisterMarketplace(engine, NewRouter(engine), testHandlers(), nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestMarketplace_LimitGuardsOutboundRoutes(t *testing.T) {
	engine := gin.New()
	var hits []string
	limit := func(c *gin.Context) {
		hits = append(hits, c.FullPath())
		c.AbortWithStatus(http.StatusTooManyRequests)
	}
	RegisterMarketplace(engine, NewRouter(engine), testHandlers(), limit)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodPost, "/api/v1/imports"},
		{http.MethodPost, "/api/v1/providers/printful/catalog"},
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code, tc.path)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []string{"/api/v1/imports", "/api/v1/providers/:provider/catalog"}, hits)
}
