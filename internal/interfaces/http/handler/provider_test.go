package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	integrationapp "github.com/beezio/marketplace/internal/application/integration"
	"github.com/beezio/marketplace/internal/domain/integration"
	"github.com/beezio/marketplace/internal/domain/shared/valueobject"
	"github.com/beezio/marketplace/internal/interfaces/http/dto"
)

func providerRouter(browser CatalogBrowser) *gin.Engine {
	h := NewProviderHandler(browser)
	r := gin.New()
	r.GET("/providers", h.List)
	r.POST("/providers/:provider/catalog", h.Catalog)
	return r
}

func TestProviderHandler_List(t *testing.T) {
	t.Run("lists registered codes", func(t *testing.T) {
		browser := new(MockCatalogBrowser)
		browser.On("Providers").Return([]integration.ProviderCode{integration.ProviderCJDropshipping, integration.ProviderPrintful})

		w := httptest.NewRecorder()
		providerRouter(browser).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/providers", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, []any{"cjdropshipping", "printful"}, data["providers"])
	})

	t.Run("empty registry is an empty list", func(t *testing.T) {
		browser := new(MockCatalogBrowser)
		browser.On("Providers").Return(nil)

		w := httptest.NewRecorder()
		providerRouter(browser).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/providers", nil))

		assert.Contains(t, w.Body.String(), `"providers":[]`)
	})
}

func TestProviderHandler_Catalog(t *testing.T) {
	post := func(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("returns the page with meta", func(t *testing.T) {
		browser := new(MockCatalogBrowser)
		creds := integration.Credentials{APIKey: "pf-secret"}
		query := integration.CatalogQuery{Page: 2, PageSize: 10, Category: "Mugs"}
		browser.On("Browse", mock.Anything, integration.ProviderPrintful, creds, query).Return(&integrationapp.CatalogPageResponse{
			Provider: integration.ProviderPrintful,
			Items: []integrationapp.CatalogItemResponse{
				{Provider: integration.ProviderPrintful, ExternalID: "71", Name: "Mug", ImageURLs: []string{}, Price: valueobject.MustMoney("4.95", valueobject.USD), AlreadyImported: true},
				{Provider: integration.ProviderPrintful, ExternalID: "72", Name: "Tall Mug", ImageURLs: []string{}, Price: valueobject.MustMoney("6.10", valueobject.USD)},
			},
			Total:     25,
			Page:      2,
			PageSize:  10,
			Remaining: []string{"72"},
		}, nil)

		w := post(providerRouter(browser), "/providers/Printful/catalog",
			`{"credentials":{"api_key":"pf-secret"},"page":2,"page_size":10,"category":"Mugs"}`)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(25), resp.Meta.Total)
		assert.Equal(t, 3, resp.Meta.TotalPages)

		data := resp.Data.(map[string]any)
		items := data["items"].([]any)
		require.Len(t, items, 2)
		assert.Equal(t, true, items[0].(map[string]any)["already_imported"])
		assert.Equal(t, []any{"72"}, data["remaining"])
		assert.NotContains(t, w.Body.String(), "pf-secret")
		browser.AssertExpectations(t)
	})

	t.Run("rejects oversized page before browsing", func(t *testing.T) {
		browser := new(MockCatalogBrowser)

		w := post(providerRouter(browser), "/providers/printful/catalog", `{"page_size":500}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
		browser.AssertNotCalled(t, "Browse", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	errorCases := []struct {
		name     string
		err      error
		status   int
		wantCode string
	}{
		{"unknown provider", fmt.Errorf("%w: etsy", integration.ErrProviderNotSupported), http.StatusNotFound, dto.ErrCodeProviderNotSupported},
		{"missing credentials", fmt.Errorf("%w: printful", integration.ErrCredentialsMissing), http.StatusBadRequest, dto.ErrCodeCredentialsMissing},
		{"provider refused", fmt.Errorf("%w: printful: HTTP 401", integration.ErrProviderAuthFailed), http.StatusBadGateway, dto.ErrCodeProviderAuth},
		{"provider down", fmt.Errorf("%w: printful: HTTP 502", integration.ErrProviderUnavailable), http.StatusBadGateway, dto.ErrCodeProviderUnavailable},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			browser := new(MockCatalogBrowser)
			browser.On("Browse", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err)

			w := post(providerRouter(browser), "/providers/etsy/catalog", `{}`)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.wantCode, decodeResponse(t, w).Error.Code)
		})
	}
}
