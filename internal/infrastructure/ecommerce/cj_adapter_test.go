package ecommerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beezio/marketplace/internal/domain/integration"
)

func newTestCJAdapter(t *testing.T) *CJAdapter {
	t.Helper()
	config := NewCJConfig()
	config.RequestsPerSecond = 100
	config.Burst = 10
	adapter, err := NewCJAdapter(config)
	require.NoError(t, err)
	return adapter
}

func newCJTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/product/list", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cj-token", r.Header.Get("CJ-Access-Token"))
		assert.Equal(t, "2", r.URL.Query().Get("pageNum"))
		assert.Equal(t, "10", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "cat-9", r.URL.Query().Get("categoryId"))
		_, _ = w.Write([]byte(`{"code": 200, "result": true, "message": "Success", "data": {
			"pageNum": 2, "pageSize": 10, "total": 11,
			"list": [{"pid": "P-1", "productNameEn": "LED Strip", "productSku": "CJLED1", "productImage": "[\"https://cj/1.jpg\",\"https://cj/2.jpg\"]",
			          "categoryName": "Lighting", "sellPrice": "3.20 -- 4.50"}]
		}}`))
	})
	mux.HandleFunc("/product/query", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("pid") {
		case "P-1":
			_, _ = w.Write([]byte(`{"code": 200, "result": true, "message": "Success", "data": {
				"pid": "P-1", "productNameEn": "LED Strip", "productSku": "CJLED1", "productImage": "https://cj/1.jpg",
				"categoryName": "Lighting", "sellPrice": "3.20", "description": "5m strip",
				"productImageSet": ["https://cj/1.jpg", "https://cj/3.jpg"],
				"variants": [{"vid": "V1", "variantSku": "CJLED1-RED", "variantSellPrice": 3.6}, {"vid": "V2", "variantSku": "CJLED1-BLU", "variantSellPrice": 2.85}]
			}}`))
		case "bad-price":
			_, _ = w.Write([]byte(`{"code": 200, "result": true, "message": "Success", "data": {
				"pid": "bad-price", "productNameEn": "Desk Lamp", "sellPrice": "N/A"
			}}`))
		case "expired":
			_, _ = w.Write([]byte(`{"code": 1600001, "result": false, "message": "Invalid token", "data": null}`))
		default:
			_, _ = w.Write([]byte(`{"code": 200, "result": true, "message": "Success", "data": null}`))
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestCJAdapter_ListCatalog(t *testing.T) {
	server := newCJTestServer(t)
	adapter := newTestCJAdapter(t)
	creds := integration.Credentials{AccessToken: "cj-token", StoreURL: server.URL}

	page, err := adapter.ListCatalog(context.Background(), creds, integration.CatalogQuery{Page: 2, PageSize: 10, Category: "cat-9"})
	require.NoError(t, err)
	assert.Equal(t, 11, page.Total)
	require.Len(t, page.Items, 1)

	item := page.Items[0]
	assert.Equal(t, integration.ProviderCJDropshipping, item.Provider)
	assert.Equal(t, "P-1", item.ExternalID)
	assert.Equal(t, "3.20 USD", item.Price.String())
	assert.Equal(t, []string{"https://cj/1.jpg", "https://cj/2.jpg"}, item.ImageURLs)
}

func TestCJAdapter_FetchDetail(t *testing.T) {
	server := newCJTestServer(t)
	adapter := newTestCJAdapter(t)
	creds := integration.Credentials{AccessToken: "cj-token", StoreURL: server.URL}

	product, err := adapter.FetchDetail(context.Background(), creds, "P-1")
	require.NoError(t, err)
	assert.Equal(t, "CJLED1-BLU", product.SKU)
	assert.Equal(t, "2.85 USD", product.Price.String())
	assert.Equal(t, "5m strip", product.Description)
	assert.Equal(t, []string{"https://cj/1.jpg", "https://cj/3.jpg"}, product.ImageURLs)

	_, err = adapter.FetchDetail(context.Background(), creds, "missing")
	assert.ErrorIs(t, err, integration.ErrExternalProductNotFound)

	_, err = adapter.FetchDetail(context.Background(), creds, "expired")
	assert.ErrorIs(t, err, integration.ErrProviderAuthFailed)
}

func TestCJAdapter_MalformedSellPriceIsInvalidResponse(t *testing.T) {
	server := newCJTestServer(t)
	adapter := newTestCJAdapter(t)
	creds := integration.Credentials{AccessToken: "cj-token", StoreURL: server.URL}

	product, err := adapter.FetchDetail(context.Background(), creds, "bad-price")
	assert.Nil(t, product)
	assert.ErrorIs(t, err, integration.ErrProviderInvalidResponse)

	listing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code": 200, "result": true, "message": "Success", "data": {
			"pageNum": 1, "pageSize": 10, "total": 2,
			"list": [{"pid": "P-1", "productNameEn": "LED Strip", "sellPrice": "3.20"},
			         {"pid": "P-2", "productNameEn": "Desk Lamp", "sellPrice": "call us"}]
		}}`))
	}))
	t.Cleanup(listing.Close)

	page, err := adapter.ListCatalog(context.Background(),
		integration.Credentials{AccessToken: "cj-token", StoreURL: listing.URL},
		integration.CatalogQuery{Page: 1, PageSize: 10})
	assert.Nil(t, page)
	assert.ErrorIs(t, err, integration.ErrProviderInvalidResponse)
	assert.Contains(t, err.Error(), "P-2")
}

func TestCJSellPriceLowerBound(t *testing.T) {
	assert.Equal(t, "3.20", cjSellPriceLowerBound("3.20 -- 4.50"))
	assert.Equal(t, "7.05", cjSellPriceLowerBound(" 7.05 "))
	assert.Equal(t, "", cjSellPriceLowerBound(""))
}

func TestParseCJImages(t *testing.T) {
	assert.Nil(t, parseCJImages(nil))
	assert.Equal(t, []string{"https://cj/a.jpg"}, parseCJImages(json.RawMessage(`"https://cj/a.jpg"`)))
	assert.Equal(t, []string{"a", "b"}, parseCJImages(json.RawMessage(`["a","","b"]`)))
	assert.Equal(t, []string{"a"}, parseCJImages(json.RawMessage(`"[\"a\"]"`)))
	assert.Nil(t, parseCJImages(json.RawMessage(`""`)))
}
