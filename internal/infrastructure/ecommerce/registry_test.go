package ecommerce

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beezio/marketplace/internal/domain/integration"
)

func TestRegistry_Lookup(t *testing.T) {
	registry, err := NewDefaultRegistry(Settings{})
	require.NoError(t, err)

	assert.Equal(t, []integration.ProviderCode{
		integration.ProviderCJDropshipping,
		integration.ProviderPrintful,
		integration.ProviderShopify,
	}, registry.Providers())

	adapter, err := registry.Adapter(integration.ProviderShopify)
	require.NoError(t, err)
	assert.Equal(t, integration.ProviderShopify, adapter.Code())

	_, err = registry.Adapter("etsy")
	assert.ErrorIs(t, err, integration.ErrProviderNotSupported)
}

func TestRegistry_EnabledSubset(t *testing.T) {
	registry, err := NewDefaultRegistry(Settings{Enabled: []string{"printful"}})
	require.NoError(t, err)
	assert.Equal(t, []integration.ProviderCode{integration.ProviderPrintful}, registry.Providers())

	_, err = registry.Adapter(integration.ProviderCJDropshipping)
	assert.ErrorIs(t, err, integration.ErrProviderNotSupported)
}

func TestRegistry_InvalidAdapterConfig(t *testing.T) {
	_, err := NewDefaultRegistry(Settings{Shopify: ShopifyConfig{APIVersion: "latest"}})
	assert.ErrorIs(t, err, ErrShopifyInvalidAPIVersion)
}

func TestRegistry_UnknownProviderMakesNoCalls(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	registry := NewRegistry(newTestPrintfulAdapter(t))
	adapter, err := registry.Adapter(integration.ParseProviderCode(" Unknown "))
	require.ErrorIs(t, err, integration.ErrProviderNotSupported)
	assert.Nil(t, adapter)

	pf, err := registry.Adapter(integration.ProviderPrintful)
	require.NoError(t, err)
	_, _ = pf.ListCatalog(context.Background(), integration.Credentials{StoreURL: server.URL}, integration.CatalogQuery{})
	assert.Zero(t, calls.Load())
}
