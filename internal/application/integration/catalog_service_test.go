package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/beezio/marketplace/internal/domain/catalog"
	"github.com/beezio/marketplace/internal/domain/integration"
	"github.com/beezio/marketplace/internal/domain/shared/valueobject"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ImportedProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ImportedProduct), args.Error(1)
}

func (m *MockProductRepository) ImportedExternalIDs(ctx context.Context, provider string, externalIDs []string) (map[string]bool, error) {
	args := m.Called(ctx, provider, externalIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockProductRepository) FindOrphans(ctx context.Context, limit int) ([]catalog.ImportedProduct, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.ImportedProduct), args.Error(1)
}

// stubAdapter returns a canned page and records the query it saw
type stubAdapter struct {
	code  integration.ProviderCode
	page  *integration.CatalogPage
	err   error
	query integration.CatalogQuery
	creds integration.Credentials
}

func (a *stubAdapter) Code() integration.ProviderCode { return a.code }

func (a *stubAdapter) ListCatalog(_ context.Context, creds integration.Credentials, query integration.CatalogQuery) (*integration.CatalogPage, error) {
	a.query, a.creds = query, creds
	if a.err != nil {
		return nil, a.err
	}
	return a.page, nil
}

type stubRegistry struct {
	adapters map[integration.ProviderCode]integration.ProviderAdapter
}

func (r stubRegistry) Adapter(code integration.ProviderCode) (integration.ProviderAdapter, error) {
	if a, ok := r.adapters[code]; ok {
		return a, nil
	}
	return nil, integration.ErrProviderNotSupported
}

func (r stubRegistry) Providers() []integration.ProviderCode {
	return []integration.ProviderCode{integration.ProviderPrintful}
}

func item(id, name string) integration.ExternalProduct {
	return integration.ExternalProduct{
		Provider:      integration.ProviderPrintful,
		ExternalID:    id,
		Name:          name,
		CategoryLabel: "T-Shirts",
		Price:         valueobject.MustMoney("9.50", valueobject.Currency("USD")),
	}
}

func newBrowseFixture() (*CatalogService, *stubAdapter, *MockProductRepository) {
	adapter := &stubAdapter{
		code: integration.ProviderPrintful,
		page: &integration.CatalogPage{
			Items: []integration.ExternalProduct{item("1", "Tee"), item("2", "Hoodie"), item("3", "Mug")},
			Total: 42,
		},
	}
	repo := new(MockProductRepository)
	registry := stubRegistry{adapters: map[integration.ProviderCode]integration.ProviderAdapter{integration.ProviderPrintful: adapter}}
	return NewCatalogService(registry, repo, nil), adapter, repo
}

func TestCatalogService_Browse(t *testing.T) {
	ctx := context.Background()
	svc, adapter, repo := newBrowseFixture()
	repo.On("ImportedExternalIDs", ctx, "printful", []string{"1", "2", "3"}).
		Return(map[string]bool{"2": true}, nil)

	creds := integration.Credentials{APIKey: "pf-secret"}
	page, err := svc.Browse(ctx, integration.ProviderPrintful, creds, integration.CatalogQuery{Page: 2, Category: " shirts "})
	require.NoError(t, err)

	assert.Equal(t, 2, adapter.query.Page)
	assert.Equal(t, integration.DefaultPageSize, adapter.query.PageSize)
	assert.Equal(t, "shirts", adapter.query.Category)
	assert.Equal(t, creds, adapter.creds)

	assert.Equal(t, 42, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Items, 3)
	assert.False(t, page.Items[0].AlreadyImported)
	assert.True(t, page.Items[1].AlreadyImported)
	assert.Equal(t, []string{"1", "3"}, page.Remaining)
	assert.Equal(t, []string{}, page.Items[0].ImageURLs)
	repo.AssertExpectations(t)
}

func TestCatalogService_Browse_LookupFailureIsSoft(t *testing.T) {
	ctx := context.Background()
	svc, _, repo := newBrowseFixture()
	repo.On("ImportedExternalIDs", ctx, "printful", mock.Anything).Return(nil, errors.New("connection refused"))

	page, err := svc.Browse(ctx, integration.ProviderPrintful, integration.Credentials{APIKey: "k"}, integration.CatalogQuery{})
	require.NoError(t, err)
	for _, it := range page.Items {
		assert.False(t, it.AlreadyImported)
	}
	assert.Len(t, page.Remaining, 3)
}

func TestCatalogService_Browse_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown provider fails without I/O", func(t *testing.T) {
		svc, adapter, repo := newBrowseFixture()
		_, err := svc.Browse(ctx, "etsy", integration.Credentials{APIKey: "k"}, integration.CatalogQuery{})
		assert.ErrorIs(t, err, integration.ErrProviderNotSupported)
		assert.Zero(t, adapter.query.Page)
		repo.AssertNotCalled(t, "ImportedExternalIDs", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("oversized page is rejected", func(t *testing.T) {
		svc, _, _ := newBrowseFixture()
		_, err := svc.Browse(ctx, integration.ProviderPrintful, integration.Credentials{APIKey: "k"},
			integration.CatalogQuery{PageSize: integration.MaxPageSize + 1})
		assert.ErrorIs(t, err, integration.ErrInvalidCatalogQuery)
	})

	t.Run("adapter error is returned", func(t *testing.T) {
		svc, adapter, _ := newBrowseFixture()
		adapter.err = integration.ErrProviderAuthFailed
		_, err := svc.Browse(ctx, integration.ProviderPrintful, integration.Credentials{APIKey: "k"}, integration.CatalogQuery{})
		assert.ErrorIs(t, err, integration.ErrProviderAuthFailed)
	})

	t.Run("empty page skips the lookup", func(t *testing.T) {
		svc, adapter, repo := newBrowseFixture()
		adapter.page = &integration.CatalogPage{Total: 0}
		page, err := svc.Browse(ctx, integration.ProviderPrintful, integration.Credentials{APIKey: "k"}, integration.CatalogQuery{})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		repo.AssertNotCalled(t, "ImportedExternalIDs", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCatalogItemResponse_ToProduct(t *testing.T) {
	src := item("7", "Poster")
	src.Description = "A2 matte"
	back := ToCatalogItemResponse(src, true).ToProduct()

	assert.Equal(t, src.ExternalID, back.ExternalID)
	assert.Equal(t, src.CategoryLabel, back.CategoryLabel)
	assert.True(t, src.Price.Equals(back.Price))
	assert.Equal(t, src.Description, back.Description)
}
