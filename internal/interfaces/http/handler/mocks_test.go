package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	catalogapp "github.com/beezio/marketplace/internal/application/catalog"
	importapp "github.com/beezio/marketplace/internal/application/import"
	integrationapp "github.com/beezio/marketplace/internal/application/integration"
	"github.com/beezio/marketplace/internal/domain/integration"
	"github.com/beezio/marketplace/internal/domain/pricing"
)

type MockCatalogBrowser struct {
	mock.Mock
}

func (m *MockCatalogBrowser) Providers() []integration.ProviderCode {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]integration.ProviderCode)
}

func (m *MockCatalogBrowser) Browse(ctx context.Context, provider integration.ProviderCode, creds integration.Credentials, query integration.CatalogQuery) (*integrationapp.CatalogPageResponse, error) {
	args := m.Called(ctx, provider, creds, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.CatalogPageResponse), args.Error(1)
}

type MockQuoter struct {
	mock.Mock
}

func (m *MockQuoter) Quote(in pricing.Input) (pricing.Breakdown, error) {
	args := m.Called(in)
	return args.Get(0).(pricing.Breakdown), args.Error(1)
}

type MockImporter struct {
	mock.Mock
}

func (m *MockImporter) ImportMany(ctx context.Context, reqs []importapp.ImportRequest, ws *importapp.WorkingSet) []importapp.Result {
	args := m.Called(ctx, reqs, ws)
	return args.Get(0).([]importapp.Result)
}

func (m *MockImporter) Cancel(ctx context.Context, provider, externalID string) (bool, error) {
	args := m.Called(ctx, provider, externalID)
	return args.Bool(0), args.Error(1)
}

func (m *MockImporter) InFlight(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockOrphanLister struct {
	mock.Mock
}

func (m *MockOrphanLister) List(ctx context.Context) ([]catalogapp.OrphanResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalogapp.OrphanResponse), args.Error(1)
}

type MockCategoryLister struct {
	mock.Mock
}

func (m *MockCategoryLister) List(ctx context.Context) ([]catalogapp.CategoryResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalogapp.CategoryResponse), args.Error(1)
}

var (
	_ CatalogBrowser = (*MockCatalogBrowser)(nil)
	_ Quoter         = (*MockQuoter)(nil)
	_ Importer       = (*MockImporter)(nil)
	_ OrphanLister   = (*MockOrphanLister)(nil)
	_ CategoryLister = (*MockCategoryLister)(nil)
)
