package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/beezio/marketplace/internal/domain/catalog"
)

// MockCategoryRepository is a mock implementation of catalog.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByNameKey(ctx context.Context, key string) (*catalog.Category, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindFallback(ctx context.Context) (*catalog.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *catalog.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Category), args.Error(1)
}

// MockOwnerRepository is a mock implementation of catalog.OwnerRepository
type MockOwnerRepository struct {
	mock.Mock
}

func (m *MockOwnerRepository) FindByIdentity(ctx context.Context, identity string) (*catalog.Owner, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Owner), args.Error(1)
}

func (m *MockOwnerRepository) Upsert(ctx context.Context, owner *catalog.Owner) (*catalog.Owner, error) {
	args := m.Called(ctx, owner)
	if fn, ok := args.Get(0).(func(context.Context, *catalog.Owner) *catalog.Owner); ok {
		return fn(ctx, owner), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Owner), args.Error(1)
}

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
	return args.Get(0).([]catalog.ImportedProduct), args.Error(1)
}
