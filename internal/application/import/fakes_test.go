package importapp

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	catalogapp "github.com/beezio/marketplace/internal/application/catalog"
	"github.com/beezio/marketplace/internal/domain/catalog"
	"github.com/beezio/marketplace/internal/domain/importing"
	"github.com/beezio/marketplace/internal/domain/integration"
	"github.com/beezio/marketplace/internal/domain/shared/valueobject"
)

// listAdapter has no detail capability
type listAdapter struct {
	code integration.ProviderCode
}

func (a *listAdapter) Code() integration.ProviderCode { return a.code }

func (a *listAdapter) ListCatalog(context.Context, integration.Credentials, integration.CatalogQuery) (*integration.CatalogPage, error) {
	return &integration.CatalogPage{}, nil
}

// detailAdapter answers FetchDetail from a canned record or error. When
// started is set it signals the call and waits for release.
type detailAdapter struct {
	listAdapter
	detail  *integration.ExternalProduct
	err     error
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (a *detailAdapter) FetchDetail(ctx context.Context, _ integration.Credentials, externalID string) (*integration.ExternalProduct, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	if a.started != nil {
		close(a.started)
		<-a.release
	}
	if a.err != nil {
		return nil, a.err
	}
	d := *a.detail
	d.ExternalID = externalID
	return &d, nil
}

func (a *detailAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type fakeRegistry map[integration.ProviderCode]integration.ProviderAdapter

func (r fakeRegistry) Adapter(code integration.ProviderCode) (integration.ProviderAdapter, error) {
	if a, ok := r[code]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s", integration.ErrProviderNotSupported, code)
}

func (r fakeRegistry) Providers() []integration.ProviderCode {
	out := make([]integration.ProviderCode, 0, len(r))
	for code := range r {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// memJobs is a minimal in-process job registry shared by every orchestrator
// built on it, like a Redis registry shared by several instances.
type memJobs struct {
	mu   sync.Mutex
	held map[string]string
}

func newMemJobs() *memJobs { return &memJobs{held: map[string]string{}} }

func (m *memJobs) Acquire(_ context.Context, key importing.JobKey, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[key.String()]; ok {
		return false, nil
	}
	m.held[key.String()] = token
	return true, nil
}

func (m *memJobs) Release(_ context.Context, key importing.JobKey, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key.String()] == token {
		delete(m.held, key.String())
	}
	return nil
}

func (m *memJobs) Remove(_ context.Context, key importing.JobKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key.String())
	return nil
}

func (m *memJobs) Contains(_ context.Context, key importing.JobKey) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.held[key.String()]
	return ok, nil
}

func (m *memJobs) HeldBy(_ context.Context, key importing.JobKey, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	held, ok := m.held[key.String()]
	return ok && held == token, nil
}

func (m *memJobs) InFlight(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.held))
	for k := range m.held {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memJobs) Close() error { return nil }

// MockResolver is a mock implementation of Resolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolveCategory(ctx context.Context, label string) (*uuid.UUID, error) {
	args := m.Called(ctx, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uuid.UUID), args.Error(1)
}

func (m *MockResolver) ResolveOwner(ctx context.Context, caller catalogapp.Caller) (uuid.UUID, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockServerImporter is a mock implementation of importing.ServerImporter
type MockServerImporter struct {
	mock.Mock
}

func (m *MockServerImporter) ImportProduct(ctx context.Context, product *catalog.ImportedProduct, link *catalog.SupplierLink) (uuid.UUID, error) {
	args := m.Called(ctx, product, link)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockClientWriter is a mock implementation of importing.ClientWriter
type MockClientWriter struct {
	mock.Mock
}

func (m *MockClientWriter) CreateProduct(ctx context.Context, product *catalog.ImportedProduct) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockClientWriter) CreateSupplierLink(ctx context.Context, link *catalog.SupplierLink) error {
	return m.Called(ctx, link).Error(0)
}

// recordingServer stores what it was asked to write
type recordingServer struct {
	mu      sync.Mutex
	written map[string]*catalog.ImportedProduct
	hook    func(ctx context.Context) error
}

func newRecordingServer() *recordingServer {
	return &recordingServer{written: map[string]*catalog.ImportedProduct{}}
}

func (s *recordingServer) ImportProduct(ctx context.Context, product *catalog.ImportedProduct, link *catalog.SupplierLink) (uuid.UUID, error) {
	if s.hook != nil {
		if err := s.hook(ctx); err != nil {
			return uuid.Nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written[link.ExternalID] = product
	return product.ID, nil
}

func usd(amount string) valueobject.Money {
	return valueobject.MustMoney(amount, valueobject.Currency("USD"))
}

func listed(provider integration.ProviderCode, id, name, price string) integration.ExternalProduct {
	return integration.ExternalProduct{
		Provider:      provider,
		ExternalID:    id,
		Name:          name,
		SKU:           "SKU-" + id,
		CategoryLabel: "T-Shirts",
		Price:         usd(price),
	}
}
