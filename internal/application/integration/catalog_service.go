package integration

import (
	"context"

	"go.uber.org/zap"

	"github.com/beezio/marketplace/internal/domain/catalog"
	"github.com/beezio/marketplace/internal/domain/integration"
	"github.com/beezio/marketplace/internal/infrastructure/logger"
	"github.com/beezio/marketplace/internal/infrastructure/telemetry"
)

// CatalogService lists provider catalogs for a caller choosing what to import
type CatalogService struct {
	providers integration.ProviderRegistry
	products  catalog.ProductRepository
	logger    *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(providers integration.ProviderRegistry, products catalog.ProductRepository, l *zap.Logger) *CatalogService {
	if l == nil {
		l = zap.NewNop()
	}
	return &CatalogService{providers: providers, products: products, logger: l}
}

// Providers returns the registered provider codes
func (s *CatalogService) Providers() []integration.ProviderCode {
	return s.providers.Providers()
}

// Browse returns one page of a provider catalog. Each item is flagged when a
// supplier link to it already exists. The flag is advisory: when the lookup
// fails the page is still returned, unflagged.
func (s *CatalogService) Browse(ctx context.Context, provider integration.ProviderCode, creds integration.Credentials, query integration.CatalogQuery) (*CatalogPageResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "integration", "Browse",
		telemetry.WithAttribute(telemetry.SpanAttrProvider, provider.String()))
	defer span.End()

	log := s.log(ctx).With(
		zap.String("provider", provider.String()),
		zap.String("credentials", creds.Fingerprint()),
	)

	adapter, err := s.providers.Adapter(provider)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	query, err = query.Normalize()
	if err != nil {
		return nil, err
	}

	page, err := adapter.ListCatalog(ctx, creds, query)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Catalog listing failed", zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		ids = append(ids, item.ExternalID)
	}
	imported := map[string]bool{}
	if len(ids) > 0 {
		found, err := s.products.ImportedExternalIDs(ctx, provider.String(), ids)
		if err != nil {
			log.Warn("Could not mark already imported products", zap.Error(err))
		} else {
			imported = found
		}
	}

	resp := &CatalogPageResponse{
		Provider: provider,
		Items:    make([]CatalogItemResponse, 0, len(page.Items)),
		Total:    page.Total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	for _, item := range page.Items {
		resp.Items = append(resp.Items, ToCatalogItemResponse(item, imported[item.ExternalID]))
		if !imported[item.ExternalID] {
			resp.Remaining = append(resp.Remaining, item.ExternalID)
		}
	}

	log.Debug("Catalog page listed",
		zap.Int("page", query.Page),
		zap.Int("items", len(resp.Items)),
		zap.Int("total", resp.Total),
	)
	telemetry.SetOK(span)
	return resp, nil
}

func (s *CatalogService) log(ctx context.Context) *logger.ContextLogger {
	if l, ok := ctx.Value(logger.LoggerKey).(*zap.Logger); ok && l != nil {
		return logger.WithLogger(ctx, l)
	}
	return logger.WithLogger(ctx, s.logger)
}
