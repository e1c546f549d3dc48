package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/beezio/marketplace/internal/domain/catalog"
	"github.com/beezio/marketplace/internal/domain/integration"
	"github.com/beezio/marketplace/internal/domain/shared/valueobject"
)

// maxImagesPerProduct caps the gallery copied from a provider record
const maxImagesPerProduct = 10

// PrintfulAdapter reads the Printful print-on-demand catalog. The catalog
// endpoint returns every product in one response, so paging happens here.
type PrintfulAdapter struct {
	config *PrintfulConfig
	client *apiClient
}

var (
	_ integration.ProviderAdapter = (*PrintfulAdapter)(nil)
	_ integration.DetailFetcher   = (*PrintfulAdapter)(nil)
)

// NewPrintfulAdapter creates a new Printful adapter with the given configuration
func NewPrintfulAdapter(config *PrintfulConfig) (*PrintfulAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &PrintfulAdapter{
		config: config,
		client: newAPIClient(integration.ProviderPrintful, config.ClientSettings),
	}, nil
}

// Code returns the provider code
func (a *PrintfulAdapter) Code() integration.ProviderCode {
	return integration.ProviderPrintful
}

// ListCatalog returns one page of the catalog. A numeric category filter is
// sent as Printful's category_id; any other value is matched against the
// product type name.
func (a *PrintfulAdapter) ListCatalog(ctx context.Context, creds integration.Credentials, query integration.CatalogQuery) (*integration.CatalogPage, error) {
	if err := requireToken(a.Code(), creds); err != nil {
		return nil, err
	}
	query, err := query.Normalize()
	if err != nil {
		return nil, err
	}

	endpoint := a.baseURL(creds) + "/products"
	typeFilter := ""
	if query.Category != "" {
		if _, err := strconv.ParseInt(query.Category, 10, 64); err == nil {
			endpoint += "?" + url.Values{"category_id": {query.Category}}.Encode()
		} else {
			typeFilter = catalog.FoldName(query.Category)
		}
	}

	var products []PrintfulCatalogProduct
	if err := a.get(ctx, creds, endpoint, &products); err != nil {
		return nil, err
	}

	items := make([]integration.ExternalProduct, 0, len(products))
	for i := range products {
		p := &products[i]
		if p.IsDiscontinued {
			continue
		}
		if typeFilter != "" && catalog.FoldName(p.TypeName) != typeFilter {
			continue
		}
		items = append(items, a.toExternal(p))
	}

	page := &integration.CatalogPage{Total: len(items)}
	start := query.Offset()
	if start >= len(items) {
		page.Items = []integration.ExternalProduct{}
		return page, nil
	}
	end := start + query.PageSize
	if end > len(items) {
		end = len(items)
	}
	page.Items = items[start:end]
	return page, nil
}

// FetchDetail loads variants and uses the cheapest in-stock variant price as
// the base cost.
func (a *PrintfulAdapter) FetchDetail(ctx context.Context, creds integration.Credentials, externalID string) (*integration.ExternalProduct, error) {
	if err := requireToken(a.Code(), creds); err != nil {
		return nil, err
	}
	if _, err := strconv.ParseInt(externalID, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: printful product id %q is not numeric", integration.ErrExternalProductNotFound, externalID)
	}

	var detail PrintfulProductDetail
	if err := a.get(ctx, creds, a.baseURL(creds)+"/products/"+externalID, &detail); err != nil {
		return nil, err
	}

	product := a.toExternal(&detail.Product)
	cheapest, price, err := cheapestVariant(detail.Variants)
	if err != nil {
		return nil, fmt.Errorf("%w: printful product %s: %w", integration.ErrProviderInvalidResponse, externalID, err)
	}
	if cheapest != nil {
		product.SKU = "pf-" + strconv.FormatInt(cheapest.ID, 10)
		product.Price, err = valueobject.NewMoney(price, a.currency(detail.Product.Currency))
		if err != nil {
			return nil, fmt.Errorf("%w: printful product %s: %w", integration.ErrProviderInvalidResponse, externalID, err)
		}
	}
	for _, v := range detail.Variants {
		if len(product.ImageURLs) >= maxImagesPerProduct {
			break
		}
		if v.Image != "" && !slices.Contains(product.ImageURLs, v.Image) {
			product.ImageURLs = append(product.ImageURLs, v.Image)
		}
	}
	return &product, nil
}

func (a *PrintfulAdapter) toExternal(p *PrintfulCatalogProduct) integration.ExternalProduct {
	out := integration.ExternalProduct{
		Provider:      integration.ProviderPrintful,
		ExternalID:    strconv.FormatInt(p.ID, 10),
		Name:          p.Title,
		SKU:           p.Model,
		CategoryLabel: p.TypeName,
		Description:   p.Description,
		Price:         valueobject.Zero(a.currency(p.Currency)),
	}
	if p.Image != "" {
		out.ImageURLs = []string{p.Image}
	}
	return out
}

func (a *PrintfulAdapter) get(ctx context.Context, creds integration.Credentials, endpoint string, result any) error {
	body, err := a.client.do(ctx, http.MethodGet, endpoint, nil, map[string]string{
		"Authorization": "Bearer " + creds.Token(),
	})
	if err != nil {
		return err
	}

	var env PrintfulEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: printful: failed to parse response: %v", integration.ErrProviderInvalidResponse, err)
	}
	if env.Code != http.StatusOK {
		msg := ""
		if env.Error != nil {
			msg = env.Error.Message
		}
		if env.Code == http.StatusNotFound {
			return fmt.Errorf("%w: printful: %s", integration.ErrExternalProductNotFound, msg)
		}
		return fmt.Errorf("%w: printful: code %d %s", integration.ErrProviderRequestFailed, env.Code, msg)
	}
	if err := json.Unmarshal(env.Result, result); err != nil {
		return fmt.Errorf("%w: printful: unexpected result shape: %v", integration.ErrProviderInvalidResponse, err)
	}
	return nil
}

func (a *PrintfulAdapter) baseURL(creds integration.Credentials) string {
	if creds.StoreURL != "" {
		return normalizeBaseURL(creds.StoreURL)
	}
	return a.config.APIBaseURL
}

func (a *PrintfulAdapter) currency(c string) valueobject.Currency {
	if c == "" {
		c = a.config.Currency
	}
	return valueobject.Currency(c)
}

// cheapestVariant prefers in-stock variants. Unpriced variants are skipped;
// a price that does not parse fails the whole product.
func cheapestVariant(variants []PrintfulVariant) (*PrintfulVariant, decimal.Decimal, error) {
	prices := make([]decimal.Decimal, len(variants))
	for i, v := range variants {
		price, err := valueobject.ParseDecimal(v.Price)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("variant %d: %w", v.ID, err)
		}
		prices[i] = price
	}

	for _, inStockOnly := range []bool{true, false} {
		best := -1
		for i := range variants {
			if inStockOnly && !variants[i].InStock {
				continue
			}
			if !prices[i].IsPositive() {
				continue
			}
			if best < 0 || prices[i].LessThan(prices[best]) {
				best = i
			}
		}
		if best >= 0 {
			return &variants[best], prices[best], nil
		}
	}
	return nil, decimal.Zero, nil
}
