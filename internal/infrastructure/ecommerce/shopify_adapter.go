package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/beezio/marketplace/internal/domain/integration"
	"github.com/beezio/marketplace/internal/domain/shared/valueobject"
)

const shopifyProductGIDPrefix = "gid://shopify/Product/"

// ShopifyAdapter reads any storefront that exposes the Shopify Admin GraphQL
// API. Pages are addressed by number, so earlier pages are walked with a
// cursor-only query before the requested page is loaded.
type ShopifyAdapter struct {
	config *ShopifyConfig
	client *apiClient
}

var (
	_ integration.ProviderAdapter = (*ShopifyAdapter)(nil)
	_ integration.DetailFetcher   = (*ShopifyAdapter)(nil)
)

// NewShopifyAdapter creates a new Shopify adapter with the given configuration
func NewShopifyAdapter(config *ShopifyConfig) (*ShopifyAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ShopifyAdapter{
		config: config,
		client: newAPIClient(integration.ProviderShopify, config.ClientSettings),
	}, nil
}

// Code returns the provider code
func (a *ShopifyAdapter) Code() integration.ProviderCode {
	return integration.ProviderShopify
}

// ListCatalog returns one page of products. The category filter matches the
// Shopify product type.
func (a *ShopifyAdapter) ListCatalog(ctx context.Context, creds integration.Credentials, query integration.CatalogQuery) (*integration.CatalogPage, error) {
	if err := a.checkCredentials(creds); err != nil {
		return nil, err
	}
	query, err := query.Normalize()
	if err != nil {
		return nil, err
	}

	vars := map[string]any{"first": query.PageSize}
	if query.Category != "" {
		vars["query"] = fmt.Sprintf("product_type:%q", query.Category)
	}

	for skipped := 1; skipped < query.Page; skipped++ {
		var cursor ShopifyCursorData
		if err := a.execute(ctx, creds, shopifyCursorQuery, vars, &cursor); err != nil {
			return nil, err
		}
		vars["after"] = cursor.Products.PageInfo.EndCursor
		if !cursor.Products.PageInfo.HasNextPage {
			break
		}
	}

	var data ShopifyProductsData
	if err := a.execute(ctx, creds, shopifyProductsQuery, vars, &data); err != nil {
		return nil, err
	}

	page := &integration.CatalogPage{Items: make([]integration.ExternalProduct, 0, len(data.Products.Nodes))}
	for i := range data.Products.Nodes {
		item, err := a.toExternal(&data.Products.Nodes[i], data.Shop.CurrencyCode)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, item)
	}
	if data.ProductsCount != nil {
		page.Total = data.ProductsCount.Count
	} else {
		page.Total = query.Offset() + len(page.Items)
	}
	return page, nil
}

// FetchDetail loads a single product by numeric id or full GID
func (a *ShopifyAdapter) FetchDetail(ctx context.Context, creds integration.Credentials, externalID string) (*integration.ExternalProduct, error) {
	if err := a.checkCredentials(creds); err != nil {
		return nil, err
	}
	gid := externalID
	if !strings.HasPrefix(gid, shopifyProductGIDPrefix) {
		gid = shopifyProductGIDPrefix + externalID
	}

	var data ShopifyProductData
	if err := a.execute(ctx, creds, shopifyProductQuery, map[string]any{"id": gid}, &data); err != nil {
		return nil, err
	}
	if data.Product == nil {
		return nil, fmt.Errorf("%w: shopify product %s", integration.ErrExternalProductNotFound, externalID)
	}
	product, err := a.toExternal(data.Product, data.Shop.CurrencyCode)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (a *ShopifyAdapter) checkCredentials(creds integration.Credentials) error {
	if err := requireToken(a.Code(), creds); err != nil {
		return err
	}
	if strings.TrimSpace(creds.StoreURL) == "" {
		return fmt.Errorf("%w: %v", integration.ErrCredentialsMissing, ErrShopifyMissingStore)
	}
	return nil
}

// execute posts one GraphQL document and decodes its data into result
func (a *ShopifyAdapter) execute(ctx context.Context, creds integration.Credentials, query string, vars map[string]any, result any) error {
	payload, err := json.Marshal(GraphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("shopify: failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/admin/api/%s/graphql.json", normalizeBaseURL(creds.StoreURL), a.config.APIVersion)
	body, err := a.client.do(ctx, http.MethodPost, endpoint, bytes.NewReader(payload), map[string]string{
		"Content-Type":           "application/json",
		"X-Shopify-Access-Token": creds.Token(),
	})
	if err != nil {
		return err
	}

	var resp GraphQLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: shopify: failed to parse response: %v", integration.ErrProviderInvalidResponse, err)
	}
	if len(resp.Errors) > 0 {
		return classifyGraphQLErrors(resp.Errors)
	}
	if err := json.Unmarshal(resp.Data, result); err != nil {
		return fmt.Errorf("%w: shopify: unexpected data shape: %v", integration.ErrProviderInvalidResponse, err)
	}
	return nil
}

func classifyGraphQLErrors(errs []GraphQLError) error {
	first := errs[0]
	code, _ := first.Extensions["code"].(string)
	switch code {
	case "THROTTLED", "INTERNAL_SERVER_ERROR":
		return fmt.Errorf("%w: shopify: %s", integration.ErrProviderUnavailable, first.Message)
	case "ACCESS_DENIED", "UNAUTHORIZED":
		return fmt.Errorf("%w: shopify: %s", integration.ErrProviderAuthFailed, first.Message)
	}
	return fmt.Errorf("%w: shopify: %s", integration.ErrProviderRequestFailed, first.Message)
}

func (a *ShopifyAdapter) toExternal(p *ShopifyProduct, currency string) (integration.ExternalProduct, error) {
	if currency == "" {
		currency = string(valueobject.DefaultCurrency)
	}
	out := integration.ExternalProduct{
		Provider:      integration.ProviderShopify,
		ExternalID:    strings.TrimPrefix(p.ID, shopifyProductGIDPrefix),
		Name:          p.Title,
		CategoryLabel: p.ProductType,
		Description:   p.Description,
		Stock:         p.TotalInventory,
		Price:         valueobject.Zero(valueobject.Currency(currency)),
	}
	for _, img := range p.Images.Nodes {
		if img.URL != "" && len(out.ImageURLs) < maxImagesPerProduct {
			out.ImageURLs = append(out.ImageURLs, img.URL)
		}
	}
	if len(p.Variants.Nodes) > 0 {
		v := p.Variants.Nodes[0]
		out.SKU = v.SKU
		price, err := parsePrice(integration.ProviderShopify, out.ExternalID, v.Price, valueobject.Currency(currency))
		if err != nil {
			return integration.ExternalProduct{}, err
		}
		out.Price = price
	}
	if out.SKU == "" {
		out.SKU = p.Handle
	}
	if _, err := strconv.ParseInt(out.ExternalID, 10, 64); err != nil {
		// Non-standard storefronts may return opaque ids; keep them verbatim.
		out.ExternalID = p.ID
	}
	return out, nil
}
