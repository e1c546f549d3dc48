package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/beezio/marketplace/internal/domain/integration"
	"github.com/beezio/marketplace/internal/domain/shared/valueobject"
)

// CJAdapter reads the CJ Dropshipping product catalog
type CJAdapter struct {
	config *CJConfig
	client *apiClient
}

var (
	_ integration.ProviderAdapter = (*CJAdapter)(nil)
	_ integration.DetailFetcher   = (*CJAdapter)(nil)
)

// NewCJAdapter creates a new CJ Dropshipping adapter with the given configuration
func NewCJAdapter(config *CJConfig) (*CJAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &CJAdapter{
		config: config,
		client: newAPIClient(integration.ProviderCJDropshipping, config.ClientSettings),
	}, nil
}

// Code returns the provider code
func (a *CJAdapter) Code() integration.ProviderCode {
	return integration.ProviderCJDropshipping
}

// ListCatalog returns one page of the CJ catalog. The category filter is a CJ
// category id.
func (a *CJAdapter) ListCatalog(ctx context.Context, creds integration.Credentials, query integration.CatalogQuery) (*integration.CatalogPage, error) {
	if err := requireToken(a.Code(), creds); err != nil {
		return nil, err
	}
	query, err := query.Normalize()
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"pageNum":  {strconv.Itoa(query.Page)},
		"pageSize": {strconv.Itoa(query.PageSize)},
	}
	if query.Category != "" {
		params.Set("categoryId", query.Category)
	}

	var list CJProductList
	if err := a.get(ctx, creds, a.baseURL(creds)+"/product/list?"+params.Encode(), &list); err != nil {
		return nil, err
	}

	page := &integration.CatalogPage{
		Items: make([]integration.ExternalProduct, 0, len(list.List)),
		Total: list.Total,
	}
	for i := range list.List {
		item, err := a.toExternal(&list.List[i])
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, item)
	}
	return page, nil
}

// FetchDetail loads one product with its variants. The cheapest variant
// supplies the SKU and base cost.
func (a *CJAdapter) FetchDetail(ctx context.Context, creds integration.Credentials, externalID string) (*integration.ExternalProduct, error) {
	if err := requireToken(a.Code(), creds); err != nil {
		return nil, err
	}

	var p CJProduct
	endpoint := a.baseURL(creds) + "/product/query?" + url.Values{"pid": {externalID}}.Encode()
	if err := a.get(ctx, creds, endpoint, &p); err != nil {
		return nil, err
	}
	if p.PID == "" {
		return nil, fmt.Errorf("%w: cjdropshipping product %s", integration.ErrExternalProductNotFound, externalID)
	}

	product, err := a.toExternal(&p)
	if err != nil {
		return nil, err
	}
	for _, img := range p.ProductImageSet {
		if len(product.ImageURLs) >= maxImagesPerProduct {
			break
		}
		if img != "" && !slices.Contains(product.ImageURLs, img) {
			product.ImageURLs = append(product.ImageURLs, img)
		}
	}

	var cheapest *CJVariant
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.SellPrice <= 0 {
			continue
		}
		if cheapest == nil || v.SellPrice < cheapest.SellPrice {
			cheapest = v
		}
	}
	if cheapest != nil {
		if cheapest.VariantSKU != "" {
			product.SKU = cheapest.VariantSKU
		}
		if m, err := valueobject.NewMoney(decimal.NewFromFloat(cheapest.SellPrice), valueobject.Currency(a.config.Currency)); err == nil {
			product.Price = m
		}
	}
	return &product, nil
}

func (a *CJAdapter) get(ctx context.Context, creds integration.Credentials, endpoint string, result any) error {
	body, err := a.client.do(ctx, http.MethodGet, endpoint, nil, map[string]string{
		"CJ-Access-Token": creds.Token(),
	})
	if err != nil {
		return err
	}

	var env CJEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: cjdropshipping: failed to parse response: %v", integration.ErrProviderInvalidResponse, err)
	}
	switch env.Code {
	case cjCodeSuccess:
	case cjCodeInvalidToken, cjCodeTokenExpired:
		return fmt.Errorf("%w: cjdropshipping: %s", integration.ErrProviderAuthFailed, env.Message)
	case cjCodeNotFound:
		return fmt.Errorf("%w: cjdropshipping: %s", integration.ErrExternalProductNotFound, env.Message)
	case cjCodeRateLimited:
		return fmt.Errorf("%w: cjdropshipping: %s", integration.ErrProviderUnavailable, env.Message)
	default:
		return fmt.Errorf("%w: cjdropshipping: code %d %s", integration.ErrProviderRequestFailed, env.Code, env.Message)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: cjdropshipping: empty data", integration.ErrExternalProductNotFound)
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("%w: cjdropshipping: unexpected data shape: %v", integration.ErrProviderInvalidResponse, err)
	}
	return nil
}

func (a *CJAdapter) baseURL(creds integration.Credentials) string {
	if creds.StoreURL != "" {
		return normalizeBaseURL(creds.StoreURL)
	}
	return a.config.APIBaseURL
}

func (a *CJAdapter) toExternal(p *CJProduct) (integration.ExternalProduct, error) {
	currency := valueobject.Currency(a.config.Currency)
	price, err := parsePrice(integration.ProviderCJDropshipping, p.PID, cjSellPriceLowerBound(p.SellPrice), currency)
	if err != nil {
		return integration.ExternalProduct{}, err
	}
	return integration.ExternalProduct{
		Provider:      integration.ProviderCJDropshipping,
		ExternalID:    p.PID,
		Name:          p.ProductNameEn,
		SKU:           p.ProductSKU,
		ImageURLs:     parseCJImages(p.ProductImage),
		CategoryLabel: p.CategoryName,
		Description:   p.Description,
		Price:         price,
	}, nil
}

// cjSellPriceLowerBound reads "3.20" or a range like "3.20 -- 4.50", taking
// the lower bound.
func cjSellPriceLowerBound(s string) string {
	if lo, _, found := strings.Cut(s, cjSellPriceSeparator); found {
		s = lo
	}
	return strings.TrimSpace(s)
}

// parseCJImages accepts a URL string, a JSON array, or a JSON array encoded
// inside a string.
func parseCJImages(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return capImages(list)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") && json.Unmarshal([]byte(s), &list) == nil {
		return capImages(list)
	}
	return []string{s}
}

func capImages(list []string) []string {
	out := make([]string, 0, len(list))
	for _, u := range list {
		if u != "" && len(out) < maxImagesPerProduct {
			out = append(out, u)
		}
	}
	return out
}
