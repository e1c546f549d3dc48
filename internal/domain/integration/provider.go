package integration

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/beezio/marketplace/internal/domain/shared/valueobject"
	"golang.org/x/crypto/blake2b"
)

// ---------------------------------------------------------------------------
// Provider Errors
// ---------------------------------------------------------------------------

var (
	ErrProviderNotSupported    = errors.New("integration: provider not supported")
	ErrProviderUnavailable     = errors.New("integration: provider temporarily unavailable")
	ErrProviderRequestFailed   = errors.New("integration: provider request failed")
	ErrProviderInvalidResponse = errors.New("integration: invalid provider response")
	ErrProviderAuthFailed      = errors.New("integration: provider authentication failed")
	ErrCredentialsMissing      = errors.New("integration: provider credentials missing")
	ErrExternalProductNotFound = errors.New("integration: external product not found")
	ErrInvalidCatalogQuery     = errors.New("integration: invalid catalog query")
)

// ---------------------------------------------------------------------------
// ProviderCode
// ---------------------------------------------------------------------------

// ProviderCode identifies an external commerce platform
type ProviderCode string

const (
	// ProviderPrintful is a print-on-demand supplier
	ProviderPrintful ProviderCode = "printful"
	// ProviderShopify is a generic storefront exposing the Shopify Admin API
	ProviderShopify ProviderCode = "shopify"
	// ProviderCJDropshipping is a dropshipping supplier
	ProviderCJDropshipping ProviderCode = "cjdropshipping"
)

// ParseProviderCode normalizes user input. It does not check registration;
// that is the registry's job.
func ParseProviderCode(s string) ProviderCode {
	return ProviderCode(strings.ToLower(strings.TrimSpace(s)))
}

// String returns the string representation
func (c ProviderCode) String() string {
	return string(c)
}

// ---------------------------------------------------------------------------
// Credentials
// ---------------------------------------------------------------------------

// Credentials are the caller-supplied secrets for one provider account. They
// are never persisted and never logged in plaintext.
type Credentials struct {
	APIKey      string `json:"api_key"`
	APISecret   string `json:"api_secret,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	// StoreURL is the shop domain or an alternate API base URL.
	StoreURL string `json:"store_url,omitempty"`
}

// Token returns the bearer-style secret, preferring AccessToken.
func (c Credentials) Token() string {
	if c.AccessToken != "" {
		return c.AccessToken
	}
	return c.APIKey
}

// IsEmpty reports whether no secret was supplied.
func (c Credentials) IsEmpty() bool {
	return c.APIKey == "" && c.AccessToken == ""
}

// Fingerprint identifies the credential set in logs without revealing it.
func (c Credentials) Fingerprint() string {
	if c.IsEmpty() {
		return ""
	}
	sum := blake2b.Sum256([]byte(c.APIKey + "\x00" + c.APISecret + "\x00" + c.AccessToken))
	return hex.EncodeToString(sum[:8])
}

// String implements fmt.Stringer with secrets redacted.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{store=%q fp=%s}", c.StoreURL, c.Fingerprint())
}

// GoString keeps %#v from leaking secrets.
func (c Credentials) GoString() string {
	return c.String()
}

// ---------------------------------------------------------------------------
// ExternalProduct
// ---------------------------------------------------------------------------

// ExternalProduct is one product record from a provider, normalized to the
// internal shape. It is built by an adapter call, consumed once by an import
// and then discarded.
type ExternalProduct struct {
	Provider      ProviderCode      `json:"provider"`
	ExternalID    string            `json:"external_id"`
	Name          string            `json:"name"`
	SKU           string            `json:"sku"`
	ImageURLs     []string          `json:"image_urls"`
	CategoryLabel string            `json:"category"`
	Price         valueobject.Money `json:"price"`
	Description   string            `json:"description,omitempty"`
	Stock         *int              `json:"stock,omitempty"`
}

// Validate checks the fields every import relies on.
func (p *ExternalProduct) Validate() error {
	if strings.TrimSpace(p.ExternalID) == "" {
		return fmt.Errorf("%w: missing external id", ErrProviderInvalidResponse)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product %s has no name", ErrProviderInvalidResponse, p.ExternalID)
	}
	return nil
}

// Merge overlays non-empty detail fields onto the list-level record.
func (p ExternalProduct) Merge(detail *ExternalProduct) ExternalProduct {
	if detail == nil {
		return p
	}
	out := p
	if detail.Name != "" {
		out.Name = detail.Name
	}
	if detail.SKU != "" {
		out.SKU = detail.SKU
	}
	if len(detail.ImageURLs) > 0 {
		out.ImageURLs = detail.ImageURLs
	}
	if detail.CategoryLabel != "" {
		out.CategoryLabel = detail.CategoryLabel
	}
	if detail.Price.Currency() != "" && !detail.Price.IsZero() {
		out.Price = detail.Price
	}
	if detail.Description != "" {
		out.Description = detail.Description
	}
	if detail.Stock != nil {
		out.Stock = detail.Stock
	}
	return out
}

// ---------------------------------------------------------------------------
// Catalog paging
// ---------------------------------------------------------------------------

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CatalogQuery selects one page of a provider catalog. Page is 1-based.
type CatalogQuery struct {
	Page     int
	PageSize int
	// Category is an optional provider-specific category filter.
	Category string
}

// Normalize applies defaults and rejects nonsense values.
func (q CatalogQuery) Normalize() (CatalogQuery, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
	if q.Page < 1 || q.PageSize < 1 || q.PageSize > MaxPageSize {
		return q, fmt.Errorf("%w: page=%d page_size=%d", ErrInvalidCatalogQuery, q.Page, q.PageSize)
	}
	q.Category = strings.TrimSpace(q.Category)
	return q, nil
}

// Offset returns the zero-based index of the first item on the page.
func (q CatalogQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// CatalogPage is one page of normalized products plus the provider's total.
type CatalogPage struct {
	Items []ExternalProduct
	Total int
}

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// ProviderAdapter translates one provider's catalog API into ExternalProduct
// values. Adapters own no per-caller state and make a single attempt per call;
// retry policy belongs to the caller.
type ProviderAdapter interface {
	// Code returns the provider this adapter handles
	Code() ProviderCode

	// ListCatalog returns one page of the provider catalog
	ListCatalog(ctx context.Context, creds Credentials, query CatalogQuery) (*CatalogPage, error)
}

// DetailFetcher is implemented by adapters that can load a richer record for a
// single product. Callers discover it with a type assertion.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, creds Credentials, externalID string) (*ExternalProduct, error)
}

// ProviderRegistry maps provider codes to adapters
type ProviderRegistry interface {
	// Adapter returns the adapter for code or ErrProviderNotSupported
	Adapter(code ProviderCode) (ProviderAdapter, error)

	// Providers lists registered codes in a stable order
	Providers() []ProviderCode
}
