package ecommerce

import (
	"fmt"
	"slices"

	"github.com/beezio/marketplace/internal/domain/integration"
)

// Registry maps provider codes to adapters. It is built once at startup and
// read concurrently afterwards.
type Registry struct {
	adapters map[integration.ProviderCode]integration.ProviderAdapter
}

var _ integration.ProviderRegistry = (*Registry)(nil)

// NewRegistry registers adapters by their Code. A later adapter with the same
// code replaces an earlier one.
func NewRegistry(adapters ...integration.ProviderAdapter) *Registry {
	r := &Registry{adapters: make(map[integration.ProviderCode]integration.ProviderAdapter, len(adapters))}
	for _, a := range adapters {
		if a != nil {
			r.adapters[a.Code()] = a
		}
	}
	return r
}

// Adapter returns the adapter for code or ErrProviderNotSupported
func (r *Registry) Adapter(code integration.ProviderCode) (integration.ProviderAdapter, error) {
	a, ok := r.adapters[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", integration.ErrProviderNotSupported, code)
	}
	return a, nil
}

// Providers returns registered codes in sorted order
func (r *Registry) Providers() []integration.ProviderCode {
	codes := make([]integration.ProviderCode, 0, len(r.adapters))
	for code := range r.adapters {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Settings is the subset of application config needed to build the default
// adapters.
type Settings struct {
	Printful PrintfulConfig
	Shopify  ShopifyConfig
	CJ       CJConfig
	// Enabled lists provider codes to register; empty means all.
	Enabled []string
}

// NewDefaultRegistry builds every supported adapter that Settings enables
func NewDefaultRegistry(s Settings) (*Registry, error) {
	enabled := func(code integration.ProviderCode) bool {
		return len(s.Enabled) == 0 || slices.Contains(s.Enabled, code.String())
	}

	var adapters []integration.ProviderAdapter
	if enabled(integration.ProviderPrintful) {
		a, err := NewPrintfulAdapter(&s.Printful)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	if enabled(integration.ProviderShopify) {
		a, err := NewShopifyAdapter(&s.Shopify)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	if enabled(integration.ProviderCJDropshipping) {
		a, err := NewCJAdapter(&s.CJ)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	return NewRegistry(adapters...), nil
}
