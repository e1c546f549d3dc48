package ecommerce

import "regexp"

// ShopifyDefaultAPIVersion is the Admin API version queried when none is configured
const ShopifyDefaultAPIVersion = "2024-10"

var shopifyAPIVersionPattern = regexp.MustCompile(`^\d{4}-\d{2}$|^unstable$`)

// ShopifyConfig holds configuration for storefronts exposing the Shopify Admin
// GraphQL API. The shop domain and access token come from the caller.
type ShopifyConfig struct {
	// APIVersion is the dated Admin API version, e.g. 2024-10
	APIVersion string
	ClientSettings
}

// NewShopifyConfig creates a Shopify configuration with defaults
func NewShopifyConfig() *ShopifyConfig {
	return &ShopifyConfig{APIVersion: ShopifyDefaultAPIVersion}
}

// Validate validates the Shopify configuration and fills defaults
func (c *ShopifyConfig) Validate() error {
	if c.APIVersion == "" {
		c.APIVersion = ShopifyDefaultAPIVersion
	}
	if !shopifyAPIVersionPattern.MatchString(c.APIVersion) {
		return ErrShopifyInvalidAPIVersion
	}
	c.applyDefaults()
	return nil
}
