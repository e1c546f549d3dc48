package ecommerce

import "strings"

const (
	// CJAPIURL is the production API endpoint
	CJAPIURL = "https://developers.cjdropshipping.com/api2.0/v1"
)

// CJConfig holds configuration for the CJ Dropshipping product API
type CJConfig struct {
	// APIBaseURL is the base URL of the CJ API
	APIBaseURL string
	// Currency is the currency CJ quotes sell prices in
	Currency string
	ClientSettings
}

// NewCJConfig creates a CJ Dropshipping configuration with defaults
func NewCJConfig() *CJConfig {
	return &CJConfig{
		APIBaseURL: CJAPIURL,
		Currency:   "USD",
		// CJ throttles free accounts to one request per second
		ClientSettings: ClientSettings{RequestsPerSecond: 1, Burst: 1},
	}
}

// Validate fills defaults
func (c *CJConfig) Validate() error {
	if c.APIBaseURL == "" {
		c.APIBaseURL = CJAPIURL
	}
	c.APIBaseURL = strings.TrimSuffix(c.APIBaseURL, "/")
	if c.Currency == "" {
		c.Currency = "USD"
	}
	c.applyDefaults()
	return nil
}
