package ecommerce

import "strings"

const (
	// PrintfulAPIURL is the production API endpoint
	PrintfulAPIURL = "https://api.printful.com"
)

// PrintfulConfig holds configuration for the Printful catalog API
type PrintfulConfig struct {
	// APIBaseURL is the base URL of the Printful API
	APIBaseURL string
	// Currency is the currency Printful quotes variant prices in
	Currency string
	ClientSettings
}

// NewPrintfulConfig creates a Printful configuration with defaults
func NewPrintfulConfig() *PrintfulConfig {
	return &PrintfulConfig{
		APIBaseURL: PrintfulAPIURL,
		Currency:   "USD",
		ClientSettings: ClientSettings{
			TimeoutSeconds: defaultTimeoutSeconds,
		},
	}
}

// Validate fills defaults. Printful credentials are per caller, so nothing
// here is mandatory.
func (c *PrintfulConfig) Validate() error {
	if c.APIBaseURL == "" {
		c.APIBaseURL = PrintfulAPIURL
	}
	c.APIBaseURL = strings.TrimSuffix(c.APIBaseURL, "/")
	if c.Currency == "" {
		c.Currency = "USD"
	}
	c.applyDefaults()
	return nil
}
