package ecommerce

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/beezio/marketplace/internal/domain/integration"
	"github.com/beezio/marketplace/internal/domain/shared/valueobject"
)

// maxResponseSize is the maximum allowed response size from a provider API (10MB)
const maxResponseSize = 10 * 1024 * 1024

const (
	defaultTimeoutSeconds    = 30
	defaultRequestsPerSecond = 5.0
	defaultBurst             = 5
)

// ClientSettings are the transport knobs shared by every adapter config.
type ClientSettings struct {
	// TimeoutSeconds bounds a single request, including reading the body
	TimeoutSeconds int
	// RequestsPerSecond paces outbound calls; zero means the default
	RequestsPerSecond float64
	// Burst is the limiter bucket size
	Burst int
}

func (s *ClientSettings) applyDefaults() {
	if s.TimeoutSeconds <= 0 {
		s.TimeoutSeconds = defaultTimeoutSeconds
	}
	if s.RequestsPerSecond <= 0 {
		s.RequestsPerSecond = defaultRequestsPerSecond
	}
	if s.Burst <= 0 {
		s.Burst = defaultBurst
	}
}

// apiClient performs exactly one HTTP attempt per call. The limiter only delays
// a request; it never repeats one.
type apiClient struct {
	provider   integration.ProviderCode
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
}

func newAPIClient(provider integration.ProviderCode, settings ClientSettings) *apiClient {
	settings.applyDefaults()
	timeout := time.Duration(settings.TimeoutSeconds) * time.Second
	return &apiClient{
		provider:   provider,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(settings.RequestsPerSecond), settings.Burst),
		timeout:    timeout,
	}
}

// do sends the request and returns the body of a 2xx response.
func (c *apiClient) do(ctx context.Context, method, rawURL string, body io.Reader, headers map[string]string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: rate limiter: %v", integration.ErrProviderUnavailable, c.provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", c.provider, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", integration.ErrProviderUnavailable, c.provider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: failed to read response: %v", integration.ErrProviderUnavailable, c.provider, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s: HTTP %d", integration.ErrProviderAuthFailed, c.provider, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s: HTTP 404", integration.ErrExternalProductNotFound, c.provider)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s: HTTP %d", integration.ErrProviderUnavailable, c.provider, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: %s: HTTP %d: %s", integration.ErrProviderRequestFailed, c.provider, resp.StatusCode, snippet(respBody))
	}
	return respBody, nil
}

// snippet trims a provider error body for inclusion in an error message.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// normalizeBaseURL accepts a bare host or a full URL and returns a URL with
// a scheme and no trailing slash.
func normalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	return strings.TrimSuffix(raw, "/")
}

// requireToken fails fast when the caller supplied no secret.
func requireToken(provider integration.ProviderCode, creds integration.Credentials) error {
	if creds.IsEmpty() {
		return fmt.Errorf("%w: %s", integration.ErrCredentialsMissing, provider)
	}
	return nil
}

// parsePrice turns a supplier price into Money. A price that does not parse
// is an invalid response, so the product is never priced from zero.
func parsePrice(provider integration.ProviderCode, productID, raw string, currency valueobject.Currency) (valueobject.Money, error) {
	amount, err := valueobject.ParseDecimal(raw)
	if err != nil {
		return valueobject.Money{}, fmt.Errorf("%w: %s product %s price: %w", integration.ErrProviderInvalidResponse, provider, productID, err)
	}
	m, err := valueobject.NewMoney(amount, currency)
	if err != nil {
		return valueobject.Money{}, fmt.Errorf("%w: %s product %s price: %w", integration.ErrProviderInvalidResponse, provider, productID, err)
	}
	return m, nil
}
