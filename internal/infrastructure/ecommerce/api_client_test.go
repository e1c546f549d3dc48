package ecommerce

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beezio/marketplace/internal/domain/integration"
)

func TestAPIClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, integration.ErrProviderAuthFailed},
		{"forbidden", http.StatusForbidden, integration.ErrProviderAuthFailed},
		{"not found", http.StatusNotFound, integration.ErrExternalProductNotFound},
		{"bad request", http.StatusBadRequest, integration.ErrProviderRequestFailed},
		{"too many requests", http.StatusTooManyRequests, integration.ErrProviderRequestFailed},
		{"server error", http.StatusBadGateway, integration.ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer server.Close()

			client := newAPIClient(integration.ProviderPrintful, ClientSettings{})
			_, err := client.do(context.Background(), http.MethodGet, server.URL, nil, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAPIClient_SingleAttempt(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newAPIClient(integration.ProviderShopify, ClientSettings{})
	_, err := client.do(context.Background(), http.MethodGet, server.URL, nil, nil)
	require.ErrorIs(t, err, integration.ErrProviderUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAPIClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := newAPIClient(integration.ProviderPrintful, ClientSettings{TimeoutSeconds: 1})
	client.timeout = 50 * time.Millisecond

	_, err := client.do(context.Background(), http.MethodGet, server.URL, nil, nil)
	assert.ErrorIs(t, err, integration.ErrProviderUnavailable)
}

func TestAPIClient_SendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "v", r.Header.Get("X-Test"))
		_, _ = w.Write([]byte(`ok`))
	}))
	defer server.Close()

	client := newAPIClient(integration.ProviderPrintful, ClientSettings{})
	body, err := client.do(context.Background(), http.MethodGet, server.URL, nil, map[string]string{"X-Test": "v"})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, "https://demo.myshopify.com", normalizeBaseURL("demo.myshopify.com/"))
	assert.Equal(t, "http://127.0.0.1:9000", normalizeBaseURL(" http://127.0.0.1:9000 "))
}

func TestSnippet(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, snippet(long), 203)
	assert.Equal(t, "short", snippet([]byte("  short\n")))
}
