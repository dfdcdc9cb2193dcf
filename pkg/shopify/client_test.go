package shopify_test

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/shopkeeper/pkg/shopify"
)

func TestClient_Do(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		req        shopify.RequestDescriptor
		check      func(t *testing.T, r *http.Request, body []byte)
		statusCode int
		respBody   string
		callLimit  string
		wantErr    bool
		checkErr   func(t *testing.T, err error)
	}{
		{
			name: "access token header and query",
			req: shopify.NewRequest(http.MethodGet, "/admin/api/2024-01/products/{id}.json").
				WithPathParam("id", "42").
				WithQuery("fields", "id,title").
				WithCredentials(shopify.NewOAuthCredentials(shopify.AccessToken{Token: "shpat_abc"})),
			check: func(t *testing.T, r *http.Request, _ []byte) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/admin/api/2024-01/products/42.json", r.URL.Path)
				assert.Equal(t, "id,title", r.URL.Query().Get("fields"))
				assert.Equal(t, "shpat_abc", r.Header.Get("X-Shopify-Access-Token"))
				assert.Equal(t, "application/json", r.Header.Get("Accept"))
				assert.Equal(t, "shopkeeper", r.Header.Get("User-Agent"))
				assert.Empty(t, r.Header.Get("Content-Type"))
			},
			statusCode: http.StatusOK,
			respBody:   `{"product":{"id":42}}`,
			callLimit:  "3/40",
		},
		{
			name: "private app basic auth with json body",
			req: shopify.NewRequest(http.MethodPost, "/admin/api/2024-01/products.json").
				WithHeader("X-Request-Id", "req-1").
				WithBody(map[string]any{"product": map[string]string{"title": "Hat"}}).
				WithCredentials(shopify.NewPrivateCredentials(shopify.PrivateCredentials{
					APIKey:   "key",
					Password: "secret",
				})),
			check: func(t *testing.T, r *http.Request, body []byte) {
				assert.Equal(t, http.MethodPost, r.Method)
				want := "Basic " + base64.StdEncoding.EncodeToString([]byte("key:secret"))
				assert.Equal(t, want, r.Header.Get("Authorization"))
				assert.Equal(t, "req-1", r.Header.Get("X-Request-Id"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.JSONEq(t, `{"product":{"title":"Hat"}}`, string(body))
			},
			statusCode: http.StatusCreated,
			respBody:   `{"product":{"id":1}}`,
		},
		{
			name:       "not found",
			req:        shopify.NewRequest(http.MethodGet, "/admin/api/2024-01/products/9.json"),
			statusCode: http.StatusNotFound,
			respBody:   `{"errors":"Not Found"}`,
			wantErr:    true,
			checkErr: func(t *testing.T, err error) {
				var te *shopify.TransportError
				require.True(t, errors.As(err, &te))
				assert.Equal(t, http.StatusNotFound, te.StatusCode)
				assert.Equal(t, "Not Found", te.Status)
				assert.Equal(t, http.MethodGet, te.Method)
				assert.Contains(t, te.Error(), "status 404")
			},
		},
		{
			name:       "throttled",
			req:        shopify.NewRequest(http.MethodGet, "/admin/api/2024-01/shop.json"),
			statusCode: http.StatusTooManyRequests,
			respBody:   `{"errors":"Exceeded 2 calls per second for api client."}`,
			callLimit:  "40/40",
			wantErr:    true,
			checkErr: func(t *testing.T, err error) {
				var te *shopify.TransportError
				require.True(t, errors.As(err, &te))
				assert.Equal(t, "Too Many Requests: call limit exceeded", te.Status)
				assert.Equal(t, 2*time.Second, te.RetryAfter)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				assert.NoError(t, err)
				if tt.check != nil {
					tt.check(t, r, body)
				}
				if tt.callLimit != "" {
					w.Header().Set("X-Shopify-Shop-Api-Call-Limit", tt.callLimit)
				}
				if tt.statusCode == http.StatusTooManyRequests {
					w.Header().Set("Retry-After", "2.0")
				}
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.respBody))
			}))
			defer srv.Close()

			client := shopify.NewClient(shopify.WithBaseURL(srv.URL))
			resp, err := client.Do(context.Background(), tt.req)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, resp)
				tt.checkErr(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.statusCode, resp.StatusCode)
			assert.JSONEq(t, tt.respBody, string(resp.Body))
			if tt.callLimit != "" {
				require.NotNil(t, resp.CallLimit)
				assert.Equal(t, 37, resp.CallLimit.Remaining())
			}
		})
	}
}

func TestClient_Do_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := shopify.NewClient(shopify.WithBaseURL(url))
	_, err := client.Do(context.Background(), shopify.NewRequest(http.MethodGet, "/admin/api/2024-01/shop.json"))
	require.Error(t, err)

	var te *shopify.TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.StatusCode)
	assert.Error(t, te.Unwrap())
}

func TestClient_Do_MissingShop(t *testing.T) {
	t.Parallel()

	client := shopify.NewClient()
	_, err := client.Do(context.Background(), shopify.NewRequest(http.MethodGet, "/admin/api/2024-01/shop.json"))

	var missing *shopify.MissingParameterError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "shop", missing.Parameter)
}

func TestClient_Do_TruncatesLargeErrorBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	_, err := shopify.NewClient(shopify.WithBaseURL(srv.URL)).
		Do(context.Background(), shopify.NewRequest(http.MethodGet, "/x"))

	var te *shopify.TransportError
	require.True(t, errors.As(err, &te))
	assert.Less(t, len(te.Body), 4096)
	assert.Contains(t, te.Body, "4096 bytes")
}

func TestClient_Do_RateLimiterAndObserver(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Shopify-Shop-Api-Call-Limit", "12/40")
		_, _ = w.Write([]byte(`{"shop":{"id":1}}`))
	}))
	defer srv.Close()

	obs := &mockObserver{}
	obs.On("ObserveRateLimitWait", mock.AnythingOfType("time.Duration")).Once()
	obs.On("ObserveRequest", http.MethodGet, http.StatusOK, mock.AnythingOfType("time.Duration")).Once()

	limiter := shopify.NewRateLimiter(100, 10)
	client := shopify.NewClient(
		shopify.WithBaseURL(srv.URL),
		shopify.WithRateLimiter(limiter),
		shopify.WithObserver(obs),
		shopify.WithUserAgent("test-agent"),
	)

	_, err := client.Do(context.Background(), shopify.NewRequest(http.MethodGet, "/admin/api/2024-01/shop.json"))
	require.NoError(t, err)

	limit, at := limiter.LastCallLimit()
	assert.Equal(t, shopify.CallLimit{Used: 12, Limit: 40}, limit)
	assert.False(t, at.IsZero())
	assert.Same(t, obs, client.Observer())
	obs.AssertExpectations(t)
}

func TestClient_Do_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := shopify.NewClient(
		shopify.WithBaseURL("http://127.0.0.1:1"),
		shopify.WithRateLimiter(shopify.NewRateLimiter(1, 1)),
	)
	_, err := client.Do(ctx, shopify.NewRequest(http.MethodGet, "/x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatusText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		want string
	}{
		{http.StatusOK, "OK"},
		{http.StatusPaymentRequired, "Payment Required: the shop is frozen"},
		{http.StatusLocked, "Locked: the shop is unavailable"},
		{http.StatusTooManyRequests, "Too Many Requests: call limit exceeded"},
		{http.StatusTeapot, "I'm a teapot"},
		{599, "Unknown Status"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, shopify.StatusText(tt.code))
		})
	}
}
