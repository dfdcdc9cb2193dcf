package shopify_test

import (
	"net/url"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/donaldgifford/shopkeeper/pkg/shopify"
)

const (
	testSecret = "hush"
	testNonce  = "nonce-123"
	testShop   = "acme.myshopify.com"
)

// signedCallback returns callback parameters signed with secret.
func signedCallback(secret string, params url.Values) url.Values {
	out := url.Values{}
	for k, v := range params {
		out[k] = append([]string(nil), v...)
	}
	out.Set("hmac", shopify.Sign(params, secret))
	return out
}

func validCallbackParams() url.Values {
	return url.Values{
		"code":      {"auth-code-1"},
		"shop":      {testShop},
		"state":     {testNonce},
		"timestamp": {"1700000000"},
	}
}

type mockObserver struct {
	mock.Mock
}

func (m *mockObserver) ObserveRequest(method string, status int, elapsed time.Duration) {
	m.Called(method, status, elapsed)
}

func (m *mockObserver) ObservePage(resource string, records int) {
	m.Called(resource, records)
}

func (m *mockObserver) ObserveTokenExchange(result string) {
	m.Called(result)
}

func (m *mockObserver) ObserveRejectedCallback(property string) {
	m.Called(property)
}

func (m *mockObserver) ObserveRateLimitWait(elapsed time.Duration) {
	m.Called(elapsed)
}
