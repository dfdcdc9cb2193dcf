package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, APIRequestsTotal)
	assert.NotNil(t, APIRequestDuration)
	assert.NotNil(t, RateLimitWaitSeconds)
	assert.NotNil(t, PagesFetchedTotal)
	assert.NotNil(t, RecordsTotal)
	assert.NotNil(t, TokenExchangesTotal)
	assert.NotNil(t, RejectedCallbacksTotal)
	assert.NotNil(t, CallbackRequestsTotal)
	assert.NotNil(t, CallbackRequestDuration)
}

// Each test uses its own label values so the shared counters can be read
// without interference from parallel tests.

func TestObserver_ObserveRequest(t *testing.T) {
	t.Parallel()

	o := NewObserver()
	o.ObserveRequest("PATCH", http.StatusOK, 20*time.Millisecond)
	o.ObserveRequest("PATCH", http.StatusOK, 30*time.Millisecond)
	o.ObserveRequest("PATCH", 0, time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("PATCH", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("PATCH", "error")), 0)
}

func TestObserver_ObservePage(t *testing.T) {
	t.Parallel()

	o := NewObserver()
	o.ObservePage("test_widgets", 3)
	o.ObservePage("test_widgets", 0)

	assert.InDelta(t, 2, testutil.ToFloat64(PagesFetchedTotal.WithLabelValues("test_widgets")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(RecordsTotal.WithLabelValues("test_widgets")), 0)
}

func TestObserver_Installation(t *testing.T) {
	t.Parallel()

	o := NewObserver()
	o.ObserveTokenExchange("test_result")
	o.ObserveRejectedCallback("test_property")
	o.ObserveRateLimitWait(10 * time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(TokenExchangesTotal.WithLabelValues("test_result")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(RejectedCallbacksTotal.WithLabelValues("test_property")), 0)
}
