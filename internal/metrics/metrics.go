// Package metrics defines Prometheus metrics for shopkeeper.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/donaldgifford/shopkeeper/pkg/shopify"
)

const namespace = "shopkeeper"

// Admin API metrics.
var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of Shopify Admin API requests.",
	}, []string{"method", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of Shopify Admin API requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	RateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rate_limit_wait_seconds",
		Help:      "Time spent waiting on the client-side rate limiter.",
		Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10},
	})
)

// Pagination metrics.
var (
	PagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pages_fetched_total",
		Help:      "Total number of collection pages fetched.",
	}, []string{"resource"})

	RecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_total",
		Help:      "Total number of records decoded from collection pages.",
	}, []string{"resource"})
)

// Installation metrics.
var (
	TokenExchangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_exchanges_total",
		Help:      "Total number of installation attempts by result.",
	}, []string{"result"})

	RejectedCallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejected_callbacks_total",
		Help:      "Total number of OAuth callbacks that failed verification, by property.",
	}, []string{"property"})
)

// Callback server metrics.
var (
	CallbackRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "callback_requests_total",
		Help:      "Total number of requests served by the OAuth callback listener.",
	}, []string{"method", "path", "status"})

	CallbackRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "callback_request_duration_seconds",
		Help:      "Duration of OAuth callback requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// Observer records shopify client events into the package metrics.
type Observer struct{}

var _ shopify.Observer = Observer{}

// NewObserver returns an Observer backed by the default registry.
func NewObserver() Observer {
	return Observer{}
}

// ObserveRequest implements shopify.Observer. A status of 0 means the
// request never got an answer.
func (Observer) ObserveRequest(method string, status int, elapsed time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	APIRequestsTotal.WithLabelValues(method, code).Inc()
	APIRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObservePage implements shopify.Observer.
func (Observer) ObservePage(resource string, records int) {
	if resource == "" {
		resource = "unknown"
	}
	PagesFetchedTotal.WithLabelValues(resource).Inc()
	RecordsTotal.WithLabelValues(resource).Add(float64(records))
}

// ObserveTokenExchange implements shopify.Observer.
func (Observer) ObserveTokenExchange(result string) {
	TokenExchangesTotal.WithLabelValues(result).Inc()
}

// ObserveRejectedCallback implements shopify.Observer.
func (Observer) ObserveRejectedCallback(property string) {
	RejectedCallbacksTotal.WithLabelValues(property).Inc()
}

// ObserveRateLimitWait implements shopify.Observer.
func (Observer) ObserveRateLimitWait(elapsed time.Duration) {
	RateLimitWaitSeconds.Observe(elapsed.Seconds())
}
