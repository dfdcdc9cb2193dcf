package callback

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/shopkeeper/internal/metrics"
	"github.com/donaldgifford/shopkeeper/pkg/logger"
)

func TestRequestLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		target        string
		status        int
		providedReqID string
		wantLogFields []string
		notInLog      []string
	}{
		{
			name:   "logs request with generated ID",
			target: "/auth/callback",
			status: http.StatusOK,
			wantLogFields: []string{
				"method=GET",
				"path=/auth/callback",
				"status=200",
				"duration_ms=",
				"request_id=",
			},
		},
		{
			name:          "uses provided request ID",
			target:        "/healthz",
			status:        http.StatusOK,
			providedReqID: "custom-req-id-123",
			wantLogFields: []string{"request_id=custom-req-id-123"},
		},
		{
			name:          "query string is not logged",
			target:        "/auth/callback?code=secret-code&hmac=abc",
			status:        http.StatusForbidden,
			wantLogFields: []string{"status=403"},
			notInLog:      []string{"secret-code", "hmac"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			l := logger.NewWithWriter(&buf, "debug", "logfmt")

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			if tt.providedReqID != "" {
				req.Header.Set(requestIDHeader, tt.providedReqID)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := RequestLog(l)(func(c echo.Context) error {
				return c.NoContent(tt.status)
			})
			require.NoError(t, handler(c))

			logOutput := buf.String()
			for _, field := range tt.wantLogFields {
				assert.Contains(t, logOutput, field)
			}
			for _, field := range tt.notInLog {
				assert.NotContains(t, logOutput, field)
			}

			respID := rec.Header().Get(requestIDHeader)
			assert.NotEmpty(t, respID)
			if tt.providedReqID != "" {
				assert.Equal(t, tt.providedReqID, respID)
			}
			assert.NotEmpty(t, c.Get("request_id"))
		})
	}
}

func TestRecovery_NoPanic(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := logger.NewWithWriter(&buf, "debug", "logfmt")

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/test", http.NoBody), rec)

	handler := Recovery(l)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, buf.String(), "no panic should produce no log output")
}

func TestRecovery_Panic(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := logger.NewWithWriter(&buf, "debug", "logfmt")

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/panic", http.NoBody), rec)

	handler := Recovery(l)(func(_ echo.Context) error {
		panic("test panic")
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")

	logOutput := buf.String()
	assert.Contains(t, logOutput, "panic recovered")
	assert.Contains(t, logOutput, "test panic")
	assert.Contains(t, logOutput, "path=/panic")
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	e := echo.New()
	e.Use(Metrics())
	e.GET("/metrics-test", func(c echo.Context) error {
		return c.NoContent(http.StatusTeapot)
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	before := testutil.ToFloat64(metrics.CallbackRequestsTotal.WithLabelValues(http.MethodGet, "/metrics-test", "418"))
	for _, target := range []string{"/metrics-test", "/metrics-test", "/healthz"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, http.NoBody))
	}

	after := testutil.ToFloat64(metrics.CallbackRequestsTotal.WithLabelValues(http.MethodGet, "/metrics-test", "418"))
	assert.InDelta(t, 2, after-before, 0)
	assert.InDelta(t, 0, testutil.ToFloat64(
		metrics.CallbackRequestsTotal.WithLabelValues(http.MethodGet, "/healthz", "200"),
	), 0)
}
