// Package main implements a mock Shopify shop for local development.
// It serves the OAuth token endpoint and a few paginated Admin API
// collections from a JSON fixture, so shopctl can be exercised without a
// partner account. Point api.base_url at it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/donaldgifford/shopkeeper/pkg/logger"
)

const (
	defaultLimit = 50
	maxLimit     = 250
	bucketSize   = 40
)

// store is the fixture layout: one shop and its collections.
type store struct {
	Shop      json.RawMessage   `json:"shop"`
	Products  []json.RawMessage `json:"products"`
	Customers []json.RawMessage `json:"customers"`
	Orders    []json.RawMessage `json:"orders"`
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/store.json", "path to the store fixture")
	flag.Parse()

	lg := logger.New("debug", "text")

	fixture, err := loadFixture(*fixtureFile)
	if err != nil {
		lg.Fatal("failed to load fixture", "path", *fixtureFile, "err", err)
	}
	lg.Info("loaded fixture",
		"products", len(fixture.Products),
		"customers", len(fixture.Customers),
		"orders", len(fixture.Orders),
	)

	addr := fmt.Sprintf(":%d", *port)
	lg.Info("starting mock shop", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      newMux(lg, fixture),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		lg.Fatal("server stopped", "err", err)
	}
}

func loadFixture(path string) (*store, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var s store
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &s, nil
}

func newMux(lg *log.Logger, fixture *store) http.Handler {
	calls := &callBucket{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /admin/oauth/access_token", tokenHandler(lg))
	mux.Handle("GET /admin/api/{version}/shop.json",
		authorized(lg, calls, singleHandler("shop", fixture.Shop)))
	mux.Handle("GET /admin/api/{version}/products.json",
		authorized(lg, calls, collectionHandler(lg, "products", fixture.Products)))
	mux.Handle("GET /admin/api/{version}/customers.json",
		authorized(lg, calls, collectionHandler(lg, "customers", fixture.Customers)))
	mux.Handle("GET /admin/api/{version}/orders.json",
		authorized(lg, calls, collectionHandler(lg, "orders", fixture.Orders)))

	return requestLogger(lg, mux)
}

func requestLogger(lg *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lg.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

// callBucket imitates the leaky bucket reported in
// X-Shopify-Shop-Api-Call-Limit. It never throttles.
type callBucket struct {
	used atomic.Int64
}

func (b *callBucket) take() string {
	n := b.used.Add(1)
	return fmt.Sprintf("%d/%d", (n-1)%bucketSize+1, bucketSize)
}

func authorized(lg *log.Logger, calls *callBucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, basic := r.BasicAuth()
		if r.Header.Get("X-Shopify-Access-Token") == "" && !basic {
			lg.Warn("admin request without credentials", "path", r.URL.Path)
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"errors": "[API] Invalid API key or access token (unrecognized login or wrong password)",
			})
			return
		}
		w.Header().Set("X-Shopify-Shop-Api-Call-Limit", calls.take())
		next.ServeHTTP(w, r)
	})
}

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code"`
}

func tokenHandler(lg *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":             "invalid_request",
				"error_description": "request body must be JSON",
			})
			return
		}
		if req.ClientID == "" || req.ClientSecret == "" || req.Code == "" {
			lg.Warn("token request missing fields")
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":             "invalid_request",
				"error_description": "client_id, client_secret and code are required",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"access_token": "shpat_mock_" + strconv.FormatInt(int64(os.Getpid()), 16),
			"scope":        "read_products,read_customers,read_orders",
		})
		lg.Info("issued mock token", "client_id", req.ClientID)
	}
}

func singleHandler(key string, body json.RawMessage) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]json.RawMessage{key: body})
	}
}

func collectionHandler(lg *log.Logger, key string, items []json.RawMessage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := positiveInt(r.URL.Query().Get("page"), 1)
		limit := min(positiveInt(r.URL.Query().Get("limit"), defaultLimit), maxLimit)

		start := (page - 1) * limit
		out := []json.RawMessage{}
		if start < len(items) {
			out = items[start:min(start+limit, len(items))]
		}

		writeJSON(w, http.StatusOK, map[string][]json.RawMessage{key: out})
		lg.Info("collection", "resource", key, "page", page, "limit", limit, "returned", len(out))
	}
}

func positiveInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}
