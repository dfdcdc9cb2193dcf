package main

import "errors"

// KnownMetrics is the set of metric names exported by the shopctl callback
// listener plus the recording rules referenced in dashboards and alerts.
// Histograms are listed by base name.
var KnownMetrics = map[string]bool{
	// Admin API client.
	"shopkeeper_api_requests_total":           true,
	"shopkeeper_api_request_duration_seconds": true,
	"shopkeeper_rate_limit_wait_seconds":      true,

	// Pagination.
	"shopkeeper_pages_fetched_total": true,
	"shopkeeper_records_total":       true,

	// Installation.
	"shopkeeper_token_exchanges_total":    true,
	"shopkeeper_rejected_callbacks_total": true,

	// Callback listener.
	"shopkeeper_callback_requests_total":           true,
	"shopkeeper_callback_request_duration_seconds": true,

	// Recording rules.
	"shopkeeper:api_requests:rate5m":       true,
	"shopkeeper:api_errors:rate5m":         true,
	"shopkeeper:api_throttled:rate5m":      true,
	"shopkeeper:pages_fetched:rate5m":      true,
	"shopkeeper:records:rate5m":            true,
	"shopkeeper:rejected_callbacks:rate5m": true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
