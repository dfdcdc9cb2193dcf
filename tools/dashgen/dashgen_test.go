package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/shopkeeper/tools/dashgen/dashboards"
	"github.com/donaldgifford/shopkeeper/tools/dashgen/rules"
	"github.com/donaldgifford/shopkeeper/tools/dashgen/validate"
)

func TestDefaultConfigValid(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate_EmptyOutputDir(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "", DashboardEnabled: true}
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_NothingEnabled(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "/tmp", DashboardEnabled: false, RulesEnabled: false}
	assert.Error(t, cfg.Validate())
}

func TestBuildOverviewDashboard(t *testing.T) {
	t.Parallel()

	dash, err := dashboards.BuildOverview().Build()
	require.NoError(t, err)

	require.NotNil(t, dash.Uid)
	assert.Equal(t, "shopkeeper-overview", *dash.Uid)

	require.NotNil(t, dash.Title)
	assert.Equal(t, "Shopkeeper Overview", *dash.Title)

	require.NotNil(t, dash.Templating)
	assert.Len(t, dash.Templating.List, 1)
	assert.Equal(t, "datasource", dash.Templating.List[0].Name)

	assert.Len(t, dash.Panels, 5)

	totalPanels := 0
	for _, p := range dash.Panels {
		if p.RowPanel != nil {
			totalPanels += len(p.RowPanel.Panels)
		}
	}
	assert.Equal(t, 14, totalPanels)

	result := validate.Dashboard(dash, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
	assert.Empty(t, result.Warnings, "unexpected warnings: %v", result.Warnings)
}

func TestRecordingRules(t *testing.T) {
	t.Parallel()

	cr := rules.RecordingRules()
	assert.Equal(t, "monitoring.coreos.com/v1", cr.APIVersion)
	assert.Equal(t, "PrometheusRule", cr.Kind)
	assert.Equal(t, "shopkeeper-recording-rules", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "shopkeeper-recording", group.Name)
	require.Len(t, group.Rules, 6)

	for _, rule := range group.Rules {
		assert.True(t, KnownMetrics[rule.Record], "recording rule %s not in KnownMetrics", rule.Record)
		assert.NotEmpty(t, rule.Expr)
	}

	result := validate.Rules(cr, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)

	data, err := yaml.Marshal(cr)
	require.NoError(t, err)
	assert.Contains(t, string(data), "apiVersion: monitoring.coreos.com/v1")
}

func TestAlertRules(t *testing.T) {
	t.Parallel()

	cr := rules.AlertRules()
	assert.Equal(t, "shopkeeper-alerts", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "shopkeeper-alerts", group.Name)

	expectedAlerts := []string{
		"ShopkeeperHighAPIErrorRate",
		"ShopkeeperThrottled",
		"ShopkeeperRateLimiterSaturated",
		"ShopkeeperForgedCallbacks",
		"ShopkeeperTokenExchangeFailures",
	}
	require.Len(t, group.Rules, len(expectedAlerts))
	for i, rule := range group.Rules {
		assert.Equal(t, expectedAlerts[i], rule.Alert)
		assert.NotEmpty(t, rule.Labels["severity"], "alert %s missing severity", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["summary"], "alert %s missing summary", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["description"], "alert %s missing description", rule.Alert)
	}

	result := validate.Rules(cr, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestRunWritesArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.OutputDir = dir
	require.NoError(t, run(cfg, false))

	dash, err := os.ReadFile(filepath.Join(dir, "grafana", "data", "shopkeeper-overview.json"))
	require.NoError(t, err)
	assert.Contains(t, string(dash), `"uid": "shopkeeper-overview"`)

	for _, name := range []string{"shopkeeper-recording-rules.yaml", "shopkeeper-alerts.yaml"} {
		data, err := os.ReadFile(filepath.Join(dir, "prometheus", name))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), generatedHeader), "%s missing header", name)
	}
}

func TestRunValidateOnly(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	cfg := Config{OutputDir: dir, RulesEnabled: true}
	require.NoError(t, run(cfg, true))

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "validate-only run wrote files")
}

func TestBuild_RulesOnly(t *testing.T) {
	t.Parallel()

	artifacts, err := build(Config{OutputDir: "x", RulesEnabled: true})
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, filepath.Join("prometheus", "shopkeeper-recording-rules.yaml"), artifacts[0].path)
}
