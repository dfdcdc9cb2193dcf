package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/donaldgifford/shopkeeper/tools/dashgen/rules"
	"github.com/donaldgifford/shopkeeper/tools/dashgen/validate"
)

var known = map[string]bool{
	"requests_total":   true,
	"duration_seconds": true,
}

func TestExpr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		expr    string
		wantErr string
	}{
		{name: "counter rate", expr: `sum(rate(requests_total[5m]))`},
		{name: "histogram bucket", expr: `histogram_quantile(0.95, sum(rate(duration_seconds_bucket[5m])) by (le))`},
		{name: "histogram count", expr: `rate(duration_seconds_count[1m])`},
		{name: "arithmetic", expr: `requests_total / requests_total * 100`},
		{name: "unknown metric", expr: `rate(missing_total[5m])`, wantErr: "unknown metric missing_total"},
		{name: "unknown histogram", expr: `duration_bucket`, wantErr: "unknown metric duration_bucket"},
		{name: "syntax error", expr: `sum(rate(requests_total[5m])`, wantErr: "q:"},
		{name: "empty", expr: "  ", wantErr: "empty expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := validate.Expr("q", tt.expr, known)
			if tt.wantErr == "" {
				assert.True(t, res.Ok(), "unexpected errors: %v", res.Errors)
				return
			}
			assert.False(t, res.Ok())
			assert.Contains(t, res.Errors[0], tt.wantErr)
		})
	}
}

func TestDashboard(t *testing.T) {
	t.Parallel()

	dash := map[string]any{
		"panels": []any{
			map[string]any{
				"type":  "row",
				"title": "Row",
				"panels": []any{
					map[string]any{
						"type":    "timeseries",
						"title":   "ok",
						"targets": []any{map[string]any{"refId": "A", "expr": "requests_total"}},
					},
					map[string]any{
						"type":    "timeseries",
						"title":   "bad",
						"targets": []any{map[string]any{"refId": "B", "expr": "nope_total"}},
					},
				},
			},
			map[string]any{"type": "stat", "title": "empty"},
		},
	}

	res := validate.Dashboard(dash, known)
	assert.Equal(t, []string{`panel "bad" query B: unknown metric nope_total`}, res.Errors)
	assert.Equal(t, []string{`panel "empty" has no queries`}, res.Warnings)
}

func TestDashboard_Unmarshalable(t *testing.T) {
	t.Parallel()
	res := validate.Dashboard(make(chan int), known)
	assert.False(t, res.Ok())
}

func TestRules(t *testing.T) {
	t.Parallel()

	cr := rules.PrometheusRule{
		Spec: rules.PrometheusRuleSpec{
			Groups: []rules.RuleGroup{{
				Name: "g",
				Rules: []rules.Rule{
					{Record: "job:requests:rate5m", Expr: `sum(rate(requests_total[5m]))`},
					{Alert: "Busy", Expr: `job:requests:rate5m > 10`, Labels: map[string]string{"severity": "info"}},
					{Alert: "Quiet", Expr: `job:requests:rate5m < 1`},
					{Expr: `requests_total`},
				},
			}},
		},
	}

	res := validate.Rules(cr, known)
	assert.Equal(t, []string{`group "g" has a rule with neither record nor alert`}, res.Errors)
	assert.Equal(t, []string{"alert Quiet has no severity label"}, res.Warnings)
}

func TestKnown(t *testing.T) {
	t.Parallel()
	assert.True(t, validate.Known("duration_seconds_sum", known))
	assert.True(t, validate.Known("requests_total", known))
	assert.False(t, validate.Known("duration", known))
}
