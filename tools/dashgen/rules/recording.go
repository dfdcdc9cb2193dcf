package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name:   "shopkeeper-recording-rules",
			Labels: ruleLabels(),
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "shopkeeper-recording",
					Rules: []Rule{
						{
							Record: "shopkeeper:api_requests:rate5m",
							Expr:   `sum(rate(shopkeeper_api_requests_total[5m]))`,
						},
						{
							Record: "shopkeeper:api_errors:rate5m",
							Expr:   `sum(rate(shopkeeper_api_requests_total{status=~"5..|error"}[5m]))`,
						},
						{
							Record: "shopkeeper:api_throttled:rate5m",
							Expr:   `sum(rate(shopkeeper_api_requests_total{status="429"}[5m]))`,
						},
						{
							Record: "shopkeeper:pages_fetched:rate5m",
							Expr:   `sum(rate(shopkeeper_pages_fetched_total[5m])) by (resource)`,
						},
						{
							Record: "shopkeeper:records:rate5m",
							Expr:   `sum(rate(shopkeeper_records_total[5m])) by (resource)`,
						},
						{
							Record: "shopkeeper:rejected_callbacks:rate5m",
							Expr:   `sum(rate(shopkeeper_rejected_callbacks_total[5m])) by (property)`,
						},
					},
				},
			},
		},
	}
}
