package rules

// AlertRules returns a PrometheusRule CR containing alert rules for the
// shopctl callback listener and its Admin API client.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name:   "shopkeeper-alerts",
			Labels: ruleLabels(),
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "shopkeeper-alerts",
					Rules: []Rule{
						{
							Alert: "ShopkeeperHighAPIErrorRate",
							Expr:  `shopkeeper:api_errors:rate5m / shopkeeper:api_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High Admin API failure rate",
								"description": "More than 5% of Admin API calls failed with a 5xx or got no answer over the last 5 minutes.",
							},
						},
						{
							Alert: "ShopkeeperThrottled",
							Expr:  `shopkeeper:api_throttled:rate5m > 0`,
							For:   "10m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Admin API calls are being throttled",
								"description": "Shopify has answered 429 for 10 minutes. Lower rate_limit.per_second or raise pagination.page_delay.",
							},
						},
						{
							Alert: "ShopkeeperRateLimiterSaturated",
							Expr:  `histogram_quantile(0.95, sum(rate(shopkeeper_rate_limit_wait_seconds_bucket[5m])) by (le)) > 5`,
							For:   "10m",
							Labels: map[string]string{
								"severity": "info",
							},
							Annotations: map[string]string{
								"summary":     "Requests wait on the client-side rate limiter",
								"description": "The p95 limiter wait has been above 5s for 10 minutes.",
							},
						},
						{
							Alert: "ShopkeeperForgedCallbacks",
							Expr:  `sum(rate(shopkeeper_rejected_callbacks_total{property="hmac"}[5m])) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Callback with an invalid signature received",
								"description": "The callback listener rejected a request whose HMAC did not verify. Someone may be forging installations.",
							},
						},
						{
							Alert: "ShopkeeperTokenExchangeFailures",
							Expr:  `increase(shopkeeper_token_exchanges_total{result=~"transport_error|malformed_response"}[15m]) > 0`,
							For:   "1m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Token exchange failed after a valid callback",
								"description": "A verified installation could not exchange its authorization code.",
							},
						},
					},
				},
			},
		},
	}
}
