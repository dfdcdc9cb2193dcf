package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// CallbackRequests returns a timeseries panel showing listener requests by
// status.
func CallbackRequests() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Callback Requests").
		Description("Requests served by the callback listener, by status").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(rate(shopkeeper_callback_requests_total{`+Job+`}[5m])) by (status)`,
			"{{status}}", "A",
		)).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// CallbackLatency returns a timeseries panel showing p95 callback handling
// time, which includes the token exchange.
func CallbackLatency() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Callback Latency").
		Description("p95 callback duration including the token exchange").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			Quantile(0.95, "shopkeeper_callback_request_duration_seconds", "path"),
			"p95 {{path}}", "A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
