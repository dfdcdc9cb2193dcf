package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/bargauge"
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// TokenExchanges returns a timeseries panel showing installation attempts
// by result.
func TokenExchanges() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Token Exchanges").
		Description("Installation attempts per hour, by result").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(increase(shopkeeper_token_exchanges_total{`+Job+`}[1h])) by (result)`,
			"{{result}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("sum")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}

// RejectedByProperty returns a bar gauge breaking rejected callbacks down by
// the check that failed.
func RejectedByProperty() *bargauge.PanelBuilder {
	return bargauge.NewPanelBuilder().
		Title("Rejections by Check").
		Description("Rejected callbacks in the last 24h, by failed property").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(increase(shopkeeper_rejected_callbacks_total{`+Job+`}[24h])) by (property)`,
			"{{property}}", "A",
		)).
		Orientation(common.VizOrientationHorizontal).
		Min(0).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds())
}
