package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

func PagesRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Pages Fetched").
		Description("Collection pages fetched per second, by resource").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`shopkeeper:pages_fetched:rate5m`, "{{resource}}", "A")).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

func RecordsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Records Decoded").
		Description("Records decoded from collection pages per second, by resource").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`shopkeeper:records:rate5m`, "{{resource}}", "A")).
		Unit("cps").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
