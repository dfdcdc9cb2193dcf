package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
)

// ListenerUpStat returns a stat panel showing whether the callback listener
// is being scraped.
func ListenerUpStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Listener").
		Description("Callback listener scrape status (1 = up, 0 = down)").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`up{`+Job+`}`, "", "A")).
		Thresholds(ThresholdsRedGreen(1)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone).
		TextMode(common.BigValueTextModeValue)
}

// InstallsStat returns a stat panel counting successful installations in
// the last 24 hours.
func InstallsStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Installs (24h)").
		Description("Authorization codes exchanged for an access token").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			`sum(increase(shopkeeper_token_exchanges_total{`+Job+`, result="success"}[24h]))`,
			"", "A",
		)).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeArea)
}

// RejectedStat returns a stat panel counting callbacks that failed
// verification in the last 24 hours. Any value is suspicious.
func RejectedStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Rejected Callbacks (24h)").
		Description("Callbacks that failed the HMAC, state or shop checks").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			`sum(increase(shopkeeper_rejected_callbacks_total{`+Job+`}[24h]))`,
			"", "A",
		)).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone)
}

// UptimeStat returns a stat panel showing process uptime.
func UptimeStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Uptime").
		Description("Time since the listener process started").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`time() - process_start_time_seconds{`+Job+`}`, "", "A")).
		Unit("s").
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeNone)
}
