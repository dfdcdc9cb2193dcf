// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/shopkeeper/tools/dashgen/panels"
)

// BuildOverview constructs the Shopkeeper Overview dashboard.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Shopkeeper Overview").
		Uid("shopkeeper-overview").
		Tags([]string{"shopkeeper", "shopify"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.ListenerUpStat()).
		WithPanel(panels.InstallsStat()).
		WithPanel(panels.RejectedStat()).
		WithPanel(panels.UptimeStat()))

	b.WithRow(dashboard.NewRowBuilder("Admin API").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()).
		WithPanel(panels.RateLimitWait()))

	b.WithRow(dashboard.NewRowBuilder("Pagination").
		WithPanel(panels.PagesRate()).
		WithPanel(panels.RecordsRate()))

	b.WithRow(dashboard.NewRowBuilder("Installation").
		WithPanel(panels.TokenExchanges()).
		WithPanel(panels.RejectedByProperty()))

	b.WithRow(dashboard.NewRowBuilder("Callback Listener").
		WithPanel(panels.CallbackRequests()).
		WithPanel(panels.CallbackLatency()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
