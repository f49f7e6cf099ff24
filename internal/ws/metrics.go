package ws

import "expvar"

var (
	metricWSConnectionsTotal  = expvar.NewInt("ws_connections_total")
	metricWSConnectionsActive = expvar.NewInt("ws_connections_active")
	metricWSMessagesTotal     = expvar.NewInt("ws_messages_total")
	metricWSErrorsTotal       = expvar.NewInt("ws_errors_total")
	metricWSDroppedTotal      = expvar.NewInt("ws_dropped_total")
)
