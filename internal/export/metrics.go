package export

import "expvar"

var (
	metricExportQueuedTotal       = expvar.NewInt("export_queued_total")
	metricExportDroppedTotal      = expvar.NewInt("export_dropped_total")
	metricExportRetryTotal        = expvar.NewInt("export_retry_total")
	metricExportRetryDroppedTotal = expvar.NewInt("export_retry_dropped_total")
	metricExportSentTotal         = expvar.NewInt("export_sent_total")
	metricExportFailedTotal       = expvar.NewInt("export_failed_total")
	metricExportQueueLen          = expvar.NewInt("export_queue_len")
)
