package play

import "expvar"

var (
	metricGamesStartedTotal    = expvar.NewInt("games_started_total")
	metricGamesFinishedTotal   = expvar.NewInt("games_finished_total")
	metricGamesAbandonedTotal  = expvar.NewInt("games_abandoned_total")
	metricRoundsPlayedTotal    = expvar.NewInt("rounds_played_total")
	metricSessionsEvictedTotal = expvar.NewInt("sessions_evicted_total")
	metricExportEnqueueFailed  = expvar.NewInt("export_enqueue_failed_total")
	metricSessionsLive         = expvar.NewInt("sessions_live")
)
