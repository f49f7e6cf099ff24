package httptransport

import "expvar"

var (
	metricSimulationInitTotal  = expvar.NewInt("simulation_init_total")
	metricSimulationInitErrors = expvar.NewInt("simulation_init_errors_total")

	metricSimulationStepTotal  = expvar.NewInt("simulation_step_total")
	metricSimulationStepErrors = expvar.NewInt("simulation_step_errors_total")

	recordQueryTotal       = expvar.NewInt("record_query_total")
	recordQueryErrorsTotal = expvar.NewInt("record_query_errors_total")
	recordQueryLastMS      = expvar.NewInt("record_query_last_ms")
)
