package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AgentRuns counts completed agent runs by terminal status
	AgentRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alpha_agent_runs_total",
			Help: "Total number of agent runs",
		},
		[]string{"agent", "status"}, // status: success|failed|skipped
	)

	// AgentDuration observes agent run duration
	AgentDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alpha_agent_run_duration_seconds",
			Help:    "Agent run duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"agent"},
	)

	// AgentItems counts processed and failed items per agent
	AgentItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alpha_agent_items_total",
			Help: "Total items handled by agent runs",
		},
		[]string{"agent", "outcome"}, // outcome: processed|failed
	)

	// ModelCalls counts language model invocations
	ModelCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alpha_model_calls_total",
			Help: "Total number of language model calls",
		},
		[]string{"agent", "status"}, // status: success|error
	)

	// SourceFetches counts external data source fetches
	SourceFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alpha_source_fetches_total",
			Help: "Total number of data source fetch attempts",
		},
		[]string{"source", "status"}, // status: success|error|skipped
	)
)

func init() {
	prometheus.MustRegister(
		AgentRuns,
		AgentDuration,
		AgentItems,
		ModelCalls,
		SourceFetches,
	)
}

// Handler returns the HTTP handler serving the metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
