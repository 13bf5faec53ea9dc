package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// IndexWriteFailuresTotal counts projections that failed after a
	// committed store mutation (index drift events).
	IndexWriteFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "recipedex",
			Name:      "index_write_failures_total",
			Help:      "Search index projections that failed after a committed store write",
		},
	)

	// ReindexRunsTotal counts full index rebuilds by outcome.
	ReindexRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recipedex",
			Name:      "reindex_runs_total",
			Help:      "Full index rebuilds by status",
		},
		[]string{"status"},
	)

	// SearchRequestsTotal counts executed search queries.
	SearchRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "recipedex",
			Name:      "search_requests_total",
			Help:      "Executed recipe search queries",
		},
	)
)

// RegisterCatalogMetrics registers catalog metrics explicitly (no init()).
func RegisterCatalogMetrics() {
	prometheus.MustRegister(IndexWriteFailuresTotal)
	prometheus.MustRegister(ReindexRunsTotal)
	prometheus.MustRegister(SearchRequestsTotal)
}
