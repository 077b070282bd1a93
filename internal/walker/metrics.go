package walker

import "github.com/prometheus/client_golang/prometheus"

var (
	lookupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depresolve_walker_lookup_total",
			Help: "Number of find-library lookups issued, by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	lookupDedupedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "depresolve_walker_lookup_deduped_total",
			Help: "Number of find-library lookups served from the in-flight single-flight cache.",
		},
	)

	lookupRetryTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "depresolve_walker_lookup_retry_total",
			Help: "Number of find-library lookups that were retried once after a transient error.",
		},
	)

	nodesWalkedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "depresolve_walker_nodes_walked_total",
			Help: "Number of graph nodes produced by the walker, across all walks.",
		},
	)

	cyclesDetectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "depresolve_walker_cycles_detected_total",
			Help: "Number of cycle-disposition nodes marked during the walk.",
		},
	)

	walkDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "depresolve_walker_walk_duration_seconds",
			Help:    "Time taken to walk a full dependency tree.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// MustRegister registers the walker's metrics with reg. Call once at
// process startup (mirrors the teacher's controllers.metrics registration
// pattern, adapted from sigs.k8s.io/controller-runtime/pkg/metrics).
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		lookupTotal,
		lookupDedupedTotal,
		lookupRetryTotal,
		nodesWalkedTotal,
		cyclesDetectedTotal,
		walkDuration,
	)
}
