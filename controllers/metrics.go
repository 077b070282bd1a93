package controllers

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	resolverControllerReconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depresolve_controller_reconcile_total",
			Help: "Number of reconciliations by controller.",
		},
		[]string{"controller"},
	)
	resolverControllerReconcileErrorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depresolve_controller_reconcile_error_total",
			Help: "Number of reconciliation errors by controller.",
		},
		[]string{"controller"},
	)

	resolutionRequestCausesObserved = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "depresolve_resolutionrequest_causes_observed",
			Help: "Number of diagnosable causes found in the last ResolutionRequest reconcile.",
		},
	)

	resolutionRequestAcceptedCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "depresolve_resolutionrequest_accepted_count",
			Help: "Number of identities accepted into the graph in the last ResolutionRequest reconcile.",
		},
	)

	resolutionRequestResolutionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "depresolve_resolutionrequest_resolution_duration_seconds",
			Help:    "Time taken to run a full walk, conflict-resolve, and diagnose pass.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	metrics.Registry.MustRegister(
		resolverControllerReconcileTotal,
		resolverControllerReconcileErrorTotal,
		resolutionRequestCausesObserved,
		resolutionRequestAcceptedCount,
		resolutionRequestResolutionDuration,
	)
}
