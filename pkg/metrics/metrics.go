package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for StoreOperations.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// StoreOperations counts document-store calls by operation and outcome.
var StoreOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "crudgate_store_operations_total",
		Help: "Total number of document store operations",
	},
	[]string{"op", "outcome"},
)

// StoreLatency records how long each document-store call took.
var StoreLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "crudgate_store_operation_duration_seconds",
		Help:    "Latency in seconds of document store operations",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"op"},
)

func init() {
	prometheus.MustRegister(StoreOperations, StoreLatency)
}
