// Package metrics defines the Prometheus collectors exported by clinicbook.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	storageOps     *prometheus.CounterVec
	recomputations prometheus.Counter
	rpcRequests    *prometheus.CounterVec
	rpcDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		storageOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinicbook_storage_operations_total",
			Help: "Persistence operations by operation and result.",
		}, []string{"op", "result"}),
		recomputations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clinicbook_ledger_recomputations_total",
			Help: "Client ledger recomputations.",
		}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinicbook_rpc_requests_total",
			Help: "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clinicbook_rpc_duration_seconds",
			Help:    "RPC latency by procedure.",
			Buckets: prometheus.DefBuckets,
		}, []string{"procedure"}),
	}
	reg.MustRegister(m.storageOps, m.recomputations, m.rpcRequests, m.rpcDuration)
	return m
}

// StorageOp records the outcome of one persistence operation.
func (m *Metrics) StorageOp(op string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.storageOps.WithLabelValues(op, result).Inc()
}

// Recomputed records n ledger recomputations.
func (m *Metrics) Recomputed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.recomputations.Add(float64(n))
}

// RPC records one finished call.
func (m *Metrics) RPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}
