package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/idlease/idleased/pkg/server/leasepool"
)

type metrics struct {
	acquires        prometheus.Counter
	acquireFailures prometheus.Counter
	heartbeats      *prometheus.CounterVec
}

func newMetrics(registry *prometheus.Registry, allocator *leasepool.Allocator) *metrics {
	m := &metrics{
		acquires: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "idlease_acquires_total",
			Help: "Leases issued.",
		}),
		acquireFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "idlease_acquire_failures_total",
			Help: "Acquires that failed because the pool was exhausted.",
		}),
		heartbeats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idlease_heartbeats_total",
			Help: "Heartbeats by result.",
		}, []string{"result"}),
	}
	registry.MustRegister(m.acquires, m.acquireFailures, m.heartbeats)

	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "idlease_available_ids",
		Help: "Ids currently in the available queue.",
	}, func() float64 {
		return float64(allocator.Stats().Available)
	}))
	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "idlease_leased_ids",
		Help: "Ids currently under lease.",
	}, func() float64 {
		return float64(allocator.Stats().Leased)
	}))
	registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "idlease_reclaimed_total",
		Help: "Lapsed leases reclaimed, by sweep or by heartbeat.",
	}, func() float64 {
		return float64(allocator.Stats().Reclaimed)
	}))

	return m
}
