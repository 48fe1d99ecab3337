package capsule

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	capsuleBuildCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphcell_capsule_builds_total",
		Help: "Total number of capsule builds performed across all containers.",
	})
	capsuleDisposeCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphcell_capsule_disposals_total",
		Help: "Total number of capsules garbage collected or disposed.",
	})
	containerReadHitCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphcell_container_read_fast_path_total",
		Help: "Container reads fully served under a shared read transaction.",
	})
	containerReadMissCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphcell_container_read_slow_path_total",
		Help: "Container reads that fell back to a write transaction to initialize capsules.",
	})
)
