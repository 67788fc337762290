package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	firedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_broadcasts_fired_total", Help: "Scheduled broadcasts whose action ran",
	})
	missedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_broadcasts_missed_total", Help: "Scheduled broadcasts skipped as too late",
	})
	actionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_action_errors_total", Help: "Scheduled actions that returned an error",
	})
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "scheduler_tick_duration_seconds", Help: "Scheduler tick duration",
		Buckets: prometheus.DefBuckets,
	})
)
