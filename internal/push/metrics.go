package push

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	subscriptionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "push_subscriptions",
		Help: "Subscriptions currently registered.",
	})
	deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "push_deliveries_total",
		Help: "Delivery attempts by result.",
	}, []string{"result"})
	broadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "push_broadcasts_total",
		Help: "Broadcasts dispatched.",
	})
	broadcastDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "push_broadcast_duration_seconds",
		Help:    "Time from fan-out start until every delivery settled.",
		Buckets: prometheus.DefBuckets,
	})
)
