package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolvesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartmap",
			Subsystem: "cache",
			Name:      "resolves_total",
			Help:      "Entity resolutions by kind and the tier that answered.",
		},
		[]string{"kind", "tier"},
	)

	resolveFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartmap",
			Subsystem: "cache",
			Name:      "resolve_failures_total",
			Help:      "Resolutions that ended in not-found or a network error.",
		},
		[]string{"kind", "reason"},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartmap",
			Subsystem: "cache",
			Name:      "notifications_total",
			Help:      "Change notifications dispatched to listeners.",
		},
		[]string{"change"},
	)
)

const (
	tierLive    = "live"
	tierStore   = "store"
	tierNetwork = "network"
)
