package client

import (
	"hash/fnv"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartmap_client",
			Name:      "jobs_enqueued_total",
			Help:      "Jobs accepted into the shard executor.",
		},
		[]string{"shard"},
	)

	jobsFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "smartmap_client",
			Name:      "jobs_failed_total",
			Help:      "Async jobs that failed after exhausting retries.",
		},
	)
)

// shardLabel buckets keys into a bounded label set to keep metric
// cardinality down.
func shardLabel(key string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return strconv.Itoa(int(h.Sum32() % 32))
}
