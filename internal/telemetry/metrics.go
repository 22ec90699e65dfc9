package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every Prometheus collector the ledger exposes, mirroring
// the shape of internal/observability/metrics.go's Metrics struct but
// scoped to what a chain store actually does: appends, reads, and
// validation failures — no HTTP, billing or job-queue metrics, since this
// is a library with no such surfaces.
type Metrics struct {
	AppendDuration     prometheus.Histogram
	AppendCount        prometheus.Counter
	AppendFailureCount prometheus.Counter
	BlockReadDuration  prometheus.Histogram
	BlockReadCount     prometheus.Counter
	ValidationFailures prometheus.Counter
	ChainLength        prometheus.Gauge
}

// NewMetrics constructs a Metrics struct and registers every collector with
// reg. Passing prometheus.NewRegistry() (rather than the global
// DefaultRegisterer) keeps multiple Store instances in a test binary from
// colliding on collector names.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AppendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ledgerchain",
			Name:      "append_duration_seconds",
			Help:      "Time to append a block, including Merkle root computation and commit.",
			Buckets:   prometheus.DefBuckets,
		}),
		AppendCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledgerchain",
			Name:      "append_total",
			Help:      "Number of blocks successfully appended.",
		}),
		AppendFailureCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledgerchain",
			Name:      "append_failures_total",
			Help:      "Number of append attempts that failed.",
		}),
		BlockReadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ledgerchain",
			Name:      "block_read_duration_seconds",
			Help:      "Time to re-materialize a block from storage.",
			Buckets:   prometheus.DefBuckets,
		}),
		BlockReadCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledgerchain",
			Name:      "block_reads_total",
			Help:      "Number of blocks read back from storage.",
		}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledgerchain",
			Name:      "validation_failures_total",
			Help:      "Number of chain or record validation failures detected.",
		}),
		ChainLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ledgerchain",
			Name:      "chain_length",
			Help:      "Number of blocks currently committed to the chain.",
		}),
	}

	reg.MustRegister(
		m.AppendDuration, m.AppendCount, m.AppendFailureCount,
		m.BlockReadDuration, m.BlockReadCount, m.ValidationFailures, m.ChainLength,
	)
	return m
}
