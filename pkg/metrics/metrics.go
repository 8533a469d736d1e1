package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cluster metrics
	NodesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sfs_nodes_total",
			Help: "Total number of nodes by role and status",
		},
		[]string{"role", "status"},
	)

	VolumesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sfs_volumes_total",
			Help: "Total number of volumes known to the cluster directory",
		},
	)

	// Raft metrics
	RaftLeader = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sfs_raft_is_leader",
			Help: "Whether this node is the Raft leader (1 = leader, 0 = follower)",
		},
	)

	RaftPeers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sfs_raft_peers_total",
			Help: "Total number of Raft peers in the cluster",
		},
	)

	RaftAppliedIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sfs_raft_applied_index",
			Help: "Last applied Raft log index",
		},
	)

	RaftApplyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sfs_raft_apply_duration_seconds",
			Help:    "Time taken to apply a Raft log entry in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// AdminHTTP metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfs_api_requests_total",
			Help: "Total number of admin HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sfs_api_request_duration_seconds",
			Help:    "Admin HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// MetadataStore (C1) metrics
	MetastoreRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sfs_metastore_request_duration_seconds",
			Help:    "Time taken for a metadata store request in seconds, by operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	MetastoreRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfs_metastore_requests_total",
			Help: "Total number of metadata store requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	MetastoreGreen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sfs_metastore_green",
			Help: "Whether the metadata store cluster is reporting a green health status (1 = green)",
		},
	)

	// ClusterDirectory (C3) metrics
	DirectoryLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfs_directory_lookups_total",
			Help: "Total number of volume-to-node directory lookups by outcome",
		},
		[]string{"outcome"},
	)

	DirectoryRefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sfs_directory_refresh_duration_seconds",
			Help:    "Time taken to rebuild the volume-to-node directory snapshot in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// VerifyBlobReference (C6) metrics
	VerifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfs_verify_total",
			Help: "Total number of blob reference verifications by outcome",
		},
		[]string{"outcome"},
	)

	VerifyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sfs_verify_duration_seconds",
			Help:    "Time taken to verify a single blob reference in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Placement (C9) metrics
	PlacementDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sfs_placement_duration_seconds",
			Help:    "Time taken to pick placement candidates in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PlacementCandidatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sfs_placement_candidates_total",
			Help: "Total number of placement candidates returned",
		},
	)

	// Scrub/Repair (C10) metrics
	ScrubCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sfs_scrub_cycles_total",
			Help: "Total number of scrub cycles completed",
		},
	)

	ScrubDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sfs_scrub_duration_seconds",
			Help:    "Time taken for a scrub cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ScrubReferencesChecked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfs_scrub_references_checked_total",
			Help: "Total number of blob references examined during scrub, by result",
		},
		[]string{"result"},
	)

	// NodeHealth (C11) metrics
	NodeHealthChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfs_node_health_checks_total",
			Help: "Total number of node liveness checks by result",
		},
		[]string{"result"},
	)

	// LogEventsTotal counts warn/error-level log lines, fed by pkg/log's
	// zerolog hook. Lets an operator see error-rate trends on the same
	// dashboard as the rest of these metrics, without needing a log
	// aggregator.
	LogEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfs_log_events_total",
			Help: "Total number of warn/error log events by level",
		},
		[]string{"level"},
	)
)

func init() {
	prometheus.MustRegister(NodesTotal)
	prometheus.MustRegister(VolumesTotal)
	prometheus.MustRegister(RaftLeader)
	prometheus.MustRegister(RaftPeers)
	prometheus.MustRegister(RaftAppliedIndex)
	prometheus.MustRegister(RaftApplyDuration)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(MetastoreRequestDuration)
	prometheus.MustRegister(MetastoreRequestsTotal)
	prometheus.MustRegister(MetastoreGreen)
	prometheus.MustRegister(DirectoryLookupsTotal)
	prometheus.MustRegister(DirectoryRefreshDuration)
	prometheus.MustRegister(VerifyTotal)
	prometheus.MustRegister(VerifyDuration)
	prometheus.MustRegister(PlacementDuration)
	prometheus.MustRegister(PlacementCandidatesTotal)
	prometheus.MustRegister(ScrubCyclesTotal)
	prometheus.MustRegister(ScrubDuration)
	prometheus.MustRegister(ScrubReferencesChecked)
	prometheus.MustRegister(NodeHealthChecksTotal)
	prometheus.MustRegister(LogEventsTotal)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
