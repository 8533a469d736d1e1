/*
Package metrics provides Prometheus metrics collection and exposition for SFS.

The metrics package defines and registers SFS metrics using the Prometheus
client library, providing observability into cluster directory health,
metadata store availability, blob verification outcomes, and placement and
scrub activity. Metrics are exposed via an HTTP endpoint for scraping by
Prometheus servers.

# Metrics Catalog

Cluster Metrics:

sfs_nodes_total{role, status} (Gauge) — nodes by role (manager/volume) and
status (ready/down/unknown).

sfs_volumes_total (Gauge) — volumes known to the cluster directory.

Raft Metrics:

sfs_raft_is_leader (Gauge), sfs_raft_peers_total (Gauge),
sfs_raft_applied_index (Gauge), sfs_raft_apply_duration_seconds (Histogram).

AdminHTTP Metrics:

sfs_api_requests_total{route, status} (Counter),
sfs_api_request_duration_seconds{route} (Histogram).

MetadataStore Metrics:

sfs_metastore_request_duration_seconds{operation} (Histogram),
sfs_metastore_requests_total{operation, outcome} (Counter),
sfs_metastore_green (Gauge) — 1 when the ES cluster health is green.

ClusterDirectory Metrics:

sfs_directory_lookups_total{outcome} (Counter),
sfs_directory_refresh_duration_seconds (Histogram).

VerifyBlobReference Metrics:

sfs_verify_total{outcome} (Counter) where outcome is one of
ok/failed/unverifiable/error, sfs_verify_duration_seconds (Histogram).

Placement Metrics:

sfs_placement_duration_seconds (Histogram),
sfs_placement_candidates_total (Counter).

Scrub/Repair Metrics:

sfs_scrub_cycles_total (Counter), sfs_scrub_duration_seconds (Histogram),
sfs_scrub_references_checked_total{result} (Counter).

NodeHealth Metrics:

sfs_node_health_checks_total{result} (Counter).

# Usage

	timer := metrics.NewTimer()
	_, _, err := store.Execute(ctx, do)
	timer.ObserveDurationVec(metrics.MetastoreRequestDuration, "search")
	if err != nil {
		metrics.MetastoreRequestsTotal.WithLabelValues("search", "error").Inc()
	} else {
		metrics.MetastoreRequestsTotal.WithLabelValues("search", "ok").Inc()
	}

	http.Handle("/metrics", metrics.Handler())

# Design Patterns

All metrics are registered in init() via MustRegister, matching the package's
"declare at package level, no runtime registration" convention. Labels are
kept low-cardinality (role, status, outcome, operation) — account, container,
and object identifiers belong in logs, never in a metric label.

# Integration Points

Collector samples pkg/consensus and pkg/directory into the node, volume and
Raft gauges; pkg/placement, pkg/scrub and pkg/health record their own
metrics; cmd/sfsd feeds sfs_log_events_total from pkg/log's hook; pkg/api
serves the /metrics route via Handler(). The metadata-store, directory
lookup/refresh, verify, admin-HTTP request and Raft apply-duration metrics
are registered, but no package in this module records them.
*/
package metrics
