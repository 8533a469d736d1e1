// Package scrub implements Scrub/Repair (C10): a ticked reconciliation loop
// that walks every object index's versions, segments, and blob references
// and batch-invokes VerifyBlobReference (C6) through a bounded worker pool,
// publishing a scrub.completed event and Prometheus counters. A single
// verification failure never stops the pass, matching the never-raise-from-
// verify propagation policy.
package scrub
