/*
Package verify implements VerifyBlobReference (C6), spec.md §4.6's
algorithm for deciding whether one BlobReference's write-time, read-time,
and live-recomputed integrity all agree.

Verify never panics and never returns an error — every negative outcome
(an unverifiable reference, an absent directory entry, a node RPC failure,
a mismatch) collapses to false, with the cases worth operators' attention
logged at error level and the expected/transient ones at debug. This
mirrors spec.md §7's propagation policy: verification is advisory, not
load-bearing, for its caller (pkg/scrub's batch loop).

# Usage

	ok := verify.Verify(ctx, clusterDirectory, blobReference)
	if !ok {
		// treat as a recoverable negative result, never as an error
	}
*/
package verify
