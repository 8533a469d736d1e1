/*
Package envelope implements RequestEnvelope (C7): the serial execution
context every metadata-store and node-RPC call is wrapped in, plus the
absence/retry primitives the rest of the core relies on.

# Executor

Executor models spec.md §5's "single-threaded cooperative execution context
with a background pool for blocking work." Submit dispatches blocking work
(an HTTP round trip, a node RPC) onto its own goroutine and trampolines the
result back onto the owning Executor's loop, so two completions belonging to
the same Executor never run concurrently with each other — callers don't
need their own locking to stay consistent within one context.

# Outcome

Outcome[T] carries the Present/Absent/Failed tri-state spec.md I6 requires:
a benign write conflict (document-already-exists, version-conflict) becomes
Absent, never an error; anything else that actually failed becomes Failed.
pkg/directory's NodeForVolume returns this shape; pkg/metastore.Execute
keeps the same absent-vs-failed split as a (response, ok, error) triple.

# Retry

Retry implements the bounded exponential-backoff loop spec.md §4.1 specifies
for health gating (delayMs = 2^attempt * 100, capped per attempt, 10
attempts by default via DefaultRetryConfig) — pkg/metastore's waitForGreen
uses it; pkg/directory's refresh loop is a plain ticker and does not.

# Usage

	exec := envelope.NewExecutor()
	defer exec.Close()

	envelope.Submit(ctx, exec, func(ctx context.Context) (*types.DigestBlob, error) {
		blob, _, err := node.Checksum(ctx, volumeID, position, nil, nil, types.SHA512)
		return blob, err
	}, func(digest *types.DigestBlob, err error) {
		// runs serially on exec's loop
	})

	err := envelope.Retry(ctx, envelope.DefaultRetryConfig(), func(ctx context.Context) error {
		resp, err := esapi.ClusterHealthRequest{WaitForStatus: "green"}.Do(ctx, client)
		if err != nil {
			return err
		}
		return resp.Body.Close()
	})
*/
package envelope
