/*
Package health provides liveness probing for peer node endpoints (C11
NodeHealth).

This package implements three checker types — HTTP, TCP, Exec — behind a
common Checker interface. NodeHealth uses TCPChecker to dial each
NodeRecord's RPC endpoint on an interval; consecutive-failure and
consecutive-success counters gate transitions between NodeStatusReady and
NodeStatusDown, which ConsensusLog (C8) applies and Placement (C9) filters
on.

# Architecture

	┌─────────────────────────────────────────────────────────────┐
	│                     Checker Interface                        │
	│  • Check(ctx) Result                                         │
	│  • Type() CheckType                                          │
	└────────┬─────────────────────────────────────────────────────┘
	         │
	    ┌────┴──────┬──────────┐
	    ▼           ▼          ▼
	┌────────┐  ┌───────┐  ┌────────┐
	│  HTTP  │  │  TCP  │  │  Exec  │
	│Checker │  │Checker│  │Checker │
	└────────┘  └───────┘  └────────┘
	     │          │           │
	     ▼          ▼           ▼
	  GET /     Connect     Run local
	  /health    :port      command

# Flow

 1. NodeHealth creates a TCPChecker for each known node endpoint.
 2. Wait for Config.StartPeriod (grace period for a just-joined node).
 3. Every Config.Interval: run Check(ctx).
 4. On failure: increment ConsecutiveFailures; at Config.Retries, Status.Healthy flips false.
 5. On success: reset ConsecutiveFailures, flip Status.Healthy true immediately.
 6. A Status flip is committed back through ConsensusLog (C8) as a node
    status upsert; no event is published on the event broker (C12).

# Usage

	checker := health.NewTCPChecker(node.Endpoint).WithTimeout(2 * time.Second)
	status := health.NewStatus()
	cfg := health.Config{Interval: 5 * time.Second, Retries: 3}

	ticker := time.NewTicker(cfg.Interval)
	for range ticker.C {
		result := checker.Check(ctx)
		status.Update(result, cfg)
	}

# Design Notes

Each checker type returns a Result carrying Healthy, a human-readable
Message, and timing — never an error — so a probing loop never needs special
handling for a checker that itself failed to run. Exec checks run a local
command only (e.g. a disk-space probe on a volume node); they do not reach
into any other process, since SFS has no container runtime to exec into.
*/
package health
