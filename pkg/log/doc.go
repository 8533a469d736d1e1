/*
Package log provides structured logging for SFS using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers, configurable log levels, and helper
functions for common logging patterns. All logs include timestamps and
support filtering by severity level for production debugging.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("metastore")                │          │
	│  │  - WithNodeID("node-abc123")                │          │
	│  │  - WithVolumeID("vol-0042")                 │          │
	│  │  - WithAccountID("AUTH_acct")                │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Log Output                       │          │
	│  │                                              │          │
	│  │  JSON Format:                               │          │
	│  │  {                                           │          │
	│  │    "level": "info",                         │          │
	│  │    "component": "verify",                   │          │
	│  │    "time": "2026-07-29T10:30:00Z",          │          │
	│  │    "message": "blob reference verified"      │          │
	│  │  }                                           │          │
	│  │                                              │          │
	│  │  Console Format:                            │          │
	│  │  2026-07-29T10:30:00Z INF blob reference verified component=verify │ │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Core Components

Global Logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init()
  - Accessible from all SFS packages
  - Thread-safe concurrent writes

Log Levels:
  - Debug: Detailed debugging information
  - Info: General informational messages
  - Warn: Warning messages (potential issues)
  - Error: Error messages (operation failed)
  - Fatal: Critical errors (process exits)

Configuration:
  - Level: Filter messages below threshold
  - JSONOutput: JSON vs human-readable console
  - Output: io.Writer for log destination (stdout, file)

Context Loggers:
  - WithComponent: Add component name to all logs
  - WithNodeID: Add node ID context
  - WithVolumeID: Add volume ID context
  - WithAccountID: Add account ID context

# Usage

Initializing the Logger:

	import "github.com/cuemby/sfs/pkg/log"

	// JSON output (production)
	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

	// Console output (development)
	log.Init(log.Config{
		Level:      log.DebugLevel,
		JSONOutput: false,
		Output:     os.Stdout,
	})

Simple Logging:

	log.Info("metadata store entered green state")
	log.Debug("checksum round-trip to node starting")
	log.Warn("node heartbeat missed")
	log.Error("failed to reach elasticsearch cluster")
	log.Fatal("cannot start without a functioning consensus log") // exits process

Structured Logging:

	log.Logger.Info().
		Str("volume_id", "vol-0042").
		Str("node_id", "node-3").
		Msg("volume assigned")

	log.Logger.Error().
		Err(err).
		Str("node_id", "node-abc").
		Msg("checksum RPC failed")

Component Loggers:

	verifyLog := log.WithComponent("verify")
	verifyLog.Info().Msg("starting scrub pass")
	verifyLog.Debug().Str("volume_id", "vol-0042").Msg("verifying blob reference")

	// Multiple context fields
	refLog := log.WithComponent("scrub").
		With().Str("node_id", "node-abc").
		Str("volume_id", "vol-0042").Logger()
	refLog.Info().Msg("starting reference check")
	refLog.Error().Err(err).Msg("reference check failed")

# Integration Points

This package integrates with:

  - pkg/consensus: logs bootstrap/join and failed service_def mirror writes
  - pkg/placement: logs failed placement cycles, picks and assignments
  - pkg/scrub: logs failed scrub passes and index fetches
  - pkg/verify: logs volumes with no service-def, node-resolve failures and checksum RPC errors
  - pkg/metastore: logs start/stop, failed wait-for-green attempts and already-absent index deletes
  - pkg/api: logs failed raft join (add voter) requests

# Design Patterns

Global Logger Pattern:
  - Single package-level Logger instance
  - Initialized once at application start
  - Accessible from all packages without passing
  - Simplifies logging in deeply nested calls

Context Logger Pattern:
  - Create child loggers with context fields
  - Pass context loggers to functions
  - Automatically includes context in all logs

Error Logging Pattern:
  - Always use .Err(err) for error objects
  - Consistent error format across codebase

# Security

Log Content:
  - Never log secrets, certificates, or key material
  - Redact account/container identifiers from third-party sinks where policy requires it
*/
package log
