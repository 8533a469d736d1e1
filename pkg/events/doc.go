/*
Package events provides an in-memory event broker for SFS's pub/sub messaging.

The events package implements a lightweight event bus for broadcasting
cluster-directory and verification events to interested subscribers. It
supports broadcast-to-all subscriptions with asynchronous, non-blocking
delivery, keeping its publishers (C9, C10) loosely coupled from any
consumer that reacts to them.

# Architecture

	┌──────────────────── EVENT BROKER ────────────────────────┐
	│                                                            │
	│  Publisher → Event Channel (buffer: 100)                  │
	│       ↓                                                    │
	│  Broadcast Loop                                            │
	│       ↓                                                    │
	│  Subscriber Channels (buffer: 50 each)                     │
	│                                                            │
	│  Event Types:                                              │
	│    volume.assigned                       (C9)             │
	│    verify.failed / scrub.completed       (C10)            │
	│    volume.unassigned, node.joined,                         │
	│    node.left, node.down       (defined, not published)     │
	└────────────────────────────────────────────────────────┘

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	go func() {
		for event := range sub {
			switch event.Type {
			case events.EventVerifyFailed:
				handleVerifyFailed(event)
			case events.EventScrubCompleted:
				handleScrubCompleted(event)
			}
		}
	}()

	broker.Publish(&events.Event{
		Type:    events.EventVolumeAssigned,
		Message: "volume vol-0042 assigned to node-3",
		Metadata: map[string]string{
			"volume_id": "vol-0042",
			"node_id":   "node-3",
		},
	})

# Design Patterns

Non-blocking publish: Publish sends to a buffered channel and returns
immediately; a full subscriber buffer skips that subscriber rather than
blocking the broadcast loop. This trades guaranteed delivery for throughput —
acceptable here because every event restates state that has an independent,
authoritative source (the consensus log, the metadata store) to reconcile
against; events are a notification shortcut, not the record of truth.

# Integration Points

pkg/placement publishes volume.assigned; pkg/scrub publishes verify.failed
and scrub.completed. cmd/sfsd creates the broker and hands it to both. No
package in this module subscribes to the broker.
*/
package events
