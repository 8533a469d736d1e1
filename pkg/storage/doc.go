/*
Package storage provides BoltDB-backed persistence for the cluster state that
ConsensusLog (C8) replicates: node registrations, ServiceDef volume-placement
records, declared volume capacity, and the cluster CA.

# Architecture

	┌──────────────────── BOLTDB STORAGE ──────────────────────┐
	│  BoltStore                                                │
	│  - File: <dataDir>/sfs.db                                 │
	│  - Format: B+tree with MVCC                               │
	│  - Transactions: ACID with fsync                          │
	│                                                            │
	│  Buckets                                                   │
	│    nodes         (Node ID)                                │
	│    service_defs  (Volume ID)                              │
	│    volumes       (Volume ID)                              │
	│    ca            (fixed key)                              │
	└────────────────────────────────────────────────────────────┘

# Buckets

  - nodes: cluster membership, written by ConsensusLog on join/leave and by
    NodeHealth (C11) status transitions.
  - service_defs: the volume-to-node placement record; ConsensusLog is the
    only writer, ClusterDirectory (C3) the reader.
  - volumes: declared byte capacity per volume, read by Placement (C9).
  - ca: the cluster's root CA certificate and encrypted root key, a single
    fixed-key entry.

# Usage

	store, err := storage.NewBoltStore("/var/lib/sfs/node-1")
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	node := &types.Node{ID: "node-abc123", Role: types.NodeRoleVolume, Status: types.NodeStatusReady}
	err = store.CreateNode(node)
	nodes, err := store.ListNodes()

	def := &types.ServiceDef{VolumeID: "vol-1", PrimaryNodeID: "node-abc123"}
	err = store.CreateServiceDef(def)

	caData := []byte("PEM-encoded CA cert and encrypted key")
	err = store.SaveCA(caData)

# Design Patterns

Upsert: Create and Update share the same db.Put call — no separate exists
check. Deletes are idempotent: removing an absent key is not an error.
Lists are full bucket scans via ForEach, deserialized to a slice; at cluster
scale (hundreds of nodes, thousands of volumes) this stays well under a
millisecond per thousand entries.

# Integration Points

  - pkg/consensus: Raft FSM applies node and ServiceDef writes here.
  - pkg/directory: ClusterDirectory refresh reads ServiceDefs and nodes.
  - pkg/placement: reads nodes, volumes and ServiceDefs for candidate
    selection; declared capacity is not part of the score.
  - pkg/security: stores the encrypted CA.
  - pkg/types: all entity definitions.

# Security

The database file carries no encryption of its own beyond the CA's root key,
which pkg/security encrypts before SaveCA is called; rely on disk permissions
(0600 file, 0700 directory) and OS-level disk encryption for the rest.
*/
package storage
