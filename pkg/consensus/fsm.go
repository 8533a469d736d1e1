package consensus

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/cuemby/sfs/pkg/storage"
	"github.com/cuemby/sfs/pkg/types"
	"github.com/hashicorp/raft"
)

// Command operations applied by FSM.Apply.
const (
	opRegisterNode     = "register_node"
	opDeregisterNode   = "deregister_node"
	opRegisterVolume   = "register_volume"
	opDeregisterVolume = "deregister_volume"
	opAssignVolume     = "assign_volume"
	opUnassignVolume   = "unassign_volume"
)

// Command is one entry in the Raft log.
type Command struct {
	Op   string          `json:"op"`
	Data json.RawMessage `json:"data"`
}

// FSM applies committed commands to a local storage.Store. Every cluster
// member — leader and followers alike — runs the same commands through the
// same FSM, so the bbolt-backed Store converges to identical state on every
// node. Mirroring a ServiceDef change into the external service_def index
// (C1) is NOT part of the FSM: it is a leader-only side effect applied by
// Log after a local Apply succeeds (see log.go), since followers must not
// perform external writes on a log entry they did not originate.
type FSM struct {
	mu    sync.RWMutex
	store storage.Store
}

// NewFSM creates an FSM backed by store.
func NewFSM(store storage.Store) *FSM {
	return &FSM{store: store}
}

// Apply implements raft.FSM.
func (f *FSM) Apply(log *raft.Log) interface{} {
	var cmd Command
	if err := json.Unmarshal(log.Data, &cmd); err != nil {
		return fmt.Errorf("consensus: unmarshal command: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch cmd.Op {
	case opRegisterNode:
		var node types.Node
		if err := json.Unmarshal(cmd.Data, &node); err != nil {
			return err
		}
		return f.store.CreateNode(&node) // upsert

	case opDeregisterNode:
		var nodeID string
		if err := json.Unmarshal(cmd.Data, &nodeID); err != nil {
			return err
		}
		return f.store.DeleteNode(nodeID)

	case opRegisterVolume:
		var vol types.Volume
		if err := json.Unmarshal(cmd.Data, &vol); err != nil {
			return err
		}
		return f.store.CreateVolume(&vol) // upsert

	case opDeregisterVolume:
		var volID string
		if err := json.Unmarshal(cmd.Data, &volID); err != nil {
			return err
		}
		return f.store.DeleteVolume(volID)

	case opAssignVolume:
		var def types.ServiceDef
		if err := json.Unmarshal(cmd.Data, &def); err != nil {
			return err
		}
		return f.store.CreateServiceDef(&def) // upsert

	case opUnassignVolume:
		var volumeID string
		if err := json.Unmarshal(cmd.Data, &volumeID); err != nil {
			return err
		}
		return f.store.DeleteServiceDef(volumeID)

	default:
		return fmt.Errorf("consensus: unknown command: %s", cmd.Op)
	}
}

// Snapshot implements raft.FSM.
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	nodes, err := f.store.ListNodes()
	if err != nil {
		return nil, fmt.Errorf("consensus: list nodes: %w", err)
	}
	volumes, err := f.store.ListVolumes()
	if err != nil {
		return nil, fmt.Errorf("consensus: list volumes: %w", err)
	}
	defs, err := f.store.ListServiceDefs()
	if err != nil {
		return nil, fmt.Errorf("consensus: list service defs: %w", err)
	}

	return &snapshot{Nodes: nodes, Volumes: volumes, ServiceDefs: defs}, nil
}

// Restore implements raft.FSM.
func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	var snap snapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return fmt.Errorf("consensus: decode snapshot: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, node := range snap.Nodes {
		if err := f.store.CreateNode(node); err != nil {
			return fmt.Errorf("consensus: restore node %s: %w", node.ID, err)
		}
	}
	for _, vol := range snap.Volumes {
		if err := f.store.CreateVolume(vol); err != nil {
			return fmt.Errorf("consensus: restore volume %s: %w", vol.ID, err)
		}
	}
	for _, def := range snap.ServiceDefs {
		if err := f.store.CreateServiceDef(def); err != nil {
			return fmt.Errorf("consensus: restore service def %s: %w", def.VolumeID, err)
		}
	}
	return nil
}

// snapshot is a point-in-time copy of the FSM's state for Raft's log
// compaction.
type snapshot struct {
	Nodes       []*types.Node
	Volumes     []*types.Volume
	ServiceDefs []*types.ServiceDef
}

// Persist implements raft.FSMSnapshot.
func (s *snapshot) Persist(sink raft.SnapshotSink) error {
	err := func() error {
		if err := json.NewEncoder(sink).Encode(s); err != nil {
			return err
		}
		return sink.Close()
	}()
	if err != nil {
		sink.Cancel()
	}
	return err
}

// Release implements raft.FSMSnapshot.
func (s *snapshot) Release() {}
