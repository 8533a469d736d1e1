package consensus

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/cuemby/sfs/pkg/storage"
	"github.com/cuemby/sfs/pkg/types"
	"github.com/hashicorp/raft"
)

func newTestFSM(t *testing.T) (*FSM, storage.Store) {
	t.Helper()
	store, err := storage.NewBoltStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewFSM(store), store
}

func applyCommand(t *testing.T, f *FSM, op string, payload interface{}) interface{} {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	cmd, err := json.Marshal(Command{Op: op, Data: data})
	if err != nil {
		t.Fatalf("marshal command: %v", err)
	}
	return f.Apply(&raft.Log{Data: cmd})
}

func TestFSM_RegisterAndDeregisterNode(t *testing.T) {
	f, store := newTestFSM(t)

	node := &types.Node{ID: "node-1", Role: types.NodeRoleVolume, Endpoint: "127.0.0.1:7373", Status: types.NodeStatusReady, CreatedAt: time.Now()}
	if resp := applyCommand(t, f, opRegisterNode, node); resp != nil {
		t.Fatalf("apply register_node: %v", resp)
	}
	got, err := store.GetNode("node-1")
	if err != nil {
		t.Fatalf("GetNode() error = %v", err)
	}
	if got.Endpoint != node.Endpoint {
		t.Errorf("Endpoint = %v, want %v", got.Endpoint, node.Endpoint)
	}

	if resp := applyCommand(t, f, opDeregisterNode, "node-1"); resp != nil {
		t.Fatalf("apply deregister_node: %v", resp)
	}
	if _, err := store.GetNode("node-1"); err == nil {
		t.Error("GetNode() after deregister: want error, got nil")
	}
}

func TestFSM_RegisterVolumeIsUpsert(t *testing.T) {
	f, store := newTestFSM(t)

	vol := &types.Volume{ID: "vol-1", Capacity: 100}
	if resp := applyCommand(t, f, opRegisterVolume, vol); resp != nil {
		t.Fatalf("apply register_volume: %v", resp)
	}

	vol.Capacity = 200
	if resp := applyCommand(t, f, opRegisterVolume, vol); resp != nil {
		t.Fatalf("apply register_volume (update): %v", resp)
	}

	got, err := store.GetVolume("vol-1")
	if err != nil {
		t.Fatalf("GetVolume() error = %v", err)
	}
	if got.Capacity != 200 {
		t.Errorf("Capacity = %v, want 200", got.Capacity)
	}
}

func TestFSM_AssignAndUnassignVolume(t *testing.T) {
	f, store := newTestFSM(t)

	def := &types.ServiceDef{VolumeID: "vol-1", PrimaryNodeID: "node-1", UpdatedAt: time.Now()}
	if resp := applyCommand(t, f, opAssignVolume, def); resp != nil {
		t.Fatalf("apply assign_volume: %v", resp)
	}
	got, err := store.GetServiceDef("vol-1")
	if err != nil {
		t.Fatalf("GetServiceDef() error = %v", err)
	}
	if got.PrimaryNodeID != "node-1" {
		t.Errorf("PrimaryNodeID = %v, want node-1", got.PrimaryNodeID)
	}

	if resp := applyCommand(t, f, opUnassignVolume, "vol-1"); resp != nil {
		t.Fatalf("apply unassign_volume: %v", resp)
	}
	if _, err := store.GetServiceDef("vol-1"); err == nil {
		t.Error("GetServiceDef() after unassign: want error, got nil")
	}
}

func TestFSM_UnknownCommand(t *testing.T) {
	f, _ := newTestFSM(t)
	resp := applyCommand(t, f, "bogus_op", "x")
	err, ok := resp.(error)
	if !ok || err == nil {
		t.Fatalf("apply unknown op: want error, got %v", resp)
	}
}

func TestFSM_SnapshotAndRestore(t *testing.T) {
	f, _ := newTestFSM(t)

	node := &types.Node{ID: "node-1", Role: types.NodeRoleVolume, Endpoint: "127.0.0.1:7373", Status: types.NodeStatusReady, CreatedAt: time.Now()}
	vol := &types.Volume{ID: "vol-1", Capacity: 100}
	def := &types.ServiceDef{VolumeID: "vol-1", PrimaryNodeID: "node-1", UpdatedAt: time.Now()}
	applyCommand(t, f, opRegisterNode, node)
	applyCommand(t, f, opRegisterVolume, vol)
	applyCommand(t, f, opAssignVolume, def)

	fsmSnap, err := f.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	snap := fsmSnap.(*snapshot)
	if len(snap.Nodes) != 1 || len(snap.Volumes) != 1 || len(snap.ServiceDefs) != 1 {
		t.Fatalf("snapshot contents = %+v", snap)
	}

	restoreTarget, store2 := newTestFSM(t)
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(snap); err != nil {
		t.Fatalf("encode snapshot: %v", err)
	}
	if err := restoreTarget.Restore(io.NopCloser(&buf)); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if _, err := store2.GetNode("node-1"); err != nil {
		t.Errorf("GetNode() after restore: %v", err)
	}
}
