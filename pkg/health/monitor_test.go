package health

import (
	"testing"
	"time"

	"github.com/cuemby/sfs/pkg/types"
)

type fakeRegistry struct {
	nodes      []*types.Node
	registered []*types.Node
}

func (f *fakeRegistry) ListNodes() ([]*types.Node, error) { return f.nodes, nil }
func (f *fakeRegistry) RegisterNode(n *types.Node) error {
	f.registered = append(f.registered, n)
	return nil
}

func TestMonitor_MarksUnreachableNodeDown(t *testing.T) {
	// No endpoint, so every probe fails; the node's grace period is already
	// over, and it flips down once Config.Retries probes have failed.
	reg := &fakeRegistry{nodes: []*types.Node{
		{ID: "node-1", Status: types.NodeStatusReady, LastHeartbeat: time.Now().Add(-time.Minute)},
	}}
	m := NewMonitor(reg, 30*time.Second)
	m.statusFor("node-1").StartedAt = time.Now().Add(-time.Minute)
	for i := 0; i < m.cfg.Retries; i++ {
		m.sweep()
	}

	if len(reg.registered) != 1 {
		t.Fatalf("registered %d nodes, want 1", len(reg.registered))
	}
	if reg.registered[0].Status != types.NodeStatusDown {
		t.Errorf("status = %v, want down", reg.registered[0].Status)
	}
}

func TestMonitor_LeavesFreshNodeAlone(t *testing.T) {
	reg := &fakeRegistry{nodes: []*types.Node{
		{ID: "node-1", Status: types.NodeStatusReady, LastHeartbeat: time.Now()},
	}}
	m := NewMonitor(reg, 30*time.Second)
	m.sweep()

	if len(reg.registered) != 0 {
		t.Errorf("registered %d nodes, want 0", len(reg.registered))
	}
}

func TestMonitor_IgnoresAlreadyDownNode(t *testing.T) {
	reg := &fakeRegistry{nodes: []*types.Node{
		{ID: "node-1", Status: types.NodeStatusDown, LastHeartbeat: time.Now().Add(-time.Hour)},
	}}
	m := NewMonitor(reg, 30*time.Second)
	m.sweep()

	if len(reg.registered) != 0 {
		t.Errorf("registered %d nodes, want 0", len(reg.registered))
	}
}
