package consensus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cuemby/sfs/pkg/log"
	"github.com/cuemby/sfs/pkg/storage"
	"github.com/cuemby/sfs/pkg/types"
	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
)

// ErrNotLeader is wrapped into the error a write returns when attempted on
// a non-leader node (SPEC_FULL.md P11): the message names the current
// leader's address so the caller can retry there.
var ErrNotLeader = errors.New("consensus: not the leader")

// Config configures a Log's Raft transport and storage.
type Config struct {
	NodeID   string
	BindAddr string // Raft transport bind address, host:port
	DataDir  string
}

// ServiceDefMirror is the narrow metastore contract Log uses to project a
// committed ServiceDef change into the C1 service_def index after a
// leader-local Apply succeeds. mirror.go's StoreMirror adapts *metastore.Store
// to this interface; nil disables mirroring (unit tests exercising only the
// Raft/FSM path).
type ServiceDefMirror interface {
	PutServiceDef(ctx context.Context, def *types.ServiceDef) error
	DeleteServiceDef(ctx context.Context, volumeID string) error
}

// Log is ConsensusLog (C8).
type Log struct {
	cfg    Config
	raft   *raft.Raft
	fsm    *FSM
	store  storage.Store
	mirror ServiceDefMirror

	transportAddr raft.ServerAddress
}

// New creates a Log over store. Call Bootstrap or Join to start Raft.
func New(cfg Config, store storage.Store) *Log {
	return &Log{cfg: cfg, store: store, fsm: NewFSM(store)}
}

// SetMirror installs the metastore projection target.
func (l *Log) SetMirror(m ServiceDefMirror) { l.mirror = m }

// raftTimeouts are tuned for LAN/edge deployments the same way the teacher's
// manager package tunes theirs: faster heartbeat/election than hashicorp's
// WAN-oriented defaults.
func raftTimeouts(cfg *raft.Config) {
	cfg.HeartbeatTimeout = 500 * time.Millisecond
	cfg.ElectionTimeout = 500 * time.Millisecond
	cfg.CommitTimeout = 50 * time.Millisecond
	cfg.LeaderLeaseTimeout = 250 * time.Millisecond
}

func (l *Log) startRaft() error {
	if err := os.MkdirAll(l.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("consensus: create data dir: %w", err)
	}

	config := raft.DefaultConfig()
	config.LocalID = raft.ServerID(l.cfg.NodeID)
	raftTimeouts(config)

	addr, err := net.ResolveTCPAddr("tcp", l.cfg.BindAddr)
	if err != nil {
		return fmt.Errorf("consensus: resolve bind address: %w", err)
	}
	transport, err := raft.NewTCPTransport(l.cfg.BindAddr, addr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return fmt.Errorf("consensus: new transport: %w", err)
	}

	snapshotStore, err := raft.NewFileSnapshotStore(l.cfg.DataDir, 2, os.Stderr)
	if err != nil {
		return fmt.Errorf("consensus: new snapshot store: %w", err)
	}

	logStore, err := raftboltdb.NewBoltStore(filepath.Join(l.cfg.DataDir, "raft-log.db"))
	if err != nil {
		return fmt.Errorf("consensus: new log store: %w", err)
	}
	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(l.cfg.DataDir, "raft-stable.db"))
	if err != nil {
		return fmt.Errorf("consensus: new stable store: %w", err)
	}

	r, err := raft.NewRaft(config, l.fsm, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		return fmt.Errorf("consensus: new raft: %w", err)
	}
	l.raft = r
	l.transportAddr = transport.LocalAddr()
	return nil
}

// Bootstrap initializes a new single-node Raft cluster with this node as
// the only member. Additional nodes join via Join + AddVoter.
func (l *Log) Bootstrap() error {
	if err := l.startRaft(); err != nil {
		return err
	}
	future := l.raft.BootstrapCluster(raft.Configuration{
		Servers: []raft.Server{{ID: raft.ServerID(l.cfg.NodeID), Address: l.transportAddr}},
	})
	if err := future.Error(); err != nil {
		return fmt.Errorf("consensus: bootstrap cluster: %w", err)
	}
	log.WithComponent("consensus").Info().Msg(fmt.Sprintf("bootstrapped single-node cluster as %s", l.cfg.NodeID))
	return nil
}

// JoinRequest is the body Join posts to the leader's AdminHTTP /raft/join
// endpoint (C13); pkg/api decodes the same shape.
type JoinRequest struct {
	NodeID   string `json:"node_id"`
	RaftAddr string `json:"raft_addr"`
}

// Join starts this node's Raft instance unbootstrapped and asks the leader
// (reached at its AdminHTTP address) to add it as a voter.
func (l *Log) Join(ctx context.Context, leaderAdminAddr string) error {
	if err := l.startRaft(); err != nil {
		return err
	}

	payload, err := json.Marshal(JoinRequest{NodeID: l.cfg.NodeID, RaftAddr: l.cfg.BindAddr})
	if err != nil {
		return fmt.Errorf("consensus: encode join request: %w", err)
	}

	url := fmt.Sprintf("http://%s/raft/join", leaderAdminAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("consensus: build join request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("consensus: join %s: %w", leaderAdminAddr, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("consensus: join %s: leader returned status %d", leaderAdminAddr, resp.StatusCode)
	}
	log.WithComponent("consensus").Info().Msg(fmt.Sprintf("joined cluster via %s", leaderAdminAddr))
	return nil
}

// AddVoter adds a new member to the Raft cluster. Leader-only.
func (l *Log) AddVoter(nodeID, raftAddr string) error {
	if !l.IsLeader() {
		return fmt.Errorf("%w: current leader %q", ErrNotLeader, l.LeaderAddr())
	}
	future := l.raft.AddVoter(raft.ServerID(nodeID), raft.ServerAddress(raftAddr), 0, 10*time.Second)
	if err := future.Error(); err != nil {
		return fmt.Errorf("consensus: add voter %s: %w", nodeID, err)
	}
	return nil
}

// RemoveServer removes a member from the Raft cluster. Leader-only.
func (l *Log) RemoveServer(nodeID string) error {
	if !l.IsLeader() {
		return fmt.Errorf("%w: current leader %q", ErrNotLeader, l.LeaderAddr())
	}
	future := l.raft.RemoveServer(raft.ServerID(nodeID), 0, 10*time.Second)
	if err := future.Error(); err != nil {
		return fmt.Errorf("consensus: remove server %s: %w", nodeID, err)
	}
	return nil
}

// IsLeader reports whether this node currently holds Raft leadership.
func (l *Log) IsLeader() bool {
	return l.raft != nil && l.raft.State() == raft.Leader
}

// LeaderAddr returns the current leader's Raft transport address, or "" if
// unknown.
func (l *Log) LeaderAddr() string {
	if l.raft == nil {
		return ""
	}
	return string(l.raft.Leader())
}

// Stats returns the underlying raft.Raft's statistics map unchanged — its
// keys ("applied_index", "num_peers", ...) are what pkg/metrics' Collector
// parses directly.
func (l *Log) Stats() map[string]string {
	if l.raft == nil {
		return nil
	}
	return l.raft.Stats()
}

// Shutdown gracefully stops the Raft instance.
func (l *Log) Shutdown() error {
	if l.raft == nil {
		return nil
	}
	return l.raft.Shutdown().Error()
}

// apply submits a command to the Raft log and blocks until it is committed.
// Returns ErrNotLeader (via the wrapped error) if this node is not the
// leader, without performing any local mutation elsewhere.
func (l *Log) apply(op string, payload interface{}) error {
	if l.raft == nil {
		return fmt.Errorf("consensus: raft not initialized")
	}
	if !l.IsLeader() {
		return fmt.Errorf("%w: current leader %q", ErrNotLeader, l.LeaderAddr())
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("consensus: encode %s: %w", op, err)
	}
	cmd, err := json.Marshal(Command{Op: op, Data: data})
	if err != nil {
		return fmt.Errorf("consensus: encode command: %w", err)
	}

	future := l.raft.Apply(cmd, 5*time.Second)
	if err := future.Error(); err != nil {
		return fmt.Errorf("consensus: apply %s: %w", op, err)
	}
	if resp := future.Response(); resp != nil {
		if err, ok := resp.(error); ok && err != nil {
			return fmt.Errorf("consensus: apply %s: %w", op, err)
		}
	}
	return nil
}

// RegisterNode commits a node's membership record.
func (l *Log) RegisterNode(node *types.Node) error { return l.apply(opRegisterNode, node) }

// DeregisterNode removes a node's membership record.
func (l *Log) DeregisterNode(id string) error { return l.apply(opDeregisterNode, id) }

// RegisterVolume commits a volume's declared capacity.
func (l *Log) RegisterVolume(vol *types.Volume) error { return l.apply(opRegisterVolume, vol) }

// DeregisterVolume removes a volume's declared capacity.
func (l *Log) DeregisterVolume(id string) error { return l.apply(opDeregisterVolume, id) }

// AssignVolume commits a ServiceDef and, on the leader that committed it,
// mirrors it into the service_def index (C1) so ClusterDirectory (C3) picks
// it up on its next refresh.
func (l *Log) AssignVolume(def *types.ServiceDef) error {
	if err := l.apply(opAssignVolume, def); err != nil {
		return err
	}
	l.mirrorPut(def)
	return nil
}

// UnassignVolume commits the removal of a ServiceDef and mirrors the
// deletion into the service_def index.
func (l *Log) UnassignVolume(volumeID string) error {
	if err := l.apply(opUnassignVolume, volumeID); err != nil {
		return err
	}
	l.mirrorDelete(volumeID)
	return nil
}

func (l *Log) mirrorPut(def *types.ServiceDef) {
	if l.mirror == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.mirror.PutServiceDef(ctx, def); err != nil {
		log.WithComponent("consensus").Error().Msg(fmt.Sprintf("mirror service_def %s: %v", def.VolumeID, err))
	}
}

func (l *Log) mirrorDelete(volumeID string) {
	if l.mirror == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.mirror.DeleteServiceDef(ctx, volumeID); err != nil {
		log.WithComponent("consensus").Error().Msg(fmt.Sprintf("unmirror service_def %s: %v", volumeID, err))
	}
}

// GetNode satisfies pkg/directory's NodeResolver, reading directly from the
// local replicated store.
func (l *Log) GetNode(id string) (*types.Node, error) { return l.store.GetNode(id) }

// ListNodes returns every node currently known to the cluster.
func (l *Log) ListNodes() ([]*types.Node, error) { return l.store.ListNodes() }

// ListVolumes returns every declared volume.
func (l *Log) ListVolumes() ([]*types.Volume, error) { return l.store.ListVolumes() }

// ListServiceDefs returns every current volume-placement record.
func (l *Log) ListServiceDefs() ([]*types.ServiceDef, error) { return l.store.ListServiceDefs() }
