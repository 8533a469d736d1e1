package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/sfs/pkg/log"
	"github.com/cuemby/sfs/pkg/metrics"
	"github.com/cuemby/sfs/pkg/types"
)

// NodeRegistry is the subset of ConsensusLog (C8) the liveness monitor
// depends on: list every known node, and commit a status change back
// through Raft so all members converge on the same view.
type NodeRegistry interface {
	ListNodes() ([]*types.Node, error)
	RegisterNode(node *types.Node) error
}

// Monitor periodically dials every known node's RPC endpoint with a
// TCPChecker (C11 NodeHealth) and feeds the result into C8. A node that
// fails Config.Retries consecutive probes flips from ready to down; one
// that then answers again flips straight back to ready. Nothing here ever
// marks a node down on elapsed time alone — only a probe outcome does.
type Monitor struct {
	registry NodeRegistry
	cfg      Config
	stopCh   chan struct{}

	mu       sync.Mutex
	statuses map[string]*Status
}

// NewMonitor creates a Monitor. threshold <= 0 defaults to 30 seconds and
// is used as the probe timeout and the grace period before a newly seen
// node can be flipped down.
func NewMonitor(registry NodeRegistry, threshold time.Duration) *Monitor {
	if threshold <= 0 {
		threshold = 30 * time.Second
	}
	cfg := DefaultConfig()
	cfg.Timeout = threshold
	cfg.StartPeriod = threshold
	return &Monitor{
		registry: registry,
		cfg:      cfg,
		stopCh:   make(chan struct{}),
		statuses: make(map[string]*Status),
	}
}

// Start runs the monitor loop in the background at the given interval.
func (m *Monitor) Start(interval time.Duration) { go m.run(interval) }

// Stop ends the monitor loop started by Start.
func (m *Monitor) Stop() { close(m.stopCh) }

func (m *Monitor) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stopCh:
			return
		}
	}
}

// statusFor returns this node's running Status, creating one (and starting
// its StartPeriod grace clock) the first time the node is seen.
func (m *Monitor) statusFor(nodeID string) *Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.statuses[nodeID]
	if !ok {
		s = NewStatus()
		m.statuses[nodeID] = s
	}
	return s
}

// sweep runs one liveness pass: every known node's endpoint is dialed with
// a TCPChecker, and the result is folded into that node's consecutive
// failure/success counters before any status transition is considered.
// Leader-only in practice: a follower's RegisterNode call fails with
// ErrNotLeader and is logged, not retried — the leader will apply the same
// transition on its own next sweep.
func (m *Monitor) sweep() {
	nodes, err := m.registry.ListNodes()
	if err != nil {
		log.WithComponent("health").Error().Msg(fmt.Sprintf("list nodes: %v", err))
		return
	}

	seen := make(map[string]bool, len(nodes))
	for _, node := range nodes {
		seen[node.ID] = true
		m.probe(node)
	}

	m.mu.Lock()
	for id := range m.statuses {
		if !seen[id] {
			delete(m.statuses, id)
		}
	}
	m.mu.Unlock()
}

// probe dials node.Endpoint and reconciles the outcome against its running
// Status, committing a NodeStatus transition through the registry when the
// failure/success run crosses Config.Retries.
func (m *Monitor) probe(node *types.Node) {
	status := m.statusFor(node.ID)
	if status.InStartPeriod(m.cfg) {
		return
	}

	checker := NewTCPChecker(node.Endpoint).WithTimeout(m.cfg.Timeout)
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Timeout)
	result := checker.Check(ctx)
	cancel()
	status.Update(result, m.cfg)

	metrics.NodeHealthChecksTotal.WithLabelValues(probeLabel(result.Healthy)).Inc()

	switch {
	case result.Healthy && node.Status == types.NodeStatusDown:
		node.Status = types.NodeStatusReady
		node.LastHeartbeat = time.Now()
		if err := m.registry.RegisterNode(node); err != nil {
			log.WithComponent("health").Debug().Msg(fmt.Sprintf("mark node %s ready: %v", node.ID, err))
			return
		}
		log.WithComponent("health").Info().Msg(fmt.Sprintf("node %s recovered: %s", node.ID, result.Message))
	case !status.Healthy && node.Status == types.NodeStatusReady:
		node.Status = types.NodeStatusDown
		if err := m.registry.RegisterNode(node); err != nil {
			log.WithComponent("health").Debug().Msg(fmt.Sprintf("mark node %s down: %v", node.ID, err))
			return
		}
		log.WithComponent("health").Warn().Msg(fmt.Sprintf("node %s marked down after %d failed probes: %s", node.ID, status.ConsecutiveFailures, result.Message))
	case result.Healthy:
		node.LastHeartbeat = time.Now()
	}
}

func probeLabel(healthy bool) string {
	if healthy {
		return "up"
	}
	return "down"
}
