package placement

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cuemby/sfs/pkg/events"
	"github.com/cuemby/sfs/pkg/log"
	"github.com/cuemby/sfs/pkg/metrics"
	"github.com/cuemby/sfs/pkg/types"
)

// Lister is the subset of ConsensusLog (C8) Placement reads from: the
// current node membership, declared volumes, and placement records.
type Lister interface {
	ListNodes() ([]*types.Node, error)
	ListVolumes() ([]*types.Volume, error)
	ListServiceDefs() ([]*types.ServiceDef, error)
}

// Assigner is the subset of ConsensusLog (C8) Placement writes to: it
// commits a ServiceDef once candidates are chosen for a volume.
type Assigner interface {
	AssignVolume(def *types.ServiceDef) error
}

// Picker runs Placement's periodic candidate-selection loop.
type Picker struct {
	lister       Lister
	assigner     Assigner
	broker       *events.Broker
	replicaCount int

	stopCh chan struct{}
}

// New creates a Picker targeting replicaCount copies (primary + replicas)
// of every declared volume.
func New(lister Lister, assigner Assigner, broker *events.Broker, replicaCount int) *Picker {
	return &Picker{
		lister:       lister,
		assigner:     assigner,
		broker:       broker,
		replicaCount: replicaCount,
		stopCh:       make(chan struct{}),
	}
}

// Start begins the ticked placement loop. A failed cycle is logged and
// retried on the next tick; it never stops the loop (matching §7's
// propagation policy for background reconciliation).
func (p *Picker) Start(interval time.Duration) {
	go p.run(interval)
}

// Stop ends the background loop started by Start.
func (p *Picker) Stop() {
	close(p.stopCh)
}

func (p *Picker) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.runCycle(context.Background()); err != nil {
				log.WithComponent("placement").Error().Msg(fmt.Sprintf("placement cycle failed: %v", err))
			}
		case <-p.stopCh:
			return
		}
	}
}

// runCycle picks and commits replicas for every under-replicated volume.
func (p *Picker) runCycle(ctx context.Context) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.PlacementDuration)

	volumes, err := p.lister.ListVolumes()
	if err != nil {
		return fmt.Errorf("placement: list volumes: %w", err)
	}
	defs, err := p.lister.ListServiceDefs()
	if err != nil {
		return fmt.Errorf("placement: list service defs: %w", err)
	}

	byVolume := make(map[string]*types.ServiceDef, len(defs))
	for _, d := range defs {
		byVolume[d.VolumeID] = d
	}

	for _, vol := range volumes {
		def := byVolume[vol.ID]
		current := 0
		if def != nil {
			current = 1 + len(def.ReplicaNodeIDs)
		}
		need := p.replicaCount - current
		if need <= 0 {
			continue
		}

		candidates, err := p.Pick(ctx, vol.ID, need)
		if err != nil {
			log.WithComponent("placement").Error().Msg(fmt.Sprintf("pick for volume %s: %v", vol.ID, err))
			continue
		}
		if len(candidates) == 0 {
			continue
		}

		if def == nil {
			def = &types.ServiceDef{VolumeID: vol.ID}
		}
		if def.PrimaryNodeID == "" {
			def.PrimaryNodeID = candidates[0].NodeID
			candidates = candidates[1:]
		}
		for _, c := range candidates {
			def.ReplicaNodeIDs = append(def.ReplicaNodeIDs, c.NodeID)
		}
		def.UpdatedAt = time.Now()

		if err := p.assigner.AssignVolume(def); err != nil {
			log.WithComponent("placement").Error().Msg(fmt.Sprintf("assign volume %s: %v", vol.ID, err))
			continue
		}
		if p.broker != nil {
			p.broker.Publish(&events.Event{
				Type:     events.EventVolumeAssigned,
				Message:  fmt.Sprintf("volume %s assigned primary=%s replicas=%d", def.VolumeID, def.PrimaryNodeID, len(def.ReplicaNodeIDs)),
				Metadata: map[string]string{"volume_id": def.VolumeID, "primary_node_id": def.PrimaryNodeID},
			})
		}
	}
	return nil
}

// Pick returns up to replicaCount distinct, live candidate nodes for
// volumeID, excluding any node already hosting it. Nodes are scored by
// already-assigned volume count alone (fewer assignments is better, ties
// broken by node ID; declared capacity is not considered) — the same
// load-balancing rule the teacher's scheduler applies
// to container placement. A node NodeHealth (C11) has marked down is never
// returned (P10).
func (p *Picker) Pick(ctx context.Context, volumeID string, replicaCount int) ([]types.PlacementCandidate, error) {
	if replicaCount <= 0 {
		return nil, nil
	}

	nodes, err := p.lister.ListNodes()
	if err != nil {
		return nil, fmt.Errorf("placement: list nodes: %w", err)
	}
	defs, err := p.lister.ListServiceDefs()
	if err != nil {
		return nil, fmt.Errorf("placement: list service defs: %w", err)
	}

	assigned := make(map[string]int, len(nodes))
	excluded := make(map[string]bool)
	for _, d := range defs {
		assigned[d.PrimaryNodeID]++
		for _, r := range d.ReplicaNodeIDs {
			assigned[r]++
		}
		if d.VolumeID == volumeID {
			excluded[d.PrimaryNodeID] = true
			for _, r := range d.ReplicaNodeIDs {
				excluded[r] = true
			}
		}
	}

	candidates := make([]types.PlacementCandidate, 0, len(nodes))
	for _, n := range nodes {
		if n.Status != types.NodeStatusReady {
			continue
		}
		if excluded[n.ID] {
			continue
		}
		candidates = append(candidates, types.PlacementCandidate{
			VolumeID: volumeID,
			NodeID:   n.ID,
			Score:    -int64(assigned[n.ID]),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].NodeID < candidates[j].NodeID
	})

	if len(candidates) > replicaCount {
		candidates = candidates[:replicaCount]
	}
	metrics.PlacementCandidatesTotal.Add(float64(len(candidates)))
	return candidates, nil
}
