// Package directory implements ClusterDirectory (C3): the live
// volumeId -> node mapping that VerifyBlobReference (C6) and Placement (C9)
// consult to find the node currently hosting a volume.
package directory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cuemby/sfs/pkg/catalog"
	"github.com/cuemby/sfs/pkg/envelope"
	"github.com/cuemby/sfs/pkg/log"
	"github.com/cuemby/sfs/pkg/metastore"
	"github.com/cuemby/sfs/pkg/types"
)

// NodeClient is the subset of C4 NodeClient/XNode ClusterDirectory needs to
// hand back to a caller: enough to run VerifyBlobReference's checksum step.
// Defined here (rather than imported from pkg/nodeclient) so this package
// never depends on the RPC transport — pkg/nodeclient implements it.
type NodeClient interface {
	Checksum(ctx context.Context, volumeID string, position uint64, offset, length *uint64, algo types.DigestAlgo) (*types.DigestBlob, bool, error)
}

// NodeResolver resolves a node id to its current record. ConsensusLog (C8)
// implements this over its replicated NodeRecord store.
type NodeResolver interface {
	GetNode(id string) (*types.Node, error)
}

// Dialer builds a NodeClient for a node's advertised endpoint. pkg/nodeclient
// provides the mTLS-backed implementation; tests supply a fake.
type Dialer func(node *types.Node) (NodeClient, error)

type entry struct {
	node *types.Node
	def  *types.ServiceDef
}

type snapshot map[string]entry

// ClusterDirectory answers nodeForVolume(volumeId) from a copy-on-write
// snapshot rebuilt by Refresh from the service_def index (C1/C2). Concurrent
// callers reading the same *snapshot pointer always see one consistent
// point-in-time view, satisfying spec.md §4.3's consistency requirement
// without a read lock.
type ClusterDirectory struct {
	metastore *metastore.Store
	resolver  NodeResolver
	dial      Dialer

	snap atomic.Pointer[snapshot]

	clientsMu sync.Mutex
	clients   map[string]NodeClient

	stopCh chan struct{}
}

// New creates a ClusterDirectory with an empty snapshot. Call Refresh (or
// Start) before the first NodeForVolume lookup.
func New(ms *metastore.Store, resolver NodeResolver, dial Dialer) *ClusterDirectory {
	empty := snapshot{}
	d := &ClusterDirectory{
		metastore: ms,
		resolver:  resolver,
		dial:      dial,
		clients:   make(map[string]NodeClient),
		stopCh:    make(chan struct{}),
	}
	d.snap.Store(&empty)
	return d
}

// Start begins refreshing the snapshot on a fixed interval in the
// background. A failed refresh is logged and the previous snapshot is kept;
// the cadence of refresh is outside this spec (spec.md §4 note).
func (d *ClusterDirectory) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if err := d.Refresh(ctx); err != nil {
				log.WithComponent("directory").Error().Msg(fmt.Sprintf("refresh failed: %v", err))
			}
			select {
			case <-ticker.C:
			case <-d.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the background refresh loop started by Start.
func (d *ClusterDirectory) Stop() {
	close(d.stopCh)
}

// Refresh scans the service_def index and rebuilds the volumeId -> node
// snapshot, resolving each ServiceDef's primary node through resolver. A
// ServiceDef whose primary node cannot currently be resolved is dropped from
// the fresh snapshot rather than failing the whole refresh.
func (d *ClusterDirectory) Refresh(ctx context.Context) error {
	var defs []*types.ServiceDef
	query := map[string]interface{}{
		"size":  10000,
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
	}
	if err := d.metastore.Search(ctx, catalog.ServiceDef(), query, &defs); err != nil {
		return fmt.Errorf("directory: scan service_def: %w", err)
	}

	next := make(snapshot, len(defs))
	for _, def := range defs {
		if def == nil || def.VolumeID == "" {
			continue
		}
		node, err := d.resolver.GetNode(def.PrimaryNodeID)
		if err != nil || node == nil {
			log.WithComponent("directory").Debug().Msg(fmt.Sprintf("volume %s: primary node %s unresolved: %v", def.VolumeID, def.PrimaryNodeID, err))
			continue
		}
		next[def.VolumeID] = entry{node: node, def: def}
	}

	d.snap.Store(&next)
	return nil
}

// Len reports the number of volumes currently tracked, for pkg/metrics.
func (d *ClusterDirectory) Len() int {
	return len(*d.snap.Load())
}

// NodeForVolume implements spec.md §4.3's contract: Present with the node
// hosting volumeId, Absent if no service-def currently advertises it, or
// Failed if the service-def resolved but dialing its node failed (a real
// error, never silently treated as absence).
func (d *ClusterDirectory) NodeForVolume(volumeID string) envelope.Outcome[NodeClient] {
	snap := *d.snap.Load()
	e, ok := snap[volumeID]
	if !ok || e.node == nil {
		return envelope.Absent[NodeClient]()
	}

	client, err := d.clientFor(e.node)
	if err != nil {
		return envelope.Failed[NodeClient](fmt.Errorf("directory: dial node %s: %w", e.node.ID, err))
	}
	return envelope.Present(client)
}

func (d *ClusterDirectory) clientFor(node *types.Node) (NodeClient, error) {
	d.clientsMu.Lock()
	defer d.clientsMu.Unlock()

	if c, ok := d.clients[node.Endpoint]; ok {
		return c, nil
	}
	c, err := d.dial(node)
	if err != nil {
		return nil, err
	}
	d.clients[node.Endpoint] = c
	return c, nil
}
