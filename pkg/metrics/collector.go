package metrics

import (
	"strconv"
	"time"

	"github.com/cuemby/sfs/pkg/consensus"
	"github.com/cuemby/sfs/pkg/directory"
)

// Collector periodically samples the consensus log and cluster directory and
// reflects their state into the package-level gauges.
type Collector struct {
	consensus *consensus.Log
	directory *directory.ClusterDirectory
	stopCh    chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(log *consensus.Log, dir *directory.ClusterDirectory) *Collector {
	return &Collector{
		consensus: log,
		directory: dir,
		stopCh:    make(chan struct{}),
	}
}

// Start begins collecting metrics on a fixed interval.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectNodeMetrics()
	c.collectVolumeMetrics()
	c.collectRaftMetrics()
}

func (c *Collector) collectNodeMetrics() {
	nodes, err := c.consensus.ListNodes()
	if err != nil {
		return
	}

	nodeCounts := make(map[string]map[string]int)
	for _, node := range nodes {
		role := string(node.Role)
		status := string(node.Status)
		if nodeCounts[role] == nil {
			nodeCounts[role] = make(map[string]int)
		}
		nodeCounts[role][status]++
	}

	for role, statuses := range nodeCounts {
		for status, count := range statuses {
			NodesTotal.WithLabelValues(role, status).Set(float64(count))
		}
	}
}

func (c *Collector) collectVolumeMetrics() {
	if c.directory == nil {
		return
	}
	VolumesTotal.Set(float64(c.directory.Len()))
}

func (c *Collector) collectRaftMetrics() {
	if c.consensus.IsLeader() {
		RaftLeader.Set(1)
	} else {
		RaftLeader.Set(0)
	}

	stats := c.consensus.Stats()
	if stats == nil {
		return
	}
	if appliedIndex, err := strconv.ParseUint(stats["applied_index"], 10, 64); err == nil {
		RaftAppliedIndex.Set(float64(appliedIndex))
	}
	if numPeers, err := strconv.Atoi(stats["num_peers"]); err == nil {
		RaftPeers.Set(float64(numPeers + 1))
	}
}
