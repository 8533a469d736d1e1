package main

import (
	"context"
	"crypto/x509"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cuemby/sfs/pkg/api"
	"github.com/cuemby/sfs/pkg/config"
	"github.com/cuemby/sfs/pkg/consensus"
	"github.com/cuemby/sfs/pkg/directory"
	"github.com/cuemby/sfs/pkg/events"
	"github.com/cuemby/sfs/pkg/health"
	"github.com/cuemby/sfs/pkg/log"
	"github.com/cuemby/sfs/pkg/metastore"
	"github.com/cuemby/sfs/pkg/metrics"
	"github.com/cuemby/sfs/pkg/nodeclient"
	"github.com/cuemby/sfs/pkg/placement"
	"github.com/cuemby/sfs/pkg/scrub"
	"github.com/cuemby/sfs/pkg/security"
	"github.com/cuemby/sfs/pkg/storage"
	"github.com/cuemby/sfs/pkg/types"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a cluster node",
	Long: `Start this node's ConsensusLog, ClusterDirectory, NodeClient/XNode
server, and background placement/scrub/health loops.

A node starting a fresh cluster should pass --bootstrap; a node joining an
existing cluster should pass --join pointing at the leader's admin address.`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().String("node-id", "", "Node id (generated if empty)")
	startCmd.Flags().String("raft-addr", "127.0.0.1:7000", "Raft transport bind address")
	startCmd.Flags().String("rpc-addr", "127.0.0.1:7001", "NodeClient/XNode gRPC bind address")
	startCmd.Flags().String("admin-addr", "127.0.0.1:7002", "AdminHTTP bind address (/health, /ready, /metrics, /raft/join)")
	startCmd.Flags().String("data-dir", "./data", "Data directory (raft log, bbolt store, CA)")
	startCmd.Flags().Bool("bootstrap", false, "Bootstrap a new single-node cluster")
	startCmd.Flags().String("join", "", "Admin address of an existing cluster member to join")
	startCmd.Flags().String("cluster-id", "sfs", "Cluster identifier used to derive the CA's at-rest encryption key")
	startCmd.Flags().Int("replica-count", 2, "Target replica count (primary + replicas) Placement maintains per volume")
	startCmd.Flags().Duration("directory-refresh", 5*time.Second, "ClusterDirectory refresh interval")
	startCmd.Flags().Duration("placement-interval", 10*time.Second, "Placement cycle interval")
	startCmd.Flags().Duration("scrub-interval", time.Minute, "Scrub/Repair cycle interval")
	startCmd.Flags().Duration("health-interval", 10*time.Second, "NodeHealth sweep interval")
	startCmd.Flags().Duration("health-threshold", 30*time.Second, "Probe timeout and startup grace period before a node's liveness is judged")
	startCmd.Flags().Int("scrub-workers", 8, "Scrub worker pool size")

	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	nodeID, _ := cmd.Flags().GetString("node-id")
	raftAddr, _ := cmd.Flags().GetString("raft-addr")
	rpcAddr, _ := cmd.Flags().GetString("rpc-addr")
	adminAddr, _ := cmd.Flags().GetString("admin-addr")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	bootstrap, _ := cmd.Flags().GetBool("bootstrap")
	joinAddr, _ := cmd.Flags().GetString("join")
	clusterID, _ := cmd.Flags().GetString("cluster-id")
	replicaCount, _ := cmd.Flags().GetInt("replica-count")
	directoryRefresh, _ := cmd.Flags().GetDuration("directory-refresh")
	placementInterval, _ := cmd.Flags().GetDuration("placement-interval")
	scrubInterval, _ := cmd.Flags().GetDuration("scrub-interval")
	healthInterval, _ := cmd.Flags().GetDuration("health-interval")
	healthThreshold, _ := cmd.Flags().GetDuration("health-threshold")
	scrubWorkers, _ := cmd.Flags().GetInt("scrub-workers")

	if nodeID == "" {
		nodeID = uuid.New().String()
	}
	if !bootstrap && joinAddr == "" {
		return fmt.Errorf("sfsd: one of --bootstrap or --join is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := log.WithComponent("sfsd")
	logger.Info().Msg(fmt.Sprintf("starting node %s", nodeID))

	metrics.SetVersion(Version)

	store, err := storage.NewBoltStore(filepath.Join(dataDir, "store"))
	if err != nil {
		return fmt.Errorf("sfsd: open store: %w", err)
	}
	defer store.Close()

	if err := security.SetClusterEncryptionKey(security.DeriveKeyFromClusterID(clusterID)); err != nil {
		return fmt.Errorf("sfsd: derive cluster encryption key: %w", err)
	}

	ca := security.NewCertAuthority(store, clusterID)
	if err := ca.LoadFromStore(); err != nil {
		logger.Info().Msg("no existing CA found, initializing one")
		if err := ca.Initialize(); err != nil {
			return fmt.Errorf("sfsd: initialize CA: %w", err)
		}
		if err := ca.SaveToStore(); err != nil {
			return fmt.Errorf("sfsd: persist CA: %w", err)
		}
	}
	metrics.RegisterComponent("ca", true, "loaded")

	consensusLog := consensus.New(consensus.Config{
		NodeID:   nodeID,
		BindAddr: raftAddr,
		DataDir:  filepath.Join(dataDir, "raft"),
	}, store)

	if bootstrap {
		if err := consensusLog.Bootstrap(); err != nil {
			return fmt.Errorf("sfsd: bootstrap cluster: %w", err)
		}
		logger.Info().Msg("bootstrapped single-node cluster")
	} else {
		if err := consensusLog.Join(ctx, joinAddr); err != nil {
			return fmt.Errorf("sfsd: join cluster via %s: %w", joinAddr, err)
		}
		logger.Info().Msg(fmt.Sprintf("joined cluster via %s", joinAddr))
	}
	metrics.RegisterComponent("raft", true, "started")

	ms := metastore.NewStore()
	mcfg := config.Load().MetastoreConfig()
	if mcfg.NodeName == "" {
		mcfg.NodeName = nodeID
	}
	if err := ms.Start(ctx, mcfg, bootstrap); err != nil {
		return fmt.Errorf("sfsd: start metastore: %w", err)
	}
	defer ms.Stop()
	consensusLog.SetMirror(consensus.NewStoreMirror(ms))
	metrics.RegisterComponent("metastore", true, "started")

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	dialer := nodeclient.NewDialer(ca, "node-"+nodeID)
	dir := directory.New(ms, consensusLog, dialer)
	dir.Start(ctx, directoryRefresh)
	defer dir.Stop()
	metrics.RegisterComponent("directory", true, "started")

	rootCACert, err := x509.ParseCertificate(ca.GetRootCACert())
	if err != nil {
		return fmt.Errorf("sfsd: parse root CA certificate: %w", err)
	}
	serverCert, err := ca.IssueNodeCertificate(nodeID, "volume", []string{nodeID}, nil)
	if err != nil {
		return fmt.Errorf("sfsd: issue node certificate: %w", err)
	}
	if certDir, err := security.GetCertDir("volume", nodeID); err != nil {
		logger.Debug().Msg(fmt.Sprintf("cert dir unavailable, skipping on-disk copy: %v", err))
	} else {
		if err := security.SaveCertToFile(serverCert, certDir); err != nil {
			logger.Warn().Msg(fmt.Sprintf("save node certificate: %v", err))
		} else if err := security.SaveCACertToFile(ca.GetRootCACert(), certDir); err != nil {
			logger.Warn().Msg(fmt.Sprintf("save CA certificate: %v", err))
		}
	}
	if security.CertNeedsRotation(serverCert.Leaf) {
		logger.Warn().Msg(fmt.Sprintf("node certificate for %s expires %s, within rotation window", nodeID, security.GetCertExpiry(serverCert.Leaf)))
	}

	self := &types.Node{
		ID:            nodeID,
		Role:          types.NodeRoleVolume,
		Endpoint:      rpcAddr,
		Status:        types.NodeStatusReady,
		LastHeartbeat: time.Now(),
		CreatedAt:     time.Now(),
	}
	if err := consensusLog.RegisterNode(self); err != nil {
		// A joining follower can't self-register until the leader commits
		// it; that's expected (ErrNotLeader) and not fatal to startup.
		logger.Debug().Msg(fmt.Sprintf("register self deferred: %v", err))
	}

	rpcServer := nodeclient.NewServer(noopChecksumProvider{}, *serverCert, rootCACert)
	go func() {
		if err := rpcServer.Start(rpcAddr); err != nil {
			logger.Error().Msg(fmt.Sprintf("node RPC server stopped: %v", err))
		}
	}()
	defer rpcServer.Stop()
	metrics.RegisterComponent("nodeclient", true, fmt.Sprintf("listening on %s", rpcAddr))

	picker := placement.New(consensusLog, consensusLog, broker, replicaCount)
	picker.Start(placementInterval)
	defer picker.Stop()

	scrubber := scrub.New(ms, dir, broker, scrubWorkers)
	scrubber.Start(scrubInterval)
	defer scrubber.Stop()

	monitor := health.NewMonitor(consensusLog, healthThreshold)
	monitor.Start(healthInterval)
	defer monitor.Stop()

	collector := metrics.NewCollector(consensusLog, dir)
	collector.Start()
	defer collector.Stop()

	adminServer := api.New(consensusLog)
	go func() {
		if err := adminServer.Start(adminAddr); err != nil {
			logger.Error().Msg(fmt.Sprintf("admin HTTP server stopped: %v", err))
		}
	}()
	metrics.RegisterComponent("api", true, fmt.Sprintf("listening on %s", adminAddr))

	logger.Info().Msg(fmt.Sprintf("node %s ready: raft=%s rpc=%s admin=%s", nodeID, raftAddr, rpcAddr, adminAddr))

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	return consensusLog.Shutdown()
}

// noopChecksumProvider answers every checksum request with "absent". It
// stands in for the volume-local blob store, which is out of this module's
// scope (spec.md §1 Non-goals): a real node process plugs in the component
// that reads physical blob bytes off disk here.
type noopChecksumProvider struct{}

func (noopChecksumProvider) Checksum(ctx context.Context, volumeID string, position uint64, offset, length *uint64, algo types.DigestAlgo) (*types.DigestBlob, bool, error) {
	return nil, false, nil
}
