/*
Package directory implements ClusterDirectory (C3).

A ClusterDirectory holds a copy-on-write snapshot of volumeId -> hosting
node, rebuilt by Refresh from the service_def index that ConsensusLog (C8)
projects into the metadata store (C1/C2). Readers never block on a refresh
in progress: NodeForVolume always reads the most recently completed
snapshot via an atomic pointer swap.

# Absence vs failure

NodeForVolume returns an envelope.Outcome[NodeClient]:

  - Absent when no service-def currently advertises the volume (a normal,
    expected state during rebalancing) — VerifyBlobReference treats this as
    a recoverable negative result, per spec.md §4.6 step 4.
  - Failed when the service-def resolved to a node but dialing that node's
    endpoint errored — a real failure that must surface, not be swallowed.

# Usage

	dir := directory.New(metastoreStore, consensusLog, nodeclient.NewDialer(ca, "verify"))
	dir.Start(ctx, 5*time.Second)
	defer dir.Stop()

	outcome := dir.NodeForVolume(*ref.VolumeID)
	if outcome.IsAbsent() {
		return false
	}
	node, ok := outcome.Get()
	if !ok {
		return false
	}
*/
package directory
