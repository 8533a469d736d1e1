// Package consensus implements ConsensusLog (C8): a Raft-replicated log of
// node and volume placement changes (register/deregister node, assign/
// unassign volume), applied to a local bbolt-backed Store and, on the
// leader, mirrored into the service_def index (C1) that ClusterDirectory
// (C3) refreshes itself from. Only the Raft leader accepts writes; a
// follower's Apply returns an error naming the current leader's address.
package consensus
