// Package placement implements Placement (C9): a periodic picker of
// candidate (volume, node) targets for new blob-reference replicas. It
// scores live nodes by already-assigned volume count alone (fewer is
// better; declared capacity is not part of the score), filters out any node
// that is not ready, such as one NodeHealth (C11) has marked down, and runs as
// a ticked background loop over every under-replicated volume — the same
// shape as the teacher's scheduler/reconciler loops.
package placement
