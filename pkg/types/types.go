// Package types defines the domain model shared by every SFS package: the
// nested object/version/segment/blob-reference tree, the physical volume and
// node records that back the cluster directory, and the small transient
// value types exchanged between the verification and placement layers.
package types

import "time"

// NodeRole distinguishes cluster directory participants.
type NodeRole string

const (
	NodeRoleManager NodeRole = "manager"
	NodeRoleVolume  NodeRole = "volume" // hosts one or more Volumes
)

// NodeStatus mirrors the liveness signal NodeHealth (C11) feeds into ConsensusLog (C8).
type NodeStatus string

const (
	NodeStatusReady   NodeStatus = "ready"
	NodeStatusDown    NodeStatus = "down"
	NodeStatusUnknown NodeStatus = "unknown"
)

// Node is a cluster member identified by a routable endpoint; it may host
// any number of Volumes.
type Node struct {
	ID            string
	Role          NodeRole
	Endpoint      string // host:port for the NodeClient/XNode RPC transport
	Status        NodeStatus
	Labels        map[string]string
	LastHeartbeat time.Time
	CreatedAt     time.Time
}

// Volume is an abstract storage partition identified by a string id, owned
// by at most one primary node and zero or more replica nodes at any instant,
// as advertised by ServiceDef documents.
type Volume struct {
	ID       string
	Capacity int64 // declared byte capacity; Placement scoring does not read it
}

// ServiceDef is the cluster-directory's source document: it records which
// node currently hosts a volume as primary, and which nodes hold replicas.
// ConsensusLog (C8) is the only writer; ClusterDirectory (C3) is the reader.
type ServiceDef struct {
	VolumeID       string
	PrimaryNodeID  string
	ReplicaNodeIDs []string
	UpdatedAt      time.Time
}

// Object is identified by (AccountID, ContainerID, ObjectID) and owns an
// ordered set of Versions keyed by a monotonically increasing VersionID.
type Object struct {
	AccountID   string
	ContainerID string
	ObjectID    string
	Versions    []*Version
}

// Version owns an ordered list of Segments that concatenate to the
// user-visible object body.
type Version struct {
	VersionID int64
	Segments  []*Segment
}

// Segment carries the expected write integrity for the byte range it
// represents and owns one or more BlobReferences (replicas).
type Segment struct {
	Index          int
	WriteSHA512    []byte // 64 bytes when present; nil means unset
	WriteLength    *uint64
	BlobReferences []*BlobReference
}

const sha512Len = 64

// HasWriteSHA512 reports whether the write-side digest was recorded.
func (s *Segment) HasWriteSHA512() bool { return len(s.WriteSHA512) == sha512Len }

// HasWriteLength reports whether the write-side length was recorded.
func (s *Segment) HasWriteLength() bool { return s.WriteLength != nil }

// BlobReference locates one physical replica of a Segment on exactly one
// volume, at a byte position, plus the integrity fields recorded when the
// replica was last read back.
type BlobReference struct {
	VolumeID     *string
	Position     *uint64
	ReadSHA512   []byte
	ReadLength   *uint64
	Acknowledged bool

	segment *Segment // upward navigation only; never serialized, never owning
}

// Segment returns the owning segment, or nil for a detached reference built
// outside the object/version/segment tree (e.g. in tests).
func (r *BlobReference) Segment() *Segment { return r.segment }

// SetSegment attaches a reference to its owning segment. Used when assembling
// Object/Version/Segment/BlobReference trees so VerifyBlobReference can
// navigate ref -> segment without the caller threading the segment through
// separately.
func (r *BlobReference) SetSegment(seg *Segment) { r.segment = seg }

// Verifiable reports invariant I1: a reference is verifiable iff both its
// volume id and position are present.
func (r *BlobReference) Verifiable() bool {
	return r.VolumeID != nil && *r.VolumeID != "" && r.Position != nil
}

// HasReadSHA512 reports whether the read-side digest was recorded.
func (r *BlobReference) HasReadSHA512() bool { return len(r.ReadSHA512) == sha512Len }

// HasReadLength reports whether the read-side length was recorded.
func (r *BlobReference) HasReadLength() bool { return r.ReadLength != nil }

// DigestAlgo identifies a digest algorithm for NodeClient.Checksum.
type DigestAlgo string

// SHA512 is the only digest algorithm required by the core verification
// protocol (spec.md §6).
const SHA512 DigestAlgo = "SHA-512"

// DigestBlob is the transient result of a remote checksum RPC: the physical
// blob's length and its digest under one or more algorithms.
type DigestBlob struct {
	Position uint64
	Length   uint64
	digests  map[DigestAlgo][]byte
}

// NewDigestBlob builds a DigestBlob for a single algorithm, the common case
// for NodeClient.Checksum responses.
func NewDigestBlob(position, length uint64, algo DigestAlgo, digest []byte) *DigestBlob {
	return &DigestBlob{
		Position: position,
		Length:   length,
		digests:  map[DigestAlgo][]byte{algo: digest},
	}
}

// Digest returns the byte sequence for algo, or nil if this blob was not
// digested under it.
func (d *DigestBlob) Digest(algo DigestAlgo) []byte {
	if d == nil {
		return nil
	}
	return d.digests[algo]
}

// PlacementCandidate is one node Placement (C9) proposes as a replica target
// for a volume, along with the score it was ranked by.
type PlacementCandidate struct {
	VolumeID string
	NodeID   string
	Score    int64
}

// ScrubResult is the aggregate outcome of one Scrub (C10) pass across every
// object index. TotalChecked always equals VerifiedOK + VerifiedFailed +
// Unverifiable.
type ScrubResult struct {
	TotalChecked   int
	VerifiedOK     int
	VerifiedFailed int
	Unverifiable   int
	Duration       time.Duration
}
