package nodeclient

// ChecksumRequest is NodeService.Checksum's request message.
type ChecksumRequest struct {
	VolumeID string  `json:"volume_id"`
	Position uint64  `json:"position"`
	Offset   *uint64 `json:"offset,omitempty"`
	Length   *uint64 `json:"length,omitempty"`
	Algo     string  `json:"algo"`
}

// ChecksumResponse is NodeService.Checksum's response message. Present
// distinguishes "no such blob at that coordinate" from a populated result,
// per spec.md §4.4's absent-vs-error discipline — a transport-level error
// never reaches this struct at all, it surfaces as a gRPC status instead.
type ChecksumResponse struct {
	Present bool   `json:"present"`
	Length  uint64 `json:"length,omitempty"`
	Digest  []byte `json:"digest,omitempty"`
}
