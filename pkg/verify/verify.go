// Package verify implements VerifyBlobReference (C6): the read-path check
// that a BlobReference's recorded write-time integrity, its last read-time
// integrity, and a freshly recomputed digest from the owning node all agree.
package verify

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cuemby/sfs/pkg/directory"
	"github.com/cuemby/sfs/pkg/envelope"
	"github.com/cuemby/sfs/pkg/log"
	"github.com/cuemby/sfs/pkg/types"
)

// Directory is the narrow ClusterDirectory (C3) contract Verify depends on.
// *directory.ClusterDirectory satisfies it; tests supply a fake.
type Directory interface {
	NodeForVolume(volumeID string) envelope.Outcome[directory.NodeClient]
}

// Verify runs spec.md §4.6's algorithm against ref and returns exactly one
// boolean. It never returns an error: every failure mode — an unverifiable
// reference, an absent cluster-directory entry, a transport error from the
// node, a digest/length mismatch — is logged (when it represents something
// worth investigating) and folded into false. Verification is a best-effort
// query, never fatal to its caller.
func Verify(ctx context.Context, dir Directory, ref *types.BlobReference) bool {
	seg := ref.Segment()
	if seg == nil {
		return false
	}

	// Step 2: pre-filter. A reference whose segment lacks a write digest
	// but carries a write length is an invalid staged-write state.
	if !seg.HasWriteSHA512() && seg.HasWriteLength() {
		return false
	}

	// Step 3: verifiability filter (I1).
	if !ref.Verifiable() {
		return false
	}
	volumeID := *ref.VolumeID
	position := *ref.Position

	// Step 4: resolve the hosting node.
	outcome := dir.NodeForVolume(volumeID)
	if outcome.IsAbsent() {
		log.WithComponent("verify").Debug().Msg(fmt.Sprintf("volume %s: no service-def, treating as unverifiable", volumeID))
		return false
	}
	if err := outcome.Err(); err != nil {
		log.WithComponent("verify").Error().Msg(fmt.Sprintf("volume %s: resolve node: %v", volumeID, err))
		return false
	}
	node, ok := outcome.Get()
	if !ok || node == nil {
		return false
	}

	// Step 5: recompute the digest from the node.
	blob, present, err := node.Checksum(ctx, volumeID, position, nil, nil, types.SHA512)
	if err != nil {
		log.WithComponent("verify").Error().Msg(fmt.Sprintf("checksum %s@%d: %v", volumeID, position, err))
		return false
	}
	// Step 6: absent or nil result.
	if !present || blob == nil {
		return false
	}

	expDigest := blob.Digest(types.SHA512)
	expLength := blob.Length

	sha512Match := ref.HasReadSHA512() && bytes.Equal(ref.ReadSHA512, expDigest)
	lengthMatch := ref.HasReadLength() && *ref.ReadLength == expLength

	writeMatch := bytes.Equal(seg.WriteSHA512, expDigest) && seg.HasWriteLength() && *seg.WriteLength == expLength

	return sha512Match && lengthMatch && writeMatch
}
