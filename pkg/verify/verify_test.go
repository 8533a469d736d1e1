package verify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/cuemby/sfs/pkg/directory"
	"github.com/cuemby/sfs/pkg/envelope"
	"github.com/cuemby/sfs/pkg/types"
)

type fakeDirectory struct {
	outcome envelope.Outcome[directory.NodeClient]
}

func (f *fakeDirectory) NodeForVolume(volumeID string) envelope.Outcome[directory.NodeClient] {
	return f.outcome
}

type fakeNode struct {
	blob  *types.DigestBlob
	ok    bool
	err   error
	calls int
}

func (f *fakeNode) Checksum(ctx context.Context, volumeID string, position uint64, offset, length *uint64, algo types.DigestAlgo) (*types.DigestBlob, bool, error) {
	f.calls++
	return f.blob, f.ok, f.err
}

func verifiableRef(volumeID string, position uint64, readDigest []byte, readLen uint64) *types.BlobReference {
	ref := &types.BlobReference{
		VolumeID:   &volumeID,
		Position:   &position,
		ReadSHA512: readDigest,
		ReadLength: &readLen,
	}
	wl := readLen
	seg := &types.Segment{
		WriteSHA512: readDigest,
		WriteLength: &wl,
	}
	ref.SetSegment(seg)
	return ref
}

func TestVerify_AllMatch(t *testing.T) {
	digest := bytes.Repeat([]byte("deadbeef"), 8) // 64 bytes, a full SHA-512 digest
	ref := verifiableRef("vol-1", 10, digest, 128)
	node := &fakeNode{blob: types.NewDigestBlob(10, 128, types.SHA512, digest), ok: true}
	dir := &fakeDirectory{outcome: envelope.Present[directory.NodeClient](node)}

	if !Verify(context.Background(), dir, ref) {
		t.Fatal("Verify() = false, want true for matching digests/lengths")
	}
}

func TestVerify_DigestMismatch(t *testing.T) {
	ref := verifiableRef("vol-1", 10, bytes.Repeat([]byte("a"), 64), 128)
	node := &fakeNode{blob: types.NewDigestBlob(10, 128, types.SHA512, bytes.Repeat([]byte("b"), 64)), ok: true}
	dir := &fakeDirectory{outcome: envelope.Present[directory.NodeClient](node)}

	if Verify(context.Background(), dir, ref) {
		t.Fatal("Verify() = true, want false on digest mismatch")
	}
}

func TestVerify_LengthMismatch(t *testing.T) {
	digest := bytes.Repeat([]byte("deadbeef"), 8)
	ref := verifiableRef("vol-1", 10, digest, 128)
	node := &fakeNode{blob: types.NewDigestBlob(10, 256, types.SHA512, digest), ok: true}
	dir := &fakeDirectory{outcome: envelope.Present[directory.NodeClient](node)}

	if Verify(context.Background(), dir, ref) {
		t.Fatal("Verify() = true, want false on length mismatch")
	}
}

func TestVerify_UnverifiableMissingVolumeID(t *testing.T) {
	pos := uint64(5)
	ref := &types.BlobReference{Position: &pos}
	ref.SetSegment(&types.Segment{})

	if Verify(context.Background(), &fakeDirectory{}, ref) {
		t.Fatal("Verify() on reference without volumeId: want false")
	}
}

func TestVerify_AbsentDirectoryEntry(t *testing.T) {
	digest := []byte("deadbeef")
	ref := verifiableRef("vol-1", 10, digest, 128)
	dir := &fakeDirectory{outcome: envelope.Absent[directory.NodeClient]()}

	if Verify(context.Background(), dir, ref) {
		t.Fatal("Verify() with no service-def: want false")
	}
}

func TestVerify_DirectoryResolveError(t *testing.T) {
	digest := []byte("deadbeef")
	ref := verifiableRef("vol-1", 10, digest, 128)
	dir := &fakeDirectory{outcome: envelope.Failed[directory.NodeClient](errors.New("dial refused"))}

	if Verify(context.Background(), dir, ref) {
		t.Fatal("Verify() with dial failure: want false")
	}
}

func TestVerify_ChecksumTransportError(t *testing.T) {
	digest := []byte("deadbeef")
	ref := verifiableRef("vol-1", 10, digest, 128)
	node := &fakeNode{err: errors.New("rpc failed")}
	dir := &fakeDirectory{outcome: envelope.Present[directory.NodeClient](node)}

	if Verify(context.Background(), dir, ref) {
		t.Fatal("Verify() with checksum transport error: want false")
	}
}

func TestVerify_ChecksumAbsentBlob(t *testing.T) {
	digest := []byte("deadbeef")
	ref := verifiableRef("vol-1", 10, digest, 128)
	node := &fakeNode{ok: false}
	dir := &fakeDirectory{outcome: envelope.Present[directory.NodeClient](node)}

	if Verify(context.Background(), dir, ref) {
		t.Fatal("Verify() with absent blob at coordinate: want false")
	}
}

func TestVerify_PreFilterRejectsMissingWriteDigestWithLength(t *testing.T) {
	volumeID := "vol-1"
	position := uint64(10)
	wl := uint64(128)
	ref := &types.BlobReference{
		VolumeID:   &volumeID,
		Position:   &position,
		ReadSHA512: []byte("deadbeef"),
		ReadLength: &wl,
	}
	ref.SetSegment(&types.Segment{WriteSHA512: nil, WriteLength: &wl})

	if Verify(context.Background(), &fakeDirectory{}, ref) {
		t.Fatal("Verify() with write length but no write digest: want false")
	}
}

func TestVerify_NoPartialCreditForLengthOnlyMatch(t *testing.T) {
	digest := bytes.Repeat([]byte("deadbeef"), 8)
	wrongDigest := bytes.Repeat([]byte("cafebabe"), 8)
	volumeID := "vol-1"
	position := uint64(10)
	wl := uint64(128)
	ref := &types.BlobReference{
		VolumeID:   &volumeID,
		Position:   &position,
		ReadSHA512: wrongDigest,
		ReadLength: &wl,
	}
	ref.SetSegment(&types.Segment{WriteSHA512: digest, WriteLength: &wl})
	node := &fakeNode{blob: types.NewDigestBlob(10, 128, types.SHA512, digest), ok: true}
	dir := &fakeDirectory{outcome: envelope.Present[directory.NodeClient](node)}

	if Verify(context.Background(), dir, ref) {
		t.Fatal("Verify() must not return true on length match alone")
	}
}
