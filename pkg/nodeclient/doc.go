/*
Package nodeclient implements NodeClient/XNode (C4): the mTLS gRPC
transport VerifyBlobReference (C6) uses to ask a volume-hosting node for a
blob's checksum.

# No generated stubs

There is no protoc toolchain available to this build, so NodeService has no
generated .pb.go file. Instead this package registers a gRPC codec
("json", codec.go) and hand-builds the single-method grpc.ServiceDesc
(service.go) that protoc would otherwise emit — the wire format is JSON
rather than protobuf, carried over the same gRPC framing, flow control, and
mTLS transport security the teacher's proto-based API uses.

# Client / Server

Client.Checksum implements spec.md §4.4's absent-vs-error contract
directly: a (nil, false, nil) result means "no such blob at that
coordinate"; a non-nil error means the RPC itself failed. Server wraps a
caller-supplied ChecksumProvider — the volume-local blob store, which is
out of this module's scope (spec.md §1 Non-goals) — so this package only
owns the wire contract, not physical storage.

Both sides load certificates from pkg/security's CertAuthority (C14),
mirroring the teacher's client.go/api/server.go mTLS setup.

# Usage

	dialer := nodeclient.NewDialer(ca, "verify")
	dir := directory.New(metastoreStore, consensusLog, dialer)

	srv := nodeclient.NewServer(volumeStore, nodeCert, rootCACert)
	go srv.Start(":9443")
*/
package nodeclient
