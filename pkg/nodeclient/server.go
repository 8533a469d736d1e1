package nodeclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/cuemby/sfs/pkg/security"
	"github.com/cuemby/sfs/pkg/types"
)

// ChecksumProvider is the volume-local blob lookup a node process plugs in
// to answer Checksum RPCs. Reading the physical blob off disk is out of
// this module's scope (spec.md §1 Non-goals); this interface is the seam a
// volume-storage implementation satisfies.
type ChecksumProvider interface {
	Checksum(ctx context.Context, volumeID string, position uint64, offset, length *uint64, algo types.DigestAlgo) (*types.DigestBlob, bool, error)
}

type nodeServiceServer struct {
	provider ChecksumProvider
}

func (s *nodeServiceServer) Checksum(ctx context.Context, req *ChecksumRequest) (*ChecksumResponse, error) {
	algo := types.DigestAlgo(req.Algo)
	blob, ok, err := s.provider.Checksum(ctx, req.VolumeID, req.Position, req.Offset, req.Length, algo)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &ChecksumResponse{Present: false}, nil
	}
	return &ChecksumResponse{
		Present: true,
		Length:  blob.Length,
		Digest:  blob.Digest(algo),
	}, nil
}

// Server is the NodeService/XNode (C4) gRPC server, mirroring the teacher's
// api.Server: mTLS with client-certificate verification required.
type Server struct {
	grpc *grpc.Server
}

// NewServer builds a Server backed by provider, requiring and verifying
// client certificates signed by caCert.
func NewServer(provider ChecksumProvider, cert tls.Certificate, caCert *x509.Certificate) *Server {
	pool := x509.NewCertPool()
	pool.AddCert(caCert)

	tlsConfig := &tls.Config{
		ClientAuth:   tls.RequireAndVerifyClientCert,
		Certificates: []tls.Certificate{cert},
		ClientCAs:    pool,
		MinVersion:   tls.VersionTLS13,
	}
	creds := credentials.NewTLS(tlsConfig)
	grpcServer := grpc.NewServer(grpc.Creds(creds), grpc.UnaryInterceptor(requireIssuedRole))
	RegisterNodeServiceServer(grpcServer, &nodeServiceServer{provider: provider})

	return &Server{grpc: grpcServer}
}

// requireIssuedRole rejects any call whose client certificate carries no
// role in its OrganizationalUnit. mTLS chain verification (ClientCAs above)
// already proves the cert was signed by this cluster's CA; this adds a
// second check that it was signed through CertAuthority.IssueNodeCertificate
// or IssueClientCertificate specifically, both of which always stamp a
// role, rather than some other certificate this CA's key happened to sign.
func requireIssuedRole(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	p, ok := peer.FromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "nodeclient: no peer info")
	}
	tlsInfo, ok := p.AuthInfo.(credentials.TLSInfo)
	if !ok || len(tlsInfo.State.PeerCertificates) == 0 {
		return nil, status.Error(codes.Unauthenticated, "nodeclient: no peer certificate")
	}
	peerCert := tlsInfo.State.PeerCertificates[0]
	if security.RoleFromCertificate(peerCert) == "" {
		return nil, status.Error(codes.PermissionDenied, "nodeclient: peer certificate carries no role")
	}
	return handler(ctx, req)
}

// Start listens on addr and serves until Stop is called.
func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("nodeclient: listen on %s: %w", addr, err)
	}
	return s.grpc.Serve(lis)
}

// Serve runs the server on a caller-supplied listener, used by tests to
// serve on a loopback listener bound to an ephemeral port.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Stop gracefully stops the gRPC server.
func (s *Server) Stop() {
	s.grpc.GracefulStop()
}
