package nodeclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/cuemby/sfs/pkg/types"
)

// Client is a NodeClient/XNode (C4) gRPC client secured with mTLS,
// structured after the teacher's pkg/client.Client.
type Client struct {
	conn *grpc.ClientConn
}

// Dial opens an mTLS gRPC connection to a node's RPC endpoint using the
// caller's own node certificate and the cluster CA, following the teacher's
// connectWithMTLS shape.
func Dial(addr string, cert tls.Certificate, caCert *x509.Certificate) (*Client, error) {
	pool := x509.NewCertPool()
	pool.AddCert(caCert)

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		MinVersion:   tls.VersionTLS13,
	}

	creds := credentials.NewTLS(tlsConfig)
	conn, err := grpc.Dial(addr,
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(jsonCodecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("nodeclient: dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Checksum implements C4's core operation: reads the blob at
// (volumeId, position), optionally windowed by offset/length, and returns
// its length and digest under algo. The third return value distinguishes
// "no such blob at that coordinate" (false, nil error) from a transport
// failure (error), per spec.md §4.4.
func (c *Client) Checksum(ctx context.Context, volumeID string, position uint64, offset, length *uint64, algo types.DigestAlgo) (*types.DigestBlob, bool, error) {
	req := &ChecksumRequest{
		VolumeID: volumeID,
		Position: position,
		Offset:   offset,
		Length:   length,
		Algo:     string(algo),
	}
	resp := new(ChecksumResponse)
	if err := c.conn.Invoke(ctx, ChecksumMethod, req, resp); err != nil {
		return nil, false, fmt.Errorf("nodeclient: checksum %s@%d: %w", volumeID, position, err)
	}
	if !resp.Present {
		return nil, false, nil
	}
	return types.NewDigestBlob(position, resp.Length, algo, resp.Digest), true, nil
}
