package nodeclient

import (
	"context"
	"crypto/x509"
	"net"
	"os"
	"testing"
	"time"

	"github.com/cuemby/sfs/pkg/security"
	"github.com/cuemby/sfs/pkg/storage"
	"github.com/cuemby/sfs/pkg/types"
)

type fakeProvider struct {
	blob *types.DigestBlob
}

func (p *fakeProvider) Checksum(ctx context.Context, volumeID string, position uint64, offset, length *uint64, algo types.DigestAlgo) (*types.DigestBlob, bool, error) {
	if volumeID != "vol-1" {
		return nil, false, nil
	}
	return p.blob, true, nil
}

func newTestCA(t *testing.T) *security.CertAuthority {
	t.Helper()
	key := security.DeriveKeyFromClusterID("nodeclient-test-cluster")
	if err := security.SetClusterEncryptionKey(key); err != nil {
		t.Fatalf("SetClusterEncryptionKey: %v", err)
	}
	dir, err := os.MkdirTemp("", "sfs-nodeclient-ca-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, err := storage.NewBoltStore(dir)
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ca := security.NewCertAuthority(store, "test-cluster")
	if err := ca.Initialize(); err != nil {
		t.Fatalf("Initialize CA: %v", err)
	}
	return ca
}

func TestClient_Checksum_RoundTrip(t *testing.T) {
	ca := newTestCA(t)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := lis.Addr().String()

	serverCert, err := ca.IssueNodeCertificate("node-1", "volume", []string{"localhost"}, []net.IP{net.ParseIP("127.0.0.1")})
	if err != nil {
		t.Fatalf("IssueNodeCertificate: %v", err)
	}
	caCert, err := x509.ParseCertificate(ca.GetRootCACert())
	if err != nil {
		t.Fatalf("parse root CA cert: %v", err)
	}

	wantBlob := types.NewDigestBlob(42, 128, types.SHA512, []byte("deadbeef"))
	srv := NewServer(&fakeProvider{blob: wantBlob}, *serverCert, caCert)
	go srv.Serve(lis)
	defer srv.Stop()

	clientCert, err := ca.IssueClientCertificate("verify")
	if err != nil {
		t.Fatalf("IssueClientCertificate: %v", err)
	}

	client, err := Dial(addr, *clientCert, caCert)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	blob, ok, err := client.Checksum(ctx, "vol-1", 42, nil, nil, types.SHA512)
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	if !ok {
		t.Fatal("Checksum: want present, got absent")
	}
	if blob.Length != 128 || string(blob.Digest(types.SHA512)) != "deadbeef" {
		t.Errorf("Checksum result = %+v, want length=128 digest=deadbeef", blob)
	}
}

func TestClient_Checksum_Absent(t *testing.T) {
	ca := newTestCA(t)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := lis.Addr().String()

	serverCert, err := ca.IssueNodeCertificate("node-1", "volume", []string{"localhost"}, []net.IP{net.ParseIP("127.0.0.1")})
	if err != nil {
		t.Fatalf("IssueNodeCertificate: %v", err)
	}
	caCert, err := x509.ParseCertificate(ca.GetRootCACert())
	if err != nil {
		t.Fatalf("parse root CA cert: %v", err)
	}

	srv := NewServer(&fakeProvider{}, *serverCert, caCert)
	go srv.Serve(lis)
	defer srv.Stop()

	clientCert, err := ca.IssueClientCertificate("verify")
	if err != nil {
		t.Fatalf("IssueClientCertificate: %v", err)
	}
	client, err := Dial(addr, *clientCert, caCert)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	blob, ok, err := client.Checksum(ctx, "missing-volume", 1, nil, nil, types.SHA512)
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	if ok || blob != nil {
		t.Errorf("Checksum(missing volume) = (%v, %v), want (nil, false)", blob, ok)
	}
}
