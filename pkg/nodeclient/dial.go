package nodeclient

import (
	"crypto/x509"
	"fmt"

	"github.com/cuemby/sfs/pkg/directory"
	"github.com/cuemby/sfs/pkg/security"
	"github.com/cuemby/sfs/pkg/types"
)

// NewDialer builds a directory.Dialer that issues a short-lived client
// certificate from ca for each dial and connects over mTLS. clientID
// identifies this process (e.g. "verify" or "scrub") in the issued
// certificate's subject, following the teacher's per-role client-cert
// convention.
func NewDialer(ca *security.CertAuthority, clientID string) directory.Dialer {
	return func(node *types.Node) (directory.NodeClient, error) {
		cert, err := ca.IssueClientCertificate(clientID)
		if err != nil {
			return nil, fmt.Errorf("nodeclient: issue client certificate: %w", err)
		}
		caCert, err := x509.ParseCertificate(ca.GetRootCACert())
		if err != nil {
			return nil, fmt.Errorf("nodeclient: parse root CA certificate: %w", err)
		}
		return Dial(node.Endpoint, *cert, caCert)
	}
}
