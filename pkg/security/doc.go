/*
Package security provides the cluster Certificate Authority (C14 NodeSecurity)
used to secure inter-node RPC transport (C4 NodeClient/XNode) with mutual TLS.

This package implements a hierarchical CA: a long-lived, self-signed root
certificate signs short-lived per-node certificates used for both server and
client authentication on the gRPC transport. Secret-at-rest encryption here
is scoped narrowly to protecting the CA's own root private key — there is no
general-purpose secrets manager and no external KMS integration (spec.md §1
Non-goals).

# Architecture

	Root CA (self-signed)
	├── 10-year validity
	├── RSA 4096-bit key
	├── KeyUsage: CertSign, CRLSign
	└── Subject: CN=SFS Root CA, O={clusterID}

	Node Certificate (issued by root)
	├── 90-day validity
	├── RSA 2048-bit key
	├── ExtKeyUsage: ServerAuth, ClientAuth
	└── Subject: CN={role}-{nodeID}, OU={role}, O={clusterID}

	O is "sfs-cluster" when the CA was created with an empty cluster id.

## Cluster Encryption Key

The CA's root private key is encrypted at rest with AES-256-GCM under a
32-byte key derived once from the cluster's own identifier:

	clusterKey = SHA-256(clusterID)

Every node in the cluster derives the same key from the same identifier, so
no key material needs to cross the network; the key lives only in process
memory (DeriveKeyFromClusterID, SetClusterEncryptionKey).

# Usage

	clusterKey := security.DeriveKeyFromClusterID(clusterID)
	if err := security.SetClusterEncryptionKey(clusterKey); err != nil {
		return err
	}

	ca := security.NewCertAuthority(store, "sfs")
	if err := ca.Initialize(); err != nil { // first node in the cluster
		return err
	}
	if err := ca.SaveToStore(); err != nil {
		return err
	}

	tlsCert, err := ca.IssueNodeCertificate(nodeID, "volume", dnsNames, ipAddresses)
	if err != nil {
		return err
	}
	creds := credentials.NewTLS(&tls.Config{
		Certificates: []tls.Certificate{*tlsCert},
		ClientAuth:   tls.RequireAndVerifyClientCert,
	})

# Design Notes

GCM mode gives authenticated encryption: a modified ciphertext, wrong key, or
wrong nonce all fail decryption rather than silently returning garbage,
which matters for a private key that unlocks the whole cluster's trust.

The CA records each issued certificate in memory by node or client id
(GetCachedCert). Issuing never reads that record: every
IssueNodeCertificate or IssueClientCertificate call generates a fresh RSA
key pair, and pkg/nodeclient's NewDialer issues one on every dial.

# Integration Points

pkg/storage persists the encrypted CA (root cert plaintext, root key
encrypted); pkg/nodeclient's gRPC client and server both load node
certificates issued here via tls.Config for the C4 transport.
*/
package security
