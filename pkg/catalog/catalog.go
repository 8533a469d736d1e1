// Package catalog declares the fixed set of logical indices MetadataStore
// (pkg/metastore) creates and the mapping documents it applies to them (C2
// IndexCatalog). The package is pure naming: it holds no connection to the
// store and performs no I/O of its own.
package catalog

import "strings"

// Prefix is the fixed constant namespacing every index SFS creates. It
// appears in persisted data; treat it as an external interface, never as an
// internal implementation detail to be changed casually.
const Prefix = "sfs_v0_"

// DefaultType is the mapping type name used for every index (a holdover from
// the single-type-per-index era of the underlying document store).
const DefaultType = "default"

const objectsSuffix = "_objects"

// Account is the account index name.
func Account() string { return Prefix + "account" }

// Container is the container index name.
func Container() string { return Prefix + "container" }

// ContainerKey is the per-container encryption-key index name.
func ContainerKey() string { return Prefix + "container_key" }

// MasterKey is the cluster master-key index name.
func MasterKey() string { return Prefix + "master_key" }

// ServiceDef is the volume-placement index name; ConsensusLog (C8) writes
// it, ClusterDirectory (C3) reads it.
func ServiceDef() string { return Prefix + "service_def" }

// Object returns the per-container object index name. Every container gets
// its own object index so that deleting a container can drop the whole
// index rather than scan-deleting member documents.
func Object(container string) string { return Prefix + container + objectsSuffix }

// IsObjectIndex reports whether name is one of the per-container object
// indices created by Object.
func IsObjectIndex(name string) bool {
	return strings.HasPrefix(name, Prefix) && strings.HasSuffix(name, objectsSuffix)
}
