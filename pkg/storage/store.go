package storage

import (
	"github.com/cuemby/sfs/pkg/types"
)

// Store defines the interface for cluster state storage: cluster membership
// (Node), the volume-to-node placement record ConsensusLog (C8) writes and
// ClusterDirectory (C3) reads (ServiceDef), declared volume capacity
// (Volume), and the cluster CA. This is implemented by BoltDB-backed storage.
type Store interface {
	// Nodes
	CreateNode(node *types.Node) error
	GetNode(id string) (*types.Node, error)
	ListNodes() ([]*types.Node, error)
	UpdateNode(node *types.Node) error
	DeleteNode(id string) error

	// ServiceDefs
	CreateServiceDef(def *types.ServiceDef) error
	GetServiceDef(volumeID string) (*types.ServiceDef, error)
	ListServiceDefs() ([]*types.ServiceDef, error)
	UpdateServiceDef(def *types.ServiceDef) error
	DeleteServiceDef(volumeID string) error

	// Volumes
	CreateVolume(volume *types.Volume) error
	GetVolume(id string) (*types.Volume, error)
	ListVolumes() ([]*types.Volume, error)
	DeleteVolume(id string) error

	// Certificate Authority
	SaveCA(data []byte) error
	GetCA() ([]byte, error)

	// Utility
	Close() error
}
