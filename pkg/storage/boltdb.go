package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/cuemby/sfs/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketNodes       = []byte("nodes")
	bucketServiceDefs = []byte("service_defs")
	bucketVolumes     = []byte("volumes")
	bucketCA          = []byte("ca")
)

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "sfs.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketNodes,
			bucketServiceDefs,
			bucketVolumes,
			bucketCA,
		}

		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Node operations
func (s *BoltStore) CreateNode(node *types.Node) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		data, err := json.Marshal(node)
		if err != nil {
			return err
		}
		return b.Put([]byte(node.ID), data)
	})
}

func (s *BoltStore) GetNode(id string) (*types.Node, error) {
	var node types.Node
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("node not found: %s", id)
		}
		return json.Unmarshal(data, &node)
	})
	return &node, err
}

func (s *BoltStore) ListNodes() ([]*types.Node, error) {
	var nodes []*types.Node
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		return b.ForEach(func(k, v []byte) error {
			var node types.Node
			if err := json.Unmarshal(v, &node); err != nil {
				return err
			}
			nodes = append(nodes, &node)
			return nil
		})
	})
	return nodes, err
}

func (s *BoltStore) UpdateNode(node *types.Node) error {
	return s.CreateNode(node) // upsert
}

func (s *BoltStore) DeleteNode(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		return b.Delete([]byte(id))
	})
}

// ServiceDef operations, keyed by VolumeID
func (s *BoltStore) CreateServiceDef(def *types.ServiceDef) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketServiceDefs)
		data, err := json.Marshal(def)
		if err != nil {
			return err
		}
		return b.Put([]byte(def.VolumeID), data)
	})
}

func (s *BoltStore) GetServiceDef(volumeID string) (*types.ServiceDef, error) {
	var def types.ServiceDef
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketServiceDefs)
		data := b.Get([]byte(volumeID))
		if data == nil {
			return fmt.Errorf("service def not found: %s", volumeID)
		}
		return json.Unmarshal(data, &def)
	})
	return &def, err
}

func (s *BoltStore) ListServiceDefs() ([]*types.ServiceDef, error) {
	var defs []*types.ServiceDef
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketServiceDefs)
		return b.ForEach(func(k, v []byte) error {
			var def types.ServiceDef
			if err := json.Unmarshal(v, &def); err != nil {
				return err
			}
			defs = append(defs, &def)
			return nil
		})
	})
	return defs, err
}

func (s *BoltStore) UpdateServiceDef(def *types.ServiceDef) error {
	return s.CreateServiceDef(def) // upsert
}

func (s *BoltStore) DeleteServiceDef(volumeID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketServiceDefs)
		return b.Delete([]byte(volumeID))
	})
}

// Volume operations
func (s *BoltStore) CreateVolume(volume *types.Volume) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketVolumes)
		data, err := json.Marshal(volume)
		if err != nil {
			return err
		}
		return b.Put([]byte(volume.ID), data)
	})
}

func (s *BoltStore) GetVolume(id string) (*types.Volume, error) {
	var volume types.Volume
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketVolumes)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("volume not found: %s", id)
		}
		return json.Unmarshal(data, &volume)
	})
	return &volume, err
}

func (s *BoltStore) ListVolumes() ([]*types.Volume, error) {
	var volumes []*types.Volume
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketVolumes)
		return b.ForEach(func(k, v []byte) error {
			var volume types.Volume
			if err := json.Unmarshal(v, &volume); err != nil {
				return err
			}
			volumes = append(volumes, &volume)
			return nil
		})
	})
	return volumes, err
}

func (s *BoltStore) DeleteVolume(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketVolumes)
		return b.Delete([]byte(id))
	})
}

// Certificate Authority operations
func (s *BoltStore) SaveCA(data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCA)
		// Use fixed key "ca" for the CA data
		return b.Put([]byte("ca"), data)
	})
}

func (s *BoltStore) GetCA() ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCA)
		data = b.Get([]byte("ca"))
		if data == nil {
			return fmt.Errorf("CA not found")
		}
		// Make a copy since BoltDB data is only valid during the transaction
		dataCopy := make([]byte, len(data))
		copy(dataCopy, data)
		data = dataCopy
		return nil
	})
	return data, err
}
