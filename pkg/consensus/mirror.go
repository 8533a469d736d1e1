package consensus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/cuemby/sfs/pkg/catalog"
	"github.com/cuemby/sfs/pkg/types"
)

// clientSource is the narrow *metastore.Store dependency StoreMirror needs:
// raw client access for esapi requests that have no Execute/Search
// counterpart (Index, Delete by id). Declared as an interface rather than
// importing pkg/metastore's concrete type purely to document the seam.
type clientSource interface {
	Client() (*elasticsearch.Client, error)
}

// StoreMirror adapts *metastore.Store to ServiceDefMirror, projecting a
// committed ServiceDef into the service_def index (C1) that
// ClusterDirectory (C3) scans on refresh.
type StoreMirror struct {
	ms clientSource
}

// NewStoreMirror wraps ms (a *metastore.Store) as a ServiceDefMirror.
func NewStoreMirror(ms clientSource) *StoreMirror {
	return &StoreMirror{ms: ms}
}

// PutServiceDef indexes def under its VolumeID as the document id, with a
// synchronous refresh so an immediately following ClusterDirectory.Refresh
// observes it.
func (m *StoreMirror) PutServiceDef(ctx context.Context, def *types.ServiceDef) error {
	client, err := m.ms.Client()
	if err != nil {
		return fmt.Errorf("consensus: mirror client: %w", err)
	}

	body, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("consensus: encode service_def %s: %w", def.VolumeID, err)
	}

	req := esapi.IndexRequest{
		Index:      catalog.ServiceDef(),
		DocumentID: def.VolumeID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}
	resp, err := req.Do(ctx, client)
	if err != nil {
		return fmt.Errorf("consensus: index service_def %s: %w", def.VolumeID, err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("consensus: index service_def %s failed: %s", def.VolumeID, b)
	}
	return nil
}

// DeleteServiceDef removes the document for volumeID; a 404 (already
// absent) is treated as success, matching I6/P5's delete idempotence.
func (m *StoreMirror) DeleteServiceDef(ctx context.Context, volumeID string) error {
	client, err := m.ms.Client()
	if err != nil {
		return fmt.Errorf("consensus: mirror client: %w", err)
	}

	req := esapi.DeleteRequest{Index: catalog.ServiceDef(), DocumentID: volumeID, Refresh: "true"}
	resp, err := req.Do(ctx, client)
	if err != nil {
		return fmt.Errorf("consensus: delete service_def %s: %w", volumeID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == 404 {
		return nil
	}
	if resp.IsError() {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("consensus: delete service_def %s failed: %s", volumeID, b)
	}
	return nil
}
