package metastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/cuemby/sfs/pkg/catalog"
	"github.com/cuemby/sfs/pkg/log"
)

// applyCatalog provisions every fixed-name index in the catalog (C2) with
// its packaged mapping. service_def has no packaged mapping and is created
// with the store's dynamic default.
func (s *Store) applyCatalog(ctx context.Context) error {
	named := []struct {
		index    string
		resource string
	}{
		{catalog.Account(), catalog.AccountMapping},
		{catalog.Container(), catalog.ContainerMapping},
		{catalog.ContainerKey(), catalog.ContainerKeyMapping},
		{catalog.MasterKey(), catalog.MasterKeyMapping},
	}

	for _, n := range named {
		mapping, err := catalog.Mapping(n.resource)
		if err != nil {
			return err
		}
		if err := s.CreateUpdateIndex(ctx, n.index, mapping, NotSet, NotSet); err != nil {
			return fmt.Errorf("metastore: provision %s: %w", n.index, err)
		}
	}

	if err := s.CreateUpdateIndex(ctx, catalog.ServiceDef(), nil, NotSet, NotSet); err != nil {
		return fmt.Errorf("metastore: provision %s: %w", catalog.ServiceDef(), err)
	}
	return nil
}

// CreateUpdateIndex applies spec.md §4.1's createUpdateIndex algorithm: if
// the index exists, apply the mapping (and replica count, when shards/
// replicas != NotSet); otherwise create it with index.refresh_interval=1s,
// falling back to the store's configured defaults for any NotSet shard or
// replica count. Either path finishes with a wait-for-green scoped to the
// index.
func (s *Store) CreateUpdateIndex(ctx context.Context, index string, mapping []byte, shards, replicas int) error {
	if shards != NotSet && shards < 1 {
		return fmt.Errorf("metastore: shards must be NotSet or >= 1, got %d", shards)
	}
	if replicas != NotSet && replicas < 0 {
		return fmt.Errorf("metastore: replicas must be NotSet or >= 0, got %d", replicas)
	}

	client, err := s.clientOrErr()
	if err != nil {
		return err
	}

	existsReq := esapi.IndicesExistsRequest{Index: []string{index}}
	existsResp, err := existsReq.Do(ctx, client)
	if err != nil {
		return fmt.Errorf("metastore: check index exists: %w", err)
	}
	defer existsResp.Body.Close()
	exists := existsResp.StatusCode == 200

	if exists {
		if mapping != nil {
			body, err := mappingsBody(mapping)
			if err != nil {
				return err
			}
			putReq := esapi.IndicesPutMappingRequest{
				Index: []string{index},
				Body:  bytes.NewReader(body),
			}
			resp, err := putReq.Do(ctx, client)
			if err != nil {
				return fmt.Errorf("metastore: put mapping on %s: %w", index, err)
			}
			defer resp.Body.Close()
			if resp.IsError() {
				return fmt.Errorf("metastore: put mapping on %s failed: %s", index, resp.Status())
			}
		}
		if replicas != NotSet {
			settings := fmt.Sprintf(`{"index":{"number_of_replicas":%d}}`, replicas)
			settingsReq := esapi.IndicesPutSettingsRequest{
				Index: []string{index},
				Body:  bytes.NewReader([]byte(settings)),
			}
			resp, err := settingsReq.Do(ctx, client)
			if err != nil {
				return fmt.Errorf("metastore: update settings on %s: %w", index, err)
			}
			defer resp.Body.Close()
			if resp.IsError() {
				return fmt.Errorf("metastore: update settings on %s failed: %s", index, resp.Status())
			}
		}
	} else {
		s.mu.Lock()
		cfg := s.cfg
		s.mu.Unlock()

		effShards := shards
		if effShards == NotSet {
			effShards = cfg.DefaultShards
		}
		effReplicas := replicas
		if effReplicas == NotSet {
			effReplicas = cfg.DefaultReplicas
		}

		body, err := createBody(effShards, effReplicas, mapping)
		if err != nil {
			return err
		}
		createReq := esapi.IndicesCreateRequest{Index: index, Body: bytes.NewReader(body)}
		resp, err := createReq.Do(ctx, client)
		if err != nil {
			return fmt.Errorf("metastore: create index %s: %w", index, err)
		}
		defer resp.Body.Close()
		if resp.IsError() {
			return fmt.Errorf("metastore: create index %s failed: %s", index, resp.Status())
		}
	}

	if err := s.waitForGreen(ctx, index); err != nil {
		return fmt.Errorf("metastore: %s did not turn green: %w", index, err)
	}
	return nil
}

// DeleteIndex succeeds if the index existed and was acknowledged-deleted;
// IndexNotFound underneath is swallowed (spec.md's delete idempotence).
func (s *Store) DeleteIndex(ctx context.Context, index string) error {
	client, err := s.clientOrErr()
	if err != nil {
		return err
	}

	req := esapi.IndicesDeleteRequest{Index: []string{index}}
	resp, err := req.Do(ctx, client)
	if err != nil {
		return fmt.Errorf("metastore: delete index %s: %w", index, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		log.WithComponent("metastore").Debug().Msg(fmt.Sprintf("delete index %s: already absent", index))
		return nil
	}
	if resp.IsError() {
		return fmt.Errorf("metastore: delete index %s failed: %s", index, resp.Status())
	}
	return nil
}

// mappingsBody re-serializes a packaged {"mappings": {...}} document as the
// bare body esapi.IndicesPutMappingRequest expects (the "default"-typed
// properties object).
func mappingsBody(doc []byte) ([]byte, error) {
	var parsed struct {
		Mappings map[string]json.RawMessage `json:"mappings"`
	}
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, fmt.Errorf("metastore: parse mapping document: %w", err)
	}
	body, ok := parsed.Mappings[catalog.DefaultType]
	if !ok {
		return nil, fmt.Errorf("metastore: mapping document missing %q type", catalog.DefaultType)
	}
	return body, nil
}

// createBody builds the index-create request body: settings plus, when
// mapping is non-nil, the packaged mapping's "mappings" object verbatim.
func createBody(shards, replicas int, mapping []byte) ([]byte, error) {
	doc := map[string]interface{}{
		"settings": map[string]interface{}{
			"index": map[string]interface{}{
				"number_of_shards":   shards,
				"number_of_replicas": replicas,
				"refresh_interval":   "1s",
			},
		},
	}
	if mapping != nil {
		var parsed struct {
			Mappings json.RawMessage `json:"mappings"`
		}
		if err := json.Unmarshal(mapping, &parsed); err != nil {
			return nil, fmt.Errorf("metastore: parse mapping document: %w", err)
		}
		doc["mappings"] = parsed.Mappings
	}
	return json.Marshal(doc)
}
