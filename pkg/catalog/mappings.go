package catalog

import (
	"embed"
	"fmt"
)

//go:embed mappings/*.json
var mappingFS embed.FS

// Mapping resource names, matching the packaged JSON files MetadataStore
// applies via createUpdateIndex.
const (
	AccountMapping      = "account"
	ContainerMapping    = "container"
	ContainerKeyMapping = "container_key"
	MasterKeyMapping    = "master_key"
	ObjectMapping       = "object"
)

// Mapping returns the raw mapping document for a packaged resource name
// (one of the *Mapping constants). service_def has no packaged mapping and
// is created with the store's dynamic default.
func Mapping(resource string) ([]byte, error) {
	data, err := mappingFS.ReadFile("mappings/" + resource + ".json")
	if err != nil {
		return nil, fmt.Errorf("catalog: unknown mapping resource %q: %w", resource, err)
	}
	return data, nil
}
