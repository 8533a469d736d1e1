/*
Package catalog declares the fixed index layout MetadataStore (pkg/metastore,
C1) provisions at startup (C2 IndexCatalog).

# Naming

	account            = Prefix + "account"
	container          = Prefix + "container"
	container_key      = Prefix + "container_key"
	master_key         = Prefix + "master_key"
	service_def        = Prefix + "service_def"
	object(container)  = Prefix + container + "_objects"

Prefix is the fixed constant "sfs_v0_". It is persisted in index names and
treated as an external interface: changing it breaks every existing cluster.

# Mappings

Mapping bodies for account, container, container_key, master_key, and object
are packaged JSON resources embedded at build time via go:embed and loaded
through Mapping(resource). service_def has no packaged mapping; MetadataStore
creates it with the store's dynamic default mapping.

# Usage

	idx := catalog.Account()
	body, err := catalog.Mapping(catalog.AccountMapping)
	if err != nil {
		return err
	}
	err = store.CreateUpdateIndex(ctx, idx, body, metastore.NotSet, metastore.NotSet)

	objIdx := catalog.Object("my-container")
	if catalog.IsObjectIndex(objIdx) {
		// scrub scroll loop picks this index up
	}

# Integration Points

pkg/metastore calls Mapping and the naming functions during index
provisioning; pkg/scrub iterates every index and filters with IsObjectIndex
to find the object indices it needs to scan.
*/
package catalog
