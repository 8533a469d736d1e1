/*
Package metastore wraps the external indexed document store (C1
MetadataStore) behind a small lifecycle and request surface: the system of
record for accounts, containers, their keys, and the object/version/segment/
blob-reference tree (C5), accessed through
github.com/elastic/go-elasticsearch/v8.

# Lifecycle

	Stopped -> Starting -> Started -> Stopping -> Stopped

Start and Stop transition under compare-and-set (Store.transition): a second
concurrent Start call while one is in flight observes ErrWrongState rather
than joining the first caller's attempt. Start on the master node also
provisions the fixed catalog index set (C2) via applyCatalog.

# Operations

  - CreateUpdateIndex: idempotent create-or-update, falling back to the
    store's configured default shard/replica counts when the caller passes
    NotSet, finishing with a wait-for-green scoped to that index.
  - DeleteIndex: idempotent; a 404 from the underlying store is swallowed.
  - Execute: normalizes any write/read action's response — shard-incomplete
    and not-acknowledged admin responses become errors (I5); the two
    benign write conflicts (document-already-exists, version-conflict) are
    mapped to a (nil, false, nil) "absent" result rather than an error (I6);
    transport failures always surface as an error.
  - waitForGreen: retries cluster/index health up to 10 times with backoff
    delayMs = 2^attempt * 100, capped at 2s per attempt.

# Usage

	store := metastore.NewStore()
	cfg := metastore.DefaultConfig([]string{"http://es-1:9200"})
	if err := store.Start(ctx, cfg, isMaster); err != nil {
		return err
	}
	defer store.Stop()

	resp, ok, err := store.Execute(ctx, func(ctx context.Context) (int, []byte, error) {
		req := esapi.IndexRequest{Index: catalog.Object("photos"), Body: bytes.NewReader(doc)}
		r, err := req.Do(ctx, client)
		if err != nil {
			return 0, nil, err
		}
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		return r.StatusCode, body, nil
	})

# Integration Points

pkg/catalog supplies index names and packaged mappings; pkg/directory reads
service_def documents written here by pkg/consensus; pkg/scrub scrolls
object indices (catalog.IsObjectIndex) through this store.
*/
package metastore
