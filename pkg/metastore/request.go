package metastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/cuemby/sfs/pkg/envelope"
)

// Client returns the live document-store client for callers that need raw
// esapi access Execute/Search don't cover (e.g. the cat-indices listing in
// pkg/scrub). Returns ErrWrongState if the store isn't started.
func (s *Store) Client() (*elasticsearch.Client, error) {
	return s.clientOrErr()
}

func newSearchRequest(index string, body []byte) esapi.SearchRequest {
	req := esapi.SearchRequest{Index: []string{index}}
	if body != nil {
		req.Body = bytes.NewReader(body)
	}
	return req
}

func readAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}

// Response is the normalized outcome of Execute: a document-store response
// that has already passed the shard-success check (I5).
type Response struct {
	StatusCode int
	Body       []byte
}

// conflictStatus marks the HTTP statuses the underlying store uses for the
// two benign write-class conflicts spec.md I6 requires mapping to absence:
// document-already-exists (409 on a create-only index op) and
// version-conflict (409 on a versioned update).
const conflictStatus = 409

// shardsInfo is the subset of an ES write response this package inspects
// for I5 (totalShards == successfulShards).
type shardsInfo struct {
	Shards *struct {
		Total      int `json:"total"`
		Successful int `json:"successful"`
		Failed     int `json:"failed"`
	} `json:"_shards"`
	Acknowledged *bool `json:"acknowledged"`
}

// rawResponse is the unprocessed outcome of the blocking esapi call Execute
// dispatches through the Store's RequestEnvelope executor.
type rawResponse struct {
	statusCode int
	body       []byte
}

// Execute submits an already-built request function, runs it on a
// background goroutine and trampolines its result back onto the Store's
// RequestEnvelope executor (C7) before applying the I5/I6 shard-success and
// conflict-absence rules, and returns (response, true) on success, (nil,
// false) on a mapped benign conflict, or an error for anything else
// (including transport failures, which MUST surface rather than be mapped
// to absence).
//
// The request is supplied as a closure rather than a shared interface
// because the esapi request types have no common signature beyond Do;
// callers in pkg/directory and pkg/consensus build the specific esapi.*
// request and pass a thin closure invoking it.
func (s *Store) Execute(ctx context.Context, do func(ctx context.Context) (statusCode int, body []byte, err error)) (*Response, bool, error) {
	executor, err := s.executorOrErr()
	if err != nil {
		return nil, false, err
	}

	type outcome struct {
		resp rawResponse
		err  error
	}
	done := make(chan outcome, 1)

	envelope.Submit(ctx, executor, func(ctx context.Context) (rawResponse, error) {
		statusCode, body, err := do(ctx)
		return rawResponse{statusCode: statusCode, body: body}, err
	}, func(resp rawResponse, err error) {
		done <- outcome{resp: resp, err: err}
	})

	var o outcome
	select {
	case o = <-done:
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}

	if o.err != nil {
		return nil, false, fmt.Errorf("metastore: request transport error: %w", o.err)
	}
	statusCode, body := o.resp.statusCode, o.resp.body

	if statusCode == conflictStatus {
		return nil, false, nil
	}

	if statusCode >= 400 {
		return nil, false, fmt.Errorf("metastore: request failed with status %d: %s", statusCode, body)
	}

	var info shardsInfo
	if err := json.Unmarshal(body, &info); err == nil {
		if info.Shards != nil && info.Shards.Total != info.Shards.Successful {
			return nil, false, fmt.Errorf("metastore: shard incomplete: %d/%d succeeded", info.Shards.Successful, info.Shards.Total)
		}
		if info.Acknowledged != nil && !*info.Acknowledged {
			return nil, false, fmt.Errorf("metastore: admin request not acknowledged")
		}
	}

	return &Response{StatusCode: statusCode, Body: body}, true, nil
}

// Search runs a search request against index and decodes the hits' _source
// fields into out, which must be a pointer to a slice. It exists alongside
// Execute because search responses carry a hits array rather than the
// _shards/acknowledged envelope I5/I6 inspect; callers are pkg/directory
// (service_def scan) and pkg/scrub (one size-bounded fetch per object index).
func (s *Store) Search(ctx context.Context, index string, body map[string]interface{}, out interface{}) error {
	client, err := s.clientOrErr()
	if err != nil {
		return err
	}

	var buf []byte
	if body != nil {
		buf, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("metastore: encode search body: %w", err)
		}
	}

	resp, _, err := s.Execute(ctx, func(ctx context.Context) (int, []byte, error) {
		req := newSearchRequest(index, buf)
		r, err := req.Do(ctx, client)
		if err != nil {
			return 0, nil, err
		}
		defer r.Body.Close()
		b, readErr := readAll(r.Body)
		if readErr != nil {
			return r.StatusCode, nil, readErr
		}
		return r.StatusCode, b, nil
	})
	if err != nil {
		return fmt.Errorf("metastore: search %s: %w", index, err)
	}
	if resp == nil {
		return fmt.Errorf("metastore: search %s: no response", index)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return fmt.Errorf("metastore: decode search response: %w", err)
	}

	sources := make([]json.RawMessage, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		sources = append(sources, h.Source)
	}
	wrapped, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("metastore: re-encode search sources: %w", err)
	}
	if err := json.Unmarshal(wrapped, out); err != nil {
		return fmt.Errorf("metastore: decode search sources: %w", err)
	}
	return nil
}
