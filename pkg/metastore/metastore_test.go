package metastore

import (
	"context"
	"testing"

	"github.com/cuemby/sfs/pkg/envelope"
)

func TestStore_StopBeforeStart(t *testing.T) {
	s := NewStore()
	if err := s.Stop(); err == nil {
		t.Error("Stop() on a never-started store: want error, got nil")
	}
}

func TestStore_CreateUpdateIndex_RejectsNotStarted(t *testing.T) {
	s := NewStore()
	err := s.CreateUpdateIndex(context.Background(), "sfs_v0_account", nil, NotSet, NotSet)
	if err == nil {
		t.Fatal("CreateUpdateIndex() on unstarted store: want error, got nil")
	}
}

func TestStore_CreateUpdateIndex_ValidatesPreconditions(t *testing.T) {
	s := &Store{state: Started}
	if err := s.CreateUpdateIndex(context.Background(), "idx", nil, 0, NotSet); err == nil {
		t.Error("shards=0: want error, got nil")
	}
	if err := s.CreateUpdateIndex(context.Background(), "idx", nil, NotSet, -1); err == nil {
		t.Error("replicas=-1: want error, got nil")
	}
}

func TestState_String(t *testing.T) {
	cases := map[State]string{
		Stopped:  "stopped",
		Starting: "starting",
		Started:  "started",
		Stopping: "stopping",
		State(99): "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}

func TestMappingsBody(t *testing.T) {
	doc := []byte(`{"mappings":{"default":{"properties":{"a":{"type":"keyword"}}}}}`)
	body, err := mappingsBody(doc)
	if err != nil {
		t.Fatalf("mappingsBody() error = %v", err)
	}
	if len(body) == 0 {
		t.Error("mappingsBody() returned empty body")
	}

	if _, err := mappingsBody([]byte(`{"mappings":{"other":{}}}`)); err == nil {
		t.Error("mappingsBody() with missing default type: want error, got nil")
	}
}

func TestCreateBody(t *testing.T) {
	body, err := createBody(3, 1, nil)
	if err != nil {
		t.Fatalf("createBody() error = %v", err)
	}
	if len(body) == 0 {
		t.Error("createBody() returned empty body")
	}

	mapping := []byte(`{"mappings":{"default":{"properties":{}}}}`)
	if _, err := createBody(1, 0, mapping); err != nil {
		t.Fatalf("createBody() with mapping error = %v", err)
	}
}

func TestExecute_ConflictMapsToAbsent(t *testing.T) {
	s := &Store{state: Started, executor: envelope.NewExecutor()}
	defer s.executor.Close()
	_, ok, err := s.Execute(context.Background(), func(ctx context.Context) (int, []byte, error) {
		return 409, []byte(`{}`), nil
	})
	if err != nil {
		t.Fatalf("Execute() on conflict: error = %v, want nil", err)
	}
	if ok {
		t.Error("Execute() on conflict: ok = true, want false")
	}
}

func TestExecute_TransportErrorSurfaces(t *testing.T) {
	s := &Store{state: Started, executor: envelope.NewExecutor()}
	defer s.executor.Close()
	_, ok, err := s.Execute(context.Background(), func(ctx context.Context) (int, []byte, error) {
		return 0, nil, context.DeadlineExceeded
	})
	if err == nil {
		t.Fatal("Execute() on transport error: want error, got nil")
	}
	if ok {
		t.Error("Execute() on transport error: ok = true, want false")
	}
}

func TestExecute_ShardIncompleteIsError(t *testing.T) {
	s := &Store{state: Started, executor: envelope.NewExecutor()}
	defer s.executor.Close()
	body := []byte(`{"_shards":{"total":3,"successful":2,"failed":1}}`)
	_, ok, err := s.Execute(context.Background(), func(ctx context.Context) (int, []byte, error) {
		return 200, body, nil
	})
	if err == nil {
		t.Fatal("Execute() with shard incomplete: want error, got nil")
	}
	if ok {
		t.Error("Execute() with shard incomplete: ok = true, want false")
	}
}

func TestExecute_Success(t *testing.T) {
	s := &Store{state: Started, executor: envelope.NewExecutor()}
	defer s.executor.Close()
	body := []byte(`{"_shards":{"total":1,"successful":1,"failed":0}}`)
	resp, ok, err := s.Execute(context.Background(), func(ctx context.Context) (int, []byte, error) {
		return 200, body, nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !ok {
		t.Fatal("Execute() ok = false, want true")
	}
	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
}
