// Package metastore wraps the external indexed document store (C1
// MetadataStore) used as the system of record for accounts, containers,
// their encryption keys, and object/version/segment/blob-reference trees.
package metastore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/cuemby/sfs/pkg/envelope"
	"github.com/cuemby/sfs/pkg/log"
)

// NotSet is the sentinel the caller passes for shards/replicas to mean "use
// the component default" in CreateUpdateIndex.
const NotSet = -1

// State is the lifecycle state of the store's connection to the external
// document cluster.
type State int

const (
	Stopped State = iota
	Starting
	Started
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Started:
		return "started"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Config configures Store.Start.
type Config struct {
	// DiscoveryHosts are the HTTP endpoints of the external document store.
	DiscoveryHosts []string
	ClusterName    string
	NodeName       string

	DefaultShards   int
	DefaultReplicas int

	IndexTimeout   time.Duration
	GetTimeout     time.Duration
	DeleteTimeout  time.Duration
	SearchTimeout  time.Duration
	ScrollTimeout  time.Duration
	AdminTimeout   time.Duration
}

// DefaultConfig returns the timeout defaults from spec.md §4.1.
func DefaultConfig(hosts []string) Config {
	return Config{
		DiscoveryHosts:  hosts,
		ClusterName:     "sfs",
		DefaultShards:   1,
		DefaultReplicas: 0,
		IndexTimeout:    500 * time.Millisecond,
		GetTimeout:      500 * time.Millisecond,
		DeleteTimeout:   500 * time.Millisecond,
		SearchTimeout:   5 * time.Second,
		ScrollTimeout:   120 * time.Second,
		AdminTimeout:    30 * time.Second,
	}
}

// Store is a single external-document-store connection guarded by a
// compare-and-set lifecycle (spec.md §4.1: Stopped -> Starting -> Started ->
// Stopping -> Stopped). Start is idempotent only through the gate: a second
// concurrent caller observes ErrWrongState rather than silently joining the
// first caller's start.
type Store struct {
	mu       sync.Mutex
	state    State
	cfg      Config
	client   *elasticsearch.Client
	executor *envelope.Executor
}

// ErrWrongState is returned when an operation is attempted from a lifecycle
// state that does not permit it.
var ErrWrongState = errors.New("metastore: operation not valid in current state")

// NewStore creates an unstarted Store.
func NewStore() *Store {
	return &Store{state: Stopped}
}

func (s *Store) transition(from, to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return false
	}
	s.state = to
	return true
}

func (s *Store) setState(to State) {
	s.mu.Lock()
	s.state = to
	s.mu.Unlock()
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start connects to the external index cluster, waits for the cluster to
// turn green, and — when isMaster is true — applies the fixed mapping set
// (C2 IndexCatalog) to every catalog index.
func (s *Store) Start(ctx context.Context, cfg Config, isMaster bool) error {
	if !s.transition(Stopped, Starting) {
		return fmt.Errorf("%w: Start from %s", ErrWrongState, s.State())
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.DiscoveryHosts,
	})
	if err != nil {
		s.setState(Stopped)
		return fmt.Errorf("metastore: new client: %w", err)
	}

	s.mu.Lock()
	s.cfg = cfg
	s.client = client
	s.executor = envelope.NewExecutor()
	s.mu.Unlock()

	if err := s.waitForGreen(ctx, ""); err != nil {
		s.setState(Stopped)
		return fmt.Errorf("metastore: cluster did not turn green: %w", err)
	}

	if isMaster {
		if err := s.applyCatalog(ctx); err != nil {
			s.setState(Stopped)
			return fmt.Errorf("metastore: apply catalog: %w", err)
		}
	}

	s.setState(Started)
	log.WithComponent("metastore").Info().Msg("metastore started")
	return nil
}

// Stop closes the underlying client under the same CAS discipline as Start.
func (s *Store) Stop() error {
	if !s.transition(Started, Stopping) {
		return fmt.Errorf("%w: Stop from %s", ErrWrongState, s.State())
	}
	s.mu.Lock()
	s.client = nil
	executor := s.executor
	s.executor = nil
	s.mu.Unlock()
	if executor != nil {
		executor.Close()
	}
	s.setState(Stopped)
	log.WithComponent("metastore").Info().Msg("metastore stopped")
	return nil
}

// clientOrErr returns the live ES client, or ErrWrongState if the store
// isn't started.
func (s *Store) clientOrErr() (*elasticsearch.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Started {
		return nil, fmt.Errorf("%w: not started", ErrWrongState)
	}
	return s.client, nil
}

// executorOrErr returns the Store's RequestEnvelope executor, or
// ErrWrongState if the store isn't started.
func (s *Store) executorOrErr() (*envelope.Executor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Started {
		return nil, fmt.Errorf("%w: not started", ErrWrongState)
	}
	return s.executor, nil
}

// waitForGreen retries up to 10 times with exponential backoff
// delayMs = 2^attempt * 100, capped at 2s per attempt (envelope.Retry).
func (s *Store) waitForGreen(ctx context.Context, index string) error {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	if client == nil {
		return fmt.Errorf("metastore: no client")
	}

	req := esapi.ClusterHealthRequest{WaitForStatus: "green"}
	if index != "" {
		req.Index = []string{index}
	}

	attempt := 0
	err := envelope.Retry(ctx, envelope.DefaultRetryConfig(), func(attemptCtx context.Context) error {
		defer func() { attempt++ }()
		resp, err := req.Do(attemptCtx, client)
		if err != nil {
			log.WithComponent("metastore").Debug().Msg(fmt.Sprintf("waitForGreen attempt %d failed: %v", attempt, err))
			return err
		}
		defer resp.Body.Close()
		if resp.IsError() {
			err := fmt.Errorf("cluster health returned status %d", resp.StatusCode)
			log.WithComponent("metastore").Debug().Msg(fmt.Sprintf("waitForGreen attempt %d failed: %v", attempt, err))
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("metastore: waitForGreen exhausted retries: %w", err)
	}
	return nil
}
