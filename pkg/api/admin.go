// Package api implements AdminHTTP (C13): the node process's /health,
// /ready, /metrics, and /raft/join HTTP surface. Health and readiness reuse
// pkg/metrics' already-built component-health handlers rather than
// duplicating that logic; /raft/join decodes a ConsensusLog (C8) join
// request and adds the requesting node as a Raft voter when this node is
// the leader.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cuemby/sfs/pkg/consensus"
	"github.com/cuemby/sfs/pkg/log"
	"github.com/cuemby/sfs/pkg/metrics"
)

// Raft is the subset of ConsensusLog (C8) the join endpoint depends on.
type Raft interface {
	IsLeader() bool
	LeaderAddr() string
	AddVoter(nodeID, raftAddr string) error
}

// AdminHTTP serves the node's administrative HTTP surface.
type AdminHTTP struct {
	raft Raft
	mux  *http.ServeMux
}

// New creates an AdminHTTP server. raft may be nil for a node that hasn't
// started its ConsensusLog yet; /raft/join then always reports not-leader.
func New(raft Raft) *AdminHTTP {
	mux := http.NewServeMux()
	a := &AdminHTTP{raft: raft, mux: mux}

	mux.Handle("/health", metrics.HealthHandler())
	mux.Handle("/ready", metrics.ReadyHandler())
	mux.Handle("/live", metrics.LivenessHandler())
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/raft/join", a.joinHandler)

	return a
}

// Start runs the admin HTTP server on addr and blocks until the server
// errors.
func (a *AdminHTTP) Start(addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      a.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// Handler returns the HTTP handler, for embedding or for use with a
// caller-managed http.Server/listener in tests.
func (a *AdminHTTP) Handler() http.Handler { return a.mux }

type joinResponse struct {
	LeaderAddr string `json:"leader_addr,omitempty"`
	Error      string `json:"error,omitempty"`
}

// joinHandler decodes a consensus.JoinRequest and adds the requester as a
// Raft voter. Only the leader can service this request; a follower responds
// 421 (Misdirected Request) naming the current leader so the caller can
// retry there.
func (a *AdminHTTP) joinHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.raft == nil || !a.raft.IsLeader() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMisdirectedRequest)
		leader := ""
		if a.raft != nil {
			leader = a.raft.LeaderAddr()
		}
		_ = json.NewEncoder(w).Encode(joinResponse{LeaderAddr: leader, Error: "not leader"})
		return
	}

	var req consensus.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("decode join request: %v", err), http.StatusBadRequest)
		return
	}
	if req.NodeID == "" || req.RaftAddr == "" {
		http.Error(w, "node_id and raft_addr are required", http.StatusBadRequest)
		return
	}

	if err := a.raft.AddVoter(req.NodeID, req.RaftAddr); err != nil {
		log.WithComponent("api").Error().Msg(fmt.Sprintf("add voter %s: %v", req.NodeID, err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
