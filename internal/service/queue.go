package service

import (
	"context"
	"sync"

	"github.com/ledgerbird/companion-cli/internal/core"
)

// Queue holds the pending proposal set for one workspace. The set is
// replaced wholesale on Refresh and shrinks one event at a time as the
// server confirms apply and reject calls. Removal happens only after
// the server response, never before, so a proposal is never shown as
// settled when the mutation actually failed.
//
// Each mutation captures a generation stamp before its network call;
// if the workspace was switched while the call was in flight, the
// completion is discarded instead of touching the new workspace's set.
type Queue struct {
	api core.ProposalAPI

	mu          sync.RWMutex
	workspaceID string
	limit       int
	generation  uint64
	events      []core.ShadowEvent
	fetched     bool
}

// NewQueue creates a queue bound to a workspace. The limit caps the
// server-side fetch; zero means the client default.
func NewQueue(api core.ProposalAPI, workspaceID string, limit int) *Queue {
	return &Queue{api: api, workspaceID: workspaceID, limit: limit}
}

// Workspace returns the bound workspace id.
func (q *Queue) Workspace() string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.workspaceID
}

// SetWorkspace rebinds the queue, clears the pending set, and marks
// every in-flight completion stale.
func (q *Queue) SetWorkspace(workspaceID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.workspaceID == workspaceID {
		return
	}
	q.workspaceID = workspaceID
	q.events = nil
	q.fetched = false
	q.generation++
}

// Refresh refetches the full pending set. A refresh that resolves
// after a workspace switch is discarded.
func (q *Queue) Refresh(ctx context.Context) error {
	q.mu.RLock()
	gen, ws, limit := q.generation, q.workspaceID, q.limit
	q.mu.RUnlock()

	events, err := q.api.ListProposals(ctx, ws, limit)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.generation != gen {
		return core.ErrState(core.CodeStaleWorkspace,
			"workspace changed while the refresh was in flight")
	}
	q.events = events
	q.fetched = true
	return nil
}

// Events returns a copy of the pending set in fetch order.
func (q *Queue) Events() []core.ShadowEvent {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]core.ShadowEvent, len(q.events))
	copy(out, q.events)
	return out
}

// Clusters derives the cluster view of the pending set. It is a
// fresh computation on every call, never a cache.
func (q *Queue) Clusters() []core.Cluster {
	return core.BuildClusters(q.Events())
}

// Get returns the pending event with the given id.
func (q *Queue) Get(eventID string) (core.ShadowEvent, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	for _, ev := range q.events {
		if ev.ID == eventID {
			return ev, true
		}
	}
	return core.ShadowEvent{}, false
}

// Len returns the pending count.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.events)
}

// Loaded reports whether a fetch has completed for this workspace.
func (q *Queue) Loaded() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.fetched
}

// Apply asks the server to apply one pending proposal and, once the
// server confirms, removes it from whatever the pending set is at that
// moment. Applying an id that is not pending is a caller error and
// makes no network call.
func (q *Queue) Apply(ctx context.Context, eventID string) error {
	gen, ws, err := q.checkPending(eventID)
	if err != nil {
		return err
	}
	if _, err := q.api.ApplyProposal(ctx, eventID, ws); err != nil {
		return err
	}
	return q.settle(gen, eventID)
}

// Reject discards one pending proposal. Never gated by operating
// mode; rejection needs no write authority over the ledger.
func (q *Queue) Reject(ctx context.Context, eventID, reason string) error {
	gen, ws, err := q.checkPending(eventID)
	if err != nil {
		return err
	}
	if _, err := q.api.RejectProposal(ctx, eventID, ws, reason); err != nil {
		return err
	}
	return q.settle(gen, eventID)
}

func (q *Queue) checkPending(eventID string) (uint64, string, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	for _, ev := range q.events {
		if ev.ID == eventID {
			return q.generation, q.workspaceID, nil
		}
	}
	return 0, "", core.ErrNotFound("proposal", eventID)
}

// settle removes a confirmed event from the current pending set. A
// completion from before a workspace switch is reported stale and the
// new set is left alone.
func (q *Queue) settle(gen uint64, eventID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.generation != gen {
		return core.ErrState(core.CodeStaleWorkspace,
			"workspace changed while the mutation was in flight")
	}
	for i, ev := range q.events {
		if ev.ID == eventID {
			q.events = append(q.events[:i], q.events[i+1:]...)
			break
		}
	}
	return nil
}
