// Package service implements the review engine: the workspace-scoped
// operating-mode store, the pending proposal queue, and the approval
// workflow that gates every apply behind the current mode.
package service

import (
	"context"
	"sync"

	"github.com/ledgerbird/companion-cli/internal/core"
)

// ModeStore holds the authoritative operating mode for one workspace.
// State only changes when the server confirms it: Fetch and Patch both
// replace the cache with the server echo, and nothing is mutated
// optimistically. The zero state gates apply until the first
// successful fetch.
type ModeStore struct {
	api core.SettingsAPI

	mu          sync.RWMutex
	workspaceID string
	mode        core.OperatingMode
	loaded      bool
	generation  uint64
}

// NewModeStore creates a store bound to a workspace.
func NewModeStore(api core.SettingsAPI, workspaceID string) *ModeStore {
	return &ModeStore{api: api, workspaceID: workspaceID}
}

// Workspace returns the bound workspace id.
func (s *ModeStore) Workspace() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workspaceID
}

// SetWorkspace rebinds the store and drops the cached mode. In-flight
// fetches for the old workspace resolve as stale and are discarded.
func (s *ModeStore) SetWorkspace(workspaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workspaceID == workspaceID {
		return
	}
	s.workspaceID = workspaceID
	s.mode = core.OperatingMode{}
	s.loaded = false
	s.generation++
}

// Fetch loads the mode from the server and replaces the cache.
func (s *ModeStore) Fetch(ctx context.Context) (core.OperatingMode, error) {
	s.mu.RLock()
	gen, ws := s.generation, s.workspaceID
	s.mu.RUnlock()

	mode, err := s.api.FetchSettings(ctx, ws)
	if err != nil {
		return core.OperatingMode{}, err
	}
	return s.commit(gen, mode)
}

// Patch sends a partial settings change and replaces the cache with
// the server's echoed state. The echo is what callers get back; the
// patch itself is never trusted.
func (s *ModeStore) Patch(ctx context.Context, patch core.ModePatch) (core.OperatingMode, error) {
	s.mu.RLock()
	gen, ws := s.generation, s.workspaceID
	s.mu.RUnlock()

	mode, err := s.api.UpdateSettings(ctx, ws, patch)
	if err != nil {
		return core.OperatingMode{}, err
	}
	return s.commit(gen, mode)
}

func (s *ModeStore) commit(gen uint64, mode core.OperatingMode) (core.OperatingMode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return core.OperatingMode{}, core.ErrState(core.CodeStaleWorkspace,
			"workspace changed while the settings request was in flight")
	}
	s.mode = mode
	s.loaded = true
	return mode, nil
}

// Current returns the cached mode and whether a server state has been
// loaded at all.
func (s *ModeStore) Current() (core.OperatingMode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode, s.loaded
}

// ApplyDisabled reports whether apply operations are gated right now.
// An unloaded store gates apply; the gate only opens on server-confirmed
// state.
func (s *ModeStore) ApplyDisabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return true
	}
	return s.mode.ApplyDisabled()
}

// BlockedReason explains why apply is gated, or "" when it is not.
func (s *ModeStore) BlockedReason() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return "operating mode not loaded yet"
	}
	return s.mode.BlockedReason()
}
