// Package sandbox emulates the companion backend on localhost so the
// CLI can be exercised against deterministic data: a fixture-seeded
// pending set per workspace, the ai-settings resource, and the same
// gating the production server enforces.
package sandbox

import (
	"sync"

	"github.com/ledgerbird/companion-cli/internal/core"
)

// FailApplyKey marks a fixture event whose apply always fails, for
// demonstrating partial batch outcomes.
const FailApplyKey = "sandbox_fail_apply"

// workspaceState is one workspace's emulated backend state.
type workspaceState struct {
	mode    core.OperatingMode
	pending []core.ShadowEvent
}

// Store holds the emulated state for every workspace.
type Store struct {
	mu         sync.Mutex
	workspaces map[string]*workspaceState
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{workspaces: make(map[string]*workspaceState)}
}

// Load replaces all workspace state with the fixture contents.
func (s *Store) Load(f Fixtures) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workspaces = make(map[string]*workspaceState, len(f.Workspaces))
	for _, ws := range f.Workspaces {
		pending := make([]core.ShadowEvent, len(ws.Events))
		copy(pending, ws.Events)
		s.workspaces[ws.ID] = &workspaceState{mode: ws.Mode, pending: pending}
	}
}

// get lazily creates unknown workspaces so the sandbox is forgiving
// about ids. New workspaces start empty in shadow-only.
func (s *Store) get(workspaceID string) *workspaceState {
	if ws, ok := s.workspaces[workspaceID]; ok {
		return ws
	}
	ws := &workspaceState{
		mode: core.OperatingMode{
			AIMode:          core.AIModeShadowOnly,
			GlobalAIEnabled: true,
			AIEnabled:       true,
		},
	}
	s.workspaces[workspaceID] = ws
	return ws
}

// List returns up to limit pending events in their stored order.
func (s *Store) List(workspaceID string, limit int) []core.ShadowEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.get(workspaceID)
	n := len(ws.pending)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]core.ShadowEvent, n)
	copy(out, ws.pending[:n])
	return out
}

// Mode returns the workspace operating mode.
func (s *Store) Mode(workspaceID string) core.OperatingMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(workspaceID).mode
}

// PatchMode applies a partial settings change and returns the updated
// mode, which is what the endpoint echoes back.
func (s *Store) PatchMode(workspaceID string, patch core.ModePatch) core.OperatingMode {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.get(workspaceID)
	if patch.AIMode != nil {
		ws.mode.AIMode = *patch.AIMode
	}
	if patch.AIEnabled != nil {
		ws.mode.AIEnabled = *patch.AIEnabled
	}
	if patch.KillSwitch != nil {
		ws.mode.KillSwitch = *patch.KillSwitch
	}
	return ws.mode
}

// Apply removes one pending event. The gate is enforced server-side
// too: a disabled workspace refuses applies no matter what the caller
// checked locally.
func (s *Store) Apply(workspaceID, eventID string) (core.ShadowEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.get(workspaceID)
	if ws.mode.ApplyDisabled() {
		return core.ShadowEvent{}, core.ErrConflict("AI_APPLY_DISABLED",
			"applying proposals is disabled for this workspace")
	}
	i := indexOf(ws.pending, eventID)
	if i < 0 {
		return core.ShadowEvent{}, core.ErrNotFound("proposal", eventID)
	}
	ev := ws.pending[i]
	if ev.Metadata.Bool(FailApplyKey) {
		return core.ShadowEvent{}, core.ErrInternal("simulated ledger write failure")
	}
	ws.pending = append(ws.pending[:i], ws.pending[i+1:]...)
	return ev, nil
}

// Reject removes one pending event. Rejection is never gated.
func (s *Store) Reject(workspaceID, eventID string) (core.ShadowEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.get(workspaceID)
	i := indexOf(ws.pending, eventID)
	if i < 0 {
		return core.ShadowEvent{}, core.ErrNotFound("proposal", eventID)
	}
	ev := ws.pending[i]
	ws.pending = append(ws.pending[:i], ws.pending[i+1:]...)
	return ev, nil
}

func indexOf(events []core.ShadowEvent, eventID string) int {
	for i, ev := range events {
		if ev.ID == eventID {
			return i
		}
	}
	return -1
}
