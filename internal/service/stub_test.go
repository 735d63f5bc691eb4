package service

import (
	"context"
	"sync"

	"github.com/ledgerbird/companion-cli/internal/core"
)

// stubAPI is an in-memory companion backend. Hooks fire at the start
// of each call so tests can block mid-flight or switch workspaces
// while a request is outstanding.
type stubAPI struct {
	mu sync.Mutex

	events []core.ShadowEvent
	mode   core.OperatingMode

	listCalls   int
	applyCalls  []string
	rejectCalls []string
	reasons     map[string]string
	patchCalls  []core.ModePatch

	failApply map[string]error
	failList  error
	failFetch error
	failPatch error

	echoOverride *core.OperatingMode

	listHook  func()
	applyHook func(eventID string)
	fetchHook func()
}

func newStubAPI(mode core.OperatingMode, events ...core.ShadowEvent) *stubAPI {
	return &stubAPI{
		events:    events,
		mode:      mode,
		reasons:   make(map[string]string),
		failApply: make(map[string]error),
	}
}

func (s *stubAPI) ListProposals(ctx context.Context, workspaceID string, limit int) ([]core.ShadowEvent, error) {
	if s.listHook != nil {
		s.listHook()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.failList != nil {
		return nil, s.failList
	}
	out := make([]core.ShadowEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

func (s *stubAPI) ApplyProposal(ctx context.Context, eventID, workspaceID string) (core.ApplyResult, error) {
	if s.applyHook != nil {
		s.applyHook(eventID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyCalls = append(s.applyCalls, eventID)
	if err := s.failApply[eventID]; err != nil {
		return core.ApplyResult{}, err
	}
	s.removeLocked(eventID)
	return core.ApplyResult{EventID: eventID, Status: "applied"}, nil
}

func (s *stubAPI) RejectProposal(ctx context.Context, eventID, workspaceID, reason string) (core.RejectResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectCalls = append(s.rejectCalls, eventID)
	s.reasons[eventID] = reason
	s.removeLocked(eventID)
	return core.RejectResult{EventID: eventID, Status: "rejected"}, nil
}

func (s *stubAPI) FetchSettings(ctx context.Context, workspaceID string) (core.OperatingMode, error) {
	if s.fetchHook != nil {
		s.fetchHook()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFetch != nil {
		return core.OperatingMode{}, s.failFetch
	}
	return s.mode, nil
}

func (s *stubAPI) UpdateSettings(ctx context.Context, workspaceID string, patch core.ModePatch) (core.OperatingMode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patchCalls = append(s.patchCalls, patch)
	if s.failPatch != nil {
		return core.OperatingMode{}, s.failPatch
	}
	if s.echoOverride != nil {
		return *s.echoOverride, nil
	}
	if patch.AIMode != nil {
		s.mode.AIMode = *patch.AIMode
	}
	if patch.AIEnabled != nil {
		s.mode.AIEnabled = *patch.AIEnabled
	}
	if patch.KillSwitch != nil {
		s.mode.KillSwitch = *patch.KillSwitch
	}
	return s.mode, nil
}

func (s *stubAPI) removeLocked(eventID string) {
	for i, ev := range s.events {
		if ev.ID == eventID {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return
		}
	}
}

func (s *stubAPI) applied() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.applyCalls))
	copy(out, s.applyCalls)
	return out
}

func (s *stubAPI) patches() []core.ModePatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ModePatch, len(s.patchCalls))
	copy(out, s.patchCalls)
	return out
}

// permissiveMode is a mode under which apply is allowed.
func permissiveMode() core.OperatingMode {
	return core.OperatingMode{
		AIMode:          core.AIModeSuggestOnly,
		GlobalAIEnabled: true,
		AIEnabled:       true,
	}
}

// shadowMode is fully enabled but still shadow-only.
func shadowMode() core.OperatingMode {
	return core.OperatingMode{
		AIMode:          core.AIModeShadowOnly,
		GlobalAIEnabled: true,
		AIEnabled:       true,
	}
}

func clusterEvent(id, group string) core.ShadowEvent {
	return core.ShadowEvent{
		ID:        id,
		EventType: "categorize_transaction",
		Metadata:  core.Envelope{"proposal_group": group},
	}
}

func riskyEvent(id, group, reason string) core.ShadowEvent {
	ev := clusterEvent(id, group)
	ev.HumanInTheLoop = core.Envelope{"risk_reasons": []any{reason}}
	return ev
}
