package events

// Event type constants for review events.
const (
	TypeProposalApplied  = "proposal_applied"
	TypeProposalRejected = "proposal_rejected"
	TypeApplyFailed      = "apply_failed"
	TypeClusterApproved  = "cluster_approved"
	TypeModeChanged      = "mode_changed"
	TypeQueueRefreshed   = "queue_refreshed"
)

// ProposalAppliedEvent is emitted when the server confirms a proposal
// was applied to the ledger.
type ProposalAppliedEvent struct {
	BaseEvent
	EventID    string `json:"event_id"`
	ClusterKey string `json:"cluster_key"`
	Summary    string `json:"summary,omitempty"`
}

// NewProposalAppliedEvent creates a new proposal applied event.
func NewProposalAppliedEvent(workspaceID, eventID, clusterKey, summary string) ProposalAppliedEvent {
	return ProposalAppliedEvent{
		BaseEvent:  NewBaseEvent(TypeProposalApplied, workspaceID),
		EventID:    eventID,
		ClusterKey: clusterKey,
		Summary:    summary,
	}
}

// ProposalRejectedEvent is emitted when the server confirms a proposal
// was rejected.
type ProposalRejectedEvent struct {
	BaseEvent
	EventID    string `json:"event_id"`
	ClusterKey string `json:"cluster_key"`
	Reason     string `json:"reason,omitempty"`
}

// NewProposalRejectedEvent creates a new proposal rejected event.
func NewProposalRejectedEvent(workspaceID, eventID, clusterKey, reason string) ProposalRejectedEvent {
	return ProposalRejectedEvent{
		BaseEvent:  NewBaseEvent(TypeProposalRejected, workspaceID),
		EventID:    eventID,
		ClusterKey: clusterKey,
		Reason:     reason,
	}
}

// ApplyFailedEvent is emitted when an apply call fails and the
// proposal stays pending.
type ApplyFailedEvent struct {
	BaseEvent
	EventID    string `json:"event_id"`
	ClusterKey string `json:"cluster_key"`
	Error      string `json:"error"`
}

// NewApplyFailedEvent creates a new apply failed event.
func NewApplyFailedEvent(workspaceID, eventID, clusterKey string, err error) ApplyFailedEvent {
	errStr := ""
	if err != nil {
		errStr = err.Error()
	}
	return ApplyFailedEvent{
		BaseEvent:  NewBaseEvent(TypeApplyFailed, workspaceID),
		EventID:    eventID,
		ClusterKey: clusterKey,
		Error:      errStr,
	}
}

// ClusterApprovedEvent is emitted when a batch approval finishes,
// successfully or not. Applied counts the events the server confirmed
// before any failure stopped the batch.
type ClusterApprovedEvent struct {
	BaseEvent
	ClusterKey string `json:"cluster_key"`
	Applied    int    `json:"applied"`
	Remaining  int    `json:"remaining"`
	Error      string `json:"error,omitempty"`
}

// NewClusterApprovedEvent creates a new cluster approved event.
func NewClusterApprovedEvent(workspaceID, clusterKey string, applied, remaining int, err error) ClusterApprovedEvent {
	errStr := ""
	if err != nil {
		errStr = err.Error()
	}
	return ClusterApprovedEvent{
		BaseEvent:  NewBaseEvent(TypeClusterApproved, workspaceID),
		ClusterKey: clusterKey,
		Applied:    applied,
		Remaining:  remaining,
		Error:      errStr,
	}
}

// ModeChangedEvent is emitted when the server confirms a settings
// change. From and To carry the ai_mode field; flag changes such as
// the kill switch show up in KillSwitch.
type ModeChangedEvent struct {
	BaseEvent
	From       string `json:"from"`
	To         string `json:"to"`
	KillSwitch bool   `json:"kill_switch"`
}

// NewModeChangedEvent creates a new mode changed event.
func NewModeChangedEvent(workspaceID, from, to string, killSwitch bool) ModeChangedEvent {
	return ModeChangedEvent{
		BaseEvent:  NewBaseEvent(TypeModeChanged, workspaceID),
		From:       from,
		To:         to,
		KillSwitch: killSwitch,
	}
}

// QueueRefreshedEvent is emitted after the pending set is refetched.
type QueueRefreshedEvent struct {
	BaseEvent
	Pending  int `json:"pending"`
	Clusters int `json:"clusters"`
}

// NewQueueRefreshedEvent creates a new queue refreshed event.
func NewQueueRefreshedEvent(workspaceID string, pending, clusters int) QueueRefreshedEvent {
	return QueueRefreshedEvent{
		BaseEvent: NewBaseEvent(TypeQueueRefreshed, workspaceID),
		Pending:   pending,
		Clusters:  clusters,
	}
}
