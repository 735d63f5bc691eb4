package core

import "context"

// ProposalAPI is the backend contract for the pending proposal set.
// Implementations talk to the companion REST surface; tests substitute
// in-memory fakes.
type ProposalAPI interface {
	// ListProposals fetches the full pending set for a workspace,
	// capped server-side at limit.
	ListProposals(ctx context.Context, workspaceID string, limit int) ([]ShadowEvent, error)

	// ApplyProposal asks the server to apply one proposal to the
	// ledger. Success means the server removed it from pending.
	ApplyProposal(ctx context.Context, eventID, workspaceID string) (ApplyResult, error)

	// RejectProposal discards one proposal. Reason is optional and
	// recorded server-side for pipeline feedback.
	RejectProposal(ctx context.Context, eventID, workspaceID, reason string) (RejectResult, error)
}

// SettingsAPI is the backend contract for workspace AI settings.
type SettingsAPI interface {
	// FetchSettings returns the authoritative operating mode.
	FetchSettings(ctx context.Context, workspaceID string) (OperatingMode, error)

	// UpdateSettings applies a partial change and returns the new
	// authoritative state. The server echo, not the patch, is what
	// callers must trust.
	UpdateSettings(ctx context.Context, workspaceID string, patch ModePatch) (OperatingMode, error)
}

// CompanionAPI is the full backend surface the review engine consumes.
type CompanionAPI interface {
	ProposalAPI
	SettingsAPI
}

// ApplyResult is the server acknowledgement of an apply call.
type ApplyResult struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

// RejectResult is the server acknowledgement of a reject call.
type RejectResult struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}
