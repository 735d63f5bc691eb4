package tui

import (
	"github.com/ledgerbird/companion-cli/internal/clip"
	"github.com/ledgerbird/companion-cli/internal/core"
	"github.com/ledgerbird/companion-cli/internal/service"
)

// RefreshedMsg signals that a queue and mode refresh finished.
type RefreshedMsg struct {
	Err error
}

// DecisionMsg signals completion of a single-event approve or reject.
type DecisionMsg struct {
	EventID string
	Action  string // "applied" or "rejected"
	Err     error
}

// ClusterDecisionMsg signals completion of a batch approval, including
// the partial outcomes the workflow reports.
type ClusterDecisionMsg struct {
	Outcome service.ClusterOutcome
	Err     error
}

// ModeChangedMsg signals completion of a settings mutation.
type ModeChangedMsg struct {
	Mode   core.OperatingMode
	Action string // "upgrade" or "kill"
	Err    error
}

// YankMsg signals completion of a clipboard copy.
type YankMsg struct {
	Label  string
	Result clip.Result
	Err    error
}

// ClearNoticeMsg expires the transient status line. Seq guards against
// an old timer clearing a newer notice.
type ClearNoticeMsg struct {
	Seq int
}
