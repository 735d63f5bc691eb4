package core

// AIMode is the workspace automation mode. Unrecognized values coming
// from newer backends are carried verbatim and treated as restrictive.
type AIMode string

const (
	// AIModeShadowOnly generates and surfaces proposals but never
	// permits applying them to the ledger.
	AIModeShadowOnly AIMode = "shadow_only"
	// AIModeSuggestOnly permits human-triggered apply; autonomous
	// application remains out of reach of this client entirely.
	AIModeSuggestOnly AIMode = "suggest_only"
)

// OperatingMode is the workspace-scoped automation policy. The zero
// value has every enable flag false, so an unloaded mode always gates
// apply (fail closed).
type OperatingMode struct {
	AIMode          AIMode `json:"ai_mode" yaml:"ai_mode"`
	GlobalAIEnabled bool   `json:"global_ai_enabled" yaml:"global_ai_enabled"`
	AIEnabled       bool   `json:"ai_enabled" yaml:"ai_enabled"`
	KillSwitch      bool   `json:"kill_switch" yaml:"kill_switch"`
}

// ApplyDisabled reports whether apply operations are forbidden under
// this mode. Reject is never gated; rejection needs no write authority
// over the ledger.
func (m OperatingMode) ApplyDisabled() bool {
	return !m.GlobalAIEnabled || !m.AIEnabled || m.KillSwitch || m.AIMode == AIModeShadowOnly
}

// BlockedReason returns a short explanation of why apply is disabled,
// or "" when it is permitted. Checks are ordered by severity so the
// kill switch wins over mode restrictions in the display.
func (m OperatingMode) BlockedReason() string {
	switch {
	case m.KillSwitch:
		return "kill switch engaged"
	case !m.GlobalAIEnabled:
		return "AI disabled platform-wide"
	case !m.AIEnabled:
		return "AI disabled for this workspace"
	case m.AIMode == AIModeShadowOnly:
		return "shadow-only mode"
	default:
		return ""
	}
}

// ModePatch is a partial settings update. Nil fields are left untouched
// by the server. The platform-wide enable flag is deliberately absent;
// no client operation may change it.
type ModePatch struct {
	AIMode     *AIMode
	AIEnabled  *bool
	KillSwitch *bool
}

// IsZero reports whether the patch changes nothing.
func (p ModePatch) IsZero() bool {
	return p.AIMode == nil && p.AIEnabled == nil && p.KillSwitch == nil
}
