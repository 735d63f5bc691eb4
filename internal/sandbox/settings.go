package sandbox

import (
	"encoding/json"
	"net/http"

	"github.com/ledgerbird/companion-cli/internal/core"
)

// settingsResponse is the wire shape of the ai-settings resource: the
// platform flag rides at the top level, workspace flags nest under
// settings.
type settingsResponse struct {
	GlobalAIEnabled bool            `json:"global_ai_enabled"`
	Settings        settingsPayload `json:"settings"`
}

type settingsPayload struct {
	AIEnabled  bool   `json:"ai_enabled"`
	AIMode     string `json:"ai_mode"`
	KillSwitch bool   `json:"kill_switch"`
}

func settingsFromMode(m core.OperatingMode) settingsResponse {
	return settingsResponse{
		GlobalAIEnabled: m.GlobalAIEnabled,
		Settings: settingsPayload{
			AIEnabled:  m.AIEnabled,
			AIMode:     string(m.AIMode),
			KillSwitch: m.KillSwitch,
		},
	}
}

// settingsPatchBody is the PATCH body. Absent fields stay untouched.
type settingsPatchBody struct {
	WorkspaceID string  `json:"workspace_id"`
	AIMode      *string `json:"ai_mode"`
	AIEnabled   *bool   `json:"ai_enabled"`
	KillSwitch  *bool   `json:"kill_switch"`
}

// handleGetSettings returns the workspace operating mode.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	workspaceID := r.URL.Query().Get("workspace_id")
	if workspaceID == "" {
		respondDomainError(w, core.ErrValidation(core.CodeMissingWorkspace, "workspace_id is required"))
		return
	}

	respondJSON(w, http.StatusOK, settingsFromMode(s.store.Mode(workspaceID)))
}

// handlePatchSettings applies a partial settings change and echoes the
// resulting state.
func (s *Server) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	var body settingsPatchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.WorkspaceID == "" {
		respondDomainError(w, core.ErrValidation(core.CodeMissingWorkspace, "workspace_id is required"))
		return
	}

	patch := core.ModePatch{
		AIEnabled:  body.AIEnabled,
		KillSwitch: body.KillSwitch,
	}
	if body.AIMode != nil {
		mode := core.AIMode(*body.AIMode)
		if mode != core.AIModeShadowOnly && mode != core.AIModeSuggestOnly {
			respondDomainError(w, core.ErrValidation(core.CodeInvalidMode,
				"ai_mode must be shadow_only or suggest_only"))
			return
		}
		patch.AIMode = &mode
	}
	if patch.IsZero() {
		respondDomainError(w, core.ErrValidation(core.CodeEmptyPatch,
			"patch changes nothing"))
		return
	}

	updated := s.store.PatchMode(body.WorkspaceID, patch)
	s.logger.Info("settings patched",
		"workspace_id", body.WorkspaceID,
		"ai_mode", string(updated.AIMode),
		"kill_switch", updated.KillSwitch)
	respondJSON(w, http.StatusOK, settingsFromMode(updated))
}
