package companion

import (
	"encoding/json"
	"net/http"

	"github.com/ledgerbird/companion-cli/internal/core"
)

// settingsEnvelope is the wire shape of the ai-settings resource. The
// platform-wide flag rides at the top level; workspace flags nest
// under settings.
type settingsEnvelope struct {
	GlobalAIEnabled bool `json:"global_ai_enabled"`
	Settings        struct {
		AIEnabled  bool   `json:"ai_enabled"`
		AIMode     string `json:"ai_mode"`
		KillSwitch bool   `json:"kill_switch"`
	} `json:"settings"`
}

func (e settingsEnvelope) mode() core.OperatingMode {
	return core.OperatingMode{
		AIMode:          core.AIMode(e.Settings.AIMode),
		GlobalAIEnabled: e.GlobalAIEnabled,
		AIEnabled:       e.Settings.AIEnabled,
		KillSwitch:      e.Settings.KillSwitch,
	}
}

// settingsPatchRequest is the PATCH body. Absent fields stay untouched
// server-side, so everything except the workspace id is a pointer.
type settingsPatchRequest struct {
	WorkspaceID string  `json:"workspace_id"`
	AIMode      *string `json:"ai_mode,omitempty"`
	AIEnabled   *bool   `json:"ai_enabled,omitempty"`
	KillSwitch  *bool   `json:"kill_switch,omitempty"`
}

// serverMessage digs the human-readable message out of an error body.
// The backend is inconsistent about the field name across endpoints.
func serverMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, msg := range []string{body.Error, body.Detail, body.Message} {
			if msg != "" {
				return msg
			}
		}
	}
	return ""
}

// statusError maps an HTTP status to a domain error.
func statusError(status int, msg string) *core.DomainError {
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return core.ErrValidation("INVALID_REQUEST", msg)
	case http.StatusUnauthorized:
		return core.ErrAuth("UNAUTHENTICATED", msg)
	case http.StatusForbidden:
		return core.ErrAuth(core.CodeForbidden, msg)
	case http.StatusNotFound:
		return &core.DomainError{
			Category: core.ErrCatNotFound,
			Code:     "NOT_FOUND",
			Message:  msg,
		}
	case http.StatusConflict:
		return core.ErrConflict("CONFLICT", msg)
	case http.StatusTooManyRequests:
		return core.ErrRateLimit(msg)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return core.ErrTimeout(msg)
	default:
		if status >= 500 {
			return &core.DomainError{
				Category:  core.ErrCatInternal,
				Code:      core.CodeServerError,
				Message:   msg,
				Retryable: true,
			}
		}
		return core.ErrInternal(msg)
	}
}
