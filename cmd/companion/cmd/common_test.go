package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbird/companion-cli/internal/config"
	"github.com/ledgerbird/companion-cli/internal/core"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly10!", truncate("exactly10!", 10))
	assert.Equal(t, "this is...", truncate("this is far too long", 10))
	assert.Equal(t, "one two", truncate("one\ntwo", 20), "newlines become spaces")
}

func TestModeLine(t *testing.T) {
	live := core.OperatingMode{
		AIMode:          core.AIModeSuggestOnly,
		GlobalAIEnabled: true,
		AIEnabled:       true,
	}
	assert.Equal(t, "suggest_only (apply enabled)", modeLine(live))

	shadow := live
	shadow.AIMode = core.AIModeShadowOnly
	assert.Equal(t, "shadow_only (apply blocked: shadow-only mode)", modeLine(shadow))

	killed := live
	killed.KillSwitch = true
	assert.Equal(t, "suggest_only (apply blocked: kill switch engaged)", modeLine(killed))
}

func TestRequireWorkspace(t *testing.T) {
	cfg := &config.Config{Workspace: "ws_books"}
	ws, err := requireWorkspace(cfg)
	require.NoError(t, err)
	assert.Equal(t, "ws_books", ws)

	cfg.Workspace = "   "
	_, err = requireWorkspace(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no workspace selected")
	assert.Contains(t, err.Error(), "COMPANION_WORKSPACE")
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 risk", plural(1, "risk"))
	assert.Equal(t, "2 risks", plural(2, "risk"))
	assert.Equal(t, "3 questions", plural(3, "question"))
}

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", orDash(""))
	assert.Equal(t, "evt_1", orDash("evt_1"))
}

func TestRedactToken(t *testing.T) {
	settings := map[string]interface{}{
		"api": map[string]interface{}{
			"base_url": "https://app.ledgerbird.com",
			"token":    "sk_live_secret",
		},
		"workspace": "ws_books",
	}

	redactToken(settings)

	api := settings["api"].(map[string]interface{})
	assert.Equal(t, "[redacted]", api["token"])
	assert.Equal(t, "https://app.ledgerbird.com", api["base_url"])
}

func TestRedactTokenEmpty(t *testing.T) {
	settings := map[string]interface{}{
		"api": map[string]interface{}{"token": ""},
	}

	redactToken(settings)

	api := settings["api"].(map[string]interface{})
	assert.Equal(t, "", api["token"], "an empty token needs no redaction marker")
}
