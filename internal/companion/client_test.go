package companion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbird/companion-cli/internal/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, WithToken("lbk_test_token"))
	require.NoError(t, err)
	return client
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("not a url")
	require.Error(t, err)
	assert.Equal(t, core.ErrCatValidation, core.GetCategory(err))

	_, err = NewClient("/relative/only")
	require.Error(t, err)
}

func TestListProposals(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/companion/v2/proposals/", r.URL.Path)
		assert.Equal(t, "ws_1", r.URL.Query().Get("workspace_id"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer lbk_test_token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id": "evt_1", "event_type": "categorize_transaction",
			 "metadata": {"proposal_group": "bank-match"}},
			{"id": "evt_2", "event_type": "create_invoice"}
		]`)
	})

	events, err := client.ListProposals(context.Background(), "ws_1", 50)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "evt_1", events[0].ID)
	assert.Equal(t, "bank-match", events[0].ProposalGroup())
	assert.Equal(t, "create_invoice", events[1].ProposalGroup())
}

func TestListProposalsDefaultsLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "200", r.URL.Query().Get("limit"))
		io.WriteString(w, `[]`)
	})

	events, err := client.ListProposals(context.Background(), "ws_1", 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestListProposalsRequiresWorkspace(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.ListProposals(context.Background(), "", 10)
	require.Error(t, err)
	assert.Equal(t, core.ErrCatValidation, core.GetCategory(err))
	assert.False(t, called, "no request should be made for invalid input")
}

func TestApplyProposal(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/companion/v2/proposals/evt_1/apply", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ws_1", body["workspace_id"])

		io.WriteString(w, `{"event_id": "evt_1", "status": "applied"}`)
	})

	result, err := client.ApplyProposal(context.Background(), "evt_1", "ws_1")
	require.NoError(t, err)
	assert.Equal(t, "evt_1", result.EventID)
	assert.Equal(t, "applied", result.Status)
}

func TestApplyProposalEmptyResponseBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	result, err := client.ApplyProposal(context.Background(), "evt_1", "ws_1")
	require.NoError(t, err)
	assert.Equal(t, "evt_1", result.EventID)
	assert.Equal(t, "applied", result.Status)
}

func TestApplyProposalNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error": "proposal not found"}`)
	})

	_, err := client.ApplyProposal(context.Background(), "evt_404", "ws_1")
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))

	var domErr *core.DomainError
	require.ErrorAs(t, err, &domErr)
	assert.Equal(t, "proposal not found", domErr.Message)
	assert.Equal(t, "evt_404", domErr.Details["event_id"])
}

func TestApplyProposalGatedConflict(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"detail": "apply is disabled in shadow-only mode"}`)
	})

	_, err := client.ApplyProposal(context.Background(), "evt_1", "ws_1")
	require.Error(t, err)
	assert.Equal(t, core.ErrCatConflict, core.GetCategory(err))
	assert.Contains(t, err.Error(), "shadow-only")
}

func TestRejectProposal(t *testing.T) {
	var gotBody map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/companion/v2/proposals/evt_2/reject", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		io.WriteString(w, `{"event_id": "evt_2", "status": "rejected"}`)
	})

	result, err := client.RejectProposal(context.Background(), "evt_2", "ws_1", "duplicate of existing entry")
	require.NoError(t, err)
	assert.Equal(t, "rejected", result.Status)
	assert.Equal(t, "duplicate of existing entry", gotBody["reason"])
}

func TestRejectProposalOmitsEmptyReason(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasReason := body["reason"]
		assert.False(t, hasReason, "empty reason must not be sent")
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.RejectProposal(context.Background(), "evt_2", "ws_1", "")
	require.NoError(t, err)
}

func TestFetchSettings(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/companion/v2/ai-settings/", r.URL.Path)
		assert.Equal(t, "ws_1", r.URL.Query().Get("workspace_id"))
		io.WriteString(w, `{
			"global_ai_enabled": true,
			"settings": {"ai_enabled": true, "ai_mode": "shadow_only", "kill_switch": false}
		}`)
	})

	mode, err := client.FetchSettings(context.Background(), "ws_1")
	require.NoError(t, err)
	assert.Equal(t, core.AIModeShadowOnly, mode.AIMode)
	assert.True(t, mode.GlobalAIEnabled)
	assert.True(t, mode.AIEnabled)
	assert.False(t, mode.KillSwitch)
	assert.True(t, mode.ApplyDisabled())
}

func TestUpdateSettings(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ws_1", body["workspace_id"])
		assert.Equal(t, "suggest_only", body["ai_mode"])
		_, hasKill := body["kill_switch"]
		assert.False(t, hasKill, "untouched fields must be absent from the patch")

		io.WriteString(w, `{
			"global_ai_enabled": true,
			"settings": {"ai_enabled": true, "ai_mode": "suggest_only", "kill_switch": false}
		}`)
	})

	mode := core.AIModeSuggestOnly
	updated, err := client.UpdateSettings(context.Background(), "ws_1", core.ModePatch{AIMode: &mode})
	require.NoError(t, err)
	assert.Equal(t, core.AIModeSuggestOnly, updated.AIMode)
	assert.False(t, updated.ApplyDisabled())
}

func TestUpdateSettingsRejectsEmptyPatch(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.UpdateSettings(context.Background(), "ws_1", core.ModePatch{})
	require.Error(t, err)
	assert.Equal(t, core.ErrCatValidation, core.GetCategory(err))
	assert.False(t, called)
}

func TestUpdateSettingsForbidden(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error": "manage AI settings capability required"}`)
	})

	enabled := true
	_, err := client.UpdateSettings(context.Background(), "ws_1", core.ModePatch{AIEnabled: &enabled})
	require.Error(t, err)
	assert.Equal(t, core.ErrCatAuth, core.GetCategory(err))
}

func TestServerErrorIsRetryable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error": "ledger write failed"}`)
	})

	_, err := client.ApplyProposal(context.Background(), "evt_1", "ws_1")
	require.Error(t, err)
	assert.Equal(t, core.ErrCatInternal, core.GetCategory(err))
	assert.True(t, core.IsRetryable(err))
}

func TestRateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.ListProposals(context.Background(), "ws_1", 10)
	require.Error(t, err)
	assert.Equal(t, core.ErrCatRateLimit, core.GetCategory(err))
}

func TestNetworkErrorCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	srv.Close() // connection refused from here on

	_, err = client.ListProposals(context.Background(), "ws_1", 10)
	require.Error(t, err)
	assert.Equal(t, core.ErrCatNetwork, core.GetCategory(err))
	assert.True(t, core.IsRetryable(err))
}

func TestUndecodableBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"this is": not json`)
	})

	_, err := client.ListProposals(context.Background(), "ws_1", 10)
	require.Error(t, err)
	assert.Equal(t, core.ErrCatValidation, core.GetCategory(err))
}
