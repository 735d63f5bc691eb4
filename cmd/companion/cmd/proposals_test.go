package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbird/companion-cli/internal/core"
	"github.com/ledgerbird/companion-cli/internal/service"
)

// stubAPI serves a canned pending set; mutations are not exercised by
// the output helper tests.
type stubAPI struct {
	events []core.ShadowEvent
	mode   core.OperatingMode
}

func (s *stubAPI) ListProposals(_ context.Context, _ string, _ int) ([]core.ShadowEvent, error) {
	return append([]core.ShadowEvent(nil), s.events...), nil
}

func (s *stubAPI) ApplyProposal(_ context.Context, eventID, _ string) (core.ApplyResult, error) {
	return core.ApplyResult{EventID: eventID, Status: "applied"}, nil
}

func (s *stubAPI) RejectProposal(_ context.Context, eventID, _, _ string) (core.RejectResult, error) {
	return core.RejectResult{EventID: eventID, Status: "rejected"}, nil
}

func (s *stubAPI) FetchSettings(_ context.Context, _ string) (core.OperatingMode, error) {
	return s.mode, nil
}

func (s *stubAPI) UpdateSettings(_ context.Context, _ string, _ core.ModePatch) (core.OperatingMode, error) {
	return s.mode, nil
}

func shadowOnlyMode() core.OperatingMode {
	return core.OperatingMode{
		AIMode:          core.AIModeShadowOnly,
		GlobalAIEnabled: true,
		AIEnabled:       true,
	}
}

func stubReview(t *testing.T, events []core.ShadowEvent, mode core.OperatingMode) *service.Review {
	t.Helper()
	api := &stubAPI{events: events, mode: mode}
	review := service.NewReview(
		service.NewQueue(api, "ws_test", 50),
		service.NewModeStore(api, "ws_test"),
	)
	require.NoError(t, review.Refresh(context.Background()))
	return review
}

func pendingFixture() []core.ShadowEvent {
	return []core.ShadowEvent{
		{
			ID:        "evt_1",
			EventType: "categorize_transaction",
			Data:      core.Envelope{"description": "Coffee with client"},
			Metadata:  core.Envelope{"proposal_group": "bank-feed-match"},
		},
		{
			ID:        "evt_2",
			EventType: "categorize_transaction",
			Data:      core.Envelope{"description": "Office supplies"},
			Metadata:  core.Envelope{"proposal_group": "bank-feed-match"},
		},
		{
			ID:        "evt_3",
			EventType: "create_invoice_draft",
			Data:      core.Envelope{"description": "Monthly retainer", "amount_cents": 420000},
			Metadata: core.Envelope{
				"proposal_group": "invoicing",
				"questions":      []any{"Bill at the usual rate?"},
			},
			HumanInTheLoop: core.Envelope{
				"risk_reasons": []any{"amount above threshold"},
			},
		},
	}
}

func TestPrintPending(t *testing.T) {
	review := stubReview(t, pendingFixture(), shadowOnlyMode())

	var buf bytes.Buffer
	require.NoError(t, printPending(&buf, review))
	out := buf.String()

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "CLUSTER")
	assert.Contains(t, out, "evt_1")
	assert.Contains(t, out, "evt_3")
	assert.Contains(t, out, "bank-feed-match")
	assert.Contains(t, out, "invoicing")
	assert.Contains(t, out, "Coffee with client")
	assert.Contains(t, out, "3 pending in 2 clusters")
	assert.Contains(t, out, "mode: shadow_only (apply blocked: shadow-only mode)")
}

func TestPrintPendingFlagsColumn(t *testing.T) {
	review := stubReview(t, pendingFixture(), shadowOnlyMode())

	clusters := review.Clusters()
	require.Len(t, clusters, 2)

	safe, _ := review.Get("evt_1")
	flagged, _ := review.Get("evt_3")
	assert.Equal(t, "-", flagsCell(safe))
	assert.Equal(t, "1 risk, 1 question", flagsCell(flagged))
}

func TestPrintPendingEmpty(t *testing.T) {
	review := stubReview(t, nil, shadowOnlyMode())

	var buf bytes.Buffer
	require.NoError(t, printPending(&buf, review))
	out := buf.String()

	assert.Contains(t, out, "No pending proposals.")
	assert.Contains(t, out, "mode: shadow_only")
}

func TestPrintProposal(t *testing.T) {
	score := 0.87
	ev := core.ShadowEvent{
		ID:                        "evt_3",
		EventType:                 "create_invoice_draft",
		Actor:                     "ai_pipeline",
		ConfidenceScore:           &score,
		LogicTraceID:              "trc_441",
		BusinessProfileConstraint: "monthly invoice cap",
		Rationale:                 "Matches the retainer schedule for this client.",
		Data:                      core.Envelope{"description": "Monthly retainer", "amount_cents": 420000},
		Metadata: core.Envelope{
			"proposal_group": "invoicing",
			"questions":      []any{"Bill at the usual rate?"},
		},
		HumanInTheLoop: core.Envelope{
			"risk_reasons": []any{"amount above threshold"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printProposal(&buf, ev))
	out := buf.String()

	assert.Contains(t, out, "evt_3")
	assert.Contains(t, out, "create_invoice_draft")
	assert.Contains(t, out, "invoicing")
	assert.Contains(t, out, "ai_pipeline")
	assert.Contains(t, out, "0.87")
	assert.Contains(t, out, "trc_441")
	assert.Contains(t, out, "monthly invoice cap")
	assert.Contains(t, out, "risk reasons:")
	assert.Contains(t, out, "amount above threshold")
	assert.Contains(t, out, "open questions:")
	assert.Contains(t, out, "Bill at the usual rate?")
	assert.Contains(t, out, "Matches the retainer schedule")
	assert.Contains(t, out, "proposed change:")
	assert.Contains(t, out, "420000")
}

func TestPrintProposalPlaceholders(t *testing.T) {
	ev := core.ShadowEvent{ID: "evt_bare", EventType: "categorize_transaction"}

	var buf bytes.Buffer
	require.NoError(t, printProposal(&buf, ev))
	out := buf.String()

	assert.Contains(t, out, core.NotAvailable)
	assert.Contains(t, out, core.RationalePlaceholder)
	assert.NotContains(t, out, "risk reasons:")
	assert.NotContains(t, out, "open questions:")
	assert.NotContains(t, out, "proposed change:")
}
