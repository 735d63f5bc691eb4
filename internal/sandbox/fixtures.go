package sandbox

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ledgerbird/companion-cli/internal/core"
)

// Fixtures seed the sandbox with review data.
type Fixtures struct {
	Workspaces []WorkspaceFixture `json:"workspaces"`
}

// WorkspaceFixture is one workspace's seed state.
type WorkspaceFixture struct {
	ID     string             `json:"id"`
	Mode   core.OperatingMode `json:"mode"`
	Events []core.ShadowEvent `json:"events"`
}

// LoadFile reads fixtures from a JSON file.
func LoadFile(path string) (Fixtures, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's own flag
	if err != nil {
		return Fixtures{}, fmt.Errorf("reading fixtures: %w", err)
	}
	var f Fixtures
	if err := json.Unmarshal(raw, &f); err != nil {
		return Fixtures{}, fmt.Errorf("parsing fixtures %s: %w", path, err)
	}
	if len(f.Workspaces) == 0 {
		return Fixtures{}, fmt.Errorf("fixtures %s contain no workspaces", path)
	}
	return f, nil
}

func conf(v float64) *float64 { return &v }

// Default returns the built-in demo dataset: ws_demo is a shadow-only
// workspace for browsing clusters, risk flags and open questions;
// ws_trial runs in suggest-only so applies actually go through,
// including one event wired to fail for partial-batch demos.
func Default() Fixtures {
	return Fixtures{
		Workspaces: []WorkspaceFixture{
			{
				ID: "ws_demo",
				Mode: core.OperatingMode{
					AIMode:          core.AIModeShadowOnly,
					GlobalAIEnabled: true,
					AIEnabled:       true,
				},
				Events: demoEvents(),
			},
			{
				ID: "ws_trial",
				Mode: core.OperatingMode{
					AIMode:          core.AIModeSuggestOnly,
					GlobalAIEnabled: true,
					AIEnabled:       true,
				},
				Events: trialEvents(),
			},
		},
	}
}

func demoEvents() []core.ShadowEvent {
	return []core.ShadowEvent{
		{
			ID:        "evt_b001",
			EventType: "bank_transaction_match",
			Data: core.Envelope{
				"description":      "Match payment to invoice #1042",
				"amount":           1840.00,
				"currency":         "EUR",
				"counterparty":     "Acme Hosting BV",
				"transaction_date": "2026-08-18",
			},
			Metadata: core.Envelope{
				"proposal_group": "bank-feed-match",
			},
			Actor:                     "ledgerbird-ai/bank-matcher-v3",
			ConfidenceScore:           conf(0.97),
			LogicTraceID:              "lt_8f2c41d0",
			BusinessProfileConstraint: "accrual basis, NL VAT registered",
			Rationale: "Matched on **exact amount** and counterparty IBAN. " +
				"The invoice has been open for 12 days and the payment reference " +
				"contains the invoice number.",
		},
		{
			ID:        "evt_b002",
			EventType: "bank_transaction_match",
			Data: core.Envelope{
				"description":      "Match refund to credit note CN-118",
				"amount":           -230.50,
				"currency":         "EUR",
				"counterparty":     "Acme Hosting BV",
				"transaction_date": "2026-08-19",
			},
			Metadata: core.Envelope{
				"proposal_group": "bank-feed-match",
			},
			Actor:           "ledgerbird-ai/bank-matcher-v3",
			ConfidenceScore: conf(0.93),
			LogicTraceID:    "lt_5a90be77",
			Rationale: "Negative amount matches the outstanding credit note " +
				"for the same counterparty within a 3 day window.",
		},
		{
			ID:        "evt_b003",
			EventType: "bank_transaction_match",
			Data: core.Envelope{
				"description":      "Match payroll batch to salary run 2026-08",
				"amount":           -15200.00,
				"currency":         "EUR",
				"counterparty":     "Salaris Services",
				"transaction_date": "2026-08-20",
			},
			Metadata: core.Envelope{
				"proposal_group": "bank-feed-match",
			},
			Actor:           "ledgerbird-ai/bank-matcher-v3",
			ConfidenceScore: conf(0.91),
			LogicTraceID:    "lt_c417f3a9",
			Rationale:       "Amount equals the approved salary run total to the cent.",
		},
		{
			ID:        "evt_c001",
			EventType: "expense_categorization",
			Data: core.Envelope{
				"description": "Categorize Figma subscription as software expense",
				"amount":      45.00,
				"currency":    "EUR",
				"account":     "6515 Software subscriptions",
			},
			Metadata: core.Envelope{
				"cluster": "expense-categorization",
			},
			Actor:           "ledgerbird-ai/categorizer-v2",
			ConfidenceScore: conf(0.88),
			LogicTraceID:    "lt_209d66b1",
			Rationale: "Recurring monthly charge from a known design tool vendor; " +
				"previous three charges were booked to the same account.",
		},
		{
			ID:        "evt_c002",
			EventType: "expense_categorization",
			Data: core.Envelope{
				"description": "Categorize NS Business Card charge",
				"amount":      312.40,
				"currency":    "EUR",
				"account":     "6210 Travel expenses",
			},
			Metadata: core.Envelope{
				"cluster": "expense-categorization",
				"questions": []any{
					"Is this charge fully business travel, or does it include commuting?",
					"Should the VAT be reclaimed at the reduced transport rate?",
				},
			},
			Actor:           "ledgerbird-ai/categorizer-v2",
			ConfidenceScore: conf(0.64),
			LogicTraceID:    "lt_77d1e4c5",
			Rationale: "The vendor is a rail operator, but the charge is 3x the " +
				"usual monthly amount and spans two VAT rates.",
		},
		{
			ID:        "evt_r001",
			EventType: "recurring_invoice_draft",
			Data: core.Envelope{
				"description": "Draft August invoice for retainer client Bloemen & Co",
				"amount":      7500.00,
				"currency":    "EUR",
			},
			Metadata: core.Envelope{
				"proposalGroup": "recurring-invoice",
			},
			HumanInTheLoop: core.Envelope{
				"risk_reasons": []any{
					"amount exceeds auto-approval threshold",
					"contract renewal date has passed",
				},
			},
			Actor:                     "ledgerbird-ai/invoicer-v1",
			ConfidenceScore:           conf(0.81),
			LogicTraceID:              "lt_ab3390f2",
			BusinessProfileConstraint: "retainer invoicing requires signed contract on file",
			Rationale: "Monthly retainer invoice drafted from the July template. " +
				"The underlying contract expired on 2026-07-31 and no renewal " +
				"has been uploaded.",
		},
		{
			ID:        "evt_r002",
			EventType: "recurring_invoice_draft",
			Data: core.Envelope{
				"description": "Draft August invoice for hosting client Kade 12",
				"amount":      290.00,
				"currency":    "EUR",
			},
			Metadata: core.Envelope{
				"proposalGroup": "recurring-invoice",
			},
			Actor:           "ledgerbird-ai/invoicer-v1",
			ConfidenceScore: conf(0.95),
			LogicTraceID:    "lt_fe02d8c3",
			Rationale:       "Identical to the previous six monthly invoices.",
		},
		{
			// Minimal event: no type, no group, no audit fields. Lands
			// in the fallback group and renders with placeholders.
			ID: "evt_m001",
			Data: core.Envelope{
				"description": "Unclassified ledger suggestion",
			},
			Extra: core.Envelope{
				"pipeline_stage": "post-enrichment",
			},
		},
	}
}

func trialEvents() []core.ShadowEvent {
	return []core.ShadowEvent{
		{
			ID:        "evt_t001",
			EventType: "bank_transaction_match",
			Data: core.Envelope{
				"description":  "Match card settlement to daily sales summary",
				"amount":       412.90,
				"currency":     "EUR",
				"counterparty": "Mollie Payments",
			},
			Metadata: core.Envelope{
				"proposal_group": "bank-feed-match",
			},
			Actor:           "ledgerbird-ai/bank-matcher-v3",
			ConfidenceScore: conf(0.96),
			LogicTraceID:    "lt_3d80aa19",
			Rationale:       "Settlement total equals the POS batch for 2026-08-21.",
		},
		{
			ID:        "evt_t002",
			EventType: "bank_transaction_match",
			Data: core.Envelope{
				"description":  "Match rent debit to lease schedule",
				"amount":       -2100.00,
				"currency":     "EUR",
				"counterparty": "Vastgoed Zuid",
			},
			Metadata: core.Envelope{
				"proposal_group": "bank-feed-match",
			},
			Actor:           "ledgerbird-ai/bank-matcher-v3",
			ConfidenceScore: conf(0.99),
			LogicTraceID:    "lt_61c2907e",
			Rationale:       "Fixed monthly amount on the contractual debit date.",
		},
		{
			ID:        "evt_t003",
			EventType: "subscription_renewal",
			Data: core.Envelope{
				"description": "Book GitHub Team renewal",
				"amount":      84.00,
				"currency":    "USD",
				"account":     "6515 Software subscriptions",
			},
			Metadata: core.Envelope{
				"proposal_group": "subscription-renewal",
			},
			Actor:           "ledgerbird-ai/categorizer-v2",
			ConfidenceScore: conf(0.94),
			LogicTraceID:    "lt_b5571d0c",
			Rationale:       "Annual renewal, same vendor and amount as last year.",
		},
		{
			// Applies for this event fail server-side, so a batch
			// approval of subscription-renewal stops here.
			ID:        "evt_t004",
			EventType: "subscription_renewal",
			Data: core.Envelope{
				"description": "Book Slack renewal with seat count change",
				"amount":      261.25,
				"currency":    "USD",
				"account":     "6515 Software subscriptions",
			},
			Metadata: core.Envelope{
				"proposal_group": "subscription-renewal",
				FailApplyKey:     true,
			},
			Actor:           "ledgerbird-ai/categorizer-v2",
			ConfidenceScore: conf(0.9),
			LogicTraceID:    "lt_08e4f21b",
			Rationale:       "Seat count went from 14 to 17 since the last renewal.",
		},
	}
}
