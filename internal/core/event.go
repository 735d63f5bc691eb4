package core

import (
	"encoding/json"
	"strings"
)

// GroupFallbackLabel is the cluster key assigned to events that carry
// no group metadata and no usable event type.
const GroupFallbackLabel = "Proposals"

// ShadowEvent is a single AI-proposed ledger action awaiting human
// disposition. The typed fields are the stable subset this client
// interprets; data, metadata, and human_in_the_loop are opaque payloads
// read only through defensive Envelope accessors, and any top-level
// field the type does not model is preserved in Extra so a decoded
// event re-encodes without loss.
type ShadowEvent struct {
	ID        string
	EventType string

	Data           Envelope
	Metadata       Envelope
	HumanInTheLoop Envelope

	Actor                     string
	ConfidenceScore           *float64
	LogicTraceID              string
	BusinessProfileConstraint string
	Rationale                 string

	Extra Envelope
}

// Wire field names. The apply/reject gating logic reads none of the
// audit fields; they exist for reviewer display only.
const (
	fieldID                        = "id"
	fieldEventType                 = "event_type"
	fieldData                      = "data"
	fieldMetadata                  = "metadata"
	fieldHumanInTheLoop            = "human_in_the_loop"
	fieldActor                     = "actor"
	fieldConfidenceScore           = "confidence_score"
	fieldLogicTraceID              = "logic_trace_id"
	fieldBusinessProfileConstraint = "business_profile_constraint"
	fieldRationale                 = "rationale"
)

func knownField(key string) bool {
	switch key {
	case fieldID, fieldEventType, fieldData, fieldMetadata, fieldHumanInTheLoop,
		fieldActor, fieldConfidenceScore, fieldLogicTraceID,
		fieldBusinessProfileConstraint, fieldRationale:
		return true
	}
	return false
}

// UnmarshalJSON decodes an event tolerantly: recognized fields with the
// wrong JSON type are treated as absent rather than failing the whole
// event, and unrecognized fields land in Extra.
func (e *ShadowEvent) UnmarshalJSON(b []byte) error {
	var raw Envelope
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = eventFromEnvelope(raw)
	return nil
}

func eventFromEnvelope(raw Envelope) ShadowEvent {
	ev := ShadowEvent{
		ID:                        raw.Str(fieldID),
		EventType:                 raw.Str(fieldEventType),
		Data:                      raw.Map(fieldData),
		Metadata:                  raw.Map(fieldMetadata),
		HumanInTheLoop:            raw.Map(fieldHumanInTheLoop),
		Actor:                     raw.Str(fieldActor),
		LogicTraceID:              raw.Str(fieldLogicTraceID),
		BusinessProfileConstraint: raw.Str(fieldBusinessProfileConstraint),
		Rationale:                 rawString(raw, fieldRationale),
	}
	if f, ok := raw.Float(fieldConfidenceScore); ok {
		ev.ConfidenceScore = &f
	}
	for key, val := range raw {
		if knownField(key) {
			continue
		}
		if ev.Extra == nil {
			ev.Extra = Envelope{}
		}
		ev.Extra[key] = val
	}
	return ev
}

// rawString keeps interior whitespace intact; Envelope.Str trims, which
// would mangle markdown rationale text.
func rawString(raw Envelope, key string) string {
	if raw == nil {
		return ""
	}
	s, _ := raw[key].(string)
	return s
}

// MarshalJSON re-emits the event in wire shape, merging Extra back in
// so round-tripping preserves fields this client never interpreted.
func (e ShadowEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.wireForm())
}

// MarshalYAML mirrors MarshalJSON so snapshot exports carry the same
// wire shape.
func (e ShadowEvent) MarshalYAML() (any, error) {
	return map[string]any(e.wireForm()), nil
}

func (e ShadowEvent) wireForm() Envelope {
	out := Envelope{}
	for key, val := range e.Extra {
		out[key] = val
	}
	out[fieldID] = e.ID
	out[fieldEventType] = e.EventType
	if len(e.Data) > 0 {
		out[fieldData] = map[string]any(e.Data)
	}
	if len(e.Metadata) > 0 {
		out[fieldMetadata] = map[string]any(e.Metadata)
	}
	if len(e.HumanInTheLoop) > 0 {
		out[fieldHumanInTheLoop] = map[string]any(e.HumanInTheLoop)
	}
	if e.Actor != "" {
		out[fieldActor] = e.Actor
	}
	if e.ConfidenceScore != nil {
		out[fieldConfidenceScore] = *e.ConfidenceScore
	}
	if e.LogicTraceID != "" {
		out[fieldLogicTraceID] = e.LogicTraceID
	}
	if e.BusinessProfileConstraint != "" {
		out[fieldBusinessProfileConstraint] = e.BusinessProfileConstraint
	}
	if e.Rationale != "" {
		out[fieldRationale] = e.Rationale
	}
	return out
}

// RiskReasons returns the human-readable reasons this event is not
// eligible for unattended approval. Absent or malformed payloads yield
// an empty list, never an error.
func (e ShadowEvent) RiskReasons() []string {
	return e.HumanInTheLoop.StringSlice("risk_reasons")
}

// Questions returns the open questions a reviewer must answer before
// this event can be batch approved.
func (e ShadowEvent) Questions() []string {
	return e.Metadata.StringSlice("questions")
}

// HasRisk reports whether the event carries explicit risk reasons.
func (e ShadowEvent) HasRisk() bool {
	return len(e.RiskReasons()) > 0
}

// HasQuestions reports whether the event carries open questions.
func (e ShadowEvent) HasQuestions() bool {
	return len(e.Questions()) > 0
}

// BatchSafe reports whether the event is free of both risk reasons and
// open questions, the member-level half of the cluster safety check.
func (e ShadowEvent) BatchSafe() bool {
	return !e.HasRisk() && !e.HasQuestions()
}

// ProposalGroup returns the cluster key for this event. Producers are
// inconsistent about the metadata key, so the lookup order is
// proposal_group, proposalGroup, cluster, then the event type, then
// GroupFallbackLabel. The first non-blank trimmed value wins.
func (e ShadowEvent) ProposalGroup() string {
	for _, key := range []string{"proposal_group", "proposalGroup", "cluster"} {
		if v := e.Metadata.Str(key); v != "" {
			return v
		}
	}
	if v := strings.TrimSpace(e.EventType); v != "" {
		return v
	}
	return GroupFallbackLabel
}

// Summary returns a short human-readable description of the proposed
// change, probing the common payload keys in order. Empty when the
// payload carries none of them.
func (e ShadowEvent) Summary() string {
	for _, key := range []string{"description", "memo", "title", "name"} {
		if v := e.Data.Str(key); v != "" {
			return v
		}
	}
	return ""
}
