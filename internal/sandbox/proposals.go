package sandbox

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerbird/companion-cli/internal/core"
)

// actionRequest is the body for apply and reject calls.
type actionRequest struct {
	WorkspaceID string `json:"workspace_id"`
	Reason      string `json:"reason,omitempty"`
}

// actionResponse is the acknowledgement for apply and reject calls.
type actionResponse struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

// handleListProposals returns the pending set for a workspace.
func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	workspaceID := r.URL.Query().Get("workspace_id")
	if workspaceID == "" {
		respondDomainError(w, core.ErrValidation(core.CodeMissingWorkspace, "workspace_id is required"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondDomainError(w, core.ErrValidation(core.CodeInvalidLimit,
				"limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	events := s.store.List(workspaceID, limit)
	respondJSON(w, http.StatusOK, events)
}

// handleApplyProposal applies one proposal to the emulated ledger.
func (s *Server) handleApplyProposal(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.WorkspaceID == "" {
		respondDomainError(w, core.ErrValidation(core.CodeMissingWorkspace, "workspace_id is required"))
		return
	}

	ev, err := s.store.Apply(req.WorkspaceID, eventID)
	if err != nil {
		s.logger.Info("apply refused",
			"workspace_id", req.WorkspaceID, "event_id", eventID, "error", err)
		respondDomainError(w, err)
		return
	}

	s.logger.Info("proposal applied",
		"workspace_id", req.WorkspaceID, "event_id", ev.ID, "type", ev.EventType)
	respondJSON(w, http.StatusOK, actionResponse{EventID: ev.ID, Status: "applied"})
}

// handleRejectProposal discards one proposal.
func (s *Server) handleRejectProposal(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.WorkspaceID == "" {
		respondDomainError(w, core.ErrValidation(core.CodeMissingWorkspace, "workspace_id is required"))
		return
	}

	ev, err := s.store.Reject(req.WorkspaceID, eventID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	s.logger.Info("proposal rejected",
		"workspace_id", req.WorkspaceID, "event_id", ev.ID, "reason", req.Reason)
	respondJSON(w, http.StatusOK, actionResponse{EventID: ev.ID, Status: "rejected"})
}
