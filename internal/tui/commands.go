package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ledgerbird/companion-cli/internal/clip"
	"github.com/ledgerbird/companion-cli/internal/service"
)

// The HTTP client carries its own request timeout, so commands run on a
// background context and rely on it.

func refreshCmd(r *service.Review) tea.Cmd {
	return func() tea.Msg {
		return RefreshedMsg{Err: r.Refresh(context.Background())}
	}
}

func approveCmd(r *service.Review, eventID string) tea.Cmd {
	return func() tea.Msg {
		err := r.ApproveOne(context.Background(), eventID)
		return DecisionMsg{EventID: eventID, Action: "applied", Err: err}
	}
}

func rejectCmd(r *service.Review, eventID, reason string) tea.Cmd {
	return func() tea.Msg {
		err := r.RejectOne(context.Background(), eventID, reason)
		return DecisionMsg{EventID: eventID, Action: "rejected", Err: err}
	}
}

func approveClusterCmd(r *service.Review, clusterKey string) tea.Cmd {
	return func() tea.Msg {
		outcome, err := r.ApproveCluster(context.Background(), clusterKey)
		return ClusterDecisionMsg{Outcome: outcome, Err: err}
	}
}

func upgradeModeCmd(r *service.Review) tea.Cmd {
	return func() tea.Msg {
		mode, err := r.UpgradeMode(context.Background(), true)
		return ModeChangedMsg{Mode: mode, Action: "upgrade", Err: err}
	}
}

func killSwitchCmd(r *service.Review) tea.Cmd {
	return func() tea.Msg {
		mode, err := r.EngageKillSwitch(context.Background(), true)
		return ModeChangedMsg{Mode: mode, Action: "kill", Err: err}
	}
}

func yankCmd(label, text string) tea.Cmd {
	return func() tea.Msg {
		result, err := clip.Copy(text)
		return YankMsg{Label: label, Result: result, Err: err}
	}
}

func clearNoticeCmd(seq int) tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return ClearNoticeMsg{Seq: seq}
	})
}
