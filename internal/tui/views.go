package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/ledgerbird/companion-cli/internal/core"
)

// Fixed lines of chrome around the body: header, banner, notice, footer
// and their spacing.
const chromeHeight = 7

// newMarkdownRenderer builds the glamour renderer for rationale text.
// Inline code gets a plain colored style; the default block background
// bleeds badly on non-truecolor terminals.
func newMarkdownRenderer(width int) *glamour.TermRenderer {
	customStyle := styles.DraculaStyleConfig
	customStyle.Code = ansi.StyleBlock{
		StylePrimitive: ansi.StylePrimitive{
			Color:           stringPtr("229"),
			BackgroundColor: stringPtr(""),
			Prefix:          "",
			Suffix:          "",
		},
	}
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithStyles(customStyle),
		glamour.WithWordWrap(width),
	)
	return renderer
}

func stringPtr(s string) *string {
	return &s
}

// resize recomputes component dimensions after a window change.
func (m *Model) resize() {
	bodyHeight := m.height - chromeHeight
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	m.detailView.Width = m.width
	m.detailView.Height = bodyHeight

	wrap := m.width - 4
	if wrap < 20 {
		wrap = 20
	} else if wrap > 100 {
		wrap = 100
	}
	m.mdRenderer = newMarkdownRenderer(wrap)
	if m.view == viewDetail {
		m.detailView.SetContent(m.detailContent(m.detail))
	}
}

// renderMarkdown renders rationale markdown, falling back to the raw
// text when glamour cannot cope.
func (m Model) renderMarkdown(text string) string {
	if m.mdRenderer == nil {
		return text
	}
	rendered, err := m.mdRenderer.Render(text)
	if err != nil {
		m.logger.Debug("markdown render failed", "error", err)
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

// View renders the review surface.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderBanner())
	b.WriteString("\n\n")

	if m.confirm != confirmNone {
		b.WriteString(m.renderConfirm())
	} else if m.view == viewDetail {
		b.WriteString(m.detailView.View())
	} else {
		b.WriteString(m.renderList())
	}

	if m.rejecting {
		b.WriteString("\n")
		b.WriteString(m.renderRejectInput())
	}
	if m.switching {
		b.WriteString("\n")
		b.WriteString(m.renderWorkspaceInput())
	}
	if m.filtering {
		b.WriteString("\n")
		b.WriteString(InputBoxStyle.Render(m.filterInput.View()))
	}

	b.WriteString("\n")
	b.WriteString(m.renderNotice())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := "Ledgerbird Companion"
	if m.version != "" {
		title += " " + m.version
	}
	workspace := m.review.Workspace()
	if workspace == "" {
		workspace = "(no workspace)"
	}
	right := HelpStyle.Render(workspace)
	if m.busy || m.refreshing {
		right = m.spinner.View() + " " + right
	}
	return HeaderStyle.Render(title) + "  " + right
}

// renderBanner shows the operating mode. Apply availability is the one
// thing a reviewer must never have to guess.
func (m Model) renderBanner() string {
	if !m.modeLoaded {
		return BannerLoadingStyle.Render("mode unknown " + iconDotHollow + " apply blocked until settings load")
	}
	if reason := m.review.BlockedReason(); reason != "" {
		return BannerBlockedStyle.Render(fmt.Sprintf("APPLY BLOCKED %s %s", iconCross, reason))
	}
	return BannerLiveStyle.Render(fmt.Sprintf("%s %s %s apply enabled", iconCheck, m.mode.AIMode, iconDot))
}

func (m Model) renderList() string {
	if len(m.rows) == 0 {
		if m.filterQuery != "" {
			return HelpStyle.Render(fmt.Sprintf("  Nothing matches %q.", m.filterQuery))
		}
		if m.refreshing {
			return HelpStyle.Render("  Loading pending proposals...")
		}
		return HelpStyle.Render("  No pending proposals. The ledger is caught up.")
	}

	bodyHeight := m.height - chromeHeight
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	start := 0
	if m.cursor >= bodyHeight {
		start = m.cursor - bodyHeight + 1
	}
	end := start + bodyHeight
	if end > len(m.rows) {
		end = len(m.rows)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		line := m.renderRow(m.rows[i], i == m.cursor)
		b.WriteString(line)
		if i != end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderRow(r row, selected bool) string {
	var line string
	if r.kind == rowCluster {
		badge := SafeBadgeStyle.Render(iconCheck + " batch-safe")
		if !r.cluster.SafeBatchApprove {
			badge = RiskBadgeStyle.Render(iconFlag + " needs attention")
		}
		line = fmt.Sprintf("%s (%d)  %s", r.cluster.Key, r.cluster.Size(), badge)
		if selected {
			return SelectedRowStyle.Render(iconChevronRight + " " + line)
		}
		return ClusterRowStyle.Render("  " + line)
	}

	ev := r.event
	line = ev.ID
	if summary := ev.Summary(); summary != "" {
		line += "  " + summary
	}
	var badges []string
	if n := len(ev.RiskReasons()); n > 0 {
		badges = append(badges, RiskBadgeStyle.Render(fmt.Sprintf("%s%d", iconFlag, n)))
	}
	if n := len(ev.Questions()); n > 0 {
		badges = append(badges, QuestionBadgeStyle.Render(fmt.Sprintf("%s%d", iconQuestion, n)))
	}
	if len(badges) > 0 {
		line += "  " + strings.Join(badges, " ")
	}
	if selected {
		return SelectedRowStyle.Render(iconChevronRight + "   " + line)
	}
	return EventRowStyle.Render("  " + iconDot + " " + line)
}

// detailContent builds the scrollable detail body for one event. The
// audit projection never gates anything; it exists to let a human judge.
func (m Model) detailContent(ev core.ShadowEvent) string {
	ex := core.Explain(ev)

	var b strings.Builder
	b.WriteString(DetailTitleStyle.Render(fmt.Sprintf("%s %s %s", ev.ID, iconChevronRight, ev.EventType)))
	b.WriteString("\n")
	b.WriteString(DetailLabelStyle.Render("cluster    ") + DetailValueStyle.Render(ev.ProposalGroup()))
	b.WriteString("\n")
	b.WriteString(DetailLabelStyle.Render("actor      ") + DetailValueStyle.Render(ex.Actor))
	b.WriteString("\n")
	b.WriteString(DetailLabelStyle.Render("confidence ") + DetailValueStyle.Render(ex.Confidence))
	b.WriteString("\n")
	b.WriteString(DetailLabelStyle.Render("trace      ") + DetailValueStyle.Render(ex.LogicTraceID))
	b.WriteString("\n")
	b.WriteString(DetailLabelStyle.Render("constraint ") + DetailValueStyle.Render(ex.BusinessProfileConstraint))
	b.WriteString("\n")

	if reasons := ev.RiskReasons(); len(reasons) > 0 {
		b.WriteString("\n" + RiskBadgeStyle.Render("risk reasons") + "\n")
		for _, reason := range reasons {
			b.WriteString("  " + iconFlag + " " + reason + "\n")
		}
	}
	if len(ex.Questions) > 0 {
		b.WriteString("\n" + QuestionBadgeStyle.Render("open questions") + "\n")
		for _, q := range ex.Questions {
			b.WriteString("  " + iconQuestion + " " + q + "\n")
		}
	}

	b.WriteString("\n" + DetailLabelStyle.Render("rationale") + "\n")
	b.WriteString(m.renderMarkdown(ex.Rationale))
	b.WriteString("\n")

	if len(ev.Data) > 0 {
		if payload, err := json.MarshalIndent(map[string]any(ev.Data), "", "  "); err == nil {
			b.WriteString("\n" + DetailLabelStyle.Render("proposed change") + "\n")
			b.WriteString(m.renderMarkdown("```json\n" + string(payload) + "\n```"))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderConfirm() string {
	var box string
	switch m.confirm {
	case confirmUpgrade:
		box = ModalStyle.Render(fmt.Sprintf(
			"Upgrade workspace %s from shadow-only to suggest-only?\n\n"+
				"Approvals will start writing to the ledger.\n\n"+
				"%s",
			m.review.Workspace(),
			HelpStyle.Render("y confirm · n cancel")))
	case confirmKill:
		box = ModalDangerStyle.Render(fmt.Sprintf(
			"Engage the AI kill switch for workspace %s?\n\n"+
				"All applies stop immediately until a human clears it.\n\n"+
				"%s",
			m.review.Workspace(),
			HelpStyle.Render("y confirm · n cancel")))
	default:
		return ""
	}
	return lipgloss.Place(m.width, m.height-chromeHeight, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderRejectInput() string {
	prompt := PromptStyle.Render(fmt.Sprintf("Reject %s", m.rejectTarget))
	return prompt + "\n" + InputBoxStyle.Render(m.rejectInput.View())
}

func (m Model) renderWorkspaceInput() string {
	prompt := PromptStyle.Render(fmt.Sprintf("Switch workspace (current: %s)", m.review.Workspace()))
	return prompt + "\n" + InputBoxStyle.Render(m.workspaceInput.View())
}

func (m Model) renderNotice() string {
	if m.notice == "" {
		return ""
	}
	if m.noticeErr {
		return NoticeErrStyle.Render(m.notice)
	}
	return NoticeStyle.Render(m.notice)
}

func (m Model) renderFooter() string {
	if m.rejecting || m.switching {
		return FooterStyle.Render("enter submit · esc cancel")
	}
	if m.filtering {
		return FooterStyle.Render("type to filter · enter keep · esc clear")
	}
	if m.confirm != confirmNone {
		return FooterStyle.Render("y confirm · n cancel")
	}
	if m.view == viewDetail {
		return FooterStyle.Render("esc back · a approve · r reject · y yank id · Y yank trace · ↑/↓ scroll")
	}
	return FooterStyle.Render("↑/↓ move · enter detail · a approve · A cluster · r reject · / filter · y yank · R refresh · u upgrade · x kill · w workspace · q quit")
}
