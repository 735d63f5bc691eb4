package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/sahilm/fuzzy"

	"github.com/ledgerbird/companion-cli/internal/core"
	"github.com/ledgerbird/companion-cli/internal/logging"
	"github.com/ledgerbird/companion-cli/internal/service"
)

// view identifies the active screen.
type view int

const (
	viewList view = iota
	viewDetail
)

// confirmAction identifies the pending confirmation modal, if any.
// Settings mutations never fire from a bare keypress.
type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmUpgrade
	confirmKill
)

// rowKind distinguishes flattened list rows.
type rowKind int

const (
	rowCluster rowKind = iota
	rowEvent
)

// row is one visible line of the cluster list: a cluster header or one
// member event.
type row struct {
	kind    rowKind
	cluster core.Cluster
	event   core.ShadowEvent
}

// Model is the Bubble Tea model for the review surface. It reads all
// queue and mode state from the workflow service after every message,
// so the screen can never drift from what the engine would enforce.
type Model struct {
	review  *service.Review
	logger  *logging.Logger
	version string

	// Display state
	width, height int
	ready         bool
	quitting      bool
	busy          bool // one mutation in flight at a time
	refreshing    bool

	view view

	// Queue snapshot, refreshed from the service on every message
	clusters   []core.Cluster
	mode       core.OperatingMode
	modeLoaded bool

	rows   []row
	cursor int

	// Detail pane
	detail     core.ShadowEvent
	detailView viewport.Model

	// Fuzzy filter
	filtering   bool
	filterInput textinput.Model
	filterQuery string

	// Reject reason input
	rejecting    bool
	rejectInput  textinput.Model
	rejectTarget string

	// Workspace switch input
	switching      bool
	workspaceInput textinput.Model

	confirm confirmAction

	// Transient status line
	notice    string
	noticeErr bool
	noticeSeq int

	spinner    spinner.Model
	mdRenderer *glamour.TermRenderer
}

// NewModel creates a review model over the workflow service.
func NewModel(review *service.Review) Model {
	filter := textinput.New()
	filter.Placeholder = "Filter proposals..."
	filter.Prompt = "/ "
	filter.CharLimit = 128

	reject := textinput.New()
	reject.Placeholder = "Reason (optional)"
	reject.Prompt = ""
	reject.CharLimit = 512

	workspace := textinput.New()
	workspace.Placeholder = "Workspace id"
	workspace.Prompt = ""
	workspace.CharLimit = 128

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	m := Model{
		review:         review,
		logger:         logging.NewNop(),
		filterInput:    filter,
		rejectInput:    reject,
		workspaceInput: workspace,
		spinner:        sp,
		refreshing:     true,
	}
	m.mdRenderer = newMarkdownRenderer(80)
	return m
}

// WithLogger sets the logger.
func (m Model) WithLogger(logger *logging.Logger) Model {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithVersion sets the version shown in the header.
func (m Model) WithVersion(version string) Model {
	m.version = version
	return m
}

// Init starts the spinner and kicks off the initial load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, refreshCmd(m.review))
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case RefreshedMsg:
		m.refreshing = false
		m.sync()
		if msg.Err != nil {
			return m, m.setNotice(fmt.Sprintf("refresh failed: %v", msg.Err), true)
		}
		return m, m.setNotice(fmt.Sprintf("%d pending in %d clusters", m.pendingCount(), len(m.clusters)), false)

	case DecisionMsg:
		m.busy = false
		m.sync()
		if msg.Err != nil {
			return m, m.setNotice(refusalText(msg.Err), true)
		}
		return m, m.setNotice(fmt.Sprintf("%s %s", msg.Action, msg.EventID), false)

	case ClusterDecisionMsg:
		m.busy = false
		m.sync()
		outcome := msg.Outcome
		if msg.Err != nil {
			text := refusalText(msg.Err)
			if len(outcome.Applied) > 0 {
				text = fmt.Sprintf("cluster %s: applied %d, then %s",
					outcome.ClusterKey, len(outcome.Applied), refusalText(msg.Err))
			}
			return m, m.setNotice(text, true)
		}
		return m, m.setNotice(fmt.Sprintf("cluster %s: applied %d", outcome.ClusterKey, len(outcome.Applied)), false)

	case ModeChangedMsg:
		m.busy = false
		m.sync()
		if msg.Err != nil {
			return m, m.setNotice(refusalText(msg.Err), true)
		}
		if msg.Action == "kill" {
			return m, m.setNotice("kill switch engaged", false)
		}
		return m, m.setNotice(fmt.Sprintf("mode is now %s", msg.Mode.AIMode), false)

	case YankMsg:
		if msg.Err != nil {
			return m, m.setNotice(fmt.Sprintf("copy failed: %v", msg.Err), true)
		}
		if msg.Result.FilePath != "" {
			return m, m.setNotice(fmt.Sprintf("%s written to %s", msg.Label, msg.Result.FilePath), false)
		}
		return m, m.setNotice(fmt.Sprintf("%s copied (%s)", msg.Label, msg.Result.Method), false)

	case ClearNoticeMsg:
		if msg.Seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	}

	return m, nil
}

// sync pulls the current queue and mode snapshot from the service and
// rebuilds the visible rows.
func (m *Model) sync() {
	m.clusters = m.review.Clusters()
	m.mode, m.modeLoaded = m.review.Mode()
	m.rebuildRows()

	if m.view == viewDetail {
		if ev, ok := m.review.Get(m.detail.ID); ok {
			m.detail = ev
			m.detailView.SetContent(m.detailContent(ev))
		} else {
			m.view = viewList
		}
	}
}

// rebuildRows flattens clusters into display rows, honoring the filter.
func (m *Model) rebuildRows() {
	m.rows = buildRows(m.clusters, m.filterQuery)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// buildRows flattens clusters into rows. With a query, fuzzy matching
// runs over event id, summary, and cluster key; clusters with no
// matching members disappear, the rest keep display order.
func buildRows(clusters []core.Cluster, query string) []row {
	var hits map[[2]int]bool
	if query != "" {
		var haystack []string
		var positions [][2]int
		for ci, c := range clusters {
			for ei, ev := range c.Events {
				haystack = append(haystack, ev.ID+" "+ev.Summary()+" "+c.Key)
				positions = append(positions, [2]int{ci, ei})
			}
		}
		hits = make(map[[2]int]bool, len(haystack))
		for _, match := range fuzzy.Find(query, haystack) {
			hits[positions[match.Index]] = true
		}
	}

	var rows []row
	for ci, c := range clusters {
		var members []row
		for ei, ev := range c.Events {
			if hits == nil || hits[[2]int{ci, ei}] {
				members = append(members, row{kind: rowEvent, cluster: c, event: ev})
			}
		}
		if len(members) == 0 {
			continue
		}
		rows = append(rows, row{kind: rowCluster, cluster: c})
		rows = append(rows, members...)
	}
	return rows
}

// selectedRow returns the row under the cursor.
func (m Model) selectedRow() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

// selectedEvent resolves the event a single-event action targets: the
// detail event in detail view, otherwise the event row under the
// cursor. Cluster headers resolve to nothing.
func (m Model) selectedEvent() (core.ShadowEvent, bool) {
	if m.view == viewDetail {
		return m.detail, true
	}
	r, ok := m.selectedRow()
	if !ok || r.kind != rowEvent {
		return core.ShadowEvent{}, false
	}
	return r.event, true
}

func (m Model) pendingCount() int {
	n := 0
	for _, c := range m.clusters {
		n += c.Size()
	}
	return n
}

// setNotice replaces the transient status line and schedules its expiry.
func (m *Model) setNotice(text string, isErr bool) tea.Cmd {
	m.notice = text
	m.noticeErr = isErr
	m.noticeSeq++
	return clearNoticeCmd(m.noticeSeq)
}

// refusalText renders an error for the status line. Policy refusals
// read as calm statements of fact, not failures.
func refusalText(err error) string {
	var domainErr *core.DomainError
	if core.IsPolicyRefusal(err) && errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

// handleKeyPress handles keyboard input. Input widgets and the confirm
// modal capture keys before any global binding runs.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.confirm != confirmNone {
		return m.handleConfirmKey(msg)
	}
	if m.rejecting {
		return m.handleRejectKey(msg)
	}
	if m.switching {
		return m.handleWorkspaceKey(msg)
	}
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	if m.view == viewDetail {
		return m.handleDetailKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		action := m.confirm
		m.confirm = confirmNone
		m.busy = true
		if action == confirmKill {
			return m, killSwitchCmd(m.review)
		}
		return m, upgradeModeCmd(m.review)
	case "n", "N", "esc", "q":
		m.confirm = confirmNone
		return m, nil
	}
	return m, nil
}

func (m Model) handleRejectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.rejecting = false
		m.rejectInput.Reset()
		return m, nil
	case "enter":
		target := m.rejectTarget
		reason := strings.TrimSpace(m.rejectInput.Value())
		m.rejecting = false
		m.rejectInput.Reset()
		m.busy = true
		return m, rejectCmd(m.review, target, reason)
	}
	var cmd tea.Cmd
	m.rejectInput, cmd = m.rejectInput.Update(msg)
	return m, cmd
}

func (m Model) handleWorkspaceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.switching = false
		m.workspaceInput.Reset()
		return m, nil
	case "enter":
		target := strings.TrimSpace(m.workspaceInput.Value())
		m.switching = false
		m.workspaceInput.Reset()
		if target == "" || target == m.review.Workspace() {
			return m, nil
		}
		m.review.SwitchWorkspace(target)
		m.view = viewList
		m.cursor = 0
		m.refreshing = true
		m.sync()
		return m, refreshCmd(m.review)
	}
	var cmd tea.Cmd
	m.workspaceInput, cmd = m.workspaceInput.Update(msg)
	return m, cmd
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filterQuery = ""
		m.filterInput.Reset()
		m.rebuildRows()
		return m, nil
	case "enter":
		m.filtering = false
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.filterQuery = m.filterInput.Value()
	m.rebuildRows()
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.view = viewList
		return m, nil
	case "a":
		return m.startApprove(m.detail.ID)
	case "r":
		return m.startReject(m.detail.ID)
	case "y":
		return m, yankCmd("event id", m.detail.ID)
	case "Y":
		if m.detail.LogicTraceID == "" {
			return m, m.setNotice("no logic trace id on this event", true)
		}
		return m, yankCmd("trace id", m.detail.LogicTraceID)
	}
	var cmd tea.Cmd
	m.detailView, cmd = m.detailView.Update(msg)
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return m, nil

	case "enter":
		r, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		if r.kind == rowCluster {
			// Step onto the first member instead.
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
			return m, nil
		}
		m.view = viewDetail
		m.detail = r.event
		m.detailView.SetContent(m.detailContent(r.event))
		m.detailView.GotoTop()
		return m, nil

	case "a":
		ev, ok := m.selectedEvent()
		if !ok {
			return m, m.setNotice("select an event to approve, or use A for the cluster", true)
		}
		return m.startApprove(ev.ID)

	case "A":
		r, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		return m.startApproveCluster(r.cluster)

	case "r":
		ev, ok := m.selectedEvent()
		if !ok {
			return m, m.setNotice("select an event to reject", true)
		}
		return m.startReject(ev.ID)

	case "R":
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		return m, refreshCmd(m.review)

	case "/":
		m.filtering = true
		m.filterInput.Focus()
		return m, textinput.Blink

	case "y":
		ev, ok := m.selectedEvent()
		if !ok {
			r, isRow := m.selectedRow()
			if isRow && r.kind == rowCluster {
				return m, yankCmd("cluster key", r.cluster.Key)
			}
			return m, nil
		}
		return m, yankCmd("event id", ev.ID)

	case "Y":
		ev, ok := m.selectedEvent()
		if !ok || ev.LogicTraceID == "" {
			return m, m.setNotice("no logic trace id on this event", true)
		}
		return m, yankCmd("trace id", ev.LogicTraceID)

	case "u":
		if !m.review.Permissions().ManageAISettings {
			return m, m.setNotice("manage_ai_settings permission required", true)
		}
		m.confirm = confirmUpgrade
		return m, nil

	case "x":
		if !m.review.Permissions().ManageAISettings {
			return m, m.setNotice("manage_ai_settings permission required", true)
		}
		m.confirm = confirmKill
		return m, nil

	case "w":
		m.switching = true
		m.workspaceInput.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

// startApprove launches a single-event apply unless one is already in
// flight. The workflow re-checks the operating mode at call time; the
// UI never pre-empts that decision beyond showing the banner.
func (m Model) startApprove(eventID string) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, m.setNotice("another action is in flight", true)
	}
	m.busy = true
	return m, approveCmd(m.review, eventID)
}

func (m Model) startReject(eventID string) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, m.setNotice("another action is in flight", true)
	}
	m.rejecting = true
	m.rejectTarget = eventID
	m.rejectInput.Reset()
	m.rejectInput.Focus()
	return m, textinput.Blink
}

func (m Model) startApproveCluster(cluster core.Cluster) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, m.setNotice("another action is in flight", true)
	}
	m.busy = true
	return m, approveClusterCmd(m.review, cluster.Key)
}
