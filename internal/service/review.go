package service

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ledgerbird/companion-cli/internal/core"
	"github.com/ledgerbird/companion-cli/internal/events"
	"github.com/ledgerbird/companion-cli/internal/logging"
)

// Status is the workflow's cluster-approval state.
type Status string

const (
	StatusIdle Status = "idle"
	StatusBusy Status = "busy"
)

// State is the externally visible workflow state, kept explicit so it
// can be asserted on without any rendering layer.
type State struct {
	Status      Status
	BusyCluster string
	LastError   string
}

// Permissions are the caller's resolved capabilities. Resolution
// happens outside this engine; the workflow only enforces.
type Permissions struct {
	ManageAISettings bool
}

// ClusterOutcome reports what a batch approval actually did. Partial
// application is a visible, accepted outcome: applied events stay
// applied even when a later member fails.
type ClusterOutcome struct {
	ClusterKey string
	Applied    []string
	FailedID   string
	Remaining  int
}

// Review is the approval workflow over one workspace's pending set.
// Every apply re-checks the operating mode at call time, rejects are
// never gated, and batch approval runs under a single-flight guard:
// one cluster at a time, while single-event actions stay independent.
type Review struct {
	queue  *Queue
	modes  *ModeStore
	bus    *events.Bus
	logger *logging.Logger
	perms  Permissions

	mu          sync.Mutex
	busyCluster string
	lastError   string
}

// ReviewOption configures a Review.
type ReviewOption func(*Review)

// WithBus attaches the event bus review activity is published to.
func WithBus(bus *events.Bus) ReviewOption {
	return func(r *Review) { r.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) ReviewOption {
	return func(r *Review) { r.logger = logger }
}

// WithPermissions sets the caller's capabilities.
func WithPermissions(perms Permissions) ReviewOption {
	return func(r *Review) { r.perms = perms }
}

// NewReview creates the workflow over a queue and mode store bound to
// the same workspace.
func NewReview(queue *Queue, modes *ModeStore, opts ...ReviewOption) *Review {
	r := &Review{
		queue:  queue,
		modes:  modes,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Workspace returns the reviewed workspace id.
func (r *Review) Workspace() string {
	return r.queue.Workspace()
}

// SwitchWorkspace rebinds the engine to another workspace. Pending
// state is dropped and every in-flight completion for the old
// workspace is discarded when it resolves.
func (r *Review) SwitchWorkspace(workspaceID string) {
	r.queue.SetWorkspace(workspaceID)
	r.modes.SetWorkspace(workspaceID)
	r.clearError()
}

// Refresh fetches the pending set and the operating mode together.
// Failures surface as the workflow error; retry is always a manual
// action, never automatic.
func (r *Review) Refresh(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.queue.Refresh(ctx) })
	g.Go(func() error {
		_, err := r.modes.Fetch(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		r.recordError(err)
		return err
	}
	r.clearError()

	clusters := r.queue.Clusters()
	r.logger.Debug("queue refreshed",
		"workspace_id", r.Workspace(),
		"pending", r.queue.Len(),
		"clusters", len(clusters))
	r.publish(events.NewQueueRefreshedEvent(r.Workspace(), r.queue.Len(), len(clusters)))
	return nil
}

// Pending returns the pending set in fetch order.
func (r *Review) Pending() []core.ShadowEvent {
	return r.queue.Events()
}

// Clusters returns the current cluster view, recomputed on every call.
func (r *Review) Clusters() []core.Cluster {
	return r.queue.Clusters()
}

// Get returns one pending event.
func (r *Review) Get(eventID string) (core.ShadowEvent, bool) {
	return r.queue.Get(eventID)
}

// Mode returns the cached operating mode and whether one is loaded.
func (r *Review) Mode() (core.OperatingMode, bool) {
	return r.modes.Current()
}

// ApplyDisabled reports the gate as of right now.
func (r *Review) ApplyDisabled() bool {
	return r.modes.ApplyDisabled()
}

// BlockedReason explains the gate for display.
func (r *Review) BlockedReason() string {
	return r.modes.BlockedReason()
}

// Permissions returns the caller's capabilities.
func (r *Review) Permissions() Permissions {
	return r.perms
}

// State returns the workflow state snapshot.
func (r *Review) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := State{Status: StatusIdle, LastError: r.lastError}
	if r.busyCluster != "" {
		st.Status = StatusBusy
		st.BusyCluster = r.busyCluster
	}
	return st
}

// ClearError dismisses the recorded workflow error.
func (r *Review) ClearError() {
	r.clearError()
}

// ApproveOne applies a single proposal. The operating-mode gate is
// re-evaluated here no matter what the caller already checked, and a
// cluster approval in flight on any cluster does not block it.
func (r *Review) ApproveOne(ctx context.Context, eventID string) error {
	if err := r.applyGate(); err != nil {
		return err
	}
	ev, ok := r.queue.Get(eventID)
	if !ok {
		return core.ErrNotFound("proposal", eventID)
	}
	key := ev.ProposalGroup()

	if err := r.queue.Apply(ctx, eventID); err != nil {
		r.recordError(err)
		r.logger.Warn("apply failed", "event_id", eventID, "error", err)
		r.publish(events.NewApplyFailedEvent(r.Workspace(), eventID, key, err))
		return err
	}

	r.logger.Info("proposal applied", "event_id", eventID, "cluster", key)
	r.publish(events.NewProposalAppliedEvent(r.Workspace(), eventID, key, ev.Summary()))
	return nil
}

// RejectOne rejects a single proposal with an optional reason. Never
// gated by operating mode.
func (r *Review) RejectOne(ctx context.Context, eventID, reason string) error {
	ev, ok := r.queue.Get(eventID)
	if !ok {
		return core.ErrNotFound("proposal", eventID)
	}
	key := ev.ProposalGroup()

	if err := r.queue.Reject(ctx, eventID, reason); err != nil {
		r.recordError(err)
		r.logger.Warn("reject failed", "event_id", eventID, "error", err)
		return err
	}

	r.logger.Info("proposal rejected", "event_id", eventID, "cluster", key, "reason", reason)
	r.publish(events.NewProposalRejectedEvent(r.Workspace(), eventID, key, reason))
	return nil
}

// ApproveCluster applies every member of a batch-safe cluster in
// order, stopping at the first failure. Already-applied members stay
// applied; the rest stay pending and visible. Only one cluster
// approval may run at a time.
func (r *Review) ApproveCluster(ctx context.Context, clusterKey string) (ClusterOutcome, error) {
	outcome := ClusterOutcome{ClusterKey: clusterKey}

	r.mu.Lock()
	if r.busyCluster != "" {
		busy := r.busyCluster
		r.mu.Unlock()
		return outcome, core.ErrPolicy(core.CodeReviewBusy,
			fmt.Sprintf("approval of cluster %q is still in flight", busy))
	}
	r.mu.Unlock()

	if err := r.applyGate(); err != nil {
		return outcome, err
	}
	cluster, ok := core.FindCluster(r.queue.Clusters(), clusterKey)
	if !ok {
		return outcome, core.ErrPolicy(core.CodeClusterNotFound,
			fmt.Sprintf("cluster %q is no longer present", clusterKey))
	}
	if !cluster.SafeBatchApprove {
		return outcome, core.ErrPolicy(core.CodeClusterNotSafe,
			fmt.Sprintf("cluster %q has members with risk reasons or open questions", clusterKey))
	}

	r.mu.Lock()
	if r.busyCluster != "" {
		busy := r.busyCluster
		r.mu.Unlock()
		return outcome, core.ErrPolicy(core.CodeReviewBusy,
			fmt.Sprintf("approval of cluster %q is still in flight", busy))
	}
	r.busyCluster = clusterKey
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.busyCluster = ""
		r.mu.Unlock()
	}()

	var firstErr error
	for _, ev := range cluster.Events {
		// The mode can flip mid-batch; re-check before every apply.
		if err := r.applyGate(); err != nil {
			firstErr = err
			break
		}
		if err := r.queue.Apply(ctx, ev.ID); err != nil {
			outcome.FailedID = ev.ID
			firstErr = err
			r.recordError(err)
			r.logger.Warn("cluster apply stopped",
				"cluster", clusterKey, "event_id", ev.ID, "error", err)
			r.publish(events.NewApplyFailedEvent(r.Workspace(), ev.ID, clusterKey, err))
			break
		}
		outcome.Applied = append(outcome.Applied, ev.ID)
		r.publish(events.NewProposalAppliedEvent(r.Workspace(), ev.ID, clusterKey, ev.Summary()))
	}
	outcome.Remaining = cluster.Size() - len(outcome.Applied)

	r.logger.Info("cluster approval finished",
		"cluster", clusterKey,
		"applied", len(outcome.Applied),
		"remaining", outcome.Remaining)
	r.publish(events.NewClusterApprovedEvent(
		r.Workspace(), clusterKey, len(outcome.Applied), outcome.Remaining, firstErr))
	return outcome, firstErr
}

// UpgradeMode moves the workspace from shadow-only to suggest-only.
// It requires the manage-AI-settings capability and an explicit
// confirmation from the caller, and it touches nothing but ai_mode:
// the kill switch and the platform flag are never part of the patch.
func (r *Review) UpgradeMode(ctx context.Context, confirmed bool) (core.OperatingMode, error) {
	if err := r.settingsGate(confirmed); err != nil {
		return core.OperatingMode{}, err
	}

	current, loaded := r.modes.Current()
	if !loaded {
		var err error
		if current, err = r.modes.Fetch(ctx); err != nil {
			r.recordError(err)
			return core.OperatingMode{}, err
		}
	}
	if current.AIMode != core.AIModeShadowOnly {
		return core.OperatingMode{}, core.ErrPolicy(core.CodeModeNotShadowOnly,
			fmt.Sprintf("current mode is %q, upgrade only applies to shadow-only", current.AIMode))
	}

	target := core.AIModeSuggestOnly
	updated, err := r.modes.Patch(ctx, core.ModePatch{AIMode: &target})
	if err != nil {
		r.recordError(err)
		return core.OperatingMode{}, err
	}

	r.logger.Info("mode upgraded",
		"workspace_id", r.Workspace(),
		"from", string(core.AIModeShadowOnly),
		"to", string(updated.AIMode))
	r.publish(events.NewModeChangedEvent(r.Workspace(),
		string(core.AIModeShadowOnly), string(updated.AIMode), updated.KillSwitch))
	return updated, nil
}

// EngageKillSwitch sets the workspace kill switch. Same capability and
// confirmation requirements as UpgradeMode; the patch carries nothing
// but the flag.
func (r *Review) EngageKillSwitch(ctx context.Context, confirmed bool) (core.OperatingMode, error) {
	if err := r.settingsGate(confirmed); err != nil {
		return core.OperatingMode{}, err
	}

	before, _ := r.modes.Current()
	engage := true
	updated, err := r.modes.Patch(ctx, core.ModePatch{KillSwitch: &engage})
	if err != nil {
		r.recordError(err)
		return core.OperatingMode{}, err
	}

	r.logger.Warn("kill switch engaged", "workspace_id", r.Workspace())
	r.publish(events.NewModeChangedEvent(r.Workspace(),
		string(before.AIMode), string(updated.AIMode), updated.KillSwitch))
	return updated, nil
}

// applyGate refuses apply operations while the mode forbids them. The
// refusal is a policy error: expected, benign, and carrying the reason
// for display.
func (r *Review) applyGate() error {
	if !r.modes.ApplyDisabled() {
		return nil
	}
	return core.ErrPolicy(core.CodeApplyDisabled,
		fmt.Sprintf("apply is blocked: %s", r.modes.BlockedReason()))
}

func (r *Review) settingsGate(confirmed bool) error {
	if !r.perms.ManageAISettings {
		return core.ErrAuth(core.CodePermissionRequired,
			"manage AI settings capability required")
	}
	if !confirmed {
		return core.ErrPolicy(core.CodeConfirmationRequired,
			"settings changes require explicit confirmation")
	}
	return nil
}

func (r *Review) recordError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastError = err.Error()
}

func (r *Review) clearError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastError = ""
}

func (r *Review) publish(ev events.Event) {
	if r.bus != nil {
		r.bus.Publish(ev)
	}
}
