package journal

import (
	"context"
	"fmt"

	"github.com/ledgerbird/companion-cli/internal/events"
	"github.com/ledgerbird/companion-cli/internal/logging"
)

// Recorder mirrors review activity from the event bus into the
// journal. It holds a reliable subscription, so every confirmed
// decision is written even under bursts.
type Recorder struct {
	journal *Journal
	bus     *events.Bus
	logger  *logging.Logger
	ch      <-chan events.Event
	done    chan struct{}
}

// NewRecorder creates a recorder over an open journal.
func NewRecorder(j *Journal, bus *events.Bus, logger *logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Recorder{
		journal: j,
		bus:     bus,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start subscribes to the bus and begins writing in the background.
func (r *Recorder) Start() {
	r.ch = r.bus.SubscribeReliable()
	go r.loop()
}

// Stop unsubscribes, drains buffered events and waits until the last
// one is written.
func (r *Recorder) Stop() {
	if r.ch == nil {
		return
	}
	r.bus.Unsubscribe(r.ch)
	<-r.done
}

func (r *Recorder) loop() {
	defer close(r.done)
	for ev := range r.ch {
		entry, ok := entryFor(ev)
		if !ok {
			continue
		}
		if err := r.journal.Record(context.Background(), entry); err != nil {
			// A failed audit write must not fail the review action
			// it describes.
			r.logger.Warn("journal write failed",
				"kind", string(entry.Kind), "error", err)
		}
	}
}

// entryFor maps a bus event to a journal entry. Queue refreshes are
// observations, not decisions, and are not journaled.
func entryFor(ev events.Event) (Entry, bool) {
	switch e := ev.(type) {
	case events.ProposalAppliedEvent:
		return Entry{
			RecordedAt:  e.Timestamp(),
			WorkspaceID: e.WorkspaceID(),
			Kind:        KindApplied,
			EventID:     e.EventID,
			ClusterKey:  e.ClusterKey,
			Detail:      e.Summary,
		}, true
	case events.ProposalRejectedEvent:
		return Entry{
			RecordedAt:  e.Timestamp(),
			WorkspaceID: e.WorkspaceID(),
			Kind:        KindRejected,
			EventID:     e.EventID,
			ClusterKey:  e.ClusterKey,
			Detail:      e.Reason,
		}, true
	case events.ApplyFailedEvent:
		return Entry{
			RecordedAt:  e.Timestamp(),
			WorkspaceID: e.WorkspaceID(),
			Kind:        KindApplyFailed,
			EventID:     e.EventID,
			ClusterKey:  e.ClusterKey,
			Detail:      e.Error,
		}, true
	case events.ClusterApprovedEvent:
		detail := fmt.Sprintf("applied %d of %d", e.Applied, e.Applied+e.Remaining)
		if e.Error != "" {
			detail += ": " + e.Error
		}
		return Entry{
			RecordedAt:  e.Timestamp(),
			WorkspaceID: e.WorkspaceID(),
			Kind:        KindClusterApproved,
			ClusterKey:  e.ClusterKey,
			Detail:      detail,
		}, true
	case events.ModeChangedEvent:
		detail := fmt.Sprintf("%s to %s", e.From, e.To)
		if e.KillSwitch {
			detail = "kill switch engaged"
		}
		return Entry{
			RecordedAt:  e.Timestamp(),
			WorkspaceID: e.WorkspaceID(),
			Kind:        KindModeChanged,
			Detail:      detail,
		}, true
	default:
		return Entry{}, false
	}
}
