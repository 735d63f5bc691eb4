// Package export writes point-in-time YAML snapshots of a review queue
// so a reviewer can hand the exact state they are looking at to support
// or to a colleague.
package export

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ledgerbird/companion-cli/internal/core"
)

// ClusterSummary flattens one cluster for the snapshot header, so a
// reader can see the grouping without scanning the full event list.
type ClusterSummary struct {
	Key              string   `yaml:"key"`
	Size             int      `yaml:"size"`
	SafeBatchApprove bool     `yaml:"safe_batch_approve"`
	EventIDs         []string `yaml:"event_ids"`
}

// Snapshot is the exportable review state: operating mode, cluster
// layout, and every pending event in wire shape. Events re-encode with
// the fields this client never interpreted still attached.
type Snapshot struct {
	CapturedAt    time.Time          `yaml:"captured_at"`
	WorkspaceID   string             `yaml:"workspace_id"`
	Mode          core.OperatingMode `yaml:"mode"`
	ApplyDisabled bool               `yaml:"apply_disabled"`
	BlockedReason string             `yaml:"blocked_reason,omitempty"`
	Pending       int                `yaml:"pending"`
	Clusters      []ClusterSummary   `yaml:"clusters"`
	Events        []core.ShadowEvent `yaml:"events"`
}

// Build assembles a snapshot from the current pending set. Clusters are
// recomputed here rather than taken from a caller so the export always
// reflects the same grouping rules the review surfaces use.
func Build(workspaceID string, mode core.OperatingMode, events []core.ShadowEvent) Snapshot {
	clusters := core.BuildClusters(events)

	summaries := make([]ClusterSummary, 0, len(clusters))
	for _, c := range clusters {
		summaries = append(summaries, ClusterSummary{
			Key:              c.Key,
			Size:             c.Size(),
			SafeBatchApprove: c.SafeBatchApprove,
			EventIDs:         c.EventIDs(),
		})
	}

	return Snapshot{
		CapturedAt:    time.Now().UTC(),
		WorkspaceID:   workspaceID,
		Mode:          mode,
		ApplyDisabled: mode.ApplyDisabled(),
		BlockedReason: mode.BlockedReason(),
		Pending:       len(events),
		Clusters:      summaries,
		Events:        events,
	}
}

// Encode renders the snapshot as YAML.
func Encode(s Snapshot) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// WriteTo streams the snapshot to w.
func WriteTo(w io.Writer, s Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// WriteFile writes the snapshot to path atomically, so a half-written
// export can never be mistaken for a complete one.
func WriteFile(path string, s Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := atomicWriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}
