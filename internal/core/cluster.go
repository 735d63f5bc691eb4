package core

import "sort"

// Cluster is an ephemeral grouping of pending events that share a
// proposal-group key. Clusters are recomputed from the pending set on
// every change and are never persisted; a key may reappear after a
// refresh with entirely different membership.
type Cluster struct {
	Key    string
	Events []ShadowEvent

	// SafeBatchApprove is true iff every member is free of risk
	// reasons and open questions. A single flagged member poisons
	// the whole cluster.
	SafeBatchApprove bool
}

// Size returns the member count.
func (c Cluster) Size() int {
	return len(c.Events)
}

// EventIDs returns the member ids in cluster order.
func (c Cluster) EventIDs() []string {
	ids := make([]string, len(c.Events))
	for i, ev := range c.Events {
		ids[i] = ev.ID
	}
	return ids
}

// BuildClusters groups events by proposal-group key. Keys are grouped
// in first-seen order and members keep their fetch order within each
// cluster. The result is sorted by descending member count with ties
// left in first-seen order, a display priority the review surfaces
// rely on for stable layouts.
func BuildClusters(events []ShadowEvent) []Cluster {
	var order []string
	byKey := make(map[string]*Cluster)

	for _, ev := range events {
		key := ev.ProposalGroup()
		c, ok := byKey[key]
		if !ok {
			c = &Cluster{Key: key, SafeBatchApprove: true}
			byKey[key] = c
			order = append(order, key)
		}
		c.Events = append(c.Events, ev)
		if !ev.BatchSafe() {
			c.SafeBatchApprove = false
		}
	}

	clusters := make([]Cluster, 0, len(order))
	for _, key := range order {
		clusters = append(clusters, *byKey[key])
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		return len(clusters[i].Events) > len(clusters[j].Events)
	})
	return clusters
}

// FindCluster returns the cluster with the given key, if present.
func FindCluster(clusters []Cluster, key string) (Cluster, bool) {
	for _, c := range clusters {
		if c.Key == key {
			return c, true
		}
	}
	return Cluster{}, false
}
