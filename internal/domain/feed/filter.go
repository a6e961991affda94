package feed

import (
	"sort"
	"strings"
)

// MaxFilterPool bounds the matched pool so a pathological source snapshot
// cannot make a single recompute unbounded. Matches past the cap are counted,
// not dropped from the logical total.
const MaxFilterPool = 1000

// SortOrder orders the filtered pool by timestamp epoch.
type SortOrder string

const (
	SortNewestFirst SortOrder = "newest_first"
	SortOldestFirst SortOrder = "oldest_first"
)

// Toggled returns the opposite order.
func (o SortOrder) Toggled() SortOrder {
	if o == SortOldestFirst {
		return SortNewestFirst
	}
	return SortOldestFirst
}

// Filters are the constraints applied by one pipeline pass. Zero values mean
// "no constraint".
type Filters struct {
	SessionIDs   []string `json:"session_ids,omitempty"` // run ids; membership via resolved run id
	WorkstreamID string   `json:"workstream_id,omitempty"`
	AgentName    string   `json:"agent_name,omitempty"` // exact match
	Bucket       Bucket   `json:"bucket,omitempty"`
	Query        string   `json:"query,omitempty"` // substring over search text + run label
}

// IsZero reports whether no constraint is active.
func (f Filters) IsZero() bool {
	return len(f.SessionIDs) == 0 && f.WorkstreamID == "" && f.AgentName == "" &&
		f.Bucket == "" && strings.TrimSpace(f.Query) == ""
}

// SessionIndex resolves run ids to session tree nodes for workstream lookup
// and run labels.
type SessionIndex struct {
	byRunID map[string]SessionNode
}

// NewSessionIndex builds an index over the session tree. Later nodes with a
// duplicate run id are ignored.
func NewSessionIndex(nodes []SessionNode) *SessionIndex {
	idx := &SessionIndex{byRunID: make(map[string]SessionNode, len(nodes))}
	for _, node := range nodes {
		if node.RunID == "" {
			continue
		}
		if _, ok := idx.byRunID[node.RunID]; !ok {
			idx.byRunID[node.RunID] = node
		}
	}
	return idx
}

// WorkstreamFor returns the workstream id the run belongs to, or "".
func (x *SessionIndex) WorkstreamFor(runID string) string {
	if x == nil {
		return ""
	}
	return x.byRunID[runID].WorkstreamID
}

// LabelFor returns the human label for a run: the session title when known,
// otherwise the run id itself.
func (x *SessionIndex) LabelFor(runID string) string {
	if x != nil {
		if node, ok := x.byRunID[runID]; ok && node.Title != "" {
			return node.Title
		}
	}
	return runID
}

// FilterResult is the outcome of one pipeline pass.
type FilterResult struct {
	Items    []DecoratedActivityItem // capped pool, sorted per order
	Total    int                     // logical match count including overflow
	Overflow int                     // matches beyond the pool cap
}

// ApplyFilters runs a single linear pass over the decorated snapshot,
// applying session, workstream, agent, bucket, and text constraints in that
// order, then stably sorts the capped pool by timestamp epoch. Ties preserve
// source order.
func ApplyFilters(items []DecoratedActivityItem, f Filters, idx *SessionIndex, order SortOrder) FilterResult {
	var sessionSet map[string]struct{}
	if len(f.SessionIDs) > 0 {
		sessionSet = make(map[string]struct{}, len(f.SessionIDs))
		for _, id := range f.SessionIDs {
			sessionSet[id] = struct{}{}
		}
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))

	var result FilterResult
	pool := make([]DecoratedActivityItem, 0, min(len(items), MaxFilterPool))
	for _, item := range items {
		if sessionSet != nil {
			if _, ok := sessionSet[item.ResolvedRunID]; !ok {
				continue
			}
		}
		if f.WorkstreamID != "" && resolveWorkstreamID(item, idx) != f.WorkstreamID {
			continue
		}
		if f.AgentName != "" && item.AgentName != f.AgentName {
			continue
		}
		if f.Bucket != "" && item.Bucket != f.Bucket {
			continue
		}
		if query != "" && !matchesQuery(item, query, idx) {
			continue
		}
		if len(pool) < MaxFilterPool {
			pool = append(pool, item)
		} else {
			result.Overflow++
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if order == SortOldestFirst {
			return pool[i].TimestampEpoch < pool[j].TimestampEpoch
		}
		return pool[i].TimestampEpoch > pool[j].TimestampEpoch
	})

	result.Items = pool
	result.Total = len(pool) + result.Overflow
	return result
}

// resolveWorkstreamID checks metadata direct keys, then a nested context
// object, then falls back to the session tree lookup.
func resolveWorkstreamID(item DecoratedActivityItem, idx *SessionIndex) string {
	if ws, _, ok := item.Metadata.FirstString("workstreamId", "workstream_id"); ok {
		return ws
	}
	if ctx := item.Metadata.Nested("context"); ctx != nil {
		if ws, _, ok := ctx.FirstString("workstreamId", "workstream_id"); ok {
			return ws
		}
	}
	return idx.WorkstreamFor(item.ResolvedRunID)
}

func matchesQuery(item DecoratedActivityItem, query string, idx *SessionIndex) bool {
	if strings.Contains(item.SearchText, query) {
		return true
	}
	label := strings.ToLower(idx.LabelFor(item.ResolvedRunID))
	return label != "" && strings.Contains(label, query)
}
