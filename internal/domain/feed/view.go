package feed

import (
	"github.com/ganot/feedline/internal/enrich"
	"github.com/ganot/feedline/internal/extract"
)

// view is the session-scoped mutable state behind one timeline: filters,
// sort order, render window, selection, expand/collapse, and the upstream
// snapshot with its paging position. Everything derived from it is
// recomputed from scratch on every pass.
type view struct {
	filters  Filters
	order    SortOrder
	window   *Window
	nav      *Navigator
	expanded *ExpandedSet

	snapshot []RawActivityItem
	cursor   Cursor
	hasMore  bool
	loaded   bool
	loading  bool
}

func newView() *view {
	return &view{
		order:    SortNewestFirst,
		window:   NewWindow(),
		nav:      &Navigator{},
		expanded: NewExpandedSet(),
	}
}

// Timeline is one rendered pass of the pipeline: windowed day groups plus
// the counters a caller needs to drive the tail trigger.
type Timeline struct {
	Groups      []DayGroup `json:"groups"`
	RenderCount int        `json:"render_count"` // window size after clamping
	PoolSize    int        `json:"pool_size"`    // capped filtered pool
	Total       int        `json:"total"`        // logical matches incl. overflow
	Overflow    int        `json:"overflow"`
	HasMore     bool       `json:"has_more"` // upstream has more pages
	SortOrder   SortOrder  `json:"sort_order"`
	Filters     Filters    `json:"filters"`
	ActiveID    string     `json:"active_id,omitempty"`
	ActiveIndex int        `json:"active_index"` // index in the filtered pool; -1 when unselected
	Direction   Direction  `json:"direction,omitempty"`
	Expanded    []string   `json:"expanded,omitempty"`
}

// Detail is the enriched view of the selected item.
type Detail struct {
	Item       DecoratedActivityItem    `json:"item"`
	RunLabel   string                   `json:"run_label,omitempty"`
	Artifact   *extract.ArtifactPayload `json:"artifact,omitempty"`
	Rendered   *extract.RenderedValue   `json:"rendered_artifact,omitempty"`
	Provenance *extract.Provenance      `json:"provenance,omitempty"`
	Autopilot  *extract.AutopilotSlice  `json:"autopilot_slice,omitempty"`
	Summary    enrich.SummaryResult     `json:"summary"`
	Headline   *HeadlineInfo            `json:"headline,omitempty"`
}

// HeadlineInfo is the derived one-line title with its source tag.
type HeadlineInfo struct {
	Text   string `json:"text"`
	Source string `json:"source"` // llm or heuristic
}
