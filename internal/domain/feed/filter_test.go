package feed_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ganot/feedline/internal/domain/feed"
	"github.com/ganot/feedline/internal/extract"
)

func decorate(items ...feed.RawActivityItem) []feed.DecoratedActivityItem {
	return feed.DecorateAll(items)
}

func emptyIndex() *feed.SessionIndex {
	return feed.NewSessionIndex(nil)
}

func TestApplyFilters_NeutralRoundTrip(t *testing.T) {
	items := decorate(
		feed.RawActivityItem{ID: "a", Timestamp: "2026-03-14T10:00:00Z"},
		feed.RawActivityItem{ID: "b", Timestamp: "2026-03-14T11:00:00Z"},
		feed.RawActivityItem{ID: "c", Timestamp: "2026-03-14T09:00:00Z"},
	)

	res := feed.ApplyFilters(items, feed.Filters{}, emptyIndex(), feed.SortNewestFirst)
	require.Equal(t, 3, res.Total)
	require.Zero(t, res.Overflow)
	require.Equal(t, "b", res.Items[0].ID)
	require.Equal(t, "a", res.Items[1].ID)
	require.Equal(t, "c", res.Items[2].ID)
}

func TestApplyFilters_EmptyInput(t *testing.T) {
	res := feed.ApplyFilters(nil, feed.Filters{Query: "anything"}, emptyIndex(), feed.SortNewestFirst)
	require.Empty(t, res.Items)
	require.Zero(t, res.Total)
	require.Zero(t, res.Overflow)
}

func TestApplyFilters_SortOldestFirst(t *testing.T) {
	items := decorate(
		feed.RawActivityItem{ID: "a", Timestamp: "2026-03-14T10:00:00Z"},
		feed.RawActivityItem{ID: "b", Timestamp: "2026-03-14T09:00:00Z"},
	)

	res := feed.ApplyFilters(items, feed.Filters{}, emptyIndex(), feed.SortOldestFirst)
	require.Equal(t, "b", res.Items[0].ID)
	require.Equal(t, "a", res.Items[1].ID)
}

func TestApplyFilters_TiesPreserveSourceOrder(t *testing.T) {
	items := decorate(
		feed.RawActivityItem{ID: "a", Timestamp: "2026-03-14T10:00:00Z"},
		feed.RawActivityItem{ID: "b", Timestamp: "2026-03-14T10:00:00Z"},
		feed.RawActivityItem{ID: "c", Timestamp: "2026-03-14T10:00:00Z"},
	)

	res := feed.ApplyFilters(items, feed.Filters{}, emptyIndex(), feed.SortNewestFirst)
	require.Equal(t, []string{"a", "b", "c"}, ids(res.Items))
}

func TestApplyFilters_SessionMembership(t *testing.T) {
	items := decorate(
		feed.RawActivityItem{ID: "a", RunID: "r1"},
		feed.RawActivityItem{ID: "b", Metadata: extract.Bag{"run_id": "r2"}},
		feed.RawActivityItem{ID: "c", RunID: "r3"},
	)

	res := feed.ApplyFilters(items, feed.Filters{SessionIDs: []string{"r1", "r2"}}, emptyIndex(), feed.SortNewestFirst)
	require.Equal(t, 2, res.Total)
	require.ElementsMatch(t, []string{"a", "b"}, ids(res.Items))
}

func TestApplyFilters_Workstream(t *testing.T) {
	idx := feed.NewSessionIndex([]feed.SessionNode{
		{ID: "s1", RunID: "r1", WorkstreamID: "ws1"},
	})
	items := decorate(
		// via session tree
		feed.RawActivityItem{ID: "a", RunID: "r1"},
		// via direct metadata key
		feed.RawActivityItem{ID: "b", Metadata: extract.Bag{"workstream_id": "ws1"}},
		// via nested context object
		feed.RawActivityItem{ID: "c", Metadata: extract.Bag{"context": map[string]any{"workstreamId": "ws1"}}},
		// no workstream at all
		feed.RawActivityItem{ID: "d"},
	)

	res := feed.ApplyFilters(items, feed.Filters{WorkstreamID: "ws1"}, idx, feed.SortNewestFirst)
	require.ElementsMatch(t, []string{"a", "b", "c"}, ids(res.Items))
}

func TestApplyFilters_AgentExactMatch(t *testing.T) {
	items := decorate(
		feed.RawActivityItem{ID: "a", AgentName: "Scout"},
		feed.RawActivityItem{ID: "b", AgentName: "scout"},
	)

	res := feed.ApplyFilters(items, feed.Filters{AgentName: "Scout"}, emptyIndex(), feed.SortNewestFirst)
	require.Equal(t, []string{"a"}, ids(res.Items))
}

func TestApplyFilters_Bucket(t *testing.T) {
	items := decorate(
		feed.RawActivityItem{ID: "a", Type: feed.TypeArtifactCreated},
		feed.RawActivityItem{ID: "b", Type: feed.TypeStatusUpdate},
		feed.RawActivityItem{ID: "c", Type: feed.TypeDecisionRequested},
	)

	res := feed.ApplyFilters(items, feed.Filters{Bucket: feed.BucketDecision}, emptyIndex(), feed.SortNewestFirst)
	require.Equal(t, []string{"c"}, ids(res.Items))
}

func TestApplyFilters_QueryOverSearchTextAndRunLabel(t *testing.T) {
	idx := feed.NewSessionIndex([]feed.SessionNode{
		{ID: "s1", RunID: "r1", Title: "Payments Migration"},
	})
	items := decorate(
		feed.RawActivityItem{ID: "a", Title: "Database backup finished"},
		feed.RawActivityItem{ID: "b", RunID: "r1", Title: "something else"},
		feed.RawActivityItem{ID: "c", Title: "unrelated"},
	)

	byText := feed.ApplyFilters(items, feed.Filters{Query: "BACKUP"}, idx, feed.SortNewestFirst)
	require.Equal(t, []string{"a"}, ids(byText.Items))

	byLabel := feed.ApplyFilters(items, feed.Filters{Query: "payments"}, idx, feed.SortNewestFirst)
	require.Equal(t, []string{"b"}, ids(byLabel.Items))
}

func TestApplyFilters_PoolCapAndOverflow(t *testing.T) {
	raw := make([]feed.RawActivityItem, 0, feed.MaxFilterPool+5)
	for i := 0; i < feed.MaxFilterPool+5; i++ {
		raw = append(raw, feed.RawActivityItem{ID: fmt.Sprintf("item-%d", i)})
	}
	items := decorate(raw...)

	res := feed.ApplyFilters(items, feed.Filters{}, emptyIndex(), feed.SortNewestFirst)
	require.Len(t, res.Items, feed.MaxFilterPool)
	require.Equal(t, 5, res.Overflow)
	require.Equal(t, feed.MaxFilterPool+5, res.Total)
}

func TestSessionIndex_LabelFor(t *testing.T) {
	idx := feed.NewSessionIndex([]feed.SessionNode{
		{ID: "s1", RunID: "r1", Title: "Nightly Batch"},
		{ID: "s2", RunID: "r2"},
	})

	require.Equal(t, "Nightly Batch", idx.LabelFor("r1"))
	require.Equal(t, "r2", idx.LabelFor("r2"))
	require.Equal(t, "r9", idx.LabelFor("r9"))
}

func TestSortOrder_Toggled(t *testing.T) {
	require.Equal(t, feed.SortOldestFirst, feed.SortNewestFirst.Toggled())
	require.Equal(t, feed.SortNewestFirst, feed.SortOldestFirst.Toggled())
}

func ids(items []feed.DecoratedActivityItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
