package feed_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ganot/feedline/internal/domain/feed"
	"github.com/ganot/feedline/internal/extract"
	"github.com/ganot/feedline/internal/repository/mocks"
)

func fixedClock() (func() time.Time, *time.Location) {
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	return func() time.Time { return now }, time.UTC
}

func newTestService(t *testing.T, page feed.Page) (*feed.Service, *mocks.ActivityRepository) {
	t.Helper()
	activities := &mocks.ActivityRepository{}
	sessions := &mocks.SessionRepository{}
	initiatives := &mocks.InitiativeRepository{}

	activities.On("List", mock.Anything, feed.Cursor{}, mock.Anything).Return(page, nil)
	sessions.On("List", mock.Anything).Return([]feed.SessionNode{}, nil)

	svc := feed.NewService(activities, sessions, initiatives, nil, nil)
	now, loc := fixedClock()
	svc.SetClock(now, loc)
	return svc, activities
}

func snapshot(n int) []feed.RawActivityItem {
	items := make([]feed.RawActivityItem, 0, n)
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		items = append(items, feed.RawActivityItem{
			ID:        fmt.Sprintf("item-%03d", i),
			Type:      feed.TypeStatusUpdate,
			Title:     fmt.Sprintf("Update %03d", i),
			Timestamp: base.Add(-time.Duration(i) * time.Minute).Format(time.RFC3339),
		})
	}
	return items
}

func TestService_TimelineFirstLoad(t *testing.T) {
	ctx := context.Background()
	svc, activities := newTestService(t, feed.Page{Items: snapshot(3)})

	viewID := svc.NewView()
	tl, err := svc.Timeline(ctx, viewID)
	require.NoError(t, err)
	require.Equal(t, 3, tl.Total)
	require.Equal(t, 3, tl.RenderCount)
	require.False(t, tl.HasMore)
	require.Len(t, tl.Groups, 1)
	require.Equal(t, "Today", tl.Groups[0].Label)

	// the snapshot is fetched once and reused across passes
	_, err = svc.Timeline(ctx, viewID)
	require.NoError(t, err)
	activities.AssertNumberOfCalls(t, "List", 1)
}

func TestService_TimelineEmptySnapshot(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, feed.Page{})

	viewID := svc.NewView()
	tl, err := svc.Timeline(ctx, viewID)
	require.NoError(t, err)
	require.Zero(t, tl.Total)
	require.Zero(t, tl.RenderCount)
	require.Empty(t, tl.Groups)
	require.False(t, tl.HasMore)
	require.Equal(t, -1, tl.ActiveIndex)
}

func TestService_TimelineRequiresViewID(t *testing.T) {
	svc, _ := newTestService(t, feed.Page{})
	_, err := svc.Timeline(context.Background(), "")
	require.ErrorIs(t, err, feed.ErrInvalidInput)
}

func TestService_LoadMoreGrowsWindow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, feed.Page{Items: snapshot(50)})

	viewID := svc.NewView()
	tl, err := svc.Timeline(ctx, viewID)
	require.NoError(t, err)
	require.Equal(t, feed.InitialRenderCount, tl.RenderCount)

	tl, action, err := svc.LoadMore(ctx, viewID)
	require.NoError(t, err)
	require.Equal(t, feed.LoadGrew, action)
	require.Equal(t, 50, tl.RenderCount)
}

func TestService_LoadMoreFetchesUpstream(t *testing.T) {
	ctx := context.Background()
	first := snapshot(feed.InitialRenderCount)
	cursor := feed.Cursor{Timestamp: first[len(first)-1].Timestamp, ID: first[len(first)-1].ID}

	activities := &mocks.ActivityRepository{}
	sessions := &mocks.SessionRepository{}
	initiatives := &mocks.InitiativeRepository{}
	sessions.On("List", mock.Anything).Return([]feed.SessionNode{}, nil)
	activities.On("List", mock.Anything, feed.Cursor{}, mock.Anything).
		Return(feed.Page{Items: first, Next: cursor, HasMore: true}, nil).Once()

	older := []feed.RawActivityItem{
		{ID: "older-1", Type: feed.TypeStatusUpdate, Timestamp: "2026-03-13T10:00:00Z"},
	}
	activities.On("List", mock.Anything, cursor, mock.Anything).
		Return(feed.Page{Items: older}, nil).Once()

	svc := feed.NewService(activities, sessions, initiatives, nil, nil)
	now, loc := fixedClock()
	svc.SetClock(now, loc)

	viewID := svc.NewView()
	tl, action, err := svc.LoadMore(ctx, viewID)
	require.NoError(t, err)
	require.Equal(t, feed.LoadFetchUpstream, action)
	require.Equal(t, feed.InitialRenderCount+1, tl.Total)
	require.False(t, tl.HasMore)
	activities.AssertExpectations(t)
}

func TestService_SetFiltersResetsWindow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, feed.Page{Items: snapshot(50)})

	viewID := svc.NewView()
	_, action, err := svc.LoadMore(ctx, viewID)
	require.NoError(t, err)
	require.Equal(t, feed.LoadGrew, action)

	tl, err := svc.SetFilters(ctx, viewID, feed.Filters{})
	require.NoError(t, err)
	require.Equal(t, feed.InitialRenderCount, tl.RenderCount)
}

func TestService_ToggleSort(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, feed.Page{Items: snapshot(50)})

	viewID := svc.NewView()
	_, _, err := svc.LoadMore(ctx, viewID)
	require.NoError(t, err)

	tl, err := svc.ToggleSort(ctx, viewID)
	require.NoError(t, err)
	require.Equal(t, feed.SortOldestFirst, tl.SortOrder)
	// toggling re-sorts and resets the window
	require.Equal(t, feed.InitialRenderCount, tl.RenderCount)
	require.Equal(t, "item-049", tl.Groups[0].Clusters[0].Representative.ID)
}

func TestService_SelectReturnsEnrichedDetail(t *testing.T) {
	ctx := context.Background()
	items := snapshot(2)
	items[0].Metadata = extract.Bag{"output": "report.md"}
	svc, _ := newTestService(t, feed.Page{Items: items})

	viewID := svc.NewView()
	detail, err := svc.Select(ctx, viewID, items[0].ID)
	require.NoError(t, err)
	require.Equal(t, items[0].ID, detail.Item.ID)
	require.NotNil(t, detail.Artifact)
	require.Equal(t, "output", detail.Artifact.Source)
	require.NotNil(t, detail.Rendered)
	require.Equal(t, "feed", string(detail.Summary.Source))
	require.NotNil(t, detail.Headline)

	tl, err := svc.Timeline(ctx, viewID)
	require.NoError(t, err)
	require.Equal(t, items[0].ID, tl.ActiveID)
	require.Equal(t, 0, tl.ActiveIndex)
}

func TestService_DetailDoesNotMoveSelection(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, feed.Page{Items: snapshot(2)})

	viewID := svc.NewView()
	detail, err := svc.Detail(ctx, viewID, "item-001")
	require.NoError(t, err)
	require.Equal(t, "item-001", detail.Item.ID)

	tl, err := svc.Timeline(ctx, viewID)
	require.NoError(t, err)
	require.Empty(t, tl.ActiveID)

	_, err = svc.Detail(ctx, viewID, "no-such-item")
	require.ErrorIs(t, err, feed.ErrItemNotFound)
}

func TestService_SelectValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, feed.Page{Items: snapshot(2)})

	viewID := svc.NewView()
	_, err := svc.Select(ctx, viewID, "")
	require.ErrorIs(t, err, feed.ErrInvalidInput)

	_, err = svc.Select(ctx, viewID, "no-such-item")
	require.ErrorIs(t, err, feed.ErrItemNotFound)
}

func TestService_SelectionCycling(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, feed.Page{Items: snapshot(3)})

	viewID := svc.NewView()
	detail, err := svc.SelectNext(ctx, viewID)
	require.NoError(t, err)
	require.Equal(t, "item-000", detail.Item.ID)

	detail, err = svc.SelectNext(ctx, viewID)
	require.NoError(t, err)
	require.Equal(t, "item-001", detail.Item.ID)

	detail, err = svc.SelectPrevious(ctx, viewID)
	require.NoError(t, err)
	require.Equal(t, "item-000", detail.Item.ID)

	svc.ClearSelection(viewID)
	tl, err := svc.Timeline(ctx, viewID)
	require.NoError(t, err)
	require.Empty(t, tl.ActiveID)
	require.Equal(t, -1, tl.ActiveIndex)
}

func TestService_SelectionSurvivesResort(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, feed.Page{Items: snapshot(50)})

	viewID := svc.NewView()
	_, err := svc.Select(ctx, viewID, "item-000")
	require.NoError(t, err)

	// flipping the sort pushes the newest item past the reset window; the
	// selection follows the id through the full filtered pool
	tl, err := svc.ToggleSort(ctx, viewID)
	require.NoError(t, err)
	require.Equal(t, "item-000", tl.ActiveID)
	require.Equal(t, 49, tl.ActiveIndex)

	// cycling ranges over the pool, not the rendered slice
	detail, err := svc.SelectNext(ctx, viewID)
	require.NoError(t, err)
	require.Equal(t, "item-049", detail.Item.ID)
}

func TestService_ToggleCluster(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, feed.Page{Items: snapshot(1)})

	viewID := svc.NewView()
	_, err := svc.ToggleCluster(ctx, viewID, "")
	require.ErrorIs(t, err, feed.ErrInvalidInput)

	expanded, err := svc.ToggleCluster(ctx, viewID, "some-key")
	require.NoError(t, err)
	require.True(t, expanded)

	expanded, err = svc.ToggleCluster(ctx, viewID, "some-key")
	require.NoError(t, err)
	require.False(t, expanded)
}

func TestService_IngestRefreshesViews(t *testing.T) {
	ctx := context.Background()
	activities := &mocks.ActivityRepository{}
	sessions := &mocks.SessionRepository{}
	initiatives := &mocks.InitiativeRepository{}
	sessions.On("List", mock.Anything).Return([]feed.SessionNode{}, nil)
	activities.On("List", mock.Anything, feed.Cursor{}, mock.Anything).Return(feed.Page{Items: snapshot(1)}, nil)
	activities.On("Insert", mock.Anything, mock.Anything).Return(1, nil)

	svc := feed.NewService(activities, sessions, initiatives, nil, nil)
	now, loc := fixedClock()
	svc.SetClock(now, loc)

	viewID := svc.NewView()
	_, err := svc.Timeline(ctx, viewID)
	require.NoError(t, err)
	activities.AssertNumberOfCalls(t, "List", 1)

	n, err := svc.Ingest(ctx, []feed.RawActivityItem{{Type: feed.TypeRunStarted}})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// the view snapshot is refetched on the next pass
	_, err = svc.Timeline(ctx, viewID)
	require.NoError(t, err)
	activities.AssertNumberOfCalls(t, "List", 2)
}

func TestService_IngestEmptyIsNoop(t *testing.T) {
	svc, activities := newTestService(t, feed.Page{})
	n, err := svc.Ingest(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, n)
	activities.AssertNotCalled(t, "Insert")
}
