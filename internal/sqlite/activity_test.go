package sqlite_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ganot/feedline/internal/domain/feed"
	"github.com/ganot/feedline/internal/extract"
	"github.com/ganot/feedline/internal/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestActivityRepository_InsertAndList(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewActivityRepository(newTestDB(t))

	items := []feed.RawActivityItem{
		{
			ID:        "a",
			Type:      feed.TypeRunStarted,
			Timestamp: "2026-03-14T10:00:00Z",
			Title:     "Run started",
			AgentName: "scout",
			RunID:     "r1",
			Metadata:  extract.Bag{"runId": "r1", "kind": "lifecycle"},
		},
		{
			ID:               "b",
			Type:             feed.TypeDecisionRequested,
			Timestamp:        "2026-03-14T11:00:00Z",
			Title:            "Approve rollout",
			DecisionRequired: true,
		},
	}

	n, err := repo.Insert(ctx, items)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	page, err := repo.List(ctx, feed.Cursor{}, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.False(t, page.HasMore)

	// newest first
	require.Equal(t, "b", page.Items[0].ID)
	require.True(t, page.Items[0].DecisionRequired)
	require.Equal(t, "a", page.Items[1].ID)
	require.Equal(t, "r1", page.Items[1].RunID)
	require.Equal(t, "lifecycle", page.Items[1].Metadata["kind"])
}

func TestActivityRepository_DuplicateIDsIgnored(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewActivityRepository(newTestDB(t))

	_, err := repo.Insert(ctx, []feed.RawActivityItem{
		{ID: "a", Type: feed.TypeRunStarted, Title: "original"},
	})
	require.NoError(t, err)

	n, err := repo.Insert(ctx, []feed.RawActivityItem{
		{ID: "a", Type: feed.TypeRunStarted, Title: "replay"},
	})
	require.NoError(t, err)
	require.Zero(t, n)

	page, err := repo.List(ctx, feed.Cursor{}, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "original", page.Items[0].Title)
}

func TestActivityRepository_AssignsIDWhenMissing(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewActivityRepository(newTestDB(t))

	n, err := repo.Insert(ctx, []feed.RawActivityItem{
		{Type: feed.TypeStatusUpdate, Title: "no id"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	page, err := repo.List(ctx, feed.Cursor{}, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotEmpty(t, page.Items[0].ID)
}

func TestActivityRepository_KeysetPaging(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewActivityRepository(newTestDB(t))

	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	var items []feed.RawActivityItem
	for i := 0; i < 25; i++ {
		items = append(items, feed.RawActivityItem{
			ID:        fmt.Sprintf("item-%02d", i),
			Type:      feed.TypeStatusUpdate,
			Timestamp: base.Add(-time.Duration(i) * time.Minute).Format(time.RFC3339),
		})
	}
	_, err := repo.Insert(ctx, items)
	require.NoError(t, err)

	seen := make(map[string]bool)
	cursor := feed.Cursor{}
	pages := 0
	for {
		page, err := repo.List(ctx, cursor, 10)
		require.NoError(t, err)
		for _, item := range page.Items {
			require.False(t, seen[item.ID], "item %s returned twice", item.ID)
			seen[item.ID] = true
		}
		pages++
		if !page.HasMore {
			break
		}
		cursor = page.Next
	}

	require.Equal(t, 3, pages)
	require.Len(t, seen, 25)
}

func TestActivityRepository_BadStoredMetadataTolerated(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := sqlite.NewActivityRepository(db)

	_, err := db.Exec(
		`INSERT INTO activity_items (id, type, ts, metadata) VALUES (?, ?, ?, ?)`,
		"bad", "status_update", "2026-03-14T10:00:00Z", "{not json",
	)
	require.NoError(t, err)

	page, err := repo.List(ctx, feed.Cursor{}, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Nil(t, page.Items[0].Metadata)
}
