package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ganot/feedline/internal/domain/feed"
	"github.com/ganot/feedline/internal/sqlite"
)

func TestSessionRepository_UpsertAndList(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewSessionRepository(newTestDB(t))

	require.NoError(t, repo.Upsert(ctx, []feed.SessionNode{
		{ID: "s1", RunID: "r1", Title: "Nightly Batch", WorkstreamID: "ws1"},
		{ID: "s2", RunID: "r2", Status: "active"},
		{RunID: "ignored"}, // no id: skipped
	}))

	nodes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	require.Equal(t, "s1", nodes[0].ID)
	require.Equal(t, "Nightly Batch", nodes[0].Title)
	require.Equal(t, "ws1", nodes[0].WorkstreamID)

	// upsert replaces by id
	require.NoError(t, repo.Upsert(ctx, []feed.SessionNode{
		{ID: "s1", RunID: "r1", Title: "Renamed"},
	}))
	nodes, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	require.Equal(t, "Renamed", nodes[0].Title)
}

func TestInitiativeRepository_UpsertReplacesWorkstreams(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewInitiativeRepository(newTestDB(t))

	require.NoError(t, repo.Upsert(ctx, []feed.Initiative{
		{
			ID:   "in1",
			Name: "Platform",
			Workstreams: []feed.Workstream{
				{ID: "ws1", Name: "API"},
				{ID: "ws2", Name: "Storage"},
			},
		},
	}))

	initiatives, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, initiatives, 1)
	require.Len(t, initiatives[0].Workstreams, 2)

	// re-upsert with a smaller workstream set: removals propagate
	require.NoError(t, repo.Upsert(ctx, []feed.Initiative{
		{
			ID:   "in1",
			Name: "Platform",
			Workstreams: []feed.Workstream{
				{ID: "ws2", Name: "Storage"},
			},
		},
	}))

	initiatives, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, initiatives, 1)
	require.Len(t, initiatives[0].Workstreams, 1)
	require.Equal(t, "ws2", initiatives[0].Workstreams[0].ID)
}
