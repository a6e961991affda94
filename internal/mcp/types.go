package mcp

import (
	"github.com/ganot/feedline/internal/domain/feed"
)

type ViewParams struct {
	ViewID string `json:"view_id,omitempty"`
}

type SetFiltersParams struct {
	ViewID       string      `json:"view_id,omitempty"`
	SessionIDs   []string    `json:"session_ids,omitempty"`
	WorkstreamID string      `json:"workstream_id,omitempty"`
	AgentName    string      `json:"agent_name,omitempty"`
	Bucket       feed.Bucket `json:"bucket,omitempty"`
	Query        string      `json:"query,omitempty"`
}

type SelectItemParams struct {
	ViewID string `json:"view_id,omitempty"`
	ID     string `json:"id"`
}

type ToggleClusterParams struct {
	ViewID string `json:"view_id,omitempty"`
	Key    string `json:"key"`
}

type IngestEventsParams struct {
	Items []feed.RawActivityItem `json:"items"`
}

type UpsertSessionsParams struct {
	Nodes []feed.SessionNode `json:"nodes"`
}

type UpsertInitiativesParams struct {
	Initiatives []feed.Initiative `json:"initiatives"`
}

type EmptyParams struct{}

// TimelineResult carries the rendered timeline plus the view id it belongs
// to, so stdio clients without header support can pass it back explicitly.
type TimelineResult struct {
	ViewID   string        `json:"view_id"`
	Timeline feed.Timeline `json:"timeline"`
}

type LoadMoreResult struct {
	ViewID   string        `json:"view_id"`
	Action   string        `json:"action"` // none, grew, fetch_upstream
	Timeline feed.Timeline `json:"timeline"`
}

type DetailResult struct {
	ViewID string      `json:"view_id"`
	Detail feed.Detail `json:"detail"`
}

type ToggleClusterResult struct {
	ViewID   string `json:"view_id"`
	Key      string `json:"key"`
	Expanded bool   `json:"expanded"`
}

type ClearSelectionResult struct {
	ViewID string `json:"view_id"`
}

type OpenViewResult struct {
	ViewID string `json:"view_id"`
}

type CloseViewResult struct {
	ViewID string `json:"view_id"`
}

type IngestEventsResult struct {
	Inserted int `json:"inserted"`
}

type UpsertResult struct {
	Updated int `json:"updated"`
}

type ListSessionsResult struct {
	Sessions []feed.SessionNode `json:"sessions"`
}

type ListInitiativesResult struct {
	Initiatives []feed.Initiative `json:"initiatives"`
}
