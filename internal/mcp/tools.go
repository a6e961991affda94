package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/feedline/internal/domain/feed"
)

// resolveViewID picks the view for a call: explicit argument first, then the
// transport-provided id, then a fresh view.
func resolveViewID(ctx context.Context, explicit string, svc FeedService) string {
	if explicit != "" {
		return explicit
	}
	if id := getViewID(ctx); id != "" {
		return id
	}
	return svc.NewView()
}

func registerTools(server *sdkmcp.Server, svc FeedService) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_timeline",
		Description: "Render the activity timeline for a view: day groups of deduplicated event clusters, plus window and selection state",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ViewParams) (*sdkmcp.CallToolResult, TimelineResult, error) {
		viewID := resolveViewID(ctx, params.ViewID, svc)
		tl, err := svc.Timeline(ctx, viewID)
		if err != nil {
			return nil, TimelineResult{}, toolError(err)
		}
		return nil, TimelineResult{ViewID: viewID, Timeline: tl}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "open_view",
		Description: "Allocate a fresh timeline view with default filters and window",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params EmptyParams) (*sdkmcp.CallToolResult, OpenViewResult, error) {
		return nil, OpenViewResult{ViewID: svc.NewView()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "close_view",
		Description: "Discard a timeline view and abort any in-flight detail fetch",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ViewParams) (*sdkmcp.CallToolResult, CloseViewResult, error) {
		viewID := resolveViewID(ctx, params.ViewID, svc)
		svc.CloseView(viewID)
		return nil, CloseViewResult{ViewID: viewID}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_filters",
		Description: "Replace the view's filters (sessions, workstream, agent, bucket, text query) and reset the render window",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params SetFiltersParams) (*sdkmcp.CallToolResult, TimelineResult, error) {
		viewID := resolveViewID(ctx, params.ViewID, svc)
		tl, err := svc.SetFilters(ctx, viewID, feed.Filters{
			SessionIDs:   params.SessionIDs,
			WorkstreamID: params.WorkstreamID,
			AgentName:    params.AgentName,
			Bucket:       params.Bucket,
			Query:        params.Query,
		})
		if err != nil {
			return nil, TimelineResult{}, toolError(err)
		}
		return nil, TimelineResult{ViewID: viewID, Timeline: tl}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "toggle_sort",
		Description: "Flip the view's sort direction between newest-first and oldest-first, resetting the render window",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ViewParams) (*sdkmcp.CallToolResult, TimelineResult, error) {
		viewID := resolveViewID(ctx, params.ViewID, svc)
		tl, err := svc.ToggleSort(ctx, viewID)
		if err != nil {
			return nil, TimelineResult{}, toolError(err)
		}
		return nil, TimelineResult{ViewID: viewID, Timeline: tl}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "load_more",
		Description: "Reveal more of the timeline: grow the render window while local data remains, otherwise fetch the next page from the store",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ViewParams) (*sdkmcp.CallToolResult, LoadMoreResult, error) {
		viewID := resolveViewID(ctx, params.ViewID, svc)
		tl, action, err := svc.LoadMore(ctx, viewID)
		if err != nil {
			return nil, LoadMoreResult{}, toolError(err)
		}
		return nil, LoadMoreResult{ViewID: viewID, Action: action.String(), Timeline: tl}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "select_item",
		Description: "Select a visible item by id and return its enriched detail (artifact payload, provenance, transcript summary, headline)",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params SelectItemParams) (*sdkmcp.CallToolResult, DetailResult, error) {
		viewID := resolveViewID(ctx, params.ViewID, svc)
		detail, err := svc.Select(ctx, viewID, params.ID)
		if err != nil {
			return nil, DetailResult{}, toolError(err)
		}
		return nil, DetailResult{ViewID: viewID, Detail: detail}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_item_detail",
		Description: "Return the enriched detail for a visible item by id without moving the selection",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params SelectItemParams) (*sdkmcp.CallToolResult, DetailResult, error) {
		viewID := resolveViewID(ctx, params.ViewID, svc)
		detail, err := svc.Detail(ctx, viewID, params.ID)
		if err != nil {
			return nil, DetailResult{}, toolError(err)
		}
		return nil, DetailResult{ViewID: viewID, Detail: detail}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "select_next",
		Description: "Move the selection forward through the rendered items, wrapping at the end, and return the new detail",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ViewParams) (*sdkmcp.CallToolResult, DetailResult, error) {
		viewID := resolveViewID(ctx, params.ViewID, svc)
		detail, err := svc.SelectNext(ctx, viewID)
		if err != nil {
			return nil, DetailResult{}, toolError(err)
		}
		return nil, DetailResult{ViewID: viewID, Detail: detail}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "select_previous",
		Description: "Move the selection backward through the rendered items, wrapping at the start, and return the new detail",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ViewParams) (*sdkmcp.CallToolResult, DetailResult, error) {
		viewID := resolveViewID(ctx, params.ViewID, svc)
		detail, err := svc.SelectPrevious(ctx, viewID)
		if err != nil {
			return nil, DetailResult{}, toolError(err)
		}
		return nil, DetailResult{ViewID: viewID, Detail: detail}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "clear_selection",
		Description: "Drop the active selection and abort any in-flight detail fetch",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ViewParams) (*sdkmcp.CallToolResult, ClearSelectionResult, error) {
		viewID := resolveViewID(ctx, params.ViewID, svc)
		svc.ClearSelection(viewID)
		return nil, ClearSelectionResult{ViewID: viewID}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "toggle_cluster",
		Description: "Expand or collapse a duplicate cluster by its key and report the new state",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ToggleClusterParams) (*sdkmcp.CallToolResult, ToggleClusterResult, error) {
		viewID := resolveViewID(ctx, params.ViewID, svc)
		expanded, err := svc.ToggleCluster(ctx, viewID, params.Key)
		if err != nil {
			return nil, ToggleClusterResult{}, toolError(err)
		}
		return nil, ToggleClusterResult{ViewID: viewID, Key: params.Key, Expanded: expanded}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "ingest_events",
		Description: "Store raw activity events; duplicates by id are ignored and open views refresh on their next render",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params IngestEventsParams) (*sdkmcp.CallToolResult, IngestEventsResult, error) {
		n, err := svc.Ingest(ctx, params.Items)
		if err != nil {
			return nil, IngestEventsResult{}, toolError(err)
		}
		return nil, IngestEventsResult{Inserted: n}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "upsert_sessions",
		Description: "Replace session tree nodes used for run labels and session/workstream filtering",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params UpsertSessionsParams) (*sdkmcp.CallToolResult, UpsertResult, error) {
		if err := svc.UpsertSessions(ctx, params.Nodes); err != nil {
			return nil, UpsertResult{}, toolError(err)
		}
		return nil, UpsertResult{Updated: len(params.Nodes)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "upsert_initiatives",
		Description: "Replace initiatives and their workstreams",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params UpsertInitiativesParams) (*sdkmcp.CallToolResult, UpsertResult, error) {
		if err := svc.UpsertInitiatives(ctx, params.Initiatives); err != nil {
			return nil, UpsertResult{}, toolError(err)
		}
		return nil, UpsertResult{Updated: len(params.Initiatives)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_sessions",
		Description: "List the session tree nodes",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params EmptyParams) (*sdkmcp.CallToolResult, ListSessionsResult, error) {
		nodes, err := svc.Sessions(ctx)
		if err != nil {
			return nil, ListSessionsResult{}, toolError(err)
		}
		return nil, ListSessionsResult{Sessions: nodes}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_initiatives",
		Description: "List initiatives with their workstreams",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params EmptyParams) (*sdkmcp.CallToolResult, ListInitiativesResult, error) {
		initiatives, err := svc.Initiatives(ctx)
		if err != nil {
			return nil, ListInitiativesResult{}, toolError(err)
		}
		return nil, ListInitiativesResult{Initiatives: initiatives}, nil
	})
}
