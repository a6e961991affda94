package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `feedline renders agent activity as a windowed, filterable timeline.

Core concepts (keep this mental model small):
- Event: an immutable raw activity item (run lifecycle, artifact, decision, handoff, status).
- Bucket: every event classifies into exactly one of message | artifact | decision.
- Cluster: consecutive-day duplicates (same type + title) collapse into one row with a count badge; expand with toggle_cluster.
- View: per-caller timeline state (filters, sort, window, selection, expanded clusters). Pass it via the Mcp-Session-Id header (HTTP), _meta.view_id (stdio), or an explicit view_id argument.
- Window: only a slice of the filtered pool is rendered. load_more grows it locally first, then pages older events out of the store.

Rules of engagement (default workflow):
1) Orient: call get_timeline (a view is created on first use).
2) Narrow: set_filters by session ids, workstream, agent, bucket, or free-text query. Changing filters resets the window.
3) Walk: load_more when you need older items; watch the returned action (grew vs fetch_upstream) and has_more.
4) Inspect: select_item for enriched detail (artifact payload, provenance, transcript summary, headline); select_next / select_previous cycle with wraparound.
5) Clean up: clear_selection aborts in-flight detail fetches; close_view discards the view.

Feeding data:
- ingest_events stores raw events (duplicate ids ignored).
- upsert_sessions / upsert_initiatives maintain the run-label and workstream indexes.

Docs (progressive disclosure):
- feedline://docs/index (what to read when)
- feedline://docs/pipeline (decorate → filter → window → cluster, with bounds)
- feedline://docs/detail (selection, enrichment, and cancellation)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "feedline://docs/index",
		Name:        "docs_index",
		Title:       "feedline docs index",
		Description: "Entry point for agent-facing docs: what exists and what to read.",
		Content: `# feedline: Agent Docs Index

This server is designed for **progressive disclosure**: keep your baseline context small and load deeper docs only when needed.

## Quick start (no deep docs)

1. ` + "`get_timeline`" + ` to orient (day groups, counts, window state).
2. ` + "`set_filters`" + ` to narrow by session, workstream, agent, bucket, or query.
3. ` + "`load_more`" + ` to walk older events; check ` + "`action`" + ` and ` + "`has_more`" + `.
4. ` + "`select_item`" + ` for enriched detail; cycle with ` + "`select_next`" + ` / ` + "`select_previous`" + `.

## Docs (read on demand)

- ` + "`feedline://docs/pipeline`" + ` — how events become rendered rows, and the bounds that keep output small.
- ` + "`feedline://docs/detail`" + ` — what selection returns and how in-flight fetches are cancelled.

## Capabilities & intentional limitations

- The filtered pool is capped; ` + "`overflow`" + ` counts matches beyond the cap and ` + "`total`" + ` includes them.
- Rendering is recomputed per call: nothing derived is persisted, so stale views are impossible.
`,
	},
	{
		URI:         "feedline://docs/pipeline",
		Name:        "docs_pipeline",
		Title:       "Timeline pipeline and bounds",
		Description: "How raw events become rendered rows: classification, filtering, windowing, clustering.",
		Content: `# Timeline pipeline and bounds

Every render runs the same deterministic pass over the raw snapshot:

1. **Decorate**: each event gets exactly one bucket (artifact, decision, or message by default), a resolved run id, an epoch timestamp, and a search text. Duplicate ids keep the first occurrence.
2. **Filter**: session ids (resolved run id membership), workstream, exact agent name, bucket, and a case-insensitive substring query over the search text and run label. The surviving pool is capped; ` + "`overflow`" + ` reports what the cap cut and ` + "`total`" + ` still counts it.
3. **Window**: only the first N pool items render. ` + "`load_more`" + ` grows N in steps up to a ceiling, then pages older events from the store (` + "`action: fetch_upstream`" + `). Filter or sort changes reset N.
4. **Cluster**: within a local-midnight day group, events sharing type + title collapse into one row carrying the count and the newest representative. ` + "`toggle_cluster`" + ` expands a row into its members.

Day labels are Today, Yesterday, then short dates (year shown once it differs).
`,
	},
	{
		URI:         "feedline://docs/detail",
		Name:        "docs_detail",
		Title:       "Selection and detail enrichment",
		Description: "What select_item returns and how superseded fetches are handled.",
		Content: `# Selection and detail enrichment

` + "`select_item`" + ` (and the cycling variants) return a detail bundle:

- the decorated item and its run label,
- the artifact payload, if any, with a display-ready rendering,
- provenance and autopilot metadata when present,
- a transcript summary and a one-line headline.

## Summary sources

- ` + "`feed`" + `: the event's own summary (no transcript available or lookup disabled).
- ` + "`local`" + `: fetched from the local companion service for events carrying a turn reference.
- ` + "`missing`" + `: a transcript was expected but could not be fetched; a notice explains.

## Cancellation

Selecting a new item aborts the previous in-flight transcript fetch; the stale result is silently dropped, never rendered. ` + "`clear_selection`" + ` and ` + "`close_view`" + ` abort too.

## Headlines

Headlines come from the companion service when it supports generation (` + "`source: llm`" + `); otherwise a local heuristic truncates the best available text (` + "`source: heuristic`" + `). A companion that reports the endpoint as unknown is not asked again.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
