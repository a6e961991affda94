package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/feedline/internal/domain/feed"
)

// FeedService defines the feed operations needed by MCP.
type FeedService interface {
	Timeline(ctx context.Context, viewID string) (feed.Timeline, error)
	NewView() string
	CloseView(viewID string)
	SetFilters(ctx context.Context, viewID string, f feed.Filters) (feed.Timeline, error)
	ToggleSort(ctx context.Context, viewID string) (feed.Timeline, error)
	LoadMore(ctx context.Context, viewID string) (feed.Timeline, feed.LoadAction, error)
	Select(ctx context.Context, viewID, itemID string) (feed.Detail, error)
	Detail(ctx context.Context, viewID, itemID string) (feed.Detail, error)
	SelectNext(ctx context.Context, viewID string) (feed.Detail, error)
	SelectPrevious(ctx context.Context, viewID string) (feed.Detail, error)
	ClearSelection(viewID string)
	ToggleCluster(ctx context.Context, viewID, key string) (bool, error)
	Ingest(ctx context.Context, items []feed.RawActivityItem) (int, error)
	UpsertSessions(ctx context.Context, nodes []feed.SessionNode) error
	UpsertInitiatives(ctx context.Context, initiatives []feed.Initiative) error
	Sessions(ctx context.Context) ([]feed.SessionNode, error)
	Initiatives(ctx context.Context) ([]feed.Initiative, error)
}

// Config contains server configuration.
type Config struct {
	Service       FeedService
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "feedline",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(viewMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Service)

	return server
}
