// Package testserver wires a full in-memory stack (SQLite, feed service,
// MCP server, SDK client) for functional tests.
package testserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/ganot/feedline/internal/domain/feed"
	"github.com/ganot/feedline/internal/enrich"
	"github.com/ganot/feedline/internal/mcp"
	"github.com/ganot/feedline/internal/sqlite"
)

type TestServer struct {
	DB      *sqlite.DB
	Service *feed.Service
	Session *sdkmcp.ClientSession
}

// New builds the stack over a per-test in-memory database and connects an
// SDK client through in-memory transports. An optional enricher adapter
// wires detail enrichment; nil disables it.
func New(t *testing.T, enricher *enrich.Adapter) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	activityRepo := sqlite.NewActivityRepository(db)
	sessionRepo := sqlite.NewSessionRepository(db)
	initiativeRepo := sqlite.NewInitiativeRepository(db)

	svc := feed.NewService(activityRepo, sessionRepo, initiativeRepo, enricher, nil)

	server := mcp.NewServer(mcp.Config{
		Service:       svc,
		TransportMode: "stdio",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("Failed to connect server: %v", err)
	}

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("Failed to connect client: %v", err)
	}

	t.Cleanup(func() {
		clientSession.Close()
		serverSession.Close()
		cancel()
		_ = db.Close()
	})

	return &TestServer{
		DB:      db,
		Service: svc,
		Session: clientSession,
	}
}

// CallTool invokes a tool and returns the text content as raw JSON.
func (ts *TestServer) CallTool(t *testing.T, name string, args map[string]any) json.RawMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := ts.Session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "CallTool %s failed", name)
	require.False(t, result.IsError, "Tool %s returned error", name)
	require.NotEmpty(t, result.Content, "Tool %s returned no content", name)

	for _, content := range result.Content {
		if textContent, ok := content.(*sdkmcp.TextContent); ok {
			return json.RawMessage(textContent.Text)
		}
	}
	t.Fatalf("Tool %s returned no text content", name)
	return nil
}

// CallToolErr invokes a tool expecting a failure and returns the error.
func (ts *TestServer) CallToolErr(t *testing.T, name string, args map[string]any) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := ts.Session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return err
	}
	require.True(t, result.IsError, "Tool %s unexpectedly succeeded", name)
	for _, content := range result.Content {
		if textContent, ok := content.(*sdkmcp.TextContent); ok {
			return fmt.Errorf("%s", textContent.Text)
		}
	}
	return fmt.Errorf("tool %s failed without text content", name)
}
