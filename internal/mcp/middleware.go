package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const viewIDKey contextKey = iota

// getViewID extracts the caller's view ID from context.
func getViewID(ctx context.Context) string {
	v, _ := ctx.Value(viewIDKey).(string)
	return v
}

// viewMiddleware extracts the view ID from the Mcp-Session-Id header (HTTP)
// or request metadata (stdio). A caller without either still works: every
// tool also accepts an explicit view_id argument.
func viewMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			var viewID string

			// Try HTTP header first (HTTP transport)
			extra := req.GetExtra()
			if extra != nil && extra.Header != nil {
				viewID = extra.Header.Get("Mcp-Session-Id")
			}

			// If not in header, check metadata (stdio transport)
			// Note: Some notifications (like "initialized") have nil params,
			// so we must check carefully to avoid nil pointer dereference.
			if viewID == "" {
				if params := req.GetParams(); params != nil {
					// Use defer/recover to safely handle cases where GetMeta
					// is called on a nil underlying value (SDK quirk)
					func() {
						defer func() { recover() }()
						if meta := params.GetMeta(); meta != nil {
							if vid, ok := meta["view_id"].(string); ok {
								viewID = vid
							}
						}
					}()
				}
			}

			if viewID != "" {
				ctx = context.WithValue(ctx, viewIDKey, viewID)
			}

			return next(ctx, method, req)
		}
	}
}
