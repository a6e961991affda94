package enrich

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/ganot/feedline/internal/extract"
)

// localTurnSource is the metadata.source literal that marks an item as
// carrying a local transcript reference.
const localTurnSource = "local_openclaw"

// SummarySource is the per-selection summary state machine: feed (payload
// summary), local (override fetched), or missing (fetch failed/empty/404).
type SummarySource string

const (
	SourceFeed    SummarySource = "feed"
	SourceLocal   SummarySource = "local"
	SourceMissing SummarySource = "missing"
)

// ErrSuperseded is returned when a newer selection aborted this fetch. It is
// expected and must be suppressed, never surfaced.
var ErrSuperseded = errors.New("selection superseded")

// SummaryResult is the enrichment outcome for one selection.
type SummaryResult struct {
	Source SummarySource `json:"source"`
	Text   string        `json:"text,omitempty"`
	Notice string        `json:"notice,omitempty"`
}

// Adapter runs the cancellable dual fetch on selection. Exactly one detail
// fetch may be in flight; a new selection cancels and replaces it. Once the
// headline endpoint answers 404/405 it is never called again for the life of
// the adapter.
type Adapter struct {
	client *Client
	logger *slog.Logger

	mu                  sync.Mutex
	cancel              context.CancelFunc
	headlineUnsupported bool
}

// NewAdapter wraps a client. A nil client disables remote enrichment: every
// selection resolves to the feed summary and heuristic headlines.
func NewAdapter(client *Client, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{client: client, logger: logger}
}

// TurnRefFromMetadata recognizes a local-turn reference: metadata.source must
// equal the fixed literal and turnId must be non-empty.
func TurnRefFromMetadata(meta extract.Bag, runID string) (TurnRef, bool) {
	source, _, _ := meta.FirstString("source")
	if source != localTurnSource {
		return TurnRef{}, false
	}
	turnID, _, ok := meta.FirstString("turnId", "turn_id")
	if !ok {
		return TurnRef{}, false
	}
	ref := TurnRef{TurnID: turnID, RunID: runID}
	ref.SessionKey, _, _ = meta.FirstString("sessionKey", "session_key")
	return ref, true
}

// Summary resolves the summary for a newly selected item. It cancels any
// in-flight fetch first. Items without a recognized local-turn reference stay
// on the feed summary; otherwise a single fetch attempt decides between local
// and missing. A selection superseded mid-flight returns ErrSuperseded.
func (a *Adapter) Summary(ctx context.Context, meta extract.Bag, runID string) (SummaryResult, error) {
	ref, ok := TurnRefFromMetadata(meta, runID)
	if !ok || a.client == nil {
		a.CancelInFlight()
		return SummaryResult{Source: SourceFeed}, nil
	}

	fetchCtx := a.replaceInFlight(ctx)
	text, err := a.client.TurnDetail(fetchCtx, ref)
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(fetchCtx.Err(), context.Canceled):
		return SummaryResult{}, ErrSuperseded
	case errors.Is(err, ErrNotFound):
		return SummaryResult{Source: SourceMissing, Notice: "Full transcript unavailable"}, nil
	case err != nil:
		a.logger.Debug("turn detail fetch failed", "turn_id", ref.TurnID, "error", err)
		return SummaryResult{Source: SourceMissing, Notice: "Full transcript unavailable"}, nil
	case text == "":
		return SummaryResult{Source: SourceMissing, Notice: "Full transcript unavailable"}, nil
	default:
		return SummaryResult{Source: SourceLocal, Text: text}, nil
	}
}

// Headline derives a one-line title from the first non-empty of override
// summary, summary, description, title. The remote endpoint is tried once
// per call until it reports the capability absent; failures fall back to the
// local heuristic silently.
func (a *Adapter) Headline(ctx context.Context, overrideSummary, summary, description, title string, eventType string) Headline {
	text := firstNonEmpty(overrideSummary, summary, description, title)
	fallback := Headline{Text: HeuristicHeadline(text), Source: HeadlineHeuristic}

	a.mu.Lock()
	unsupported := a.headlineUnsupported || a.client == nil
	a.mu.Unlock()
	if unsupported {
		return fallback
	}

	h, err := a.client.GenerateHeadline(ctx, text, title, eventType)
	switch {
	case errors.Is(err, ErrUnsupported):
		a.mu.Lock()
		a.headlineUnsupported = true
		a.mu.Unlock()
		return fallback
	case err != nil:
		a.logger.Debug("headline fetch failed", "error", err)
		return fallback
	case h.Text == "":
		return fallback
	default:
		return h
	}
}

// HeadlineSupported reports whether the remote headline endpoint is still
// considered available.
func (a *Adapter) HeadlineSupported() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.headlineUnsupported && a.client != nil
}

// CancelInFlight aborts the current detail fetch, if any. Called on
// selection clear and on teardown so no orphaned request outlives its
// selection.
func (a *Adapter) CancelInFlight() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// replaceInFlight cancels the previous fetch and registers a new cancellable
// context derived from ctx.
func (a *Adapter) replaceInFlight(ctx context.Context) context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	return fetchCtx
}

// HeuristicHeadline takes the first line of the text, trimmed to a title
// length.
func HeuristicHeadline(text string) string {
	text = strings.TrimSpace(text)
	if at := strings.IndexAny(text, "\r\n"); at >= 0 {
		text = strings.TrimSpace(text[:at])
	}
	const maxLen = 120
	if len(text) > maxLen {
		cut := text[:maxLen]
		if sp := strings.LastIndex(cut, " "); sp > maxLen/2 {
			cut = cut[:sp]
		}
		text = cut + "…"
	}
	return text
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
