package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ganot/feedline/internal/enrich"
	"github.com/ganot/feedline/internal/extract"
)

// fetchBatchSize is how many raw items one upstream page carries.
const fetchBatchSize = 200

// Service owns the timeline views. All view mutation happens under one
// mutex; the pipeline itself is synchronous and deterministic, so no
// partially applied state is ever observable.
type Service struct {
	activities  ActivityRepository
	sessions    SessionRepository
	initiatives InitiativeRepository
	enricher    *enrich.Adapter
	logger      *slog.Logger
	now         func() time.Time
	loc         *time.Location

	mu    sync.Mutex
	views map[string]*view
}

// NewService creates the feed service. A nil enricher disables remote detail
// enrichment.
func NewService(activities ActivityRepository, sessions SessionRepository, initiatives InitiativeRepository, enricher *enrich.Adapter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if enricher == nil {
		enricher = enrich.NewAdapter(nil, logger)
	}
	return &Service{
		activities:  activities,
		sessions:    sessions,
		initiatives: initiatives,
		enricher:    enricher,
		logger:      logger,
		now:         time.Now,
		loc:         time.Local,
		views:       make(map[string]*view),
	}
}

// SetClock overrides time and location for deterministic day labels in tests.
func (s *Service) SetClock(now func() time.Time, loc *time.Location) {
	s.now = now
	if loc != nil {
		s.loc = loc
	}
}

// Timeline renders the current pass for a view, creating the view on first
// use. An empty view id allocates a fresh one.
func (s *Service) Timeline(ctx context.Context, viewID string) (Timeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.viewLocked(ctx, viewID)
	if err != nil {
		return Timeline{}, err
	}
	tl, _, err := s.assembleLocked(ctx, v)
	return tl, err
}

// NewView allocates a view id without rendering.
func (s *Service) NewView() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.views[id] = newView()
	return id
}

// SetFilters replaces the active filters and resets the render window.
func (s *Service) SetFilters(ctx context.Context, viewID string, f Filters) (Timeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.viewLocked(ctx, viewID)
	if err != nil {
		return Timeline{}, err
	}
	v.filters = f
	v.window.Reset()
	tl, _, err := s.assembleLocked(ctx, v)
	return tl, err
}

// ToggleSort flips the sort direction. The capped pool is fully re-sorted
// and the render window resets to its initial size.
func (s *Service) ToggleSort(ctx context.Context, viewID string) (Timeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.viewLocked(ctx, viewID)
	if err != nil {
		return Timeline{}, err
	}
	v.order = v.order.Toggled()
	v.window.Reset()
	tl, _, err := s.assembleLocked(ctx, v)
	return tl, err
}

// LoadMore is the tail-visibility trigger: grow the local window while it is
// below its bound, otherwise fetch the next upstream page.
func (s *Service) LoadMore(ctx context.Context, viewID string) (Timeline, LoadAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.viewLocked(ctx, viewID)
	if err != nil {
		return Timeline{}, LoadNone, err
	}
	tl, _, err := s.assembleLocked(ctx, v)
	if err != nil {
		return Timeline{}, LoadNone, err
	}

	action := v.window.Reveal(tl.Total, v.hasMore, v.loading)
	if action == LoadFetchUpstream {
		v.loading = true
		page, err := s.activities.List(ctx, v.cursor, fetchBatchSize)
		v.loading = false
		if err != nil {
			return Timeline{}, LoadNone, fmt.Errorf("loading more activity: %w", err)
		}
		v.snapshot = append(v.snapshot, page.Items...)
		v.cursor = page.Next
		v.hasMore = page.HasMore
	}

	tl, _, err = s.assembleLocked(ctx, v)
	return tl, action, err
}

// Select makes an item active and runs the enrichment pass for it. The item
// must be present in the current filtered output.
func (s *Service) Select(ctx context.Context, viewID, itemID string) (Detail, error) {
	if itemID == "" {
		return Detail{}, ErrInvalidInput
	}
	s.mu.Lock()
	v, err := s.viewLocked(ctx, viewID)
	if err != nil {
		s.mu.Unlock()
		return Detail{}, err
	}
	_, items, err := s.assembleLocked(ctx, v)
	if err != nil {
		s.mu.Unlock()
		return Detail{}, err
	}
	at := indexOf(items, itemID)
	if at < 0 {
		s.mu.Unlock()
		return Detail{}, ErrItemNotFound
	}
	v.nav.Select(itemID)
	item := items[at]
	label := s.runLabelLocked(ctx, item)
	s.mu.Unlock()

	return s.enrichDetail(ctx, item, label), nil
}

// Detail returns the enriched detail for a visible item without moving the
// selection.
func (s *Service) Detail(ctx context.Context, viewID, itemID string) (Detail, error) {
	if itemID == "" {
		return Detail{}, ErrInvalidInput
	}
	s.mu.Lock()
	v, err := s.viewLocked(ctx, viewID)
	if err != nil {
		s.mu.Unlock()
		return Detail{}, err
	}
	_, items, err := s.assembleLocked(ctx, v)
	if err != nil {
		s.mu.Unlock()
		return Detail{}, err
	}
	at := indexOf(items, itemID)
	if at < 0 {
		s.mu.Unlock()
		return Detail{}, ErrItemNotFound
	}
	item := items[at]
	label := s.runLabelLocked(ctx, item)
	s.mu.Unlock()

	return s.enrichDetail(ctx, item, label), nil
}

// SelectNext moves the selection forward, wrapping at the end.
func (s *Service) SelectNext(ctx context.Context, viewID string) (Detail, error) {
	return s.selectMove(ctx, viewID, true)
}

// SelectPrevious moves the selection backward, wrapping at the start.
func (s *Service) SelectPrevious(ctx context.Context, viewID string) (Detail, error) {
	return s.selectMove(ctx, viewID, false)
}

func (s *Service) selectMove(ctx context.Context, viewID string, forward bool) (Detail, error) {
	s.mu.Lock()
	v, err := s.viewLocked(ctx, viewID)
	if err != nil {
		s.mu.Unlock()
		return Detail{}, err
	}
	_, items, err := s.assembleLocked(ctx, v)
	if err != nil {
		s.mu.Unlock()
		return Detail{}, err
	}
	var item DecoratedActivityItem
	var ok bool
	if forward {
		item, ok = v.nav.Next(items)
	} else {
		item, ok = v.nav.Previous(items)
	}
	if !ok {
		s.mu.Unlock()
		return Detail{}, ErrItemNotFound
	}
	label := s.runLabelLocked(ctx, item)
	s.mu.Unlock()

	return s.enrichDetail(ctx, item, label), nil
}

// ClearSelection drops the active item and aborts any in-flight enrichment.
func (s *Service) ClearSelection(viewID string) {
	s.mu.Lock()
	if v, ok := s.views[viewID]; ok {
		v.nav.Clear()
	}
	s.mu.Unlock()
	s.enricher.CancelInFlight()
}

// ToggleCluster flips the expand/collapse state for a cluster key and
// reports the new state.
func (s *Service) ToggleCluster(ctx context.Context, viewID, key string) (bool, error) {
	if key == "" {
		return false, ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.viewLocked(ctx, viewID)
	if err != nil {
		return false, err
	}
	return v.expanded.Toggle(key), nil
}

// Ingest stores new raw events. Every open view re-fetches its snapshot and
// resets its window on the next pass, since the source list changed.
func (s *Service) Ingest(ctx context.Context, items []RawActivityItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	n, err := s.activities.Insert(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("ingesting activity: %w", err)
	}
	s.mu.Lock()
	for _, v := range s.views {
		v.loaded = false
		v.window.Reset()
	}
	s.mu.Unlock()
	return n, nil
}

// UpsertSessions replaces session tree nodes.
func (s *Service) UpsertSessions(ctx context.Context, nodes []SessionNode) error {
	return s.sessions.Upsert(ctx, nodes)
}

// UpsertInitiatives replaces initiatives.
func (s *Service) UpsertInitiatives(ctx context.Context, initiatives []Initiative) error {
	return s.initiatives.Upsert(ctx, initiatives)
}

// Sessions lists the session tree.
func (s *Service) Sessions(ctx context.Context) ([]SessionNode, error) {
	return s.sessions.List(ctx)
}

// Initiatives lists initiatives with their workstreams.
func (s *Service) Initiatives(ctx context.Context) ([]Initiative, error) {
	return s.initiatives.List(ctx)
}

// CloseView tears a view down, cancelling any in-flight enrichment.
func (s *Service) CloseView(viewID string) {
	s.mu.Lock()
	delete(s.views, viewID)
	s.mu.Unlock()
	s.enricher.CancelInFlight()
}

// viewLocked returns the view for id, creating it on first use.
func (s *Service) viewLocked(ctx context.Context, viewID string) (*view, error) {
	if viewID == "" {
		return nil, ErrInvalidInput
	}
	v, ok := s.views[viewID]
	if !ok {
		v = newView()
		s.views[viewID] = v
	}
	if !v.loaded {
		page, err := s.activities.List(ctx, Cursor{}, fetchBatchSize)
		if err != nil {
			return nil, fmt.Errorf("loading activity snapshot: %w", err)
		}
		v.snapshot = page.Items
		v.cursor = page.Next
		v.hasMore = page.HasMore
		v.loaded = true
	}
	return v, nil
}

// assembleLocked runs one full pipeline pass: decorate, filter, window,
// cluster. It returns the full filtered pool alongside the rendered timeline:
// selection and navigation range over the pool, the window clamps only what
// is rendered.
func (s *Service) assembleLocked(ctx context.Context, v *view) (Timeline, []DecoratedActivityItem, error) {
	nodes, err := s.sessions.List(ctx)
	if err != nil {
		return Timeline{}, nil, fmt.Errorf("loading session tree: %w", err)
	}
	idx := NewSessionIndex(nodes)

	decorated := DecorateAll(v.snapshot)
	res := ApplyFilters(decorated, v.filters, idx, v.order)

	count := v.window.Count(len(res.Items))
	activeIndex := v.nav.Sync(res.Items)

	groups := BuildDayGroups(res.Items[:count], s.now(), s.loc)
	v.expanded.Prune(groups)

	return Timeline{
		Groups:      groups,
		RenderCount: count,
		PoolSize:    len(res.Items),
		Total:       res.Total,
		Overflow:    res.Overflow,
		HasMore:     v.hasMore,
		SortOrder:   v.order,
		Filters:     v.filters,
		ActiveID:    v.nav.ActiveID(),
		ActiveIndex: activeIndex,
		Direction:   v.nav.Direction(),
		Expanded:    v.expanded.Keys(),
	}, res.Items, nil
}

func (s *Service) runLabelLocked(ctx context.Context, item DecoratedActivityItem) string {
	nodes, err := s.sessions.List(ctx)
	if err != nil {
		return item.ResolvedRunID
	}
	return NewSessionIndex(nodes).LabelFor(item.ResolvedRunID)
}

// enrichDetail assembles the detail view outside the service lock: the two
// enrichment fetches may block on the network and must not stall other
// views.
func (s *Service) enrichDetail(ctx context.Context, item DecoratedActivityItem, runLabel string) Detail {
	d := Detail{
		Item:       item,
		RunLabel:   runLabel,
		Artifact:   extract.ArtifactPayloadFromBag(string(item.Type), item.Metadata),
		Provenance: extract.ProvenanceFromBag(item.Metadata),
		Autopilot:  extract.AutopilotSliceFromBag(item.Metadata),
	}
	if d.Artifact != nil {
		rendered := extract.RenderArtifactValue(d.Artifact.Value)
		d.Rendered = &rendered
	}

	summary, err := s.enricher.Summary(ctx, item.Metadata, item.ResolvedRunID)
	switch {
	case errors.Is(err, enrich.ErrSuperseded):
		// A newer selection aborted this fetch; the stale result is dropped.
		s.logger.Debug("detail fetch superseded", "item_id", item.ID)
		summary = enrich.SummaryResult{Source: enrich.SourceFeed}
	case err != nil:
		s.logger.Debug("detail enrichment failed", "item_id", item.ID, "error", err)
		summary = enrich.SummaryResult{Source: enrich.SourceFeed}
	}
	d.Summary = summary

	headline := s.enricher.Headline(ctx, summary.Text, item.Summary, item.Description, item.Title, string(item.Type))
	if headline.Text != "" {
		d.Headline = &HeadlineInfo{Text: headline.Text, Source: string(headline.Source)}
	}
	return d
}
