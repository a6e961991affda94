package feed

// Render window bounds. Any filter-affecting input change resets the window
// to InitialRenderCount; the tail trigger grows it by RenderStep up to
// MaxRenderCount before asking upstream for more data.
const (
	InitialRenderCount = 30
	RenderStep         = 30
	MaxRenderCount     = 240
)

// LoadAction is the outcome of a tail-visibility trigger.
type LoadAction int

const (
	LoadNone LoadAction = iota
	LoadGrew
	LoadFetchUpstream
)

func (a LoadAction) String() string {
	switch a {
	case LoadGrew:
		return "grew"
	case LoadFetchUpstream:
		return "fetch_upstream"
	default:
		return "none"
	}
}

// Window tracks how much of the sorted/filtered pool is materialized for
// display.
type Window struct {
	count int
}

// NewWindow starts at the initial render count.
func NewWindow() *Window {
	return &Window{count: InitialRenderCount}
}

// Reset returns the window to the initial render count.
func (w *Window) Reset() {
	w.count = InitialRenderCount
}

// Count clamps the render count to the available item count so the window
// never indexes out of range.
func (w *Window) Count(available int) int {
	if w.count > available {
		return available
	}
	return w.count
}

// Reveal handles the tail-visibility trigger. While the rendered count is
// below min(MaxRenderCount, pool cap, logical total) it grows the local
// window; once the local window is exhausted it reports that an upstream
// fetch is needed, unless one is already in flight or no more data exists.
func (w *Window) Reveal(logicalTotal int, hasMore, loading bool) LoadAction {
	bound := MaxRenderCount
	if MaxFilterPool < bound {
		bound = MaxFilterPool
	}
	if logicalTotal < bound {
		bound = logicalTotal
	}
	if w.count < bound {
		w.count += RenderStep
		if w.count > bound {
			w.count = bound
		}
		return LoadGrew
	}
	if hasMore && !loading {
		return LoadFetchUpstream
	}
	return LoadNone
}
