package browse

import (
	"github.com/blackwell-systems/levelshelf/internal/catalog"
	"github.com/blackwell-systems/levelshelf/internal/fetch"
	"github.com/blackwell-systems/levelshelf/internal/grid"
)

// DefaultColumns is the grid width used when none is configured.
const DefaultColumns = 4

// Browser owns one Session per tab, the page on screen and the grid cursor
// over it. It is driven from a single goroutine; results from background
// refreshes are handed in through ApplyResult.
type Browser struct {
	sources  map[Tab]Source
	order    []Tab
	sessions map[Tab]*Session
	active   Tab
	columns  int

	page Page
	grid *grid.Controller
}

// New creates a browser over sources, starting on the first one.
func New(columns int, sources ...Source) *Browser {
	if columns <= 0 {
		columns = DefaultColumns
	}
	b := &Browser{
		sources:  make(map[Tab]Source, len(sources)),
		sessions: make(map[Tab]*Session, len(sources)),
		columns:  columns,
		grid:     grid.New(),
	}
	for _, src := range sources {
		t := src.Tab()
		if _, dup := b.sources[t]; !dup {
			b.order = append(b.order, t)
		}
		b.sources[t] = src
		b.sessions[t] = &Session{}
	}
	if len(b.order) > 0 {
		b.active = b.order[0]
	}
	b.Rebuild()
	return b
}

// Tabs returns the configured tabs in order.
func (b *Browser) Tabs() []Tab { return append([]Tab(nil), b.order...) }

// Active returns the current tab.
func (b *Browser) Active() Tab { return b.active }

// Columns returns the grid width.
func (b *Browser) Columns() int { return b.columns }

// Session returns the session for tab, or nil when the tab is not
// configured.
func (b *Browser) Session(tab Tab) *Session { return b.sessions[tab] }

// Grid exposes the cursor state for rendering.
func (b *Browser) Grid() *grid.Controller { return b.grid }

// Current returns the page on screen.
func (b *Browser) Current() Page { return b.page }

// Request builds the fetch request for tab from its session.
func (b *Browser) Request(tab Tab) fetch.Request {
	s := b.sessions[tab]
	if s == nil {
		return fetch.Request{}
	}
	return fetch.Request{Query: s.Query.Raw, Page: s.Page}
}

// NeedsLoad reports whether a network-backed tab has nothing loaded yet.
func (b *Browser) NeedsLoad(tab Tab) bool {
	s := b.sessions[tab]
	_, remote := tab.FetchKind()
	return s != nil && remote && s.Result == nil && !s.Loading
}

// Switch makes tab active. The grid is rebuilt from scratch with the
// cursor at the origin. It reports whether tab needs a refresh.
func (b *Browser) Switch(tab Tab) bool {
	if _, ok := b.sources[tab]; !ok {
		return false
	}
	b.active = tab
	b.grid.Reset()
	b.Rebuild()
	return b.NeedsLoad(tab)
}

// SwitchBy moves delta tabs along the tab order, wrapping around.
func (b *Browser) SwitchBy(delta int) bool {
	if len(b.order) == 0 {
		return false
	}
	i := 0
	for j, t := range b.order {
		if t == b.active {
			i = j
		}
	}
	n := len(b.order)
	return b.Switch(b.order[((i+delta)%n+n)%n])
}

// SetQuery sets the active tab's search text and resets its page to 0. It
// reports whether the tab must be refreshed from its service.
func (b *Browser) SetQuery(raw string) bool {
	s := b.sessions[b.active]
	if s == nil {
		return false
	}
	s.Query = catalog.NewQuery(raw)
	s.Page = 0
	b.grid.Select(0, 0)
	b.Rebuild()
	return b.active.ServerPaged() || b.NeedsLoad(b.active)
}

// SetPage moves the active tab to page n, clamped into range. It reports
// whether the tab must be refreshed from its service.
func (b *Browser) SetPage(n int) bool {
	s := b.sessions[b.active]
	if s == nil {
		return false
	}
	s.Page = n
	if s.Page < 0 {
		s.Page = 0
	}
	b.Rebuild()
	return b.active.ServerPaged() && (s.Result == nil || b.Stale(b.active))
}

// NextPage advances one page.
func (b *Browser) NextPage() bool { return b.SetPage(b.page.Index + 1) }

// PrevPage goes back one page.
func (b *Browser) PrevPage() bool { return b.SetPage(b.page.Index - 1) }

// Rebuild recomputes the current page and lays it out on the grid, keeping
// the cursor where it was when that cell still exists.
func (b *Browser) Rebuild() {
	src, ok := b.sources[b.active]
	if !ok {
		b.page = Page{}
		b.grid.Reset()
		return
	}
	b.page = src.Page(b.sessions[b.active])

	cur := b.grid.Cursor()
	b.grid.Reset()
	ids := make([]string, len(b.page.Items))
	for i, l := range b.page.Items {
		ids[i] = l.ID
	}
	b.grid.LayoutFlat(ids, b.columns)
	b.grid.Select(cur.Col, cur.Row)
}

// Move moves the cursor.
func (b *Browser) Move(dir grid.Direction) bool { return b.grid.Move(dir) }

// Submit returns the level bound to the cell under the cursor. It is a
// no-op on an empty page.
func (b *Browser) Submit() (*catalog.Level, bool) {
	id, ok := b.grid.Submit()
	if !ok {
		return nil, false
	}
	for i := range b.page.Items {
		if b.page.Items[i].ID == id {
			l := b.page.Items[i]
			return &l, true
		}
	}
	return nil, false
}

// SetLoading marks tab as having a refresh in flight.
func (b *Browser) SetLoading(tab Tab, loading bool) {
	if s := b.sessions[tab]; s != nil {
		s.Loading = loading
	}
}

// ApplyResult stores a loaded page for tab and redraws if it is active.
func (b *Browser) ApplyResult(tab Tab, res fetch.Result) {
	s := b.sessions[tab]
	if s == nil {
		return
	}
	r := res
	s.Result = &r
	if tab == b.active {
		b.Rebuild()
	}
}

// ClearResults drops the loaded page for tab.
func (b *Browser) ClearResults(tab Tab) {
	s := b.sessions[tab]
	if s == nil {
		return
	}
	s.Result = nil
	if tab == b.active {
		b.Rebuild()
	}
}

// Stale reports whether tab's loaded result no longer matches its session.
func (b *Browser) Stale(tab Tab) bool {
	s := b.sessions[tab]
	if s == nil || s.Result == nil {
		return false
	}
	if !tab.ServerPaged() {
		return false
	}
	return s.Result.Query != s.Query.Raw || s.Result.Page != s.Page
}
