// Package browse holds the browser state: one session per tab, the page
// currently shown and the grid cursor over it.
package browse

import (
	"github.com/blackwell-systems/levelshelf/internal/catalog"
	"github.com/blackwell-systems/levelshelf/internal/fetch"
	"github.com/blackwell-systems/levelshelf/internal/paging"
	"github.com/blackwell-systems/levelshelf/internal/queue"
)

// Tab identifies a content source in the browser.
type Tab int

const (
	TabLocal Tab = iota
	TabRemote
	TabSubscribed
	TabWorkshop
	TabQueue
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabLocal, TabRemote, TabSubscribed, TabWorkshop, TabQueue}

func (t Tab) String() string {
	switch t {
	case TabLocal:
		return "Local"
	case TabRemote:
		return "Online"
	case TabSubscribed:
		return "Subscribed"
	case TabWorkshop:
		return "Workshop"
	case TabQueue:
		return "Queue"
	default:
		return "?"
	}
}

// FetchKind returns the refresher kind backing t, if any.
func (t Tab) FetchKind() (fetch.Kind, bool) {
	switch t {
	case TabRemote:
		return fetch.KindRemote, true
	case TabSubscribed:
		return fetch.KindSubscribed, true
	case TabWorkshop:
		return fetch.KindWorkshop, true
	}
	return 0, false
}

// TabFor maps a refresher kind back to its tab.
func TabFor(kind fetch.Kind) Tab {
	switch kind {
	case fetch.KindSubscribed:
		return TabSubscribed
	case fetch.KindWorkshop:
		return TabWorkshop
	default:
		return TabRemote
	}
}

// ServerPaged reports whether the service pages results itself, so every
// query or page change needs a new request.
func (t Tab) ServerPaged() bool {
	return t == TabRemote || t == TabWorkshop
}

// Session is the per-tab browsing state.
type Session struct {
	Query catalog.Query
	Page  int
	// Result is the last loaded page for network-backed tabs.
	Result *fetch.Result
	// Loading is set while a refresh for this tab is in flight.
	Loading bool
}

// Page is a computed view of one page of a source.
type Page struct {
	Tab   Tab
	Index int
	Size  int
	// Count is the page count as computed by the source's formula.
	Count int
	// Total is the number of matching items across all pages.
	Total int
	Items []catalog.Level
}

// Source produces pages for one tab.
type Source interface {
	Tab() Tab
	PageSize() int
	// Page computes the current page, clamping s.Page into range.
	Page(s *Session) Page
}

// LocalSource pages the installed levels.
type LocalSource struct {
	Catalog *catalog.Local
	Size    int
}

func (src LocalSource) Tab() Tab      { return TabLocal }
func (src LocalSource) PageSize() int { return src.Size }

func (src LocalSource) Page(s *Session) Page {
	return localPage(TabLocal, catalog.FilterLevels(s.Query, src.Catalog.All()), src.Size, s, paging.PageCount)
}

// RemoteSource shows the page most recently returned by the level service.
type RemoteSource struct {
	Size int
}

func (src RemoteSource) Tab() Tab      { return TabRemote }
func (src RemoteSource) PageSize() int { return src.Size }
func (src RemoteSource) Page(s *Session) Page {
	return serverPage(TabRemote, src.Size, s)
}

// WorkshopSource shows the page most recently returned by workshop search.
type WorkshopSource struct {
	Size int
}

func (src WorkshopSource) Tab() Tab      { return TabWorkshop }
func (src WorkshopSource) PageSize() int { return src.Size }
func (src WorkshopSource) Page(s *Session) Page {
	return serverPage(TabWorkshop, src.Size, s)
}

// SubscribedSource filters and pages the loaded subscription list locally.
type SubscribedSource struct {
	Size int
}

func (src SubscribedSource) Tab() Tab      { return TabSubscribed }
func (src SubscribedSource) PageSize() int { return src.Size }

func (src SubscribedSource) Page(s *Session) Page {
	var all []catalog.Level
	if s.Result != nil {
		all = s.Result.Items
	}
	return localPage(TabSubscribed, catalog.FilterLevels(s.Query, all), src.Size, s, paging.PageCount)
}

// QueueSource pages the play queue, resolved against the local catalog.
type QueueSource struct {
	Queue   *queue.Queue
	Catalog *catalog.Local
	Size    int
}

func (src QueueSource) Tab() Tab      { return TabQueue }
func (src QueueSource) PageSize() int { return src.Size }

func (src QueueSource) Page(s *Session) Page {
	items := catalog.FilterLevels(s.Query, src.Queue.Resolve(src.Catalog))
	return localPage(TabQueue, items, src.Size, s, paging.QueuePageCount)
}

func localPage(tab Tab, items []catalog.Level, size int, s *Session, count func(total, size int) int) Page {
	if size <= 0 {
		size = 1
	}
	n := count(len(items), size)
	s.Page = paging.Clamp(s.Page, n)
	return Page{
		Tab:   tab,
		Index: s.Page,
		Size:  size,
		Count: n,
		Total: len(items),
		Items: paging.Slice(items, s.Page, size),
	}
}

func serverPage(tab Tab, size int, s *Session) Page {
	if size <= 0 {
		size = 1
	}
	p := Page{Tab: tab, Index: s.Page, Size: size}
	if s.Result == nil {
		return p
	}
	p.Total = s.Result.Count
	p.Count = paging.PageCount(s.Result.Count, size)
	s.Page = paging.Clamp(s.Page, p.Count)
	p.Index = s.Page
	p.Items = s.Result.Items
	return p
}
