// Package fetch runs background refresh cycles for the network-backed
// sources: remote search, subscribed content and workshop search.
//
// Each source has one Refresher. A Refresher runs at most one cycle at a
// time; Refresh calls made while a cycle is in flight are dropped, not
// queued. Results are reported through a Sink in a fixed order: Cleared,
// PageLoaded, Done, with IconLoaded calls arriving afterwards as covers
// download in the background.
package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/levelshelf/internal/catalog"
	"github.com/blackwell-systems/levelshelf/internal/icons"
)

// ErrStale is passed to Sink.Done when a result was discarded because the
// source was invalidated while the request was in flight.
var ErrStale = errors.New("stale result discarded")

// Kind identifies a network-backed source.
type Kind int

const (
	KindRemote Kind = iota
	KindSubscribed
	KindWorkshop
)

func (k Kind) String() string {
	switch k {
	case KindRemote:
		return "remote"
	case KindSubscribed:
		return "subscribed"
	case KindWorkshop:
		return "workshop"
	default:
		return "unknown"
	}
}

// Request describes one refresh.
type Request struct {
	Query string
	Page  int
}

// Result is a loaded page. Count is the total number of matches, which for
// server-paged sources exceeds len(Items).
type Result struct {
	Kind       Kind
	Query      string
	Page       int
	Items      []catalog.Level
	Count      int
	Generation uint64
}

// Sink receives cycle events. Methods are called from background goroutines.
type Sink interface {
	Cleared(kind Kind)
	PageLoaded(kind Kind, res Result)
	IconLoaded(kind Kind, id string, icon icons.Icon)
	Done(kind Kind, err error)
}

// LoadFunc performs the request and parses the response.
type LoadFunc func(ctx context.Context, req Request) (Result, error)

// DefaultIconWorkers bounds concurrent cover downloads per cycle.
const DefaultIconWorkers = 4

// Options configures a Refresher.
type Options struct {
	// DiscardStale drops results whose source was invalidated mid-flight.
	DiscardStale bool
	// IconWorkers bounds concurrent cover fetches; zero means
	// DefaultIconWorkers.
	IconWorkers int
	// WrapCover, when set, wraps the source's cover fetch.
	WrapCover func(icons.FetchFunc) icons.FetchFunc
}

// Refresher owns the busy flag and generation counter for one source.
type Refresher struct {
	kind  Kind
	load  LoadFunc
	cover icons.FetchFunc
	icons *icons.Cache
	sink  Sink
	opts  Options
	log   zerolog.Logger

	busy atomic.Bool
	gen  atomic.Uint64
	wg   sync.WaitGroup
}

// New creates a Refresher. cover may be nil when the source has no images.
func New(kind Kind, load LoadFunc, cover icons.FetchFunc, cache *icons.Cache, sink Sink, opts Options, log zerolog.Logger) *Refresher {
	if opts.IconWorkers <= 0 {
		opts.IconWorkers = DefaultIconWorkers
	}
	if cover != nil && opts.WrapCover != nil {
		cover = opts.WrapCover(cover)
	}
	return &Refresher{
		kind:  kind,
		load:  load,
		cover: cover,
		icons: cache,
		sink:  sink,
		opts:  opts,
		log:   log.With().Str("source", kind.String()).Logger(),
	}
}

// Kind returns the source this refresher serves.
func (r *Refresher) Kind() Kind { return r.kind }

// Busy reports whether a cycle is in flight.
func (r *Refresher) Busy() bool { return r.busy.Load() }

// Generation returns the current generation.
func (r *Refresher) Generation() uint64 { return r.gen.Load() }

// Invalidate marks any in-flight request as outdated. Call it whenever the
// query or page for this source changes.
func (r *Refresher) Invalidate() uint64 { return r.gen.Add(1) }

// Refresh starts a background cycle. It returns false without doing
// anything when a cycle is already running.
func (r *Refresher) Refresh(ctx context.Context, req Request) bool {
	if !r.busy.CompareAndSwap(false, true) {
		r.log.Debug().Str("query", req.Query).Int("page", req.Page).Msg("refresh dropped, source busy")
		return false
	}
	gen := r.gen.Load()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.cycle(ctx, req, gen)
	}()
	return true
}

// Wait blocks until every started cycle and its icon fetches finish.
func (r *Refresher) Wait() { r.wg.Wait() }

// Load runs the request synchronously without touching the busy flag or
// the sink.
func (r *Refresher) Load(ctx context.Context, req Request) (Result, error) {
	res, err := r.load(ctx, req)
	if err != nil {
		return Result{}, err
	}
	res.Kind, res.Query, res.Page = r.kind, req.Query, req.Page
	return res, nil
}

func (r *Refresher) cycle(ctx context.Context, req Request, gen uint64) {
	r.sink.Cleared(r.kind)

	res, err := r.Load(ctx, req)
	if err != nil {
		r.log.Warn().Err(err).Str("query", req.Query).Int("page", req.Page).Msg("refresh failed")
		r.finish(err)
		return
	}
	res.Generation = gen

	if r.opts.DiscardStale && r.gen.Load() != gen {
		r.log.Debug().Uint64("generation", gen).Msg("discarding stale result")
		r.finish(ErrStale)
		return
	}

	r.sink.PageLoaded(r.kind, res)
	r.fetchIcons(ctx, res.Items)
	r.finish(nil)
}

func (r *Refresher) finish(err error) {
	r.busy.Store(false)
	r.sink.Done(r.kind, err)
}

// fetchIcons starts cover downloads for items without a cached icon. It
// does not wait for them.
func (r *Refresher) fetchIcons(ctx context.Context, items []catalog.Level) {
	if r.icons == nil || r.cover == nil {
		return
	}
	var missing []string
	for _, l := range items {
		if _, ok := r.icons.Get(l.ID); !ok {
			missing = append(missing, l.ID)
		}
	}
	if len(missing) == 0 {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.opts.IconWorkers)
		for _, id := range missing {
			g.Go(func() error {
				icon := r.icons.GetOrFetch(gctx, id, r.cover, nil)
				r.sink.IconLoaded(r.kind, id, icon)
				return nil
			})
		}
		_ = g.Wait()
	}()
}
