package workshop

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/levelshelf/internal/catalog"
	"github.com/blackwell-systems/levelshelf/internal/paging"
	"github.com/blackwell-systems/levelshelf/internal/store"
)

// DefaultPageSize is the server-side page size for Dir searches.
const DefaultPageSize = 12

// Dir is a Service over a directory of synced workshop content. Every
// subdirectory of root is a published level; the subscription set is kept
// in the state store.
type Dir struct {
	items    *catalog.Local
	state    *store.Store
	pageSize int
	log      zerolog.Logger

	mu   sync.Mutex
	subs []string
}

// OpenDir scans root and loads the saved subscriptions.
func OpenDir(root string, state *store.Store, pageSize int, log zerolog.Logger) (*Dir, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	d := &Dir{
		items:    catalog.NewLocalOf(root, catalog.SourceSubscription, log),
		state:    state,
		pageSize: pageSize,
		log:      log,
	}
	if err := d.items.Scan(); err != nil {
		return nil, fmt.Errorf("scanning workshop: %w", err)
	}
	if err := state.GetJSON(store.KeySubscriptions, &d.subs); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("loading subscriptions: %w", err)
	}
	return d, nil
}

// Rescan reloads the content directory.
func (d *Dir) Rescan() error { return d.items.Scan() }

// Subscriptions returns the subscribed IDs, including ones whose content
// is not synced yet.
func (d *Dir) Subscriptions() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.subs)
}

func (d *Dir) Subscribed(ctx context.Context) ([]catalog.Level, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	subs := d.Subscriptions()
	out := make([]catalog.Level, 0, len(subs))
	for _, id := range subs {
		l, ok := d.items.ByID(id)
		if !ok {
			d.log.Debug().Str("id", id).Msg("subscribed item not synced")
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (d *Dir) Search(ctx context.Context, query string, page int) (SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return SearchResult{}, err
	}
	matches := catalog.FilterLevels(catalog.NewQuery(query), d.items.All())
	return SearchResult{
		Items: paging.Slice(matches, page, d.pageSize),
		Count: len(matches),
	}, nil
}

func (d *Dir) Subscribe(ctx context.Context, id string) error {
	if _, ok := d.items.ByID(id); !ok {
		return fmt.Errorf("subscribing to %s: %w", id, ErrUnknownItem)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if slices.Contains(d.subs, id) {
		return nil
	}
	next := append(slices.Clone(d.subs), id)
	if err := d.state.PutJSON(store.KeySubscriptions, next); err != nil {
		return err
	}
	d.subs = next
	return nil
}

func (d *Dir) Unsubscribe(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := slices.Index(d.subs, id)
	if i < 0 {
		return nil
	}
	next := slices.Delete(slices.Clone(d.subs), i, i+1)
	if err := d.state.PutJSON(store.KeySubscriptions, next); err != nil {
		return err
	}
	d.subs = next
	return nil
}

func (d *Dir) Preview(ctx context.Context, id string) ([]byte, error) {
	l, ok := d.items.ByID(id)
	if !ok {
		return nil, fmt.Errorf("preview for %s: %w", id, ErrUnknownItem)
	}
	return catalog.ReadCover(l.Path)
}
