package fetch

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/levelshelf/internal/icons"
	"github.com/blackwell-systems/levelshelf/internal/remote"
	"github.com/blackwell-systems/levelshelf/internal/workshop"
)

// NewRemote returns the refresher for remote level search.
func NewRemote(c *remote.Client, cache *icons.Cache, sink Sink, opts Options, log zerolog.Logger) *Refresher {
	load := func(ctx context.Context, req Request) (Result, error) {
		res, err := c.Search(ctx, req.Query, req.Page)
		if err != nil {
			return Result{}, err
		}
		return Result{Items: res.Items, Count: res.Count}, nil
	}
	return New(KindRemote, load, c.Cover, cache, sink, opts, log)
}

// NewSubscribed returns the refresher for subscribed content. The whole
// subscription list is loaded; filtering and paging happen locally.
func NewSubscribed(svc workshop.Service, cache *icons.Cache, sink Sink, opts Options, log zerolog.Logger) *Refresher {
	load := func(ctx context.Context, req Request) (Result, error) {
		levels, err := svc.Subscribed(ctx)
		if err != nil {
			return Result{}, err
		}
		return Result{Items: levels, Count: len(levels)}, nil
	}
	return New(KindSubscribed, load, svc.Preview, cache, sink, opts, log)
}

// NewWorkshop returns the refresher for workshop search. Stale results are
// always discarded.
func NewWorkshop(svc workshop.Service, cache *icons.Cache, sink Sink, opts Options, log zerolog.Logger) *Refresher {
	load := func(ctx context.Context, req Request) (Result, error) {
		res, err := svc.Search(ctx, req.Query, req.Page)
		if err != nil {
			return Result{}, err
		}
		return Result{Items: res.Items, Count: res.Count}, nil
	}
	opts.DiscardStale = true
	return New(KindWorkshop, load, svc.Preview, cache, sink, opts, log)
}
