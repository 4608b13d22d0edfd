package app

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/levelshelf/internal/browse"
	"github.com/blackwell-systems/levelshelf/internal/cache"
	"github.com/blackwell-systems/levelshelf/internal/catalog"
	"github.com/blackwell-systems/levelshelf/internal/config"
	"github.com/blackwell-systems/levelshelf/internal/fetch"
	"github.com/blackwell-systems/levelshelf/internal/icons"
	"github.com/blackwell-systems/levelshelf/internal/install"
	"github.com/blackwell-systems/levelshelf/internal/logging"
	"github.com/blackwell-systems/levelshelf/internal/queue"
	"github.com/blackwell-systems/levelshelf/internal/remote"
	"github.com/blackwell-systems/levelshelf/internal/store"
	"github.com/blackwell-systems/levelshelf/internal/util"
	"github.com/blackwell-systems/levelshelf/internal/workshop"
)

// env holds every component wired from the config for one command run.
type env struct {
	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer

	state      *store.Store
	catalog    *catalog.Local
	queue      *queue.Queue
	icons      *icons.Cache
	covers     *cache.Manager
	remote     *remote.Client
	workshop   *workshop.Dir
	pipeline   *install.Pipeline
	downloader *install.Downloader
}

// openEnv logs to stderr.
func openEnv(c *config.Config) (*env, error) {
	log, err := logging.New(c.Log.Level, os.Stderr)
	if err != nil {
		return nil, err
	}
	return wire(c, log, nil)
}

// openInteractiveEnv logs to log.file, or nowhere, since the terminal
// belongs to the browser.
func openInteractiveEnv(c *config.Config) (*env, error) {
	if c.Log.File == "" {
		return wire(c, zerolog.Nop(), nil)
	}
	log, closer, err := logging.File(c.Log.Level, c.Log.File)
	if err != nil {
		return nil, err
	}
	e, err := wire(c, log, closer)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	return e, nil
}

func wire(c *config.Config, log zerolog.Logger, closer io.Closer) (*env, error) {
	for _, dir := range []string{c.Library.LevelsDir, c.Library.WorkshopDir, c.Library.StateDir} {
		if err := util.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	naming, err := install.ParseNaming(c.Library.Naming)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: c, log: log, closer: closer}
	e.state = store.Open(c.Library.StateDir)

	e.catalog = catalog.NewLocal(c.Library.LevelsDir, log)
	if err := e.catalog.Scan(); err != nil {
		return nil, err
	}

	e.queue = queue.New(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())))
	if err := e.queue.Load(e.state); err != nil {
		log.Warn().Err(err).Msg("could not restore queue, starting empty")
	}

	e.icons, err = icons.New(icons.Options{MaxEntries: c.Icons.MaxEntries, Size: c.Icons.Size}, log)
	if err != nil {
		return nil, err
	}

	e.covers = cache.New(c.Library.CacheDir, log)
	e.remote = remote.New(c.API.Base, c.API.Token, remote.WithLogger(log))

	e.workshop, err = workshop.OpenDir(c.Library.WorkshopDir, e.state, c.Browse.PageSize, log)
	if err != nil {
		return nil, err
	}

	e.pipeline = install.NewPipeline(e.catalog, install.Options{Naming: naming}, log)
	e.downloader = install.NewDownloader(e.remote, e.pipeline, log)
	return e, nil
}

// Close releases the log file, if any.
func (e *env) Close() error {
	if e.closer != nil {
		return e.closer.Close()
	}
	return nil
}

func (e *env) installed(id string) bool {
	_, ok := e.catalog.ByID(id)
	return ok
}

func (e *env) saveQueue() error {
	if err := e.queue.Save(e.state); err != nil {
		return fmt.Errorf("saving queue: %w", err)
	}
	return nil
}

// refreshers builds one refresher per network-backed source, all reporting
// to sink.
func (e *env) refreshers(sink fetch.Sink) map[fetch.Kind]*fetch.Refresher {
	opts := fetch.Options{IconWorkers: e.cfg.Icons.Workers}
	remoteOpts := opts
	remoteOpts.DiscardStale = e.cfg.Browse.DiscardStaleRemote
	remoteOpts.WrapCover = e.covers.Wrap

	return map[fetch.Kind]*fetch.Refresher{
		fetch.KindRemote:     fetch.NewRemote(e.remote, e.icons, sink, remoteOpts, e.log),
		fetch.KindSubscribed: fetch.NewSubscribed(e.workshop, e.icons, sink, opts, e.log),
		fetch.KindWorkshop:   fetch.NewWorkshop(e.workshop, e.icons, sink, opts, e.log),
	}
}

// browser creates the tabbed browser over every source.
func (e *env) browser() *browse.Browser {
	size := e.cfg.Browse.PageSize
	return browse.New(e.cfg.Browse.Columns,
		browse.LocalSource{Catalog: e.catalog, Size: size},
		browse.RemoteSource{Size: size},
		browse.SubscribedSource{Size: size},
		browse.WorkshopSource{Size: size},
		browse.QueueSource{Queue: e.queue, Catalog: e.catalog, Size: e.cfg.Browse.QueuePageSize},
	)
}
