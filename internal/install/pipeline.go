// Package install turns a level archive into an installed, registered local
// level: it picks a destination, stages the archive beside it, extracts,
// reads the level metadata and registers the result. Any failure after the
// destination is created removes it again.
package install

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/levelshelf/internal/catalog"
)

// Naming selects how install directories are named.
type Naming int

const (
	// NamingByID names the directory after the level ID. Reinstalling
	// replaces the existing directory.
	NamingByID Naming = iota
	// NamingDefault uses DefaultDirName with a numeric suffix for each
	// additional install.
	NamingDefault
)

// DefaultDirName is the base name used by NamingDefault.
const DefaultDirName = "downloaded-level"

// ParseNaming maps a config value to a Naming.
func ParseNaming(s string) (Naming, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "id":
		return NamingByID, nil
	case "default":
		return NamingDefault, nil
	}
	return NamingByID, fmt.Errorf("unknown naming %q (want id or default)", s)
}

func (n Naming) String() string {
	if n == NamingDefault {
		return "default"
	}
	return "id"
}

// Options configures a Pipeline.
type Options struct {
	Naming        Naming
	MaxEntryBytes int64
}

// Pipeline installs archives into a local catalog.
type Pipeline struct {
	cat  *catalog.Local
	opts Options
	log  zerolog.Logger
}

// NewPipeline creates a pipeline installing under cat's root.
func NewPipeline(cat *catalog.Local, opts Options, log zerolog.Logger) *Pipeline {
	if opts.MaxEntryBytes <= 0 {
		opts.MaxEntryBytes = DefaultMaxEntryBytes
	}
	return &Pipeline{cat: cat, opts: opts, log: log}
}

// Catalog returns the catalog installs are registered with.
func (p *Pipeline) Catalog() *catalog.Local { return p.cat }

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DirName turns a level ID into a safe directory name.
func DirName(id string) string {
	name := unsafeNameChars.ReplaceAllString(strings.TrimSpace(id), "_")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "level"
	}
	return name
}

// ErrDirTaken is returned when an install of one ID would land in a
// directory another installed level already lives in.
var ErrDirTaken = errors.New("install directory belongs to another level")

// claim picks the directory for an install of id. For NamingDefault the
// directory is created here, so concurrent installs never share a suffix.
func (p *Pipeline) claim(id string) (string, error) {
	root := p.cat.Root()
	if p.opts.Naming == NamingByID {
		dest := filepath.Join(root, DirName(id))
		for _, l := range p.cat.All() {
			if l.ID != id && l.Path != "" && filepath.Clean(l.Path) == dest {
				return "", fmt.Errorf("%w: %s holds %q", ErrDirTaken, dest, l.ID)
			}
		}
		return dest, nil
	}
	for i := 0; ; i++ {
		name := DefaultDirName
		if i > 0 {
			name += "-" + strconv.Itoa(i)
		}
		dest := filepath.Join(root, name)
		err := os.Mkdir(dest, 0750)
		if err == nil {
			return dest, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("creating %s: %w", dest, err)
		}
	}
}

// InstallBytes installs an archive held in memory.
func (p *Pipeline) InstallBytes(ctx context.Context, id string, data []byte) (*catalog.Level, error) {
	return p.Install(ctx, id, bytes.NewReader(data))
}

// Install stages archive beside its destination, extracts it and registers
// the level. On failure nothing is left on disk and nothing is registered.
func (p *Pipeline) Install(ctx context.Context, id string, archive io.Reader) (*catalog.Level, error) {
	log := p.log.With().Str("id", id).Logger()

	if err := os.MkdirAll(p.cat.Root(), 0750); err != nil {
		return nil, fmt.Errorf("creating levels dir: %w", err)
	}
	dest, err := p.claim(id)
	if err != nil {
		return nil, err
	}
	tmpPath := dest + ".zip"

	if err := writeTemp(ctx, tmpPath, archive); err != nil {
		if p.opts.Naming == NamingDefault {
			_ = os.Remove(dest)
		}
		return nil, err
	}
	defer func() { _ = os.Remove(tmpPath) }()

	if p.opts.Naming == NamingByID {
		if _, err := os.Stat(dest); err == nil {
			log.Info().Str("dest", dest).Msg("replacing existing install")
		}
		if err := os.RemoveAll(dest); err != nil {
			return nil, fmt.Errorf("removing previous install: %w", err)
		}
	}
	if err := os.MkdirAll(dest, 0750); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dest, err)
	}

	level, err := p.unpack(ctx, id, tmpPath, dest)
	if err != nil {
		_ = os.RemoveAll(dest)
		if prev, ok := p.cat.ByID(id); ok && prev.Path == dest {
			// the replaced install is gone too
			p.cat.Unregister(id)
		}
		log.Warn().Err(err).Str("dest", dest).Msg("install failed, rolled back")
		return nil, err
	}

	p.cat.Register(*level)
	log.Info().Str("dest", dest).Str("title", level.Title).Msg("level installed")
	return level, nil
}

func (p *Pipeline) unpack(ctx context.Context, id, archivePath, dest string) (*catalog.Level, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := Extract(archivePath, dest, p.opts.MaxEntryBytes); err != nil {
		return nil, fmt.Errorf("extracting level: %w", err)
	}
	// the archive must be gone before the level is visible
	if err := os.Remove(archivePath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing staged archive: %w", err)
	}

	m, metaDir, err := catalog.LoadMetadata(dest)
	if err != nil {
		return nil, fmt.Errorf("reading level metadata: %w", err)
	}
	level := m.Level(catalog.SourceLocal, dest)
	switch {
	case id != "":
		level.ID = id
	case level.ID == "":
		level.ID = filepath.Base(dest)
	}
	// a rescan must find the level under the ID it was installed as
	if m.PrimaryID() != level.ID {
		m.ID = level.ID
		if err := catalog.WriteMetadata(metaDir, m); err != nil {
			return nil, fmt.Errorf("recording level id: %w", err)
		}
	}
	return &level, nil
}

// writeTemp copies r to path, removing path on any failure.
func writeTemp(ctx context.Context, path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, ctxReader{ctx: ctx, r: r}); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("writing archive: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("closing temp file: %w", err)
	}
	return nil
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
