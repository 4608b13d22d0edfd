package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Local is the on-disk catalog: one directory per installed level under root.
// It is safe for concurrent use; installs register from background goroutines.
type Local struct {
	root   string
	source SourceKind
	log    zerolog.Logger

	mu     sync.RWMutex
	levels []Level
}

// NewLocal creates a catalog rooted at root. Call Scan to populate it.
func NewLocal(root string, log zerolog.Logger) *Local {
	return NewLocalOf(root, SourceLocal, log)
}

// NewLocalOf creates a catalog whose levels carry the given source kind.
// The workshop content directory uses SourceSubscription.
func NewLocalOf(root string, source SourceKind, log zerolog.Logger) *Local {
	return &Local{root: root, source: source, log: log}
}

// Root returns the directory levels are installed under.
func (c *Local) Root() string { return c.root }

// Scan rebuilds the catalog from the directories under root. Directories
// with missing or malformed metadata are logged and skipped.
func (c *Local) Scan() error {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		if os.IsNotExist(err) {
			c.mu.Lock()
			c.levels = nil
			c.mu.Unlock()
			return nil
		}
		return fmt.Errorf("reading catalog: %w", err)
	}

	var levels []Level
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dir := filepath.Join(c.root, e.Name())
		m, _, err := LoadMetadata(dir)
		if err != nil {
			c.log.Warn().Err(err).Str("dir", dir).Msg("skipping level")
			continue
		}
		l := m.Level(c.source, dir)
		if l.ID == "" {
			l.ID = e.Name()
		}
		levels = Append(levels, l)
	}
	sort.SliceStable(levels, func(i, j int) bool {
		return strings.ToLower(levels[i].Title) < strings.ToLower(levels[j].Title)
	})

	c.mu.Lock()
	c.levels = levels
	c.mu.Unlock()
	c.log.Debug().Int("levels", len(levels)).Str("root", c.root).Msg("catalog scanned")
	return nil
}

// All returns a snapshot of every level.
func (c *Local) All() []Level {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Level, len(c.levels))
	copy(out, c.levels)
	return out
}

// Len returns the number of levels.
func (c *Local) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.levels)
}

// ByID returns a copy of the level with the given ID.
func (c *Local) ByID(id string) (Level, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if l := ByID(c.levels, id); l != nil {
		return *l, true
	}
	return Level{}, false
}

// Register adds or replaces a level.
func (c *Local) Register(l Level) {
	c.mu.Lock()
	c.levels = Append(c.levels, l)
	c.mu.Unlock()
	c.log.Debug().Str("id", l.ID).Str("path", l.Path).Msg("level registered")
}

// Unregister drops a level without touching its files.
func (c *Local) Unregister(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ok bool
	c.levels, ok = Remove(c.levels, id)
	return ok
}

// Uninstall removes the level's directory and unregisters it.
func (c *Local) Uninstall(id string) error {
	l, ok := c.ByID(id)
	if !ok {
		return fmt.Errorf("level %q not installed", id)
	}
	if l.Path != "" {
		if !strings.HasPrefix(filepath.Clean(l.Path), filepath.Clean(c.root)+string(filepath.Separator)) {
			return fmt.Errorf("level %q lives outside %s, refusing to delete", id, c.root)
		}
		if err := os.RemoveAll(l.Path); err != nil {
			return fmt.Errorf("removing %s: %w", l.Path, err)
		}
	}
	c.Unregister(id)
	return nil
}
