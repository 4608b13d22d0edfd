// Package cache keeps downloaded cover images on disk so the browser does
// not refetch them on every run.
package cache

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const coverExt = ".cover"

// Manager handles the on-disk cover cache. One file per level ID.
type Manager struct {
	baseDir string
	log     zerolog.Logger
}

// New creates a cache Manager rooted at baseDir.
func New(baseDir string, log zerolog.Logger) *Manager {
	return &Manager{baseDir: baseDir, log: log}
}

// Dir returns the cache root.
func (m *Manager) Dir() string { return m.baseDir }

// Path returns the full cache path for a level's cover.
// Layout: <baseDir>/<escaped id>.cover
func (m *Manager) Path(id string) string {
	return filepath.Join(m.baseDir, url.PathEscape(id)+coverExt)
}

// Exists reports whether the cover is cached.
func (m *Manager) Exists(id string) bool {
	_, err := os.Stat(m.Path(id))
	return err == nil
}

// EnsureDir creates the cache root.
func (m *Manager) EnsureDir() error {
	return os.MkdirAll(m.baseDir, 0750)
}

// Remove deletes the cached cover if it exists.
func (m *Manager) Remove(id string) error {
	err := os.Remove(m.Path(id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Usage counts cached covers and their total size.
func (m *Manager) Usage() (files int, size int64, err error) {
	err = m.walk(func(path string, info os.FileInfo) error {
		files++
		size += info.Size()
		return nil
	})
	return files, size, err
}

// Clear deletes every cached cover and returns how many were removed.
func (m *Manager) Clear() (int, error) {
	var n int
	err := m.walk(func(path string, _ os.FileInfo) error {
		if err := os.Remove(path); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}

func (m *Manager) walk(fn func(path string, info os.FileInfo) error) error {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), coverExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return err
		}
		if err := fn(filepath.Join(m.baseDir, e.Name()), info); err != nil {
			return err
		}
	}
	return nil
}
