// Package store persists small pieces of application state (the play queue,
// workshop subscriptions) as files under a state directory.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// ErrNotFound is returned when a key has never been written.
var ErrNotFound = errors.New("key not found")

// Well-known keys.
const (
	KeyQueue         = "queue/current"
	KeySubscriptions = "workshop/subscriptions"
)

// Store is a diskv-backed key/value store. Keys use '/' to separate
// directory levels.
type Store struct {
	d        *diskv.Diskv
	basePath string
}

// Open returns a store rooted at basePath. The directory is created on first
// write.
func Open(basePath string) *Store {
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      256 * 1024,
		}),
		basePath: basePath,
	}
}

// BasePath returns the state directory.
func (s *Store) BasePath() string { return s.basePath }

// Get reads the raw value for key.
func (s *Store) Get(key string) ([]byte, error) {
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return val, nil
}

// Put writes the raw value for key.
func (s *Store) Put(key string, val []byte) error {
	if err := s.d.Write(key, val); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if !s.d.Has(key) {
		return nil
	}
	if err := s.d.Erase(key); err != nil {
		return fmt.Errorf("erasing %s: %w", key, err)
	}
	return nil
}

// Has reports whether key exists.
func (s *Store) Has(key string) bool { return s.d.Has(key) }

// Keys lists every stored key with the given prefix.
func (s *Store) Keys(ctx context.Context, prefix string) []string {
	var out []string
	for k := range s.d.KeysPrefix(prefix, ctx.Done()) {
		out = append(out, k)
	}
	return out
}

// GetJSON decodes the value for key into out.
func (s *Store) GetJSON(key string, out any) error {
	val, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(val, out); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// PutJSON encodes v and stores it under key.
func (s *Store) PutJSON(key string, v any) error {
	val, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Put(key, val)
}

func keyToPathTransform(key string) *diskv.PathKey {
	parts := strings.Split(key, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pk *diskv.PathKey) string {
	if len(pk.Path) == 0 {
		return pk.FileName
	}
	return strings.Join(pk.Path, "/") + "/" + pk.FileName
}
