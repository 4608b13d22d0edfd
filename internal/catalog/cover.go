package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// CoverFiles are tried in order when looking for a level's cover image.
var CoverFiles = []string{"preview.png", "preview.jpg", "cover.png", "cover.jpg", "cover.webp"}

// ReadCover returns the first cover image found in dir.
func ReadCover(dir string) ([]byte, error) {
	for _, name := range CoverFiles {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading cover: %w", err)
		}
	}
	return nil, fmt.Errorf("no cover image in %s", dir)
}

// Cover reads an installed level's cover. It has the icons.FetchFunc shape
// so local covers go through the same cache as downloaded ones.
func (c *Local) Cover(_ context.Context, id string) ([]byte, error) {
	l, ok := c.ByID(id)
	if !ok {
		return nil, fmt.Errorf("level %q not installed", id)
	}
	return ReadCover(l.Path)
}
