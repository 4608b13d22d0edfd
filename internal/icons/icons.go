// Package icons caches decoded level cover thumbnails by level ID.
package icons

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	// registers the WebP decoder with image.Decode
	_ "golang.org/x/image/webp"
)

// DefaultSize is the thumbnail edge length in pixels.
const DefaultSize = 96

// Icon is a decoded thumbnail. PNG holds the encoded thumbnail for terminals
// that render inline images.
type Icon struct {
	Image       image.Image
	PNG         []byte
	placeholder bool
}

// IsPlaceholder reports whether this is the stand-in used for failed fetches.
func (i Icon) IsPlaceholder() bool { return i.placeholder }

var (
	placeholderOnce sync.Once
	placeholder     Icon
)

// Placeholder returns the shared default icon.
func Placeholder() Icon {
	placeholderOnce.Do(func() {
		img := imaging.New(DefaultSize, DefaultSize, color.NRGBA{R: 48, G: 48, B: 56, A: 255})
		var buf bytes.Buffer
		_ = imaging.Encode(&buf, img, imaging.PNG)
		placeholder = Icon{Image: img, PNG: buf.Bytes(), placeholder: true}
	})
	return placeholder
}

// Decode decodes JPEG, PNG, GIF, BMP, TIFF or WebP data and fits it into a
// size x size thumbnail centred on a dark canvas.
func Decode(data []byte, size int) (Icon, error) {
	if size <= 0 {
		size = DefaultSize
	}
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return Icon{}, fmt.Errorf("decoding icon: %w", err)
	}
	thumb := imaging.Fit(src, size, size, imaging.Lanczos)
	canvas := imaging.New(size, size, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
	out := imaging.PasteCenter(canvas, thumb)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return Icon{}, fmt.Errorf("encoding icon: %w", err)
	}
	return Icon{Image: out, PNG: buf.Bytes()}, nil
}

// FetchFunc retrieves the raw cover bytes for a level.
type FetchFunc func(ctx context.Context, id string) ([]byte, error)

// Options configures a Cache.
type Options struct {
	// MaxEntries bounds the cache with LRU eviction. Zero keeps every icon
	// for the life of the process.
	MaxEntries int
	// Size is the thumbnail edge length; zero means DefaultSize.
	Size int
}

// Cache maps level IDs to icons. The first Set for an ID wins; later writes
// are ignored. It is safe for concurrent use.
type Cache struct {
	size int
	log  zerolog.Logger

	mu      sync.Mutex
	entries map[string]Icon
	bounded *lru.Cache[string, Icon]

	group singleflight.Group
}

// New creates a cache.
func New(opts Options, log zerolog.Logger) (*Cache, error) {
	c := &Cache{size: opts.Size, log: log}
	if c.size <= 0 {
		c.size = DefaultSize
	}
	if opts.MaxEntries > 0 {
		b, err := lru.New[string, Icon](opts.MaxEntries)
		if err != nil {
			return nil, fmt.Errorf("creating icon cache: %w", err)
		}
		c.bounded = b
	} else {
		c.entries = make(map[string]Icon)
	}
	return c, nil
}

// Get returns the cached icon for id.
func (c *Cache) Get(id string) (Icon, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bounded != nil {
		return c.bounded.Get(id)
	}
	icon, ok := c.entries[id]
	return icon, ok
}

// Set stores icon under id unless one is already present. It reports whether
// the icon was stored.
func (c *Cache) Set(id string, icon Icon) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bounded != nil {
		present, _ := c.bounded.ContainsOrAdd(id, icon)
		return !present
	}
	if _, ok := c.entries[id]; ok {
		return false
	}
	c.entries[id] = icon
	return true
}

// Len returns the number of cached icons.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bounded != nil {
		return c.bounded.Len()
	}
	return len(c.entries)
}

// GetOrFetch returns the cached icon for id, fetching and decoding it when
// absent. A failed fetch or decode caches the placeholder, so the same ID
// is never fetched twice. Concurrent calls for one ID share a single fetch.
// onDone, when non-nil, receives the resulting icon.
//
// A fetch aborted by ctx is not cached.
func (c *Cache) GetOrFetch(ctx context.Context, id string, fetch FetchFunc, onDone func(Icon)) Icon {
	if icon, ok := c.Get(id); ok {
		if onDone != nil {
			onDone(icon)
		}
		return icon
	}

	v, _, _ := c.group.Do(id, func() (any, error) {
		if icon, ok := c.Get(id); ok {
			return icon, nil
		}
		icon, err := c.load(ctx, id, fetch)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return Placeholder(), nil
			}
			c.log.Warn().Err(err).Str("id", id).Msg("icon fetch failed, using placeholder")
			icon = Placeholder()
		}
		c.Set(id, icon)
		stored, _ := c.Get(id)
		if stored.Image == nil {
			// evicted between Set and Get in a tiny LRU
			stored = icon
		}
		return stored, nil
	})

	icon := v.(Icon)
	if onDone != nil {
		onDone(icon)
	}
	return icon
}

func (c *Cache) load(ctx context.Context, id string, fetch FetchFunc) (Icon, error) {
	data, err := fetch(ctx, id)
	if err != nil {
		return Icon{}, err
	}
	return Decode(data, c.size)
}
