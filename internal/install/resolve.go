package install

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Source holds a resolved archive input ready for reading.
type Source struct {
	// Name is the original filename (no directory).
	Name string
	// Size is the byte count if known in advance (-1 if unknown).
	Size int64
	// Open returns a new ReadCloser. May be called once.
	Open func() (io.ReadCloser, error)
}

// Resolve determines the type of input and returns a Source.
// Supported formats:
//
//	/path/to/level.zip             local file
//	https://example.com/level.zip  HTTP URL
func Resolve(input string) (*Source, error) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return resolveHTTP(input)
	}
	return resolveFile(input)
}

// IDFromName derives a level ID from an archive filename.
func IDFromName(name string) string {
	base := filepath.Base(name)
	lower := strings.ToLower(base)
	for _, ext := range []string{".tar.gz", ".tgz", ".zip", ".7z", ".rar"} {
		if strings.HasSuffix(lower, ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func resolveFile(path string) (*Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%q is a directory", path)
	}
	return &Source{
		Name: filepath.Base(path),
		Size: fi.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

func resolveHTTP(url string) (*Source, error) {
	// HEAD the URL to try to get Content-Length.
	client := &http.Client{Timeout: 15 * time.Second}
	size := int64(-1)
	if resp, err := client.Head(url); err == nil {
		if resp.StatusCode == http.StatusOK && resp.ContentLength > 0 {
			size = resp.ContentLength
		}
		_ = resp.Body.Close()
	}

	download := &http.Client{Timeout: 10 * time.Minute}
	return &Source{
		Name: guessFilenameFromURL(url),
		Size: size,
		Open: func() (io.ReadCloser, error) {
			r, err := download.Get(url)
			if err != nil {
				return nil, err
			}
			if r.StatusCode != http.StatusOK {
				_ = r.Body.Close()
				return nil, fmt.Errorf("GET %s: status %d", url, r.StatusCode)
			}
			return r.Body, nil
		},
	}, nil
}

func guessFilenameFromURL(rawURL string) string {
	if idx := strings.Index(rawURL, "?"); idx >= 0 {
		rawURL = rawURL[:idx]
	}
	base := filepath.Base(rawURL)
	if base == "" || base == "." || base == "/" {
		return "download"
	}
	return base
}
