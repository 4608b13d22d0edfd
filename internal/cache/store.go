package cache

import (
	"fmt"
	"io"
	"os"

	"github.com/blackwell-systems/levelshelf/internal/util"
)

// Store writes r to the cache path for id, verifying the sha256 checksum
// after write if expectedSHA256 is non-empty. Returns the final file path.
func (m *Manager) Store(id string, r io.Reader, expectedSHA256 string) (string, error) {
	if err := m.EnsureDir(); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	destPath := m.Path(id)
	tmpPath := destPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("writing to cache: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	if expectedSHA256 != "" {
		if err := util.VerifySHA256(tmpPath, expectedSHA256); err != nil {
			_ = os.Remove(tmpPath)
			return "", err
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	return destPath, nil
}

// Read returns the cached cover bytes.
func (m *Manager) Read(id string) ([]byte, error) {
	return os.ReadFile(m.Path(id))
}
