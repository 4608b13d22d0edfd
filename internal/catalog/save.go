package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MarshalMetadata encodes metadata in the level.yml schema.
func MarshalMetadata(m Metadata) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteMetadata writes level.yml into dir.
func WriteMetadata(dir string, m Metadata) error {
	data, err := MarshalMetadata(m)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, MetadataFile), data, 0600)
}

// Append adds a level to the list and returns the updated slice.
// If a level with the same ID already exists it is replaced.
func Append(levels []Level, l Level) []Level {
	for i, existing := range levels {
		if existing.ID == l.ID {
			levels[i] = l
			return levels
		}
	}
	return append(levels, l)
}

// Remove removes a level by ID. Returns the updated slice and whether a level
// was actually removed.
func Remove(levels []Level, id string) ([]Level, bool) {
	for i, l := range levels {
		if l.ID == id {
			return append(levels[:i], levels[i+1:]...), true
		}
	}
	return levels, false
}
