package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Metadata file names, in lookup order.
const (
	MetadataFile       = "level.yml"
	LegacyMetadataFile = "info.json"
)

// ErrNoMetadata is returned when a directory has neither metadata file.
var ErrNoMetadata = errors.New("no level metadata found")

// Metadata is the parsed form of either on-disk schema.
type Metadata struct {
	ID          string     `yaml:"id"`
	IDs         []string   `yaml:"ids,omitempty"`
	Title       string     `yaml:"title"`
	Artist      string     `yaml:"artist,omitempty"`
	Creator     string     `yaml:"creator,omitempty"`
	Description string     `yaml:"description,omitempty"`
	Difficulty  Difficulty `yaml:"difficulty,omitempty"`
	Tags        []string   `yaml:"tags,omitempty"`
}

// PrimaryID returns the explicit id, falling back to the first of IDs.
func (m Metadata) PrimaryID() string {
	if m.ID != "" {
		return m.ID
	}
	for _, id := range m.IDs {
		if id != "" {
			return id
		}
	}
	return ""
}

// Level converts metadata into a Level for the given source and directory.
func (m Metadata) Level(source SourceKind, dir string) Level {
	return Level{
		ID:          m.PrimaryID(),
		Title:       m.Title,
		Artist:      m.Artist,
		Creator:     m.Creator,
		Description: m.Description,
		Difficulty:  m.Difficulty,
		Tags:        NormalizeTags(m.Tags),
		Source:      source,
		Path:        dir,
	}
}

// legacyMetadata is the older JSON schema written by the first editor.
type legacyMetadata struct {
	LevelID      FlexID         `json:"levelId"`
	SongName     string         `json:"songName"`
	SongArtist   string         `json:"songArtist"`
	LevelCreator string         `json:"levelCreator"`
	Description  string         `json:"description"`
	Difficulty   FlexDifficulty `json:"difficulty"`
	Tags         FlexList       `json:"tags"`
}

// ParseMetadata decodes YAML (level.yml) metadata.
func ParseMetadata(data []byte) (Metadata, error) {
	var m Metadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Metadata{}, fmt.Errorf("parsing %s: %w", MetadataFile, err)
	}
	return m, nil
}

// ParseLegacyMetadata decodes the JSON (info.json) schema.
func ParseLegacyMetadata(data []byte) (Metadata, error) {
	var lm legacyMetadata
	if err := json.Unmarshal(data, &lm); err != nil {
		return Metadata{}, fmt.Errorf("parsing %s: %w", LegacyMetadataFile, err)
	}
	m := Metadata{
		ID:          string(lm.LevelID),
		Title:       lm.SongName,
		Artist:      lm.SongArtist,
		Creator:     lm.LevelCreator,
		Description: lm.Description,
		Difficulty:  Difficulty(lm.Difficulty),
		Tags:        []string(lm.Tags),
	}
	if m.ID != "" {
		m.IDs = []string{m.ID}
	}
	return m, nil
}

// LoadMetadata reads metadata from dir. When dir holds no metadata but has
// exactly one subdirectory (archives that wrap everything in a folder), that
// subdirectory is tried too. The returned path is the directory the metadata
// was found in.
func LoadMetadata(dir string) (Metadata, string, error) {
	m, err := loadMetadataIn(dir)
	if err == nil {
		return m, dir, nil
	}
	if !errors.Is(err, ErrNoMetadata) {
		return Metadata{}, "", err
	}

	entries, rerr := os.ReadDir(dir)
	if rerr != nil {
		return Metadata{}, "", fmt.Errorf("reading %s: %w", dir, rerr)
	}
	var sub string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if sub != "" {
			return Metadata{}, "", err
		}
		sub = filepath.Join(dir, e.Name())
	}
	if sub == "" {
		return Metadata{}, "", err
	}
	m, err = loadMetadataIn(sub)
	if err != nil {
		return Metadata{}, "", err
	}
	return m, sub, nil
}

func loadMetadataIn(dir string) (Metadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err == nil {
		return ParseMetadata(data)
	}
	if !os.IsNotExist(err) {
		return Metadata{}, fmt.Errorf("reading metadata: %w", err)
	}

	data, err = os.ReadFile(filepath.Join(dir, LegacyMetadataFile))
	if err == nil {
		return ParseLegacyMetadata(data)
	}
	if !os.IsNotExist(err) {
		return Metadata{}, fmt.Errorf("reading metadata: %w", err)
	}
	return Metadata{}, fmt.Errorf("%w in %s", ErrNoMetadata, dir)
}
