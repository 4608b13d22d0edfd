package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// SourceKind identifies where a level came from.
type SourceKind int

const (
	SourceLocal SourceKind = iota
	SourceRemote
	SourceSubscription
)

func (k SourceKind) String() string {
	switch k {
	case SourceLocal:
		return "local"
	case SourceRemote:
		return "remote"
	case SourceSubscription:
		return "subscription"
	default:
		return "unknown"
	}
}

// Level is one playable entry in any of the browsable sources.
type Level struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Artist      string     `json:"artist,omitempty" yaml:"artist,omitempty"`
	Creator     string     `json:"creator,omitempty" yaml:"creator,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Source      SourceKind `json:"source" yaml:"-"`
	// Path is the install directory. Empty for remote levels.
	Path   string `json:"path,omitempty" yaml:"-"`
	Locked bool   `json:"locked,omitempty" yaml:"-"`
}

// Installed reports whether the level has files on disk.
func (l Level) Installed() bool {
	return l.Path != "" && l.Source != SourceRemote
}

// Difficulty is the level's difficulty rating.
type Difficulty int

const (
	DifficultyUnknown Difficulty = iota
	DifficultyEasy
	DifficultyNormal
	DifficultyHard
	DifficultyExpert
	DifficultyMaster
)

var difficultyLabels = [...]string{"Unknown", "Easy", "Normal", "Hard", "Expert", "Master"}

// Display colors, indexed like difficultyLabels.
var difficultyColors = [...]string{"#808080", "#3FBF3F", "#3FA9F5", "#F5A623", "#E8463A", "#A34DE0"}

// Label returns the display label shown in the browser and matched by search.
func (d Difficulty) Label() string {
	if d < 0 || int(d) >= len(difficultyLabels) {
		return difficultyLabels[0]
	}
	return difficultyLabels[d]
}

// Color returns the hex display color for the difficulty.
func (d Difficulty) Color() string {
	if d < 0 || int(d) >= len(difficultyColors) {
		return difficultyColors[0]
	}
	return difficultyColors[d]
}

func (d Difficulty) String() string { return d.Label() }

// ParseDifficulty accepts a numeric index or a case-insensitive label.
// Anything unrecognised maps to DifficultyUnknown.
func ParseDifficulty(s string) Difficulty {
	s = strings.TrimSpace(s)
	if s == "" {
		return DifficultyUnknown
	}
	if n, err := strconv.Atoi(s); err == nil {
		return difficultyFromInt(n)
	}
	for i, label := range difficultyLabels {
		if strings.EqualFold(label, s) {
			return Difficulty(i)
		}
	}
	return DifficultyUnknown
}

func difficultyFromInt(n int) Difficulty {
	if n < 0 || n >= len(difficultyLabels) {
		return DifficultyUnknown
	}
	return Difficulty(n)
}

// MarshalText writes the label so YAML and JSON output stay readable.
func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.Label()), nil
}

// UnmarshalText accepts what ParseDifficulty accepts.
func (d *Difficulty) UnmarshalText(b []byte) error {
	*d = ParseDifficulty(string(b))
	return nil
}

// UnmarshalJSON handles both numeric and string difficulty values.
func (d *Difficulty) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*d = DifficultyUnknown
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*d = difficultyFromInt(n)
		return nil
	}
	unq, err := strconv.Unquote(s)
	if err != nil {
		return fmt.Errorf("difficulty: %w", err)
	}
	*d = ParseDifficulty(unq)
	return nil
}

// NormalizeTags lower-cases and trims tags, dropping empties and duplicates.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
