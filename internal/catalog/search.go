package catalog

import "strings"

// Query is a search term as typed plus its lower-cased form.
type Query struct {
	Raw        string
	Normalized string
}

// NewQuery builds a Query from raw user input.
func NewQuery(raw string) Query {
	return Query{Raw: raw, Normalized: strings.ToLower(raw)}
}

// Empty reports whether the query matches everything.
func (q Query) Empty() bool {
	return q.Raw == ""
}

// Matches reports whether l belongs in the results for q.
//
// An exact identifier match short-circuits. Otherwise the normalized query
// must be a substring of a tag, the artist, creator, title or difficulty
// label. There is no tokenization and no fuzzy matching.
func Matches(q Query, l Level) bool {
	if q.Empty() {
		return true
	}
	if q.Raw == l.ID {
		return true
	}
	n := q.Normalized
	for _, t := range l.Tags {
		// tags are stored lower-case
		if strings.Contains(t, n) {
			return true
		}
	}
	if strings.Contains(strings.ToLower(l.Artist), n) {
		return true
	}
	if strings.Contains(strings.ToLower(l.Creator), n) {
		return true
	}
	if strings.Contains(strings.ToLower(l.Title), n) {
		return true
	}
	return strings.Contains(strings.ToLower(l.Difficulty.Label()), n)
}

// FilterLevels returns the levels matching q, preserving order.
func FilterLevels(q Query, levels []Level) []Level {
	if q.Empty() {
		out := make([]Level, len(levels))
		copy(out, levels)
		return out
	}
	var out []Level
	for _, l := range levels {
		if Matches(q, l) {
			out = append(out, l)
		}
	}
	return out
}

// Filter applies all non-empty criteria and returns matching levels.
type Filter struct {
	Tag        string
	Difficulty string
	Search     string // see Matches
}

// Apply returns the subset of levels matching all non-empty filter fields.
func (f Filter) Apply(levels []Level) []Level {
	q := NewQuery(f.Search)
	var out []Level
	for _, l := range levels {
		if f.Tag != "" && !hasTag(l, f.Tag) {
			continue
		}
		if f.Difficulty != "" && !strings.EqualFold(l.Difficulty.Label(), f.Difficulty) {
			continue
		}
		if !Matches(q, l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// ByID returns the first level with the given ID, or nil.
func ByID(levels []Level, id string) *Level {
	for i := range levels {
		if levels[i].ID == id {
			return &levels[i]
		}
	}
	return nil
}

func hasTag(l Level, tag string) bool {
	tag = strings.ToLower(tag)
	for _, t := range l.Tags {
		if strings.ToLower(t) == tag {
			return true
		}
	}
	return false
}
