package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/levelshelf/internal/catalog"
	"github.com/rs/zerolog"
)

var sampleYAML = []byte(`
id: L42
title: "Neon Stairway"
artist: "Kiri Vale"
creator: "mapper_jun"
description: "Fast stream section at the end."
difficulty: Hard
tags: [Stream, electro, stream]
`)

var sampleJSON = []byte(`{
  "levelId": 1337,
  "songName": "Old Harbor",
  "songArtist": "The Ferrymen",
  "levelCreator": "ana",
  "difficulty": 1,
  "tags": "folk, chill"
}`)

func sampleLevels() []catalog.Level {
	return []catalog.Level{
		{ID: "L1", Title: "Neon Stairway", Artist: "Kiri Vale", Creator: "jun", Difficulty: catalog.DifficultyHard, Tags: []string{"stream", "electro"}},
		{ID: "L2", Title: "Old Harbor", Artist: "The Ferrymen", Creator: "ana", Difficulty: catalog.DifficultyEasy, Tags: []string{"folk"}},
		{ID: "L3", Title: "Glass Rain", Artist: "Mira", Creator: "JUN", Difficulty: catalog.DifficultyExpert},
	}
}

// --- Matches / FilterLevels ---

func TestMatches_EmptyQuery(t *testing.T) {
	for _, l := range sampleLevels() {
		if !catalog.Matches(catalog.NewQuery(""), l) {
			t.Errorf("empty query should match %s", l.ID)
		}
	}
}

func TestMatches_ExactID(t *testing.T) {
	l := catalog.Level{ID: "AbC-9", Title: "zzz"}
	if !catalog.Matches(catalog.NewQuery("AbC-9"), l) {
		t.Error("exact id should match")
	}
	// The id fast path is verbatim; case-folded id text is not a searched field.
	if catalog.Matches(catalog.NewQuery("abc-9"), l) {
		t.Error("lower-cased id should not match through the fast path")
	}
}

func TestMatches_Fields(t *testing.T) {
	levels := sampleLevels()
	cases := []struct {
		query string
		want  []string
	}{
		{"neon", []string{"L1"}},
		{"FERRY", []string{"L2"}},
		{"jun", []string{"L1", "L3"}},
		{"elect", []string{"L1"}},
		{"expert", []string{"L3"}},
		{"ar", []string{"L1", "L2"}}, // Hard, Harbor
		{"nothing here", nil},
	}
	for _, c := range cases {
		got := ids(catalog.FilterLevels(catalog.NewQuery(c.query), levels))
		if !equal(got, c.want) {
			t.Errorf("FilterLevels(%q) = %v, want %v", c.query, got, c.want)
		}
	}
}

func TestFilterLevels_SubsetAndIdentity(t *testing.T) {
	levels := sampleLevels()
	all := catalog.FilterLevels(catalog.NewQuery(""), levels)
	if !equal(ids(all), ids(levels)) {
		t.Errorf("empty filter = %v, want %v", ids(all), ids(levels))
	}
	for _, q := range []string{"a", "e", "rain", "L2", "zz"} {
		for _, l := range catalog.FilterLevels(catalog.NewQuery(q), levels) {
			if catalog.ByID(levels, l.ID) == nil {
				t.Errorf("query %q returned %s which is not in the input", q, l.ID)
			}
		}
	}
}

func TestFilter_TagAndDifficulty(t *testing.T) {
	levels := sampleLevels()
	if got := ids(catalog.Filter{Tag: "FOLK"}.Apply(levels)); !equal(got, []string{"L2"}) {
		t.Errorf("tag filter = %v", got)
	}
	if got := ids(catalog.Filter{Difficulty: "hard"}.Apply(levels)); !equal(got, []string{"L1"}) {
		t.Errorf("difficulty filter = %v", got)
	}
	if got := ids(catalog.Filter{Search: "jun", Difficulty: "expert"}.Apply(levels)); !equal(got, []string{"L3"}) {
		t.Errorf("combined filter = %v", got)
	}
	if got := (catalog.Filter{}).Apply(levels); len(got) != 3 {
		t.Errorf("empty filter should return all levels, got %d", len(got))
	}
}

// --- Difficulty ---

func TestParseDifficulty(t *testing.T) {
	cases := map[string]catalog.Difficulty{
		"":       catalog.DifficultyUnknown,
		"2":      catalog.DifficultyNormal,
		"expert": catalog.DifficultyExpert,
		"MASTER": catalog.DifficultyMaster,
		"99":     catalog.DifficultyUnknown,
		"-1":     catalog.DifficultyUnknown,
		"weird":  catalog.DifficultyUnknown,
	}
	for in, want := range cases {
		if got := catalog.ParseDifficulty(in); got != want {
			t.Errorf("ParseDifficulty(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDifficulty_JSON(t *testing.T) {
	var v struct {
		A catalog.Difficulty `json:"a"`
		B catalog.Difficulty `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a": 3, "b": "easy"}`), &v); err != nil {
		t.Fatal(err)
	}
	if v.A != catalog.DifficultyHard || v.B != catalog.DifficultyEasy {
		t.Errorf("got %v / %v", v.A, v.B)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"a":"Hard","b":"Easy"}` {
		t.Errorf("marshal = %s", out)
	}
}

func TestDifficulty_LabelOutOfRange(t *testing.T) {
	if got := catalog.Difficulty(42).Label(); got != "Unknown" {
		t.Errorf("Label = %q", got)
	}
	if catalog.DifficultyHard.Color() == "" {
		t.Error("Color should not be empty")
	}
}

// --- FlexID ---

func TestFlexID(t *testing.T) {
	cases := map[string]string{
		`"L42"`: "L42",
		`42`:    "42",
		`0`:     "",
		`"0"`:   "",
		`null`:  "",
		`""`:    "",
	}
	for in, want := range cases {
		var f catalog.FlexID
		if err := json.Unmarshal([]byte(in), &f); err != nil {
			t.Fatalf("Unmarshal(%s): %v", in, err)
		}
		if string(f) != want {
			t.Errorf("FlexID(%s) = %q, want %q", in, f, want)
		}
	}
}

// --- Metadata ---

func TestParseMetadata(t *testing.T) {
	m, err := catalog.ParseMetadata(sampleYAML)
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if m.ID != "L42" || m.Difficulty != catalog.DifficultyHard {
		t.Errorf("metadata = %+v", m)
	}
	l := m.Level(catalog.SourceLocal, "/tmp/x")
	if !equal(l.Tags, []string{"stream", "electro"}) {
		t.Errorf("tags = %v, want normalized and deduped", l.Tags)
	}
}

func TestParseLegacyMetadata(t *testing.T) {
	m, err := catalog.ParseLegacyMetadata(sampleJSON)
	if err != nil {
		t.Fatalf("ParseLegacyMetadata: %v", err)
	}
	if m.PrimaryID() != "1337" {
		t.Errorf("id = %q", m.PrimaryID())
	}
	if m.Title != "Old Harbor" || m.Artist != "The Ferrymen" || m.Creator != "ana" {
		t.Errorf("metadata = %+v", m)
	}
	if m.Difficulty != catalog.DifficultyEasy {
		t.Errorf("difficulty = %v", m.Difficulty)
	}
	if !equal(m.Tags, []string{"folk", "chill"}) {
		t.Errorf("tags = %v", m.Tags)
	}
}

func TestParseMetadata_Invalid(t *testing.T) {
	if _, err := catalog.ParseMetadata([]byte(":: bad yaml [")); err == nil {
		t.Error("expected error for invalid YAML")
	}
	if _, err := catalog.ParseLegacyMetadata([]byte("{nope")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadMetadata_NestedFolder(t *testing.T) {
	dir := t.TempDir()
	inner := filepath.Join(dir, "Neon Stairway")
	if err := os.MkdirAll(inner, 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(inner, catalog.MetadataFile), sampleYAML, 0600); err != nil {
		t.Fatal(err)
	}
	m, found, err := catalog.LoadMetadata(dir)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if found != inner {
		t.Errorf("found in %q, want %q", found, inner)
	}
	if m.Title != "Neon Stairway" {
		t.Errorf("title = %q", m.Title)
	}
}

func TestLoadMetadata_Missing(t *testing.T) {
	_, _, err := catalog.LoadMetadata(t.TempDir())
	if !errors.Is(err, catalog.ErrNoMetadata) {
		t.Errorf("err = %v, want ErrNoMetadata", err)
	}
}

func TestMetadata_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := catalog.Metadata{ID: "x1", Title: "T", Artist: "A", Difficulty: catalog.DifficultyMaster, Tags: []string{"a"}}
	if err := catalog.WriteMetadata(dir, want); err != nil {
		t.Fatal(err)
	}
	got, _, err := catalog.LoadMetadata(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != want.ID || got.Difficulty != want.Difficulty || got.Title != want.Title {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

// --- Local catalog ---

func TestLocal_ScanSkipsBrokenLevels(t *testing.T) {
	root := t.TempDir()
	writeLevel(t, root, "good", sampleYAML, catalog.MetadataFile)
	writeLevel(t, root, "legacy", sampleJSON, catalog.LegacyMetadataFile)
	writeLevel(t, root, "broken", []byte(":: bad yaml ["), catalog.MetadataFile)
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0750); err != nil {
		t.Fatal(err)
	}

	c := catalog.NewLocal(root, zerolog.Nop())
	if err := c.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (%v)", c.Len(), ids(c.All()))
	}
	l, ok := c.ByID("L42")
	if !ok {
		t.Fatal("L42 missing")
	}
	if l.Path != filepath.Join(root, "good") || l.Source != catalog.SourceLocal {
		t.Errorf("level = %+v", l)
	}
}

func TestLocal_ScanMissingRoot(t *testing.T) {
	c := catalog.NewLocal(filepath.Join(t.TempDir(), "nope"), zerolog.Nop())
	if err := c.Scan(); err != nil {
		t.Fatalf("Scan of missing root should not fail: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestLocal_RegisterReplaces(t *testing.T) {
	c := catalog.NewLocal(t.TempDir(), zerolog.Nop())
	c.Register(catalog.Level{ID: "a", Title: "one"})
	c.Register(catalog.Level{ID: "a", Title: "two"})
	if c.Len() != 1 {
		t.Fatalf("Len = %d", c.Len())
	}
	if l, _ := c.ByID("a"); l.Title != "two" {
		t.Errorf("Title = %q", l.Title)
	}
}

func TestLocal_Cover(t *testing.T) {
	root := t.TempDir()
	dir := writeLevel(t, root, "good", sampleYAML, catalog.MetadataFile)
	if err := os.WriteFile(filepath.Join(dir, "cover.jpg"), []byte("jpeg"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "preview.png"), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}
	c := catalog.NewLocal(root, zerolog.Nop())
	if err := c.Scan(); err != nil {
		t.Fatal(err)
	}

	data, err := c.Cover(context.Background(), "L42")
	if err != nil || string(data) != "png" {
		t.Errorf("Cover(L42) = %q, %v, want preview.png first", data, err)
	}
	if _, err := c.Cover(context.Background(), "missing"); err == nil {
		t.Error("Cover of unknown level should fail")
	}
	if _, err := catalog.ReadCover(t.TempDir()); err == nil {
		t.Error("ReadCover of empty dir should fail")
	}
}

func TestLocal_Uninstall(t *testing.T) {
	root := t.TempDir()
	dir := writeLevel(t, root, "good", sampleYAML, catalog.MetadataFile)
	c := catalog.NewLocal(root, zerolog.Nop())
	if err := c.Scan(); err != nil {
		t.Fatal(err)
	}
	if err := c.Uninstall("L42"); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("level directory should be gone")
	}
	if _, ok := c.ByID("L42"); ok {
		t.Error("level should be unregistered")
	}
	if err := c.Uninstall("L42"); err == nil {
		t.Error("second uninstall should fail")
	}
}

func TestLocal_UninstallRefusesOutsideRoot(t *testing.T) {
	c := catalog.NewLocal(t.TempDir(), zerolog.Nop())
	outside := t.TempDir()
	c.Register(catalog.Level{ID: "x", Path: outside})
	if err := c.Uninstall("x"); err == nil {
		t.Error("expected refusal for a path outside the root")
	}
	if _, err := os.Stat(outside); err != nil {
		t.Error("outside directory must survive")
	}
}

// --- Append / Remove ---

func TestAppendRemove(t *testing.T) {
	levels := sampleLevels()
	levels = catalog.Append(levels, catalog.Level{ID: "L4"})
	if len(levels) != 4 {
		t.Errorf("len after append = %d", len(levels))
	}
	levels, ok := catalog.Remove(levels, "L1")
	if !ok || len(levels) != 3 || levels[0].ID != "L2" {
		t.Errorf("remove: ok=%v ids=%v", ok, ids(levels))
	}
	if _, ok := catalog.Remove(levels, "nope"); ok {
		t.Error("Remove returned ok=true for missing level")
	}
}

func writeLevel(t *testing.T, root, name string, data []byte, file string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, file), data, 0600); err != nil {
		t.Fatal(err)
	}
	return dir
}

func ids(levels []catalog.Level) []string {
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = l.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
