package app

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/levelshelf/internal/browse"
	"github.com/blackwell-systems/levelshelf/internal/catalog"
	"github.com/blackwell-systems/levelshelf/internal/config"
)

type testLib struct {
	levels   string
	workshop string
	state    string
}

// setup writes a config pointing every directory into a temp dir.
func setup(t *testing.T, apiBase string) testLib {
	t.Helper()
	root := t.TempDir()
	lib := testLib{
		levels:   filepath.Join(root, "levels"),
		workshop: filepath.Join(root, "workshop"),
		state:    filepath.Join(root, "state"),
	}
	conf := "library:\n" +
		"  levels_dir: " + lib.levels + "\n" +
		"  workshop_dir: " + lib.workshop + "\n" +
		"  state_dir: " + lib.state + "\n" +
		"  cache_dir: " + filepath.Join(root, "cache") + "\n" +
		"browse:\n  page_size: 2\n  queue_page_size: 2\n" +
		"log:\n  level: error\n"
	if apiBase != "" {
		conf += "api:\n  base: " + apiBase + "\n"
	}
	path := filepath.Join(root, "config.yml")
	if err := os.WriteFile(path, []byte(conf), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LEVELSHELF_CONFIG", path)
	t.Setenv("LEVELSHELF_TOKEN", "")
	return lib
}

func seed(t *testing.T, root string, levels ...catalog.Metadata) {
	t.Helper()
	for _, m := range levels {
		dir := filepath.Join(root, m.ID)
		if err := os.MkdirAll(dir, 0750); err != nil {
			t.Fatal(err)
		}
		if err := catalog.WriteMetadata(dir, m); err != nil {
			t.Fatal(err)
		}
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func runJSON(t *testing.T, args ...string) []levelRow {
	t.Helper()
	out, err := run(t, "", append(args, "--json")...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	var rows []levelRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decoding %v output: %v\n%s", args, err, out)
	}
	return rows
}

func rowIDs(rows []levelRow) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func sampleLevels() []catalog.Metadata {
	return []catalog.Metadata{
		{ID: "A", Title: "Neon Nights", Difficulty: catalog.DifficultyHard, Tags: []string{"stream"}},
		{ID: "B", Title: "Calm Waters", Difficulty: catalog.DifficultyEasy},
		{ID: "C", Title: "Neon Dawn", Difficulty: catalog.DifficultyEasy},
	}
}

func TestLocal_FilterJSON(t *testing.T) {
	lib := setup(t, "")
	seed(t, lib.levels, sampleLevels()...)

	rows := runJSON(t, "local", "neon", "--difficulty", "easy", "--all")
	if len(rows) != 1 || rows[0].ID != "C" {
		t.Fatalf("rows = %v, want [C]", rowIDs(rows))
	}
	if !rows[0].Installed || rows[0].Difficulty != "Easy" {
		t.Errorf("row = %+v", rows[0])
	}

	rows = runJSON(t, "local", "--tag", "stream", "--all")
	if len(rows) != 1 || rows[0].ID != "A" {
		t.Errorf("tag rows = %v, want [A]", rowIDs(rows))
	}
}

func TestLocal_Paging(t *testing.T) {
	lib := setup(t, "")
	seed(t, lib.levels, sampleLevels()...)

	// page_size 2, sorted by title: Calm Waters, Neon Dawn | Neon Nights
	rows := runJSON(t, "local", "--page", "1")
	if len(rows) != 1 || rows[0].ID != "A" {
		t.Errorf("page 1 = %v, want [A]", rowIDs(rows))
	}
	rows = runJSON(t, "local", "--page", "9")
	if len(rows) != 1 {
		t.Errorf("clamped page = %v, want the last page", rowIDs(rows))
	}
}

func TestLocal_UnknownDifficulty(t *testing.T) {
	setup(t, "")
	if _, err := run(t, "", "local", "--difficulty", "impossible"); err == nil {
		t.Error("expected error for unknown difficulty")
	}
}

func TestQueue_AddListShuffleClear(t *testing.T) {
	lib := setup(t, "")
	seed(t, lib.levels, sampleLevels()...)

	if _, err := run(t, "", "queue", "add", "B", "A"); err != nil {
		t.Fatalf("queue add: %v", err)
	}
	if _, err := run(t, "", "queue", "add", "Z"); err == nil {
		t.Error("queueing an uninstalled level should fail")
	}

	rows := runJSON(t, "queue", "list")
	if got := strings.Join(rowIDs(rows), ","); got != "B,A" {
		t.Errorf("queue = %s, want B,A", got)
	}
	if !rows[0].Queued {
		t.Error("queued row should be marked queued")
	}

	if _, err := run(t, "", "queue", "shuffle", "1"); err != nil {
		t.Fatalf("shuffle: %v", err)
	}
	if rows := runJSON(t, "queue", "list"); len(rows) != 1 {
		t.Errorf("after shuffle 1: %v", rowIDs(rows))
	}

	if _, err := run(t, "", "queue", "shuffle", "--from-local"); err != nil {
		t.Fatalf("shuffle --from-local: %v", err)
	}
	if rows := runJSON(t, "queue", "list", "--page", "1"); len(rows) != 1 {
		t.Errorf("page 1 after --from-local = %v, want one level", rowIDs(rows))
	}

	if _, err := run(t, "", "queue", "clear"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if rows := runJSON(t, "queue", "list"); len(rows) != 0 {
		t.Errorf("after clear: %v", rowIDs(rows))
	}
}

func TestQueue_PasteAndCopy(t *testing.T) {
	lib := setup(t, "")
	seed(t, lib.levels, sampleLevels()...)

	if _, err := run(t, "C, A\n\n# comment\nA\n", "queue", "paste", "--stdin"); err != nil {
		t.Fatalf("paste: %v", err)
	}
	out, err := run(t, "", "queue", "copy", "--print")
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if want := "levelshelf-queue:v1\nC\nA\n"; out != want {
		t.Errorf("copy --print = %q, want %q", out, want)
	}

	if _, err := run(t, "\n\n", "queue", "paste", "--stdin"); err == nil {
		t.Error("pasting an empty snapshot should fail")
	}
	if rows := runJSON(t, "queue", "list"); len(rows) != 2 {
		t.Errorf("queue after failed paste = %v, want unchanged", rowIDs(rows))
	}
}

func TestQueue_Clipboard(t *testing.T) {
	lib := setup(t, "")
	seed(t, lib.levels, sampleLevels()...)

	var copied string
	origWrite, origRead := clipboardWrite, clipboardRead
	t.Cleanup(func() { clipboardWrite, clipboardRead = origWrite, origRead })
	clipboardWrite = func(s string) error { copied = s; return nil }
	clipboardRead = func() (string, error) { return "B", nil }

	if _, err := run(t, "", "queue", "paste"); err != nil {
		t.Fatalf("paste: %v", err)
	}
	if _, err := run(t, "", "queue", "copy"); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if copied != "levelshelf-queue:v1\nB\n" {
		t.Errorf("clipboard = %q", copied)
	}

	clipboardWrite = func(string) error { return errors.New("no clipboard") }
	if _, err := run(t, "", "queue", "copy"); err == nil {
		t.Error("expected clipboard error")
	}
}

func TestSearch_Remote(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/level/search" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"count":5,"items":[{"id":"R1","title":"Far Away","difficulty":"3"},{"id":42,"name":"Numbered"},{"title":"no id"}]}`)
	}))
	defer srv.Close()
	setup(t, srv.URL)

	rows := runJSON(t, "search", "Far Away", "--page", "1")
	if gotQuery != "query=far+away&page=1" {
		t.Errorf("query = %q", gotQuery)
	}
	if got := strings.Join(rowIDs(rows), ","); got != "R1,42" {
		t.Fatalf("rows = %s, want R1,42", got)
	}
	if rows[0].Installed || rows[0].Source != "remote" {
		t.Errorf("row = %+v", rows[0])
	}
	if rows[1].Title != "Numbered" {
		t.Errorf("Title = %q, want name fallback", rows[1].Title)
	}
}

func TestSearch_UnauthorizedNamesTokenEnv(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	setup(t, srv.URL)

	_, err := run(t, "", "search", "x")
	if err == nil || !strings.Contains(err.Error(), "LEVELSHELF_TOKEN") {
		t.Errorf("err = %v, want a hint naming LEVELSHELF_TOKEN", err)
	}
}

func writeLevelZip(t *testing.T, path, id, title string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("level.yml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, "id: "+id+"\ntitle: "+title+"\n"); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestInstallFileThenUninstall(t *testing.T) {
	lib := setup(t, "")
	archive := filepath.Join(t.TempDir(), "L42.zip")
	writeLevelZip(t, archive, "L42", "Answer")

	if _, err := run(t, "", "install", "--file", archive); err != nil {
		t.Fatalf("install: %v", err)
	}
	if _, err := os.Stat(filepath.Join(lib.levels, "L42", "level.yml")); err != nil {
		t.Fatalf("installed metadata missing: %v", err)
	}
	if _, err := run(t, "", "queue", "add", "L42"); err != nil {
		t.Fatalf("queue add: %v", err)
	}

	if _, err := run(t, "", "uninstall", "L42"); err != nil {
		t.Fatalf("uninstall: %v", err)
	}
	if _, err := os.Stat(filepath.Join(lib.levels, "L42")); !os.IsNotExist(err) {
		t.Errorf("level dir still present: %v", err)
	}
	if rows := runJSON(t, "queue", "list"); len(rows) != 0 {
		t.Errorf("queue after uninstall = %v", rowIDs(rows))
	}
	if _, err := run(t, "", "uninstall", "L42"); err == nil {
		t.Error("uninstalling a missing level should fail")
	}
}

func TestInstallFile_ChecksumMismatch(t *testing.T) {
	lib := setup(t, "")
	archive := filepath.Join(t.TempDir(), "L7.zip")
	writeLevelZip(t, archive, "L7", "Seven")

	_, err := run(t, "", "install", "--file", archive, "--sha256", strings.Repeat("0", 64))
	if err == nil || !strings.Contains(err.Error(), "mismatch") {
		t.Errorf("err = %v, want checksum mismatch", err)
	}
	if _, err := os.Stat(filepath.Join(lib.levels, "L7")); !os.IsNotExist(err) {
		t.Errorf("mismatched archive was installed: %v", err)
	}
}

func TestInstall_Remote(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("level.yml")
	_, _ = io.WriteString(w, "id: R9\ntitle: Remote Nine\n")
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/level/zip/R9" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()
	lib := setup(t, srv.URL)

	if _, err := run(t, "", "install", "R9"); err != nil {
		t.Fatalf("install: %v", err)
	}
	if _, err := os.Stat(filepath.Join(lib.levels, "R9")); err != nil {
		t.Errorf("R9 not installed: %v", err)
	}
	if _, err := run(t, "", "install", "missing"); err == nil {
		t.Error("expected error for a level the service does not have")
	}
}

func TestSubs_AddListRemove(t *testing.T) {
	lib := setup(t, "")
	seed(t, lib.workshop,
		catalog.Metadata{ID: "W1", Title: "Workshop One"},
		catalog.Metadata{ID: "W2", Title: "Workshop Two"},
	)

	if _, err := run(t, "", "subs", "add", "W2"); err != nil {
		t.Fatalf("subs add: %v", err)
	}
	if _, err := run(t, "", "subs", "add", "nope"); err == nil {
		t.Error("subscribing to an unknown item should fail")
	}

	rows := runJSON(t, "subs", "list")
	if len(rows) != 1 || rows[0].ID != "W2" {
		t.Fatalf("subs = %v, want [W2]", rowIDs(rows))
	}

	rows = runJSON(t, "subs", "search", "workshop")
	if len(rows) != 2 {
		t.Errorf("search page 0 = %v, want two results", rowIDs(rows))
	}

	if _, err := run(t, "", "subs", "remove", "W2"); err != nil {
		t.Fatalf("subs remove: %v", err)
	}
	if rows := runJSON(t, "subs", "list"); len(rows) != 0 {
		t.Errorf("subs after remove = %v", rowIDs(rows))
	}
}

func TestVersion(t *testing.T) {
	setup(t, "")
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	out, err := run(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "levelshelf 1.2.3\n" {
		t.Errorf("version = %q", out)
	}
}

func TestParseTab(t *testing.T) {
	tests := map[string]browse.Tab{
		"":         browse.TabLocal,
		"local":    browse.TabLocal,
		"Online":   browse.TabRemote,
		"remote":   browse.TabRemote,
		"workshop": browse.TabWorkshop,
		"QUEUE":    browse.TabQueue,
	}
	for in, want := range tests {
		got, err := parseTab(in)
		if err != nil || got != want {
			t.Errorf("parseTab(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := parseTab("shelf"); err == nil {
		t.Error("parseTab(shelf) should fail")
	}
}

func TestBrowse_RequiresTerminal(t *testing.T) {
	setup(t, "")
	if _, err := run(t, "", "browse"); err == nil {
		t.Error("browse without a terminal should fail")
	}
}

func TestCache_InfoAndClear(t *testing.T) {
	setup(t, "")
	e, err := openEnv(mustConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.covers.Store("L1", strings.NewReader("cover"), ""); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "cache", "info")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Covers:     1") || !strings.Contains(out, "5 B") {
		t.Errorf("cache info output:\n%s", out)
	}

	if _, err := run(t, "", "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if e.covers.Exists("L1") {
		t.Error("cover still cached after clear")
	}
}

func mustConfig(t *testing.T) *config.Config {
	t.Helper()
	c, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestHumanBytes(t *testing.T) {
	tests := map[int64]string{
		0:       "0 B",
		1023:    "1023 B",
		1536:    "1.5 KiB",
		5 << 20: "5.0 MiB",
	}
	for in, want := range tests {
		if got := humanBytes(in); got != want {
			t.Errorf("humanBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestMigrate_LegacyLevels(t *testing.T) {
	lib := setup(t, "")
	dir := filepath.Join(lib.levels, "old")
	if err := os.MkdirAll(dir, 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "info.json"), []byte(`{"levelId":"OLD1","songName":"Legacy"}`), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "migrate", "--dry-run")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "would migrate OLD1") {
		t.Errorf("dry run output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "level.yml")); !os.IsNotExist(err) {
		t.Fatal("dry run wrote level.yml")
	}

	if _, err := run(t, "", "migrate"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "level.yml")); err != nil {
		t.Errorf("level.yml missing after migrate: %v", err)
	}
	out, err = run(t, "", "migrate", "--history")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "OLD1") {
		t.Errorf("history = %q", out)
	}
	out, _ = run(t, "", "migrate")
	if !strings.Contains(out, "Nothing to migrate.") {
		t.Errorf("second run = %q", out)
	}
}
