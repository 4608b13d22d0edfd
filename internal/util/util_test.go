package util_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/levelshelf/internal/util"
)

const emptySHA = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func TestSHA256Reader(t *testing.T) {
	// sha256("") is well known
	got, err := util.SHA256Reader(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if got != emptySHA {
		t.Errorf("SHA256('') = %q, want %q", got, emptySHA)
	}
}

func TestSHA256File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.zip")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := util.SHA256File(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != emptySHA {
		t.Errorf("SHA256File(empty) = %q, want %q", got, emptySHA)
	}
}

func TestSHA256File_MissingFile(t *testing.T) {
	_, err := util.SHA256File("/no/such/file.bin")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestVerifySHA256(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.zip")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if err := util.VerifySHA256(path, strings.ToUpper(emptySHA)); err != nil {
		t.Errorf("VerifySHA256(upper-case match) = %v, want nil", err)
	}
	if err := util.VerifySHA256(path, "deadbeef"); err == nil {
		t.Error("expected mismatch error, got nil")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c")
	if err := util.EnsureDir(nested); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	fi, err := os.Stat(nested)
	if err != nil {
		t.Fatalf("Stat after EnsureDir: %v", err)
	}
	if !fi.IsDir() {
		t.Error("EnsureDir path is not a directory")
	}
}

func TestIsTerminal_RegularFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if util.IsTerminal(f) {
		t.Error("IsTerminal(regular file) = true, want false")
	}
	if util.IsTerminal(nil) {
		t.Error("IsTerminal(nil) = true, want false")
	}
}
